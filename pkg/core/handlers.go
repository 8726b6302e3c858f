package core

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	"github.com/joeydtaylor/steeze-print/pkg/codec"
	"github.com/joeydtaylor/steeze-print/pkg/device"
	manifest "github.com/joeydtaylor/steeze-print/pkg/manifest"
	"github.com/joeydtaylor/steeze-print/pkg/spool"
	"github.com/joeydtaylor/steeze-print/pkg/vararg"
	"go.uber.org/zap"
)

const maxBody = 1 << 20

type handlers struct {
	cfg manifest.Config
	rt  *Router
	log *zap.Logger
}

type dispatchResponse struct {
	Destination string `json:"destination"`
	Argc        int    `json:"argc"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// POST /dispatch/{destination}
func (h *handlers) dispatch(w http.ResponseWriter, r *http.Request) {
	dest := destinationParam(r)

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	var req codec.DispatchRequest
	if err := codec.JSONStrict.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	vals, err := codec.DecodeArgs(req.Args)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := h.rt.DispatchValues(r.Context(), dest, req.Format, vals); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusAccepted, dispatchResponse{Destination: dest, Argc: len(vals)})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrInvalidDestination):
		return http.StatusNotFound
	case errors.Is(err, vararg.ErrArgumentContract):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

type destinationView struct {
	Name string   `json:"name"`
	Type string   `json:"type"`
	Args []string `json:"args,omitempty"`
}

// GET /destinations
func (h *handlers) destinations(w http.ResponseWriter, r *http.Request) {
	byName := make(map[string]manifest.Destination, len(h.cfg.Destinations))
	for _, d := range h.cfg.Destinations {
		byName[d.Name] = d
	}
	names := h.rt.Registry().Names()
	out := make([]destinationView, 0, len(names))
	for _, n := range names {
		d := byName[n]
		out = append(out, destinationView{Name: n, Type: string(d.Type), Args: d.Args})
	}
	writeJSON(w, http.StatusOK, map[string]any{"destinations": out})
}

// GET /spool/{destination}?limit=n
func (h *handlers) spool(w http.ResponseWriter, r *http.Request) {
	dest := destinationParam(r)
	hd, ok := h.rt.Registry().Lookup(dest)
	if !ok {
		notFound(w, r)
		return
	}
	p, ok := hd.(*device.Printer)
	if !ok {
		writeError(w, http.StatusNotFound, errors.New("destination has no spool"))
		return
	}

	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, errors.New("limit must be a non-negative integer"))
			return
		}
		limit = n
	}

	jobs, err := p.Spool().List(r.Context(), dest, limit)
	if err != nil {
		h.log.Error("spool list", zap.String("destination", dest), zap.Error(err))
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if jobs == nil {
		jobs = []spool.Job{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"destination": dest, "jobs": jobs})
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

const (
	writeWait  = 5 * time.Second
	pingPeriod = 30 * time.Second
)

// GET /lcd/{destination}/stream
func (h *handlers) stream(w http.ResponseWriter, r *http.Request) {
	dest := destinationParam(r)
	hd, ok := h.rt.Registry().Lookup(dest)
	if !ok {
		notFound(w, r)
		return
	}
	s, ok := hd.(device.Streamer)
	if !ok {
		writeError(w, http.StatusNotFound, errors.New("destination has no screen"))
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied.
		h.log.Warn("lcd stream upgrade", zap.String("destination", dest), zap.Error(err))
		return
	}
	defer conn.Close()

	frames, cancel := s.Subscribe()
	defer cancel()

	// Reader: only control frames matter; any error means the peer is gone.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if l, ok := hd.(*device.LCD); ok {
		if err := writeFrame(conn, device.Screen{Destination: dest, Lines: l.Lines(), At: time.Now().UTC()}); err != nil {
			return
		}
	}

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()
	for {
		select {
		case <-gone:
			return
		case <-r.Context().Done():
			return
		case sc, ok := <-frames:
			if !ok {
				return
			}
			if err := writeFrame(conn, sc); err != nil {
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

func writeFrame(conn *websocket.Conn, sc device.Screen) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(sc)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	b, err := codec.JSONStrict.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", codec.JSONStrict.ContentType())
	w.WriteHeader(status)
	_, _ = w.Write(b)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}
