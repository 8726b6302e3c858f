package logger

import (
	"net/http"
	"strings"
	"sync"
)

// bodyLogCap is the largest request body the access log records.
const bodyLogCap = 1 << 16

var (
	bodyLogMu sync.RWMutex
	// Entries ending in "/" match by prefix.
	bodyLogPaths = map[string]struct{}{
		"/dispatch/": {},
	}
)

// AddBodyLogPaths lets callers extend the allowlist at runtime (optional).
func AddBodyLogPaths(paths ...string) {
	bodyLogMu.Lock()
	for _, p := range paths {
		p = strings.TrimSpace(p)
		if p != "" {
			bodyLogPaths[p] = struct{}{}
		}
	}
	bodyLogMu.Unlock()
}

// Only log small JSON request bodies on allowlisted routes.
func shouldLogBody(r *http.Request, body []byte) bool {
	if r.Method != http.MethodPost && r.Method != http.MethodPut && r.Method != http.MethodPatch {
		return false
	}
	if len(body) == 0 || len(body) > bodyLogCap {
		return false
	}
	ct := r.Header.Get("Content-Type")
	if !strings.HasPrefix(ct, "application/json") {
		return false
	}
	path := r.URL.Path
	bodyLogMu.RLock()
	defer bodyLogMu.RUnlock()
	if _, ok := bodyLogPaths[path]; ok {
		return true
	}
	for p := range bodyLogPaths {
		if strings.HasSuffix(p, "/") && strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}
