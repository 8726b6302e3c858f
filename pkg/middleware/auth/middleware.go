package auth

import "time"

type contextKey struct{ name string }

var userCtxKey = &contextKey{"user"}

type Middleware struct {
	adminRole string
	devBypass bool

	// Bearer/assertion verification (HS256)
	secret       []byte
	cookieName   string
	issuer       string
	audience     string
	leeway       time.Duration
	requireToken bool
}

// Enabled reports whether tokens can be verified at all.
func (m *Middleware) Enabled() bool { return m != nil && (len(m.secret) > 0 || m.devBypass) }
