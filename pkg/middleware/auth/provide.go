package auth

import (
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/fx"
)

// Config carries what ProvideAuthentication otherwise reads from env.
type Config struct {
	Secret       string
	CookieName   string
	Issuer       string
	Audience     string
	AdminRole    string
	Leeway       time.Duration
	DevBypass    bool
	RequireToken bool // reject requests that carry no token at all
}

// New builds a Middleware from explicit config.
func New(c Config) *Middleware {
	if c.CookieName == "" {
		c.CookieName = "assert"
	}
	return &Middleware{
		adminRole:    c.AdminRole,
		devBypass:    c.DevBypass,
		secret:       []byte(c.Secret),
		cookieName:   c.CookieName,
		issuer:       c.Issuer,
		audience:     c.Audience,
		leeway:       c.Leeway,
		requireToken: c.RequireToken,
	}
}

// ProvideAuthentication wires defaults and env config.
func ProvideAuthentication() *Middleware {
	leeway := 60 * time.Second
	if v := strings.TrimSpace(os.Getenv("ASSERTION_LEEWAY_SECONDS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			leeway = time.Duration(n) * time.Second
		}
	}
	return New(Config{
		Secret:       strings.TrimSpace(os.Getenv("DISPATCH_JWT_SECRET")),
		CookieName:   strings.TrimSpace(os.Getenv("ASSERTION_COOKIE_NAME")),
		Issuer:       strings.TrimSpace(os.Getenv("ASSERTION_ISSUER")),
		Audience:     strings.TrimSpace(os.Getenv("ASSERTION_AUDIENCE")),
		AdminRole:    os.Getenv("ADMIN_ROLE_NAME"),
		Leeway:       leeway,
		DevBypass:    os.Getenv("AUTH_DEV_BYPASS") == "true",
		RequireToken: os.Getenv("AUTH_REQUIRE_TOKEN") == "true",
	})
}

var Module = fx.Options(
	fx.Provide(ProvideAuthentication),
)
