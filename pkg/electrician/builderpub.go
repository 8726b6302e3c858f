// pkg/electrician/builderpub.go
package electrician

// Publish-only RelayClient built on Electrician's ForwardRelay[[]byte].
// No builder.* types are stored on the struct.

import (
	"context"
	"crypto/tls"
	"encoding/hex"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joeydtaylor/electrician/pkg/builder"
)

// relayOptions is the env-derived relay configuration.
type relayOptions struct {
	targets []string

	tls         bool
	tlsCrt      string
	tlsKey      string
	tlsCA       string
	tlsInsecure bool

	snappy bool
	aesKey string // raw 32 bytes when set

	headers map[string]string

	oauthIssuer string
	oauthJWKS   string
	oauthID     string
	oauthSecret string
	oauthScopes []string
	oauthLeeway time.Duration
}

func (o relayOptions) oauth() bool {
	return o.oauthIssuer != "" && o.oauthID != "" && o.oauthSecret != ""
}

// loadRelayOptions reads:
//
//	ELECTRICIAN_TARGET          = "host:port[,host2:port2]"
//	ELECTRICIAN_TLS_ENABLE      = "true" | "false"
//	ELECTRICIAN_TLS_CLIENT_CRT  = path (default: keys/tls/client.crt)
//	ELECTRICIAN_TLS_CLIENT_KEY  = path (default: keys/tls/client.key)
//	ELECTRICIAN_TLS_CA          = path (default: keys/tls/ca.crt)
//	ELECTRICIAN_TLS_INSECURE    = "true" | "false"  (dev only; token client)
//	ELECTRICIAN_COMPRESS        = "snappy" | ""
//	ELECTRICIAN_ENCRYPT         = "aesgcm" | ""
//	ELECTRICIAN_AES256_KEY_HEX  = 64 hex chars
//	ELECTRICIAN_STATIC_HEADERS  = "k=v,k2=v2"
//	OAUTH_ISSUER_BASE, OAUTH_JWKS_URL, OAUTH_CLIENT_ID,
//	OAUTH_CLIENT_SECRET, OAUTH_SCOPES, OAUTH_REFRESH_LEEWAY (default 20s)
func loadRelayOptions() (relayOptions, error) {
	o := relayOptions{
		targets:     splitCSV(os.Getenv("ELECTRICIAN_TARGET")),
		tls:         strings.EqualFold(os.Getenv("ELECTRICIAN_TLS_ENABLE"), "true"),
		tlsCrt:      envOr("ELECTRICIAN_TLS_CLIENT_CRT", "keys/tls/client.crt"),
		tlsKey:      envOr("ELECTRICIAN_TLS_CLIENT_KEY", "keys/tls/client.key"),
		tlsCA:       envOr("ELECTRICIAN_TLS_CA", "keys/tls/ca.crt"),
		tlsInsecure: strings.EqualFold(os.Getenv("ELECTRICIAN_TLS_INSECURE"), "true"),
		snappy:      strings.EqualFold(os.Getenv("ELECTRICIAN_COMPRESS"), "snappy"),
		headers:     parseKV(os.Getenv("ELECTRICIAN_STATIC_HEADERS")),
		oauthIssuer: strings.TrimSpace(os.Getenv("OAUTH_ISSUER_BASE")),
		oauthJWKS:   strings.TrimSpace(os.Getenv("OAUTH_JWKS_URL")),
		oauthID:     strings.TrimSpace(os.Getenv("OAUTH_CLIENT_ID")),
		oauthSecret: strings.TrimSpace(os.Getenv("OAUTH_CLIENT_SECRET")),
		oauthScopes: splitCSV(os.Getenv("OAUTH_SCOPES")),
		oauthLeeway: parseDur(os.Getenv("OAUTH_REFRESH_LEEWAY"), 20*time.Second),
	}
	if strings.EqualFold(os.Getenv("ELECTRICIAN_ENCRYPT"), "aesgcm") {
		raw, err := hex.DecodeString(strings.TrimSpace(os.Getenv("ELECTRICIAN_AES256_KEY_HEX")))
		if err != nil || len(raw) != 32 {
			return o, fmt.Errorf("ELECTRICIAN_AES256_KEY_HEX must be 64 hex chars (32 bytes): %v", err)
		}
		o.aesKey = string(raw)
	}
	return o, nil
}

type builderClient struct {
	submit func(context.Context, []byte) error // captures wire.Submit
}

// Publish sends the body into the wire. Per-call headers are not carried;
// the relay only sends ELECTRICIAN_STATIC_HEADERS.
func (c *builderClient) Publish(ctx context.Context, rr RelayRequest) error {
	if rr.Topic == "" {
		return ErrMissingTopic
	}
	return c.submit(ctx, rr.Body)
}

// NewBuilderRelayFromEnv returns a started relay client, or a noop client
// when ELECTRICIAN_TARGET is unset.
func NewBuilderRelayFromEnv(ctx context.Context) (RelayClient, error) {
	o, err := loadRelayOptions()
	if err != nil {
		return nil, err
	}
	if len(o.targets) == 0 {
		return noopRelay{}, nil
	}

	logger := builder.NewLogger(builder.LoggerWithDevelopment(true))
	wire := builder.NewWire[[]byte](ctx, builder.WireWithLogger[[]byte](logger))

	perf := builder.NewPerformanceOptions(o.snappy, builder.COMPRESS_SNAPPY)
	sec := builder.NewSecurityOptions(o.aesKey != "", builder.ENCRYPTION_AES_GCM)
	tlsCfg := builder.NewTlsClientConfig(
		o.tls,
		o.tlsCrt, o.tlsKey, o.tlsCA,
		tls.VersionTLS13, tls.VersionTLS13,
	)

	var relayStart func(context.Context) error
	if o.oauth() {
		authOpts := builder.NewForwardRelayAuthenticationOptionsOAuth2(nil)
		if o.oauthJWKS != "" {
			authOpts = builder.NewForwardRelayAuthenticationOptionsOAuth2(
				builder.NewForwardRelayOAuth2JWTOptions(o.oauthIssuer, o.oauthJWKS, []string{}, o.oauthScopes, 300),
			)
		}
		authHTTP := &http.Client{
			Timeout: 10 * time.Second,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{
					MinVersion:         tls.VersionTLS13,
					MaxVersion:         tls.VersionTLS13,
					InsecureSkipVerify: o.tlsInsecure,
				},
			},
		}
		ts := builder.NewForwardRelayRefreshingClientCredentialsSource(
			o.oauthIssuer, o.oauthID, o.oauthSecret, o.oauthScopes, o.oauthLeeway, authHTTP,
		)
		relay := builder.NewForwardRelay[[]byte](
			ctx,
			builder.ForwardRelayWithLogger[[]byte](logger),
			builder.ForwardRelayWithTarget[[]byte](o.targets...),
			builder.ForwardRelayWithPerformanceOptions[[]byte](perf),
			builder.ForwardRelayWithSecurityOptions[[]byte](sec, o.aesKey),
			builder.ForwardRelayWithTLSConfig[[]byte](tlsCfg),
			builder.ForwardRelayWithStaticHeaders[[]byte](o.headers),
			builder.ForwardRelayWithAuthenticationOptions[[]byte](authOpts),
			builder.ForwardRelayWithOAuthBearer[[]byte](ts),
			builder.ForwardRelayWithInput(wire),
		)
		relayStart = relay.Start
	} else {
		relay := builder.NewForwardRelay[[]byte](
			ctx,
			builder.ForwardRelayWithLogger[[]byte](logger),
			builder.ForwardRelayWithTarget[[]byte](o.targets...),
			builder.ForwardRelayWithPerformanceOptions[[]byte](perf),
			builder.ForwardRelayWithSecurityOptions[[]byte](sec, o.aesKey),
			builder.ForwardRelayWithTLSConfig[[]byte](tlsCfg),
			builder.ForwardRelayWithStaticHeaders[[]byte](o.headers),
			builder.ForwardRelayWithInput(wire),
		)
		relayStart = relay.Start
	}

	if err := wire.Start(ctx); err != nil {
		return nil, fmt.Errorf("builder wire start: %w", err)
	}
	if err := relayStart(ctx); err != nil {
		return nil, fmt.Errorf("builder relay start: %w", err)
	}
	return &builderClient{
		submit: func(ctx context.Context, b []byte) error { return wire.Submit(ctx, b) },
	}, nil
}
