package core

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	gobreaker "github.com/sony/gobreaker/v2"
)

var (
	// ErrNoToken is returned before any network I/O when no credential can be resolved.
	ErrNoToken = errors.New("no token found")
	// ErrBackendUnavailable is returned while the circuit breaker is open.
	ErrBackendUnavailable = errors.New("backend unavailable")
)

// Dispatch outcomes reported to an Observer.
const (
	OutcomeOK             = "ok"
	OutcomeRejectedStatus = "rejected"
	OutcomeTransportError = "transport_error"
	OutcomeNoToken        = "unauthenticated"
	OutcomeCircuitOpen    = "circuit_open"
)

// Execution contexts a dispatcher can be built for.
const (
	VariantServer = "server"
	VariantClient = "client"
)

// Dispatcher issues one authenticated request against the backend origin and returns the raw
// response. Non-2xx statuses are not errors; callers inspect StatusCode themselves.
type Dispatcher interface {
	Dispatch(ctx context.Context, path, method string, body any) (*http.Response, error)
}

// Observer receives one call per dispatch attempt.
type Observer interface {
	ObserveDispatch(variant, method, outcome string, elapsed time.Duration)
}

// GatewayConfig configures the shared part of every dispatcher.
type GatewayConfig struct {
	Origin         string
	Timeout        time.Duration // 0 = no timeout beyond the caller's context
	BreakerEnabled bool
	HTTPClient     *http.Client
	Observer       Observer
}

// Gateway owns what dispatchers share across requests: the HTTP client, the backend origin,
// the optional circuit breaker and the observer.
type Gateway struct {
	origin   string
	client   *http.Client
	breaker  *gobreaker.CircuitBreaker[*http.Response]
	observer Observer
}

func NewGateway(cfg GatewayConfig) *Gateway {
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	g := &Gateway{
		origin:   strings.TrimSuffix(strings.TrimSpace(cfg.Origin), "/"),
		client:   client,
		observer: cfg.Observer,
	}
	if cfg.BreakerEnabled {
		g.breaker = newDispatchBreaker("backend")
	}
	return g
}

// Origin returns the backend base URL without a trailing slash.
func (g *Gateway) Origin() string { return g.origin }

// HTTPClient exposes the shared client for calls that carry no credential.
func (g *Gateway) HTTPClient() *http.Client { return g.client }

// ServerDispatcher binds a dispatcher to the token cookie of an incoming request.
func (g *Gateway) ServerDispatcher(r *http.Request) *HTTPDispatcher {
	return NewServerDispatcher(g, NewRequestCookieSource(r))
}

// ClientDispatcher binds a dispatcher to a client-side credential source.
func (g *Gateway) ClientDispatcher(src CredentialSource) *HTTPDispatcher {
	return NewClientDispatcher(g, src)
}

// HTTPDispatcher is the single Dispatcher implementation behind both variants.
type HTTPDispatcher struct {
	gw      *Gateway
	variant string
	creds   CredentialSource
}

func NewServerDispatcher(gw *Gateway, src *RequestCookieSource) *HTTPDispatcher {
	return &HTTPDispatcher{gw: gw, variant: VariantServer, creds: src}
}

func NewClientDispatcher(gw *Gateway, src CredentialSource) *HTTPDispatcher {
	return &HTTPDispatcher{gw: gw, variant: VariantClient, creds: src}
}

// Variant reports which execution context the dispatcher was built for.
func (d *HTTPDispatcher) Variant() string { return d.variant }

// Dispatch sends method path with an optional JSON body.
// []byte, string and json.RawMessage bodies are sent verbatim.
func (d *HTTPDispatcher) Dispatch(ctx context.Context, path, method string, body any) (*http.Response, error) {
	start := time.Now()
	token, err := d.token(ctx, method, path, start)
	if err != nil {
		return nil, err
	}

	payload, err := encodeBody(body)
	if err != nil {
		return nil, fmt.Errorf("encode request body: %w", err)
	}
	var reader io.Reader = http.NoBody
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, d.gw.origin+path, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	return d.send(req, start)
}

// Upload sends one file as multipart/form-data under field. It follows the same credential
// rules as Dispatch; only the Content-Type differs.
func (d *HTTPDispatcher) Upload(ctx context.Context, path, method, field, filename string, r io.Reader) (*http.Response, error) {
	start := time.Now()
	token, err := d.token(ctx, method, path, start)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(field, filename)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("copy upload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, d.gw.origin+path, &buf)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	return d.send(req, start)
}

func (d *HTTPDispatcher) token(ctx context.Context, method, path string, start time.Time) (string, error) {
	if d.creds != nil {
		if token, ok := d.creds.Token(ctx); ok {
			return token, nil
		}
	}
	log.Warn().Str("variant", d.variant).Str("method", method).Str("path", path).Msg("no token found")
	d.observe(method, OutcomeNoToken, start)
	return "", ErrNoToken
}

func (d *HTTPDispatcher) send(req *http.Request, start time.Time) (*http.Response, error) {
	var (
		resp *http.Response
		err  error
	)
	if d.gw.breaker != nil {
		resp, err = d.gw.breaker.Execute(func() (*http.Response, error) {
			return d.gw.client.Do(req)
		})
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			log.Warn().Err(err).Str("variant", d.variant).Str("method", req.Method).Str("path", req.URL.Path).Msg("dispatch rejected by circuit breaker")
			d.observe(req.Method, OutcomeCircuitOpen, start)
			return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
		}
	} else {
		resp, err = d.gw.client.Do(req)
	}

	if err != nil {
		log.Error().Err(err).Str("variant", d.variant).Str("method", req.Method).Str("url", req.URL.String()).Msg("fetch error")
		d.observe(req.Method, OutcomeTransportError, start)
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}

	if !isOK(resp) {
		log.Warn().Str("variant", d.variant).Str("method", req.Method).Str("path", req.URL.Path).Str("status", resp.Status).Msg("backend rejected request")
		d.observe(req.Method, OutcomeRejectedStatus, start)
		return resp, nil
	}
	d.observe(req.Method, OutcomeOK, start)
	return resp, nil
}

func (d *HTTPDispatcher) observe(method, outcome string, start time.Time) {
	if d.gw.observer != nil {
		d.gw.observer.ObserveDispatch(d.variant, method, outcome, time.Since(start))
	}
}

func encodeBody(body any) ([]byte, error) {
	switch b := body.(type) {
	case nil:
		return nil, nil
	case []byte:
		return b, nil
	case json.RawMessage:
		return b, nil
	case string:
		return []byte(b), nil
	default:
		return json.Marshal(body)
	}
}

func isOK(resp *http.Response) bool {
	return resp != nil && resp.StatusCode >= 200 && resp.StatusCode < 300
}

func newDispatchBreaker(name string) *gobreaker.CircuitBreaker[*http.Response] {
	return gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// A caller giving up is not a backend failure.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Info().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state change")
		},
	})
}
