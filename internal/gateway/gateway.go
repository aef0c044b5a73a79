package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"wallet-console/internal/core/ports"
	"wallet-console/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	HeaderAuthorization = "Authorization"
	HeaderRequestID     = "X-Request-ID"

	maxResponseBody = 4 << 20 // 4 MB
)

// CredentialSource yields the bearer token to attach, "" when signed out.
type CredentialSource interface {
	Token() string
}

// ExpiryTrigger is told about every authorization failure.
type ExpiryTrigger interface {
	Expire(ctx context.Context, httpStatus int, token string) bool
}

// Request describes one call to the account service.
type Request struct {
	Method string
	Path   string // relative to the configured origin
	Query  url.Values
	Body   any // JSON-encoded when non-nil

	// Public requests (sign-in, sign-up) carry no credential, and a 401/403
	// from them is a rejection rather than a session expiry.
	Public bool
}

// Response is a 2xx reply from the account service.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	RequestID  string
}

// Decode unmarshals the body into v. Undecodable bodies are malformed.
func (r *Response) Decode(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return apperror.ErrMalformed(fmt.Errorf("decoding response body: %w", err))
	}
	return nil
}

// Gateway is the only path from the console to the account service. It never
// retries: a top-up must not be replayed behind the user's back.
type Gateway struct {
	baseURL *url.URL
	doer    ports.HTTPDoer
	creds   CredentialSource
	expiry  ExpiryTrigger
	log     zerolog.Logger
}

// New creates a Gateway for the service at baseURL.
func New(baseURL string, doer ports.HTTPDoer, creds CredentialSource, expiry ExpiryTrigger, log zerolog.Logger) (*Gateway, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parsing service base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("service base url %q must be absolute", baseURL)
	}

	return &Gateway{
		baseURL: u,
		doer:    doer,
		creds:   creds,
		expiry:  expiry,
		log:     log,
	}, nil
}

// NewHTTPClient returns the client the gateway should use in production.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

// Send dispatches req and classifies the outcome.
//
//   - 2xx: returned unchanged.
//   - 401/403 on an authorized request: the expiry trigger fires and the call
//     still fails with AUTH_001 so the caller can show a message.
//   - other 4xx: REQ_001 carrying the service's message verbatim.
//   - 5xx: SVC_001.
//   - no response: NET_001, never treated as expiry.
func (g *Gateway) Send(ctx context.Context, req Request) (*Response, error) {
	httpReq, requestID, token, err := g.build(ctx, req)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	httpResp, err := g.doer.Do(httpReq)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("request %s %s canceled: %w", req.Method, req.Path, ctxErr)
		}
		g.log.Warn().Err(err).
			Str("method", req.Method).
			Str("path", req.Path).
			Str("request_id", requestID).
			Msg("account service unreachable")
		return nil, apperror.ErrUnreachable(err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBody))
	if err != nil {
		return nil, apperror.ErrUnreachable(fmt.Errorf("reading response body: %w", err))
	}

	status := httpResp.StatusCode
	g.log.Debug().
		Str("method", req.Method).
		Str("path", req.Path).
		Int("status", status).
		Dur("latency", time.Since(start)).
		Str("request_id", requestID).
		Msg("account service call")

	switch {
	case status >= 200 && status < 300:
		return &Response{
			StatusCode: status,
			Header:     httpResp.Header,
			Body:       body,
			RequestID:  requestID,
		}, nil

	case (status == http.StatusUnauthorized || status == http.StatusForbidden) && !req.Public:
		g.log.Warn().
			Str("path", req.Path).
			Int("status", status).
			Str("request_id", requestID).
			Msg("authorization rejected")
		g.expiry.Expire(ctx, status, token)
		return nil, apperror.ErrSessionExpired(status)

	case status >= 400 && status < 500:
		return nil, apperror.ErrRejected(extractMessage(body), status)

	default:
		return nil, apperror.ErrServiceFailure(extractMessage(body), status)
	}
}

// SendJSON sends req and decodes a successful body into out.
func (g *Gateway) SendJSON(ctx context.Context, req Request, out any) error {
	resp, err := g.Send(ctx, req)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return resp.Decode(out)
}

// build returns the request with its request id and the token it carries.
func (g *Gateway) build(ctx context.Context, req Request) (*http.Request, string, string, error) {
	if strings.Contains(req.Path, "://") {
		return nil, "", "", apperror.InternalError(fmt.Errorf("path %q must be relative to the service origin", req.Path))
	}

	u := g.baseURL.JoinPath(req.Path)
	if len(req.Query) > 0 {
		u.RawQuery = req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return nil, "", "", apperror.InternalError(fmt.Errorf("encoding request body: %w", err))
		}
		body = bytes.NewReader(payload)
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, "", "", apperror.InternalError(fmt.Errorf("building request: %w", err))
	}

	requestID := uuid.New().String()
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set(HeaderRequestID, requestID)
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	var token string
	if !req.Public {
		token = g.creds.Token()
		if token != "" {
			httpReq.Header.Set(HeaderAuthorization, "Bearer "+token)
		}
	}

	return httpReq, requestID, token, nil
}

// extractMessage pulls a human-readable message out of an error body.
func extractMessage(body []byte) string {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	for _, key := range []string{"message", "error_message", "error", "msg", "detail"} {
		if s, ok := payload[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}
