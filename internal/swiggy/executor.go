package swiggy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/phuslu/log"
	"golang.org/x/time/rate"

	"github.com/five82/tiffin/internal/creds"
)

// HTTPDoer sends one HTTP request. *http.Client satisfies it.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// maxAttempts bounds network calls per logical call: the original send
// plus one retry after a credential refresh.
const maxAttempts = 2

const maxBodyBytes = 10 << 20

// OutcomeKind classifies a logical call.
type OutcomeKind int

const (
	OutcomeSuccess OutcomeKind = iota
	OutcomeAuthPending
	OutcomeFailure
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeAuthPending:
		return "auth_pending"
	case OutcomeFailure:
		return "failure"
	default:
		return fmt.Sprintf("OutcomeKind(%d)", int(k))
	}
}

// Request describes one logical API call relative to the API base.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
	// Bearer attaches "Authorization: Bearer <token>" when a token is held.
	Bearer bool
}

func (r Request) method() string {
	if r.Method == "" {
		return http.MethodGet
	}
	return r.Method
}

// Outcome is the classified result of a logical call.
type Outcome struct {
	Kind       OutcomeKind
	Payload    json.RawMessage
	StatusCode int
	Reason     string
	Err        error
	Attempts   int
	RequestID  string
}

// OK reports a successful outcome.
func (o Outcome) OK() bool {
	return o.Kind == OutcomeSuccess
}

// Error returns the outcome's error, synthesising one for auth-pending
// results that carry none.
func (o Outcome) Error() error {
	if o.Err != nil || o.Kind == OutcomeSuccess {
		return o.Err
	}
	return fmt.Errorf("request %s: %s", o.Kind, o.Reason)
}

// ExecutorOptions configures NewExecutor.
type ExecutorOptions struct {
	BaseURL           string
	UserAgent         string
	Referer           string
	PendingAuthStatus int
	RateLimit         float64
	Extractor         *creds.Extractor
	HTTP              HTTPDoer
	Logger            *log.Logger
}

// Executor performs logical API calls: attach credentials, send, harvest
// refreshed credentials, classify, and retry once when a pending-auth
// response came with new credentials.
//
// Executor never persists anything. Credentials go in as a value and the
// possibly refreshed set comes back; committing it is the caller's job.
type Executor struct {
	base        *url.URL
	userAgent   string
	referer     string
	pending     int
	extractor   *creds.Extractor
	tokenCookie string
	http        HTTPDoer
	limiter     *rate.Limiter
	logger      *log.Logger
}

// NewExecutor validates opts and builds an Executor.
func NewExecutor(opts ExecutorOptions) (*Executor, error) {
	base, err := parseBaseURL(opts.BaseURL)
	if err != nil {
		return nil, err
	}
	extractor := opts.Extractor
	if extractor == nil {
		extractor = creds.NewExtractor(nil)
	}
	doer := opts.HTTP
	if doer == nil {
		doer = http.DefaultClient
	}
	pending := opts.PendingAuthStatus
	if pending == 0 {
		pending = http.StatusAccepted
	}
	logger := opts.Logger
	if logger == nil {
		logger = &log.Logger{Level: log.ErrorLevel, Writer: log.IOWriter{Writer: io.Discard}}
	}
	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.RateLimit > 0 {
		burst := int(math.Ceil(opts.RateLimit))
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}
	return &Executor{
		base:        base,
		userAgent:   opts.UserAgent,
		referer:     opts.Referer,
		pending:     pending,
		extractor:   extractor,
		tokenCookie: extractor.TokenCookie(),
		http:        doer,
		limiter:     limiter,
		logger:      logger,
	}, nil
}

// Execute performs one logical call. It returns the outcome and the
// credential set as it stands after every response was inspected.
func (e *Executor) Execute(ctx context.Context, set creds.Set, req Request) (Outcome, creds.Set) {
	requestID := uuid.NewString()
	current := set.Clone()

	var outcome Outcome
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		var refreshed bool
		outcome, current, refreshed = e.attempt(ctx, current, req, requestID)
		outcome.Attempts = attempt
		outcome.RequestID = requestID

		if outcome.Kind != OutcomeAuthPending {
			return outcome, current
		}
		if !refreshed || attempt == maxAttempts {
			break
		}
		e.logger.Info().Str("request_id", requestID).Str("path", req.Path).
			Int("status", outcome.StatusCode).Msg("credentials refreshed by pending response; retrying")
	}

	outcome.Err = authExpiredError(outcome.StatusCode, req)
	if outcome.Reason == "" {
		outcome.Reason = "authentication pending"
	}
	return outcome, current
}

// attempt sends one request. refreshed reports whether the response changed
// the credential set.
func (e *Executor) attempt(ctx context.Context, set creds.Set, req Request, requestID string) (Outcome, creds.Set, bool) {
	if err := e.limiter.Wait(ctx); err != nil {
		return Outcome{Kind: OutcomeFailure, Reason: err.Error(), Err: transportError(err, req)}, set, false
	}

	httpReq, err := e.newRequest(ctx, set, req, requestID)
	if err != nil {
		return Outcome{Kind: OutcomeFailure, Reason: err.Error(), Err: transportError(err, req)}, set, false
	}

	e.logger.Debug().Str("request_id", requestID).Str("method", httpReq.Method).Str("path", req.Path).Msg("sending request")

	resp, err := e.http.Do(httpReq)
	if err != nil {
		e.logger.Warn().Err(err).Str("request_id", requestID).Str("path", req.Path).Msg("request failed")
		return Outcome{Kind: OutcomeFailure, Reason: err.Error(), Err: transportError(err, req)}, set, false
	}
	defer func() { _ = resp.Body.Close() }()

	next, refreshed := set.Apply(e.extractor.Extract(resp.Header))
	if refreshed {
		e.logger.Debug().Str("request_id", requestID).Msg("harvested credentials from response")
	}

	body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	status := resp.StatusCode

	e.logger.Debug().Str("request_id", requestID).Str("path", req.Path).Int("status", status).Int("bytes", len(body)).Msg("response received")

	switch {
	case status == e.pending:
		return Outcome{Kind: OutcomeAuthPending, StatusCode: status, Reason: failureReason(body, status)}, next, refreshed
	case status >= 200 && status < 300:
		if readErr != nil {
			return Outcome{Kind: OutcomeFailure, StatusCode: status, Reason: readErr.Error(), Err: transportError(readErr, req)}, next, refreshed
		}
		trimmed := bytes.TrimSpace(body)
		if len(trimmed) == 0 || !json.Valid(trimmed) {
			err := fmt.Errorf("response body is not JSON (%d bytes)", len(body))
			return Outcome{Kind: OutcomeFailure, StatusCode: status, Reason: err.Error(), Err: decodeError(err, req)}, next, refreshed
		}
		return Outcome{Kind: OutcomeSuccess, StatusCode: status, Payload: json.RawMessage(trimmed)}, next, refreshed
	default:
		reason := failureReason(body, status)
		e.logger.Warn().Str("request_id", requestID).Str("path", req.Path).Int("status", status).Str("reason", reason).Msg("request rejected")
		return Outcome{Kind: OutcomeFailure, StatusCode: status, Reason: reason, Err: httpError(status, reason, req)}, next, refreshed
	}
}

func (e *Executor) newRequest(ctx context.Context, set creds.Set, req Request, requestID string) (*http.Request, error) {
	rel := &url.URL{Path: strings.TrimLeft(req.Path, "/")}
	if len(req.Query) > 0 {
		rel.RawQuery = req.Query.Encode()
	}
	target := e.base.ResolveReference(rel)

	var body io.Reader
	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method(), target.String(), body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if e.userAgent != "" {
		httpReq.Header.Set("User-Agent", e.userAgent)
	}
	if e.referer != "" {
		httpReq.Header.Set("Referer", e.referer)
	}
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if cookie := set.CookieHeader(e.tokenCookie); cookie != "" {
		httpReq.Header.Set("Cookie", cookie)
	}
	if req.Bearer && set.BearerToken != "" {
		httpReq.Header.Set("Authorization", "Bearer "+set.BearerToken)
	}
	httpReq.Header.Set("X-Request-Id", requestID)
	return httpReq, nil
}

// failureReason pulls a human-readable message out of an error body.
func failureReason(body []byte, status int) string {
	var payload map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(body), &payload); err == nil {
		for _, key := range []string{"statusMessage", "message", "error"} {
			if s, ok := payload[key].(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		}
	}
	if text := http.StatusText(status); text != "" {
		return text
	}
	return fmt.Sprintf("HTTP %d", status)
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, fmt.Errorf("api base url is empty")
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api base %q: %w", raw, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse api base %q: missing host", raw)
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/"
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
