package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// ErrNoToken is returned when no access token is available.
var ErrNoToken = errors.New("backup token is empty")

// Transport moves a serialized payload to and from remote storage.
type Transport interface {
	Upload(ctx context.Context, payload []byte) (string, error)
	// Download reports found=false when no backup exists yet.
	Download(ctx context.Context) (payload []byte, found bool, err error)
}

// TokenSource supplies the bearer token for each request.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a fixed token.
type StaticToken string

func (t StaticToken) Token(context.Context) (string, error) {
	return string(t), nil
}

// EnvToken reads the token from an environment variable on every request.
type EnvToken string

func (e EnvToken) Token(context.Context) (string, error) {
	return os.Getenv(string(e)), nil
}

// HTTPError is a non-2xx response from the backup endpoint.
type HTTPError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("http %d %s: %s", e.StatusCode, e.Code, e.Message)
}

// HTTPOptions configures an HTTPTransport.
type HTTPOptions struct {
	Endpoint   string
	FileName   string
	Tokens     TokenSource
	HTTPClient *http.Client
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

// HTTPTransport stores the backup as a single named file behind a bearer
// authenticated endpoint: PUT and GET {endpoint}/files/{name}.
type HTTPTransport struct {
	endpoint   string
	fileName   string
	tokens     TokenSource
	httpClient *http.Client
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
}

func NewHTTPTransport(opts HTTPOptions) *HTTPTransport {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	fileName := strings.TrimSpace(opts.FileName)
	if fileName == "" {
		fileName = "shelf-backup.json"
	}
	maxRetries := opts.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}
	baseDelay := opts.BaseDelay
	if baseDelay <= 0 {
		baseDelay = 100 * time.Millisecond
	}
	maxDelay := opts.MaxDelay
	if maxDelay <= 0 {
		maxDelay = 2 * time.Second
	}
	return &HTTPTransport{
		endpoint:   strings.TrimRight(strings.TrimSpace(opts.Endpoint), "/"),
		fileName:   fileName,
		tokens:     opts.Tokens,
		httpClient: httpClient,
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
		maxDelay:   maxDelay,
	}
}

func (t *HTTPTransport) Upload(ctx context.Context, payload []byte) (string, error) {
	body, status, err := t.do(ctx, http.MethodPut, payload)
	if err != nil {
		return "", err
	}
	if status == http.StatusNotFound {
		return "", &HTTPError{StatusCode: status, Message: "upload target not found"}
	}
	var resp struct {
		ID string `json:"id"`
	}
	if len(body) > 0 && json.Unmarshal(body, &resp) == nil && resp.ID != "" {
		return resp.ID, nil
	}
	return t.fileName, nil
}

func (t *HTTPTransport) Download(ctx context.Context) ([]byte, bool, error) {
	body, status, err := t.do(ctx, http.MethodGet, nil)
	if err != nil {
		return nil, false, err
	}
	if status == http.StatusNotFound {
		return nil, false, nil
	}
	return body, true, nil
}

// do returns the body of a 2xx or 404 response; other statuses become an
// HTTPError once retries are exhausted.
func (t *HTTPTransport) do(ctx context.Context, method string, payload []byte) ([]byte, int, error) {
	if t.endpoint == "" {
		return nil, 0, errors.New("backup endpoint is not configured")
	}
	if t.tokens == nil {
		return nil, 0, ErrNoToken
	}
	token, err := t.tokens.Token(ctx)
	if err != nil {
		return nil, 0, err
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, 0, ErrNoToken
	}
	target := t.endpoint + "/files/" + url.PathEscape(t.fileName)

	for attempt := 0; ; attempt++ {
		var reqBody io.Reader
		if payload != nil {
			reqBody = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, target, reqBody)
		if err != nil {
			return nil, 0, err
		}
		req.Header.Set("Authorization", "Bearer "+token)
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := t.httpClient.Do(req)
		if err != nil {
			if attempt < t.maxRetries {
				if waitErr := waitWithContext(ctx, t.retryDelay(attempt+1, "")); waitErr != nil {
					return nil, 0, waitErr
				}
				continue
			}
			return nil, 0, err
		}

		respBody, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr != nil {
			return nil, 0, readErr
		}
		if resp.StatusCode >= 200 && resp.StatusCode <= 299 || resp.StatusCode == http.StatusNotFound {
			return respBody, resp.StatusCode, nil
		}

		if (resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 && resp.StatusCode <= 599) && attempt < t.maxRetries {
			if waitErr := waitWithContext(ctx, t.retryDelay(attempt+1, resp.Header.Get("Retry-After"))); waitErr != nil {
				return nil, 0, waitErr
			}
			continue
		}

		httpErr := &HTTPError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(respBody))}
		var parsed map[string]any
		if json.Unmarshal(respBody, &parsed) == nil {
			if code, ok := parsed["code"].(string); ok {
				httpErr.Code = code
			}
			if message, ok := parsed["message"].(string); ok && strings.TrimSpace(message) != "" {
				httpErr.Message = message
			}
		}
		return nil, resp.StatusCode, httpErr
	}
}

func (t *HTTPTransport) retryDelay(attempt int, retryAfterHeader string) time.Duration {
	if retryAfter := parseRetryAfterSeconds(retryAfterHeader); retryAfter > 0 {
		return min(retryAfter, t.maxDelay)
	}
	delay := t.baseDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= t.maxDelay {
			return t.maxDelay
		}
	}
	return min(delay, t.maxDelay)
}

func parseRetryAfterSeconds(header string) time.Duration {
	header = strings.TrimSpace(header)
	if header == "" {
		return 0
	}
	seconds, err := strconv.Atoi(header)
	if err != nil || seconds < 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

func waitWithContext(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
