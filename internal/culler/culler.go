// Package culler checks saved item URLs for dead links.
package culler

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/nikbrunner/shelf/internal/model"
)

// Status represents the health status of a URL.
type Status int

const (
	Healthy     Status = iota // 2xx or 3xx response
	Dead                      // 404 or 410 Gone
	Unreachable               // timeout, DNS failure, connection refused, etc.
)

func (s Status) String() string {
	switch s {
	case Healthy:
		return "ok"
	case Dead:
		return "dead"
	default:
		return "unreachable"
	}
}

// Result holds the check result for a single item.
type Result struct {
	Item       model.TaggedItem
	Status     Status
	StatusCode int    // HTTP status code (0 if connection failed)
	Error      string // Error message for unreachable URLs
}

// ProgressFunc is called after each URL is checked.
// completed is the number of URLs checked so far, total is the total count.
type ProgressFunc func(completed, total int)

// Options configures CheckURLs.
type Options struct {
	Concurrency int
	Timeout     time.Duration
	// ExcludeDomains lists domains where 404s are treated as "possibly
	// private" instead of dead.
	ExcludeDomains []string
	OnProgress     ProgressFunc
	// Client overrides the HTTP client; Timeout is ignored when set.
	Client *http.Client
}

// CheckURLs checks all item URLs concurrently. Results keep input order.
// Items not reached before ctx is done are reported as Unreachable.
func CheckURLs(ctx context.Context, items []model.TaggedItem, opts Options) []Result {
	if len(items) == 0 {
		return nil
	}

	excludeMap := make(map[string]bool)
	for _, domain := range opts.ExcludeDomains {
		excludeMap[strings.ToLower(domain)] = true
	}

	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = 10
	}
	client := opts.Client
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		client = &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				// Follow redirects but limit to 10
				if len(via) >= 10 {
					return http.ErrUseLastResponse
				}
				return nil
			},
		}
	}

	results := make([]Result, len(items))
	jobs := make(chan int, len(items))
	var wg sync.WaitGroup

	var progressMu sync.Mutex
	completed := 0

	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				results[idx] = checkURL(ctx, client, items[idx], excludeMap)

				if opts.OnProgress != nil {
					progressMu.Lock()
					completed++
					opts.OnProgress(completed, len(items))
					progressMu.Unlock()
				}
			}
		}()
	}

	for i := range items {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	return results
}

// DeadResults returns the results with status Dead.
func DeadResults(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if r.Status == Dead {
			out = append(out, r)
		}
	}
	return out
}

func checkURL(ctx context.Context, client *http.Client, item model.TaggedItem, excludeMap map[string]bool) Result {
	result := Result{Item: item}
	if err := ctx.Err(); err != nil {
		result.Status = Unreachable
		result.Error = "Cancelled"
		return result
	}

	// HEAD first, GET as fallback for servers that reject HEAD
	resp, err := do(ctx, client, http.MethodHead, item.Item.URL)
	if err != nil || resp.StatusCode == http.StatusMethodNotAllowed {
		if resp != nil {
			resp.Body.Close()
		}
		resp, err = do(ctx, client, http.MethodGet, item.Item.URL)
		if err != nil {
			result.Status = Unreachable
			result.Error = normalizeError(err.Error())
			return result
		}
	}
	defer resp.Body.Close()

	result.StatusCode = resp.StatusCode

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 400:
		result.Status = Healthy
	case resp.StatusCode == 404 || resp.StatusCode == 410:
		// Private repos and similar pages answer 404 without auth
		if isExcludedDomain(item.Item.URL, excludeMap) {
			result.Status = Unreachable
			result.Error = "Possibly private (auth required)"
		} else {
			result.Status = Dead
		}
	default:
		// 5xx, 403 and friends may be temporary or auth-gated
		result.Status = Unreachable
		result.Error = http.StatusText(resp.StatusCode)
	}

	return result
}

func do(ctx context.Context, client *http.Client, method, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return nil, err
	}
	return client.Do(req)
}

// isExcludedDomain checks if the URL's host or a parent domain is excluded.
func isExcludedDomain(rawURL string, excludeMap map[string]bool) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(parsed.Hostname())
	if excludeMap[host] {
		return true
	}
	for domain := range excludeMap {
		if strings.HasSuffix(host, "."+domain) {
			return true
		}
	}
	return false
}

// normalizeError simplifies verbose error messages into readable categories.
func normalizeError(errStr string) string {
	lower := strings.ToLower(errStr)

	switch {
	case strings.Contains(lower, "no such host"):
		return "DNS failure"
	case strings.Contains(lower, "context deadline exceeded"),
		strings.Contains(lower, "timeout"):
		return "Timeout"
	case strings.Contains(lower, "context canceled"):
		return "Cancelled"
	case strings.Contains(lower, "connection refused"):
		return "Connection refused"
	case strings.Contains(lower, "certificate"):
		return "TLS/certificate error"
	case strings.Contains(lower, "network is unreachable"):
		return "Network unreachable"
	case strings.Contains(lower, "tls:"):
		return "TLS error"
	default:
		return errStr
	}
}
