package fetcher

import (
	"context"
	"io"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// HTTPOptions configures the HTTP fetcher.
type HTTPOptions struct {
	UserAgent   string
	Timeout     time.Duration
	MaxRetries  int
	RatePerSec  float64       // per-host request rate, default 2
	BackoffBase time.Duration // first retry delay, default 1s
}

func (o HTTPOptions) withDefaults() HTTPOptions {
	if o.UserAgent == "" {
		o.UserAgent = "mineralboard/1.0"
	}
	if o.Timeout == 0 {
		o.Timeout = 30 * time.Second
	}
	if o.MaxRetries == 0 {
		o.MaxRetries = 3
	}
	if o.RatePerSec == 0 {
		o.RatePerSec = 2
	}
	if o.BackoffBase == 0 {
		o.BackoffBase = time.Second
	}
	return o
}

// throttle is a per-host request governor. It starts at the configured rate,
// drops toward a quarter of it whenever the host answers 429, and creeps back
// up by 20% per success until it reaches double the configured rate.
type throttle struct {
	limiter *rate.Limiter

	mu      sync.Mutex
	current rate.Limit
	floor   rate.Limit
	ceiling rate.Limit
}

func newThrottle(perSec rate.Limit, burst int) *throttle {
	return &throttle{
		limiter: rate.NewLimiter(perSec, burst),
		current: perSec,
		floor:   perSec / 4,
		ceiling: perSec * 2,
	}
}

func (t *throttle) wait(ctx context.Context) error { return t.limiter.Wait(ctx) }

func (t *throttle) success() { t.adjust(1.2) }

func (t *throttle) backOff() { t.adjust(0.5) }

func (t *throttle) adjust(factor float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	next := t.current * rate.Limit(factor)
	if next > t.ceiling {
		next = t.ceiling
	}
	if next < t.floor {
		next = t.floor
	}
	t.current = next
	t.limiter.SetLimit(next)
}

func (t *throttle) limit() rate.Limit {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}

// HTTPFetcher implements Fetcher over net/http with retries, exponential
// backoff, and a self-tuning per-host rate limit. Statistical portals tend
// to rate-limit aggressively, so a 429 slows the throttle down before the
// next attempt.
type HTTPFetcher struct {
	client *http.Client
	opts   HTTPOptions

	mu        sync.Mutex
	throttles map[string]*throttle
}

// NewHTTPFetcher creates an HTTP fetcher, filling unset options with defaults.
func NewHTTPFetcher(opts HTTPOptions) *HTTPFetcher {
	opts = opts.withDefaults()
	return &HTTPFetcher{
		client: &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				MaxConnsPerHost:     20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		opts:      opts,
		throttles: make(map[string]*throttle),
	}
}

func (f *HTTPFetcher) throttleFor(host string) *throttle {
	f.mu.Lock()
	defer f.mu.Unlock()
	th, ok := f.throttles[host]
	if !ok {
		burst := int(f.opts.RatePerSec)
		if burst < 1 {
			burst = 1
		}
		th = newThrottle(rate.Limit(f.opts.RatePerSec), burst)
		f.throttles[host] = th
	}
	return th
}

// get runs one GET with retries. An etag, when given, goes out as
// If-None-Match so the server can answer 304 instead of resending the file.
// 429 and 5xx answers are retried after an exponential backoff with jitter;
// every other response is returned to the caller as-is.
func (f *HTTPFetcher) get(ctx context.Context, rawURL, etag string) (*http.Response, error) {
	var lastErr error
	for attempt := 0; attempt < f.opts.MaxRetries; attempt++ {
		if attempt > 0 {
			if err := sleepBackoff(ctx, f.opts.BackoffBase, attempt-1); err != nil {
				return nil, err
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, eris.Wrapf(err, "fetcher: build request for %s", rawURL)
		}
		req.Header.Set("User-Agent", f.opts.UserAgent)
		if etag != "" {
			req.Header.Set("If-None-Match", etag)
		}

		th := f.throttleFor(req.URL.Host)
		if err := th.wait(ctx); err != nil {
			return nil, eris.Wrap(err, "fetcher: wait for throttle")
		}

		resp, err := f.client.Do(req)
		switch {
		case err != nil:
			lastErr = err
		case resp.StatusCode == http.StatusTooManyRequests:
			resp.Body.Close() //nolint:errcheck
			th.backOff()
			lastErr = eris.Errorf("fetcher: %s answered 429", req.URL.Host)
		case resp.StatusCode >= 500:
			resp.Body.Close() //nolint:errcheck
			lastErr = eris.Errorf("fetcher: %s answered %d", req.URL.Host, resp.StatusCode)
		default:
			th.success()
			return resp, nil
		}

		zap.L().Warn("fetch attempt failed",
			zap.String("url", rawURL),
			zap.Int("attempt", attempt+1),
			zap.Error(lastErr),
		)
	}
	return nil, eris.Wrapf(lastErr, "fetcher: gave up on %s after %d attempts", rawURL, f.opts.MaxRetries)
}

// sleepBackoff waits out the delay before retry number retry (zero-based):
// base doubled per retry, capped at 30s, plus up to 50% jitter.
func sleepBackoff(ctx context.Context, base time.Duration, retry int) error {
	const ceiling = 30 * time.Second
	d := base << retry
	if d <= 0 || d > ceiling {
		d = ceiling
	}
	d += time.Duration(rand.Int63n(int64(d)/2 + 1))

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return eris.Wrap(ctx.Err(), "fetcher: backoff interrupted")
	case <-timer.C:
		return nil
	}
}

// Download fetches the URL and returns the response body.
func (f *HTTPFetcher) Download(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	resp, err := f.get(ctx, rawURL, "")
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close() //nolint:errcheck
		return nil, eris.Errorf("fetcher: unexpected status %d from %s", resp.StatusCode, rawURL)
	}
	return resp.Body, nil
}

// DownloadIfChanged fetches the URL unless the server still holds the copy
// identified by etag.
func (f *HTTPFetcher) DownloadIfChanged(ctx context.Context, rawURL, etag string) (io.ReadCloser, string, bool, error) {
	resp, err := f.get(ctx, rawURL, etag)
	if err != nil {
		return nil, "", false, err
	}
	if resp.StatusCode == http.StatusNotModified {
		resp.Body.Close() //nolint:errcheck
		return nil, etag, false, nil
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close() //nolint:errcheck
		return nil, "", false, eris.Errorf("fetcher: unexpected status %d from %s", resp.StatusCode, rawURL)
	}
	return resp.Body, resp.Header.Get("ETag"), true, nil
}
