package fetcher

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFetcher() *HTTPFetcher {
	return NewHTTPFetcher(HTTPOptions{
		UserAgent:   "mineralboard-test",
		Timeout:     5 * time.Second,
		MaxRetries:  3,
		RatePerSec:  200,
		BackoffBase: time.Millisecond,
	})
}

func TestHTTPFetcher_Download(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "mineralboard-test", r.Header.Get("User-Agent"))
		w.Write([]byte("mineral,scenario\nLithium,STEPS\n")) //nolint:errcheck
	}))
	defer srv.Close()

	body, err := newTestFetcher().Download(context.Background(), srv.URL+"/series.csv")
	require.NoError(t, err)
	defer body.Close() //nolint:errcheck

	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "mineral,scenario\nLithium,STEPS\n", string(data))
}

func TestHTTPFetcher_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := newTestFetcher().Download(context.Background(), srv.URL+"/missing.csv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 404")
}

func TestHTTPFetcher_RetriesServerErrors(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte("late but fine")) //nolint:errcheck
	}))
	defer srv.Close()

	body, err := newTestFetcher().Download(context.Background(), srv.URL)
	require.NoError(t, err)
	defer body.Close() //nolint:errcheck

	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "late but fine", string(data))
	assert.Equal(t, int32(3), hits.Load())
}

func TestHTTPFetcher_GivesUpAfterMaxRetries(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	f := NewHTTPFetcher(HTTPOptions{MaxRetries: 2, RatePerSec: 200, BackoffBase: time.Millisecond})
	_, err := f.Download(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gave up")
	assert.Equal(t, int32(2), hits.Load())
}

func TestHTTPFetcher_429SlowsThrottle(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte("ok")) //nolint:errcheck
	}))
	defer srv.Close()

	f := newTestFetcher()
	body, err := f.Download(context.Background(), srv.URL)
	require.NoError(t, err)
	body.Close() //nolint:errcheck

	// 200/s halved by the 429, then bumped 20% by the success.
	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	assert.InDelta(t, 120, float64(f.throttleFor(u.Host).limit()), 0.0001)
}

func TestHTTPFetcher_ThrottleSharedPerHost(t *testing.T) {
	f := newTestFetcher()

	a := f.throttleFor("stats.example.org")
	b := f.throttleFor("stats.example.org")
	c := f.throttleFor("mirror.example.org")

	assert.Same(t, a, b)
	assert.NotSame(t, a, c)
}

func TestThrottle_StaysWithinBounds(t *testing.T) {
	th := newThrottle(10, 10)

	for i := 0; i < 20; i++ {
		th.success()
	}
	assert.InDelta(t, 20, float64(th.limit()), 0.0001)

	for i := 0; i < 20; i++ {
		th.backOff()
	}
	assert.InDelta(t, 2.5, float64(th.limit()), 0.0001)
}

func TestHTTPOptions_Defaults(t *testing.T) {
	f := NewHTTPFetcher(HTTPOptions{})

	assert.Equal(t, "mineralboard/1.0", f.opts.UserAgent)
	assert.Equal(t, 30*time.Second, f.opts.Timeout)
	assert.Equal(t, 3, f.opts.MaxRetries)
	assert.InDelta(t, 2, f.opts.RatePerSec, 0.0001)
	assert.Equal(t, time.Second, f.opts.BackoffBase)
}

func TestHTTPFetcher_DownloadIfChanged(t *testing.T) {
	var fullBodies atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("If-None-Match") == `"v1"` {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", `"v1"`)
		fullBodies.Add(1)
		w.Write([]byte("fresh data")) //nolint:errcheck
	}))
	defer srv.Close()

	f := newTestFetcher()

	body, etag, changed, err := f.DownloadIfChanged(context.Background(), srv.URL, "")
	require.NoError(t, err)
	require.True(t, changed)
	data, err := io.ReadAll(body)
	require.NoError(t, err)
	require.NoError(t, body.Close())
	assert.Equal(t, "fresh data", string(data))
	assert.Equal(t, `"v1"`, etag)

	_, etag, changed, err = f.DownloadIfChanged(context.Background(), srv.URL, `"v1"`)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, `"v1"`, etag)
	assert.Equal(t, int32(1), fullBodies.Load())
}

func TestHTTPFetcher_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(100 * time.Millisecond)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestFetcher().Download(ctx, srv.URL)
	require.Error(t, err)
}
