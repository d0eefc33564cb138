package filestore

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maticamisay/eldisco-ecommerce/pkg/httpclient"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) (*Client, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		handler(w, r)
	}))
	t.Cleanup(server.Close)
	return New(Config{BaseURL: server.URL + "/", Timeout: 2 * time.Second}, testLogger(), opts...), &calls
}

func signedURLHandler(expiresIn string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"message":"ok","downloadUrl":"https://cdn.example.com/signed?sig=abc","filename":"taladro.jpg","expiresIn":` + expiresIn + `}`))
	}
}

func TestNew_Defaults(t *testing.T) {
	c := New(Config{}, testLogger())
	assert.Equal(t, DefaultBaseURL, c.cfg.BaseURL)
	assert.Equal(t, 30*time.Second, c.cfg.Timeout)
}

func TestGetImageURL_Success(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/files/taladro.jpg", r.URL.Path)
		signedURLHandler("3600")(w, r)
	})

	got, err := c.GetImageURL(context.Background(), "taladro.jpg")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/signed?sig=abc", got)
}

func TestGetDownloadURL_EscapesFilename(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/files/fotos%2Ftaladro%20azul.jpg", r.URL.EscapedPath())
		signedURLHandler("3600")(w, r)
	})

	d, err := c.GetDownloadURL(context.Background(), "fotos/taladro azul.jpg")
	require.NoError(t, err)
	assert.Equal(t, 3600, d.ExpiresIn)
}

func TestGetImageURL_MissingFilename(t *testing.T) {
	c, calls := newTestClient(t, signedURLHandler("3600"))

	_, err := c.GetImageURL(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrMissingFilename)
	assert.Zero(t, calls.Load())
}

func TestGetImageURL_UpstreamErrorMessage(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"json error", http.StatusNotFound, `{"error":"File not found"}`, "File not found"},
		{"no message", http.StatusForbidden, `{}`, "HTTP error! status: 403"},
		{"html body", http.StatusInternalServerError, `<html>oops</html>`, "HTTP error! status: 500"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := c.GetImageURL(context.Background(), "taladro.jpg")
			var fsErr *Error
			require.ErrorAs(t, err, &fsErr)
			assert.Equal(t, tt.want, fsErr.Message)
			assert.Equal(t, tt.status, fsErr.Status)
			assert.Equal(t, opGetImageURL, fsErr.Op)
			assert.False(t, errors.Is(err, ErrTimeout))
		})
	}
}

func TestGetImageURL_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	c := New(Config{BaseURL: server.URL, Timeout: 50 * time.Millisecond}, testLogger())

	_, err := c.GetImageURL(context.Background(), "taladro.jpg")
	var fsErr *Error
	require.ErrorAs(t, err, &fsErr)
	assert.ErrorIs(t, err, ErrTimeout)
	assert.Equal(t, "image URL request timed out", fsErr.Message)

	_, err = c.ListFiles(context.Background())
	require.ErrorAs(t, err, &fsErr)
	assert.ErrorIs(t, err, ErrTimeout)
	assert.Equal(t, "file list request timed out", fsErr.Message)
}

func TestGetImageURL_InvalidJSON(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	})

	_, err := c.GetImageURL(context.Background(), "taladro.jpg")
	var fsErr *Error
	require.ErrorAs(t, err, &fsErr)
	assert.Equal(t, "invalid file storage response", fsErr.Message)
}

func TestListFiles(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/files", r.URL.Path)
		_, _ = w.Write([]byte(`{"files":[{"id":"1","filename":"a.jpg","size":1024,"uploadDate":"2025-06-01T10:00:00.000Z","url":"/files/a.jpg"}]}`))
	})

	files, err := c.ListFiles(context.Background())
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "a.jpg", files[0].Filename)
	assert.Equal(t, int64(1024), files[0].Size)
}

func TestListFiles_EmptyIsNotNil(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})

	files, err := c.ListFiles(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, files)
	assert.Empty(t, files)
}

func TestClient_CircuitBreaker(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"error":"storage backend down"}`))
	}))
	defer server.Close()

	breaker := httpclient.NewCircuitBreakerClient(
		httpclient.New(httpclient.Config{Timeout: time.Second, MaxConnsPerHost: 1}),
		httpclient.CircuitBreakerConfig{Name: "filestore-test", MaxRequests: 1, Interval: time.Minute, Timeout: time.Minute, FailureRatio: 0.5, MinRequests: 1},
		testLogger(),
	)
	c := New(Config{BaseURL: server.URL, Timeout: time.Second}, testLogger(), WithDoer(breaker))

	_, err := c.GetImageURL(context.Background(), "a.jpg")
	var fsErr *Error
	require.ErrorAs(t, err, &fsErr)
	assert.Equal(t, "storage backend down", fsErr.Message)
	assert.Equal(t, http.StatusBadGateway, fsErr.Status)

	_, err = c.GetImageURL(context.Background(), "a.jpg")
	require.ErrorAs(t, err, &fsErr)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, "file storage unavailable", fsErr.Message)
}

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestClient_CachesSignedURL(t *testing.T) {
	mr, rdb := newRedis(t)
	c, calls := newTestClient(t, signedURLHandler("3600"), WithCache(NewRedisCache(rdb, 30*time.Second)))
	ctx := context.Background()

	first, err := c.GetDownloadURL(ctx, "taladro.jpg")
	require.NoError(t, err)
	second, err := c.GetDownloadURL(ctx, "taladro.jpg")
	require.NoError(t, err)

	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, first.DownloadURL, second.DownloadURL)
	assert.Equal(t, "taladro.jpg", second.Filename)
	assert.Equal(t, 3570*time.Second, mr.TTL("signed-url:taladro.jpg"))
}

func TestClient_ShortLivedURLNotCached(t *testing.T) {
	mr, rdb := newRedis(t)
	c, calls := newTestClient(t, signedURLHandler("20"), WithCache(NewRedisCache(rdb, 30*time.Second)))
	ctx := context.Background()

	_, err := c.GetImageURL(ctx, "taladro.jpg")
	require.NoError(t, err)
	_, err = c.GetImageURL(ctx, "taladro.jpg")
	require.NoError(t, err)

	assert.Equal(t, int32(2), calls.Load())
	assert.False(t, mr.Exists("signed-url:taladro.jpg"))
}

func TestClient_CacheFaultIsBypassed(t *testing.T) {
	mr, rdb := newRedis(t)
	c, calls := newTestClient(t, signedURLHandler("3600"), WithCache(NewRedisCache(rdb, 30*time.Second)))
	mr.Close()

	got, err := c.GetImageURL(context.Background(), "taladro.jpg")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/signed?sig=abc", got)
	assert.Equal(t, int32(1), calls.Load())
}

func TestRedisCache_Get(t *testing.T) {
	mr, rdb := newRedis(t)
	cache := NewRedisCache(rdb, 0)
	ctx := context.Background()

	_, _, ok, err := cache.Get(ctx, "missing.jpg")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, cache.Set(ctx, "a.jpg", "https://signed", time.Minute))
	url, ttl, ok, err := cache.Get(ctx, "a.jpg")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "https://signed", url)
	assert.Equal(t, time.Minute, ttl)

	mr.FastForward(2 * time.Minute)
	_, _, ok, err = cache.Get(ctx, "a.jpg")
	require.NoError(t, err)
	assert.False(t, ok)
}
