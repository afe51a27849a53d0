package httpclient

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	return Config{
		Timeout:                5 * time.Second,
		MaxRetries:             2,
		RetryWaitMin:           time.Millisecond,
		RetryWaitMax:           5 * time.Millisecond,
		RateLimit:              0,
		CircuitBreakerMax:      0,
		CircuitBreakerCooldown: time.Minute,
	}
}

func TestRetriesTransientFailures(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, `{"q":1}`, string(body))
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	c := New(testConfig(), nil)
	resp, err := c.Post(context.Background(), srv.URL, "application/json", strings.NewReader(`{"q":1}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestDoesNotRetryRateLimit(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := New(testConfig(), nil)
	resp, err := c.Post(context.Background(), srv.URL, "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestExhaustedRetriesReturnLastResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("bad gateway"))
	}))
	defer srv.Close()

	c := New(testConfig(), nil)
	resp, err := c.Post(context.Background(), srv.URL, "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, "bad gateway", string(body))
}

func TestCircuitBreakerOpensAndRecovers(t *testing.T) {
	var healthy atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if healthy.Load() {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	log, hook := test.NewNullLogger()
	cfg := testConfig()
	cfg.MaxRetries = 0
	cfg.CircuitBreakerMax = 2
	c := New(cfg, logrus.NewEntry(log))

	now := time.Now()
	c.now = func() time.Time { return now }

	for i := 0; i < 2; i++ {
		resp, err := c.Post(context.Background(), srv.URL, "application/json", strings.NewReader(`{}`))
		require.NoError(t, err)
		resp.Body.Close()
	}

	_, err := c.Post(context.Background(), srv.URL, "application/json", strings.NewReader(`{}`))
	assert.ErrorIs(t, err, ErrCircuitOpen)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "Circuit breaker opened", hook.LastEntry().Message)

	healthy.Store(true)
	now = now.Add(2 * time.Minute)

	resp, err := c.Post(context.Background(), srv.URL, "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = c.Post(context.Background(), srv.URL, "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	resp.Body.Close()
}

func TestCancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := New(testConfig(), nil)
	_, err := c.Post(ctx, srv.URL, "application/json", strings.NewReader(`{}`))
	assert.Error(t, err)
}

func TestRetryPolicy(t *testing.T) {
	ctx := context.Background()
	for code, want := range map[int]bool{
		http.StatusTooManyRequests:     false,
		http.StatusBadRequest:          false,
		http.StatusInternalServerError: true,
		http.StatusBadGateway:          true,
		http.StatusServiceUnavailable:  true,
		http.StatusGatewayTimeout:      true,
		http.StatusOK:                  false,
	} {
		retry, err := RetryPolicy(ctx, &http.Response{StatusCode: code}, nil)
		assert.NoError(t, err)
		assert.Equal(t, want, retry, "status %d", code)
	}

	retry, _ := RetryPolicy(ctx, nil, io.ErrUnexpectedEOF)
	assert.True(t, retry)
}

func TestConnectionRetryPolicy(t *testing.T) {
	ctx := context.Background()
	for _, code := range []int{http.StatusOK, http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusServiceUnavailable} {
		retry, err := ConnectionRetryPolicy(ctx, &http.Response{StatusCode: code}, nil)
		assert.NoError(t, err)
		assert.False(t, retry, "status %d", code)
	}

	retry, _ := ConnectionRetryPolicy(ctx, nil, io.ErrUnexpectedEOF)
	assert.True(t, retry)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	retry, err := ConnectionRetryPolicy(cancelled, nil, io.ErrUnexpectedEOF)
	assert.False(t, retry)
	assert.ErrorIs(t, err, context.Canceled)
}
