package ptero_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/fivetwenty-io/ptero/pkg/ptero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingLogger struct {
	mu      sync.Mutex
	entries []string
}

func (l *recordingLogger) add(level, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = append(l.entries, level+": "+msg)
}

func (l *recordingLogger) Debug(msg string, _ map[string]interface{}) { l.add("debug", msg) }
func (l *recordingLogger) Info(msg string, _ map[string]interface{})  { l.add("info", msg) }
func (l *recordingLogger) Warn(msg string, _ map[string]interface{})  { l.add("warn", msg) }
func (l *recordingLogger) Error(msg string, _ map[string]interface{}) { l.add("error", msg) }

func TestInterceptorChain_Order(t *testing.T) {
	t.Parallel()

	var calls []string

	chain := ptero.NewInterceptorChain().
		AddRequestInterceptor(func(context.Context, *ptero.Request) error {
			calls = append(calls, "first")

			return nil
		}).
		AddRequestInterceptor(ptero.HeaderInterceptor(map[string]string{"X-Trace": "abc"})).
		AddRequestInterceptor(func(_ context.Context, req *ptero.Request) error {
			calls = append(calls, "third:"+req.Headers.Get("X-Trace"))

			return nil
		})

	req := &ptero.Request{Method: http.MethodGet, Path: "/api/client"}
	require.NoError(t, chain.ExecuteRequestInterceptors(context.Background(), req))

	assert.Equal(t, []string{"first", "third:abc"}, calls)
	assert.Equal(t, 3, chain.Len())
}

func TestInterceptorChain_StopsOnError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	called := false

	chain := ptero.NewInterceptorChain().
		AddResponseInterceptor(func(context.Context, *ptero.Request, *ptero.Response) error {
			return boom
		}).
		AddResponseInterceptor(func(context.Context, *ptero.Request, *ptero.Response) error {
			called = true

			return nil
		})

	err := chain.ExecuteResponseInterceptors(context.Background(), &ptero.Request{}, &ptero.Response{})
	require.ErrorIs(t, err, boom)
	assert.False(t, called)

	var nilChain *ptero.InterceptorChain

	require.NoError(t, nilChain.ExecuteRequestInterceptors(context.Background(), &ptero.Request{}))
	assert.Equal(t, 0, nilChain.Len())
}

func TestLoggingInterceptors(t *testing.T) {
	t.Parallel()

	logger := &recordingLogger{}
	req := &ptero.Request{Method: http.MethodGet, Path: "/api/client/account"}

	require.NoError(t, ptero.LoggingInterceptor(logger)(context.Background(), req))

	respond := ptero.LoggingResponseInterceptor(logger)
	require.NoError(t, respond(context.Background(), req, &ptero.Response{StatusCode: http.StatusOK}))
	require.NoError(t, respond(context.Background(), req, &ptero.Response{StatusCode: http.StatusNotFound}))
	require.NoError(t, respond(context.Background(), req, &ptero.Response{Error: errors.New("refused")}))

	require.NoError(t, respond(context.Background(), req, &ptero.Response{StatusCode: http.StatusTooManyRequests}))

	assert.Equal(t, []string{
		"debug: panel request",
		"debug: panel response",
		"warn: panel returned an error",
		"error: panel request failed",
		"warn: panel rate limit reached",
	}, logger.entries)
}

func TestMetricsCollector(t *testing.T) {
	t.Parallel()

	collector := ptero.NewMetricsCollector()
	chain := ptero.NewInterceptorChain().WithMetrics(collector)

	var changes int

	collector.SetOnChange(func(string, ptero.Metrics) { changes++ })

	for index, status := range []int{http.StatusOK, http.StatusTooManyRequests, http.StatusInternalServerError} {
		req := &ptero.Request{Route: "GetUser", Method: http.MethodGet, Path: fmt.Sprintf("/api/application/users/%d", index+1)}
		require.NoError(t, chain.ExecuteRequestInterceptors(context.Background(), req))
		require.NoError(t, chain.ExecuteResponseInterceptors(context.Background(), req, &ptero.Response{StatusCode: status}))
	}

	metrics, ok := collector.GetMetrics("GetUser")
	require.True(t, ok)
	assert.Equal(t, int64(3), metrics.TotalRequests)
	assert.Equal(t, int64(2), metrics.TotalErrors)
	assert.Equal(t, int64(1), metrics.RateLimited)
	assert.False(t, metrics.LastRequestTime.IsZero())
	assert.Equal(t, 3, changes)
	assert.Equal(t, []string{"GetUser"}, collector.Endpoints())

	_, ok = collector.GetMetrics("GET /api/application/users/1")
	assert.False(t, ok)

	unrouted := &ptero.Request{Method: http.MethodGet, Path: "/api/client"}
	require.NoError(t, chain.ExecuteResponseInterceptors(context.Background(), unrouted, &ptero.Response{StatusCode: http.StatusOK}))

	_, ok = collector.GetMetrics("GET /api/client")
	assert.True(t, ok)
}

func TestThrottle(t *testing.T) {
	t.Parallel()

	var unset *ptero.Throttle
	require.NoError(t, unset.Wait(context.Background()))

	disabled := ptero.NewThrottle(0)
	for range 5 {
		require.NoError(t, disabled.Wait(context.Background()))
	}

	throttle := ptero.NewThrottle(60)
	require.NoError(t, throttle.Wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := ptero.RateLimitInterceptor(throttle)(ctx, &ptero.Request{})
	require.Error(t, err)
	assert.Less(t, time.Since(start), 500*time.Millisecond)

	cancelled, cancelNow := context.WithCancel(context.Background())
	cancelNow()
	require.ErrorIs(t, throttle.Wait(cancelled), context.Canceled)
}

func TestThrottle_Spacing(t *testing.T) {
	t.Parallel()

	throttle := ptero.NewThrottle(3000)
	start := time.Now()

	for range 3 {
		require.NoError(t, throttle.Wait(context.Background()))
	}

	assert.GreaterOrEqual(t, time.Since(start), 35*time.Millisecond)
}
