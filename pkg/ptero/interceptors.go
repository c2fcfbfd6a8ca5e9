package ptero

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Request is the view of an outgoing request handed to interceptors. Header
// changes are applied to the request that is sent.
type Request struct {
	// Route is the route name, e.g. "GetUser".
	Route    string
	Method   string
	Path     string
	Headers  http.Header
	Body     []byte
	Metadata map[string]interface{}
}

// Response is the view of a completed exchange handed to interceptors. Error
// is set when no status code was received.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	Error      error
}

// RequestInterceptor is called before a request is sent.
type RequestInterceptor func(ctx context.Context, req *Request) error

// ResponseInterceptor is called after a response is received.
type ResponseInterceptor func(ctx context.Context, req *Request, resp *Response) error

// InterceptorChain manages a chain of interceptors.
type InterceptorChain struct {
	requestInterceptors  []RequestInterceptor
	responseInterceptors []ResponseInterceptor
}

// NewInterceptorChain creates a new interceptor chain.
func NewInterceptorChain() *InterceptorChain {
	return &InterceptorChain{
		requestInterceptors:  make([]RequestInterceptor, 0),
		responseInterceptors: make([]ResponseInterceptor, 0),
	}
}

// AddRequestInterceptor adds a request interceptor to the chain.
func (c *InterceptorChain) AddRequestInterceptor(interceptor RequestInterceptor) *InterceptorChain {
	c.requestInterceptors = append(c.requestInterceptors, interceptor)

	return c
}

// AddResponseInterceptor adds a response interceptor to the chain.
func (c *InterceptorChain) AddResponseInterceptor(interceptor ResponseInterceptor) *InterceptorChain {
	c.responseInterceptors = append(c.responseInterceptors, interceptor)

	return c
}

// Len returns the number of registered interceptors.
func (c *InterceptorChain) Len() int {
	if c == nil {
		return 0
	}

	return len(c.requestInterceptors) + len(c.responseInterceptors)
}

// ExecuteRequestInterceptors runs all request interceptors in order and stops
// at the first failure.
func (c *InterceptorChain) ExecuteRequestInterceptors(ctx context.Context, req *Request) error {
	if c == nil {
		return nil
	}

	for _, interceptor := range c.requestInterceptors {
		err := interceptor(ctx, req)
		if err != nil {
			return fmt.Errorf("request interceptor failed: %w", err)
		}
	}

	return nil
}

// ExecuteResponseInterceptors runs all response interceptors in order and
// stops at the first failure.
func (c *InterceptorChain) ExecuteResponseInterceptors(ctx context.Context, req *Request, resp *Response) error {
	if c == nil {
		return nil
	}

	for _, interceptor := range c.responseInterceptors {
		err := interceptor(ctx, req, resp)
		if err != nil {
			return fmt.Errorf("response interceptor failed: %w", err)
		}
	}

	return nil
}

// LoggingInterceptor logs requests at debug level.
func LoggingInterceptor(logger Logger) RequestInterceptor {
	return func(ctx context.Context, req *Request) error {
		logger.Debug("panel request", map[string]interface{}{
			"route":  req.Route,
			"method": req.Method,
			"path":   req.Path,
		})

		return nil
	}
}

// LoggingResponseInterceptor logs responses. Transport failures and error
// statuses are logged at error level.
func LoggingResponseInterceptor(logger Logger) ResponseInterceptor {
	return func(ctx context.Context, req *Request, resp *Response) error {
		fields := map[string]interface{}{
			"route":       req.Route,
			"method":      req.Method,
			"path":        req.Path,
			"status_code": resp.StatusCode,
		}

		switch {
		case resp.Error != nil:
			fields["error"] = resp.Error.Error()
			logger.Error("panel request failed", fields)
		case resp.StatusCode == http.StatusTooManyRequests:
			logger.Warn("panel rate limit reached", fields)
		case resp.StatusCode >= http.StatusBadRequest:
			logger.Warn("panel returned an error", fields)
		default:
			logger.Debug("panel response", fields)
		}

		return nil
	}
}

// HeaderInterceptor adds custom headers to requests.
func HeaderInterceptor(headers map[string]string) RequestInterceptor {
	return func(ctx context.Context, req *Request) error {
		if req.Headers == nil {
			req.Headers = make(http.Header)
		}

		for key, value := range headers {
			req.Headers.Set(key, value)
		}

		return nil
	}
}

// Throttle spaces requests client-side so at most requestsPerMinute are sent.
// The panel enforces its own limit; the throttle only avoids reaching it.
// A nil or disabled Throttle never blocks.
type Throttle struct {
	limiter *rate.Limiter
}

// NewThrottle creates a throttle. A non-positive rate disables it.
func NewThrottle(requestsPerMinute int) *Throttle {
	if requestsPerMinute <= 0 {
		return &Throttle{}
	}

	return &Throttle{limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), 1)}
}

// Wait blocks until the next request may be sent. It fails at once when ctx
// is done or its deadline comes before the next slot.
func (t *Throttle) Wait(ctx context.Context) error {
	if t == nil || t.limiter == nil {
		return nil
	}

	err := t.limiter.Wait(ctx)
	if err != nil {
		return fmt.Errorf("waiting for request slot: %w", err)
	}

	return nil
}

// RateLimitInterceptor waits on throttle before every request.
func RateLimitInterceptor(throttle *Throttle) RequestInterceptor {
	return func(ctx context.Context, req *Request) error {
		return throttle.Wait(ctx)
	}
}

// Metrics are the counters of one route.
type Metrics struct {
	TotalRequests   int64
	TotalErrors     int64
	RateLimited     int64
	TotalLatency    time.Duration
	AverageLatency  time.Duration
	LastRequestTime time.Time
}

// MetricsCollector collects metrics per route name, so requests for
// different IDs share one entry. Requests without a route are keyed
// "METHOD /path". It is safe for concurrent use.
type MetricsCollector struct {
	mu       sync.Mutex
	metrics  map[string]*Metrics
	onChange func(endpoint string, metrics Metrics)
}

// NewMetricsCollector creates a new metrics collector.
func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{
		metrics: make(map[string]*Metrics),
	}
}

// SetOnChange sets a callback for when metrics change.
func (m *MetricsCollector) SetOnChange(fn func(endpoint string, metrics Metrics)) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.onChange = fn
}

// GetMetrics returns a snapshot of the metrics of endpoint.
func (m *MetricsCollector) GetMetrics(endpoint string) (Metrics, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	metrics, ok := m.metrics[endpoint]
	if !ok {
		return Metrics{}, false
	}

	return *metrics, true
}

// Endpoints returns the endpoints seen so far.
func (m *MetricsCollector) Endpoints() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	endpoints := make([]string, 0, len(m.metrics))
	for endpoint := range m.metrics {
		endpoints = append(endpoints, endpoint)
	}

	return endpoints
}

func (m *MetricsCollector) record(endpoint string, resp *Response, latency time.Duration, measured bool) {
	m.mu.Lock()

	metrics, ok := m.metrics[endpoint]
	if !ok {
		metrics = &Metrics{}
		m.metrics[endpoint] = metrics
	}

	metrics.TotalRequests++
	metrics.LastRequestTime = time.Now()

	if measured {
		metrics.TotalLatency += latency
		metrics.AverageLatency = metrics.TotalLatency / time.Duration(metrics.TotalRequests)
	}

	if resp.Error != nil || resp.StatusCode >= http.StatusBadRequest {
		metrics.TotalErrors++
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		metrics.RateLimited++
	}

	snapshot := *metrics
	onChange := m.onChange

	m.mu.Unlock()

	if onChange != nil {
		onChange(endpoint, snapshot)
	}
}

const metricsStartKey = "start_time"

// MetricsRequestInterceptor records request start time.
func MetricsRequestInterceptor(collector *MetricsCollector) RequestInterceptor {
	return func(ctx context.Context, req *Request) error {
		if req.Metadata == nil {
			req.Metadata = make(map[string]interface{})
		}

		req.Metadata[metricsStartKey] = time.Now()

		return nil
	}
}

// MetricsResponseInterceptor records response metrics.
func MetricsResponseInterceptor(collector *MetricsCollector) ResponseInterceptor {
	return func(ctx context.Context, req *Request, resp *Response) error {
		endpoint := req.Route
		if endpoint == "" {
			endpoint = req.Method + " " + req.Path
		}

		var (
			latency  time.Duration
			measured bool
		)

		if startTime, ok := req.Metadata[metricsStartKey].(time.Time); ok {
			latency = time.Since(startTime)
			measured = true
		}

		collector.record(endpoint, resp, latency, measured)

		return nil
	}
}

// WithMetrics registers both metrics interceptors on the chain.
func (c *InterceptorChain) WithMetrics(collector *MetricsCollector) *InterceptorChain {
	return c.AddRequestInterceptor(MetricsRequestInterceptor(collector)).
		AddResponseInterceptor(MetricsResponseInterceptor(collector))
}
