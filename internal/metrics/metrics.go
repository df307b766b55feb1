// Package metrics 注册业务与 HTTP 指标。
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "monuchai"

// 结果标签
const (
	OutcomeOK       = "ok"
	OutcomeFailed   = "failed"
	OutcomeMismatch = "mismatch"
	OutcomeExpired  = "expired"
	OutcomeRejected = "rejected"
)

// Registry 指标注册表
type Registry struct {
	reg *prometheus.Registry

	httpRequests      *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
	ordersCreated     *prometheus.CounterVec
	otpDispatch       *prometheus.CounterVec
	otpVerify         *prometheus.CounterVec
	statusTransitions *prometheus.CounterVec
	rateLimited       *prometheus.CounterVec
}

// New 创建并注册全部指标
func New() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		ordersCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_created_total",
			Help:      "Orders committed, by payment method.",
		}, []string{"payment_method"}),
		otpDispatch: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "otp",
			Name:      "dispatch_total",
			Help:      "Verification code dispatch attempts by outcome.",
		}, []string{"outcome"}),
		otpVerify: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "otp",
			Name:      "verify_total",
			Help:      "Verification code checks by outcome.",
		}, []string{"outcome"}),
		statusTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "order",
			Name:      "status_transitions_total",
			Help:      "Admin order status transitions.",
		}, []string{"from", "to"}),
		rateLimited: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_total",
			Help:      "Requests refused by rate limiting, by rule.",
		}, []string{"rule"}),
	}
	r.reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.httpRequests,
		r.httpDuration,
		r.ordersCreated,
		r.otpDispatch,
		r.otpVerify,
		r.statusTransitions,
		r.rateLimited,
	)
	return r
}

var (
	defaultOnce sync.Once
	defaultReg  *Registry
)

// Default 进程级默认注册表
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultReg = New()
	})
	return defaultReg
}

// Handler 暴露 /metrics
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{Registry: r.reg})
}

// Gatherer 返回底层 Gatherer，便于测试
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}

// ObserveHTTP 记录一次 HTTP 请求
func (r *Registry) ObserveHTTP(route, method string, status int, elapsed time.Duration) {
	if r == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	r.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	r.httpDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

// OrderCreated 记录订单落库
func (r *Registry) OrderCreated(paymentMethod string) {
	if r == nil {
		return
	}
	r.ordersCreated.WithLabelValues(paymentMethod).Inc()
}

// OtpDispatched 记录验证码发送结果
func (r *Registry) OtpDispatched(outcome string) {
	if r == nil {
		return
	}
	r.otpDispatch.WithLabelValues(outcome).Inc()
}

// OtpVerified 记录验证码校验结果
func (r *Registry) OtpVerified(outcome string) {
	if r == nil {
		return
	}
	r.otpVerify.WithLabelValues(outcome).Inc()
}

// StatusTransition 记录订单状态流转
func (r *Registry) StatusTransition(from, to string) {
	if r == nil {
		return
	}
	r.statusTransitions.WithLabelValues(from, to).Inc()
}

// RateLimited 记录被限流的请求
func (r *Registry) RateLimited(rule string) {
	if r == nil {
		return
	}
	r.rateLimited.WithLabelValues(rule).Inc()
}
