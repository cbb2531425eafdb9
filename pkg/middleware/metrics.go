package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pdv_http_requests_total",
		Help: "Total de requisições HTTP por rota e status",
	}, []string{"method", "route", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pdv_http_request_duration_seconds",
		Help:    "Duração das requisições HTTP por rota",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
)

// Metrics mede a rota pelo padrão registrado, não pelo caminho concreto
func Metrics(method, route string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			srw := newStatusResponseWriter(w)
			start := time.Now()

			next.ServeHTTP(srw, r)

			HTTPRequestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
			HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(srw.statusCode)).Inc()
		})
	}
}
