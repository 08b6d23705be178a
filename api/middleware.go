package api

import (
	"context"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/cors"

	"github.com/zihgir1/BEVM/common"
	"github.com/zihgir1/BEVM/log"
	"github.com/zihgir1/BEVM/metrics"
)

var (
	defaultLimit = uint64(100)
	maxLimit     = uint64(1000)
)

// normalizeEndpoint removes all unique identifiers from the URL in order to
// make it possible to group the Prometheus metrics nicely.
func normalizeEndpoint(url string) string {
	var nels []string

	els := strings.Split(url, "/")
	for _, e := range els {
		// Identifiers are hashes or integers; profile names are a closed
		// set and stay as they are.
		isTooLong := len(e) >= 32
		isInt := len(e) > 0 && strings.IndexFunc(e, func(c rune) bool { return c < '0' || c > '9' }) == -1
		if isTooLong || isInt {
			nels = append(nels, "*")
		} else {
			nels = append(nels, e)
		}
	}

	return strings.Join(nels, "/")
}

// MetricsMiddleware is a middleware that measures the start and end of each request,
// as well as other useful request information.
// It should be used as the outermost middleware, so it can
// - set a requestID and make it available to all handlers and
// - observe the final HTTP status code at the end of the request.
func MetricsMiddleware(m metrics.RequestMetrics, logger *log.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := uuid.New()
			logger.Debug("starting request",
				"endpoint", r.URL.Path,
				"request_id", requestID,
			)
			metricName := normalizeEndpoint(r.URL.Path)
			timer := m.RequestTimer(metricName)

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			ww.Header().Set("x-request-id", requestID.String())
			next.ServeHTTP(ww, r.WithContext(
				context.WithValue(r.Context(), common.RequestIDContextKey, requestID),
			))

			httpStatus := ww.Status()
			if httpStatus == 0 {
				httpStatus = http.StatusOK
			}
			latency := timer.ObserveDuration()
			logger.Info("ending request",
				"query_path", r.URL.Path,
				"query_params", r.URL.RawQuery,
				"request_id", requestID,
				"latency", latency,
				"latency_bin", binQueryLatency(latency),
				"status_code", httpStatus,
			)

			statusTxt := "failure"
			cause := http.StatusText(httpStatus)
			if httpStatus >= 200 && httpStatus < 400 {
				statusTxt = "success"
				cause = ""
			} else if httpStatus >= 400 && httpStatus < 500 {
				statusTxt = "failure_4xx"
				metricName = "ignored"
			}
			// Prometheus panics on label values that are not valid UTF-8.
			if !utf8.ValidString(metricName) {
				logger.Debug("invalid metric name", "metric_name", metricName)
				metricName = "ignored"
				statusTxt = "non_utf8_path"
			}
			m.RequestCounter(metricName, statusTxt, cause).Inc()
		})
	}
}

// Bin request durations to make it easier to search
// for slow requests in logs.
func binQueryLatency(t time.Duration) string {
	switch {
	case t < 100*time.Millisecond:
		return "<100ms"
	case t < 300*time.Millisecond:
		return "100-300ms"
	case t < 500*time.Millisecond:
		return "300-500ms"
	case t < 1000*time.Millisecond:
		return "500-1000ms"
	default:
		return ">1000ms"
	}
}

// ProfileFromURLMiddleware resolves the `{profile}` URL parameter, accepting
// aliases, and stores the profile in the request context.
func ProfileFromURLMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		profile, err := common.ParseProfile(chi.URLParam(r, "profile"))
		if err != nil {
			HumanReadableJsonErrorHandler(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(
			context.WithValue(r.Context(), common.ProfileContextKey, profile),
		))
	})
}

// NewCorsMiddleware returns a restrictive CORS middleware that only allows
// GET requests. An empty origin list allows every origin.
func NewCorsMiddleware(origins []string) func(http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodGet,
		},
		AllowCredentials: false,
	}).Handler
}
