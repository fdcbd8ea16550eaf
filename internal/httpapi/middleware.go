package httpapi

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"shopium/payments-service/internal/metrics"
)

type contextKey string

const subjectKey contextKey = "subject"

// SubjectFromContext returns the authenticated subject identifier, when the
// authority reported one.
func SubjectFromContext(ctx context.Context) (string, bool) {
	subject, ok := ctx.Value(subjectKey).(string)
	return subject, ok
}

// requireAuth gates a route behind the identity authority. Authorization
// always completes before the handler runs; invalid tokens and an
// unreachable authority both come back as a bare 401, but the logs tell
// them apart.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			metrics.AuthRejections.WithLabelValues("missing_token").Inc()
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		valid, err := s.auth.ValidateToken(r.Context(), token)
		if err != nil {
			s.logger.Error("identity authority unreachable", "path", r.URL.Path, "err", err)
			metrics.AuthRejections.WithLabelValues("authority_unreachable").Inc()
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if !valid {
			s.logger.Info("rejected invalid token", "path", r.URL.Path)
			metrics.AuthRejections.WithLabelValues("invalid_token").Inc()
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		// Best effort; handlers only use the subject for log enrichment.
		if subject, err := s.auth.ResolveSubject(r.Context(), token); err == nil && subject != "" {
			r = r.WithContext(context.WithValue(r.Context(), subjectKey, subject))
		}

		next(w, r)
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || token == "" {
		return "", false
	}
	return token, true
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func withRequestMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(rec, r)

		endpoint := r.Pattern
		if endpoint == "" {
			endpoint = "unmatched"
		}
		metrics.HTTPRequestDuration.
			WithLabelValues(r.Method, endpoint, strconv.Itoa(rec.status)).
			Observe(time.Since(start).Seconds())
	})
}
