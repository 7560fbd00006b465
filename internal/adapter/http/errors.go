package adapthttp

import (
	"context"
	"errors"
	"net/http"

	"careportal/internal/app"
	"careportal/internal/domain"

	log "github.com/sirupsen/logrus"
)

const sessionExpiredMessage = "Your session has expired or your account no longer exists. Please log in again."

// writeServiceError maps an application error to its HTTP answer. Upstream
// auth failures also end the local session.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	logger := log.WithField("request_id", requestID(r.Context())).WithError(err)

	var ve *app.ValidationError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": ve.Error(), "field": ve.Field})
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, domain.ErrAuthExpired):
		s.metrics.CounterBackendErrors.WithLabelValues("auth_expired").Inc()
		if sess := sessionFrom(r.Context()); sess != nil && sess.Token != "" {
			if lerr := s.svc.Auth.Logout(r.Context(), sess.Token); lerr != nil {
				logger.WithField("logout_error", lerr).Warn("drop expired session")
			}
		}
		clearSessionCookie(w)
		writeError(w, http.StatusUnauthorized, sessionExpiredMessage)
	case errors.Is(err, context.Canceled):
		// client went away; nothing is listening for the answer
		logger.Debug("request cancelled")
	case errors.Is(err, domain.ErrBackendUnavailable), errors.Is(err, context.DeadlineExceeded):
		s.metrics.CounterBackendErrors.WithLabelValues("unavailable").Inc()
		logger.Error("backend call failed")
		writeError(w, http.StatusBadGateway, "the data service is unavailable, please try again later")
	default:
		s.metrics.CounterBackendErrors.WithLabelValues("internal").Inc()
		logger.Error("request failed")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
