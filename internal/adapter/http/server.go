// Package adapthttp implements the HTTP adapter for the application.
package adapthttp

import (
	"context"
	"net/http"

	"careportal/internal/app"
	"careportal/internal/domain"
	"careportal/internal/metrics"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

// Services bundles the application services the server routes to.
type Services struct {
	Auth        *app.AuthService
	Weight      *app.WeightService
	Dashboard   *app.DashboardService
	Shipments   *app.ShipmentService
	Medications *app.MedicationService
	Profile     *app.ProfileService
}

type oidcConfig struct {
	Enabled      bool
	OAuth2Config *oauth2.Config
	Provider     *oidc.Provider
}

// Server is the driving HTTP adapter that routes requests to application
// services.
type Server struct {
	svc    Services
	webDir string
	ping   func(context.Context) error

	oidcConfig oidcConfig
	metrics    *metrics.Manager
	gatherer   prometheus.Gatherer
	metricPath string

	// disabled auth serves every request as this session
	disableAuth      bool
	localSession     *domain.Session
	trustForwardAuth bool
}

// New creates a Server wired to the given application services.
func New(svc Services, webDir string) *Server {
	return &Server{
		svc:     svc,
		webDir:  webDir,
		metrics: metrics.NewManager("careportal", "server", prometheus.NewRegistry()),
	}
}

// WithOIDC enables SSO login through provider.
func (s *Server) WithOIDC(provider *oidc.Provider, cfg *oauth2.Config) *Server {
	s.oidcConfig = oidcConfig{Enabled: true, OAuth2Config: cfg, Provider: provider}
	return s
}

// WithMetrics records request metrics in m and serves g on path.
func (s *Server) WithMetrics(m *metrics.Manager, g prometheus.Gatherer, path string) *Server {
	s.metrics = m
	s.gatherer = g
	s.metricPath = path
	return s
}

// WithHealthCheck makes /api/health report ping failures as 503.
func (s *Server) WithHealthCheck(ping func(context.Context) error) *Server {
	s.ping = ping
	return s
}

// WithForwardAuth trusts the Remote-User header set by an authenticating
// reverse proxy.
func (s *Server) WithForwardAuth() *Server {
	s.trustForwardAuth = true
	return s
}

// WithoutAuth disables authentication; every request acts as userID.
func (s *Server) WithoutAuth(userID string) *Server {
	s.disableAuth = true
	s.localSession = &domain.Session{UserID: userID}
	return s
}

// Handler returns the root http.Handler for the application.
func (s *Server) Handler() http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("GET /health", s.handleHealth)
	api.HandleFunc("GET /config", s.handleConfig)

	api.HandleFunc("POST /auth/login", s.handleLogin)
	api.HandleFunc("POST /auth/logout", s.handleLogout)
	api.HandleFunc("POST /auth/setup", s.handleSetupUser)
	api.HandleFunc("GET /auth/sso/login", s.handleSSOLogin)
	api.HandleFunc("GET /auth/sso/callback", s.handleSSOCallback)

	api.Handle("GET /weight/progress", s.authed(s.handleWeightProgress))
	api.Handle("GET /weight/entries", s.authed(s.handleListEntries))
	api.Handle("POST /weight/entries", s.authed(s.handleCreateEntry))
	api.Handle("GET /weight/entries/{id}", s.authed(s.handleGetEntry))
	api.Handle("PUT /weight/entries/{id}", s.authed(s.handleUpdateEntry))
	api.Handle("DELETE /weight/entries/{id}", s.authed(s.handleDeleteEntry))

	api.Handle("GET /dashboard", s.authed(s.handleDashboard))

	api.Handle("GET /shipments", s.authed(s.handleListShipments))
	api.Handle("POST /shipments", s.authed(s.handleCreateShipment))
	api.Handle("PUT /shipments/{id}", s.authed(s.handleUpdateShipment))
	api.Handle("DELETE /shipments/{id}", s.authed(s.handleDeleteShipment))

	api.Handle("GET /medications", s.authed(s.handleListMedications))
	api.Handle("POST /medications", s.authed(s.handleCreateMedication))
	api.Handle("GET /medications/{id}", s.authed(s.handleGetMedication))
	api.Handle("PUT /medications/{id}", s.authed(s.handleUpdateMedication))
	api.Handle("DELETE /medications/{id}", s.authed(s.handleDeleteMedication))

	api.Handle("GET /profile", s.authed(s.handleGetProfile))
	api.Handle("PUT /profile", s.authed(s.handleUpdateProfile))

	root := http.NewServeMux()
	root.Handle("/api/", withNoCache(http.StripPrefix("/api", api)))
	if s.gatherer != nil {
		root.Handle("GET "+s.metricPath, promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	root.Handle("/", spaFromDisk(s.webDir))

	return s.loggingMiddleware(s.metricsMiddleware(s.recoveryMiddleware(root)))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.ping != nil {
		if err := s.ping(r.Context()); err != nil {
			log.WithError(err).Warn("health check failed")
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{"ok": false})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}
