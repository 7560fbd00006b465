package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	adapthttp "careportal/internal/adapter/http"
	"careportal/internal/adapter/memory"
	"careportal/internal/adapter/postgres"
	"careportal/internal/adapter/restapi"
	"careportal/internal/app"
	"careportal/internal/config"
	"careportal/internal/domain"
	"careportal/internal/logging"
	"careportal/internal/metrics"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

const localUserID = "local"

func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_FILE"), "path to a TOML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logCloser := logging.Setup(logging.SetupParams{
		Level:    cfg.Log.Level,
		File:     cfg.Log.File,
		ToStdout: cfg.Log.ToStdout,
		JSON:     cfg.Log.JSON,
	})
	defer func() { _ = logCloser.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st, err := openStorage(cfg)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}
	defer st.close()

	authSvc := app.NewAuthService(st.users, st.sessions, cfg.Auth.SessionTTL.Duration)
	if st.upstream != nil {
		authSvc = authSvc.WithUpstream(st.upstream)
	}

	if err := bootstrap(ctx, cfg, authSvc, st); err != nil {
		log.Fatalf("bootstrap: %v", err)
	}

	statsCfg := domain.StatsConfig{HeightMeters: cfg.Program.HeightMeters, TargetLoss: cfg.Program.TargetLoss}
	svc := adapthttp.Services{
		Auth:        authSvc,
		Weight:      app.NewWeightService(st.backend, statsCfg, nil),
		Dashboard:   app.NewDashboardService(st.backend, statsCfg, nil),
		Shipments:   app.NewShipmentService(st.backend),
		Medications: app.NewMedicationService(st.backend),
		Profile:     app.NewProfileService(st.backend, statsCfg, nil),
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metricsManager := metrics.NewManager("careportal", "server", reg)

	srv := adapthttp.New(svc, cfg.WebDir)
	if cfg.Metrics.Enabled {
		srv = srv.WithMetrics(metricsManager, reg, cfg.Metrics.Path)
	}
	if st.ping != nil {
		srv = srv.WithHealthCheck(st.ping)
	}
	if cfg.Auth.Disabled {
		log.Warn("authentication is disabled, every request acts as the local user")
		srv = srv.WithoutAuth(localUserID)
	}
	if cfg.Auth.TrustForwardAuth {
		srv = srv.WithForwardAuth()
	}
	if cfg.OIDC.Enabled() {
		provider, err := oidc.NewProvider(ctx, cfg.OIDC.Issuer)
		if err != nil {
			log.Fatalf("oidc provider %s: %v", cfg.OIDC.Issuer, err)
		}
		srv = srv.WithOIDC(provider, &oauth2.Config{
			ClientID:     cfg.OIDC.ClientID,
			ClientSecret: cfg.OIDC.ClientSecret,
			RedirectURL:  cfg.OIDC.RedirectURL,
			Endpoint:     provider.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
		})
		log.Infof("sso enabled with issuer %s", cfg.OIDC.Issuer)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		purgeSessions(ctx, authSvc, metricsManager, cfg.Auth.PurgeInterval.Duration)
	}()

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Infof("listening on %s (backend %s)", cfg.Addr, cfg.Backend)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	sig := <-shutdownCh
	log.Infof("received %s, shutting down", sig)
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout.Duration)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorf("graceful shutdown failed: %v", err)
	}
	wg.Wait()
}

// storage is what the configured backend provides.
type storage struct {
	users    domain.UserRepository
	sessions domain.SessionRepository
	backend  domain.Backend
	upstream app.UpstreamAuthenticator
	demo     *memory.DB
	ping     func(context.Context) error
	close    func()
}

// openStorage picks the record backend. Users and sessions live in postgres
// when a database is configured and in memory otherwise.
func openStorage(cfg *config.Config) (*storage, error) {
	st := &storage{close: func() {}}

	if cfg.DatabaseURL != "" {
		db, err := postgres.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		st.users = db
		st.sessions = postgres.NewSessionRepo(db)
		st.backend = db
		st.ping = db.Ping
		st.close = func() { _ = db.Close() }
	} else {
		mem := memory.New()
		st.users = mem
		st.sessions = mem.NewSessionRepo()
		st.backend = mem
		st.demo = mem
	}

	switch cfg.Backend {
	case config.BackendMemory:
		if cfg.DatabaseURL != "" {
			log.Info("database_url is set, records are kept in postgres")
		}
	case config.BackendPostgres:
		// opened above; Validate requires database_url
	case config.BackendREST:
		client, err := restapi.New(cfg.APIURL, cfg.APITimeout.Duration)
		if err != nil {
			st.close()
			return nil, err
		}
		st.backend = client
		st.upstream = client
		st.demo = nil
		log.Infof("records are read from %s", cfg.APIURL)
	}
	return st, nil
}

// bootstrap creates the local or configured initial user and seeds demo
// records.
func bootstrap(ctx context.Context, cfg *config.Config, authSvc *app.AuthService, st *storage) error {
	if cfg.Auth.Disabled {
		if _, err := authSvc.EnsureLocalUser(ctx, localUserID); err != nil {
			return err
		}
	}
	if cfg.Auth.InitialUser != "" {
		err := authSvc.CreateInitialUser(ctx, cfg.Auth.InitialUser, cfg.Auth.InitialPassword)
		switch {
		case errors.Is(err, app.ErrUsersExist):
			log.Debug("initial user skipped, users exist")
		case err != nil:
			return err
		default:
			log.Infof("created initial user %s", cfg.Auth.InitialUser)
		}
	}

	if !cfg.SeedDemo {
		return nil
	}
	if st.demo == nil {
		log.Warn("seed_demo only applies to the in-memory backend")
		return nil
	}

	userID := localUserID
	if !cfg.Auth.Disabled {
		if cfg.Auth.InitialUser == "" {
			log.Warn("seed_demo needs auth.initial_user or disabled auth")
			return nil
		}
		u, err := st.users.GetByUsername(ctx, cfg.Auth.InitialUser)
		if err != nil {
			return err
		}
		userID = u.ID
	}
	if err := st.demo.SeedDemo(ctx, userID, time.Now().UnixNano()); err != nil {
		return err
	}
	log.Infof("seeded demo records for user %s", userID)
	return nil
}

// purgeSessions deletes expired sessions every interval until ctx is done.
func purgeSessions(ctx context.Context, authSvc *app.AuthService, m *metrics.Manager, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := authSvc.PurgeExpiredSessions(ctx)
			if err != nil {
				if !errors.Is(err, context.Canceled) {
					log.WithError(err).Error("purge expired sessions")
				}
				continue
			}
			m.CounterSessionsPurged.Add(float64(n))
			if n > 0 {
				log.Debugf("purged %d expired sessions", n)
			}
		}
	}
}
