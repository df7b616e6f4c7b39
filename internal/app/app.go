package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/riskibarqy/chit-fund/internal/config"
	"github.com/riskibarqy/chit-fund/internal/domain/activity"
	"github.com/riskibarqy/chit-fund/internal/domain/chitgroup"
	"github.com/riskibarqy/chit-fund/internal/domain/member"
	"github.com/riskibarqy/chit-fund/internal/domain/notification"
	"github.com/riskibarqy/chit-fund/internal/infrastructure/directory"
	notifierclient "github.com/riskibarqy/chit-fund/internal/infrastructure/notification"
	membercache "github.com/riskibarqy/chit-fund/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/chit-fund/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/chit-fund/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/chit-fund/internal/interfaces/httpapi"
	basecache "github.com/riskibarqy/chit-fund/internal/platform/cache"
	"github.com/riskibarqy/chit-fund/internal/platform/database"
	idgen "github.com/riskibarqy/chit-fund/internal/platform/id"
	"github.com/riskibarqy/chit-fund/internal/platform/logging"
	"github.com/riskibarqy/chit-fund/internal/usecase"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// App holds the HTTP server and the background reconciler built from one Config.
type App struct {
	Server     *http.Server
	Reconciler *usecase.ReconciliationService

	closers []func() error
}

// Close releases resources opened by New, such as the database pool.
func (a *App) Close() error {
	var firstErr error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}
	out := &App{}

	groupRepo, activityRepo, err := buildRepositories(ctx, cfg, logger, out)
	if err != nil {
		_ = out.Close()
		return nil, err
	}

	memberDirectory, err := buildDirectory(cfg, logger)
	if err != nil {
		_ = out.Close()
		return nil, err
	}
	notifier, err := buildNotifier(cfg, logger)
	if err != nil {
		_ = out.Close()
		return nil, err
	}

	ids := idgen.NewUUIDGenerator()
	effects := usecase.NewSideEffects(activityRepo, memberDirectory, notifier, ids, cfg.SideEffectTimeout, logger.Named("side_effects"))

	groupSvc := usecase.NewGroupService(groupRepo, activityRepo, effects, ids)
	biddingSvc := usecase.NewBiddingService(groupRepo, effects)
	contributionSvc := usecase.NewContributionService(groupRepo, effects)
	lateralSvc := usecase.NewLateralService(groupRepo, effects)
	organizerSvc := usecase.NewOrganizerService(groupRepo, effects)
	out.Reconciler = usecase.NewReconciliationService(groupRepo, contributionSvc, usecase.ReconciliationConfig{
		Workers:           cfg.ReconcileWorkers,
		Interval:          cfg.ReconcileInterval,
		DefaultPaymentDay: cfg.ReconcileDefaultPaymentDay,
	}, logger)

	handler := httpapi.NewHandler(groupSvc, biddingSvc, contributionSvc, lateralSvc, organizerSvc, out.Reconciler, logger)
	router := httpapi.NewRouter(handler, logger, httpapi.RouterConfig{
		SwaggerEnabled:     cfg.SwaggerEnabled,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		InternalJobToken:   cfg.InternalJobToken,
	})

	out.Server = &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	if out.Server.Addr == "" {
		_ = out.Close()
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	return out, nil
}

func buildRepositories(ctx context.Context, cfg config.Config, logger *logging.Logger, out *App) (chitgroup.Repository, activity.Repository, error) {
	if !cfg.UsesDatabase() {
		groups := memory.NewGroupRepository()
		if cfg.SeedDemoData {
			if err := groups.Seed(ctx, memory.SeedGroups(time.Now().UTC())); err != nil {
				return nil, nil, fmt.Errorf("seed demo groups: %w", err)
			}
		}
		logger.Info("using in-memory group store", "seeded", cfg.SeedDemoData)
		return groups, memory.NewActivityLogRepository(), nil
	}

	db, err := database.Open(ctx, database.Config{
		URL:                         cfg.DBURL,
		DisablePreparedBinaryResult: cfg.DBDisablePreparedBinary,
		MaxOpenConns:                cfg.DBMaxOpenConns,
		MaxIdleConns:                cfg.DBMaxIdleConns,
		ConnMaxLifetime:             cfg.DBConnMaxLifetime,
	})
	if err != nil {
		return nil, nil, err
	}
	out.closers = append(out.closers, db.Close)

	logger.Info("using postgres group store", "db", database.NameFromURL(cfg.DBURL))
	return postgres.NewGroupRepository(db, cfg.DBUpdateMaxAttempts, logger),
		postgres.NewActivityLogRepository(db),
		nil
}

// buildDirectory returns nil when no directory is configured; participant names then read "Unknown".
func buildDirectory(cfg config.Config, logger *logging.Logger) (member.Directory, error) {
	if cfg.DirectoryBaseURL == "" {
		logger.Info("member directory disabled", "reason", "DIRECTORY_BASE_URL empty")
		return nil, nil
	}

	client, err := directory.NewClient(directory.ClientConfig{
		BaseURL:        cfg.DirectoryBaseURL,
		Timeout:        cfg.DirectoryTimeout,
		CircuitBreaker: cfg.DirectoryCircuit,
	}, &http.Client{
		Timeout:   cfg.DirectoryTimeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}, logger.Named("directory"))
	if err != nil {
		return nil, err
	}

	return membercache.NewMemberDirectory(client, basecache.NewStore[member.Profile](cfg.DirectoryCacheTTL, cfg.DirectoryCacheMaxEntries)), nil
}

func buildNotifier(cfg config.Config, logger *logging.Logger) (notification.Notifier, error) {
	if cfg.NotifierBaseURL == "" {
		logger.Info("notifier disabled", "reason", "NOTIFIER_BASE_URL empty")
		return nil, nil
	}

	client, err := notifierclient.NewClient(notifierclient.ClientConfig{
		BaseURL:        cfg.NotifierBaseURL,
		Timeout:        cfg.NotifierTimeout,
		CircuitBreaker: cfg.NotifierCircuit,
	}, logger.Named("notifier"))
	if err != nil {
		return nil, err
	}
	return client, nil
}
