package main

import (
	"context"

	"edutrack/cache"
	"edutrack/config"
	"edutrack/controllers"
	"edutrack/database"
	"edutrack/identity"
	"edutrack/logger"
	"edutrack/metrics"
	"edutrack/middleware"
	"edutrack/notifier"
	"edutrack/routers"
	"edutrack/services"
	"edutrack/utils"
	"edutrack/validators"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

func main() {
	fx.New(
		fx.Provide(
			config.LoadConfig,
			newDatabase,
			newRegistry,
			newMetrics,
			newCache,
			newNotifier,
			newVerifier,
			newIDGenerator,
			newUploads,
			services.NewSettings,
			services.NewCatalog,
			services.NewRegistrations,
			services.NewCertificates,
			services.NewAttendance,
			services.NewReviews,
			services.NewUserCertificates,
			controllers.NewTrainingController,
			controllers.NewRegistrationController,
			controllers.NewEnrollmentController,
			controllers.NewCertificateController,
			controllers.NewReviewController,
			controllers.NewUserCertificateController,
			newRouter,
		),
		fx.Invoke(logger.Setup, startScheduler, startServer),
	).Run()
}

func newDatabase(lc fx.Lifecycle, cfg *config.Config) (*gorm.DB, error) {
	db, err := database.ConnectDb(cfg)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	})
	return db, nil
}

func newRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func newMetrics(reg *prometheus.Registry) *metrics.Metrics {
	return metrics.New(reg)
}

func newCache(lc fx.Lifecycle, cfg *config.Config) (cache.TrainingCache, error) {
	c, closeFn, err := cache.New(context.Background(), cfg.RedisAddr)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{OnStop: func(context.Context) error { return closeFn() }})
	return c, nil
}

func newNotifier(lc fx.Lifecycle, cfg *config.Config, m *metrics.Metrics) (notifier.Notifier, error) {
	n, err := notifier.New(cfg, m)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{OnStop: func(context.Context) error { return n.Close() }})
	return n, nil
}

func newVerifier(cfg *config.Config) identity.Verifier {
	if cfg.IdentityIntrospectURL != "" {
		return identity.NewIntrospectVerifier(cfg.IdentityIntrospectURL)
	}
	return identity.NewJWTVerifier(cfg.JWTKey)
}

func newIDGenerator(cfg *config.Config) *utils.IDGenerator {
	return utils.NewIDGenerator(cfg.TimezoneOffsetHours)
}

func newUploads(cfg *config.Config) utils.Uploads {
	return utils.Uploads{Dir: cfg.UploadDir, BaseURL: cfg.UploadBaseURL}
}

type routerParams struct {
	fx.In

	Config       *config.Config
	DB           *gorm.DB
	Registry     *prometheus.Registry
	Verifier     identity.Verifier
	Training     *controllers.TrainingController
	Registration *controllers.RegistrationController
	Enrollment   *controllers.EnrollmentController
	Certificate  *controllers.CertificateController
	Review       *controllers.ReviewController

	UserCertificate *controllers.UserCertificateController
}

func newRouter(p routerParams) routers.Router {
	return routers.Router{
		Auth:         middleware.Auth(p.Verifier, p.DB),
		Admin:        middleware.RequireRole(p.Config.AdminRole),
		AdminRole:    p.Config.AdminRole,
		DB:           p.DB,
		Gatherer:     p.Registry,
		UploadDir:    p.Config.UploadDir,
		Training:     p.Training,
		Registration: p.Registration,
		Enrollment:   p.Enrollment,
		Certificate:  p.Certificate,
		Review:       p.Review,

		UserCertificate: p.UserCertificate,
	}
}

func startScheduler(lc fx.Lifecycle, cfg *config.Config, settings services.Settings, catalog *services.Catalog) {
	scheduler := utils.NewScheduler(cfg.ReconcileCron, catalog, settings.Location)
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error { return scheduler.Start() },
		OnStop: func(context.Context) error {
			scheduler.Stop()
			return nil
		},
	})
}

func startServer(lc fx.Lifecycle, cfg *config.Config, settings services.Settings, r routers.Router) {
	validators.SetLocation(settings.Location)
	app := routers.NewApp(r, true)

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				log.Info().Str("port", cfg.Port).Msg("server is running")
				if err := app.Listen(":" + cfg.Port); err != nil {
					log.Error().Err(err).Msg("server stopped")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return app.ShutdownWithContext(ctx)
		},
	})
}
