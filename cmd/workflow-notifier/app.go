package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"golang.org/x/sync/errgroup"

	_ "workflow/docs"
	"workflow/internal/channel"
	"workflow/internal/config"
	"workflow/internal/constants"
	"workflow/internal/dedup"
	"workflow/internal/diagnostics"
	"workflow/internal/directory"
	"workflow/internal/editorial"
	"workflow/internal/logger"
	"workflow/internal/store"
	"workflow/internal/workflow"
	"workflow/pkg/bootstrap"
	"workflow/pkg/health"
	"workflow/pkg/logging"
	"workflow/pkg/metrics"
	"workflow/pkg/middleware"
	"workflow/pkg/models"
	"workflow/pkg/ratelimit"
	"workflow/pkg/tracing"
)

// DiagnosticsKey is the key the notifications collector is registered
// under.
const DiagnosticsKey = "workflow-notifications"

type App struct {
	*bootstrap.Base
	dbConnector    *bootstrap.DatabaseConnector
	conns          *bootstrap.Connections
	tracerProvider *tracing.TracerProvider

	directory   *directory.Directory
	store       *store.Store
	storeHealth func(context.Context) error
	rules       *workflow.Registry
	engine      *workflow.Engine
	guard       *dedup.Guard
	diagnostics *diagnostics.Registry

	server *http.Server
}

func NewApp(cfg *config.Config, log logger.Logger) *App {
	if sugaredLogger, ok := log.(*logger.SugaredLogger); ok {
		sugaredLogger.SetServiceName(serviceName)
	}
	return &App{
		Base:        bootstrap.NewBase(cfg, log),
		dbConnector: bootstrap.NewDatabaseConnector(cfg, log),
		diagnostics: diagnostics.NewRegistry(),
	}
}

func (a *App) Initialize(ctx context.Context) error {
	ctx = logging.WithServiceName(ctx, serviceName)

	tp, err := tracing.Init(a.Config.Tracing, serviceName)
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	a.tracerProvider = tp

	metrics.RegisterWorkflowMetrics()
	metrics.RegisterBrokerMetrics()
	metrics.RegisterHTTPMetrics()
	if a.Config.CircuitBreaker.Enabled {
		metrics.RegisterCircuitBreakerMetrics()
	}

	conns, err := a.dbConnector.Connect(ctx)
	if err != nil {
		return fmt.Errorf("failed to connect databases: %w", err)
	}
	a.conns = conns

	if err := a.initStorage(); err != nil {
		return err
	}

	if a.Config.Notifications.Enabled() {
		if err := a.initNotifications(ctx); err != nil {
			return err
		}
	} else {
		a.Logger.InfowCtx(ctx, "Workflow notifications disabled, event consumer not started")
	}

	a.initHTTPServer(ctx)
	return nil
}

func (a *App) initStorage() error {
	source, err := directory.NewSource(a.Config.Directory, a.conns.Postgres)
	if err != nil {
		return fmt.Errorf("failed to initialize directory: %w", err)
	}
	a.directory = directory.New(source)

	backend, err := store.NewBackend(a.Config, store.Clients{
		Postgres: a.conns.Postgres,
		Redis:    a.conns.Redis,
		Mongo:    a.conns.Mongo,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize notification store: %w", err)
	}
	if breaker, ok := backend.(*store.BreakerBackend); ok {
		a.storeHealth = breaker.Healthy
	}
	a.store = store.New(backend, a.Logger.Named("store"))
	return nil
}

// initNotifications registers the enabled rules, freezes the registry and
// wires the engine behind the event consumer.
func (a *App) initNotifications(ctx context.Context) error {
	if err := a.InitBroker(serviceName); err != nil {
		return fmt.Errorf("failed to initialize broker: %w", err)
	}

	channels, err := channel.NewFromConfig(a.Config, channel.Deps{
		Redis:     a.conns.Redis,
		Producer:  a.Producer,
		Addresses: a.directory,
		Logger:    a.Logger.Named("channel"),
	})
	if err != nil {
		return fmt.Errorf("failed to initialize channels: %w", err)
	}

	a.rules = workflow.NewRegistry()
	names, err := editorial.Setup(a.Config.Notifications, a.rules, a.Logger.Named("editorial"))
	if err != nil {
		a.Logger.WarnwCtx(ctx, "Some notification rules were not registered", "error", err)
	}
	a.rules.Freeze()
	metrics.SetActiveRules(a.rules.Len())

	for _, name := range channelsInUse(a.rules) {
		if _, ok := channels.Get(name); !ok {
			a.Logger.WarnwCtx(ctx, "Rules reference a channel that is not enabled", "channel", name)
		}
	}

	a.engine = workflow.NewEngine(
		a.rules,
		workflow.NewResolver(a.directory),
		workflow.NewDispatcher(channels, a.store, a.Logger.Named("dispatcher")),
		workflow.WithHydrator(a.directory),
		workflow.WithLogger(a.Logger.Named("engine")),
	)

	if a.Config.Deduplication.Enabled {
		var repo dedup.Repository
		if a.conns.Redis != nil {
			repo = dedup.NewRedisRepository(a.conns.Redis)
		} else {
			repo = dedup.NewMemoryRepository(time.Minute)
		}
		if a.Config.CircuitBreaker.Enabled {
			repo = dedup.NewCircuitBreakerRepository(repo, a.Config.CircuitBreaker)
		}
		a.guard = dedup.NewGuard(repo, a.Config.Deduplication, a.Logger.Named("dedup"))
	}

	if err := a.diagnostics.Register(DiagnosticsKey, diagnostics.NewNotificationsCollector(a.store, a.Logger)); err != nil {
		return fmt.Errorf("failed to register diagnostics collector: %w", err)
	}

	a.Logger.InfowCtx(ctx, "Workflow notifications enabled",
		"rules", names,
		"channels", channels.Names(),
		"store", a.store.Backend(),
	)
	return nil
}

func channelsInUse(reg *workflow.Registry) []string {
	seen := map[string]bool{}
	var out []string
	for _, rule := range reg.Rules() {
		for _, ch := range rule.Channels {
			if !seen[ch] {
				seen[ch] = true
				out = append(out, ch)
			}
		}
	}
	return out
}

func (a *App) initHTTPServer(ctx context.Context) {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	if a.Config.Tracing.Enabled {
		router.Use(tracing.GinMiddleware(serviceName))
	}

	router.Use(middleware.RecoveryMiddleware(a.Logger))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CurrentUserMiddleware())
	router.Use(middleware.LoggerMiddleware(a.Logger))

	if a.Config.Server.RateLimit.Enabled {
		rl := ratelimit.FromConfig(a.Config.Server.RateLimit)
		router.Use(ratelimit.RateLimitMiddleware(ctx, rl))
		a.Logger.InfowCtx(ctx, "Rate limiting enabled", "rps", rl.RPS, "burst", rl.Burst)
	}

	var rules diagnostics.RuleLister
	if a.rules != nil {
		rules = a.rules
	}
	diagnostics.NewHandler(a.diagnostics, rules, a.Logger.Named("diagnostics")).RegisterRoutes(router)

	healthRegistry := a.healthRegistry()
	router.GET("/health", func(c *gin.Context) {
		h := healthRegistry.Check(c.Request.Context())
		statusCode := http.StatusOK
		if h.Status == health.StatusUnhealthy {
			statusCode = http.StatusServiceUnavailable
		}
		c.JSON(statusCode, h)
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	a.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:      router,
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
	}
}

// healthRegistry treats the notification store as required. Redis is
// optional unless it backs the store, since otherwise only the dashboard
// channel depends on it.
func (a *App) healthRegistry() *health.CheckerRegistry {
	reg := health.NewCheckerRegistry()

	if a.storeHealth != nil {
		reg.Register(health.NewFuncChecker("store", a.storeHealth))
	}
	if a.conns.Postgres != nil {
		reg.Register(health.NewPostgreSQLChecker(a.conns.Postgres))
	}
	if a.conns.MongoClient != nil {
		reg.Register(health.NewMongoDBChecker(a.conns.MongoClient))
	}
	if a.conns.Redis != nil {
		if a.Config.Store.Backend == constants.StoreBackendRedis {
			reg.Register(health.NewRedisChecker(a.conns.Redis))
		} else {
			reg.RegisterOptional(health.NewRedisChecker(a.conns.Redis))
		}
	}
	return reg
}

func (a *App) Run(ctx context.Context) error {
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Logger.InfowCtx(ctx, "HTTP server starting", "port", a.Config.Server.Port)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
		defer cancel()
		return a.server.Shutdown(shutdownCtx)
	})

	if a.engine != nil {
		topic := a.Config.Broker.Kafka.EventTopic
		g.Go(func() error {
			a.Logger.InfowCtx(gCtx, "Consuming editorial events", "topic", topic)
			return a.Consumer.Consume(gCtx, topic, a.handleEvent)
		})
	}

	return g.Wait()
}

// handleEvent returns an error only when the redelivery guard fails closed,
// so the broker retries the event. Rule failures are isolated per rule.
func (a *App) handleEvent(ctx context.Context, ev models.Event) error {
	if a.guard != nil {
		first, err := a.guard.First(ctx, ev)
		if err != nil {
			return err
		}
		if !first {
			return nil
		}
	}

	outcomes := a.engine.HandleEvent(ctx, ev)
	for _, out := range outcomes {
		delivered := 0
		for _, d := range out.Deliveries {
			if d.OK() {
				delivered++
			}
		}
		if out.Err != nil {
			a.Logger.ErrorwCtx(ctx, "Notification rule failed", "rule", out.Rule, "error", out.Err)
			continue
		}
		a.Logger.InfowCtx(ctx, "Notification rule dispatched",
			"rule", out.Rule,
			"recipients", len(out.Recipients),
			"delivered", delivered,
			"attempted", len(out.Deliveries),
		)
	}
	return nil
}

func (a *App) Shutdown(ctx context.Context) error {
	ctx = logging.WithServiceName(ctx, serviceName)

	additionalShutdown := func(ctx context.Context) []error {
		var errs []error

		if a.tracerProvider != nil {
			if err := a.tracerProvider.Shutdown(ctx); err != nil {
				errs = append(errs, fmt.Errorf("tracer provider shutdown error: %w", err))
			}
		}

		errs = append(errs, a.dbConnector.ShutdownDatabases(ctx, a.conns)...)
		return errs
	}

	return a.Base.Shutdown(ctx, additionalShutdown)
}
