package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/inkwell-social/inkwell/core"
	"github.com/inkwell-social/inkwell/x/activity"
	"github.com/inkwell-social/inkwell/x/actor"
	"github.com/inkwell-social/inkwell/x/auth"
	"github.com/inkwell-social/inkwell/x/chapter"
	"github.com/inkwell-social/inkwell/x/novel"
	"github.com/inkwell-social/inkwell/x/socket"
	"github.com/inkwell-social/inkwell/x/webfinger"

	"github.com/redis/go-redis/extra/redisotel/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.7.0"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/plugin/opentelemetry/tracing"
)

type CustomHandler struct {
	slog.Handler
}

func (h *CustomHandler) Handle(ctx context.Context, r slog.Record) error {

	r.AddAttrs(slog.String("type", "app"))

	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		r.AddAttrs(slog.String("traceID", span.SpanContext().TraceID().String()))
		r.AddAttrs(slog.String("spanID", span.SpanContext().SpanID().String()))
	}

	return h.Handler.Handle(ctx, r)
}

var (
	version = "unknown"
)

func main() {

	fmt.Fprint(os.Stderr, inkwellBanner)

	handler := &CustomHandler{Handler: slog.NewJSONHandler(os.Stdout, nil)}
	slogger := slog.New(handler)
	slog.SetDefault(slogger)

	slog.Info(fmt.Sprintf("Inkwell %s starting...", version))

	e := echo.New()
	e.HidePort = true
	e.HideBanner = true
	config := Config{}
	configPath := os.Getenv("INKWELL_CONFIG")
	if configPath == "" {
		configPath = "/etc/inkwell/config.yaml"
	}

	err := config.Load(configPath)
	if err != nil {
		slog.Error("Failed to load config", slog.String("error", err.Error()))
	}

	slog.Info(fmt.Sprintf("Config loaded! I am: %s", config.Inkwell.FQDN))

	if config.Server.EnableTrace {
		cleanup, err := setupTraceProvider(config.Server.TraceEndpoint, config.Inkwell.FQDN+"/api", version)
		if err != nil {
			panic(err)
		}
		defer cleanup()

		skipper := otelecho.WithSkipper(
			func(c echo.Context) bool {
				return c.Path() == "/metrics" || c.Path() == "/health"
			},
		)
		e.Use(otelecho.Middleware("api", skipper))
	}

	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace: "inkwell",
		LabelFuncs: map[string]echoprometheus.LabelValueFunc{
			"url": func(c echo.Context, err error) string {
				return "REDACTED"
			},
		},
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics" || c.Path() == "/health"
		},
	}))

	e.Use(middleware.Recover())

	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             300 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)

	db, err := gorm.Open(postgres.Open(config.Server.Dsn), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		panic("failed to connect database")
	}
	sqlDB, err := db.DB() // for pinging
	if err != nil {
		panic("failed to connect database")
	}
	defer sqlDB.Close()

	err = db.Use(tracing.NewPlugin(
		tracing.WithDBName("postgres"),
	))
	if err != nil {
		panic("failed to setup tracing plugin")
	}

	slog.Info("start migrate")
	db.AutoMigrate(
		&core.Actor{},
		&core.NovelProfile{},
		&core.Authorship{},
		&core.Chapter{},
		&core.ActivityRecord{},
	)

	rdb := redis.NewClient(&redis.Options{
		Addr:     config.Server.RedisAddr,
		Password: "",
		DB:       config.Server.RedisDB,
	})
	err = redisotel.InstrumentTracing(
		rdb,
		redisotel.WithAttributes(
			attribute.KeyValue{
				Key:   "db.name",
				Value: attribute.StringValue("redis"),
			},
		),
	)
	if err != nil {
		panic("failed to setup tracing plugin")
	}

	mc := memcache.New(config.Server.MemcachedAddr)
	defer mc.Close()

	actorService := SetupActorService(db, mc, config.Inkwell)
	authorshipService := SetupAuthorshipService(db)
	actorHandler := actor.NewHandler(actorService, authorshipService, config.Inkwell)

	chapterService := SetupChapterService(db, rdb, config.Inkwell)
	chapterHandler := chapter.NewHandler(chapterService, config.Inkwell)

	deliveryService := SetupDeliveryService(db, rdb, mc, config.Inkwell)

	activityService := SetupActivityService(db, rdb, mc, config.Inkwell)
	activityHandler := activity.NewHandler(activityService)

	novelService := SetupNovelService(db, mc, config.Inkwell)
	novelHandler := novel.NewHandler(novelService, authorshipService, chapterService, config.Inkwell)

	config.Profile.Version = version
	webfingerHandler := webfinger.NewHandler(actorService, config.Inkwell, config.Profile)

	socketHandler := socket.NewHandler(rdb)

	authService := auth.NewService(actorService, config.Inkwell)
	authHandler := auth.NewHandler(authService)

	e.Use(authService.IdentifyIdentity)

	// discovery
	e.GET("/.well-known/webfinger", webfingerHandler.WebFinger)
	e.GET("/.well-known/nodeinfo", webfingerHandler.NodeInfoWellKnown)
	e.GET("/nodeinfo/2.0", webfingerHandler.NodeInfo)

	// actor
	e.GET("/actor/:id", actorHandler.Get)
	e.GET("/actor/:id/outbox", actorHandler.Outbox)
	e.POST("/actor/:id/inbox", activityHandler.Inbox)
	e.POST("/admin/actor", actorHandler.Create, auth.Restrict(auth.ISADMIN))
	e.POST("/admin/token", authHandler.Issue, auth.Restrict(auth.ISADMIN))

	// novel
	e.POST("/novel", novelHandler.Create, auth.Restrict(auth.ISLOCAL))
	e.GET("/novel/:id", novelHandler.Get)
	e.GET("/novel/:id/outbox", novelHandler.Outbox)
	e.GET("/novel/:id/chapters", novelHandler.Chapters)
	e.GET("/novel/:id/:sequence", chapterHandler.Get)

	// activity exchange
	e.POST("/novel/:id/inbox", activityHandler.Inbox)
	e.POST("/chapter", activityHandler.CreateChapter, auth.Restrict(auth.ISLOCAL))

	// socket
	e.GET("/socket", socketHandler.Connect)

	// misc
	e.GET("/profile", func(c echo.Context) error {
		profile := config.Profile
		profile.Version = version
		return c.JSON(http.StatusOK, profile)
	})
	e.GET("/health", func(c echo.Context) (err error) {
		ctx := c.Request().Context()

		err = sqlDB.Ping()
		if err != nil {
			return c.String(http.StatusInternalServerError, "db error")
		}

		err = rdb.Ping(ctx).Err()
		if err != nil {
			return c.String(http.StatusInternalServerError, "redis error")
		}

		return c.String(http.StatusOK, "ok")
	})

	var resourceCountMetrics = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "inkwell_resources_count",
			Help: "resources count",
		},
		[]string{"type"},
	)
	prometheus.MustRegister(resourceCountMetrics)

	var deliveryQueueMetrics = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "inkwell_delivery_queue_depth",
			Help: "pending outbound deliveries",
		},
	)
	prometheus.MustRegister(deliveryQueueMetrics)

	go func() {
		for {
			time.Sleep(15 * time.Second)
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)

			count, err := actorService.Count(ctx)
			if err != nil {
				slog.Error(fmt.Sprintf("failed to count actors: %v", err))
				cancel()
				continue
			}
			resourceCountMetrics.WithLabelValues("actor").Set(float64(count))

			count, err = chapterService.Count(ctx)
			if err != nil {
				slog.Error(fmt.Sprintf("failed to count chapters: %v", err))
				cancel()
				continue
			}
			resourceCountMetrics.WithLabelValues("chapter").Set(float64(count))

			pending, err := deliveryService.PendingCount(ctx)
			if err != nil {
				slog.Error(fmt.Sprintf("failed to measure delivery queue: %v", err))
				cancel()
				continue
			}
			deliveryQueueMetrics.Set(float64(pending))

			cancel()
		}
	}()

	e.GET("/metrics", echoprometheus.NewHandler())

	deliveryService.Boot()
	e.Logger.Fatal(e.Start(":8000"))
}

func setupTraceProvider(endpoint string, serviceName string, serviceVersion string) (func(), error) {

	exporter, err := otlptracehttp.New(
		context.Background(),
		otlptracehttp.WithEndpoint(endpoint),
		otlptracehttp.WithInsecure(),
	)

	if err != nil {
		return nil, err
	}

	resource := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceNameKey.String(serviceName),
		semconv.ServiceVersionKey.String(serviceVersion),
	)

	tracerProvider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithResource(resource),
	)
	otel.SetTracerProvider(tracerProvider)

	propagator := propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	)
	otel.SetTextMapPropagator(propagator)

	cleanup := func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		if err := tracerProvider.Shutdown(ctx); err != nil {
			slog.Error(fmt.Sprintf("Failed to shutdown tracer provider: %v", err))
		}
	}
	return cleanup, nil
}
