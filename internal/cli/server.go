package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"compat-quiz-service/internal/app"
	"compat-quiz-service/internal/config"
	"compat-quiz-service/internal/infra/memory"
	pgloader "compat-quiz-service/internal/infra/postgres"
	redisinfra "compat-quiz-service/internal/infra/redis"
	"compat-quiz-service/internal/logger"
	"compat-quiz-service/internal/notify"
	"compat-quiz-service/internal/telemetry"
	transport "compat-quiz-service/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func bootstrap(configPath string) (config.Config, *zap.Logger, error) {
	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return cfg, nil, err
	}
	log, err := logger.New(cfg)
	if err != nil {
		return cfg, nil, err
	}
	return cfg, log, nil
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, log, err := bootstrap(configPath)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg, log); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	var loader memory.QuizLoader
	switch {
	case pool != nil:
		loader = pgloader.NewQuizLoader(pool)
	default:
		quizzes, err := quizSource(cfg.Quiz.File)
		if err != nil {
			return err
		}
		loader = memory.NewStaticQuizLoader(quizzes)
	}

	quizTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	var quizRepo app.QuizRepository
	if redisClient != nil {
		quizRepo = redisinfra.NewQuizRepository(redisClient, loader, quizTTL)
	} else {
		quizRepo = memory.NewQuizRepository(loader, quizTTL)
	}

	sessionTTL := config.TTLDuration(cfg.Quiz.SessionTTL, config.TTLDuration(cfg.Redis.TTL, 30*time.Minute))
	var store app.SessionRepository
	if redisClient != nil {
		store = redisinfra.NewSessionStore(redisClient, sessionTTL)
	} else {
		store = memory.NewSessionStore(sessionTTL)
	}

	dispatcher := newDispatcher(cfg, log)
	defer dispatcher.Wait()

	service := app.NewQuizService(store, quizRepo,
		app.WithLogger(log),
		app.WithTracker(newTracker(cfg, redisClient, log)),
		app.WithDispatcher(dispatcher),
	)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", transport.NewWSHandler(service, log).ServeWS)
	transport.NewQuizHandler(service, log).Register(mux)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info("starting quiz service", zap.String("port", finalPort), zap.String("default_quiz", defaultQuizID(cfg.Quiz.DefaultID)))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("failed to start server", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info("shutting down server")
	case <-ctx.Done():
		log.Info("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func newDispatcher(cfg config.Config, log *zap.Logger) *notify.Dispatcher {
	timeout := config.TTLDuration(cfg.Notify.Timeout, 10*time.Second)
	var notifier notify.Notifier = notify.Nop{}
	if cfg.Notify.AccessKey != "" {
		notifier = notify.NewWeb3FormsClient(cfg.Notify.Endpoint, cfg.Notify.AccessKey, cfg.Notify.FromName, &http.Client{Timeout: timeout})
	}
	// delivery outcomes are only interesting while developing
	dispatchLog := log
	if cfg.Production() {
		dispatchLog = zap.NewNop()
	}
	return notify.NewDispatcher(notifier, timeout, dispatchLog)
}

func newTracker(cfg config.Config, client *redis.Client, log *zap.Logger) telemetry.Tracker {
	logSink := telemetry.NewLogTracker(log)
	var streamSink telemetry.Tracker = telemetry.Nop{}
	if client != nil {
		streamSink = redisinfra.NewEventStream(client, cfg.Telemetry.Stream, cfg.Telemetry.MaxLen, log)
	}
	switch cfg.Telemetry.Sink {
	case "none":
		return telemetry.Nop{}
	case "redis":
		return streamSink
	case "both":
		return telemetry.Multi{logSink, streamSink}
	default:
		return logSink
	}
}

func defaultQuizID(configured string) string {
	if configured != "" {
		return configured
	}
	return memory.CompatibilityQuizID
}
