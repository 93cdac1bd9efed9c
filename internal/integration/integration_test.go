package integration

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"
	"time"

	"compat-quiz-service/internal/app"
	"compat-quiz-service/internal/domain"
	"compat-quiz-service/internal/infra/memory"
	pgstore "compat-quiz-service/internal/infra/postgres"
	pgmigrations "compat-quiz-service/internal/infra/postgres/migrations"
	infraredis "compat-quiz-service/internal/infra/redis"
	"compat-quiz-service/internal/telemetry"
	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
	"go.uber.org/zap"
)

func TestCompatibilityQuizEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	seedQuizzes(t, ctx, pgURL, memory.BuiltinQuizzes())

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	defer redisClient.Close()

	quizRepo := infraredis.NewQuizRepository(redisClient, pgstore.NewQuizLoader(pool), 5*time.Minute)
	sessionStore := infraredis.NewSessionStore(redisClient, 5*time.Minute)
	events := infraredis.NewEventStream(redisClient, "quiz:events:test", 100, zap.NewNop())
	service := app.NewQuizService(sessionStore, quizRepo, app.WithTracker(telemetry.Multi{events}))

	session, err := service.Start(ctx, memory.CompatibilityQuizID, "Meera")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	quiz, err := service.Quiz(ctx, memory.CompatibilityQuizID)
	if err != nil {
		t.Fatalf("quiz: %v", err)
	}

	// the name was given up front, so the name step only needs confirming
	if _, _, err := service.Next(ctx, session.ID); err != nil {
		t.Fatalf("confirm name: %v", err)
	}

	// pick the best-weighted option everywhere
	var completion *domain.Completion
	for qi, q := range quiz.Questions {
		best := 0
		for oi, w := range q.Weights {
			if w > q.Weights[best] {
				best = oi
			}
		}
		if _, err := service.Select(ctx, session.ID, qi, best); err != nil {
			t.Fatalf("select q%d: %v", qi, err)
		}
		_, completion, err = service.Next(ctx, session.ID)
		if err != nil {
			t.Fatalf("next q%d: %v", qi, err)
		}
	}
	if completion == nil {
		t.Fatalf("expected completion after the last question")
	}
	if completion.Result.Percentage != 100 || completion.Result.Bucket.Label != "Excellent Match" {
		t.Fatalf("unexpected result %+v", completion.Result)
	}
	if completion.ParticipantName != "Meera" {
		t.Fatalf("expected participant name carried through, got %q", completion.ParticipantName)
	}

	n, err := redisClient.XLen(ctx, "quiz:events:test").Result()
	if err != nil {
		t.Fatalf("xlen: %v", err)
	}
	// started + one answered per question + completed
	if want := int64(len(quiz.Questions) + 2); n != want {
		t.Fatalf("expected %d events, got %d", want, n)
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "quiz", "POSTGRES_PASSWORD": "quizpass", "POSTGRES_DB": "quizdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://quiz:quizpass@%s:%s/quizdb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func seedQuizzes(t *testing.T, ctx context.Context, dsn string, quizzes map[string]domain.Quiz) {
	t.Helper()
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if _, err := pgstore.SeedQuizzes(ctx, db, quizzes); err != nil {
		t.Fatalf("seed quizzes: %v", err)
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
