package app

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	v1routes "scribed/internal/api/v1/routes"
	"scribed/internal/api/v1/services"
	"scribed/internal/app/common"
	"scribed/internal/app/quota"
	"scribed/internal/app/repository"
	"scribed/internal/app/repository/pg"
	"scribed/internal/app/repository/sqlite"
	"scribed/internal/app/repository/sqlstore"
	"scribed/internal/app/retention"
	"scribed/internal/config"
)

// App bundles everything the serve and sweep commands need.
type App struct {
	DB        *sql.DB
	Store     *sqlstore.Store
	Jobs      repository.JobDAO
	Ops       repository.OperationDAO
	Usage     repository.UsageDAO
	Roles     repository.RoleLimitDAO
	Redis     *redis.Client
	Evaluator *quota.Evaluator
	Retention *retention.Engine
	Container *v1routes.ServiceContainer
}

// Close releases the database and redis connections.
func (a *App) Close() error {
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			return err
		}
	}
	return a.DB.Close()
}

func provideSlogLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, nil))
}

func provideZapLogger(cfg *config.Config) *zap.Logger {
	return common.MustNewLogger(cfg.Environment == "development")
}

func provideDB(cfg *config.Config) (*sql.DB, error) {
	switch cfg.DBDriver {
	case "postgres":
		return pg.Open(cfg.DBDSN)
	case "sqlite3":
		return sqlite.Open(cfg.DBDSN)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
}

func provideStore(db *sql.DB, cfg *config.Config, logger *slog.Logger) (*sqlstore.Store, error) {
	store := sqlstore.New(db, cfg.DBDriver, logger)
	if err := store.InitSchema(); err != nil {
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return store, nil
}

func provideJobDAO(store *sqlstore.Store) repository.JobDAO {
	return sqlstore.NewJobStore(store)
}

func provideOperationDAO(store *sqlstore.Store, cfg *config.Config) repository.OperationDAO {
	return sqlstore.NewOperationStore(store, cfg.Providers)
}

func provideUsageDAO(store *sqlstore.Store) repository.UsageDAO {
	return sqlstore.NewUsageStore(store)
}

func provideRoleLimitDAO(store *sqlstore.Store) repository.RoleLimitDAO {
	return sqlstore.NewRoleLimitStore(store)
}

// provideRedisClient returns nil when REDIS_ADDR is unset; the limit source
// then reads straight from the database.
func provideRedisClient(cfg *config.Config) *redis.Client {
	if cfg.RedisAddr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
}

func provideLimitSource(roles repository.RoleLimitDAO, client *redis.Client, cfg *config.Config, logger *slog.Logger) quota.LimitSource {
	if client == nil {
		return roles
	}
	return quota.NewRoleLimitCache(roles, client, cfg.RoleCacheTTL, logger)
}

func provideEvaluator(usage repository.UsageDAO, limits quota.LimitSource) *quota.Evaluator {
	return quota.NewEvaluator(usage, limits)
}

func provideRetentionEngine(jobs repository.JobDAO, roles repository.RoleLimitDAO, cfg *config.Config, logger *zap.Logger) *retention.Engine {
	return retention.New(jobs, roles, cfg.RetentionGrace, logger)
}

func provideServiceContainer(
	jobs repository.JobDAO,
	ops repository.OperationDAO,
	usage repository.UsageDAO,
	evaluator *quota.Evaluator,
	logger *slog.Logger,
) *v1routes.ServiceContainer {
	return &v1routes.ServiceContainer{
		JobService:       services.NewJobService(jobs, usage, evaluator, logger),
		OperationService: services.NewOperationService(ops, jobs, usage, evaluator, logger),
		UsageService:     services.NewUsageService(evaluator, logger),
	}
}
