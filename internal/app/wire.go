//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"

	"scribed/internal/config"
)

// InitializeApp builds the full dependency graph from configuration: database,
// stores, quota evaluator, retention engine and the v1 service container.
func InitializeApp(cfg *config.Config) (*App, error) {
	wire.Build(
		provideSlogLogger,
		provideZapLogger,
		provideDB,
		provideStore,
		provideJobDAO,
		provideOperationDAO,
		provideUsageDAO,
		provideRoleLimitDAO,
		provideRedisClient,
		provideLimitSource,
		provideEvaluator,
		provideRetentionEngine,
		provideServiceContainer,
		wire.Struct(new(App), "DB", "Store", "Jobs", "Ops", "Usage", "Roles", "Redis", "Evaluator", "Retention", "Container"),
	)
	return &App{}, nil
}
