//go:build wireinject
// +build wireinject

package di

import (
	"RateSim/pkg/config"
	"RateSim/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient services
		ProvideLogger,
		ProvideMetrics,

		// Feed and cache
		ProvideFeedSources,
		ProvideL2Cache,
		ProvideCurveCache,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,

		// Repositories (with business logic)
		ProvideSnapshotStorage,
		ProvideSnapshotPublisher,

		// Use cases
		ProvideSnapshotProcessor,
		ProvideRefresher,
		ProvideAnalyzer,

		// HTTP surface
		ProvideHTTPHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
