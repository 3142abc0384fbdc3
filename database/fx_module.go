package database

import (
	"context"

	"go.uber.org/fx"

	"github.com/n-takatsu/sqlbridge/logger"
)

// FXModule provides database.Client via dependency injection. The concrete
// engine (postgres, mariadb or sqlite) is selected by the provided Config.
//
// Usage:
//
//	app := fx.New(
//	    logger.FXModule,
//	    database.FXModule,
//	    fx.Provide(func() database.Config {
//	        return database.PostgresConfig(postgres.Config{...})
//	    }),
//	    fx.Invoke(func(db database.Client) {
//	        // engine-agnostic code
//	    }),
//	)
var FXModule = fx.Module("database",
	fx.Provide(NewClientWithDI),
	fx.Invoke(RegisterDatabaseLifecycle),
)

// DatabaseParams groups the dependencies needed to create a database client
type DatabaseParams struct {
	fx.In

	Config Config
}

// DatabaseLifecycleParams groups the dependencies needed for database lifecycle management
type DatabaseLifecycleParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Client    Client
	Logger    *logger.Logger
}

// NewClientWithDI creates a database client using dependency injection and
// exposes it as the Client interface.
func NewClientWithDI(params DatabaseParams) (Client, error) {
	return NewClient(params.Config)
}

// RegisterDatabaseLifecycle registers the database client with the fx
// lifecycle system: connect eagerly on start, shut down gracefully on stop.
func RegisterDatabaseLifecycle(params DatabaseLifecycleParams) {
	params.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := params.Client.Connect(ctx); err != nil {
				return err
			}
			params.Logger.Info("database client connected", nil, map[string]interface{}{
				"engine": params.Client.Engine(),
			})
			return nil
		},
		OnStop: func(ctx context.Context) error {
			params.Logger.Info("shutting down database client", nil, nil)
			return params.Client.GracefulShutdown()
		},
	})
}
