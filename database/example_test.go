package database_test

import (
	"context"
	"testing"

	"github.com/n-takatsu/sqlbridge/database"
	"github.com/n-takatsu/sqlbridge/driver"
	"github.com/n-takatsu/sqlbridge/postgres"
	"github.com/n-takatsu/sqlbridge/sqlite"
	"github.com/n-takatsu/sqlbridge/value"
)

// Example showing how to create a PostgreSQL config
func ExamplePostgresConfig() {
	cfg := database.PostgresConfig(postgres.Config{
		Connection: postgres.Connection{
			Host:   "localhost",
			Port:   "5432",
			User:   "myuser",
			DbName: "mydb",
		},
	})

	_ = cfg // Use the config with database.NewClient or database.FXModule
}

// Example showing how to create an engine-agnostic service
func ExampleConfig() {
	// This function would be called by your application
	// to select the database based on configuration
	createDatabase := func(dbType string) database.Config {
		switch dbType {
		case "postgres":
			return database.PostgresConfig(postgres.Config{
				Connection: postgres.Connection{
					Host:   "localhost",
					Port:   "5432",
					User:   "myuser",
					DbName: "mydb",
				},
			})
		case "sqlite":
			return database.SQLiteConfig(sqlite.Config{Path: ":memory:"})
		default:
			return database.Config{}
		}
	}

	cfg := createDatabase("sqlite")
	_ = cfg // Pass to database.NewClient or database.FXModule
}

// Example showing an engine-agnostic repository pattern
type OrderRepository struct {
	db database.Client
}

func NewOrderRepository(db database.Client) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) Total(ctx context.Context, customer string) (float64, error) {
	rs, err := r.db.Query(ctx, "SELECT SUM(total) FROM orders WHERE customer = ?",
		value.Text(customer))
	if err != nil {
		return 0, err
	}
	if rs.Len() == 0 {
		return 0, nil
	}
	total, _ := rs.Rows[0][0].AsFloat64()
	return total, nil
}

func (r *OrderRepository) Transfer(ctx context.Context, from, to string, amount float64) error {
	t, err := r.db.Begin(ctx, driver.Serializable)
	if err != nil {
		return err
	}
	if _, err := t.Exec(ctx, "UPDATE accounts SET balance = balance - ? WHERE owner = ?",
		value.Float64(amount), value.Text(from)); err != nil {
		_ = t.Rollback(ctx)
		return err
	}
	if _, err := t.Exec(ctx, "UPDATE accounts SET balance = balance + ? WHERE owner = ?",
		value.Float64(amount), value.Text(to)); err != nil {
		_ = t.Rollback(ctx)
		return err
	}
	return t.Commit(ctx)
}

func ExampleClient() {
	// This would come from database.NewClient or database.FXModule
	var db database.Client

	repo := NewOrderRepository(db)
	_ = repo // Use in your application
}

// Test that config helpers work correctly
func TestConfigHelpers(t *testing.T) {
	t.Run("PostgresConfig", func(t *testing.T) {
		cfg := database.PostgresConfig(postgres.Config{
			Connection: postgres.Connection{
				Host: "localhost",
				Port: "5432",
			},
		})

		if cfg.Type != "postgres" {
			t.Errorf("expected type=postgres, got %s", cfg.Type)
		}
		if cfg.Postgres == nil {
			t.Error("expected Postgres config to be set")
		}
		if cfg.Postgres.Connection.Host != "localhost" {
			t.Errorf("expected host=localhost, got %s", cfg.Postgres.Connection.Host)
		}
	})

	t.Run("SQLiteConfig", func(t *testing.T) {
		cfg := database.SQLiteConfig(sqlite.Config{Path: "/tmp/app.db"})

		if cfg.Type != "sqlite" {
			t.Errorf("expected type=sqlite, got %s", cfg.Type)
		}
		if cfg.SQLite == nil {
			t.Error("expected SQLite config to be set")
		}
	})
}
