package mariadb_test

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"os"
	"testing"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/go-connections/nat"
	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/n-takatsu/sqlbridge/database"
	"github.com/n-takatsu/sqlbridge/driver"
	"github.com/n-takatsu/sqlbridge/mariadb"
	"github.com/n-takatsu/sqlbridge/pool"
	"github.com/n-takatsu/sqlbridge/tx"
	"github.com/n-takatsu/sqlbridge/value"
)

// MariaDBContainer represents a MariaDB container for testing
type MariaDBContainer struct {
	testcontainers.Container
	Config mariadb.Config
	Host   string
	Port   string
}

// setupMariaDBContainer sets up a MariaDB container for testing
func setupMariaDBContainer(ctx context.Context) (*MariaDBContainer, error) {
	// Get a random free port
	port, err := getFreePort()
	if err != nil {
		return nil, fmt.Errorf("could not get free port: %w", err)
	}

	portStr := fmt.Sprintf("%d", port)
	portBindings := nat.PortMap{
		"3306/tcp": []nat.PortBinding{{HostPort: portStr}},
	}

	// Define container request
	req := testcontainers.ContainerRequest{
		Image: "mariadb:10.11",
		Env: map[string]string{
			"MARIADB_USER":          "testuser",
			"MARIADB_PASSWORD":      "testpass",
			"MARIADB_DATABASE":      "testdb",
			"MARIADB_ROOT_PASSWORD": "rootpass",
		},
		ExposedPorts: []string{"3306/tcp"},
		HostConfigModifier: func(cfg *container.HostConfig) {
			cfg.PortBindings = portBindings
		},
		WaitingFor: wait.ForLog("ready for connections").WithStartupTimeout(60 * time.Second),
	}

	// Start container
	mc, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start mariadb container: %w", err)
	}

	// Get host
	host, err := mc.Host(ctx)
	if err != nil {
		_ = mc.Terminate(ctx)
		return nil, fmt.Errorf("failed to get host: %w", err)
	}

	// Double-check port mapping (could be different from requested)
	mappedPort, err := mc.MappedPort(ctx, "3306")
	if err != nil {
		_ = mc.Terminate(ctx)
		return nil, fmt.Errorf("failed to get mapped port: %w", err)
	}
	portStr = mappedPort.Port()

	// Wait for MariaDB to be fully ready for connections
	fmt.Printf("Waiting for MariaDB to be ready on %s:%s...\n", host, portStr)
	err = waitForMariaDBReady(host, portStr, "testuser", "testpass", "testdb", 60*time.Second)
	if err != nil {
		_ = mc.Terminate(ctx)
		return nil, fmt.Errorf("mariadb container not ready: %w", err)
	}
	fmt.Printf("MariaDB is ready on %s:%s\n", host, portStr)

	return &MariaDBContainer{
		Container: mc,
		Config: mariadb.Config{
			Connection: mariadb.Connection{
				Host:     host,
				Port:     portStr,
				User:     "testuser",
				Password: "testpass",
				DbName:   "testdb",
			},
			MultiStatements: true,
		},
		Host: host,
		Port: portStr,
	}, nil
}

// getFreePort gets a free port from the OS
func getFreePort() (int, error) {
	addr, err := net.Listen("tcp", "localhost:0")
	if err != nil {
		return 0, err
	}
	defer func(addr net.Listener) {
		err := addr.Close()
		if err != nil {
			fmt.Printf("Failed to close listener: %v", err)
		}
	}(addr)

	return addr.Addr().(*net.TCPAddr).Port, nil
}

// waitForMariaDBReady attempts to connect to MariaDB until it's ready or times out
func waitForMariaDBReady(host, port, user, password, dbname string, timeout time.Duration) error {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s", user, password, host, port, dbname)

	startTime := time.Now()
	for {
		if time.Since(startTime) > timeout {
			return fmt.Errorf("timed out waiting for MariaDB to be ready after %s", timeout)
		}

		db, err := sql.Open("mysql", dsn)
		if err != nil {
			time.Sleep(500 * time.Millisecond)
			continue
		}

		err = db.Ping()
		if err == nil {
			err = db.Close()
			if err != nil {
				return fmt.Errorf("error closing database connection: %w", err)
			}
			return nil
		}

		_ = db.Close()
		time.Sleep(500 * time.Millisecond)
	}
}

// TestMain sets up the testing environment
func TestMain(m *testing.M) {
	code := m.Run()
	os.Exit(code)
}

func TestMariaDBClient(t *testing.T) {
	// Skip if running in short mode
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	mc, err := setupMariaDBContainer(ctx)
	require.NoError(t, err)
	defer func() {
		if err := mc.Terminate(ctx); err != nil {
			t.Fatalf("failed to terminate container: %s", err)
		}
	}()

	t.Logf("Using MariaDB on %s:%s", mc.Host, mc.Port)

	client, err := database.NewClient(database.Config{
		Type:    "mariadb",
		MariaDB: &mc.Config,
		Pool:    pool.Config{MaxSize: 4, AcquireTimeout: 5 * time.Second},
	})
	require.NoError(t, err)
	require.NoError(t, client.Connect(ctx))
	defer func() { _ = client.GracefulShutdown() }()

	version, err := client.Version(ctx)
	require.NoError(t, err)
	assert.Contains(t, version, "MariaDB")
	assert.True(t, client.HealthCheck(ctx))

	t.Run("MultiStatementMigration", func(t *testing.T) {
		require.NoError(t, client.ApplyMigration(ctx, `
			CREATE TABLE items (
				id INT AUTO_INCREMENT PRIMARY KEY,
				ref CHAR(36) NOT NULL,
				name VARCHAR(255) NOT NULL,
				price DECIMAL(10,2),
				meta JSON,
				created_at DATETIME NOT NULL
			);
			CREATE INDEX idx_items_ref ON items (ref);
		`))
	})

	t.Run("CRUDRoundTrip", func(t *testing.T) {
		ref := uuid.New()
		meta, err := value.ParseJSON([]byte(`{"tags":["new"],"stock":5}`))
		require.NoError(t, err)
		created := time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)

		affected, err := client.Exec(ctx,
			"INSERT INTO items (ref, name, price, meta, created_at) VALUES (?, ?, ?, ?, ?)",
			value.Text(ref.String()), value.Text("widget"), value.Float64(9.99),
			value.JSON(meta), value.Timestamp(created))
		require.NoError(t, err)
		assert.Equal(t, int64(1), affected)

		rs, err := client.Query(ctx,
			"SELECT ref, name, price, meta, created_at FROM items WHERE ref = ?",
			value.Text(ref.String()))
		require.NoError(t, err)
		require.Equal(t, 1, rs.Len())

		gotRef, _ := rs.Rows[0][0].AsText()
		assert.Equal(t, ref.String(), gotRef)

		name, _ := rs.Rows[0][1].AsText()
		assert.Equal(t, "widget", name)

		// DECIMAL arrives as text on the wire and decodes to float64.
		price, ok := rs.Rows[0][2].AsFloat64()
		require.True(t, ok)
		assert.Equal(t, 9.99, price)

		doc, ok := rs.Rows[0][3].AsJSON()
		require.True(t, ok)
		assert.True(t, doc.Equal(meta))

		ts, ok := rs.Rows[0][4].AsTime()
		require.True(t, ok)
		assert.True(t, ts.Equal(created))

		affected, err = client.Exec(ctx, "DELETE FROM items WHERE ref = ?", value.Text(ref.String()))
		require.NoError(t, err)
		assert.Equal(t, int64(1), affected)
	})

	t.Run("PrepareSurfacesSyntaxErrors", func(t *testing.T) {
		require.NoError(t, client.Prepare(ctx, "SELECT name FROM items WHERE id = ?"))

		err := client.Prepare(ctx, "SELEKT name FROM items")
		assert.True(t, driver.IsSyntaxError(err), "got %v", err)

		err = client.Prepare(ctx, "SELECT * FROM no_such_table")
		assert.True(t, driver.IsSyntaxError(err), "got %v", err)

		assert.True(t, client.HealthCheck(ctx))
	})

	t.Run("IsolationLevelsAppliedAsRequested", func(t *testing.T) {
		for _, level := range []driver.IsolationLevel{
			driver.ReadUncommitted,
			driver.ReadCommitted,
			driver.RepeatableRead,
			driver.Serializable,
		} {
			transaction, err := client.Begin(ctx, level)
			require.NoError(t, err)
			assert.Equal(t, level, transaction.AppliedIsolation())
			require.NoError(t, transaction.Rollback(ctx))
		}
	})

	t.Run("TransactionCommitRollbackSavepoints", func(t *testing.T) {
		require.NoError(t, client.ApplyMigration(ctx,
			`CREATE TABLE accounts (id INT PRIMARY KEY, balance BIGINT NOT NULL)`))
		_, err := client.Exec(ctx, "INSERT INTO accounts (id, balance) VALUES (?, ?)",
			value.Int64(1), value.Int64(1000))
		require.NoError(t, err)

		transaction, err := client.Begin(ctx, driver.RepeatableRead)
		require.NoError(t, err)

		_, err = transaction.Exec(ctx,
			"UPDATE accounts SET balance = balance - ? WHERE id = ?",
			value.Int64(100), value.Int64(1))
		require.NoError(t, err)

		require.NoError(t, transaction.Savepoint(ctx, "debit"))
		_, err = transaction.Exec(ctx,
			"UPDATE accounts SET balance = balance - ? WHERE id = ?",
			value.Int64(500), value.Int64(1))
		require.NoError(t, err)

		require.NoError(t, transaction.RollbackToSavepoint(ctx, "debit"))
		require.NoError(t, transaction.Commit(ctx))

		rs, err := client.Query(ctx, "SELECT balance FROM accounts WHERE id = ?", value.Int64(1))
		require.NoError(t, err)
		balance, _ := rs.Rows[0][0].AsInt64()
		assert.Equal(t, int64(900), balance)
	})

	t.Run("DeadlockIsRetryable", func(t *testing.T) {
		require.NoError(t, client.ApplyMigration(ctx,
			`CREATE TABLE locks (id INT PRIMARY KEY, n INT NOT NULL)`))
		_, err := client.Exec(ctx, "INSERT INTO locks (id, n) VALUES (1, 0), (2, 0)")
		require.NoError(t, err)

		// Two transactions lock the rows in opposite order. InnoDB detects
		// the cycle and kills one with error 1213.
		tx1, err := client.Begin(ctx, driver.RepeatableRead)
		require.NoError(t, err)
		tx2, err := client.Begin(ctx, driver.RepeatableRead)
		require.NoError(t, err)

		_, err = tx1.Exec(ctx, "UPDATE locks SET n = n + 1 WHERE id = ?", value.Int64(1))
		require.NoError(t, err)
		_, err = tx2.Exec(ctx, "UPDATE locks SET n = n + 1 WHERE id = ?", value.Int64(2))
		require.NoError(t, err)

		done := make(chan error, 1)
		go func() {
			_, err := tx1.Exec(ctx, "UPDATE locks SET n = n + 1 WHERE id = ?", value.Int64(2))
			done <- err
		}()

		_, err2 := tx2.Exec(ctx, "UPDATE locks SET n = n + 1 WHERE id = ?", value.Int64(1))
		err1 := <-done

		// Exactly one of the two fails with a deadlock.
		var victim, survivorErr error
		var survivor *tx.Tx
		switch {
		case err1 != nil:
			victim, survivor, survivorErr = err1, tx2, err2
		default:
			victim, survivor, survivorErr = err2, tx1, err1
		}
		require.Error(t, victim)
		require.NoError(t, survivorErr)
		assert.True(t, client.IsRetryable(victim), "got %v", victim)

		require.NoError(t, survivor.Commit(ctx))
		if err1 != nil {
			_ = tx1.Rollback(ctx)
		} else {
			_ = tx2.Rollback(ctx)
		}
	})

	t.Run("ParameterCountMismatch", func(t *testing.T) {
		_, err := client.Exec(ctx, "INSERT INTO accounts (id, balance) VALUES (?, ?)", value.Int64(9))
		var mismatch *driver.ParameterCountMismatchError
		require.ErrorAs(t, err, &mismatch)
		assert.Equal(t, 2, mismatch.Expected)
		assert.Equal(t, 1, mismatch.Got)
	})
}
