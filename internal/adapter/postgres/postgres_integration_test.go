package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sadopc/sqlhint/internal/adapter"
	"github.com/sadopc/sqlhint/internal/schema"
)

// Default DSN for a local PostgreSQL.
// Override with SQLHINT_PG_DSN env var.
const defaultTestDSN = "postgres://localhost:5432/sqlhint_test?sslmode=disable"

func testDSN() string {
	if dsn := os.Getenv("SQLHINT_PG_DSN"); dsn != "" {
		return dsn
	}
	return defaultTestDSN
}

func connectForTest(t *testing.T) adapter.Introspector {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	a := &postgresAdapter{}
	conn, err := a.Connect(ctx, testDSN())
	if err != nil {
		t.Skipf("skipping: cannot connect to PostgreSQL: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func exec(t *testing.T, conn adapter.Introspector, query string) {
	t.Helper()
	pool := conn.(*pgConn).pool
	if _, err := pool.Exec(context.Background(), query); err != nil {
		t.Fatalf("exec %q: %v", query, err)
	}
}

func TestIntegration_Introspection(t *testing.T) {
	conn := connectForTest(t)
	ctx := context.Background()

	exec(t, conn, "DROP VIEW IF EXISTS test_cheap")
	exec(t, conn, "DROP TABLE IF EXISTS test_orders")
	exec(t, conn, "DROP TABLE IF EXISTS test_products")
	exec(t, conn, `
		CREATE TABLE test_products (
			id    SERIAL PRIMARY KEY,
			name  VARCHAR(100) NOT NULL,
			price NUMERIC(10,2)
		)
	`)
	exec(t, conn, `
		CREATE TABLE test_orders (
			id         SERIAL PRIMARY KEY,
			product_id INT REFERENCES test_products(id),
			quantity   INT NOT NULL DEFAULT 1
		)
	`)
	exec(t, conn, "CREATE VIEW test_cheap AS SELECT id, name FROM test_products WHERE price < 10")

	t.Cleanup(func() {
		pool := conn.(*pgConn).pool
		for _, q := range []string{
			"DROP VIEW IF EXISTS test_cheap",
			"DROP TABLE IF EXISTS test_orders",
			"DROP TABLE IF EXISTS test_products",
		} {
			pool.Exec(ctx, q)
		}
	})

	dbs, err := conn.Databases(ctx)
	if err != nil {
		t.Fatalf("Databases: %v", err)
	}

	var public *schema.Schema
	for _, db := range dbs {
		if db.Name != conn.DatabaseName() {
			continue
		}
		for i := range db.Schemas {
			if db.Schemas[i].Name == "public" {
				public = &db.Schemas[i]
			}
		}
	}
	if public == nil {
		t.Fatal("public schema not loaded")
	}

	var products *schema.Table
	for i := range public.Tables {
		if public.Tables[i].Name == "test_products" {
			products = &public.Tables[i]
		}
	}
	if products == nil {
		t.Fatal("test_products not found")
	}
	if len(products.Columns) != 3 {
		t.Fatalf("got %d columns, want 3", len(products.Columns))
	}
	if c := products.Columns[0]; c.Name != "id" || !c.IsPK || c.Nullable {
		t.Errorf("id column = %+v", c)
	}

	found := false
	for _, v := range public.Views {
		if v.Name == "test_cheap" {
			found = len(v.Columns) == 2
		}
	}
	if !found {
		t.Error("test_cheap view with 2 columns not found")
	}
}

func TestIntegration_CurrentDatabaseFallback(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, testDSN())
	if err != nil {
		t.Skipf("skipping: %v", err)
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		t.Skipf("skipping: cannot connect to PostgreSQL: %v", err)
	}

	conn := &pgConn{pool: pool}
	dbs, err := conn.Databases(ctx)
	if err != nil {
		t.Fatalf("Databases: %v", err)
	}
	loaded := 0
	for _, db := range dbs {
		if db.Schemas != nil {
			loaded++
		}
	}
	if loaded > 1 {
		t.Errorf("expected at most one loaded database, got %d", loaded)
	}
}
