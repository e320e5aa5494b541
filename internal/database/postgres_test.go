package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/HammerMeetNail/secretapp/internal/config"
)

var testDBConfig = config.DatabaseConfig{
	Host:     "localhost",
	Port:     5432,
	User:     "secretapp",
	Password: "secretapp",
	DBName:   "secretapp",
	SSLMode:  "disable",
}

func TestNewPostgresDB_ParseError(t *testing.T) {
	origParse := parsePGConfig
	t.Cleanup(func() { parsePGConfig = origParse })
	parsePGConfig = func(dsn string) (*pgxpool.Config, error) {
		return nil, errors.New("bad dsn")
	}

	_, err := NewPostgresDB(config.DatabaseConfig{Host: "bad"})
	if err == nil || err.Error() == "" {
		t.Fatal("expected parse error")
	}
}

func TestNewPostgresDB_PingError(t *testing.T) {
	origParse := parsePGConfig
	origNew := newPGPool
	origPing := pingPGPool
	origClose := closePGPool
	t.Cleanup(func() {
		parsePGConfig = origParse
		newPGPool = origNew
		pingPGPool = origPing
		closePGPool = origClose
	})

	cfg := &pgxpool.Config{}
	parsePGConfig = func(dsn string) (*pgxpool.Config, error) {
		return cfg, nil
	}
	pool := &pgxpool.Pool{}
	newPGPool = func(ctx context.Context, config *pgxpool.Config) (*pgxpool.Pool, error) {
		return pool, nil
	}
	pingPGPool = func(ctx context.Context, pool *pgxpool.Pool) error {
		return errors.New("ping failed")
	}
	closePGPool = func(pool *pgxpool.Pool) {}

	_, err := NewPostgresDB(testDBConfig)
	if err == nil || err.Error() == "" {
		t.Fatal("expected ping error")
	}
}

func TestNewPostgresDB_NewPoolError(t *testing.T) {
	origParse := parsePGConfig
	origNew := newPGPool
	t.Cleanup(func() {
		parsePGConfig = origParse
		newPGPool = origNew
	})

	parsePGConfig = func(dsn string) (*pgxpool.Config, error) {
		return &pgxpool.Config{}, nil
	}
	newPGPool = func(ctx context.Context, config *pgxpool.Config) (*pgxpool.Pool, error) {
		return nil, errors.New("new pool error")
	}

	_, err := NewPostgresDB(testDBConfig)
	if err == nil || err.Error() == "" {
		t.Fatal("expected new pool error")
	}
}

func TestNewPostgresDB_SuccessConfigValues(t *testing.T) {
	origParse := parsePGConfig
	origNew := newPGPool
	origPing := pingPGPool
	origClose := closePGPool
	t.Cleanup(func() {
		parsePGConfig = origParse
		newPGPool = origNew
		pingPGPool = origPing
		closePGPool = origClose
	})

	cfg := &pgxpool.Config{}
	parsePGConfig = func(dsn string) (*pgxpool.Config, error) {
		return cfg, nil
	}
	pool := &pgxpool.Pool{}
	newPGPool = func(ctx context.Context, config *pgxpool.Config) (*pgxpool.Pool, error) {
		return pool, nil
	}
	pingPGPool = func(ctx context.Context, pool *pgxpool.Pool) error {
		return nil
	}
	closePGPool = func(pool *pgxpool.Pool) {}

	db, err := NewPostgresDB(testDBConfig)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if db.Pool != pool {
		t.Fatal("expected returned pool to match stubbed pool")
	}
	if cfg.MaxConns != 25 {
		t.Fatalf("expected MaxConns 25, got %d", cfg.MaxConns)
	}
	if cfg.MinConns != 5 {
		t.Fatalf("expected MinConns 5, got %d", cfg.MinConns)
	}
	if cfg.MaxConnLifetime != time.Hour {
		t.Fatalf("expected MaxConnLifetime 1h, got %v", cfg.MaxConnLifetime)
	}
	if cfg.MaxConnIdleTime != 30*time.Minute {
		t.Fatalf("expected MaxConnIdleTime 30m, got %v", cfg.MaxConnIdleTime)
	}
	if cfg.HealthCheckPeriod != time.Minute {
		t.Fatalf("expected HealthCheckPeriod 1m, got %v", cfg.HealthCheckPeriod)
	}
}

func TestPostgresDB_Close_CallsPoolClose(t *testing.T) {
	origClose := closePGPool
	t.Cleanup(func() { closePGPool = origClose })

	called := false
	closePGPool = func(pool *pgxpool.Pool) {
		called = true
	}

	db := &PostgresDB{Pool: &pgxpool.Pool{}}
	db.Close()

	if !called {
		t.Fatal("expected closePGPool to be called")
	}
}

func TestPostgresDB_Close_NilPool(t *testing.T) {
	db := &PostgresDB{}
	db.Close()
}

func TestNewPostgresDB_UsesConfiguredPool(t *testing.T) {
	origParse := parsePGConfig
	origNew := newPGPool
	origPing := pingPGPool
	t.Cleanup(func() {
		parsePGConfig = origParse
		newPGPool = origNew
		pingPGPool = origPing
	})

	var gotDSN string
	cfg := &pgxpool.Config{ConnConfig: &pgx.ConnConfig{}}
	parsePGConfig = func(dsn string) (*pgxpool.Config, error) {
		gotDSN = dsn
		return cfg, nil
	}
	newPGPool = func(ctx context.Context, config *pgxpool.Config) (*pgxpool.Pool, error) {
		return &pgxpool.Pool{}, nil
	}
	pingPGPool = func(ctx context.Context, pool *pgxpool.Pool) error { return nil }

	dbCfg := testDBConfig
	dbCfg.MaxConns = 12
	dbCfg.MinConns = 2
	dbCfg.SlowQueryThreshold = 100 * time.Millisecond

	if _, err := NewPostgresDB(dbCfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotDSN != dbCfg.DSN() {
		t.Fatalf("expected DSN %q, got %q", dbCfg.DSN(), gotDSN)
	}
	if cfg.MaxConns != 12 || cfg.MinConns != 2 {
		t.Fatalf("expected 12/2 conns, got %d/%d", cfg.MaxConns, cfg.MinConns)
	}
	if _, ok := cfg.ConnConfig.Tracer.(*slowQueryTracer); !ok {
		t.Fatalf("expected slow query tracer, got %T", cfg.ConnConfig.Tracer)
	}
}

func TestSlowQueryTracer(t *testing.T) {
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		elapsed time.Duration
		err     error
		logged  bool
	}{
		{name: "fast query", elapsed: 10 * time.Millisecond},
		{name: "slow query", elapsed: 300 * time.Millisecond, logged: true},
		{name: "slow failing query", elapsed: time.Second, err: errors.New("boom"), logged: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var fields map[string]interface{}
			calls := 0
			now := base
			tracer := &slowQueryTracer{
				threshold: 250 * time.Millisecond,
				now:       func() time.Time { return now },
				log: func(msg string, f ...map[string]interface{}) {
					calls++
					fields = f[0]
				},
			}

			ctx := tracer.TraceQueryStart(context.Background(), nil, pgx.TraceQueryStartData{SQL: "SELECT 1"})
			now = base.Add(tt.elapsed)
			tracer.TraceQueryEnd(ctx, nil, pgx.TraceQueryEndData{Err: tt.err})

			if (calls == 1) != tt.logged {
				t.Fatalf("expected logged=%v, got %d calls", tt.logged, calls)
			}
			if !tt.logged {
				return
			}
			if fields["sql"] != "SELECT 1" {
				t.Errorf("unexpected sql field %v", fields["sql"])
			}
			if fields["duration_ms"] != tt.elapsed.Milliseconds() {
				t.Errorf("unexpected duration %v", fields["duration_ms"])
			}
			if _, ok := fields["error"]; ok != (tt.err != nil) {
				t.Errorf("unexpected error field presence: %v", fields)
			}
		})
	}
}

func TestSlowQueryTracer_NoStartData(t *testing.T) {
	called := false
	tracer := &slowQueryTracer{log: func(string, ...map[string]interface{}) { called = true }}
	tracer.TraceQueryEnd(context.Background(), nil, pgx.TraceQueryEndData{})
	if called {
		t.Fatal("expected no log without start data")
	}
}

func TestTruncateSQL(t *testing.T) {
	long := make([]byte, 250)
	for i := range long {
		long[i] = 'x'
	}
	if got := truncateSQL(string(long), 200); len(got) != 203 {
		t.Fatalf("expected truncated length 203, got %d", len(got))
	}
	if got := truncateSQL("SELECT 1", 200); got != "SELECT 1" {
		t.Fatalf("unexpected %q", got)
	}
}
