package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestUniqueViolation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		constraint string
		ok         bool
	}{
		{
			name:       "unique violation",
			err:        &pgconn.PgError{Code: "23505", ConstraintName: "orders_pkey"},
			constraint: "orders_pkey",
			ok:         true,
		},
		{
			name:       "wrapped unique violation",
			err:        fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "orders_one_draft_per_batch"}),
			constraint: "orders_one_draft_per_batch",
			ok:         true,
		},
		{
			name: "other pg error",
			err:  &pgconn.PgError{Code: "23514"},
		},
		{
			name: "plain error",
			err:  errors.New("boom"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			constraint, ok := UniqueViolation(tt.err)
			if ok != tt.ok || constraint != tt.constraint {
				t.Fatalf("got (%q, %v), want (%q, %v)", constraint, ok, tt.constraint, tt.ok)
			}
		})
	}
}

func TestTxFromContext_Empty(t *testing.T) {
	if tx := TxFromContext(context.Background()); tx != nil {
		t.Fatalf("expected no transaction in background context")
	}
}

func TestConfigDSN(t *testing.T) {
	cfg := &Config{Host: "db", Port: "5432", User: "u", Password: "p", DBName: "inv", SSLMode: "disable"}
	want := "postgres://u:p@db:5432/inv?sslmode=disable"
	if got := cfg.DSN(); got != want {
		t.Fatalf("DSN() = %q, want %q", got, want)
	}
}
