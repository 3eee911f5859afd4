package main

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/storefront/internal/storage/postgres"
)

func lookupMap(values map[string]string) func(string) string {
	return func(key string) string { return values[key] }
}

func TestParseFlags(t *testing.T) {
	opts, err := parseFlags([]string{"-direction= DOWN ", "-steps=2"}, lookupMap(map[string]string{
		envPostgresDSN: " postgres://localhost/storefront ",
	}))
	require.NoError(t, err)
	assert.Equal(t, options{direction: "down", steps: 2, dsn: "postgres://localhost/storefront"}, opts)

	opts, err = parseFlags([]string{"-dsn=postgres://flag"}, lookupMap(map[string]string{
		envPostgresDSN: "postgres://env",
	}))
	require.NoError(t, err)
	assert.Equal(t, "postgres://flag", opts.dsn, "флаг важнее окружения")
	assert.Equal(t, "up", opts.direction)
}

func TestParseFlags_Errors(t *testing.T) {
	tests := map[string][]string{
		"unknown direction": {"-direction=sideways", "-dsn=x"},
		"missing dsn":       {"-direction=status"},
		"negative steps":    {"-steps=-1", "-dsn=x"},
		"unknown flag":      {"-force"},
	}
	for name, args := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := parseFlags(args, lookupMap(nil))
			assert.Error(t, err)
		})
	}
}

func TestPrintState(t *testing.T) {
	var out bytes.Buffer
	printState(&out, "status", postgres.MigrationState{CurrentVersion: 1, Applied: 1, Pending: []string{"0002_images"}})
	assert.Equal(t, "migration status: version=1 applied=1\n  pending: 0002_images\n", out.String())

	out.Reset()
	printState(&out, "up", postgres.MigrationState{CurrentVersion: 2, Applied: 2})
	assert.Equal(t, "migrate up ok: version=2 applied=2\n", out.String())
}

func testPostgresDSN(t *testing.T) string {
	t.Helper()

	dsn := strings.TrimSpace(os.Getenv("SF_POSTGRES_TEST_DSN"))
	if dsn == "" {
		t.Skip("SF_POSTGRES_TEST_DSN is not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	store, err := postgres.Open(ctx, dsn)
	if err != nil {
		t.Skipf("postgres is not available: %v", err)
	}
	_ = store.Close()
	return dsn
}

func TestRun_StatusUpDown(t *testing.T) {
	dsn := testPostgresDSN(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var out bytes.Buffer
	require.NoError(t, run(ctx, options{direction: "up", dsn: dsn}, &out))
	assert.Contains(t, out.String(), "migrate up ok")

	out.Reset()
	require.NoError(t, run(ctx, options{direction: "status", dsn: dsn}, &out))
	assert.Contains(t, out.String(), "migration status")
	assert.NotContains(t, out.String(), "pending")
}
