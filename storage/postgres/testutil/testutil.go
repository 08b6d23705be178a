package testutil

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zihgir1/BEVM/log"
	"github.com/zihgir1/BEVM/storage/postgres"
)

// ConnString returns the connection string of the CI database, skipping the
// test if there is none or if tests run in short mode.
func ConnString(t *testing.T) string {
	if testing.Short() {
		t.Skip("skipping database test in short mode")
	}
	connString := os.Getenv("CI_TEST_CONN_STRING")
	if connString == "" {
		t.Skip("CI_TEST_CONN_STRING not set")
	}
	return connString
}

// NewTestClient returns a postgres client used in CI tests.
func NewTestClient(t *testing.T) *postgres.Client {
	connString := ConnString(t)
	logger, err := log.NewLogger("postgres-test", os.Stdout, log.FmtJSON, log.LevelError)
	require.Nil(t, err, "log.NewLogger")

	client, err := postgres.NewClient(connString, logger)
	require.Nil(t, err, "postgres.NewClient")
	return client
}
