// Package postgres implements the publication store backed by PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	migrate "github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres" // postgres driver for golang_migrate
	_ "github.com/golang-migrate/migrate/v4/source/file"       // support file scheme for golang_migrate
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/tracelog"

	"github.com/zihgir1/BEVM/common"
	"github.com/zihgir1/BEVM/log"
	"github.com/zihgir1/BEVM/metrics"
	"github.com/zihgir1/BEVM/storage"
)

const (
	moduleName = "postgres"
)

// Client is a client for connecting to PostgreSQL.
type Client struct {
	pool    *pgxpool.Pool
	logger  *log.Logger
	metrics metrics.DatabaseMetrics
}

var _ storage.PublicationStore = (*Client)(nil)

// pgxLogger is a pgx-compatible logger interface that uses the standard
// logger as the backend.
type pgxLogger struct {
	logger *log.Logger
}

// logFuncForLevel maps a pgx log severity level to a corresponding logger function.
func (l *pgxLogger) logFuncForLevel(level tracelog.LogLevel) func(string, ...interface{}) {
	switch level {
	case tracelog.LogLevelTrace, tracelog.LogLevelDebug:
		return l.logger.Debug
	case tracelog.LogLevelInfo:
		return l.logger.Info
	case tracelog.LogLevelWarn:
		return l.logger.Warn
	case tracelog.LogLevelError, tracelog.LogLevelNone:
		return l.logger.Error
	default:
		l.logger.Warn("Unknown log level", "unknown_level", level)
		return l.logger.Info
	}
}

// Implements tracelog.Logger interface.
func (l *pgxLogger) Log(ctx context.Context, level tracelog.LogLevel, msg string, data map[string]interface{}) {
	args := []interface{}{}
	for k, v := range data {
		args = append(args, k, v)
	}

	logFunc := l.logFuncForLevel(level)
	logFunc(msg, args...)
}

// NewClient creates a new PostgreSQL client.
func NewClient(connString string, l *log.Logger) (*Client, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, err
	}

	// For a log line to be produced, it needs to be >= the level specified
	// here, and >= the level of the underlying logger. "Info" level logs
	// every SQL statement executed.
	config.ConnConfig.Tracer = &tracelog.TraceLog{
		LogLevel: tracelog.LogLevelWarn,
		Logger: &pgxLogger{
			logger: l.WithModule(moduleName).With("db", config.ConnConfig.Database),
		},
	}

	pool, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return nil, err
	}
	return &Client{
		pool:    pool,
		logger:  l.WithModule(moduleName),
		metrics: metrics.NewDefaultDatabaseMetrics("chainspec"),
	}, nil
}

// Migrate applies the schema migrations found at the migrations source URL
// (e.g. `file://storage/migrations`).
func Migrate(migrations, connString string, l *log.Logger) error {
	logger := l.WithModule(moduleName)
	m, err := migrate.New(migrations, connString)
	if err != nil {
		logger.Error("migrator failed to start",
			"error", err,
		)
		return err
	}
	defer func() {
		srcErr, dbErr := m.Close()
		if srcErr != nil || dbErr != nil {
			logger.Warn("closing migrator failed", "source_err", srcErr, "db_err", dbErr)
		}
	}()

	switch err = m.Up(); {
	case errors.Is(err, migrate.ErrNoChange):
		logger.Info("no migrations needed to be applied")
	case err != nil:
		logger.Error("migrations failed",
			"error", err,
		)
		return err
	default:
		logger.Info("migrations completed")
	}
	return nil
}

func (c *Client) observe(operation string, err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	c.metrics.DatabaseOperations(moduleName, operation, status).Inc()
}

// RecordPublication implements the storage.PublicationStore interface for Client.
func (c *Client) RecordPublication(ctx context.Context, p *storage.Publication) (err error) {
	timer := c.metrics.DatabaseLatencies(moduleName, "record_publication")
	defer timer.ObserveDuration()
	defer func() { c.observe("record_publication", err) }()

	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	if !p.Profile.Valid() {
		return fmt.Errorf("%w: %d", common.ErrUnknownProfile, uint8(p.Profile))
	}

	if _, err = c.pool.Exec(ctx, `
		INSERT INTO chainspec.publications (id, profile, chain_id, genesis_hash, spec_hash, frozen, size, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		p.ID.String(),
		p.Profile.String(),
		p.ChainID,
		p.GenesisHash,
		p.SpecHash,
		p.Frozen,
		p.Size,
		p.CreatedAt,
	); err != nil {
		c.logger.Error("failed to record publication",
			"error", err,
			"profile", p.Profile.String(),
			"spec_hash", p.SpecHash,
		)
		return err
	}
	return nil
}

// Publications implements the storage.PublicationStore interface for Client.
func (c *Client) Publications(ctx context.Context, filter storage.PublicationFilter) (_ []storage.Publication, err error) {
	timer := c.metrics.DatabaseLatencies(moduleName, "publications")
	defer timer.ObserveDuration()
	defer func() { c.observe("publications", err) }()

	var profile *string
	if filter.Profile != nil {
		s := filter.Profile.String()
		profile = &s
	}
	limit := filter.Limit
	if limit == 0 {
		limit = 100
	}

	rows, err := c.Query(ctx, `
		SELECT id::text, profile, chain_id, genesis_hash, spec_hash, frozen, size, created_at
		FROM chainspec.publications
		WHERE ($1::text IS NULL OR profile = $1::text)
		ORDER BY created_at DESC, id
		LIMIT $2::bigint
		OFFSET $3::bigint`,
		profile, limit, filter.Offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	publications := []storage.Publication{}
	for rows.Next() {
		var p storage.Publication
		var id, profileName string
		if err = rows.Scan(
			&id,
			&profileName,
			&p.ChainID,
			&p.GenesisHash,
			&p.SpecHash,
			&p.Frozen,
			&p.Size,
			&p.CreatedAt,
		); err != nil {
			return nil, err
		}
		if p.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("publication id '%s': %w", id, err)
		}
		if p.Profile, err = common.ParseProfile(profileName); err != nil {
			return nil, err
		}
		publications = append(publications, p)
	}
	return publications, rows.Err()
}

// Query submits a new read query to PostgreSQL.
func (c *Client) Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error) {
	rows, err := c.pool.Query(ctx, sql, args...)
	if err != nil {
		c.logger.Error("failed to query db",
			"error", err,
			"query_cmd", sql,
			"query_args", args,
		)
		return nil, err
	}
	return rows, nil
}

// QueryRow submits a new read query for a single row to PostgreSQL.
func (c *Client) QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row {
	return c.pool.QueryRow(ctx, sql, args...)
}

// Close implements the storage.PublicationStore interface for Client.
func (c *Client) Close() {
	c.pool.Close()
}

// Name implements the storage.PublicationStore interface for Client.
func (c *Client) Name() string {
	return moduleName
}

// Returns all tables that are not internal to Postgres. Table names are fully-qualified,
// i.e. of the form "<schema>.<table>".
func (c *Client) listTables(ctx context.Context) ([]string, error) {
	rows, err := c.Query(ctx, `
		SELECT schemaname, tablename
		FROM pg_tables
		WHERE schemaname != 'information_schema' AND schemaname NOT LIKE 'pg_%'
	`)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}

	tables := []string{}
	defer rows.Close() // Ensure rows is closed even if we return early.
	for rows.Next() {
		var schema, table string
		if err = rows.Scan(&schema, &table); err != nil {
			return nil, err
		}
		tables = append(tables, fmt.Sprintf("%s.%s", schema, table))
	}
	return tables, nil
}

// Wipe removes all tables of the database, including the migration
// bookkeeping.
func (c *Client) Wipe(ctx context.Context) error {
	tables, err := c.listTables(ctx)
	if err != nil {
		return err
	}
	for _, table := range tables {
		c.logger.Info("dropping table", "table", table)
		if _, err = c.pool.Exec(ctx, fmt.Sprintf("DROP TABLE %s CASCADE;", table)); err != nil {
			return err
		}
	}
	return nil
}
