// Package postgres stores batch results in PostgreSQL. The schema is owned by
// the goose migrations embedded in the root package.
package postgres

import (
	"context"
	"database/sql"
	"emailcount/pkg/storage"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
)

const (
	dialect = "postgres"

	// DefaultApplicationName is reported to the server when Options leaves it empty.
	DefaultApplicationName = "emailcount"
)

// recordsTable is created by migrations/00001_create_email_counts.sql.
var recordsTable = goqu.T("email_counts") //nolint: gochecknoglobals

// Options holds the connection settings of the results database.
type Options struct {
	Username string
	Password string
	Host     string
	Port     int
	Database string
	// SslMode is passed through as the sslmode parameter (disable, require, ...)
	SslMode string
	// ApplicationName shows up in pg_stat_activity; empty means DefaultApplicationName
	ApplicationName string

	ConnMaxLifetime    time.Duration
	ConnMaxIdleTime    time.Duration
	MaxOpenConnections int
	MaxIdleConnections int
}

// connString renders o as a postgres:// URL so credentials with spaces or
// reserved characters survive parsing.
func (o Options) connString() string {
	q := url.Values{}
	if o.SslMode != "" {
		q.Set("sslmode", o.SslMode)
	}
	appName := o.ApplicationName
	if appName == "" {
		appName = DefaultApplicationName
	}
	q.Set("application_name", appName)

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(o.Username, o.Password),
		Host:     net.JoinHostPort(o.Host, strconv.Itoa(o.Port)),
		Path:     "/" + o.Database,
		RawQuery: q.Encode(),
	}

	return u.String()
}

// DB is the subset of database/sql shared by *sql.DB and *sql.Tx.
type DB interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Builder is the goqu handle bound to DB. Record queries go through the
// records helpers below, which pin it to the email_counts table.
type Builder interface {
	From(table ...interface{}) *goqu.SelectDataset
	Insert(table interface{}) *goqu.InsertDataset
}

// PgSQL implements storage.Storage. Outside a transaction DB is the pool's
// *sql.DB; handles returned by Begin hold the *sql.Tx and no Pool.
type PgSQL struct {
	DB      DB
	Builder Builder
	Pool    *pgxpool.Pool
}

// selectRecords starts a query over email_counts.
func (p *PgSQL) selectRecords() *goqu.SelectDataset {
	return p.Builder.From(recordsTable)
}

// insertRecords starts an insert into email_counts.
func (p *PgSQL) insertRecords() *goqu.InsertDataset {
	return p.Builder.Insert(recordsTable)
}

// Close releases the database/sql wrapper and then the pgx pool it borrows
// connections from. Closing a transactional handle is a no-op.
func (p *PgSQL) Close() error {
	var err error
	if db, ok := p.DB.(*sql.DB); ok {
		if cerr := db.Close(); cerr != nil {
			err = fmt.Errorf("could not close sql db: %w", cerr)
		}
	}
	if p.Pool != nil {
		p.Pool.Close()
	}

	return err
}

// Commit returns storage.ErrNotInTx outside a transaction.
func (p *PgSQL) Commit() error {
	tx, ok := p.DB.(*sql.Tx)
	if !ok {
		return storage.ErrNotInTx
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("could not commit tx: %w", err)
	}

	return nil
}

// Rollback returns storage.ErrNotInTx outside a transaction.
func (p *PgSQL) Rollback() error {
	tx, ok := p.DB.(*sql.Tx)
	if !ok {
		return storage.ErrNotInTx
	}

	if err := tx.Rollback(); err != nil {
		return fmt.Errorf("could not rollback tx: %w", err)
	}

	return nil
}

// Begin starts a read committed transaction. Nested transactions are not
// supported: calling Begin on a transactional handle returns
// storage.ErrAlreadyInTx.
func (p *PgSQL) Begin(ctx context.Context) (storage.TxStorage, error) {
	db, ok := p.DB.(*sql.DB)
	if !ok {
		return nil, storage.ErrAlreadyInTx
	}

	tx, err := db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, fmt.Errorf("could not begin tx: %w", err)
	}

	return &PgSQL{
		DB:      tx,
		Builder: goqu.NewTx(dialect, tx),
	}, nil
}

// WithTx runs cb inside a transaction. The transaction is rolled back when cb
// returns an error or panics, and committed otherwise.
func (p *PgSQL) WithTx(ctx context.Context, cb func(storage storage.RecordStorage) error) error {
	tx, err := p.Begin(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback()

			panic(r)
		}
	}()

	if err := cb(tx); err != nil {
		if rerr := tx.Rollback(); rerr != nil {
			return fmt.Errorf("%w (rollback: %v)", err, rerr) //nolint: errorlint
		}

		return err
	}

	return tx.Commit()
}

// New connects to PostgreSQL through a pgx pool and verifies the connection.
// The pool is also exposed as a *sql.DB for goqu and goose.
func New(ctx context.Context, options Options) (*PgSQL, error) {
	cfg, err := pgxpool.ParseConfig(options.connString())
	if err != nil {
		return nil, fmt.Errorf("could not parse pgxpool config: %w", err)
	}
	if options.MaxOpenConnections > 0 {
		cfg.MaxConns = int32(options.MaxOpenConnections) //nolint: gosec
	}
	if options.MaxIdleConnections > 0 {
		cfg.MinConns = int32(options.MaxIdleConnections) //nolint: gosec
	}
	if options.ConnMaxLifetime > 0 {
		cfg.MaxConnLifetime = options.ConnMaxLifetime
	}
	if options.ConnMaxIdleTime > 0 {
		cfg.MaxConnIdleTime = options.ConnMaxIdleTime
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("could not create pgx Pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()

		return nil, fmt.Errorf("could not ping postgres at %s:%d: %w", options.Host, options.Port, err)
	}

	sqlDB := stdlib.OpenDBFromPool(pool)

	return &PgSQL{
		DB:      sqlDB,
		Builder: goqu.Dialect(dialect).DB(sqlDB),
		Pool:    pool,
	}, nil
}
