package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/andresuchdata/chicken-settlement/backend-go/internal/repository"
	"github.com/andresuchdata/chicken-settlement/backend-go/internal/repository/postgres"
	"github.com/andresuchdata/chicken-settlement/backend-go/pkg/logger"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/urfave/cli/v2"
)

type contextKey string

const dbKey contextKey = "db"

func newDBURLFlag(required bool) *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "db-url",
		Usage:    "Database connection string; report runs are recorded when set",
		Required: required,
		EnvVars:  []string{"DATABASE_URL"},
	}
}

func initDB(c *cli.Context) error {
	if c.String("db-url") == "" {
		return nil
	}

	db, err := sql.Open("pgx", c.String("db-url"))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.PingContext(c.Context); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	wrapped := postgres.Wrap(sqlx.NewDb(db, "pgx"))
	if err := wrapped.EnsureSchema(c.Context); err != nil {
		db.Close()
		return err
	}

	c.Context = context.WithValue(c.Context, dbKey, wrapped)
	return nil
}

func closeDB(c *cli.Context) error {
	if db, ok := c.Context.Value(dbKey).(*postgres.DB); ok && db != nil {
		return db.Close()
	}
	return nil
}

// runRepository returns the database-backed run log, or a noop when no
// database was configured.
func runRepository(c *cli.Context) repository.ReportRunRepository {
	if db, ok := c.Context.Value(dbKey).(*postgres.DB); ok && db != nil {
		return postgres.NewReportRunRepository(db)
	}
	return repository.NewNoopReportRunRepository()
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "settle",
		Usage: "Settle fried chicken sales against reported takings",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				EnvVars: []string{"LOG_LEVEL"},
			},
		},
		Before: func(c *cli.Context) error {
			logger.SetLevel(c.String("log-level"))
			return nil
		},
		Commands: []*cli.Command{
			reportCommand(),
			batchCommand(),
			pricesCommand(),
			historyCommand(),
		},
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("settle failed")
	}
}
