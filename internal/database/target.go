package database

import (
	"context"
	"fmt"

	"github.com/cybertec-postgresql/sqlsplit/internal/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CreateDatabase creates the named database through admin and returns a pool
// connected to it. Connection options (sslmode, credentials, ...) are taken
// from the admin pool.
func CreateDatabase(ctx context.Context, admin *Pool, name string) (*Pool, error) {
	ident := pgx.Identifier{name}.Sanitize()

	if _, err := admin.Exec(ctx, "CREATE DATABASE "+ident); err != nil {
		return nil, &errors.ConnectionError{
			Message:    fmt.Sprintf("failed to create database %s: %v", ident, err),
			Suggestion: "Drop the existing database or pick another name. The connecting role needs the CREATEDB privilege.",
		}
	}

	config := admin.Pool.Config()
	config.ConnConfig.Database = name

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err == nil {
		err = pool.Ping(ctx)
		if err != nil {
			pool.Close()
		}
	}
	if err != nil {
		_ = DropDatabase(ctx, admin, name)
		return nil, &errors.ConnectionError{
			Message: fmt.Sprintf("failed to connect to database %s: %v", ident, err),
		}
	}

	return &Pool{Pool: pool}, nil
}

// DropDatabase drops the named database, terminating remaining sessions
func DropDatabase(ctx context.Context, admin *Pool, name string) error {
	_, err := admin.Exec(ctx, "DROP DATABASE IF EXISTS "+pgx.Identifier{name}.Sanitize()+" WITH (FORCE)")
	return err
}
