package db

import (
	"context"
	"fmt"
	"net/http"
	"regexp"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
)

type contextKey string

const (
	BranchIDKey contextKey = "branch_id"
	DBConnKey   contextKey = "db_conn"
	txKey       contextKey = "db_tx"
)

var branchIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// BranchMiddleware pins each request to the schema of a hospital branch.
// Every branch gets its own Postgres schema (branch_<id>) so records from
// different branches never mix.
func BranchMiddleware(pool *pgxpool.Pool, defaultBranch string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			branchID := extractBranchID(c, defaultBranch)

			if !branchIDPattern.MatchString(branchID) {
				return echo.NewHTTPError(http.StatusBadRequest, "invalid branch identifier")
			}

			ctx := c.Request().Context()
			conn, err := pool.Acquire(ctx)
			if err != nil {
				return echo.NewHTTPError(http.StatusServiceUnavailable, "database unavailable")
			}
			defer conn.Release()

			schema := fmt.Sprintf("branch_%s", branchID)
			_, err = conn.Exec(ctx, fmt.Sprintf("SET search_path TO %s, public", schema))
			if err != nil {
				return echo.NewHTTPError(http.StatusInternalServerError, "branch resolution failed")
			}

			ctx = context.WithValue(ctx, BranchIDKey, branchID)
			ctx = context.WithValue(ctx, DBConnKey, conn)
			c.SetRequest(c.Request().WithContext(ctx))
			c.Set("branch_id", branchID)

			return next(c)
		}
	}
}

func extractBranchID(c echo.Context, defaultBranch string) string {
	// 1. Claim set by the auth middleware
	if bid, ok := c.Get("jwt_branch_id").(string); ok && bid != "" {
		return bid
	}

	// 2. X-Branch-ID header
	if bid := c.Request().Header.Get("X-Branch-ID"); bid != "" {
		return bid
	}

	// 3. Query parameter
	if bid := c.QueryParam("branch_id"); bid != "" {
		return bid
	}

	return defaultBranch
}

// ConnFromContext retrieves the branch-scoped database connection from context.
func ConnFromContext(ctx context.Context) *pgxpool.Conn {
	conn, _ := ctx.Value(DBConnKey).(*pgxpool.Conn)
	return conn
}

// BranchFromContext retrieves the branch ID from context.
func BranchFromContext(ctx context.Context) string {
	bid, _ := ctx.Value(BranchIDKey).(string)
	return bid
}

// CreateBranchSchema creates a new schema for a branch and runs all migrations
// against it. If migrationsDir is empty, migrations are skipped.
func CreateBranchSchema(ctx context.Context, pool *pgxpool.Pool, branchID string, migrationsDir string) error {
	if !branchIDPattern.MatchString(branchID) {
		return fmt.Errorf("invalid branch identifier: %s", branchID)
	}

	schema := fmt.Sprintf("branch_%s", branchID)

	conn, err := pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", schema))
	if err != nil {
		return fmt.Errorf("create schema %s: %w", schema, err)
	}

	if migrationsDir != "" {
		migrator := NewMigrator(pool, migrationsDir)
		if _, err := migrator.Up(ctx, schema); err != nil {
			return fmt.Errorf("run migrations for %s: %w", schema, err)
		}
	}

	return nil
}
