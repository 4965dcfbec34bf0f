// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package store persists tracker state in PostgreSQL.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/linuxfoundation/lfx-v2-zoom-tracker/internal/domain"
	"github.com/linuxfoundation/lfx-v2-zoom-tracker/internal/logging"
)

// tracerName is the instrumentation name for the store package.
const tracerName = "github.com/linuxfoundation/lfx-v2-zoom-tracker/internal/infrastructure/store"

// uniqueViolation is the PostgreSQL SQLSTATE for a unique constraint failure.
const uniqueViolation = "23505"

// Pool settings for the tracker's low concurrency workload.
const (
	maxOpenConns    = 10
	maxIdleConns    = 5
	connMaxLifetime = 30 * time.Minute
)

// Open connects to PostgreSQL and verifies the connection.
func Open(ctx context.Context, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(connMaxLifetime)

	slog.InfoContext(ctx, "database connection established",
		"max_open_conns", maxOpenConns,
		"max_idle_conns", maxIdleConns,
	)
	return db, nil
}

// NewRepositories builds every repository over one connection pool.
func NewRepositories(db *sqlx.DB) domain.Repositories {
	return domain.Repositories{
		Tokens:       NewTokenRepository(db),
		Meetings:     NewMeetingRepository(db),
		Participants: NewParticipantRepository(db),
		Recordings:   NewRecordingRepository(db),
	}
}

// Clear deletes all tracked meetings, participants and recordings in one
// transaction. Tokens are deleted only when includeTokens is set.
func Clear(ctx context.Context, db *sqlx.DB, includeTokens bool) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	tables := []string{"participants", "recordings", "meetings"}
	if includeTokens {
		tables = append(tables, "oauth_tokens")
	}
	for _, table := range tables {
		res, err := tx.ExecContext(ctx, "DELETE FROM "+table)
		if err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
		n, _ := res.RowsAffected()
		slog.InfoContext(ctx, "cleared table", "table", table, "rows", n)
	}
	return tx.Commit()
}

// base carries the shared tracing and error mapping of the repositories.
type base struct {
	db     *sqlx.DB
	entity string
	table  string
}

func (b base) startSpan(ctx context.Context, operation string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append([]attribute.KeyValue{
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation", operation),
		attribute.String("db.sql.table", b.table),
	}, attrs...)
	return otel.Tracer(tracerName).Start(ctx, "postgres."+b.table+"."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrs...),
	)
}

// fail maps a database error to the domain taxonomy and records it on the span.
// notFound is the sentinel wrapped when no row matched.
func (b base) fail(ctx context.Context, span trace.Span, op string, err error, notFound error) error {
	var pqErr *pq.Error
	switch {
	case errors.Is(err, sql.ErrNoRows):
		err = domain.NewNotFoundError(b.entity+" not found", notFound)
		span.SetStatus(codes.Error, "not found")
	case errors.As(err, &pqErr) && pqErr.Code == uniqueViolation:
		err = domain.NewConflictError(b.entity+" already exists", err)
		span.SetStatus(codes.Error, "conflict")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		span.SetStatus(codes.Error, err.Error())
	default:
		slog.ErrorContext(ctx, "database error",
			"entity", b.entity,
			"operation", op,
			logging.ErrKey, err,
		)
		err = domain.NewInternalError(fmt.Sprintf("failed to %s %s", op, b.entity), err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.RecordError(err)
	return err
}

// requireRow turns an UPDATE that touched nothing into sql.ErrNoRows.
func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
