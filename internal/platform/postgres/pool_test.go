// Copyright (c) 2026 AgentDesk. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package postgres_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/agentdesk/internal/platform/postgres"
)

func TestWithSSLMode(t *testing.T) {
	tests := []struct {
		name string
		dsn  string
		mode string
		want string
	}{
		{"url_without_mode", "postgres://u:p@db:5432/app", "require", "postgres://u:p@db:5432/app?sslmode=require"},
		{"url_keeps_explicit_mode", "postgres://u:p@db/app?sslmode=verify-full", "disable", "postgres://u:p@db/app?sslmode=verify-full"},
		{"url_keeps_other_params", "postgresql://db/app?application_name=api", "disable", "postgresql://db/app?application_name=api&sslmode=disable"},
		{"keyword_dsn", "host=db dbname=app", "disable", "host=db dbname=app sslmode=disable"},
		{"empty_mode", "postgres://db/app", "", "postgres://db/app"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, postgres.WithSSLMode(tt.dsn, tt.mode))
		})
	}
}

func TestInTx_CommitsOnSuccess(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE tools").WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	err = postgres.InTx(context.Background(), mock, func(tx pgx.Tx) error {
		_, execErr := tx.Exec(context.Background(), "UPDATE tools SET enabled = false")
		return execErr
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInTx_RollsBackAndKeepsError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	sentinel := errors.New("owner insert failed")
	mock.ExpectBegin()
	mock.ExpectRollback()

	err = postgres.InTx(context.Background(), mock, func(pgx.Tx) error { return sentinel })

	assert.ErrorIs(t, err, sentinel)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInTx_BeginFailure(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin().WillReturnError(errors.New("too many connections"))

	err = postgres.InTx(context.Background(), mock, func(pgx.Tx) error {
		t.Fatal("fn must not run without a transaction")
		return nil
	})

	assert.ErrorContains(t, err, "postgres: begin")
}
