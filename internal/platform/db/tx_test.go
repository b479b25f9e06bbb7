package db

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/farmstock/farmstock/internal/shared"
)

type fakeTx struct {
	pgx.Tx
	committed  bool
	rolledBack bool
	commitErr  error
}

func (t *fakeTx) Commit(context.Context) error {
	if t.commitErr != nil {
		return t.commitErr
	}
	t.committed = true
	return nil
}

func (t *fakeTx) Rollback(context.Context) error {
	t.rolledBack = true
	return nil
}

type fakeBeginner struct {
	tx       *fakeTx
	beginErr error
	opts     pgx.TxOptions
}

func (b *fakeBeginner) BeginTx(_ context.Context, opts pgx.TxOptions) (pgx.Tx, error) {
	b.opts = opts
	if b.beginErr != nil {
		return nil, b.beginErr
	}
	return b.tx, nil
}

func TestWithTxCommitsOnSuccess(t *testing.T) {
	tx := &fakeTx{}
	pool := &fakeBeginner{tx: tx}

	err := WithTx(context.Background(), pool, func(got pgx.Tx) error {
		require.Same(t, tx, got)
		return nil
	})
	require.NoError(t, err)
	require.True(t, tx.committed)
	require.Equal(t, pgx.RepeatableRead, pool.opts.IsoLevel)
}

func TestWithTxRollsBackOnError(t *testing.T) {
	tx := &fakeTx{}
	pool := &fakeBeginner{tx: tx}
	boom := errors.New("constraint violated")

	err := WithTx(context.Background(), pool, func(pgx.Tx) error {
		return boom
	})
	require.ErrorIs(t, err, boom)
	require.False(t, tx.committed)
	require.True(t, tx.rolledBack)
}

func TestWithTxWrapsBeginFailure(t *testing.T) {
	pool := &fakeBeginner{beginErr: errors.New("pool exhausted")}

	err := WithTx(context.Background(), pool, func(pgx.Tx) error {
		t.Fatal("callback must not run when begin fails")
		return nil
	})
	require.ErrorIs(t, err, shared.ErrPersistence)
}

func TestWithTxWrapsCommitFailure(t *testing.T) {
	tx := &fakeTx{commitErr: errors.New("connection reset")}
	pool := &fakeBeginner{tx: tx}

	err := WithTx(context.Background(), pool, func(pgx.Tx) error {
		return nil
	})
	require.ErrorIs(t, err, shared.ErrPersistence)
	require.False(t, tx.committed)
}
