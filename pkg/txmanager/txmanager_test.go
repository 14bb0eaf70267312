package txmanager

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-BookingEngine/pkg/dbmetrics"
)

type fakeTx struct {
	committed  bool
	rolledBack bool
	execs      []string
	commitErr  error
}

func (f *fakeTx) ExecContext(_ context.Context, query string, _ ...interface{}) (sql.Result, error) {
	f.execs = append(f.execs, query)
	return nil, nil
}

func (f *fakeTx) QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeTx) QueryRowContext(context.Context, string, ...interface{}) *sql.Row {
	return nil
}

func (f *fakeTx) Commit() error {
	if f.commitErr != nil {
		return f.commitErr
	}
	f.committed = true
	return nil
}

func (f *fakeTx) Rollback() error {
	f.rolledBack = true
	return nil
}

type fakeDB struct {
	txs  []*fakeTx
	opts []*sql.TxOptions
}

func (f *fakeDB) BeginTx(_ context.Context, opts *sql.TxOptions) (dbmetrics.TxExecutor, error) {
	tx := &fakeTx{}
	f.txs = append(f.txs, tx)
	f.opts = append(f.opts, opts)
	return tx, nil
}

func TestDoSerializable_CommitsOnSuccess(t *testing.T) {
	db := &fakeDB{}
	m := NewTransactionManager(db, WithLockTimeout(1500*time.Millisecond))

	var sawTx bool
	err := m.DoSerializable(context.Background(), func(ctx context.Context) error {
		sawTx = dbmetrics.IsInTransaction(ctx)
		return nil
	})

	require.NoError(t, err)
	assert.True(t, sawTx)
	require.Len(t, db.txs, 1)
	assert.True(t, db.txs[0].committed)
	assert.Equal(t, sql.LevelSerializable, db.opts[0].Isolation)
	assert.Equal(t, []string{"SET LOCAL lock_timeout = '1500ms'"}, db.txs[0].execs)
}

func TestDoSerializable_RetriesSerializationFailures(t *testing.T) {
	db := &fakeDB{}
	m := NewTransactionManager(db, WithMaxRetries(2), WithBackoff(0))

	calls := 0
	err := m.DoSerializable(context.Background(), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return &pq.Error{Code: "40001"}
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.True(t, db.txs[0].rolledBack)
	assert.True(t, db.txs[2].committed)
}

func TestDoSerializable_RetriesExhausted(t *testing.T) {
	m := NewTransactionManager(&fakeDB{}, WithMaxRetries(1), WithBackoff(0))

	err := m.DoSerializable(context.Background(), func(ctx context.Context) error {
		return &pq.Error{Code: "40P01"}
	})

	assert.ErrorIs(t, err, ErrRetriesExhausted)
}

func TestDoSerializable_CommitSerializationFailureIsRetried(t *testing.T) {
	db := &fakeDB{}
	m := NewTransactionManager(db, WithMaxRetries(0), WithBackoff(0))

	err := m.DoSerializable(context.Background(), func(ctx context.Context) error {
		tx, _ := dbmetrics.TxFromContext(ctx)
		tx.(*fakeTx).commitErr = &pq.Error{Code: "40001"}
		return nil
	})

	assert.ErrorIs(t, err, ErrRetriesExhausted)
}

func TestDoSerializable_LockTimeout(t *testing.T) {
	m := NewTransactionManager(&fakeDB{}, WithBackoff(0))

	calls := 0
	err := m.DoSerializable(context.Background(), func(ctx context.Context) error {
		calls++
		return &pq.Error{Code: "55P03"}
	})

	assert.ErrorIs(t, err, ErrLockTimeout)
	assert.Equal(t, 1, calls)
}

func TestDo_RollsBackOnBusinessError(t *testing.T) {
	db := &fakeDB{}
	m := NewTransactionManager(db)
	businessErr := errors.New("slot is taken")

	err := m.Do(context.Background(), func(ctx context.Context) error {
		return businessErr
	})

	assert.ErrorIs(t, err, businessErr)
	assert.True(t, db.txs[0].rolledBack)
	assert.False(t, db.txs[0].committed)
}

func TestDo_NestedReusesOuterTransaction(t *testing.T) {
	db := &fakeDB{}
	m := NewTransactionManager(db)

	err := m.Do(context.Background(), func(ctx context.Context) error {
		return m.DoSerializable(ctx, func(ctx context.Context) error { return nil })
	})

	require.NoError(t, err)
	assert.Len(t, db.txs, 1)
}
