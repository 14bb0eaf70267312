package txmanager

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/lib/pq"

	"github.com/m04kA/SMC-BookingEngine/pkg/dbmetrics"
)

const (
	// DefaultMaxRetries количество повторов сериализуемой транзакции при конфликте
	DefaultMaxRetries = 3

	// коды ошибок PostgreSQL
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeLockNotAvailable     = "55P03"
)

var (
	// ErrTransaction возвращается при ошибках начала/фиксации транзакции
	ErrTransaction = errors.New("txmanager: transaction error")

	// ErrRetriesExhausted возвращается, когда сериализуемая транзакция не прошла после всех повторов
	ErrRetriesExhausted = errors.New("txmanager: serialization retries exhausted")

	// ErrLockTimeout возвращается, когда БД не выдала блокировку за lock_timeout
	ErrLockTimeout = errors.New("txmanager: lock timeout")
)

// Manager управляет транзакциями, передавая их через context
type Manager struct {
	db          dbmetrics.TxBeginner
	maxRetries  int
	lockTimeout time.Duration
	backoff     time.Duration
}

// Option настройка менеджера
type Option func(*Manager)

// WithMaxRetries задаёт число повторов сериализуемой транзакции
func WithMaxRetries(n int) Option {
	return func(m *Manager) {
		if n >= 0 {
			m.maxRetries = n
		}
	}
}

// WithLockTimeout задаёт SET LOCAL lock_timeout для сериализуемых транзакций
func WithLockTimeout(d time.Duration) Option {
	return func(m *Manager) {
		m.lockTimeout = d
	}
}

// WithBackoff задаёт базовую паузу между повторами
func WithBackoff(d time.Duration) Option {
	return func(m *Manager) {
		m.backoff = d
	}
}

// NewTransactionManager создает менеджер транзакций
func NewTransactionManager(db dbmetrics.TxBeginner, opts ...Option) *Manager {
	m := &Manager{
		db:         db,
		maxRetries: DefaultMaxRetries,
		backoff:    10 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Do выполняет fn в транзакции READ COMMITTED
func (m *Manager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted}, 0, fn)
}

// DoReadOnly выполняет fn в транзакции только для чтения
func (m *Manager) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted, ReadOnly: true}, 0, fn)
}

// DoSerializable выполняет fn в транзакции SERIALIZABLE.
// При конфликте сериализации или взаимной блокировке транзакция повторяется до maxRetries раз,
// после чего возвращается ErrRetriesExhausted. Истечение lock_timeout возвращает ErrLockTimeout.
func (m *Manager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	if dbmetrics.IsInTransaction(ctx) {
		return fn(ctx)
	}

	var lastErr error
	for attempt := 0; attempt <= m.maxRetries; attempt++ {
		if attempt > 0 {
			if err := m.sleep(ctx, attempt); err != nil {
				return err
			}
		}

		err := m.run(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable}, m.lockTimeout, fn)
		switch {
		case err == nil:
			return nil
		case IsLockTimeout(err):
			return fmt.Errorf("%w: %w", ErrLockTimeout, err)
		case IsSerializationFailure(err):
			lastErr = err
			continue
		default:
			return err
		}
	}

	return fmt.Errorf("%w: after %d attempts: %w", ErrRetriesExhausted, m.maxRetries+1, lastErr)
}

func (m *Manager) run(ctx context.Context, opts *sql.TxOptions, lockTimeout time.Duration, fn func(ctx context.Context) error) (err error) {
	// Вложенный вызов переиспользует внешнюю транзакцию
	if dbmetrics.IsInTransaction(ctx) {
		return fn(ctx)
	}

	tx, err := m.db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("%w: begin: %w", ErrTransaction, err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if lockTimeout > 0 {
		// SET не поддерживает плейсхолдеры, значение формируется из целого числа миллисекунд
		stmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", lockTimeout.Milliseconds())
		if _, err = tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%w: set lock_timeout: %w", ErrTransaction, err)
		}
	}

	if err = fn(dbmetrics.WithTx(ctx, tx)); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %w", ErrTransaction, err)
	}

	return nil
}

func (m *Manager) sleep(ctx context.Context, attempt int) error {
	if m.backoff <= 0 {
		return ctx.Err()
	}
	delay := m.backoff*time.Duration(attempt) + time.Duration(rand.Int63n(int64(m.backoff)))
	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// IsSerializationFailure сообщает, что ошибка вызвана конфликтом сериализации или deadlock
func IsSerializationFailure(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == codeSerializationFailure || pqErr.Code == codeDeadlockDetected
	}
	return false
}

// IsLockTimeout сообщает, что ошибка вызвана истечением lock_timeout
func IsLockTimeout(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == codeLockNotAvailable
	}
	return false
}
