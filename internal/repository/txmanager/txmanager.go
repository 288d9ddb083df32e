package txmanager

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type keyTxType int

const (
	keyTxValue keyTxType = iota
)

var (
	ErrNoTransaction = errors.New("no transaction in context")
)

// Querier - общее подмножество методов sql.DB и sql.Tx
type Querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// SQLTxManager реализация для SQL базы данных
type SQLTxManager struct {
	db   *sql.DB
	opts *sql.TxOptions
}

func NewSQLTxManager(db *sql.DB, opts *sql.TxOptions) *SQLTxManager {
	return &SQLTxManager{db: db, opts: opts}
}

// WithinTx выполняет fn в транзакции. Вложенный вызов переиспользует
// транзакцию из контекста.
func (tm *SQLTxManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if _, ok := ctx.Value(keyTxValue).(*sql.Tx); ok {
		return fn(ctx)
	}

	tx, err := tm.db.BeginTx(ctx, tm.opts)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}

		if err != nil {
			_ = tx.Rollback()
			return
		}

		if commitErr := tx.Commit(); commitErr != nil {
			err = fmt.Errorf("failed to commit transaction: %w", commitErr)
		}
	}()

	err = fn(WithTx(ctx, tx))
	return err
}

// Querier возвращает транзакцию из контекста, если она есть, иначе само соединение
func (tm *SQLTxManager) Querier(ctx context.Context) Querier {
	if tx, err := GetTx(ctx); err == nil {
		return tx
	}
	return tm.db
}

// GetTx извлекает транзакцию из контекста
func GetTx(ctx context.Context) (*sql.Tx, error) {
	tx, ok := ctx.Value(keyTxValue).(*sql.Tx)
	if !ok {
		return nil, ErrNoTransaction
	}
	return tx, nil
}

// WithTx добавляет транзакцию в контекст
func WithTx(ctx context.Context, tx *sql.Tx) context.Context {
	return context.WithValue(ctx, keyTxValue, tx)
}
