package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"secretboard/internal/domain/models"
	"secretboard/internal/repository/txmanager"

	_ "github.com/jackc/pgx/v5/stdlib"
)

const (
	storageMaxOpenConnections     = 5
	storageMaxIdleConnections     = 2
	storageConnectionsMaxIdleTime = 2 * time.Minute
	storageConnectionsLifetime    = 30 * time.Minute
	storagePingTimeout            = 5 * time.Second
)

type PostgresStorage struct {
	db *sql.DB
	tm *txmanager.SQLTxManager
}

func NewStorage(ctx context.Context, dsn string) (*PostgresStorage, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	initConnectionPools(db)

	ctxPing, cancel := context.WithTimeout(ctx, storagePingTimeout)
	defer cancel()

	if err := db.PingContext(ctxPing); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := createTable(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return &PostgresStorage{
		db: db,
		tm: txmanager.NewSQLTxManager(db, &sql.TxOptions{Isolation: sql.LevelSerializable}),
	}, nil
}

func initConnectionPools(db *sql.DB) {
	db.SetMaxOpenConns(storageMaxOpenConnections)
	db.SetMaxIdleConns(storageMaxIdleConnections)
	db.SetConnMaxIdleTime(storageConnectionsMaxIdleTime)
	db.SetConnMaxLifetime(storageConnectionsLifetime)
}

func createTable(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS posts (
			id BIGSERIAL PRIMARY KEY,
			content TEXT NOT NULL,
			posted_by TEXT NOT NULL,
			tracking_cookie TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}
	return nil
}

func (p *PostgresStorage) PostCreate(ctx context.Context, post models.Post) (models.Post, error) {
	if post.Content == "" {
		return models.Post{}, models.ErrInvalidData
	}

	err := p.tm.Querier(ctx).QueryRowContext(ctx, `
		INSERT INTO posts (content, posted_by, tracking_cookie, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		post.Content, post.PostedBy, post.TrackingCookie, post.CreatedAt, post.UpdatedAt,
	).Scan(&post.ID)
	if err != nil {
		return models.Post{}, fmt.Errorf("failed to insert post: %w", err)
	}

	return post, nil
}

func (p *PostgresStorage) PostGetByID(ctx context.Context, id int64) (models.Post, error) {
	var post models.Post
	err := p.tm.Querier(ctx).QueryRowContext(ctx, `
		SELECT id, content, posted_by, tracking_cookie, created_at, updated_at
		FROM posts WHERE id = $1`,
		id,
	).Scan(&post.ID, &post.Content, &post.PostedBy, &post.TrackingCookie, &post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Post{}, fmt.Errorf("%w: post %d not found", models.ErrUnfound, id)
		}
		return models.Post{}, fmt.Errorf("failed to get post: %w", err)
	}

	return post, nil
}

func (p *PostgresStorage) PostListDesc(ctx context.Context) ([]models.Post, error) {
	rows, err := p.tm.Querier(ctx).QueryContext(ctx, `
		SELECT id, content, posted_by, tracking_cookie, created_at, updated_at
		FROM posts ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query posts: %w", err)
	}
	defer rows.Close()

	posts := make([]models.Post, 0)
	for rows.Next() {
		var post models.Post
		if err := rows.Scan(&post.ID, &post.Content, &post.PostedBy, &post.TrackingCookie, &post.CreatedAt, &post.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, post)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return posts, nil
}

func (p *PostgresStorage) PostDelete(ctx context.Context, id int64) error {
	result, err := p.tm.Querier(ctx).ExecContext(ctx, "DELETE FROM posts WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("%w: post %d not found", models.ErrUnfound, id)
	}

	return nil
}

func (p *PostgresStorage) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return p.tm.WithinTx(ctx, fn)
}

func (p *PostgresStorage) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, storagePingTimeout)
	defer cancel()

	if err := p.db.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}

func (p *PostgresStorage) Close() error {
	if err := p.db.Close(); err != nil {
		return fmt.Errorf("failed to close database connection: %w", err)
	}
	return nil
}
