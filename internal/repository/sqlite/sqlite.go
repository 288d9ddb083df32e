package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"secretboard/internal/domain/models"
	"secretboard/internal/repository/txmanager"

	_ "modernc.org/sqlite"
)

// SQLiteStorage - хранилище сообщений в одном файле.
// Соединение одно: для ":memory:" каждое новое соединение открывает пустую базу.
type SQLiteStorage struct {
	db *sql.DB
	tm *txmanager.SQLTxManager
}

func NewStorage(ctx context.Context, path string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", buildDSN(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := createTable(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return &SQLiteStorage{
		db: db,
		tm: txmanager.NewSQLTxManager(db, nil),
	}, nil
}

func buildDSN(path string) string {
	if path == ":memory:" || strings.HasPrefix(path, "file:") {
		return path
	}
	return "file:" + path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
}

func createTable(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS posts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			content TEXT NOT NULL,
			posted_by TEXT NOT NULL,
			tracking_cookie TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) PostCreate(ctx context.Context, post models.Post) (models.Post, error) {
	if post.Content == "" {
		return models.Post{}, models.ErrInvalidData
	}

	result, err := s.tm.Querier(ctx).ExecContext(ctx, `
		INSERT INTO posts (content, posted_by, tracking_cookie, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		post.Content, post.PostedBy, post.TrackingCookie, post.CreatedAt, post.UpdatedAt,
	)
	if err != nil {
		return models.Post{}, fmt.Errorf("failed to insert post: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return models.Post{}, fmt.Errorf("failed to get inserted id: %w", err)
	}
	post.ID = id

	return post, nil
}

func (s *SQLiteStorage) PostGetByID(ctx context.Context, id int64) (models.Post, error) {
	var post models.Post
	err := s.tm.Querier(ctx).QueryRowContext(ctx, `
		SELECT id, content, posted_by, tracking_cookie, created_at, updated_at
		FROM posts WHERE id = ?`,
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

func (s *SQLiteStorage) PostListDesc(ctx context.Context) ([]models.Post, error) {
	rows, err := s.tm.Querier(ctx).QueryContext(ctx, `
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

func (s *SQLiteStorage) PostDelete(ctx context.Context, id int64) error {
	result, err := s.tm.Querier(ctx).ExecContext(ctx, "DELETE FROM posts WHERE id = ?", id)
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

func (s *SQLiteStorage) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return s.tm.WithinTx(ctx, fn)
}

func (s *SQLiteStorage) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close database connection: %w", err)
	}
	return nil
}
