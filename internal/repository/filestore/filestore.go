package filestore

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"secretboard/internal/domain/models"

	"github.com/rs/zerolog"
)

var (
	ErrInvalidPath = errors.New("invalid file path")
	ErrCreateDir   = errors.New("failed to create directory")
	ErrOpenFile    = errors.New("failed to open file")
	ErrReadPost    = errors.New("failed to read posts from file")
	ErrRestorePost = errors.New("failed to restore post in storage")
	ErrListPosts   = errors.New("failed to list posts")
	ErrWritePost   = errors.New("failed to write post to file")
)

// Storage - ограниченный интерфейс in-memory хранилища для выгрузки/загрузки
type Storage interface {
	PostRestore(ctx context.Context, post models.Post) error
	PostListDesc(ctx context.Context) ([]models.Post, error)
}

// record - строка файла в формате JSON Lines
type record struct {
	ID             int64     `json:"id"`
	Content        string    `json:"content"`
	PostedBy       string    `json:"posted_by"`
	TrackingCookie string    `json:"tracking_cookie"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func recordFromDomain(p models.Post) record {
	return record{
		ID:             p.ID,
		Content:        p.Content,
		PostedBy:       p.PostedBy,
		TrackingCookie: p.TrackingCookie,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

func (r record) toDomain() models.Post {
	return models.Post{
		ID:             r.ID,
		Content:        r.Content,
		PostedBy:       r.PostedBy,
		TrackingCookie: r.TrackingCookie,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

// Load загружает сообщения из файла в хранилище. Отсутствующий файл создаётся пустым.
func Load(ctx context.Context, log zerolog.Logger, filePath string, storage Storage) (int, error) {
	if filePath == "" {
		return 0, ErrInvalidPath
	}

	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return 0, logAndWrapError(log, err, ErrInvalidPath, "get absolute path")
	}

	if _, err := os.Stat(absPath); os.IsNotExist(err) {
		if err := os.MkdirAll(filepath.Dir(absPath), 0755); err != nil {
			return 0, logAndWrapError(log, err, ErrCreateDir, "create directory")
		}
		file, err := os.Create(absPath)
		if err != nil {
			return 0, logAndWrapError(log, err, ErrOpenFile, "create file")
		}
		file.Close()

		log.Info().Str("path", absPath).Msg("storage file created as empty")
		return 0, nil
	}

	file, err := os.Open(absPath)
	if err != nil {
		return 0, logAndWrapError(log, err, ErrOpenFile, "open file")
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	loaded := 0

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return loaded, err
		}

		data := scanner.Bytes()
		if len(data) == 0 {
			continue
		}

		var r record
		if err := json.Unmarshal(data, &r); err != nil {
			log.Warn().Err(err).Msg("failed to unmarshal post, skipping line")
			continue
		}

		if err := storage.PostRestore(ctx, r.toDomain()); err != nil {
			return loaded, logAndWrapError(log, err, ErrRestorePost, "restore post")
		}
		loaded++
	}

	if err := scanner.Err(); err != nil {
		return loaded, logAndWrapError(log, err, ErrReadPost, "read file")
	}

	log.Info().Int("count", loaded).Str("path", absPath).Msg("posts loaded from file")
	return loaded, nil
}

// Save перезаписывает файл текущим содержимым хранилища
func Save(ctx context.Context, log zerolog.Logger, filePath string, storage Storage) error {
	if filePath == "" {
		return ErrInvalidPath
	}

	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return logAndWrapError(log, err, ErrInvalidPath, "get absolute path")
	}

	if err := os.MkdirAll(filepath.Dir(absPath), 0755); err != nil {
		return logAndWrapError(log, err, ErrCreateDir, "create directory")
	}

	posts, err := storage.PostListDesc(ctx)
	if err != nil {
		return logAndWrapError(log, err, ErrListPosts, "list posts")
	}

	// Пишем во временный файл и переименовываем, чтобы не оставить файл наполовину записанным
	tmpPath := absPath + ".tmp"
	file, err := os.Create(tmpPath)
	if err != nil {
		return logAndWrapError(log, err, ErrOpenFile, "create file")
	}

	writer := bufio.NewWriter(file)
	for i := len(posts) - 1; i >= 0; i-- {
		data, err := json.Marshal(recordFromDomain(posts[i]))
		if err != nil {
			file.Close()
			return logAndWrapError(log, err, ErrWritePost, "marshal post")
		}
		data = append(data, '\n')
		if _, err := writer.Write(data); err != nil {
			file.Close()
			return logAndWrapError(log, err, ErrWritePost, "write post")
		}
	}

	if err := writer.Flush(); err != nil {
		file.Close()
		return logAndWrapError(log, err, ErrWritePost, "flush")
	}
	if err := file.Close(); err != nil {
		return logAndWrapError(log, err, ErrWritePost, "close file")
	}
	if err := os.Rename(tmpPath, absPath); err != nil {
		return logAndWrapError(log, err, ErrWritePost, "rename file")
	}

	log.Info().Int("count", len(posts)).Str("path", absPath).Msg("posts saved to file")
	return nil
}

func logAndWrapError(log zerolog.Logger, err error, wrapErr error, context string) error {
	log.Error().Err(err).Str("context", context).Msg(wrapErr.Error())
	return fmt.Errorf("%w: %v", wrapErr, err)
}
