package export

import (
	"context"
	"io"
	"log/slog"

	apperrors "github.com/heliowatt/heliowatt/pkg/errors"
)

// Service archives generated exports and serves them back. Downloads are
// one-way: nothing read back from the archive ever feeds an import path.
type Service interface {
	Archive(ctx context.Context, userID int64, kind Kind, data []byte) (Artifact, error)
	Fetch(ctx context.Context, userID int64, rawKey string) ([]byte, string, error)
}

type service struct {
	storage ObjectStorage
	logger  *slog.Logger
}

// NewService wires up the export archive. A nil storage disables archiving.
func NewService(storage ObjectStorage, logger *slog.Logger) Service {
	return &service{
		storage: storage,
		logger:  logger.With("component", "export.service"),
	}
}

func (s *service) Archive(ctx context.Context, userID int64, kind Kind, data []byte) (Artifact, error) {
	if s.storage == nil {
		return Artifact{}, apperrors.Wrap("archive_disabled", "export archive is not configured", nil)
	}
	if userID <= 0 {
		return Artifact{}, apperrors.Wrap("invalid_input", "archive requires a signed-in user", nil)
	}
	if len(data) == 0 {
		return Artifact{}, apperrors.Wrap("invalid_input", "nothing to archive", nil)
	}
	key := NewKey(userID, kind)
	obj, err := s.storage.Put(ctx, key, data)
	if err != nil {
		return Artifact{}, apperrors.Wrap("archive_error", "failed to archive export", err)
	}
	s.logger.Info("export archived", "key", obj.Key, "size", obj.Size)
	return Artifact{
		Key:         obj.Key.String(),
		Size:        obj.Size,
		ContentType: kind.ContentType(),
	}, nil
}

// Fetch returns an archived artifact. Malformed keys and keys owned by a
// different user both report not-found.
func (s *service) Fetch(ctx context.Context, userID int64, rawKey string) ([]byte, string, error) {
	if s.storage == nil {
		return nil, "", apperrors.Wrap("archive_disabled", "export archive is not configured", nil)
	}
	key, err := ParseKey(rawKey)
	if err != nil || !key.OwnedBy(userID) {
		return nil, "", apperrors.Wrap("export_not_found", "export not found", nil)
	}
	reader, err := s.storage.Get(ctx, key)
	if err != nil {
		return nil, "", apperrors.Wrap("export_not_found", "export not found", err)
	}
	defer reader.Close()
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, "", apperrors.Wrap("archive_error", "failed to read archived export", err)
	}
	return data, key.Kind().ContentType(), nil
}
