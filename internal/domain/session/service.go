package session

import (
	"context"
	"log/slog"
	"time"

	"github.com/heliowatt/heliowatt/internal/domain/location"
	"github.com/heliowatt/heliowatt/internal/domain/simulation"
	apperrors "github.com/heliowatt/heliowatt/pkg/errors"
	"github.com/heliowatt/heliowatt/pkg/util"
)

// Service remembers per-user inputs across interactions. A record is created
// on the first remembered interaction and removed on logout.
type Service interface {
	Remember(ctx context.Context, userID int64, q location.Query, cfg simulation.SystemConfig) error
	Inputs(ctx context.Context, userID int64) (Record, bool, error)
	Clear(ctx context.Context, userID int64) error
}

type service struct {
	cfg    Config
	store  Store
	logger *slog.Logger
	now    func() time.Time
}

// NewService wires up session state handling.
func NewService(cfg Config, store Store, logger *slog.Logger) Service {
	return &service{
		cfg:    cfg,
		store:  store,
		logger: logger.With("component", "session.service"),
		now:    util.NowUTC,
	}
}

func (s *service) Remember(ctx context.Context, userID int64, q location.Query, cfg simulation.SystemConfig) error {
	if userID == 0 {
		return apperrors.Wrap("invalid_input", "session requires a user", nil)
	}
	record := Record{
		UserID:    userID,
		Location:  q,
		Params:    cfg,
		UpdatedAt: s.now(),
	}
	if err := s.store.Save(ctx, record, s.cfg.TTL); err != nil {
		return apperrors.Wrap("session_error", "failed to save session inputs", err)
	}
	return nil
}

func (s *service) Inputs(ctx context.Context, userID int64) (Record, bool, error) {
	record, found, err := s.store.Get(ctx, userID)
	if err != nil {
		return Record{}, false, apperrors.Wrap("session_error", "failed to load session inputs", err)
	}
	return record, found, nil
}

func (s *service) Clear(ctx context.Context, userID int64) error {
	if err := s.store.Delete(ctx, userID); err != nil {
		return apperrors.Wrap("session_error", "failed to clear session", err)
	}
	s.logger.Info("session cleared", "userId", userID)
	return nil
}
