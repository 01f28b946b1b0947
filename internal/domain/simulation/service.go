package simulation

import (
	"context"
	"errors"
	"log/slog"

	"github.com/heliowatt/heliowatt/internal/domain/location"
	apperrors "github.com/heliowatt/heliowatt/pkg/errors"
	"github.com/heliowatt/heliowatt/pkg/metrics"
)

// Service runs the full estimation pipeline for one interaction.
type Service interface {
	Run(ctx context.Context, req RunRequest) (Report, error)
	Defaults() Defaults
}

// Resolver turns a location query into coordinates.
type Resolver interface {
	Resolve(ctx context.Context, q location.Query) (location.Place, error)
}

// Estimator performs one estimation API call for a resolved site.
type Estimator interface {
	Estimate(ctx context.Context, lat, lon float64, cfg SystemConfig) (Estimate, error)
}

// InputRecorder remembers the inputs of the latest interaction per user.
type InputRecorder interface {
	Remember(ctx context.Context, userID int64, q location.Query, cfg SystemConfig) error
}

type service struct {
	resolver  Resolver
	estimator Estimator
	recorder  InputRecorder
	logger    *slog.Logger
}

// NewService wires up the simulation pipeline.
func NewService(resolver Resolver, estimator Estimator, recorder InputRecorder, logger *slog.Logger) Service {
	return &service{
		resolver:  resolver,
		estimator: estimator,
		recorder:  recorder,
		logger:    logger.With("component", "simulation.service"),
	}
}

// Run validates parameters, resolves the location, calls the estimator once,
// and renders the report. An unresolved location aborts the interaction before
// any estimation call; no step is retried.
func (s *service) Run(ctx context.Context, req RunRequest) (Report, error) {
	cfg := DefaultSystemConfig()
	if req.Params != nil {
		cfg = *req.Params
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return Report{}, apperrors.Wrap("invalid_input", err.Error(), nil)
	}

	report, err := s.run(ctx, req, cfg)
	metrics.RecordSimulation(cfg.Timeframe, err)
	return report, err
}

func (s *service) run(ctx context.Context, req RunRequest, cfg SystemConfig) (Report, error) {
	place, err := s.resolver.Resolve(ctx, req.Location)
	if err != nil {
		return Report{}, err
	}

	if s.recorder != nil && req.UserID != 0 {
		if err := s.recorder.Remember(ctx, req.UserID, req.Location, cfg); err != nil {
			s.logger.Warn("failed to remember inputs", "userId", req.UserID, "error", err)
		}
	}

	est, err := s.estimator.Estimate(ctx, place.Latitude, place.Longitude, cfg)
	if err != nil {
		var upstreamErr *UpstreamError
		if errors.As(err, &upstreamErr) {
			return Report{}, apperrors.Wrap("estimate_error", upstreamErr.Error(), err)
		}
		return Report{}, apperrors.Wrap("estimate_error", "estimation request failed", err)
	}

	report, err := BuildReport(place, cfg, est)
	if err != nil {
		return Report{}, err
	}
	s.logger.Info("simulation completed",
		"timeframe", cfg.Timeframe, "lat", place.Latitude, "lon", place.Longitude, "annualAcKwh", report.AnnualACKWh)
	return report, nil
}

// Defaults exposes the starting parameters and their bounds.
func (s *service) Defaults() Defaults {
	return buildDefaults()
}
