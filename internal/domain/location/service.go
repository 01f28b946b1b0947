package location

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	apperrors "github.com/heliowatt/heliowatt/pkg/errors"
)

// Service resolves user supplied locations into coordinates.
type Service interface {
	Resolve(ctx context.Context, q Query) (Place, error)
}

// GeocodeClient performs a single forward-geocoding lookup.
type GeocodeClient interface {
	Search(ctx context.Context, address string) ([]Match, error)
}

type service struct {
	client GeocodeClient
	logger *slog.Logger
}

// NewService wires up the location resolver.
func NewService(client GeocodeClient, logger *slog.Logger) Service {
	return &service{
		client: client,
		logger: logger.With("component", "location.service"),
	}
}

// Resolve returns coordinates for the query. Explicit coordinates pass through
// unchanged; addresses go through one geocoder lookup and the first match wins.
func (s *service) Resolve(ctx context.Context, q Query) (Place, error) {
	if q.Coordinates != nil {
		return Place{
			Latitude:  q.Coordinates.Latitude,
			Longitude: q.Coordinates.Longitude,
		}, nil
	}

	address := strings.TrimSpace(q.Address)
	if address == "" {
		return Place{}, apperrors.Wrap("invalid_input", "address or coordinates required", nil)
	}

	matches, err := s.client.Search(ctx, address)
	if err != nil {
		var statusErr *UpstreamStatusError
		switch {
		case errors.As(err, &statusErr):
			return Place{}, apperrors.Wrap("geocode_error", statusErr.Error(), err)
		case errors.Is(err, ErrMalformedResponse):
			return Place{}, apperrors.Wrap("geocode_decode_error", "failed to decode geocoding response", err)
		default:
			return Place{}, apperrors.Wrap("geocode_error", "geocoding request failed", err)
		}
	}
	if len(matches) == 0 {
		return Place{}, apperrors.Wrap("address_not_found", "address not found", nil)
	}

	first := matches[0]
	s.logger.Info("address resolved", "address", address, "lat", first.Latitude, "lon", first.Longitude)
	return Place{
		Latitude:  first.Latitude,
		Longitude: first.Longitude,
		Label:     first.DisplayName,
	}, nil
}
