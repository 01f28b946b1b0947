package location

import (
	"errors"
	"fmt"
)

// ErrMalformedResponse indicates the geocoder answered with a body that could
// not be decoded into candidate matches.
var ErrMalformedResponse = errors.New("geocoding response malformed")

// UpstreamStatusError carries a non-success status returned by the geocoder.
type UpstreamStatusError struct {
	StatusCode int
}

func (e *UpstreamStatusError) Error() string {
	return fmt.Sprintf("geocoding service returned status %d", e.StatusCode)
}
