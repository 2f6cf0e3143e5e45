package usecases

import (
	"errors"

	"github.com/accuritas/voyagemap/internal/core/domain"
	"github.com/accuritas/voyagemap/internal/pkg/geospatial"
)

// IsClientError reports whether err was caused by the request itself and
// would fail again on retry.
func IsClientError(err error) bool {
	return errors.Is(err, domain.ErrInvalidRequest) ||
		errors.Is(err, domain.ErrNotFound) ||
		errors.Is(err, domain.ErrUnknownLayer) ||
		errors.Is(err, geospatial.ErrInvalidCoordinate) ||
		errors.Is(err, geospatial.ErrDegenerateEllipsoid)
}
