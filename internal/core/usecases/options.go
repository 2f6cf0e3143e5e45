package usecases

import (
	"github.com/accuritas/voyagemap/internal/core/domain"
	"github.com/accuritas/voyagemap/internal/pkg/config"
	"github.com/accuritas/voyagemap/internal/pkg/geospatial"
)

// RenderOptions tunes map construction.
type RenderOptions struct {
	MarginRatio       float64
	DPILarge          int
	DPISmall          int
	Ellipsoid         geospatial.Ellipsoid
	ForensicProjected bool
	CacheTTLSeconds   int
}

// DefaultRenderOptions returns the production defaults.
func DefaultRenderOptions() RenderOptions {
	return RenderOptions{
		MarginRatio:     geospatial.DefaultMarginRatio,
		DPILarge:        100,
		DPISmall:        96,
		Ellipsoid:       geospatial.WGS84,
		CacheTTLSeconds: 300,
	}
}

// RenderOptionsFrom builds the options for a deployment. cacheTTL is in
// seconds.
func RenderOptionsFrom(cfg config.RenderConfig, cacheTTL int) (RenderOptions, error) {
	opts := DefaultRenderOptions()
	if cfg.Ellipsoid != "" {
		e, err := geospatial.EllipsoidByName(cfg.Ellipsoid)
		if err != nil {
			return opts, err
		}
		opts.Ellipsoid = e
	}
	if cfg.MarginRatio > 0 {
		opts.MarginRatio = cfg.MarginRatio
	}
	if cfg.DPILarge > 0 {
		opts.DPILarge = cfg.DPILarge
	}
	if cfg.DPISmall > 0 {
		opts.DPISmall = cfg.DPISmall
	}
	if cacheTTL > 0 {
		opts.CacheTTLSeconds = cacheTTL
	}
	opts.ForensicProjected = cfg.ForensicProjected
	return opts, nil
}

// mercatorHalfWorld is half the width of the Web Mercator world in meters.
const mercatorHalfWorld = 20037508.342789244

// worldViewport is the initial extent of a new map: the whole world in the
// map's coordinate system.
func worldViewport(projected bool) domain.Viewport {
	if projected {
		return domain.Viewport{Width: 2 * mercatorHalfWorld, Height: 2 * mercatorHalfWorld}
	}
	return domain.Viewport{Width: 360, Height: 180}
}

// mapUnits returns the linear unit of a map's coordinates.
func mapUnits(projected bool) geospatial.Unit {
	if projected {
		return geospatial.Meters
	}
	return geospatial.DecimalDegrees
}
