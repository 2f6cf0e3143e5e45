package usecases_test

import (
	"errors"
	"testing"

	"github.com/accuritas/voyagemap/internal/core/domain"
	"github.com/accuritas/voyagemap/internal/core/usecases"
	"github.com/accuritas/voyagemap/internal/pkg/config"
)

func TestRenderOptionsFrom(t *testing.T) {
	opts, err := usecases.RenderOptionsFrom(config.RenderConfig{
		MarginRatio:       0.2,
		Ellipsoid:         "grs80",
		DPILarge:          300,
		ForensicProjected: true,
	}, 60)
	if err != nil {
		t.Fatal(err)
	}
	if opts.Ellipsoid.Name != "GRS80" || opts.MarginRatio != 0.2 || opts.DPILarge != 300 {
		t.Errorf("unexpected options %+v", opts)
	}
	if opts.DPISmall != 96 {
		t.Errorf("expected default small DPI, got %d", opts.DPISmall)
	}
	if !opts.ForensicProjected || opts.CacheTTLSeconds != 60 {
		t.Errorf("unexpected options %+v", opts)
	}
}

func TestRenderOptionsFrom_UnknownEllipsoid(t *testing.T) {
	_, err := usecases.RenderOptionsFrom(config.RenderConfig{Ellipsoid: "Bessel"}, 0)
	if !errors.Is(err, domain.ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest, got %v", err)
	}
}
