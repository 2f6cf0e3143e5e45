package usecases_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/accuritas/voyagemap/internal/core/domain"
	"github.com/accuritas/voyagemap/internal/core/usecases"
	"github.com/accuritas/voyagemap/internal/pkg/geospatial"
)

func newVoyageService() (*usecases.VoyageMapService, *mockMapRepo, *mockLayerRepo, *mockPublisher) {
	maps, layers, pub := newMockMapRepo(), newMockLayerRepo(), &mockPublisher{}
	return usecases.NewVoyageMapService(maps, layers, pub, usecases.DefaultRenderOptions()), maps, layers, pub
}

func TestVoyageMapService_Build(t *testing.T) {
	svc, maps, layers, pub := newVoyageService()

	doc, err := svc.Build(context.Background(), &domain.VoyageMapRequest{
		VoyageID: "v1",
		Details: []domain.VoyageDetail{
			detail(1, domain.PositionATD, 40, -10),
			detail(2, domain.PositionATA, 50, 10),
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.DPI != 96 {
		t.Errorf("expected small map DPI 96, got %d", doc.DPI)
	}
	if doc.ImageType != domain.ImagePDF {
		t.Errorf("expected PDF, got %s", doc.ImageType)
	}

	vp := doc.Viewport
	if vp.CenterX != 0 || vp.CenterY != 45 {
		t.Errorf("expected center (0,45), got (%v,%v)", vp.CenterX, vp.CenterY)
	}
	if math.Abs(vp.Width-23) > 1e-9 || math.Abs(vp.Height-11.5) > 1e-9 {
		t.Errorf("expected 23x11.5, got %vx%v", vp.Width, vp.Height)
	}
	if len(maps.meridians) != 0 {
		t.Errorf("geographic map should keep its meridian, got %v", maps.meridians)
	}

	progress, _ := layers.Features(context.Background(), doc.ID, domain.LayerProgress)
	if len(progress) != 1 {
		t.Errorf("expected 1 progress segment, got %d", len(progress))
	}
	if len(pub.ready) != 1 {
		t.Errorf("expected 1 map-ready event, got %d", len(pub.ready))
	}
}

func TestVoyageMapService_LargeMap(t *testing.T) {
	svc, _, _, _ := newVoyageService()

	doc, err := svc.Create(context.Background(), &domain.VoyageMapRequest{
		Title:     "Aurora 2024",
		ImageType: "png",
		MapSize:   domain.MapSizeLarge,
		Details:   []domain.VoyageDetail{detail(1, domain.PositionATD, 40, -10)},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.DPI != 100 || doc.Title != "Aurora 2024" || doc.ImageType != domain.ImagePNG {
		t.Errorf("unexpected document %+v", doc)
	}
}

func TestVoyageMapService_ProjectedAcrossDateline(t *testing.T) {
	svc, maps, _, _ := newVoyageService()

	doc, err := svc.Build(context.Background(), &domain.VoyageMapRequest{
		Projected: true,
		Details: []domain.VoyageDetail{
			detail(1, domain.PositionATD, 0, 170),
			detail(2, domain.PositionATA, 0, -170),
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(maps.meridians) != 1 || maps.meridians[0] != -180 {
		t.Errorf("expected meridian -180, got %v", maps.meridians)
	}
	if doc.CentralMeridian != -180 {
		t.Errorf("expected document meridian -180, got %v", doc.CentralMeridian)
	}
}

func TestVoyageMapService_PrepareWithoutFeatures(t *testing.T) {
	svc, maps, _, _ := newVoyageService()
	ctx := context.Background()

	doc := &domain.MapDocument{Kind: domain.MapKindVoyage, Viewport: domain.Viewport{Width: 360, Height: 180}}
	_ = maps.Create(ctx, doc)

	got, err := svc.Prepare(ctx, doc.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Viewport != doc.Viewport {
		t.Errorf("viewport changed to %+v", got.Viewport)
	}
	if len(maps.viewports) != 0 {
		t.Errorf("expected no viewport updates, got %d", len(maps.viewports))
	}
}

func TestVoyageMapService_RejectsBadRequests(t *testing.T) {
	svc, _, _, _ := newVoyageService()
	ctx := context.Background()

	if _, err := svc.Build(ctx, &domain.VoyageMapRequest{VoyageID: "empty"}); !errors.Is(err, domain.ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest for empty voyage, got %v", err)
	}

	_, err := svc.Build(ctx, &domain.VoyageMapRequest{
		ImageType: "webp",
		Details:   []domain.VoyageDetail{detail(1, domain.PositionATD, 0, 0)},
	})
	if !errors.Is(err, domain.ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest for image type, got %v", err)
	}
}

func TestVoyageMapService_InvalidDetailStoresNothing(t *testing.T) {
	svc, maps, _, pub := newVoyageService()

	_, err := svc.Build(context.Background(), &domain.VoyageMapRequest{
		VoyageID: "V1",
		Details: []domain.VoyageDetail{
			detail(1, domain.PositionATD, 40, -10),
			detail(2, domain.PositionActual, 95, -20),
		},
	})
	if !errors.Is(err, geospatial.ErrInvalidCoordinate) {
		t.Fatalf("expected ErrInvalidCoordinate, got %v", err)
	}
	if !usecases.IsClientError(err) {
		t.Errorf("expected a client error, got %v", err)
	}
	if len(maps.docs) != 0 {
		t.Errorf("expected no stored maps, got %d", len(maps.docs))
	}
	if len(pub.ready) != 0 {
		t.Errorf("expected no announcements, got %d", len(pub.ready))
	}
}

func TestVoyageMapService_PublisherFailureIgnored(t *testing.T) {
	maps, layers := newMockMapRepo(), newMockLayerRepo()
	pub := &mockPublisher{err: errors.New("broker down")}
	svc := usecases.NewVoyageMapService(maps, layers, pub, usecases.DefaultRenderOptions())

	_, err := svc.Build(context.Background(), &domain.VoyageMapRequest{
		Details: []domain.VoyageDetail{detail(1, domain.PositionATD, 40, -10)},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
