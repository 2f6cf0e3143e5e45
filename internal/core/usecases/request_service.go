package usecases

import (
	"context"
	"fmt"

	"github.com/accuritas/voyagemap/internal/core/domain"
)

// RequestService answers map requests arriving over the message bus.
type RequestService struct {
	voyages  *VoyageMapService
	forensic *ForensicService
	stations *StationService
}

// NewRequestService creates a new RequestService.
func NewRequestService(voyages *VoyageMapService, forensic *ForensicService, stations *StationService) *RequestService {
	return &RequestService{voyages: voyages, forensic: forensic, stations: stations}
}

// Handle runs req and returns its result. Request failures are reported in
// the result's Error field; the returned error is reserved for failures the
// caller should retry.
func (s *RequestService) Handle(ctx context.Context, req *domain.MapRequest) (*domain.MapResult, error) {
	res := &domain.MapResult{RequestID: req.ID, Type: req.Type}
	if err := req.Validate(); err != nil {
		res.Error = err.Error()
		return res, nil
	}

	var err error
	switch req.Type {
	case domain.MessageVoyageMap:
		res.Map, err = s.voyages.Build(ctx, req.Voyage)
	case domain.MessageForensicMap:
		res.Map, err = s.forensic.Create(ctx, req.Forensic)
	case domain.MessageForensicCount:
		var n int
		if n, err = s.stations.Count(ctx, req.Stations.Kind); err == nil {
			res.Count = &n
		}
	case domain.MessageForensicHeaders:
		res.Headers, err = s.stations.Headers(ctx, req.Stations.Kind)
	case domain.MessageForensicRows:
		res.Rows, err = s.stations.Rows(ctx, req.Stations.Kind, req.Stations.Start, req.Stations.Count)
	}
	if err != nil {
		if IsClientError(err) {
			res.Error = err.Error()
			return res, nil
		}
		return nil, fmt.Errorf("%s request %s: %w", req.Type, req.ID, err)
	}
	return res, nil
}
