package application

import (
	"context"
	"log/slog"

	"github.com/salaheddinesamid/agrisales-back/internal/shipment/domain"
)

type Repository interface {
	Get(ctx context.Context, id int64) (domain.Shipment, error)
	List(ctx context.Context) ([]domain.Shipment, error)
	UpdateTracker(ctx context.Context, id int64, trackingNumber, trackingURL string) error
	Delete(ctx context.Context, id int64) error
}

// Service covers the shipment bookkeeping around shipped orders: tracking
// number assignment, cancellation and listing. Shipment creation itself is
// driven by the order state machine.
type Service struct {
	log             *slog.Logger
	repo            Repository
	trackingBaseURL string
}

func NewService(log *slog.Logger, repo Repository, trackingBaseURL string) *Service {
	return &Service{log: log, repo: repo, trackingBaseURL: trackingBaseURL}
}

func (s *Service) Get(ctx context.Context, id int64) (domain.Shipment, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]domain.Shipment, error) {
	return s.repo.List(ctx)
}

// AssignTracker records the carrier tracking number and derives the public
// tracking URL from it.
func (s *Service) AssignTracker(ctx context.Context, id int64, trackingNumber string) error {
	url := s.trackingBaseURL + trackingNumber
	if err := s.repo.UpdateTracker(ctx, id, trackingNumber, url); err != nil {
		return err
	}
	s.log.Info("shipment tracker assigned", "shipment_id", id, "tracking_number", trackingNumber)
	return nil
}

func (s *Service) Cancel(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("shipment canceled", "shipment_id", id)
	return nil
}
