package application

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/salaheddinesamid/agrisales-back/internal/order/domain"
	shipmentdom "github.com/salaheddinesamid/agrisales-back/internal/shipment/domain"
)

// transitionEffect runs the side effect bound to entering a target status.
// Effects execute inside the transaction, after the legality table has
// admitted the transition and before the new status is persisted.
type transitionEffect func(ctx context.Context, tx Tx, o *domain.Order, h *domain.History, req StatusChangeRequest) error

func (s *Service) effects() map[domain.Status]transitionEffect {
	return map[domain.Status]transitionEffect{
		domain.StatusConfirmed:    s.confirmEffect,
		domain.StatusCanceled:     s.cancelEffect,
		domain.StatusInProduction: s.inProductionEffect,
		domain.StatusReadyToShip:  s.readyToShipEffect,
		domain.StatusShipped:      s.shipEffect,
		domain.StatusReceived:     s.receiveEffect,
	}
}

// UpdateStatus drives the order through the fulfillment state machine. The
// status write, the history stamp and the transition's side effect commit
// together or not at all; in particular a failed production push leaves the
// order unconfirmed.
func (s *Service) UpdateStatus(ctx context.Context, id int64, req StatusChangeRequest) error {
	target, err := domain.ParseStatus(req.NewStatus)
	if err != nil {
		return err
	}

	err = s.uow.Do(ctx, func(tx Tx) error {
		o, err := tx.Orders().GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := domain.ValidateTransition(o.Status, target); err != nil {
			return err
		}
		h, err := tx.Histories().ByOrder(ctx, o.ID)
		if err != nil {
			return err
		}

		from := o.Status
		if effect := s.effects()[target]; effect != nil {
			if err := effect(ctx, tx, &o, &h, req); err != nil {
				return err
			}
		}

		if err := tx.Orders().UpdateStatus(ctx, o.ID, target); err != nil {
			return err
		}
		if err := tx.Histories().Update(ctx, h); err != nil {
			return err
		}

		payload, err := json.Marshal(domain.OrderStatusChanged{OrderID: o.ID, From: from, To: target})
		if err != nil {
			return err
		}
		return tx.Outbox().Enqueue(ctx, strconv.FormatInt(o.ID, 10), "OrderStatusChanged", payload)
	})
	if err != nil {
		return err
	}

	if s.metrics != nil {
		s.metrics.StatusTransitions.WithLabelValues(string(target)).Inc()
	}
	s.log.Info("order status updated", "order_id", id, "status", target)
	return nil
}

func (s *Service) confirmEffect(ctx context.Context, tx Tx, o *domain.Order, h *domain.History, req StatusChangeRequest) error {
	now := s.now().UTC()
	h.ConfirmedAt = &now
	h.PreferredProductionDate = req.PreferredProductionDate

	return s.production.Push(ctx, ProductionRequest{
		OrderID:             o.ID,
		ProductionStartDate: o.ProductionDate,
		WorkingHours:        o.WorkingHours,
	})
}

// cancelEffect releases every outstanding reservation back to the products.
// Lines and history are preserved; only the status flips, so the canceled
// order stays auditable.
func (s *Service) cancelEffect(ctx context.Context, tx Tx, o *domain.Order, _ *domain.History, _ StatusChangeRequest) error {
	return releaseAll(ctx, tx.Inventory(), o.Reservations())
}

func (s *Service) inProductionEffect(_ context.Context, _ Tx, _ *domain.Order, h *domain.History, _ StatusChangeRequest) error {
	now := s.now().UTC()
	h.PreferredProductionDate = &now
	return nil
}

func (s *Service) readyToShipEffect(_ context.Context, _ Tx, _ *domain.Order, h *domain.History, _ StatusChangeRequest) error {
	now := s.now().UTC()
	h.ReadyToShipAt = &now
	return nil
}

func (s *Service) shipEffect(ctx context.Context, tx Tx, o *domain.Order, h *domain.History, _ StatusChangeRequest) error {
	if err := tx.Shipments().Create(ctx, &shipmentdom.Shipment{OrderID: o.ID}); err != nil {
		return fmt.Errorf("%w: %v", ErrShipmentFailed, err)
	}
	now := s.now().UTC()
	h.ShippedAt = &now
	return nil
}

func (s *Service) receiveEffect(_ context.Context, _ Tx, _ *domain.Order, h *domain.History, _ StatusChangeRequest) error {
	now := s.now().UTC()
	h.ReceivedAt = &now
	return nil
}

// CancelOrder is the direct cancellation path. It refuses orders that are in
// production or already closed; otherwise it releases every line's weight
// back to stock and flips the status, keeping lines and history intact.
func (s *Service) CancelOrder(ctx context.Context, id int64) error {
	err := s.uow.Do(ctx, func(tx Tx) error {
		o, err := tx.Orders().GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if !o.Status.Cancelable() {
			return fmt.Errorf("order %d is %s: %w", o.ID, o.Status, domain.ErrOrderCannotBeCanceled)
		}

		released := o.Reservations()
		if err := releaseAll(ctx, tx.Inventory(), released); err != nil {
			return err
		}
		if err := tx.Orders().UpdateStatus(ctx, o.ID, domain.StatusCanceled); err != nil {
			return err
		}

		payload, err := json.Marshal(domain.OrderCanceled{OrderID: o.ID, ReleasedWeight: released})
		if err != nil {
			return err
		}
		return tx.Outbox().Enqueue(ctx, strconv.FormatInt(o.ID, 10), "OrderCanceled", payload)
	})
	if err != nil {
		return err
	}

	if s.metrics != nil {
		s.metrics.OrdersCanceled.Inc()
	}
	s.log.Info("order canceled", "order_id", id)
	return nil
}
