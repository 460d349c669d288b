package application

import (
	"context"
	"fmt"

	catalogapp "github.com/salaheddinesamid/agrisales-back/internal/catalog/application"
	"github.com/salaheddinesamid/agrisales-back/internal/order/domain"
)

// UpdateOrder applies a line-item delta to an existing order under a
// pessimistic lock on the order row. Deletions release stock, additions
// reserve it, updates release the old weight and reserve the new; totals are
// recomputed from the surviving lines. Any failure aborts the whole update.
func (s *Service) UpdateOrder(ctx context.Context, id int64, delta UpdateOrderRequest) (domain.Order, error) {
	var updated domain.Order

	err := s.uow.Do(ctx, func(tx Tx) error {
		o, err := tx.Orders().GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if o.Status == domain.StatusReadyToShip || o.Status == domain.StatusShipped || o.Status.Terminal() {
			return fmt.Errorf("order %d is %s: %w", o.ID, o.Status, domain.ErrOrderCannotBeUpdated)
		}

		resolver, err := s.resolveDelta(ctx, tx, delta)
		if err != nil {
			return err
		}

		if err := s.deleteLines(ctx, tx, &o, delta.ItemsDeleted); err != nil {
			return err
		}
		if err := s.addLines(ctx, tx, &o, resolver, delta.ItemsAdded); err != nil {
			return err
		}
		if err := s.updateLines(ctx, tx, &o, resolver, delta.ItemsUpdated); err != nil {
			return err
		}

		o.RecomputeTotals()
		if err := tx.Orders().UpdateTotals(ctx, o.ID, o.TotalPrice, o.TotalWeight); err != nil {
			return err
		}

		updated = o
		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}

	s.log.Info("order updated", "order_id", updated.ID,
		"total_weight", updated.TotalWeight, "total_price", updated.TotalPrice)
	return updated, nil
}

func (s *Service) resolveDelta(ctx context.Context, tx Tx, delta UpdateOrderRequest) (*catalogapp.Resolver, error) {
	req := CreateOrderRequest{Items: delta.ItemsAdded}
	for _, u := range delta.ItemsUpdated {
		req.Items = append(req.Items, LineRequest{ProductCode: u.ProductCode, PalletID: u.PalletID})
	}
	return s.resolve(ctx, tx, req)
}

func (s *Service) deleteLines(ctx context.Context, tx Tx, o *domain.Order, ids []int64) error {
	for _, lineID := range ids {
		line, err := tx.Orders().LineForUpdate(ctx, lineID)
		if err != nil {
			return err
		}
		if line.OrderID != o.ID {
			return fmt.Errorf("line %d does not belong to order %d: %w", lineID, o.ID, ErrLineNotFound)
		}
		if err := tx.Inventory().Release(ctx, line.ProductCode, line.Weight); err != nil {
			return err
		}
		if err := tx.Orders().DeleteLine(ctx, lineID); err != nil {
			return err
		}
		o.RemoveLine(lineID)
	}
	return nil
}

func (s *Service) addLines(ctx context.Context, tx Tx, o *domain.Order, resolver *catalogapp.Resolver, items []LineRequest) error {
	for _, item := range items {
		if _, err := resolver.Pallet(item.PalletID); err != nil {
			return err
		}
		// Reserve locks the product row and verifies stock in one step.
		if err := tx.Inventory().Reserve(ctx, item.ProductCode, item.Weight); err != nil {
			return err
		}
		line := domain.Line{
			OrderID:     o.ID,
			ProductCode: item.ProductCode,
			PalletID:    item.PalletID,
			Weight:      item.Weight,
			PricePerKg:  item.PricePerKg,
			Packaging:   item.Packaging,
			PalletCount: item.PalletCount,
			Brand:       item.Brand,
		}
		if err := tx.Orders().InsertLine(ctx, &line); err != nil {
			return err
		}
		o.AddLine(line)
	}
	return nil
}

func (s *Service) updateLines(ctx context.Context, tx Tx, o *domain.Order, resolver *catalogapp.Resolver, items []LineUpdateRequest) error {
	for _, item := range items {
		line, err := tx.Orders().LineForUpdate(ctx, item.LineID)
		if err != nil {
			return err
		}
		if line.OrderID != o.ID {
			return fmt.Errorf("line %d does not belong to order %d: %w", item.LineID, o.ID, ErrLineNotFound)
		}
		if item.PalletID != 0 {
			if _, err := resolver.Pallet(item.PalletID); err != nil {
				return err
			}
			line.PalletID = item.PalletID
		}

		// Return the old reservation before taking the new one so an update
		// that keeps the same product only needs the headroom difference.
		if err := tx.Inventory().Release(ctx, line.ProductCode, line.Weight); err != nil {
			return err
		}
		if err := tx.Inventory().Reserve(ctx, item.ProductCode, item.Weight); err != nil {
			return err
		}

		line.ProductCode = item.ProductCode
		line.Weight = item.Weight
		line.PricePerKg = item.PricePerKg
		line.Packaging = item.Packaging
		line.PalletCount = item.PalletCount
		line.Brand = item.Brand
		if err := tx.Orders().UpdateLine(ctx, line); err != nil {
			return err
		}
		o.ReplaceLine(line)
	}
	return nil
}
