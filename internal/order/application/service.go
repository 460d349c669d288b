package application

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"
	"strconv"
	"time"

	catalogapp "github.com/salaheddinesamid/agrisales-back/internal/catalog/application"
	catalogdom "github.com/salaheddinesamid/agrisales-back/internal/catalog/domain"
	inventorydom "github.com/salaheddinesamid/agrisales-back/internal/inventory/domain"
	"github.com/salaheddinesamid/agrisales-back/internal/order/domain"
	"github.com/salaheddinesamid/agrisales-back/pkg/metrics"
)

// Service is the order transaction engine: assembly, mutation, status
// transitions and the read paths. Every mutating operation runs inside a
// single unit of work and either commits completely or leaves no trace.
type Service struct {
	log        *slog.Logger
	uow        UnitOfWork
	stock      StockReader
	production ProductionNotifier
	metrics    *metrics.OrderMetrics
	now        func() time.Time
}

func NewService(log *slog.Logger, uow UnitOfWork, stock StockReader, production ProductionNotifier, m *metrics.OrderMetrics) *Service {
	return &Service{
		log:        log,
		uow:        uow,
		stock:      stock,
		production: production,
		metrics:    m,
		now:        time.Now,
	}
}

// CreateOrder assembles and persists a new order: client eligibility, batched
// catalog resolution, per-product stock reservation under row locks, derived
// totals and delivery estimate, and a fresh history row, all in one
// transaction.
func (s *Service) CreateOrder(ctx context.Context, req CreateOrderRequest) (domain.Order, error) {
	var created domain.Order

	err := s.uow.Do(ctx, func(tx Tx) error {
		client, err := tx.Clients().FindByCompanyName(ctx, req.ClientName)
		if err != nil {
			return err
		}
		if client.Status != catalogdom.ClientActive {
			return ErrClientNotActive
		}

		resolver, err := s.resolve(ctx, tx, req)
		if err != nil {
			return err
		}

		now := s.now().UTC()
		o := domain.Order{
			ClientID:        client.ID,
			ClientName:      client.CompanyName,
			Status:          domain.StatusPreliminary,
			ShippingAddress: req.ShippingAddress,
			ProductionDate:  now,
			OrderDate:       now.Truncate(24 * time.Hour),
		}

		var estimatedHours float64
		for _, item := range req.Items {
			if _, err := resolver.Product(item.ProductCode); err != nil {
				return err
			}
			pallet, err := resolver.Pallet(item.PalletID)
			if err != nil {
				return err
			}
			o.AddLine(domain.Line{
				ProductCode: item.ProductCode,
				PalletID:    item.PalletID,
				Weight:      item.Weight,
				PricePerKg:  item.PricePerKg,
				Packaging:   item.Packaging,
				PalletCount: item.PalletCount,
				Brand:       item.Brand,
			})
			o.Currency = domain.Currency(item.Currency)
			o.WorkingHours += pallet.PreparationHours
			estimatedHours += pallet.PreparationHours
		}

		if req.Mixed != nil && len(req.Mixed.Items) > 0 {
			pallet, err := resolver.Pallet(req.Mixed.PalletID)
			if err != nil {
				return err
			}
			mixed := &domain.MixedLine{PalletID: pallet.ID}
			for _, d := range req.Mixed.Items {
				if _, err := resolver.Product(d.ProductCode); err != nil {
					return err
				}
				// The reserved weight is derived from the pallet split; the
				// stock check below runs against this same figure.
				weight := pallet.TotalNetWeight * d.Percentage / 100
				mixed.Details = append(mixed.Details, domain.MixedDetail{
					ProductCode: d.ProductCode,
					Percentage:  d.Percentage,
					Weight:      weight,
					PricePerKg:  d.PricePerKg,
					Brand:       d.Brand,
				})
			}
			o.Mixed = mixed
		}

		if err := reserveAll(ctx, tx.Inventory(), o.Reservations()); err != nil {
			if s.metrics != nil {
				s.metrics.ReservationFailures.Inc()
			}
			return err
		}

		o.DeliveryDate = now.Add(time.Duration(estimatedHours * float64(time.Hour)))
		o.RecomputeTotals()

		if err := tx.Orders().Create(ctx, &o); err != nil {
			return err
		}
		if err := tx.Histories().Create(ctx, o.ID); err != nil {
			return err
		}

		payload, err := json.Marshal(domain.OrderCreated{
			OrderID:     o.ID,
			ClientName:  o.ClientName,
			Currency:    o.Currency,
			TotalPrice:  o.TotalPrice,
			TotalWeight: o.TotalWeight,
			OrderDate:   o.OrderDate,
		})
		if err != nil {
			return err
		}
		if err := tx.Outbox().Enqueue(ctx, strconv.FormatInt(o.ID, 10), "OrderCreated", payload); err != nil {
			return err
		}

		created = o
		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}

	if s.metrics != nil {
		s.metrics.OrdersCreated.Inc()
	}
	s.log.Info("order created",
		"order_id", created.ID,
		"client", created.ClientName,
		"total_weight", created.TotalWeight,
		"total_price", created.TotalPrice,
	)
	return created, nil
}

// resolve batch-fetches every product and pallet the request references.
func (s *Service) resolve(ctx context.Context, tx Tx, req CreateOrderRequest) (*catalogapp.Resolver, error) {
	codeSet := make(map[string]struct{})
	palletSet := make(map[int]struct{})
	for _, item := range req.Items {
		codeSet[item.ProductCode] = struct{}{}
		palletSet[item.PalletID] = struct{}{}
	}
	if req.Mixed != nil {
		palletSet[req.Mixed.PalletID] = struct{}{}
		for _, d := range req.Mixed.Items {
			codeSet[d.ProductCode] = struct{}{}
		}
	}

	codes := make([]string, 0, len(codeSet))
	for c := range codeSet {
		codes = append(codes, c)
	}
	palletIDs := make([]int, 0, len(palletSet))
	for id := range palletSet {
		palletIDs = append(palletIDs, id)
	}

	products, err := tx.Catalog().ProductsByCode(ctx, codes)
	if err != nil {
		return nil, err
	}
	pallets, err := tx.Catalog().PalletsByID(ctx, palletIDs)
	if err != nil {
		return nil, err
	}
	return catalogapp.NewResolver(products, pallets), nil
}

// reserveAll takes the per-product reservations in sorted code order so
// concurrent operations acquire row locks consistently and cannot deadlock
// against each other.
func reserveAll(ctx context.Context, ledger Ledger, reservations map[string]float64) error {
	codes := make([]string, 0, len(reservations))
	for code := range reservations {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	for _, code := range codes {
		if err := ledger.Reserve(ctx, code, reservations[code]); err != nil {
			return err
		}
	}
	return nil
}

// releaseAll returns reserved weight to the products, in the same sorted
// order as reserveAll.
func releaseAll(ctx context.Context, ledger Ledger, reservations map[string]float64) error {
	codes := make([]string, 0, len(reservations))
	for code := range reservations {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	for _, code := range codes {
		if err := ledger.Release(ctx, code, reservations[code]); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) GetOrder(ctx context.Context, id int64) (domain.Order, error) {
	var o domain.Order
	err := s.uow.Do(ctx, func(tx Tx) error {
		var err error
		o, err = tx.Orders().Get(ctx, id)
		return err
	})
	return o, err
}

func (s *Service) ListOrders(ctx context.Context) ([]domain.Order, error) {
	var orders []domain.Order
	err := s.uow.Do(ctx, func(tx Tx) error {
		var err error
		orders, err = tx.Orders().List(ctx)
		return err
	})
	return orders, err
}

// ListOpenHistory returns history rows for orders not yet received.
func (s *Service) ListOpenHistory(ctx context.Context) ([]domain.History, error) {
	var hs []domain.History
	err := s.uow.Do(ctx, func(tx Tx) error {
		var err error
		hs, err = tx.Histories().ListOpen(ctx)
		return err
	})
	return hs, err
}

func (s *Service) ListStock(ctx context.Context) ([]inventorydom.StockLevel, error) {
	return s.stock.ListStock(ctx)
}
