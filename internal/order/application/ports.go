package application

import (
	"context"
	"time"

	catalogdom "github.com/salaheddinesamid/agrisales-back/internal/catalog/domain"
	inventorydom "github.com/salaheddinesamid/agrisales-back/internal/inventory/domain"
	"github.com/salaheddinesamid/agrisales-back/internal/order/domain"
	shipmentdom "github.com/salaheddinesamid/agrisales-back/internal/shipment/domain"
)

// UnitOfWork runs fn inside one database transaction. fn returning an error
// rolls everything back; every repository handed out by Tx joins the same
// transaction, so row locks taken by the ledger are held until commit.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(tx Tx) error) error
}

type Tx interface {
	Clients() ClientRepository
	Catalog() CatalogRepository
	Inventory() Ledger
	Orders() OrderRepository
	Histories() HistoryRepository
	Shipments() ShipmentRepository
	Outbox() OutboxEnqueuer
}

type ClientRepository interface {
	FindByCompanyName(ctx context.Context, name string) (catalogdom.Client, error)
}

// CatalogRepository fetches every referenced record once per operation.
type CatalogRepository interface {
	ProductsByCode(ctx context.Context, codes []string) (map[string]catalogdom.Product, error)
	PalletsByID(ctx context.Context, ids []int) (map[int]catalogdom.Pallet, error)
}

// Ledger is the inventory check-and-decrement surface. Reserve takes an
// exclusive row lock on the product before reading its stock, so two
// transactions racing on one product are linearized rather than both reading
// a stale snapshot.
type Ledger interface {
	Reserve(ctx context.Context, productCode string, weight float64) error
	Release(ctx context.Context, productCode string, weight float64) error
}

type OrderRepository interface {
	Create(ctx context.Context, o *domain.Order) error
	Get(ctx context.Context, id int64) (domain.Order, error)
	GetForUpdate(ctx context.Context, id int64) (domain.Order, error)
	List(ctx context.Context) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, id int64, s domain.Status) error
	UpdateTotals(ctx context.Context, id int64, totalPrice, totalWeight float64) error
	LineForUpdate(ctx context.Context, lineID int64) (domain.Line, error)
	InsertLine(ctx context.Context, l *domain.Line) error
	UpdateLine(ctx context.Context, l domain.Line) error
	DeleteLine(ctx context.Context, lineID int64) error
}

type HistoryRepository interface {
	Create(ctx context.Context, orderID int64) error
	ByOrder(ctx context.Context, orderID int64) (domain.History, error)
	Update(ctx context.Context, h domain.History) error
	ListOpen(ctx context.Context) ([]domain.History, error)
}

type ShipmentRepository interface {
	Create(ctx context.Context, s *shipmentdom.Shipment) error
}

type OutboxEnqueuer interface {
	Enqueue(ctx context.Context, aggregateID, eventType string, payload []byte) error
}

// StockReader serves the read-only stock listing; it takes no locks.
type StockReader interface {
	ListStock(ctx context.Context) ([]inventorydom.StockLevel, error)
}

// ProductionNotifier pushes a confirmed order to the external production
// scheduling system. A failed push must fail the enclosing transaction.
type ProductionNotifier interface {
	Push(ctx context.Context, req ProductionRequest) error
}

type ProductionRequest struct {
	OrderID             int64     `json:"orderId"`
	ProductionStartDate time.Time `json:"productionStartDate"`
	WorkingHours        float64   `json:"workingHours"`
}
