package application

import (
	"context"
	"errors"
	"fmt"
	"sync"

	catalogdom "github.com/salaheddinesamid/agrisales-back/internal/catalog/domain"
	inventorydom "github.com/salaheddinesamid/agrisales-back/internal/inventory/domain"
	"github.com/salaheddinesamid/agrisales-back/internal/order/domain"
	shipmentdom "github.com/salaheddinesamid/agrisales-back/internal/shipment/domain"
)

// fakeState is the in-memory database behind the fake unit of work. The unit
// of work snapshots it before each transaction and restores the snapshot when
// the transaction function fails, so rollback behaves like the real thing.
type fakeState struct {
	clients   map[string]catalogdom.Client
	products  map[string]catalogdom.Product
	pallets   map[int]catalogdom.Pallet
	stock     map[string]float64
	orders    map[int64]domain.Order
	histories map[int64]domain.History
	shipments []shipmentdom.Shipment
	events    []fakeEvent

	nextOrderID int64
	nextLineID  int64

	failShipments bool
}

type fakeEvent struct {
	AggregateID string
	EventType   string
	Payload     []byte
}

func newFakeState() *fakeState {
	return &fakeState{
		clients:   make(map[string]catalogdom.Client),
		products:  make(map[string]catalogdom.Product),
		pallets:   make(map[int]catalogdom.Pallet),
		stock:     make(map[string]float64),
		orders:    make(map[int64]domain.Order),
		histories: make(map[int64]domain.History),
	}
}

func copyOrder(o domain.Order) domain.Order {
	c := o
	c.Lines = append([]domain.Line(nil), o.Lines...)
	if o.Mixed != nil {
		m := *o.Mixed
		m.Details = append([]domain.MixedDetail(nil), o.Mixed.Details...)
		c.Mixed = &m
	}
	return c
}

func (st *fakeState) clone() *fakeState {
	c := newFakeState()
	for k, v := range st.clients {
		c.clients[k] = v
	}
	for k, v := range st.products {
		c.products[k] = v
	}
	for k, v := range st.pallets {
		c.pallets[k] = v
	}
	for k, v := range st.stock {
		c.stock[k] = v
	}
	for k, v := range st.orders {
		c.orders[k] = copyOrder(v)
	}
	for k, v := range st.histories {
		c.histories[k] = v
	}
	c.shipments = append([]shipmentdom.Shipment(nil), st.shipments...)
	c.events = append([]fakeEvent(nil), st.events...)
	c.nextOrderID = st.nextOrderID
	c.nextLineID = st.nextLineID
	c.failShipments = st.failShipments
	return c
}

// fakeUOW serializes transactions with a mutex, mirroring the row-lock
// linearization concurrent transactions get from the real database.
type fakeUOW struct {
	mu    sync.Mutex
	state *fakeState
}

func (u *fakeUOW) Do(_ context.Context, fn func(tx Tx) error) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	snapshot := u.state.clone()
	if err := fn(fakeTx{state: u.state}); err != nil {
		*u.state = *snapshot
		return err
	}
	return nil
}

type fakeTx struct {
	state *fakeState
}

func (t fakeTx) Clients() ClientRepository     { return fakeCatalog{t.state} }
func (t fakeTx) Catalog() CatalogRepository    { return fakeCatalog{t.state} }
func (t fakeTx) Inventory() Ledger             { return fakeLedger{t.state} }
func (t fakeTx) Orders() OrderRepository       { return fakeOrders{t.state} }
func (t fakeTx) Histories() HistoryRepository  { return fakeHistories{t.state} }
func (t fakeTx) Shipments() ShipmentRepository { return fakeShipments{t.state} }
func (t fakeTx) Outbox() OutboxEnqueuer        { return fakeOutbox{t.state} }

type fakeCatalog struct {
	state *fakeState
}

func (f fakeCatalog) FindByCompanyName(_ context.Context, name string) (catalogdom.Client, error) {
	c, ok := f.state.clients[name]
	if !ok {
		return catalogdom.Client{}, fmt.Errorf("%q: %w", name, catalogdom.ErrClientNotFound)
	}
	return c, nil
}

func (f fakeCatalog) ProductsByCode(_ context.Context, codes []string) (map[string]catalogdom.Product, error) {
	out := make(map[string]catalogdom.Product)
	for _, code := range codes {
		if p, ok := f.state.products[code]; ok {
			out[code] = p
		}
	}
	return out, nil
}

func (f fakeCatalog) PalletsByID(_ context.Context, ids []int) (map[int]catalogdom.Pallet, error) {
	out := make(map[int]catalogdom.Pallet)
	for _, id := range ids {
		if p, ok := f.state.pallets[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

type fakeLedger struct {
	state *fakeState
}

func (f fakeLedger) Reserve(_ context.Context, productCode string, weight float64) error {
	available, ok := f.state.stock[productCode]
	if !ok {
		return fmt.Errorf("%q: %w", productCode, catalogdom.ErrProductNotFound)
	}
	if available < weight {
		return fmt.Errorf("%q needs %.2fkg, has %.2fkg: %w", productCode, weight, available, inventorydom.ErrProductLowStock)
	}
	f.state.stock[productCode] = available - weight
	return nil
}

func (f fakeLedger) Release(_ context.Context, productCode string, weight float64) error {
	if _, ok := f.state.stock[productCode]; !ok {
		return fmt.Errorf("%q: %w", productCode, catalogdom.ErrProductNotFound)
	}
	f.state.stock[productCode] += weight
	return nil
}

type fakeOrders struct {
	state *fakeState
}

func (f fakeOrders) Create(_ context.Context, o *domain.Order) error {
	f.state.nextOrderID++
	o.ID = f.state.nextOrderID
	for i := range o.Lines {
		f.state.nextLineID++
		o.Lines[i].ID = f.state.nextLineID
		o.Lines[i].OrderID = o.ID
	}
	f.state.orders[o.ID] = copyOrder(*o)
	return nil
}

func (f fakeOrders) Get(_ context.Context, id int64) (domain.Order, error) {
	o, ok := f.state.orders[id]
	if !ok {
		return domain.Order{}, fmt.Errorf("order %d: %w", id, ErrOrderNotFound)
	}
	return copyOrder(o), nil
}

func (f fakeOrders) GetForUpdate(ctx context.Context, id int64) (domain.Order, error) {
	return f.Get(ctx, id)
}

func (f fakeOrders) List(_ context.Context) ([]domain.Order, error) {
	out := make([]domain.Order, 0, len(f.state.orders))
	for _, o := range f.state.orders {
		out = append(out, copyOrder(o))
	}
	return out, nil
}

func (f fakeOrders) UpdateStatus(_ context.Context, id int64, s domain.Status) error {
	o, ok := f.state.orders[id]
	if !ok {
		return fmt.Errorf("order %d: %w", id, ErrOrderNotFound)
	}
	o.Status = s
	f.state.orders[id] = o
	return nil
}

func (f fakeOrders) UpdateTotals(_ context.Context, id int64, totalPrice, totalWeight float64) error {
	o, ok := f.state.orders[id]
	if !ok {
		return fmt.Errorf("order %d: %w", id, ErrOrderNotFound)
	}
	o.TotalPrice = totalPrice
	o.TotalWeight = totalWeight
	f.state.orders[id] = o
	return nil
}

func (f fakeOrders) LineForUpdate(_ context.Context, lineID int64) (domain.Line, error) {
	for _, o := range f.state.orders {
		if l, ok := o.Line(lineID); ok {
			return l, nil
		}
	}
	return domain.Line{}, fmt.Errorf("line %d: %w", lineID, ErrLineNotFound)
}

func (f fakeOrders) InsertLine(_ context.Context, l *domain.Line) error {
	o, ok := f.state.orders[l.OrderID]
	if !ok {
		return fmt.Errorf("order %d: %w", l.OrderID, ErrOrderNotFound)
	}
	f.state.nextLineID++
	l.ID = f.state.nextLineID
	o.Lines = append(o.Lines, *l)
	f.state.orders[l.OrderID] = o
	return nil
}

func (f fakeOrders) UpdateLine(_ context.Context, l domain.Line) error {
	o, ok := f.state.orders[l.OrderID]
	if !ok {
		return fmt.Errorf("order %d: %w", l.OrderID, ErrOrderNotFound)
	}
	if !o.ReplaceLine(l) {
		return fmt.Errorf("line %d: %w", l.ID, ErrLineNotFound)
	}
	f.state.orders[l.OrderID] = o
	return nil
}

func (f fakeOrders) DeleteLine(_ context.Context, lineID int64) error {
	for id, o := range f.state.orders {
		if o.RemoveLine(lineID) {
			f.state.orders[id] = o
			return nil
		}
	}
	return fmt.Errorf("line %d: %w", lineID, ErrLineNotFound)
}

type fakeHistories struct {
	state *fakeState
}

func (f fakeHistories) Create(_ context.Context, orderID int64) error {
	f.state.histories[orderID] = domain.History{ID: orderID, OrderID: orderID}
	return nil
}

func (f fakeHistories) ByOrder(_ context.Context, orderID int64) (domain.History, error) {
	h, ok := f.state.histories[orderID]
	if !ok {
		return domain.History{}, fmt.Errorf("history for order %d: %w", orderID, ErrOrderNotFound)
	}
	return h, nil
}

func (f fakeHistories) Update(_ context.Context, h domain.History) error {
	f.state.histories[h.OrderID] = h
	return nil
}

func (f fakeHistories) ListOpen(_ context.Context) ([]domain.History, error) {
	var out []domain.History
	for _, h := range f.state.histories {
		if h.ReceivedAt == nil {
			out = append(out, h)
		}
	}
	return out, nil
}

type fakeShipments struct {
	state *fakeState
}

func (f fakeShipments) Create(_ context.Context, s *shipmentdom.Shipment) error {
	if f.state.failShipments {
		return errors.New("shipment store unavailable")
	}
	s.ID = int64(len(f.state.shipments) + 1)
	f.state.shipments = append(f.state.shipments, *s)
	return nil
}

type fakeOutbox struct {
	state *fakeState
}

func (f fakeOutbox) Enqueue(_ context.Context, aggregateID, eventType string, payload []byte) error {
	f.state.events = append(f.state.events, fakeEvent{
		AggregateID: aggregateID,
		EventType:   eventType,
		Payload:     payload,
	})
	return nil
}

type fakeProduction struct {
	mu     sync.Mutex
	err    error
	pushed []ProductionRequest
}

func (f *fakeProduction) Push(_ context.Context, req ProductionRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.pushed = append(f.pushed, req)
	return nil
}

type fakeStockReader struct {
	state *fakeState
}

func (f *fakeStockReader) ListStock(_ context.Context) ([]inventorydom.StockLevel, error) {
	out := make([]inventorydom.StockLevel, 0, len(f.state.stock))
	for code, w := range f.state.stock {
		p := f.state.products[code]
		out = append(out, inventorydom.StockLevel{
			ProductCode:     code,
			Calibre:         p.Calibre,
			Quality:         p.Quality,
			Farm:            p.Farm,
			AvailableWeight: w,
		})
	}
	return out, nil
}
