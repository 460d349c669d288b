package domain

import "time"

type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyMAD Currency = "MAD"
)

// Order owns its lines and optional mixed line. Lines never outlive the order
// and are never shared between orders; every weight on a live line has been
// reserved from its product's stock.
type Order struct {
	ID              int64
	ClientID        int
	ClientName      string
	Currency        Currency
	Status          Status
	TotalPrice      float64
	TotalWeight     float64
	WorkingHours    float64
	ProductionDate  time.Time
	OrderDate       time.Time
	DeliveryDate    time.Time
	ShippingAddress string
	Lines           []Line
	Mixed           *MixedLine
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type Line struct {
	ID          int64
	OrderID     int64
	ProductCode string
	PalletID    int
	Weight      float64
	PricePerKg  float64
	Packaging   float64
	PalletCount int
	Brand       string
}

// MixedLine is a single blended pallet whose details split the pallet's net
// weight between products by percentage.
type MixedLine struct {
	ID       int64
	PalletID int
	Details  []MixedDetail
}

type MixedDetail struct {
	ID          int64
	ProductCode string
	Percentage  float64
	Weight      float64
	PricePerKg  float64
	Brand       string
}

// History carries one timestamp per fulfillment stage. A nil pointer means the
// order has not reached that stage.
type History struct {
	ID                      int64
	OrderID                 int64
	ConfirmedAt             *time.Time
	PreferredProductionDate *time.Time
	ReadyToShipAt           *time.Time
	ShippedAt               *time.Time
	ReceivedAt              *time.Time
}

func (o *Order) AddLine(l Line) {
	l.OrderID = o.ID
	o.Lines = append(o.Lines, l)
}

func (o *Order) RemoveLine(id int64) bool {
	for i, l := range o.Lines {
		if l.ID == id {
			o.Lines = append(o.Lines[:i], o.Lines[i+1:]...)
			return true
		}
	}
	return false
}

func (o *Order) Line(id int64) (Line, bool) {
	for _, l := range o.Lines {
		if l.ID == id {
			return l, true
		}
	}
	return Line{}, false
}

func (o *Order) ReplaceLine(l Line) bool {
	for i := range o.Lines {
		if o.Lines[i].ID == l.ID {
			o.Lines[i] = l
			return true
		}
	}
	return false
}

// RecomputeTotals restores the invariant that the order's totals equal the sum
// over its current lines, mixed details included.
func (o *Order) RecomputeTotals() {
	var price, weight float64
	for _, l := range o.Lines {
		price += l.PricePerKg * l.Weight
		weight += l.Weight
	}
	if o.Mixed != nil {
		for _, d := range o.Mixed.Details {
			price += d.PricePerKg * d.Weight
			weight += d.Weight
		}
	}
	o.TotalPrice = price
	o.TotalWeight = weight
}

// Reservations returns the outstanding reserved weight per product code,
// covering plain lines and mixed details alike.
func (o *Order) Reservations() map[string]float64 {
	res := make(map[string]float64, len(o.Lines))
	for _, l := range o.Lines {
		res[l.ProductCode] += l.Weight
	}
	if o.Mixed != nil {
		for _, d := range o.Mixed.Details {
			res[d.ProductCode] += d.Weight
		}
	}
	return res
}
