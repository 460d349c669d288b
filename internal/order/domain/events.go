package domain

import "time"

// Events published through the transactional outbox.

type OrderCreated struct {
	OrderID     int64
	ClientName  string
	Currency    Currency
	TotalPrice  float64
	TotalWeight float64
	OrderDate   time.Time
}

type OrderStatusChanged struct {
	OrderID int64
	From    Status
	To      Status
}

type OrderCanceled struct {
	OrderID        int64
	ReleasedWeight map[string]float64
}
