package domain

import (
	"errors"
	"time"
)

var ErrShipmentNotFound = errors.New("shipment not found")

// Shipment is bound 1:1 to a shipped order. Tracking fields are filled later
// by the logistics side once a carrier number is known.
type Shipment struct {
	ID             int64
	OrderID        int64
	TrackingNumber string
	TrackingURL    string
	CreatedAt      time.Time
}
