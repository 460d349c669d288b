package domain

import "errors"

// ErrProductLowStock distinguishes "found but insufficient" from a missing
// product reference, so callers can react differently to each.
var ErrProductLowStock = errors.New("product low stock")

type StockLevel struct {
	ProductCode     string
	Calibre         string
	Quality         string
	Farm            string
	AvailableWeight float64
}
