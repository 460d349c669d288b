package domain

import "errors"

var (
	ErrClientNotFound  = errors.New("client not found")
	ErrProductNotFound = errors.New("product not found")
	ErrPalletNotFound  = errors.New("pallet not found")
)

type ClientStatus string

const (
	ClientActive   ClientStatus = "ACTIVE"
	ClientInactive ClientStatus = "INACTIVE"
)

type Client struct {
	ID              int
	CompanyName     string
	GeneralManager  string
	CompanyActivity string
	Status          ClientStatus
}

// Product is a graded lot of produce. AvailableWeight is the only field the
// order engine mutates, and only through the inventory ledger's row locks.
type Product struct {
	ID              int64
	Code            string
	Calibre         string
	Quality         string
	Farm            string
	AvailableWeight float64
}

// Pallet describes a packing configuration. Cost fields are carried for the
// reporting side and are not read by the order engine.
type Pallet struct {
	ID               int
	TotalNetWeight   float64
	PreparationHours float64
	Packaging        float64
	BoxesPerPallet   int
	ProductionCost   float64
	LaborCost        float64
	PackagingCost    float64
}
