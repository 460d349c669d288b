package application

import "time"

type CreateOrderRequest struct {
	ClientName      string            `json:"clientName"`
	ShippingAddress string            `json:"shippingAddress"`
	Items           []LineRequest     `json:"items"`
	Mixed           *MixedLineRequest `json:"mixedOrder,omitempty"`
}

type LineRequest struct {
	ProductCode string  `json:"productCode"`
	PalletID    int     `json:"palletId"`
	Weight      float64 `json:"itemWeight"`
	PricePerKg  float64 `json:"pricePerKg"`
	Packaging   float64 `json:"packaging"`
	PalletCount int     `json:"numberOfPallets"`
	Currency    string  `json:"currency"`
	Brand       string  `json:"itemBrand"`
}

type MixedLineRequest struct {
	PalletID int                  `json:"palletId"`
	Items    []MixedDetailRequest `json:"items"`
}

type MixedDetailRequest struct {
	ProductCode string  `json:"productCode"`
	Percentage  float64 `json:"percentage"`
	PricePerKg  float64 `json:"pricePerKg"`
	Brand       string  `json:"brand"`
}

// UpdateOrderRequest is the delta applied by UpdateOrder. All three phases run
// in one transaction.
type UpdateOrderRequest struct {
	ItemsDeleted []int64             `json:"itemsDeleted"`
	ItemsAdded   []LineRequest       `json:"itemsAdded"`
	ItemsUpdated []LineUpdateRequest `json:"updatedItems"`
}

type LineUpdateRequest struct {
	LineID      int64   `json:"itemId"`
	ProductCode string  `json:"productCode"`
	PalletID    int     `json:"palletId"`
	Weight      float64 `json:"newWeight"`
	PricePerKg  float64 `json:"newPricePerKg"`
	Packaging   float64 `json:"newPackaging"`
	PalletCount int     `json:"newNumberOfPallets"`
	Brand       string  `json:"newBrand"`
}

type StatusChangeRequest struct {
	NewStatus               string     `json:"newStatus"`
	PreferredProductionDate *time.Time `json:"preferredProductionDate,omitempty"`
}
