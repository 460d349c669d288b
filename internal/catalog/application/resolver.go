package application

import (
	"fmt"

	"github.com/salaheddinesamid/agrisales-back/internal/catalog/domain"
)

// Resolver answers product and pallet lookups for a single order operation
// from maps fetched once up front, so a request with many lines does not turn
// into a query per line.
type Resolver struct {
	products map[string]domain.Product
	pallets  map[int]domain.Pallet
}

func NewResolver(products map[string]domain.Product, pallets map[int]domain.Pallet) *Resolver {
	return &Resolver{products: products, pallets: pallets}
}

func (r *Resolver) Product(code string) (domain.Product, error) {
	p, ok := r.products[code]
	if !ok {
		return domain.Product{}, fmt.Errorf("product %s: %w", code, domain.ErrProductNotFound)
	}
	return p, nil
}

func (r *Resolver) Pallet(id int) (domain.Pallet, error) {
	p, ok := r.pallets[id]
	if !ok {
		return domain.Pallet{}, fmt.Errorf("pallet %d: %w", id, domain.ErrPalletNotFound)
	}
	return p, nil
}
