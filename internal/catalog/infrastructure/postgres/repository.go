package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/salaheddinesamid/agrisales-back/internal/catalog/domain"
)

// Repository serves client, product and pallet lookups for the duration of
// one order transaction.
type Repository struct {
	tx pgx.Tx
}

func NewRepository(tx pgx.Tx) *Repository {
	return &Repository{tx: tx}
}

func (r *Repository) FindByCompanyName(ctx context.Context, name string) (domain.Client, error) {
	var c domain.Client
	err := r.tx.QueryRow(ctx, `SELECT id, company_name, general_manager, company_activity, status
		FROM clients WHERE company_name=$1`, name).
		Scan(&c.ID, &c.CompanyName, &c.GeneralManager, &c.CompanyActivity, &c.Status)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Client{}, fmt.Errorf("client %q: %w", name, domain.ErrClientNotFound)
	}
	if err != nil {
		return domain.Client{}, err
	}
	return c, nil
}

func (r *Repository) ProductsByCode(ctx context.Context, codes []string) (map[string]domain.Product, error) {
	rows, err := r.tx.Query(ctx, `SELECT id, product_code, calibre, quality, farm, available_weight
		FROM products WHERE product_code = ANY($1)`, codes)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make(map[string]domain.Product, len(codes))
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Code, &p.Calibre, &p.Quality, &p.Farm, &p.AvailableWeight); err != nil {
			return nil, err
		}
		products[p.Code] = p
	}
	return products, rows.Err()
}

func (r *Repository) PalletsByID(ctx context.Context, ids []int) (map[int]domain.Pallet, error) {
	rows, err := r.tx.Query(ctx, `SELECT id, total_net_weight, preparation_time_hours, packaging,
		boxes_per_pallet, production_cost, labor_cost, packaging_cost
		FROM pallets WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	pallets := make(map[int]domain.Pallet, len(ids))
	for rows.Next() {
		var p domain.Pallet
		if err := rows.Scan(&p.ID, &p.TotalNetWeight, &p.PreparationHours, &p.Packaging,
			&p.BoxesPerPallet, &p.ProductionCost, &p.LaborCost, &p.PackagingCost); err != nil {
			return nil, err
		}
		pallets[p.ID] = p
	}
	return pallets, rows.Err()
}
