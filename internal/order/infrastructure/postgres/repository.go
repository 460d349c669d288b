package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/salaheddinesamid/agrisales-back/internal/order/application"
	"github.com/salaheddinesamid/agrisales-back/internal/order/domain"
)

// Repository persists the order aggregate. All methods run on the enclosing
// unit of work's transaction.
type Repository struct {
	tx pgx.Tx
}

func NewRepository(tx pgx.Tx) *Repository {
	return &Repository{tx: tx}
}

func (r *Repository) Create(ctx context.Context, o *domain.Order) error {
	err := r.tx.QueryRow(ctx, `INSERT INTO orders
			(client_id, currency, status, total_price, total_weight, working_hours,
			 production_date, order_date, delivery_date, shipping_address, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,now(),now())
		RETURNING id`,
		o.ClientID, o.Currency, o.Status, o.TotalPrice, o.TotalWeight, o.WorkingHours,
		o.ProductionDate, o.OrderDate, o.DeliveryDate, o.ShippingAddress).Scan(&o.ID)
	if err != nil {
		return err
	}

	for i := range o.Lines {
		o.Lines[i].OrderID = o.ID
		if err := r.InsertLine(ctx, &o.Lines[i]); err != nil {
			return err
		}
	}

	if o.Mixed != nil {
		err := r.tx.QueryRow(ctx,
			`INSERT INTO mixed_order_items (order_id, pallet_id) VALUES ($1,$2) RETURNING id`,
			o.ID, o.Mixed.PalletID).Scan(&o.Mixed.ID)
		if err != nil {
			return err
		}
		batch := &pgx.Batch{}
		for _, d := range o.Mixed.Details {
			batch.Queue(`INSERT INTO mixed_order_item_details
					(mixed_order_item_id, product_code, percentage, weight, price_per_kg, brand)
				VALUES ($1,$2,$3,$4,$5,$6)`,
				o.Mixed.ID, d.ProductCode, d.Percentage, d.Weight, d.PricePerKg, d.Brand)
		}
		if err := r.tx.SendBatch(ctx, batch).Close(); err != nil {
			return err
		}
	}
	return nil
}

func (r *Repository) InsertLine(ctx context.Context, l *domain.Line) error {
	return r.tx.QueryRow(ctx, `INSERT INTO order_items
			(order_id, product_code, pallet_id, item_weight, price_per_kg, packaging, number_of_pallets, brand)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING id`,
		l.OrderID, l.ProductCode, l.PalletID, l.Weight, l.PricePerKg, l.Packaging, l.PalletCount, l.Brand).
		Scan(&l.ID)
}

func (r *Repository) Get(ctx context.Context, id int64) (domain.Order, error) {
	return r.get(ctx, id, false)
}

func (r *Repository) GetForUpdate(ctx context.Context, id int64) (domain.Order, error) {
	return r.get(ctx, id, true)
}

func (r *Repository) get(ctx context.Context, id int64, forUpdate bool) (domain.Order, error) {
	q := `SELECT o.id, o.client_id, c.company_name, o.currency, o.status,
			o.total_price, o.total_weight, o.working_hours,
			o.production_date, o.order_date, o.delivery_date, o.shipping_address,
			o.created_at, o.updated_at
		FROM orders o JOIN clients c ON c.id = o.client_id
		WHERE o.id=$1`
	if forUpdate {
		q += ` FOR UPDATE OF o`
	}

	var o domain.Order
	err := r.tx.QueryRow(ctx, q, id).Scan(
		&o.ID, &o.ClientID, &o.ClientName, &o.Currency, &o.Status,
		&o.TotalPrice, &o.TotalWeight, &o.WorkingHours,
		&o.ProductionDate, &o.OrderDate, &o.DeliveryDate, &o.ShippingAddress,
		&o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Order{}, fmt.Errorf("order %d: %w", id, application.ErrOrderNotFound)
	}
	if err != nil {
		return domain.Order{}, err
	}

	if err := r.loadLines(ctx, &o); err != nil {
		return domain.Order{}, err
	}
	if err := r.loadMixed(ctx, &o); err != nil {
		return domain.Order{}, err
	}
	return o, nil
}

func (r *Repository) loadLines(ctx context.Context, o *domain.Order) error {
	rows, err := r.tx.Query(ctx, `SELECT id, order_id, product_code, pallet_id, item_weight,
			price_per_kg, packaging, number_of_pallets, brand
		FROM order_items WHERE order_id=$1 ORDER BY id`, o.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var l domain.Line
		if err := rows.Scan(&l.ID, &l.OrderID, &l.ProductCode, &l.PalletID, &l.Weight,
			&l.PricePerKg, &l.Packaging, &l.PalletCount, &l.Brand); err != nil {
			return err
		}
		o.Lines = append(o.Lines, l)
	}
	return rows.Err()
}

func (r *Repository) loadMixed(ctx context.Context, o *domain.Order) error {
	var m domain.MixedLine
	err := r.tx.QueryRow(ctx,
		`SELECT id, pallet_id FROM mixed_order_items WHERE order_id=$1`, o.ID).
		Scan(&m.ID, &m.PalletID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil
	}
	if err != nil {
		return err
	}

	rows, err := r.tx.Query(ctx, `SELECT id, product_code, percentage, weight, price_per_kg, brand
		FROM mixed_order_item_details WHERE mixed_order_item_id=$1 ORDER BY id`, m.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var d domain.MixedDetail
		if err := rows.Scan(&d.ID, &d.ProductCode, &d.Percentage, &d.Weight, &d.PricePerKg, &d.Brand); err != nil {
			return err
		}
		m.Details = append(m.Details, d)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	o.Mixed = &m
	return nil
}

func (r *Repository) List(ctx context.Context) ([]domain.Order, error) {
	rows, err := r.tx.Query(ctx, `SELECT o.id FROM orders o ORDER BY o.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	orders := make([]domain.Order, 0, len(ids))
	for _, id := range ids {
		o, err := r.get(ctx, id, false)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, nil
}

func (r *Repository) UpdateStatus(ctx context.Context, id int64, s domain.Status) error {
	ct, err := r.tx.Exec(ctx,
		`UPDATE orders SET status=$2, updated_at=now() WHERE id=$1`, id, s)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("order %d: %w", id, application.ErrOrderNotFound)
	}
	return nil
}

func (r *Repository) UpdateTotals(ctx context.Context, id int64, totalPrice, totalWeight float64) error {
	_, err := r.tx.Exec(ctx,
		`UPDATE orders SET total_price=$2, total_weight=$3, updated_at=now() WHERE id=$1`,
		id, totalPrice, totalWeight)
	return err
}

func (r *Repository) LineForUpdate(ctx context.Context, lineID int64) (domain.Line, error) {
	var l domain.Line
	err := r.tx.QueryRow(ctx, `SELECT id, order_id, product_code, pallet_id, item_weight,
			price_per_kg, packaging, number_of_pallets, brand
		FROM order_items WHERE id=$1 FOR UPDATE`, lineID).
		Scan(&l.ID, &l.OrderID, &l.ProductCode, &l.PalletID, &l.Weight,
			&l.PricePerKg, &l.Packaging, &l.PalletCount, &l.Brand)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Line{}, fmt.Errorf("line %d: %w", lineID, application.ErrLineNotFound)
	}
	return l, err
}

func (r *Repository) UpdateLine(ctx context.Context, l domain.Line) error {
	_, err := r.tx.Exec(ctx, `UPDATE order_items
		SET product_code=$2, pallet_id=$3, item_weight=$4, price_per_kg=$5,
			packaging=$6, number_of_pallets=$7, brand=$8
		WHERE id=$1`,
		l.ID, l.ProductCode, l.PalletID, l.Weight, l.PricePerKg, l.Packaging, l.PalletCount, l.Brand)
	return err
}

func (r *Repository) DeleteLine(ctx context.Context, lineID int64) error {
	ct, err := r.tx.Exec(ctx, `DELETE FROM order_items WHERE id=$1`, lineID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("line %d: %w", lineID, application.ErrLineNotFound)
	}
	return nil
}
