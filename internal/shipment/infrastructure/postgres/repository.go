package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/salaheddinesamid/agrisales-back/internal/shipment/domain"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx, so the same
// repository serves the order state machine (inside its transaction) and the
// shipment admin endpoints (straight off the pool).
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Repository struct {
	db querier
}

func NewRepository(db querier) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, s *domain.Shipment) error {
	return r.db.QueryRow(ctx,
		`INSERT INTO shipments (order_id) VALUES ($1) RETURNING id, created_at`,
		s.OrderID).Scan(&s.ID, &s.CreatedAt)
}

func (r *Repository) Get(ctx context.Context, id int64) (domain.Shipment, error) {
	var s domain.Shipment
	err := r.db.QueryRow(ctx,
		`SELECT id, order_id, tracking_number, tracking_url, created_at FROM shipments WHERE id=$1`, id).
		Scan(&s.ID, &s.OrderID, &s.TrackingNumber, &s.TrackingURL, &s.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Shipment{}, fmt.Errorf("shipment %d: %w", id, domain.ErrShipmentNotFound)
	}
	return s, err
}

func (r *Repository) List(ctx context.Context) ([]domain.Shipment, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, order_id, tracking_number, tracking_url, created_at FROM shipments ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var shipments []domain.Shipment
	for rows.Next() {
		var s domain.Shipment
		if err := rows.Scan(&s.ID, &s.OrderID, &s.TrackingNumber, &s.TrackingURL, &s.CreatedAt); err != nil {
			return nil, err
		}
		shipments = append(shipments, s)
	}
	return shipments, rows.Err()
}

func (r *Repository) UpdateTracker(ctx context.Context, id int64, trackingNumber, trackingURL string) error {
	ct, err := r.db.Exec(ctx,
		`UPDATE shipments SET tracking_number=$2, tracking_url=$3 WHERE id=$1`,
		id, trackingNumber, trackingURL)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("shipment %d: %w", id, domain.ErrShipmentNotFound)
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id int64) error {
	ct, err := r.db.Exec(ctx, `DELETE FROM shipments WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("shipment %d: %w", id, domain.ErrShipmentNotFound)
	}
	return nil
}
