package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/salaheddinesamid/agrisales-back/internal/order/application"
	"github.com/salaheddinesamid/agrisales-back/internal/order/domain"
)

type HistoryRepository struct {
	tx pgx.Tx
}

func NewHistoryRepository(tx pgx.Tx) *HistoryRepository {
	return &HistoryRepository{tx: tx}
}

func (r *HistoryRepository) Create(ctx context.Context, orderID int64) error {
	_, err := r.tx.Exec(ctx, `INSERT INTO order_history (order_id) VALUES ($1)`, orderID)
	return err
}

func (r *HistoryRepository) ByOrder(ctx context.Context, orderID int64) (domain.History, error) {
	var h domain.History
	err := r.tx.QueryRow(ctx, `SELECT id, order_id, confirmed_at, preferred_production_date,
			ready_to_ship_at, shipped_at, received_at
		FROM order_history WHERE order_id=$1`, orderID).
		Scan(&h.ID, &h.OrderID, &h.ConfirmedAt, &h.PreferredProductionDate,
			&h.ReadyToShipAt, &h.ShippedAt, &h.ReceivedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.History{}, fmt.Errorf("history for order %d: %w", orderID, application.ErrOrderNotFound)
	}
	return h, err
}

func (r *HistoryRepository) Update(ctx context.Context, h domain.History) error {
	_, err := r.tx.Exec(ctx, `UPDATE order_history
		SET confirmed_at=$2, preferred_production_date=$3, ready_to_ship_at=$4, shipped_at=$5, received_at=$6
		WHERE id=$1`,
		h.ID, h.ConfirmedAt, h.PreferredProductionDate, h.ReadyToShipAt, h.ShippedAt, h.ReceivedAt)
	return err
}

func (r *HistoryRepository) ListOpen(ctx context.Context) ([]domain.History, error) {
	rows, err := r.tx.Query(ctx, `SELECT id, order_id, confirmed_at, preferred_production_date,
			ready_to_ship_at, shipped_at, received_at
		FROM order_history WHERE received_at IS NULL ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hs []domain.History
	for rows.Next() {
		var h domain.History
		if err := rows.Scan(&h.ID, &h.OrderID, &h.ConfirmedAt, &h.PreferredProductionDate,
			&h.ReadyToShipAt, &h.ShippedAt, &h.ReceivedAt); err != nil {
			return nil, err
		}
		hs = append(hs, h)
	}
	return hs, rows.Err()
}
