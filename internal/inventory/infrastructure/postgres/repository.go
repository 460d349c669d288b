package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	catalogdom "github.com/salaheddinesamid/agrisales-back/internal/catalog/domain"
	"github.com/salaheddinesamid/agrisales-back/internal/inventory/domain"
)

// Ledger performs check-and-decrement stock accounting inside the caller's
// transaction. Reserve locks the product row first, so the stock read and the
// decrement cannot interleave with a concurrent reservation.
type Ledger struct {
	tx pgx.Tx
}

func NewLedger(tx pgx.Tx) *Ledger {
	return &Ledger{tx: tx}
}

func (l *Ledger) Reserve(ctx context.Context, productCode string, weight float64) error {
	var available float64
	err := l.tx.QueryRow(ctx,
		`SELECT available_weight FROM products WHERE product_code=$1 FOR UPDATE`,
		productCode).Scan(&available)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("product %s: %w", productCode, catalogdom.ErrProductNotFound)
	}
	if err != nil {
		return err
	}
	if available < weight {
		return fmt.Errorf("product %s has %.1fkg, requested %.1fkg: %w",
			productCode, available, weight, domain.ErrProductLowStock)
	}

	_, err = l.tx.Exec(ctx,
		`UPDATE products SET available_weight = available_weight - $2 WHERE product_code=$1`,
		productCode, weight)
	return err
}

func (l *Ledger) Release(ctx context.Context, productCode string, weight float64) error {
	ct, err := l.tx.Exec(ctx,
		`UPDATE products SET available_weight = available_weight + $2 WHERE product_code=$1`,
		productCode, weight)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("product %s: %w", productCode, catalogdom.ErrProductNotFound)
	}
	return nil
}

// StockReader lists current stock levels outside any order transaction; it
// reads without locks.
type StockReader struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewStockReader(log *slog.Logger, pool *pgxpool.Pool) *StockReader {
	return &StockReader{log: log, pool: pool}
}

func (r *StockReader) ListStock(ctx context.Context) ([]domain.StockLevel, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT product_code, calibre, quality, farm, available_weight FROM products ORDER BY product_code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var levels []domain.StockLevel
	for rows.Next() {
		var s domain.StockLevel
		if err := rows.Scan(&s.ProductCode, &s.Calibre, &s.Quality, &s.Farm, &s.AvailableWeight); err != nil {
			return nil, err
		}
		levels = append(levels, s)
	}
	return levels, rows.Err()
}
