package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	catalogpg "github.com/salaheddinesamid/agrisales-back/internal/catalog/infrastructure/postgres"
	inventorypg "github.com/salaheddinesamid/agrisales-back/internal/inventory/infrastructure/postgres"
	"github.com/salaheddinesamid/agrisales-back/internal/order/application"
	shipmentpg "github.com/salaheddinesamid/agrisales-back/internal/shipment/infrastructure/postgres"
)

// UnitOfWork opens one transaction per order operation and hands out
// repositories bound to it. Row locks taken inside the closure are held until
// commit or rollback, which is what makes reserve/release safe under
// concurrent callers.
type UnitOfWork struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewUnitOfWork(log *slog.Logger, pool *pgxpool.Pool) *UnitOfWork {
	return &UnitOfWork{log: log, pool: pool}
}

func (u *UnitOfWork) Do(ctx context.Context, fn func(tx application.Tx) error) error {
	pgxTx, err := u.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = pgxTx.Rollback(ctx)
	}()

	if err := fn(&txBundle{tx: pgxTx}); err != nil {
		return mapConflict(err)
	}
	return mapConflict(pgxTx.Commit(ctx))
}

// mapConflict turns deadlock and serialization failures into the retryable
// conflict error; everything else passes through unchanged.
func mapConflict(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01":
			return fmt.Errorf("%w: %v", application.ErrTransactionConflict, err)
		}
	}
	return err
}

type txBundle struct {
	tx pgx.Tx
}

func (t *txBundle) Clients() application.ClientRepository {
	return catalogpg.NewRepository(t.tx)
}

func (t *txBundle) Catalog() application.CatalogRepository {
	return catalogpg.NewRepository(t.tx)
}

func (t *txBundle) Inventory() application.Ledger {
	return inventorypg.NewLedger(t.tx)
}

func (t *txBundle) Orders() application.OrderRepository {
	return NewRepository(t.tx)
}

func (t *txBundle) Histories() application.HistoryRepository {
	return NewHistoryRepository(t.tx)
}

func (t *txBundle) Shipments() application.ShipmentRepository {
	return shipmentpg.NewRepository(t.tx)
}

func (t *txBundle) Outbox() application.OutboxEnqueuer {
	return NewEnqueuer(t.tx)
}
