package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmehra2102/order-fulfillment/internal/inventory/domain"
	"github.com/dmehra2102/order-fulfillment/pkg/outbox"
	"github.com/dmehra2102/order-fulfillment/pkg/tracing"
)

const aggregateType = "stock_item"

// Repository stores the ledger in Postgres. Item writes are conditional on
// the version column and every write appends its integration event to the
// outbox in the same transaction.
type Repository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewRepository(log *slog.Logger, pool *pgxpool.Pool) *Repository {
	return &Repository{
		log:  log,
		pool: pool,
	}
}

const selectItem = `SELECT id, product_id, quantity_available, quantity_reserved, version, updated_at FROM stock_items`

func (r *Repository) FindByProductID(ctx context.Context, productID string) (domain.StockItem, error) {
	return r.scanItem(r.pool.QueryRow(ctx, selectItem+` WHERE product_id=$1`, productID))
}

func (r *Repository) FindByID(ctx context.Context, id string) (domain.StockItem, error) {
	return r.scanItem(r.pool.QueryRow(ctx, selectItem+` WHERE id=$1`, id))
}

const selectReservation = `SELECT id, stock_item_id, order_id, product_id, quantity, status, created_at FROM reservations`

func (r *Repository) FindReservation(ctx context.Context, stockItemID, orderID string) (domain.Reservation, error) {
	return r.scanReservation(r.pool.QueryRow(ctx, selectReservation+` WHERE stock_item_id=$1 AND order_id=$2`, stockItemID, orderID))
}

func (r *Repository) GetReservation(ctx context.Context, id string) (domain.Reservation, error) {
	return r.scanReservation(r.pool.QueryRow(ctx, selectReservation+` WHERE id=$1`, id))
}

func (r *Repository) InsertStockItem(ctx context.Context, item domain.StockItem) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		ct, err := tx.Exec(ctx, `INSERT INTO stock_items (id, product_id, quantity_available, quantity_reserved, version, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6)
			ON CONFLICT (product_id) DO NOTHING`,
			item.ID, item.ProductID, item.QuantityAvailable, item.QuantityReserved, item.Version, item.UpdatedAt)
		if err != nil {
			return err
		}
		if ct.RowsAffected() == 0 {
			return domain.ErrVersionConflict
		}
		return r.appendEvent(ctx, tx, item.ProductID, domain.EventStockAdded, stockAdded(item))
	})
}

func (r *Repository) UpdateStockItem(ctx context.Context, item domain.StockItem, expectedVersion int64) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		if err := updateItem(ctx, tx, item, expectedVersion); err != nil {
			return err
		}
		return r.appendEvent(ctx, tx, item.ProductID, domain.EventStockAdded, stockAdded(item))
	})
}

func (r *Repository) InsertReservation(ctx context.Context, item domain.StockItem, expectedVersion int64, res domain.Reservation) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		if err := updateItem(ctx, tx, item, expectedVersion); err != nil {
			return err
		}
		ct, err := tx.Exec(ctx, `INSERT INTO reservations (id, stock_item_id, order_id, product_id, quantity, status, created_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7)
			ON CONFLICT (stock_item_id, order_id) DO NOTHING`,
			res.ID, res.StockItemID, res.OrderID, res.ProductID, res.Quantity, string(res.Status), res.CreatedAt)
		if err != nil {
			return err
		}
		if ct.RowsAffected() == 0 {
			return domain.ErrVersionConflict
		}
		return r.appendEvent(ctx, tx, item.ProductID, domain.EventStockReserved, domain.StockReserved{
			ReservationID: res.ID,
			OrderID:       res.OrderID,
			ProductID:     res.ProductID,
			Quantity:      res.Quantity,
			Available:     item.QuantityAvailable,
		})
	})
}

func (r *Repository) CancelReservation(ctx context.Context, item domain.StockItem, expectedVersion int64, res domain.Reservation) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		if err := updateItem(ctx, tx, item, expectedVersion); err != nil {
			return err
		}
		ct, err := tx.Exec(ctx, `UPDATE reservations SET status=$2
			WHERE id=$1 AND status IN ('PENDING','CONFIRMED')`, res.ID, string(res.Status))
		if err != nil {
			return err
		}
		if ct.RowsAffected() == 0 {
			return domain.ErrVersionConflict
		}
		return r.appendEvent(ctx, tx, item.ProductID, domain.EventReservationCancelled, res.Released(item.QuantityAvailable))
	})
}

func updateItem(ctx context.Context, tx pgx.Tx, item domain.StockItem, expectedVersion int64) error {
	ct, err := tx.Exec(ctx, `UPDATE stock_items
		SET quantity_available=$3, quantity_reserved=$4, version=$5, updated_at=$6
		WHERE id=$1 AND version=$2`,
		item.ID, expectedVersion, item.QuantityAvailable, item.QuantityReserved, item.Version, item.UpdatedAt)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrVersionConflict
	}
	return nil
}

func (r *Repository) appendEvent(ctx context.Context, tx pgx.Tx, aggregateID, eventType string, payload any) error {
	ev, err := outbox.NewEvent(aggregateType, aggregateID, eventType, payload, tracing.Traceparent(ctx))
	if err != nil {
		return err
	}
	return outbox.Insert(ctx, tx, ev)
}

func (r *Repository) inTx(ctx context.Context, fn func(pgx.Tx) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *Repository) scanItem(row pgx.Row) (domain.StockItem, error) {
	var it domain.StockItem
	err := row.Scan(&it.ID, &it.ProductID, &it.QuantityAvailable, &it.QuantityReserved, &it.Version, &it.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.StockItem{}, domain.ErrProductNotTracked
	}
	if err != nil {
		return domain.StockItem{}, fmt.Errorf("scan stock item: %w", err)
	}
	return it, nil
}

func (r *Repository) scanReservation(row pgx.Row) (domain.Reservation, error) {
	var res domain.Reservation
	var status string
	err := row.Scan(&res.ID, &res.StockItemID, &res.OrderID, &res.ProductID, &res.Quantity, &status, &res.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Reservation{}, domain.ErrReservationNotFound
	}
	if err != nil {
		return domain.Reservation{}, fmt.Errorf("scan reservation: %w", err)
	}
	res.Status = domain.ReservationStatus(status)
	return res, nil
}

func stockAdded(item domain.StockItem) domain.StockAdded {
	return domain.StockAdded{
		StockItemID: item.ID,
		ProductID:   item.ProductID,
		Available:   item.QuantityAvailable,
		Reserved:    item.QuantityReserved,
	}
}
