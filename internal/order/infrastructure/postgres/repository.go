package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/dmehra2102/order-fulfillment/internal/order/domain"
	"github.com/dmehra2102/order-fulfillment/pkg/outbox"
	"github.com/dmehra2102/order-fulfillment/pkg/tracing"
)

type Repository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewRepository(log *slog.Logger, pool *pgxpool.Pool) *Repository {
	return &Repository{log: log, pool: pool}
}

func (r *Repository) Create(ctx context.Context, o domain.Order) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `INSERT INTO orders (id, customer_name, status, total_amount, created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6)`,
			o.ID, o.CustomerName, string(o.Status), o.TotalAmount.String(), o.CreatedAt, o.UpdatedAt)
		if err != nil {
			return err
		}
		return insertLineItems(ctx, tx, o)
	})
}

// Save rewrites the order row and its line items. Only a stored CREATED order
// can be saved; a terminal one yields ErrOrderTerminal. Reaching a terminal
// status also appends the matching integration event to the outbox.
func (r *Repository) Save(ctx context.Context, o domain.Order) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		ct, err := tx.Exec(ctx, `UPDATE orders SET customer_name=$2, status=$3, total_amount=$4, updated_at=$5
			WHERE id=$1 AND status=$6`,
			o.ID, o.CustomerName, string(o.Status), o.TotalAmount.String(), o.UpdatedAt, string(domain.StatusCreated))
		if err != nil {
			return err
		}
		if ct.RowsAffected() == 0 {
			return storedStatusError(ctx, tx, o.ID)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM order_line_items WHERE order_id=$1`, o.ID); err != nil {
			return err
		}
		if err := insertLineItems(ctx, tx, o); err != nil {
			return err
		}

		eventType, payload, ok := domain.TerminalEvent(o)
		if !ok {
			return nil
		}
		ev, err := outbox.NewEvent("order", o.ID, eventType, payload, tracing.Traceparent(ctx))
		if err != nil {
			return err
		}
		return outbox.Insert(ctx, tx, ev)
	})
}

func storedStatusError(ctx context.Context, tx pgx.Tx, id string) error {
	var status string
	err := tx.QueryRow(ctx, `SELECT status FROM orders WHERE id=$1`, id).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrOrderNotFound
	}
	if err != nil {
		return err
	}
	return fmt.Errorf("%w: order %s is already %s", domain.ErrOrderTerminal, id, status)
}

func (r *Repository) Get(ctx context.Context, id string) (domain.Order, error) {
	o, err := scanOrder(r.pool.QueryRow(ctx, selectOrder+` WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	if err != nil {
		return domain.Order{}, err
	}
	items, err := r.lineItems(ctx, []string{id})
	if err != nil {
		return domain.Order{}, err
	}
	o.LineItems = items[id]
	return o, nil
}

func (r *Repository) List(ctx context.Context) ([]domain.Order, error) {
	rows, err := r.pool.Query(ctx, selectOrder+` ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []domain.Order
	var ids []string
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return []domain.Order{}, nil
	}

	items, err := r.lineItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].LineItems = items[orders[i].ID]
	}
	return orders, nil
}

const selectOrder = `SELECT id, customer_name, status, total_amount::text, created_at, updated_at FROM orders`

func scanOrder(row pgx.Row) (domain.Order, error) {
	var o domain.Order
	var status, total string
	if err := row.Scan(&o.ID, &o.CustomerName, &status, &total, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return domain.Order{}, err
	}
	amount, err := decimal.NewFromString(total)
	if err != nil {
		return domain.Order{}, fmt.Errorf("order %s total: %w", o.ID, err)
	}
	o.Status = domain.OrderStatus(status)
	o.TotalAmount = amount
	return o, nil
}

func (r *Repository) lineItems(ctx context.Context, orderIDs []string) (map[string][]domain.LineItem, error) {
	rows, err := r.pool.Query(ctx, `SELECT order_id, id, product_id, product_name, quantity, unit_price::text
		FROM order_line_items WHERE order_id = ANY($1) ORDER BY order_id, position`, orderIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string][]domain.LineItem, len(orderIDs))
	for rows.Next() {
		var orderID, price string
		var li domain.LineItem
		if err := rows.Scan(&orderID, &li.ID, &li.ProductID, &li.ProductName, &li.Quantity, &price); err != nil {
			return nil, err
		}
		if li.UnitPrice, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("line item %s price: %w", li.ID, err)
		}
		out[orderID] = append(out[orderID], li)
	}
	return out, rows.Err()
}

func insertLineItems(ctx context.Context, tx pgx.Tx, o domain.Order) error {
	if len(o.LineItems) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for i, item := range o.LineItems {
		batch.Queue(`INSERT INTO order_line_items (id, order_id, position, product_id, product_name, quantity, unit_price)
			VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			item.ID, o.ID, i, item.ProductID, item.ProductName, item.Quantity, item.UnitPrice.String())
	}
	return tx.SendBatch(ctx, batch).Close()
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
