package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmehra2102/order-fulfillment/pkg/outbox"
)

const schema = `
CREATE TABLE IF NOT EXISTS orders (
	id            TEXT           PRIMARY KEY,
	customer_name TEXT           NOT NULL,
	status        TEXT           NOT NULL,
	total_amount  NUMERIC(19,2)  NOT NULL DEFAULT 0,
	created_at    TIMESTAMPTZ    NOT NULL,
	updated_at    TIMESTAMPTZ    NOT NULL
);
CREATE TABLE IF NOT EXISTS order_line_items (
	id           TEXT          PRIMARY KEY,
	order_id     TEXT          NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
	position     INT           NOT NULL,
	product_id   TEXT          NOT NULL,
	product_name TEXT          NOT NULL,
	quantity     INT           NOT NULL CHECK (quantity > 0),
	unit_price   NUMERIC(19,2) NOT NULL
);
CREATE INDEX IF NOT EXISTS order_line_items_order_idx ON order_line_items (order_id, position);
`

func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return err
	}
	return outbox.Migrate(ctx, pool)
}
