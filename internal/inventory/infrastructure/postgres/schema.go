package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmehra2102/order-fulfillment/pkg/outbox"
)

const schema = `
CREATE TABLE IF NOT EXISTS stock_items (
	id                 TEXT        PRIMARY KEY,
	product_id         TEXT        NOT NULL UNIQUE,
	quantity_available INT         NOT NULL CHECK (quantity_available >= 0),
	quantity_reserved  INT         NOT NULL CHECK (quantity_reserved >= 0),
	version            BIGINT      NOT NULL,
	updated_at         TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS reservations (
	id            TEXT        PRIMARY KEY,
	stock_item_id TEXT        NOT NULL REFERENCES stock_items(id),
	order_id      TEXT        NOT NULL,
	product_id    TEXT        NOT NULL,
	quantity      INT         NOT NULL CHECK (quantity > 0),
	status        TEXT        NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL,
	UNIQUE (stock_item_id, order_id)
);
`

func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return err
	}
	return outbox.Migrate(ctx, pool)
}
