package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS clients (
	id SERIAL PRIMARY KEY,
	company_name TEXT NOT NULL UNIQUE,
	general_manager TEXT NOT NULL DEFAULT '',
	company_activity TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL DEFAULT 'ACTIVE'
);

CREATE TABLE IF NOT EXISTS products (
	id BIGSERIAL PRIMARY KEY,
	product_code TEXT NOT NULL UNIQUE,
	calibre TEXT NOT NULL DEFAULT '',
	quality TEXT NOT NULL DEFAULT '',
	farm TEXT NOT NULL DEFAULT '',
	available_weight DOUBLE PRECISION NOT NULL CHECK (available_weight >= 0)
);

CREATE TABLE IF NOT EXISTS pallets (
	id SERIAL PRIMARY KEY,
	total_net_weight DOUBLE PRECISION NOT NULL,
	preparation_time_hours DOUBLE PRECISION NOT NULL,
	packaging DOUBLE PRECISION NOT NULL DEFAULT 0,
	boxes_per_pallet INT NOT NULL DEFAULT 0,
	production_cost DOUBLE PRECISION NOT NULL DEFAULT 0,
	labor_cost DOUBLE PRECISION NOT NULL DEFAULT 0,
	packaging_cost DOUBLE PRECISION NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS orders (
	id BIGSERIAL PRIMARY KEY,
	client_id INT NOT NULL REFERENCES clients(id),
	currency TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL,
	total_price DOUBLE PRECISION NOT NULL DEFAULT 0,
	total_weight DOUBLE PRECISION NOT NULL DEFAULT 0,
	working_hours DOUBLE PRECISION NOT NULL DEFAULT 0,
	production_date TIMESTAMPTZ NOT NULL,
	order_date TIMESTAMPTZ NOT NULL,
	delivery_date TIMESTAMPTZ NOT NULL,
	shipping_address TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS order_items (
	id BIGSERIAL PRIMARY KEY,
	order_id BIGINT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
	product_code TEXT NOT NULL REFERENCES products(product_code),
	pallet_id INT NOT NULL REFERENCES pallets(id),
	item_weight DOUBLE PRECISION NOT NULL,
	price_per_kg DOUBLE PRECISION NOT NULL,
	packaging DOUBLE PRECISION NOT NULL DEFAULT 0,
	number_of_pallets INT NOT NULL DEFAULT 0,
	brand TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS mixed_order_items (
	id BIGSERIAL PRIMARY KEY,
	order_id BIGINT NOT NULL UNIQUE REFERENCES orders(id) ON DELETE CASCADE,
	pallet_id INT NOT NULL REFERENCES pallets(id)
);

CREATE TABLE IF NOT EXISTS mixed_order_item_details (
	id BIGSERIAL PRIMARY KEY,
	mixed_order_item_id BIGINT NOT NULL REFERENCES mixed_order_items(id) ON DELETE CASCADE,
	product_code TEXT NOT NULL REFERENCES products(product_code),
	percentage DOUBLE PRECISION NOT NULL,
	weight DOUBLE PRECISION NOT NULL,
	price_per_kg DOUBLE PRECISION NOT NULL DEFAULT 0,
	brand TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS order_history (
	id BIGSERIAL PRIMARY KEY,
	order_id BIGINT NOT NULL UNIQUE REFERENCES orders(id) ON DELETE CASCADE,
	confirmed_at TIMESTAMPTZ,
	preferred_production_date TIMESTAMPTZ,
	ready_to_ship_at TIMESTAMPTZ,
	shipped_at TIMESTAMPTZ,
	received_at TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS shipments (
	id BIGSERIAL PRIMARY KEY,
	order_id BIGINT NOT NULL UNIQUE REFERENCES orders(id) ON DELETE CASCADE,
	tracking_number TEXT NOT NULL DEFAULT '',
	tracking_url TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS outbox (
	id BIGSERIAL PRIMARY KEY,
	aggregate_type TEXT NOT NULL,
	aggregate_id TEXT NOT NULL,
	type TEXT NOT NULL,
	payload BYTEA NOT NULL,
	traceparent TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL DEFAULT 'pending',
	relay_id TEXT,
	lease_until TIMESTAMPTZ,
	retry_count INT NOT NULL DEFAULT 0,
	last_error TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// EnsureSchema creates the tables on startup if they do not exist yet.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, schema)
	return err
}
