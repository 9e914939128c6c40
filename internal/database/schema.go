package database

import (
	"database/sql"
	"fmt"
)

const schemaSQL = `
CREATE EXTENSION IF NOT EXISTS "uuid-ossp";

CREATE TABLE IF NOT EXISTS customers (
    id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
    external_id TEXT NOT NULL,
    type TEXT NOT NULL,
    name TEXT NOT NULL,
    group_id TEXT NOT NULL DEFAULT '',
    drive_id TEXT NOT NULL DEFAULT '',
    general_folder_id TEXT NOT NULL DEFAULT '',
    group_created BOOLEAN NOT NULL DEFAULT FALSE,
    general_folder_created BOOLEAN NOT NULL DEFAULT FALSE,
    copied_root_structure BOOLEAN NOT NULL DEFAULT FALSE,
    column_additional_info BOOLEAN NOT NULL DEFAULT FALSE,
    column_kundnummer BOOLEAN NOT NULL DEFAULT FALSE,
    column_navid BOOLEAN NOT NULL DEFAULT FALSE,
    column_produktionsdokument BOOLEAN NOT NULL DEFAULT FALSE,
    seller TEXT NOT NULL DEFAULT '',
    project_manager TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS orders (
    id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
    no TEXT NOT NULL DEFAULT '',
    customer_no TEXT NOT NULL DEFAULT '',
    type TEXT NOT NULL DEFAULT '',
    queue_count INTEGER NOT NULL DEFAULT 0,
    additional_info TEXT NOT NULL DEFAULT '',
    seller TEXT NOT NULL DEFAULT '',
    project_manager TEXT NOT NULL DEFAULT '',
    title TEXT NOT NULL DEFAULT '',
    filename TEXT NOT NULL DEFAULT '',
    sender TEXT NOT NULL DEFAULT '',
    handled BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMPTZ DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_customers_external_id_type ON customers(external_id, type);
CREATE INDEX IF NOT EXISTS idx_orders_no ON orders(no);
CREATE INDEX IF NOT EXISTS idx_orders_handled ON orders(handled, queue_count);
`

func InitSchema(db *sql.DB) error {
	_, err := db.Exec(schemaSQL)
	if err != nil {
		return fmt.Errorf("failed to init schema: %w", err)
	}
	return nil
}
