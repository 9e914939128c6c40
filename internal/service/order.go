package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/nilsb/holtab-provisioner/internal/model"
)

const orderColumns = `id, no, customer_no, type, queue_count, additional_info,
		seller, project_manager, title, filename, sender, handled, created_at`

type OrderService struct {
	db *sql.DB
}

func NewOrderService(db *sql.DB) *OrderService {
	return &OrderService{db: db}
}

// Upsert applies an order-info event: metadata for an existing order record is
// refreshed, otherwise a new record is created.
func (s *OrderService) Upsert(ctx context.Context, m model.OrderInfoMessage) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE orders
		SET customer_no = $1,
		    type = CASE WHEN $2 <> '' THEN $2 ELSE type END,
		    additional_info = CASE WHEN $3 <> '' THEN $3 ELSE additional_info END,
		    seller = CASE WHEN $4 <> '' THEN $4 ELSE seller END,
		    project_manager = CASE WHEN $5 <> '' THEN $5 ELSE project_manager END
		WHERE no = $6
	`, m.CustomerNo, m.Type, m.AdditionalInfo, m.Seller, m.ProjectManager, m.No)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	if affected > 0 {
		return nil
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO orders (no, customer_no, type, additional_info, seller, project_manager, handled)
		VALUES ($1, $2, $3, $4, $5, $6, TRUE)
	`, m.No, m.CustomerNo, m.Type, m.AdditionalInfo, m.Seller, m.ProjectManager)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

// EnsureFromEmail returns the unhandled order record for an email event,
// creating one on the first unresolved delivery. Records created here start
// with a zero queue count so the sweep picks them up.
func (s *OrderService) EnsureFromEmail(ctx context.Context, no, customerNo, title, filename, sender string) (*model.Order, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE no = $1 AND customer_no = $2 AND NOT handled
		ORDER BY created_at DESC
		LIMIT 1
	`, no, customerNo)

	o, err := scanOrder(row)
	if err == nil {
		return o, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("find order: %w", err)
	}

	row = s.db.QueryRowContext(ctx, `
		INSERT INTO orders (no, customer_no, title, filename, sender)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+orderColumns+`
	`, no, customerNo, title, filename, sender)

	o, err = scanOrder(row)
	if err != nil {
		return nil, fmt.Errorf("insert order: %w", err)
	}
	return o, nil
}

// Unhandled returns orders still waiting for their documents, oldest first.
// Orders at or past the retry cap are abandoned and never returned.
func (s *OrderService) Unhandled(ctx context.Context, limit, retryCap int) ([]model.Order, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE NOT handled AND queue_count < $1
		ORDER BY created_at ASC
		LIMIT $2
	`, retryCap, limit)
	if err != nil {
		return nil, fmt.Errorf("query unhandled orders: %w", err)
	}
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, *o)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}
	return orders, nil
}

func (s *OrderService) IncrementQueue(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE orders SET queue_count = queue_count + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("increment queue count: %w", err)
	}
	return nil
}

func (s *OrderService) MarkHandled(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE orders SET handled = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("mark order handled: %w", err)
	}
	return nil
}

func scanOrder(row rowScanner) (*model.Order, error) {
	var o model.Order
	err := row.Scan(
		&o.ID, &o.No, &o.CustomerNo, &o.Type, &o.QueueCount, &o.AdditionalInfo,
		&o.Seller, &o.ProjectManager, &o.Title, &o.Filename, &o.Sender, &o.Handled, &o.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}
