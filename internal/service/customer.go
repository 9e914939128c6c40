package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/nilsb/holtab-provisioner/internal/model"
)

var ErrCustomerNotFound = errors.New("customer not found")

const customerColumns = `id, external_id, type, name, group_id, drive_id, general_folder_id,
		group_created, general_folder_created, copied_root_structure,
		column_additional_info, column_kundnummer, column_navid, column_produktionsdokument,
		seller, project_manager, created_at`

type CustomerService struct {
	db *sql.DB
}

func NewCustomerService(db *sql.DB) *CustomerService {
	return &CustomerService{db: db}
}

// Resolve looks a customer up by its dedup key (external id + type). Supplier
// records may exist more than once; the most recently created wins.
func (s *CustomerService) Resolve(ctx context.Context, externalID, customerType string) (*model.Customer, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+customerColumns+`
		FROM customers
		WHERE external_id = $1 AND type = $2
		ORDER BY created_at DESC
		LIMIT 1
	`, externalID, customerType)

	c, err := scanCustomer(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("resolve customer: %w", err)
	}
	return c, nil
}

// Upsert applies a customer-info event: updates the newest matching record or
// creates one when none exists.
func (s *CustomerService) Upsert(ctx context.Context, m model.CustomerInfoMessage) (*model.Customer, error) {
	c, err := s.Resolve(ctx, m.CustomerNo, m.Type)
	if err != nil {
		if !errors.Is(err, ErrCustomerNotFound) {
			return nil, err
		}
		return s.create(ctx, m)
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE customers
		SET name = $1,
		    seller = CASE WHEN $2 <> '' THEN $2 ELSE seller END,
		    project_manager = CASE WHEN $3 <> '' THEN $3 ELSE project_manager END
		WHERE id = $4
	`, m.CustomerName, m.Seller, m.ProjectManager, c.ID)
	if err != nil {
		return nil, fmt.Errorf("update customer: %w", err)
	}

	c.Name = m.CustomerName
	if m.Seller != "" {
		c.Seller = m.Seller
	}
	if m.ProjectManager != "" {
		c.ProjectManager = m.ProjectManager
	}
	return c, nil
}

func (s *CustomerService) create(ctx context.Context, m model.CustomerInfoMessage) (*model.Customer, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO customers (external_id, type, name, seller, project_manager)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+customerColumns+`
	`, m.CustomerNo, m.Type, m.CustomerName, m.Seller, m.ProjectManager)

	c, err := scanCustomer(row)
	if err != nil {
		return nil, fmt.Errorf("insert customer: %w", err)
	}
	return c, nil
}

// SaveProgress persists resolved ids and completion flags. The SQL keeps both
// monotonic: a non-empty id is never replaced and a true flag never reset,
// whatever the in-memory record says.
func (s *CustomerService) SaveProgress(ctx context.Context, c *model.Customer) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE customers
		SET group_id = CASE WHEN group_id <> '' THEN group_id ELSE $1 END,
		    drive_id = CASE WHEN drive_id <> '' THEN drive_id ELSE $2 END,
		    general_folder_id = CASE WHEN general_folder_id <> '' THEN general_folder_id ELSE $3 END,
		    group_created = group_created OR $4,
		    general_folder_created = general_folder_created OR $5,
		    copied_root_structure = copied_root_structure OR $6,
		    column_additional_info = column_additional_info OR $7,
		    column_kundnummer = column_kundnummer OR $8,
		    column_navid = column_navid OR $9,
		    column_produktionsdokument = column_produktionsdokument OR $10
		WHERE id = $11
	`, c.GroupID, c.DriveID, c.GeneralFolderID,
		c.GroupCreated, c.GeneralFolderCreated, c.CopiedRootStructure,
		c.ColumnAdditionalInfo, c.ColumnKundnummer, c.ColumnNAVid, c.ColumnProduktionsdokument,
		c.ID)
	if err != nil {
		return fmt.Errorf("save customer progress: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCustomer(row rowScanner) (*model.Customer, error) {
	var c model.Customer
	err := row.Scan(
		&c.ID, &c.ExternalID, &c.Type, &c.Name,
		&c.GroupID, &c.DriveID, &c.GeneralFolderID,
		&c.GroupCreated, &c.GeneralFolderCreated, &c.CopiedRootStructure,
		&c.ColumnAdditionalInfo, &c.ColumnKundnummer, &c.ColumnNAVid, &c.ColumnProduktionsdokument,
		&c.Seller, &c.ProjectManager, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
