package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nilsb/holtab-provisioner/internal/model"
)

func TestResolvePicksNewestRecord(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	// Supplier numbers can exist more than once; the query orders newest
	// first and limits to one, so a single row comes back.
	mock.ExpectQuery(`ORDER BY created_at DESC\s+LIMIT 1`).
		WithArgs("54321", model.TypeSupplier).
		WillReturnRows(customerRow(&model.Customer{ID: "c2", ExternalID: "54321", Type: model.TypeSupplier, Name: "Parts AB"}))

	c, err := NewCustomerService(db).Resolve(context.Background(), "54321", model.TypeSupplier)

	require.NoError(t, err)
	assert.Equal(t, "c2", c.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResolveNotFound(t *testing.T) {
	db, mock := newTestDB(t)
	mock.ExpectQuery("FROM customers").
		WithArgs("99999", model.TypeCustomer).
		WillReturnError(sql.ErrNoRows)

	_, err := NewCustomerService(db).Resolve(context.Background(), "99999", model.TypeCustomer)

	assert.True(t, errors.Is(err, ErrCustomerNotFound))
}

func TestUpsertCreatesMissingCustomer(t *testing.T) {
	db, mock := newTestDB(t)
	mock.ExpectQuery("FROM customers").
		WithArgs("123456", model.TypeCustomer).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery("INSERT INTO customers").
		WithArgs("123456", model.TypeCustomer, "Acme AB", "seller@example.com", "").
		WillReturnRows(customerRow(&model.Customer{
			ID: "c1", ExternalID: "123456", Type: model.TypeCustomer, Name: "Acme AB", Seller: "seller@example.com",
		}))

	c, err := NewCustomerService(db).Upsert(context.Background(), model.CustomerInfoMessage{
		CustomerNo:   "123456",
		CustomerName: "Acme AB",
		Type:         model.TypeCustomer,
		Seller:       "seller@example.com",
	})

	require.NoError(t, err)
	assert.Equal(t, "c1", c.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertUpdatesExistingCustomer(t *testing.T) {
	db, mock := newTestDB(t)
	expectResolve(mock, &model.Customer{ID: "c1", ExternalID: "123456", Type: model.TypeCustomer, Name: "Acme"})
	mock.ExpectExec("UPDATE customers").
		WithArgs("Acme AB", "", "pm@example.com", "c1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	c, err := NewCustomerService(db).Upsert(context.Background(), model.CustomerInfoMessage{
		CustomerNo:     "123456",
		CustomerName:   "Acme AB",
		Type:           model.TypeCustomer,
		ProjectManager: "pm@example.com",
	})

	require.NoError(t, err)
	assert.Equal(t, "Acme AB", c.Name)
	assert.Equal(t, "pm@example.com", c.ProjectManager)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveProgressKeepsIDsAndFlagsMonotonic(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	// The statement itself guards the invariants: ids only fill empty
	// columns and flags only OR in, so a stale in-memory record can never
	// clear persisted progress.
	mock.ExpectExec(`(?s)CASE WHEN group_id <> '' THEN group_id ELSE \$1 END.*group_created = group_created OR \$4`).
		WithArgs("", "", "", false, false, false, false, false, false, false, "c1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	stale := &model.Customer{ID: "c1"}
	require.NoError(t, NewCustomerService(db).SaveProgress(context.Background(), stale))
	assert.NoError(t, mock.ExpectationsWereMet())
}
