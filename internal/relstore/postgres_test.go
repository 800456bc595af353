package relstore

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Afinucci/Design-Copilot-sub000/pkg/facility"
	"github.com/Afinucci/Design-Copilot-sub000/pkg/relations"
)

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *PostgresStore) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	return db, mock, NewPostgresStore(db)
}

func TestPostgresStore_Query_Success(t *testing.T) {
	db, mock, store := setupMockDB(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"relationship_type", "priority", "flow_type", "flow_direction", "reason"}).
		AddRow("MATERIAL_FLOW", 9, "", "unidirectional", "dispensing").
		AddRow("REQUIRES_ACCESS", 4, "personnel", "", "")

	mock.ExpectQuery(`SELECT relationship_type, priority`).
		WithArgs("raw material storage", "weighing room").
		WillReturnRows(rows)

	rules, err := store.Query(context.Background(), "Raw Material Storage", "Weighing Room")

	require.NoError(t, err)
	require.Len(t, rules, 2)
	assert.Equal(t, facility.MaterialFlow, rules[0].Type)
	assert.Equal(t, facility.Unidirectional, rules[0].FlowDirection)
	assert.Equal(t, "dispensing", rules[0].Reason)
	assert.Equal(t, facility.FlowPersonnel, rules[1].FlowType)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Query_Error(t *testing.T) {
	db, mock, store := setupMockDB(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT relationship_type`).
		WithArgs("a", "b").
		WillReturnError(errors.New("connection refused"))

	_, err := store.Query(context.Background(), "A", "B")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Import_Success(t *testing.T) {
	db, mock, store := setupMockDB(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM room_relationships`).WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(`INSERT INTO room_relationships`).
		WithArgs(sqlmock.AnyArg(), "gowning room", "aseptic filling", "PERSONNEL_FLOW", 8, "", "unidirectional", "gown first").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	n, err := store.Import(context.Background(), []relations.Rule{
		{FromType: "Gowning Room", ToType: "Aseptic Filling", Type: facility.PersonnelFlow, Priority: 8,
			FlowDirection: facility.Unidirectional, Reason: "gown first"},
	}, true)

	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Import_RollsBack(t *testing.T) {
	db, mock, store := setupMockDB(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO room_relationships`).WillReturnError(errors.New("duplicate key"))
	mock.ExpectRollback()

	_, err := store.Import(context.Background(), []relations.Rule{
		{FromType: "A", ToType: "B", Type: facility.MaterialFlow, Priority: 5},
	}, false)

	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Migrate(t *testing.T) {
	db, mock, store := setupMockDB(t)
	defer db.Close()

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS room_relationships`).WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, store.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
