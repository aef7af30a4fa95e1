// internal/session/sql_test.go
//
// Unit-tests for the sqlx-backed session store using sqlmock.
//
// Run: go test ./internal/session -v

package session

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
)

func newMockStore(t *testing.T) (*SQLStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewSQLStore(sqlx.NewDb(db, "sqlmock"), time.Hour), mock
}

func TestSQLStore_Find(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT data, expires_at FROM session WHERE id = ? AND expires_at > NOW()`,
	)).
		WithArgs("abc").
		WillReturnRows(sqlmock.NewRows([]string{"data", "expires_at"}).
			AddRow([]byte(`{"user":"ada"}`), time.Now().Add(time.Hour)))

	s, err := store.Find(context.Background(), "abc")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if v, _ := s.Value("user"); v != "ada" {
		t.Fatalf("value = %v, want ada", v)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestSQLStore_Find_NotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT data, expires_at FROM session WHERE id = ? AND expires_at > NOW()`,
	)).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"data", "expires_at"}))

	if _, err := store.Find(context.Background(), "missing"); err != ErrNotFound {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestSQLStore_Save(t *testing.T) {
	store, mock := newMockStore(t)

	s := New()
	s.SetValue("user", "ada")

	mock.ExpectExec(regexp.QuoteMeta(
		`INSERT INTO session (id, data, expires_at) VALUES (?, ?, ?)
		 ON DUPLICATE KEY UPDATE data = VALUES(data), expires_at = VALUES(expires_at)`,
	)).
		WithArgs(s.ID, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := store.Save(context.Background(), s); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestSQLStore_Delete(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM session WHERE id = ?`)).
		WithArgs("abc").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := store.Delete(context.Background(), "abc"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
}

func TestSQLStore_Purge(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM session WHERE expires_at <= NOW()`)).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := store.Purge(context.Background())
	if err != nil || n != 3 {
		t.Fatalf("Purge = (%d, %v), want (3, nil)", n, err)
	}
}
