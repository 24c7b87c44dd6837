package dbopen

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"
)

const testSchema = `CREATE TABLE IF NOT EXISTS notes (
	id   INTEGER PRIMARY KEY,
	body TEXT NOT NULL
);`

func TestOpen_Pragmas(t *testing.T) {
	// WHAT: Open applies foreign_keys and WAL on a file database.
	// WHY: The schema relies on ON DELETE CASCADE, and WAL is what
	// lets reads proceed during imports.
	db, err := Open(filepath.Join(t.TempDir(), "t.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	var fk int
	if err := db.QueryRow("PRAGMA foreign_keys").Scan(&fk); err != nil || fk != 1 {
		t.Errorf("foreign_keys: got %d, err %v", fk, err)
	}
	var mode string
	if err := db.QueryRow("PRAGMA journal_mode").Scan(&mode); err != nil || mode != "wal" {
		t.Errorf("journal_mode: got %q, err %v", mode, err)
	}
}

func TestOpen_WithSchema(t *testing.T) {
	// WHAT: A queued schema is executed before Open returns, on the
	// same in-memory database later queries see.
	db := OpenMemory(t, WithSchema(testSchema))
	if _, err := db.Exec(`INSERT INTO notes (body) VALUES ('привет')`); err != nil {
		t.Fatalf("insert into schema table: %v", err)
	}
	var body string
	if err := db.QueryRow(`SELECT body FROM notes`).Scan(&body); err != nil || body != "привет" {
		t.Errorf("got %q, err %v", body, err)
	}
}

func TestOpen_WithMkdirAll(t *testing.T) {
	// WHAT: WithMkdirAll creates missing parent directories; without
	// it Open fails on a missing path.
	nested := filepath.Join(t.TempDir(), "a", "b", "t.db")
	if _, err := Open(nested); err == nil {
		t.Error("expected error without WithMkdirAll")
	}
	db, err := Open(nested, WithMkdirAll())
	if err != nil {
		t.Fatalf("open with mkdir: %v", err)
	}
	db.Close()
}

func TestRunTx_Commit(t *testing.T) {
	db := OpenMemory(t, WithSchema(testSchema))
	err := RunTx(context.Background(), db, func(tx *sql.Tx) error {
		_, err := tx.Exec(`INSERT INTO notes (body) VALUES ('один'), ('два')`)
		return err
	})
	if err != nil {
		t.Fatalf("RunTx: %v", err)
	}
	var n int
	db.QueryRow(`SELECT COUNT(*) FROM notes`).Scan(&n)
	if n != 2 {
		t.Errorf("count: got %d, want 2", n)
	}
}

func TestRunTx_RollbackOnError(t *testing.T) {
	// WHAT: An error from fn rolls back everything fn wrote.
	// WHY: Batch writers count on all-or-nothing semantics.
	db := OpenMemory(t, WithSchema(testSchema))
	boom := errors.New("boom")
	err := RunTx(context.Background(), db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`INSERT INTO notes (body) VALUES ('сирота')`); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected fn error back, got %v", err)
	}
	var n int
	db.QueryRow(`SELECT COUNT(*) FROM notes`).Scan(&n)
	if n != 0 {
		t.Errorf("rollback left %d rows", n)
	}
}

func TestExec(t *testing.T) {
	db := OpenMemory(t, WithSchema(testSchema))
	res, err := Exec(context.Background(), db, `INSERT INTO notes (body) VALUES (?)`, "x")
	if err != nil {
		t.Fatalf("Exec: %v", err)
	}
	if n, _ := res.RowsAffected(); n != 1 {
		t.Errorf("rows affected: got %d, want 1", n)
	}
}

func TestIsBusy(t *testing.T) {
	// WHAT: Only SQLite BUSY conditions classify as retryable.
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New("SQLITE_BUSY: database is locked (5)"), true},
		{errors.New("database is locked"), true},
		{errors.New("database table is locked"), true},
		{errors.New("UNIQUE constraint failed: notes.id"), false},
		{context.Canceled, false},
	}
	for _, tt := range tests {
		if got := IsBusy(tt.err); got != tt.want {
			t.Errorf("IsBusy(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}
