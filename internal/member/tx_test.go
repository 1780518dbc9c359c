package member_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/ignite/audience-hub/internal/member"
)

func TestRunInTxCommitsOnSuccess(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectCommit()

	called := false
	err = member.RunInTx(context.Background(), db, nil, func(tx *sql.Tx) error {
		called = true
		return nil
	})
	if err != nil {
		t.Errorf("RunInTx() error: %v", err)
	}
	if !called {
		t.Error("fn was not called")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestRunInTxRollsBackOnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectRollback()

	boom := errors.New("op failed")
	err = member.RunInTx(context.Background(), db, nil, func(tx *sql.Tx) error {
		return boom
	})
	if !errors.Is(err, boom) {
		t.Errorf("RunInTx() error = %v, want the op's error unchanged", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestRunInTxReusesExistingTx(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	// Exactly one Begin: the caller's. RunInTx must not open another.
	mock.ExpectBegin()
	mock.ExpectCommit()

	outer, err := db.Begin()
	if err != nil {
		t.Fatalf("begin: %v", err)
	}

	err = member.RunInTx(context.Background(), db, outer, func(tx *sql.Tx) error {
		if tx != outer {
			t.Error("fn did not receive the caller's transaction")
		}
		return nil
	})
	if err != nil {
		t.Errorf("RunInTx() error: %v", err)
	}

	// Commit stays with the caller.
	if err := outer.Commit(); err != nil {
		t.Errorf("commit: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestRunInTxErrorInExistingTxLeavesItOpen(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectRollback()

	outer, err := db.Begin()
	if err != nil {
		t.Fatalf("begin: %v", err)
	}

	boom := errors.New("op failed")
	err = member.RunInTx(context.Background(), db, outer, func(tx *sql.Tx) error {
		return boom
	})
	if !errors.Is(err, boom) {
		t.Errorf("RunInTx() error = %v, want %v", err, boom)
	}

	// Rollback is the caller's call to make.
	if err := outer.Rollback(); err != nil {
		t.Errorf("rollback: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestRunInTxRollbackFailureIsTxFailed(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectRollback().WillReturnError(errors.New("connection lost"))

	boom := errors.New("op failed")
	err = member.RunInTx(context.Background(), db, nil, func(tx *sql.Tx) error {
		return boom
	})
	if !errors.Is(err, member.ErrTxFailed) {
		t.Errorf("RunInTx() error = %v, want ErrTxFailed", err)
	}
	// The original cause stays matchable through the wrap.
	if !errors.Is(err, boom) {
		t.Errorf("RunInTx() error = %v, want the op's error still wrapped", err)
	}
}

func TestRunInTxCommitFailureIsTxFailed(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectCommit().WillReturnError(errors.New("connection lost"))

	err = member.RunInTx(context.Background(), db, nil, func(tx *sql.Tx) error {
		return nil
	})
	if !errors.Is(err, member.ErrTxFailed) {
		t.Errorf("RunInTx() error = %v, want ErrTxFailed", err)
	}
}
