package remote

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"

	"github.com/AnshRaj112/catchlog-backend/internal/models"
)

func newMock(t *testing.T) (*Postgres, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
		db.Close()
	})
	return NewPostgres(db), mock
}

func testSpot() *models.Spot {
	return &models.Spot{
		ID:        "s1",
		Name:      "Lake",
		Type:      "lake",
		Location:  &models.Location{Lat: 52.1, Lng: 21.0},
		WaterType: models.WaterFresh,
		FishTypes: []string{"pike"},
		CreatedAt: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		CreatedBy: "alice",
	}
}

func TestUpsertSpot_Ownership(t *testing.T) {
	ctx := context.Background()

	t.Run("owner", func(t *testing.T) {
		p, mock := newMock(t)
		mock.ExpectExec("INSERT INTO spots").WillReturnResult(sqlmock.NewResult(0, 1))
		if err := p.UpsertSpot(ctx, "alice", testSpot()); err != nil {
			t.Fatalf("expected success, got %v", err)
		}
	})

	t.Run("conflict with another owner", func(t *testing.T) {
		p, mock := newMock(t)
		mock.ExpectExec("WHERE spots.created_by = EXCLUDED.created_by").WillReturnResult(sqlmock.NewResult(0, 0))
		if err := p.UpsertSpot(ctx, "bob", testSpot()); !errors.Is(err, ErrNotOwner) {
			t.Fatalf("expected ErrNotOwner, got %v", err)
		}
	})
}

func TestDeleteSpot_Ownership(t *testing.T) {
	ctx := context.Background()

	t.Run("owner", func(t *testing.T) {
		p, mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM spots").WithArgs("s1", "alice").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("DELETE FROM favorites").WithArgs("s1").WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectCommit()
		if err := p.DeleteSpot(ctx, "alice", "s1"); err != nil {
			t.Fatalf("expected success, got %v", err)
		}
	})

	t.Run("owned by someone else", func(t *testing.T) {
		p, mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM spots").WithArgs("s1", "bob").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM spots`).WithArgs("s1").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
		mock.ExpectRollback()
		if err := p.DeleteSpot(ctx, "bob", "s1"); !errors.Is(err, ErrNotOwner) {
			t.Fatalf("expected ErrNotOwner, got %v", err)
		}
	})

	t.Run("missing", func(t *testing.T) {
		p, mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM spots").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM spots`).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		mock.ExpectRollback()
		if err := p.DeleteSpot(ctx, "bob", "s1"); err != nil {
			t.Fatalf("deleting a missing spot should be a no-op, got %v", err)
		}
	})
}

func TestDeleteCatch_Ownership(t *testing.T) {
	ctx := context.Background()

	t.Run("owned by someone else", func(t *testing.T) {
		p, mock := newMock(t)
		mock.ExpectExec("DELETE FROM catches").WithArgs("c1", "bob").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM catches`).WithArgs("c1").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
		if err := p.DeleteCatch(ctx, "bob", "c1"); !errors.Is(err, ErrNotOwner) {
			t.Fatalf("expected ErrNotOwner, got %v", err)
		}
	})

	t.Run("missing", func(t *testing.T) {
		p, mock := newMock(t)
		mock.ExpectExec("DELETE FROM catches").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM catches`).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		if err := p.DeleteCatch(ctx, "bob", "c1"); err != nil {
			t.Fatalf("expected no-op, got %v", err)
		}
	})

	t.Run("owner", func(t *testing.T) {
		p, mock := newMock(t)
		mock.ExpectExec("DELETE FROM catches").WithArgs("c1", "alice").WillReturnResult(sqlmock.NewResult(0, 1))
		if err := p.DeleteCatch(ctx, "alice", "c1"); err != nil {
			t.Fatalf("expected success, got %v", err)
		}
	})
}

func TestWrites_ClassifyRejectedRows(t *testing.T) {
	ctx := context.Background()

	tooLong := &pq.Error{Code: "22001", Message: "value too long for type character varying(20)"}
	p, mock := newMock(t)
	mock.ExpectExec("INSERT INTO spots").WillReturnError(tooLong)
	err := p.UpsertSpot(ctx, "alice", testSpot())
	if !errors.Is(err, ErrRejected) {
		t.Fatalf("22001 should be rejected, got %v", err)
	}
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != "22001" {
		t.Errorf("the driver error should stay reachable, got %v", err)
	}

	p, mock = newMock(t)
	mock.ExpectExec("INSERT INTO favorites").WillReturnError(&pq.Error{Code: "23503", Message: "violates foreign key constraint"})
	err = p.UpsertFavorite(ctx, &models.Favorite{UserID: "alice", SpotID: "gone", CreatedAt: time.Now()})
	if !errors.Is(err, ErrRejected) {
		t.Fatalf("23503 should be rejected, got %v", err)
	}

	p, mock = newMock(t)
	mock.ExpectExec("INSERT INTO spots").WillReturnError(&pq.Error{Code: "57P01", Message: "terminating connection"})
	if err := p.UpsertSpot(ctx, "alice", testSpot()); err == nil || errors.Is(err, ErrRejected) {
		t.Errorf("connection failures must stay retryable, got %v", err)
	}

	p, mock = newMock(t)
	mock.ExpectExec("INSERT INTO catches").WillReturnError(errors.New("connection reset by peer"))
	err = p.UpsertCatch(ctx, "alice", &models.Catch{ID: "c1", SpotID: "s1", CatchDate: time.Now()})
	if err == nil || errors.Is(err, ErrRejected) {
		t.Errorf("non-driver errors must stay retryable, got %v", err)
	}
}
