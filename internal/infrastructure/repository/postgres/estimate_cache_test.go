package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/MagicMike0112/Project-Study-BSH/internal/core/domain"
)

func TestEstimateCacheGetMany(t *testing.T) {
	db, mock, done := newMockDB(t)
	defer done()
	cache := NewEstimateCache(db)

	now := time.Now().UTC()
	mock.ExpectQuery(`SELECT query, days, updated_at FROM food_estimate_cache WHERE query IN \(\$1,\$2\)`).
		WithArgs("hummus|fridge|purchase", "tofu|fridge|open").
		WillReturnRows(sqlmock.NewRows([]string{"query", "days", "updated_at"}).AddRow("hummus|fridge|purchase", 6, now))

	got, err := cache.GetMany(context.Background(), []string{"hummus|fridge|purchase", "tofu|fridge|open"})
	if err != nil {
		t.Fatalf("GetMany() error = %v", err)
	}
	if len(got) != 1 || got["hummus|fridge|purchase"].Days != 6 {
		t.Fatalf("unexpected cache hits %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestEstimateCacheGetManyEmptySkipsQuery(t *testing.T) {
	db, mock, done := newMockDB(t)
	defer done()

	got, err := NewEstimateCache(db).GetMany(context.Background(), nil)
	if err != nil || len(got) != 0 {
		t.Fatalf("unexpected result %v %v", got, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestEstimateCacheUpsertSkipsNonPositive(t *testing.T) {
	db, mock, done := newMockDB(t)
	defer done()
	cache := NewEstimateCache(db)

	now := time.Now().UTC()
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO food_estimate_cache").
		WithArgs("hummus|fridge|purchase", 6, now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := cache.Upsert(context.Background(), []domain.CachedEstimate{
		{Query: "hummus|fridge|purchase", Days: 6, UpdatedAt: now},
		{Query: "mystery|fridge|purchase", Days: 0, UpdatedAt: now},
	})
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestEstimateCacheUpsertRollsBackOnError(t *testing.T) {
	db, mock, done := newMockDB(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO food_estimate_cache").WillReturnError(errors.New("conn reset"))
	mock.ExpectRollback()

	err := NewEstimateCache(db).Upsert(context.Background(), []domain.CachedEstimate{{Query: "q", Days: 3, UpdatedAt: time.Now()}})
	if err == nil {
		t.Fatalf("expected error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
