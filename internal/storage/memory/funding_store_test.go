package memory

import (
	"context"
	"errors"
	"testing"

	"copytrade-dashboard/internal/domain"
	"copytrade-dashboard/internal/storage"
)

func TestFundingStore_InsertAndGetByOwner(t *testing.T) {
	store := NewFundingStore()
	ctx := context.Background()

	err := store.Insert(ctx, &domain.FundingRecord{
		ID: "f1", OwnerID: "u1", Date: "2024-03-15 04:00:00", Amount: -0.52,
	})
	if err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	records, err := store.GetByOwner(ctx, "u1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if len(records) != 1 || records[0].Amount != -0.52 {
		t.Fatalf("unexpected records: %+v", records)
	}
}

func TestFundingStore_DuplicateKey(t *testing.T) {
	store := NewFundingStore()
	ctx := context.Background()

	if err := store.Insert(ctx, &domain.FundingRecord{ID: "f1"}); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if err := store.Insert(ctx, &domain.FundingRecord{ID: "f1"}); !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("expected ErrDuplicateKey, got %v", err)
	}
}

func TestFundingStore_GetByOwner_Ordering(t *testing.T) {
	store := NewFundingStore()
	ctx := context.Background()

	err := store.InsertBulk(ctx, []*domain.FundingRecord{
		{ID: "a", OwnerID: "u1", Date: "2024-01-01 00:00:00"},
		{ID: "b", OwnerID: "u1", Date: "2024-03-01 00:00:00"},
		{ID: "c", OwnerID: "u1", Date: "2024-02-01 00:00:00"},
	})
	if err != nil {
		t.Fatalf("bulk insert failed: %v", err)
	}

	records, err := store.GetByOwner(ctx, "u1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	// Newest first
	if records[0].ID != "b" || records[1].ID != "c" || records[2].ID != "a" {
		t.Errorf("unexpected order: %s, %s, %s", records[0].ID, records[1].ID, records[2].ID)
	}
}

func TestFundingStore_ReplaceAll(t *testing.T) {
	store := NewFundingStore()
	ctx := context.Background()

	err := store.InsertBulk(ctx, []*domain.FundingRecord{
		{ID: "old", OwnerID: "u1", MonthKey: "2024-01"},
		{ID: "keep", OwnerID: "u2", MonthKey: "2024-01"},
	})
	if err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	err = store.ReplaceAll(ctx, "u1", []*domain.FundingRecord{
		{ID: "new", OwnerID: "u1", MonthKey: "2024-02"},
	})
	if err != nil {
		t.Fatalf("replace failed: %v", err)
	}

	records, _ := store.GetByOwner(ctx, "u1")
	if len(records) != 1 || records[0].ID != "new" {
		t.Errorf("expected only the replacement batch, got %+v", records)
	}
	other, _ := store.GetByOwner(ctx, "u2")
	if len(other) != 1 {
		t.Errorf("expected u2 records untouched, got %d", len(other))
	}
}

func TestMonthlySummaryStore_ReplaceAndGet(t *testing.T) {
	store := NewMonthlySummaryStore()
	ctx := context.Background()

	err := store.ReplaceForOwner(ctx, "u1", []*domain.MonthlySummary{
		{OwnerID: "u1", MonthKey: "2024-02", NetProfit: 20},
		{OwnerID: "u1", MonthKey: "2024-01", NetProfit: 10},
	})
	if err != nil {
		t.Fatalf("replace failed: %v", err)
	}

	result, err := store.GetByOwner(ctx, "u1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	// Month ASC
	if len(result) != 2 || result[0].MonthKey != "2024-01" || result[1].MonthKey != "2024-02" {
		t.Fatalf("unexpected result: %+v", result)
	}

	// Second replace wipes the previous set
	err = store.ReplaceForOwner(ctx, "u1", nil)
	if err != nil {
		t.Fatalf("replace with empty failed: %v", err)
	}
	result, _ = store.GetByOwner(ctx, "u1")
	if len(result) != 0 {
		t.Fatalf("expected empty set after replace, got %+v", result)
	}
}
