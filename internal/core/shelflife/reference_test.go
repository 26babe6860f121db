package shelflife

import (
	"errors"
	"testing"
	"time"

	"github.com/MagicMike0112/Project-Study-BSH/internal/core/domain"
)

func TestResolveReferencePrefersOpenDate(t *testing.T) {
	ref, err := ResolveReference("2024-01-01", "2024-01-03")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if ref.Type != domain.ReferenceOpen {
		t.Fatalf("expected open reference, got %s", ref.Type)
	}
	if !ref.Date.Equal(time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected reference date %s", ref.Date)
	}
}

func TestResolveReferenceIgnoresUnparsableOpenDate(t *testing.T) {
	ref, err := ResolveReference("2024-01-01T10:30:00Z", "not a date")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if ref.Type != domain.ReferencePurchase {
		t.Fatalf("expected purchase reference, got %s", ref.Type)
	}
	if !ref.Date.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected reference date %s", ref.Date)
	}
}

func TestResolveReferenceRequiresPurchaseDate(t *testing.T) {
	for _, purchased := range []string{"", "   ", "yesterday"} {
		_, err := ResolveReference(purchased, "2024-01-03")
		if !errors.Is(err, domain.ErrInvalidInput) {
			t.Fatalf("purchased %q: expected invalid input, got %v", purchased, err)
		}
	}
}
