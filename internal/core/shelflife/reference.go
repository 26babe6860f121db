package shelflife

import (
	"strings"
	"time"

	"github.com/MagicMike0112/Project-Study-BSH/internal/core/domain"
)

// Reference is the date shelf life is counted from.
type Reference struct {
	Date time.Time
	Type domain.ReferenceType
}

// ResolveReference picks the open date when it parses and falls back to the
// purchase date otherwise. The purchase date is required.
func ResolveReference(purchased, opened string) (Reference, error) {
	if strings.TrimSpace(purchased) == "" {
		return Reference{}, domain.WrapError(domain.ErrInvalidInput, "resolve reference date", errMissingPurchaseDate)
	}
	purchaseDate, err := domain.ParseDate(purchased)
	if err != nil {
		return Reference{}, domain.WrapError(domain.ErrInvalidInput, "resolve reference date", err)
	}
	if openDate, err := domain.ParseDate(opened); err == nil {
		return Reference{Date: openDate, Type: domain.ReferenceOpen}, nil
	}
	return Reference{Date: purchaseDate, Type: domain.ReferencePurchase}, nil
}
