package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Identifier generation deliberately avoids read-last-then-increment:
// product and category codes are uuid-derived so concurrent creates
// cannot collide, and transaction ids are time-derived as the receipts
// display them.

// NewProductID returns a product code like "P3f9a1c07de".
func NewProductID() string {
	return "P" + shortHex(10)
}

// NewCategoryID returns a category code like "CAT9b2e4f".
func NewCategoryID() string {
	return "CAT" + shortHex(6)
}

// NewTransactionID returns a time-derived transaction id like
// "TRX1735689600123". Uniqueness relies on the single-writer,
// low-volume nature of a POS terminal; the collision window of one
// millisecond is accepted by the domain.
func NewTransactionID(now time.Time) string {
	return fmt.Sprintf("TRX%d", now.UnixMilli())
}

// shortHex returns the first n hex characters of a fresh uuid.
func shortHex(n int) string {
	s := strings.ReplaceAll(uuid.NewString(), "-", "")
	if n > len(s) {
		n = len(s)
	}
	return s[:n]
}
