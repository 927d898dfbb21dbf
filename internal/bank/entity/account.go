package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account holds a monetary balance identified by a unique account number.
//
// TransactionIDs is append-only and keeps insertion order; the records
// themselves live in the store's transaction arena. Version is incremented
// by the store on every successful write and is the basis of optimistic
// concurrency control.
type Account struct {
	Number         string
	HolderName     string
	Balance        decimal.Decimal
	TransactionIDs []string
	Version        int64
	CreatedAt      time.Time
}
