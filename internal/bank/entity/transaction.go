package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is an immutable record of a completed balance movement.
//
// For TxTypeTransfer both account numbers are set and differ. Deposits have
// an empty SourceNumber, withdrawals an empty DestinationNumber.
type Transaction struct {
	ID                string
	SourceNumber      string
	DestinationNumber string
	Amount            decimal.Decimal
	Type              TxType
	Description       string
	CreatedAt         time.Time
}
