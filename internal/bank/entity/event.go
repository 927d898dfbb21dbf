package entity

// TransferEvent is published on the bank event bus after a transfer has been
// durably committed, for consumption by the audit trail.
type TransferEvent struct {
	EventID string
	Tx      Transaction
}
