package entity

type TxType string

const (
	TxTypeTransfer   TxType = "TRANSFER"
	TxTypeDeposit    TxType = "DEPOSIT"
	TxTypeWithdrawal TxType = "WITHDRAWAL"
)
