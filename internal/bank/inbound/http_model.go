package inbound

import (
	"net/http"
	"time"

	"github.com/shandysiswandi/gobank/internal/bank/entity"
	"github.com/shopspring/decimal"
)

type CreateAccountRequest struct {
	AccountHolderName string           `json:"account_holder_name"`
	InitialBalance    *decimal.Decimal `json:"initial_balance"`
}

type AmountRequest struct {
	Amount *decimal.Decimal `json:"amount"`
}

type TransferRequest struct {
	SourceAccountNumber      string           `json:"source_account_number"`
	DestinationAccountNumber string           `json:"destination_account_number"`
	Amount                   *decimal.Decimal `json:"amount"`
}

type AccountResponse struct {
	AccountNumber     string          `json:"account_number"`
	AccountHolderName string          `json:"account_holder_name"`
	Balance           decimal.Decimal `json:"balance"`
	Version           int64           `json:"version"`
	CreatedAt         time.Time       `json:"created_at"`
}

type CreatedAccountResponse struct {
	AccountResponse
}

func (CreatedAccountResponse) StatusCode() int {
	return http.StatusCreated
}

func (CreatedAccountResponse) Message() string {
	return "account created"
}

type TransactionResponse struct {
	ID                       string          `json:"id"`
	SourceAccountNumber      string          `json:"source_account_number,omitempty"`
	DestinationAccountNumber string          `json:"destination_account_number,omitempty"`
	Amount                   decimal.Decimal `json:"amount"`
	Type                     entity.TxType   `json:"type"`
	Description              string          `json:"description"`
	CreatedAt                time.Time       `json:"created_at"`
}

type TransactionsResponse struct {
	AccountNumber string                `json:"account_number"`
	Transactions  []TransactionResponse `json:"transactions"`
	page          int
	pageSize      int
	total         int
}

func (r TransactionsResponse) Meta() map[string]any {
	return map[string]any{
		"page":      r.page,
		"page_size": r.pageSize,
		"total":     r.total,
	}
}

func toAccountResponse(account entity.Account) AccountResponse {
	return AccountResponse{
		AccountNumber:     account.Number,
		AccountHolderName: account.HolderName,
		Balance:           account.Balance,
		Version:           account.Version,
		CreatedAt:         account.CreatedAt,
	}
}

func toTransactionResponse(tx entity.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:                       tx.ID,
		SourceAccountNumber:      tx.SourceNumber,
		DestinationAccountNumber: tx.DestinationNumber,
		Amount:                   tx.Amount,
		Type:                     tx.Type,
		Description:              tx.Description,
		CreatedAt:                tx.CreatedAt,
	}
}
