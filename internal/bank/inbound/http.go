package inbound

import (
	"context"

	"github.com/shandysiswandi/gobank/internal/bank/entity"
	"github.com/shandysiswandi/gobank/internal/bank/usecase"
	"github.com/shandysiswandi/gobank/internal/pkg/pkgrouter"
	"github.com/shopspring/decimal"
)

type uc interface {
	CreateAccount(ctx context.Context, holderName string, initialBalance decimal.Decimal) (entity.Account, error)
	GetAccount(ctx context.Context, number string) (entity.Account, error)
	Deposit(ctx context.Context, number string, amount decimal.Decimal) (entity.Account, error)
	Withdraw(ctx context.Context, number string, amount decimal.Decimal) (entity.Account, error)
	TransferMoney(ctx context.Context, sourceNumber, destinationNumber string, amount decimal.Decimal) (entity.Transaction, error)
	Transactions(ctx context.Context, number string, page, pageSize int) (usecase.TransactionsResult, error)
}

func RegisterHTTPEndpoint(r *pkgrouter.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	r.POST("/api/accounts", end.CreateAccount)
	r.GET("/api/accounts/:number", end.GetAccount)
	r.POST("/api/accounts/:number/deposit", end.Deposit)
	r.POST("/api/accounts/:number/withdraw", end.Withdraw)
	r.GET("/api/accounts/:number/transactions", end.Transactions) // ?page=&page_size=

	// A static "transfer" segment under /api/accounts would collide with the
	// :number wildcard in httprouter, so transfers get their own collection.
	r.POST("/api/transfers", end.Transfer)
}
