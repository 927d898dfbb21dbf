package usecase

import "github.com/shandysiswandi/gobank/internal/bank/entity"

type TransactionsResult struct {
	Number       string
	Transactions []entity.Transaction
	Page         int
	PageSize     int
	Total        int
}
