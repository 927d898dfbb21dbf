package inbound

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/shandysiswandi/gobank/internal/pkg/pkgerror"
	"github.com/shandysiswandi/gobank/internal/pkg/pkgrouter"
	"github.com/shopspring/decimal"
)

type HTTPEndpoint struct {
	uc uc
}

func (h *HTTPEndpoint) CreateAccount(ctx context.Context, r *http.Request) (any, error) {
	var req CreateAccountRequest
	if err := decodeJSON(r, &req); err != nil {
		return nil, err
	}

	if strings.TrimSpace(req.AccountHolderName) == "" {
		return nil, pkgerror.NewInvalidInput(errors.New("account_holder_name is required"))
	}
	if req.InitialBalance == nil {
		return nil, pkgerror.NewInvalidInput(errors.New("initial_balance is required"))
	}

	account, err := h.uc.CreateAccount(ctx, req.AccountHolderName, *req.InitialBalance)
	if err != nil {
		return nil, err
	}

	return CreatedAccountResponse{AccountResponse: toAccountResponse(account)}, nil
}

func (h *HTTPEndpoint) GetAccount(ctx context.Context, r *http.Request) (any, error) {
	number := pkgrouter.GetParam(ctx, "number")
	if number == "" {
		return nil, pkgerror.NewInvalidInput(errors.New("account number is required"))
	}

	account, err := h.uc.GetAccount(ctx, number)
	if err != nil {
		return nil, err
	}

	return toAccountResponse(account), nil
}

func (h *HTTPEndpoint) Deposit(ctx context.Context, r *http.Request) (any, error) {
	number, amount, err := accountAmount(ctx, r)
	if err != nil {
		return nil, err
	}

	account, err := h.uc.Deposit(ctx, number, amount)
	if err != nil {
		return nil, err
	}

	return toAccountResponse(account), nil
}

func (h *HTTPEndpoint) Withdraw(ctx context.Context, r *http.Request) (any, error) {
	number, amount, err := accountAmount(ctx, r)
	if err != nil {
		return nil, err
	}

	account, err := h.uc.Withdraw(ctx, number, amount)
	if err != nil {
		return nil, err
	}

	return toAccountResponse(account), nil
}

func (h *HTTPEndpoint) Transfer(ctx context.Context, r *http.Request) (any, error) {
	var req TransferRequest
	if err := decodeJSON(r, &req); err != nil {
		return nil, err
	}

	if req.SourceAccountNumber == "" || req.DestinationAccountNumber == "" {
		return nil, pkgerror.NewInvalidInput(errors.New("source_account_number and destination_account_number are required"))
	}
	if req.Amount == nil {
		return nil, pkgerror.NewInvalidInput(errors.New("amount is required"))
	}

	tx, err := h.uc.TransferMoney(ctx, req.SourceAccountNumber, req.DestinationAccountNumber, *req.Amount)
	if err != nil {
		return nil, err
	}

	return toTransactionResponse(tx), nil
}

func (h *HTTPEndpoint) Transactions(ctx context.Context, r *http.Request) (any, error) {
	number := pkgrouter.GetParam(ctx, "number")
	if number == "" {
		return nil, pkgerror.NewInvalidInput(errors.New("account number is required"))
	}

	query := r.URL.Query()
	page, pageSize, err := parsePagination(query.Get("page"), query.Get("page_size"))
	if err != nil {
		return nil, err
	}

	result, err := h.uc.Transactions(ctx, number, page, pageSize)
	if err != nil {
		return nil, err
	}

	transactions := make([]TransactionResponse, 0, len(result.Transactions))
	for _, tx := range result.Transactions {
		transactions = append(transactions, toTransactionResponse(tx))
	}

	return TransactionsResponse{
		AccountNumber: result.Number,
		Transactions:  transactions,
		page:          result.Page,
		pageSize:      result.PageSize,
		total:         result.Total,
	}, nil
}

func accountAmount(ctx context.Context, r *http.Request) (string, decimal.Decimal, error) {
	number := pkgrouter.GetParam(ctx, "number")
	if number == "" {
		return "", decimal.Decimal{}, pkgerror.NewInvalidInput(errors.New("account number is required"))
	}

	var req AmountRequest
	if err := decodeJSON(r, &req); err != nil {
		return "", decimal.Decimal{}, err
	}
	if req.Amount == nil {
		return "", decimal.Decimal{}, pkgerror.NewInvalidInput(errors.New("amount is required"))
	}

	return number, *req.Amount, nil
}

func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return pkgerror.NewInvalidInput(errors.New("empty request body"))
	}

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return pkgerror.NewInvalidFormat()
	}

	return nil
}

func parsePagination(pageRaw, sizeRaw string) (int, int, error) {
	page := 1
	pageSize := 20

	if pageRaw != "" {
		value, err := strconv.Atoi(pageRaw)
		if err != nil || value < 1 {
			return 0, 0, pkgerror.NewInvalidInput(errors.New("invalid page"))
		}
		page = value
	}

	if sizeRaw != "" {
		value, err := strconv.Atoi(sizeRaw)
		if err != nil || value < 1 {
			return 0, 0, pkgerror.NewInvalidInput(errors.New("invalid page_size"))
		}
		if value > 100 {
			value = 100
		}
		pageSize = value
	}

	return page, pageSize, nil
}
