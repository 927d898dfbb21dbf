package usecase

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/shandysiswandi/gobank/internal/bank/entity"
	"github.com/shandysiswandi/gobank/internal/pkg/pkgerror"
	"github.com/shandysiswandi/gobank/internal/pkg/pkguid"
	"github.com/shopspring/decimal"
)

type Store interface {
	CreateAccount(ctx context.Context, account entity.Account) error
	FindAccount(ctx context.Context, number string) (entity.Account, error)
	SaveAccount(ctx context.Context, account entity.Account) (entity.Account, error)
	CommitTransfer(ctx context.Context, source, destination entity.Account, tx entity.Transaction) (entity.Account, entity.Account, error)
	SaveTransaction(ctx context.Context, tx entity.Transaction) error
	TransactionsByIDs(ctx context.Context, ids []string) ([]entity.Transaction, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, event entity.TransferEvent) error
}

type Runner interface {
	Go(ctx context.Context, f func(ctx context.Context) error)
}

type Clock interface {
	Now() time.Time
}

type Dependency struct {
	Store       Store
	Events      EventPublisher
	Runner      Runner
	Clock       Clock
	AccountID   pkguid.StringID
	TxID        pkguid.NumberID
	MaxAttempts int
	BaseBackoff time.Duration
	RootCtx     context.Context
}

type Usecase struct {
	store       Store
	events      EventPublisher
	runner      Runner
	clock       Clock
	accountID   pkguid.StringID
	txID        pkguid.NumberID
	maxAttempts int
	baseBackoff time.Duration
	rootCtx     context.Context
}

const (
	defaultMaxAttempts = 3
	defaultBaseBackoff = 20 * time.Millisecond
)

func New(dep Dependency) *Usecase {
	root := dep.RootCtx
	if root == nil {
		root = context.Background()
	}

	clock := dep.Clock
	if clock == nil {
		clock = realClock{}
	}

	maxAttempts := dep.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = defaultMaxAttempts
	}

	baseBackoff := dep.BaseBackoff
	if baseBackoff <= 0 {
		baseBackoff = defaultBaseBackoff
	}

	return &Usecase{
		store:       dep.Store,
		events:      dep.Events,
		runner:      dep.Runner,
		clock:       clock,
		accountID:   dep.AccountID,
		txID:        dep.TxID,
		maxAttempts: maxAttempts,
		baseBackoff: baseBackoff,
		rootCtx:     root,
	}
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}

func (u *Usecase) CreateAccount(ctx context.Context, holderName string, initialBalance decimal.Decimal) (entity.Account, error) {
	if u.store == nil || u.accountID == nil {
		return entity.Account{}, pkgerror.NewServer(errors.New("missing dependency"))
	}

	holderName = strings.TrimSpace(holderName)
	if holderName == "" {
		return entity.Account{}, pkgerror.NewInvalidInput(errors.New("account holder name is required"))
	}

	if initialBalance.IsNegative() {
		return entity.Account{}, pkgerror.NewInvalidInput(errors.New("initial balance cannot be negative"))
	}

	account := entity.Account{
		Number:     u.accountID.Generate(),
		HolderName: holderName,
		Balance:    initialBalance,
		Version:    0,
		CreatedAt:  u.clock.Now(),
	}

	if err := u.store.CreateAccount(ctx, account); err != nil {
		return entity.Account{}, normalizeErr(err)
	}

	return account, nil
}

func (u *Usecase) GetAccount(ctx context.Context, number string) (entity.Account, error) {
	if number == "" {
		return entity.Account{}, pkgerror.NewInvalidInput(errors.New("account number is required"))
	}

	account, err := u.store.FindAccount(ctx, number)
	if err != nil {
		return entity.Account{}, mapAccountErr(err, "account not found")
	}

	return account, nil
}

func (u *Usecase) Transactions(ctx context.Context, number string, page, pageSize int) (TransactionsResult, error) {
	if number == "" {
		return TransactionsResult{}, pkgerror.NewInvalidInput(errors.New("account number is required"))
	}

	if page < 1 || pageSize < 1 {
		return TransactionsResult{}, pkgerror.NewInvalidInput(errors.New("invalid pagination"))
	}

	account, err := u.store.FindAccount(ctx, number)
	if err != nil {
		return TransactionsResult{}, mapAccountErr(err, "account not found")
	}

	total := len(account.TransactionIDs)
	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	txs, err := u.store.TransactionsByIDs(ctx, account.TransactionIDs[start:end])
	if err != nil {
		return TransactionsResult{}, normalizeErr(err)
	}

	return TransactionsResult{
		Number:       number,
		Transactions: txs,
		Page:         page,
		PageSize:     pageSize,
		Total:        total,
	}, nil
}

func (u *Usecase) Deposit(ctx context.Context, number string, amount decimal.Decimal) (entity.Account, error) {
	if number == "" {
		return entity.Account{}, pkgerror.NewInvalidInput(errors.New("account number is required"))
	}

	if amount.LessThanOrEqual(decimal.Zero) {
		return entity.Account{}, pkgerror.NewInvalidInput(errors.New("deposit amount must be positive"))
	}

	var saved entity.Account
	err := u.withRetry(ctx, "deposit", func(ctx context.Context) error {
		account, err := u.store.FindAccount(ctx, number)
		if err != nil {
			return mapAccountErr(err, "account not found")
		}

		tx := entity.Transaction{
			ID:                u.nextTxID(),
			DestinationNumber: number,
			Amount:            amount,
			Type:              entity.TxTypeDeposit,
			Description:       "deposit to " + number,
			CreatedAt:         u.clock.Now(),
		}

		account.Balance = account.Balance.Add(amount)
		account.TransactionIDs = append(account.TransactionIDs, tx.ID)

		// The arena record goes in first so a reader never resolves a
		// dangling ID; a record left by a conflicting attempt is unreachable.
		if err := u.store.SaveTransaction(ctx, tx); err != nil {
			return normalizeErr(err)
		}

		saved, err = u.store.SaveAccount(ctx, account)
		return err
	})
	if err != nil {
		return entity.Account{}, err
	}

	return saved, nil
}

func (u *Usecase) Withdraw(ctx context.Context, number string, amount decimal.Decimal) (entity.Account, error) {
	if number == "" {
		return entity.Account{}, pkgerror.NewInvalidInput(errors.New("account number is required"))
	}

	if amount.LessThanOrEqual(decimal.Zero) {
		return entity.Account{}, pkgerror.NewInvalidInput(errors.New("withdrawal amount must be positive"))
	}

	var saved entity.Account
	err := u.withRetry(ctx, "withdrawal", func(ctx context.Context) error {
		account, err := u.store.FindAccount(ctx, number)
		if err != nil {
			return mapAccountErr(err, "account not found")
		}

		if account.Balance.LessThan(amount) {
			return pkgerror.NewBusiness("insufficient funds in account "+number, pkgerror.CodeInsufficientFunds)
		}

		tx := entity.Transaction{
			ID:           u.nextTxID(),
			SourceNumber: number,
			Amount:       amount,
			Type:         entity.TxTypeWithdrawal,
			Description:  "withdrawal from " + number,
			CreatedAt:    u.clock.Now(),
		}

		account.Balance = account.Balance.Sub(amount)
		account.TransactionIDs = append(account.TransactionIDs, tx.ID)

		if err := u.store.SaveTransaction(ctx, tx); err != nil {
			return normalizeErr(err)
		}

		saved, err = u.store.SaveAccount(ctx, account)
		return err
	})
	if err != nil {
		return entity.Account{}, err
	}

	return saved, nil
}

func (u *Usecase) nextTxID() string {
	return strconv.FormatInt(u.txID.Generate(), 10)
}

func mapAccountErr(err error, msg string) error {
	if errors.Is(err, pkgerror.ErrNotFound) {
		return pkgerror.NewBusiness(msg, pkgerror.CodeNotFound)
	}
	return normalizeErr(err)
}

func normalizeErr(err error) error {
	var perr *pkgerror.Error
	if errors.As(err, &perr) {
		return perr
	}
	return pkgerror.NewServer(err)
}
