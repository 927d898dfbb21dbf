package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shandysiswandi/gobank/internal/bank/entity"
	"github.com/shandysiswandi/gobank/internal/pkg/pkgerror"
	"github.com/shopspring/decimal"
)

// TransferMoney moves amount from the source account to the destination
// account. Optimistic version conflicts are retried up to the configured
// attempt bound; business failures (unknown account, insufficient funds) are
// never retried.
func (u *Usecase) TransferMoney(ctx context.Context, sourceNumber, destinationNumber string, amount decimal.Decimal) (entity.Transaction, error) {
	if u.store == nil || u.txID == nil {
		return entity.Transaction{}, pkgerror.NewServer(errors.New("missing dependency"))
	}

	if sourceNumber == "" || destinationNumber == "" {
		return entity.Transaction{}, pkgerror.NewInvalidInput(errors.New("source and destination account numbers are required"))
	}

	if sourceNumber == destinationNumber {
		return entity.Transaction{}, pkgerror.NewInvalidInput(errors.New("cannot transfer to the same account"))
	}

	if amount.LessThanOrEqual(decimal.Zero) {
		return entity.Transaction{}, pkgerror.NewInvalidInput(errors.New("transfer amount must be positive"))
	}

	var tx entity.Transaction
	err := u.withRetry(ctx, "transfer", func(ctx context.Context) error {
		var err error
		tx, err = u.executeTransfer(ctx, sourceNumber, destinationNumber, amount)
		return err
	})
	if err != nil {
		return entity.Transaction{}, err
	}

	u.publishTransferEvent(tx)

	return tx, nil
}

// executeTransfer performs one attempt against fresh reads of both accounts.
// The commit applies both account writes and the transaction record as a
// unit, so a version conflict on either side leaves no partial state.
func (u *Usecase) executeTransfer(ctx context.Context, sourceNumber, destinationNumber string, amount decimal.Decimal) (entity.Transaction, error) {
	source, err := u.store.FindAccount(ctx, sourceNumber)
	if err != nil {
		return entity.Transaction{}, mapAccountErr(err, "source account not found: "+sourceNumber)
	}

	destination, err := u.store.FindAccount(ctx, destinationNumber)
	if err != nil {
		return entity.Transaction{}, mapAccountErr(err, "destination account not found: "+destinationNumber)
	}

	if source.Balance.LessThan(amount) {
		return entity.Transaction{}, pkgerror.NewBusiness("insufficient funds in account "+sourceNumber, pkgerror.CodeInsufficientFunds)
	}

	source.Balance = source.Balance.Sub(amount)
	destination.Balance = destination.Balance.Add(amount)

	tx := entity.Transaction{
		ID:                u.nextTxID(),
		SourceNumber:      sourceNumber,
		DestinationNumber: destinationNumber,
		Amount:            amount,
		Type:              entity.TxTypeTransfer,
		Description:       fmt.Sprintf("transfer from %s to %s", sourceNumber, destinationNumber),
		CreatedAt:         u.clock.Now(),
	}

	source.TransactionIDs = append(source.TransactionIDs, tx.ID)
	destination.TransactionIDs = append(destination.TransactionIDs, tx.ID)

	if _, _, err := u.store.CommitTransfer(ctx, source, destination, tx); err != nil {
		if errors.Is(err, pkgerror.ErrVersionConflict) {
			return entity.Transaction{}, err
		}
		return entity.Transaction{}, normalizeErr(err)
	}

	return tx, nil
}

// withRetry re-drives op on version conflicts, sleeping an exponentially
// growing backoff between attempts. Any other error propagates verbatim.
func (u *Usecase) withRetry(ctx context.Context, name string, op func(ctx context.Context) error) error {
	backoff := u.baseBackoff

	for attempt := 1; attempt <= u.maxAttempts; attempt++ {
		err := op(ctx)
		if err == nil {
			return nil
		}

		if !errors.Is(err, pkgerror.ErrVersionConflict) {
			return err
		}

		if attempt == u.maxAttempts {
			break
		}

		slog.WarnContext(ctx, "version conflict, retrying", "operation", name, "attempt", attempt)

		if err := sleepBackoff(ctx, backoff); err != nil {
			return pkgerror.NewServer(err)
		}
		backoff *= 2
	}

	return pkgerror.NewBusiness(
		fmt.Sprintf("failed to complete %s after %d attempts", name, u.maxAttempts),
		pkgerror.CodeConflict,
	)
}

func (u *Usecase) publishTransferEvent(tx entity.Transaction) {
	if u.events == nil {
		return
	}

	event := entity.TransferEvent{
		EventID: u.nextTxID(),
		Tx:      tx,
	}

	publish := func(ctx context.Context) error {
		if err := u.events.Publish(ctx, event); err != nil {
			slog.WarnContext(ctx, "failed to publish transfer event", "event_id", event.EventID, "tx_id", tx.ID, "error", err)
			return err
		}
		return nil
	}

	if u.runner != nil {
		u.runner.Go(u.rootCtx, publish)
		return
	}

	//nolint:errcheck // already logged inside publish
	publish(u.rootCtx)
}

func sleepBackoff(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
