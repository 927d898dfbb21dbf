package store

import (
	"context"
	"slices"
	"sync"

	"github.com/shandysiswandi/gobank/internal/bank/entity"
	"github.com/shandysiswandi/gobank/internal/pkg/pkgerror"
)

// InMemoryStore keeps accounts and the transaction arena behind a single
// mutex. The lock is what makes each version check-and-increment, including
// the two-account transfer commit, atomic with respect to all writers.
type InMemoryStore struct {
	mu       sync.RWMutex
	accounts map[string]entity.Account
	txs      map[string]entity.Transaction
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		accounts: make(map[string]entity.Account),
		txs:      make(map[string]entity.Transaction),
	}
}

func (s *InMemoryStore) CreateAccount(ctx context.Context, account entity.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.accounts[account.Number]; exists {
		return pkgerror.NewBusiness("account already exists", pkgerror.CodeConflict)
	}

	s.accounts[account.Number] = cloneAccount(account)

	return nil
}

func (s *InMemoryStore) FindAccount(ctx context.Context, number string) (entity.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, ok := s.accounts[number]
	if !ok {
		return entity.Account{}, pkgerror.ErrNotFound
	}

	return cloneAccount(stored), nil
}

// SaveAccount persists a single account if and only if its version still
// matches the stored one, then increments the stored version. The saved copy
// is returned so callers observe the new version.
func (s *InMemoryStore) SaveAccount(ctx context.Context, account entity.Account) (entity.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	saved, err := s.checkAndIncrement(account)
	if err != nil {
		return entity.Account{}, err
	}

	s.accounts[saved.Number] = saved

	return cloneAccount(saved), nil
}

// CommitTransfer persists both sides of a transfer plus its transaction
// record as one atomic commit: if either account's version check fails,
// nothing is applied.
func (s *InMemoryStore) CommitTransfer(ctx context.Context, source, destination entity.Account, tx entity.Transaction) (entity.Account, entity.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	savedSource, err := s.checkAndIncrement(source)
	if err != nil {
		return entity.Account{}, entity.Account{}, err
	}

	savedDestination, err := s.checkAndIncrement(destination)
	if err != nil {
		return entity.Account{}, entity.Account{}, err
	}

	s.accounts[savedSource.Number] = savedSource
	s.accounts[savedDestination.Number] = savedDestination
	s.txs[tx.ID] = tx

	return cloneAccount(savedSource), cloneAccount(savedDestination), nil
}

// SaveTransaction stores a transaction record in the arena.
func (s *InMemoryStore) SaveTransaction(ctx context.Context, tx entity.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.txs[tx.ID] = tx

	return nil
}

// TransactionsByIDs resolves transaction records from the arena, preserving
// the order of the requested IDs.
func (s *InMemoryStore) TransactionsByIDs(ctx context.Context, ids []string) ([]entity.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	txs := make([]entity.Transaction, 0, len(ids))
	for _, id := range ids {
		if tx, ok := s.txs[id]; ok {
			txs = append(txs, tx)
		}
	}

	return txs, nil
}

// checkAndIncrement is the compare-and-increment primitive. The caller must
// hold the write lock.
func (s *InMemoryStore) checkAndIncrement(account entity.Account) (entity.Account, error) {
	stored, ok := s.accounts[account.Number]
	if !ok {
		return entity.Account{}, pkgerror.ErrNotFound
	}

	if stored.Version != account.Version {
		return entity.Account{}, pkgerror.ErrVersionConflict
	}

	saved := cloneAccount(account)
	saved.Version++

	return saved, nil
}

func cloneAccount(account entity.Account) entity.Account {
	account.TransactionIDs = slices.Clone(account.TransactionIDs)
	return account
}
