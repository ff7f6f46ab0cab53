// Package memory implements the repository ports on process memory. It backs
// STORAGE_DRIVER=memory and the service tests.
package memory

import (
	"context"
	"maps"
	"sync"

	"github.com/SscSPs/mfg_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/mfg_ledger/internal/core/ports/repositories"
)

type unitKey struct{}

// Store holds every collection behind one mutex. A unit of work keeps the
// mutex for its whole duration and restores a snapshot when it fails, so units
// are serializable and all-or-nothing.
//
// Stored values are never mutated in place: writers put fresh copies, which
// lets a snapshot be a shallow copy of each map.
type Store struct {
	mu           sync.Mutex
	accounts     map[string]domain.Account
	transactions map[string]domain.Transaction
	obligations  map[string]domain.Obligation
	personnel    map[string]domain.Personnel
	salaries     map[string]domain.Salary
	counters     map[int]int64
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		accounts:     map[string]domain.Account{},
		transactions: map[string]domain.Transaction{},
		obligations:  map[string]domain.Obligation{},
		personnel:    map[string]domain.Personnel{},
		salaries:     map[string]domain.Salary{},
		counters:     map[int]int64{},
	}
}

type snapshot struct {
	accounts     map[string]domain.Account
	transactions map[string]domain.Transaction
	obligations  map[string]domain.Obligation
	personnel    map[string]domain.Personnel
	salaries     map[string]domain.Salary
	counters     map[int]int64
}

func (s *Store) snapshot() snapshot {
	return snapshot{
		accounts:     maps.Clone(s.accounts),
		transactions: maps.Clone(s.transactions),
		obligations:  maps.Clone(s.obligations),
		personnel:    maps.Clone(s.personnel),
		salaries:     maps.Clone(s.salaries),
		counters:     maps.Clone(s.counters),
	}
}

func (s *Store) restore(snap snapshot) {
	s.accounts = snap.accounts
	s.transactions = snap.transactions
	s.obligations = snap.obligations
	s.personnel = snap.personnel
	s.salaries = snap.salaries
	s.counters = snap.counters
}

func (s *Store) inUnit(ctx context.Context) bool {
	owner, _ := ctx.Value(unitKey{}).(*Store)
	return owner == s
}

// WithinTransaction implements portsrepo.TransactionManager.
func (s *Store) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.inUnit(ctx) {
		return fn(ctx)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snapshot()
	if err := fn(context.WithValue(ctx, unitKey{}, s)); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

// read runs fn under the store lock unless ctx already holds it.
func (s *Store) read(ctx context.Context, fn func() error) error {
	if s.inUnit(ctx) {
		return fn()
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn()
}

// write runs fn as its own unit of work unless ctx already is one.
func (s *Store) write(ctx context.Context, fn func() error) error {
	return s.WithinTransaction(ctx, func(context.Context) error { return fn() })
}

// NewRepositoryProvider wires every memory repository onto one store.
func NewRepositoryProvider(store *Store) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		TxManager:       store,
		AccountRepo:     &AccountRepository{store: store},
		TransactionRepo: &TransactionRepository{store: store},
		ObligationRepo:  &ObligationRepository{store: store},
		PersonnelRepo:   &PersonnelRepository{store: store},
		SalaryRepo:      &SalaryRepository{store: store},
		ReportingRepo:   &ReportingRepository{store: store},
	}
}

var _ portsrepo.TransactionManager = (*Store)(nil)
