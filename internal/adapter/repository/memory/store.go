// Package memory is an in-process, transactional implementation of the usecase
// repositories. Write transactions are serialized; reads outside a transaction
// see only committed state.
package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/iho/gofunds/internal/domain"
	"github.com/iho/gofunds/internal/usecase"
)

var errForeignTx = errors.New("memory: transaction does not belong to this store")

// Store holds all committed state.
type Store struct {
	// sem admits one write transaction at a time.
	sem chan struct{}

	mu            sync.RWMutex
	customers     map[string]domain.Customer
	emails        map[string]string
	funds         map[string]domain.Fund
	subscriptions map[string]domain.Subscription
	active        map[string]string
	transactions  map[string]domain.Transaction
	jobs          map[string]domain.NotificationJob
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		sem:           make(chan struct{}, 1),
		customers:     make(map[string]domain.Customer),
		emails:        make(map[string]string),
		funds:         make(map[string]domain.Fund),
		subscriptions: make(map[string]domain.Subscription),
		active:        make(map[string]string),
		transactions:  make(map[string]domain.Transaction),
		jobs:          make(map[string]domain.NotificationJob),
	}
}

func activeKey(customerID, fundID string) string {
	return customerID + "|" + fundID
}

// Tx stages writes until Commit.
type Tx struct {
	store         *Store
	done          bool
	customers     map[string]domain.Customer
	subscriptions map[string]domain.Subscription
	transactions  map[string]domain.Transaction
	jobs          map[string]domain.NotificationJob
}

// Commit applies staged writes atomically.
func (t *Tx) Commit(ctx context.Context) error {
	if t.done {
		return errors.New("memory: transaction already finished")
	}
	if err := ctx.Err(); err != nil {
		t.finish()
		return err
	}

	s := t.store
	s.mu.Lock()
	for id, c := range t.customers {
		if prev, ok := s.customers[id]; ok && prev.Email != c.Email {
			delete(s.emails, prev.Email)
		}
		s.customers[id] = c
		s.emails[c.Email] = id
	}
	for id, sub := range t.subscriptions {
		key := activeKey(sub.CustomerID, sub.FundID)
		if sub.IsActive() {
			s.active[key] = id
		} else if s.active[key] == id {
			delete(s.active, key)
		}
		s.subscriptions[id] = sub
	}
	for id, entry := range t.transactions {
		s.transactions[id] = entry
	}
	for id, job := range t.jobs {
		s.jobs[id] = job
	}
	s.mu.Unlock()

	t.finish()
	return nil
}

// Rollback discards staged writes. It is a no-op after Commit.
func (t *Tx) Rollback(_ context.Context) error {
	if t.done {
		return nil
	}
	t.finish()
	return nil
}

func (t *Tx) finish() {
	t.done = true
	<-t.store.sem
}

// TxManager implements usecase.TransactionManager on a Store.
type TxManager struct {
	store *Store
}

// NewTxManager creates a new TxManager.
func NewTxManager(store *Store) *TxManager {
	return &TxManager{store: store}
}

// Begin waits for exclusive write access or ctx cancellation.
func (m *TxManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	select {
	case m.store.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	return &Tx{
		store:         m.store,
		customers:     make(map[string]domain.Customer),
		subscriptions: make(map[string]domain.Subscription),
		transactions:  make(map[string]domain.Transaction),
		jobs:          make(map[string]domain.NotificationJob),
	}, nil
}

func (s *Store) unwrap(tx usecase.Transaction) (*Tx, error) {
	t, ok := tx.(*Tx)
	if !ok || t.store != s {
		return nil, errForeignTx
	}
	if t.done {
		return nil, errors.New("memory: transaction already finished")
	}
	return t, nil
}
