package memory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/gofunds/internal/domain"
	"github.com/iho/gofunds/internal/usecase"
)

// CustomerRepository implements usecase.CustomerRepository.
type CustomerRepository struct {
	store *Store
}

// NewCustomerRepository creates a new CustomerRepository.
func NewCustomerRepository(store *Store) *CustomerRepository {
	return &CustomerRepository{store: store}
}

func (r *CustomerRepository) Create(_ context.Context, tx usecase.Transaction, customer *domain.Customer) error {
	t, err := r.store.unwrap(tx)
	if err != nil {
		return err
	}

	r.store.mu.RLock()
	_, idTaken := r.store.customers[customer.ID]
	_, emailTaken := r.store.emails[customer.Email]
	r.store.mu.RUnlock()

	for _, staged := range t.customers {
		if staged.Email == customer.Email {
			emailTaken = true
		}
	}
	if _, ok := t.customers[customer.ID]; ok {
		idTaken = true
	}

	switch {
	case idTaken:
		return domain.Validation("customer %s already exists", customer.ID)
	case emailTaken:
		return domain.Validation("a customer with email %s already exists", customer.Email)
	}

	c := *customer
	c.Version = 1
	t.customers[c.ID] = c
	customer.Version = c.Version
	return nil
}

func (r *CustomerRepository) GetByID(_ context.Context, id string) (*domain.Customer, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	c, ok := r.store.customers[id]
	if !ok {
		return nil, domain.NotFound(domain.EntityCustomer, id)
	}
	return &c, nil
}

// GetByIDForUpdate reads through the transaction's staged writes. The store admits a
// single writer, so the row is effectively locked.
func (r *CustomerRepository) GetByIDForUpdate(_ context.Context, tx usecase.Transaction, id string) (*domain.Customer, error) {
	t, err := r.store.unwrap(tx)
	if err != nil {
		return nil, err
	}

	if c, ok := t.customers[id]; ok {
		return &c, nil
	}
	return r.GetByID(context.Background(), id)
}

func (r *CustomerRepository) GetByEmail(_ context.Context, email string) (*domain.Customer, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	id, ok := r.store.emails[email]
	if !ok {
		return nil, domain.NotFound(domain.EntityCustomer, email)
	}
	c := r.store.customers[id]
	return &c, nil
}

func (r *CustomerRepository) Update(ctx context.Context, tx usecase.Transaction, customer *domain.Customer) error {
	t, err := r.store.unwrap(tx)
	if err != nil {
		return err
	}

	current, err := r.GetByIDForUpdate(ctx, tx, customer.ID)
	if err != nil {
		return err
	}
	if current.Version != customer.Version {
		return domain.ErrVersionConflict
	}

	c := *customer
	c.Version++
	t.customers[c.ID] = c
	customer.Version = c.Version
	return nil
}

func (r *CustomerRepository) List(_ context.Context, limit, offset int) ([]*domain.Customer, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	all := make([]*domain.Customer, 0, len(r.store.customers))
	for _, c := range r.store.customers {
		c := c
		all = append(all, &c)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	return page(all, limit, offset), nil
}

// FundRepository implements usecase.FundRepository.
type FundRepository struct {
	store *Store
}

// NewFundRepository creates a new FundRepository.
func NewFundRepository(store *Store) *FundRepository {
	return &FundRepository{store: store}
}

func (r *FundRepository) Create(_ context.Context, fund *domain.Fund) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.funds[fund.ID]; ok {
		return domain.Validation("fund %s already exists", fund.ID)
	}
	r.store.funds[fund.ID] = *fund
	return nil
}

func (r *FundRepository) Update(_ context.Context, fund *domain.Fund) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.funds[fund.ID]; !ok {
		return domain.NotFound(domain.EntityFund, fund.ID)
	}
	r.store.funds[fund.ID] = *fund
	return nil
}

func (r *FundRepository) GetByID(_ context.Context, id string) (*domain.Fund, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	f, ok := r.store.funds[id]
	if !ok {
		return nil, domain.NotFound(domain.EntityFund, id)
	}
	return &f, nil
}

func (r *FundRepository) List(_ context.Context, activeOnly bool) ([]*domain.Fund, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	funds := make([]*domain.Fund, 0, len(r.store.funds))
	for _, f := range r.store.funds {
		if activeOnly && !f.Active {
			continue
		}
		f := f
		funds = append(funds, &f)
	}
	sort.Slice(funds, func(i, j int) bool { return funds[i].Name < funds[j].Name })
	return funds, nil
}

// SubscriptionRepository implements usecase.SubscriptionRepository.
type SubscriptionRepository struct {
	store *Store
}

// NewSubscriptionRepository creates a new SubscriptionRepository.
func NewSubscriptionRepository(store *Store) *SubscriptionRepository {
	return &SubscriptionRepository{store: store}
}

func (r *SubscriptionRepository) Create(ctx context.Context, tx usecase.Transaction, sub *domain.Subscription) error {
	t, err := r.store.unwrap(tx)
	if err != nil {
		return err
	}

	if sub.IsActive() {
		exists, err := r.HasActiveSubscription(ctx, tx, sub.CustomerID, sub.FundID)
		if err != nil {
			return err
		}
		if exists {
			return &domain.Error{Kind: domain.KindDuplicateActiveSubscription, Entity: domain.EntityFund, ID: sub.FundID}
		}
	}

	t.subscriptions[sub.ID] = *sub
	return nil
}

func (r *SubscriptionRepository) GetByID(_ context.Context, id string) (*domain.Subscription, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	s, ok := r.store.subscriptions[id]
	if !ok {
		return nil, domain.NotFound(domain.EntitySubscription, id)
	}
	return &s, nil
}

func (r *SubscriptionRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Subscription, error) {
	t, err := r.store.unwrap(tx)
	if err != nil {
		return nil, err
	}

	if s, ok := t.subscriptions[id]; ok {
		return &s, nil
	}
	return r.GetByID(ctx, id)
}

func (r *SubscriptionRepository) Update(ctx context.Context, tx usecase.Transaction, sub *domain.Subscription) error {
	t, err := r.store.unwrap(tx)
	if err != nil {
		return err
	}

	if _, err := r.GetByIDForUpdate(ctx, tx, sub.ID); err != nil {
		return err
	}

	t.subscriptions[sub.ID] = *sub
	return nil
}

func (r *SubscriptionRepository) HasActiveSubscription(_ context.Context, tx usecase.Transaction, customerID, fundID string) (bool, error) {
	t, err := r.store.unwrap(tx)
	if err != nil {
		return false, err
	}

	for _, s := range t.subscriptions {
		if s.CustomerID == customerID && s.FundID == fundID && s.IsActive() {
			return true, nil
		}
	}

	r.store.mu.RLock()
	id, ok := r.store.active[activeKey(customerID, fundID)]
	r.store.mu.RUnlock()
	if !ok {
		return false, nil
	}

	// staged cancellation of the committed active row
	if staged, ok := t.subscriptions[id]; ok && !staged.IsActive() {
		return false, nil
	}
	return true, nil
}

func (r *SubscriptionRepository) ListByCustomer(_ context.Context, customerID string, activeOnly bool) ([]*domain.Subscription, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	subs := make([]*domain.Subscription, 0)
	for _, s := range r.store.subscriptions {
		if s.CustomerID != customerID || (activeOnly && !s.IsActive()) {
			continue
		}
		s := s
		subs = append(subs, &s)
	}
	sort.Slice(subs, func(i, j int) bool { return subs[i].ID > subs[j].ID })
	return subs, nil
}

// TransactionRepository implements usecase.TransactionRepository.
type TransactionRepository struct {
	store *Store
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(store *Store) *TransactionRepository {
	return &TransactionRepository{store: store}
}

func (r *TransactionRepository) Create(_ context.Context, tx usecase.Transaction, entry *domain.Transaction) error {
	t, err := r.store.unwrap(tx)
	if err != nil {
		return err
	}

	r.store.mu.RLock()
	_, exists := r.store.transactions[entry.ID]
	r.store.mu.RUnlock()
	if _, staged := t.transactions[entry.ID]; exists || staged {
		return domain.Validation("transaction %s already exists", entry.ID)
	}

	t.transactions[entry.ID] = *entry
	return nil
}

func (r *TransactionRepository) GetByID(_ context.Context, id string) (*domain.Transaction, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	e, ok := r.store.transactions[id]
	if !ok {
		return nil, domain.NotFound(domain.EntityTransaction, id)
	}
	return &e, nil
}

func (r *TransactionRepository) GetHistory(_ context.Context, customerID string, pageSize int, cursor string) ([]*domain.Transaction, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	entries := make([]*domain.Transaction, 0)
	for _, e := range r.store.transactions {
		if e.CustomerID != customerID || (cursor != "" && e.ID >= cursor) {
			continue
		}
		e := e
		entries = append(entries, &e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].ID > entries[j].ID })

	if len(entries) > pageSize {
		entries = entries[:pageSize]
	}
	return entries, nil
}

func (r *TransactionRepository) ListBySubscription(_ context.Context, subscriptionID string) ([]*domain.Transaction, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	entries := make([]*domain.Transaction, 0)
	for _, e := range r.store.transactions {
		if e.SubscriptionID == nil || *e.SubscriptionID != subscriptionID {
			continue
		}
		e := e
		entries = append(entries, &e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })
	return entries, nil
}

// LedgerRepository implements usecase.LedgerRepository.
type LedgerRepository struct {
	store *Store
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(store *Store) *LedgerRepository {
	return &LedgerRepository{store: store}
}

func (r *LedgerRepository) CustomerTotals(_ context.Context) ([]*usecase.CustomerLedgerTotals, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	byCustomer := make(map[string]*usecase.CustomerLedgerTotals, len(r.store.customers))
	for id, c := range r.store.customers {
		byCustomer[id] = &usecase.CustomerLedgerTotals{
			CustomerID:          id,
			Balance:             c.Balance,
			LedgerBalance:       decimal.Zero,
			ActiveSubscriptions: decimal.Zero,
			NetSubscribed:       decimal.Zero,
		}
	}

	for _, e := range r.store.transactions {
		t, ok := byCustomer[e.CustomerID]
		if !ok || e.Status != domain.TransactionStatusCompleted {
			continue
		}
		t.LedgerBalance = t.LedgerBalance.Add(e.BalanceEffect())
		switch e.Type {
		case domain.TransactionTypeSubscription:
			t.NetSubscribed = t.NetSubscribed.Add(e.Amount)
		case domain.TransactionTypeCancellation:
			t.NetSubscribed = t.NetSubscribed.Sub(e.Amount)
		}
	}

	for _, s := range r.store.subscriptions {
		if t, ok := byCustomer[s.CustomerID]; ok && s.IsActive() {
			t.ActiveSubscriptions = t.ActiveSubscriptions.Add(s.Amount)
		}
	}

	totals := make([]*usecase.CustomerLedgerTotals, 0, len(byCustomer))
	for _, t := range byCustomer {
		totals = append(totals, t)
	}
	sort.Slice(totals, func(i, j int) bool { return totals[i].CustomerID < totals[j].CustomerID })
	return totals, nil
}

// NotificationOutbox implements usecase.NotificationOutbox.
type NotificationOutbox struct {
	store   *Store
	claimed map[string]time.Time
}

// NewNotificationOutbox creates a new NotificationOutbox.
func NewNotificationOutbox(store *Store) *NotificationOutbox {
	return &NotificationOutbox{store: store, claimed: make(map[string]time.Time)}
}

func (o *NotificationOutbox) Enqueue(_ context.Context, tx usecase.Transaction, job *domain.NotificationJob) error {
	t, err := o.store.unwrap(tx)
	if err != nil {
		return err
	}
	t.jobs[job.ID] = *job
	return nil
}

func (o *NotificationOutbox) ClaimPending(_ context.Context, limit int) ([]*domain.NotificationJob, error) {
	o.store.mu.Lock()
	defer o.store.mu.Unlock()

	pending := make([]domain.NotificationJob, 0)
	for _, j := range o.store.jobs {
		if j.Status == domain.NotificationStatusPending {
			pending = append(pending, j)
		}
	}
	sort.Slice(pending, func(i, j int) bool {
		if pending[i].CreatedAt.Equal(pending[j].CreatedAt) {
			return pending[i].ID < pending[j].ID
		}
		return pending[i].CreatedAt.Before(pending[j].CreatedAt)
	})
	if len(pending) > limit {
		pending = pending[:limit]
	}

	now := time.Now().UTC()
	jobs := make([]*domain.NotificationJob, 0, len(pending))
	for _, j := range pending {
		j.Status = domain.NotificationStatusProcessing
		j.Attempts++
		o.store.jobs[j.ID] = j
		o.claimed[j.ID] = now
		j := j
		jobs = append(jobs, &j)
	}
	return jobs, nil
}

func (o *NotificationOutbox) MarkSent(_ context.Context, id string, at time.Time) error {
	return o.finish(id, domain.NotificationStatusSent, "", at)
}

func (o *NotificationOutbox) MarkFailed(_ context.Context, id, reason string, at time.Time) error {
	return o.finish(id, domain.NotificationStatusFailed, reason, at)
}

func (o *NotificationOutbox) finish(id string, status domain.NotificationStatus, reason string, at time.Time) error {
	o.store.mu.Lock()
	defer o.store.mu.Unlock()

	j, ok := o.store.jobs[id]
	if !ok {
		return domain.Validation("notification job %s not found", id)
	}
	j.Status = status
	j.LastError = reason
	j.ProcessedAt = &at
	o.store.jobs[id] = j
	delete(o.claimed, id)
	return nil
}

func (o *NotificationOutbox) ReleaseStale(_ context.Context, olderThan time.Time) (int64, error) {
	o.store.mu.Lock()
	defer o.store.mu.Unlock()

	var released int64
	for id, claimedAt := range o.claimed {
		j, ok := o.store.jobs[id]
		if !ok || j.Status != domain.NotificationStatusProcessing || !claimedAt.Before(olderThan) {
			continue
		}
		j.Status = domain.NotificationStatusPending
		o.store.jobs[id] = j
		delete(o.claimed, id)
		released++
	}
	return released, nil
}

// Jobs returns a snapshot of every job, oldest first.
func (o *NotificationOutbox) Jobs() []domain.NotificationJob {
	o.store.mu.RLock()
	defer o.store.mu.RUnlock()

	jobs := make([]domain.NotificationJob, 0, len(o.store.jobs))
	for _, j := range o.store.jobs {
		jobs = append(jobs, j)
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].ID < jobs[j].ID })
	return jobs
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return items[:0]
	}
	items = items[offset:]
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}
