package usecase

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/DRSN-tech/cashier-backend/internal/domain"
	"github.com/DRSN-tech/cashier-backend/pkg/e"
	"github.com/shopspring/decimal"
)

// memStore: хранилище в памяти, общее для всех фейковых репозиториев теста.
type memStore struct {
	mu         sync.Mutex
	seq        int64
	categories map[int64]domain.Category
	products   map[int64]domain.Product
	accounts   map[int64]domain.Account
	orders     map[int64]domain.Order
	outbox     []*OutboxEvent

	// decrementErr подменяет результат DecrementStock
	decrementErr error
}

func newMemStore() *memStore {
	return &memStore{
		categories: map[int64]domain.Category{},
		products:   map[int64]domain.Product{},
		accounts:   map[int64]domain.Account{},
		orders:     map[int64]domain.Order{},
	}
}

func (s *memStore) nextID() int64 {
	s.seq++
	return s.seq
}

type memSnapshot struct {
	seq        int64
	categories map[int64]domain.Category
	products   map[int64]domain.Product
	accounts   map[int64]domain.Account
	orders     map[int64]domain.Order
	outbox     []*OutboxEvent
}

func (s *memStore) snapshot() memSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return memSnapshot{
		seq:        s.seq,
		categories: maps.Clone(s.categories),
		products:   maps.Clone(s.products),
		accounts:   maps.Clone(s.accounts),
		orders:     maps.Clone(s.orders),
		outbox:     slices.Clone(s.outbox),
	}
}

func (s *memStore) restore(snap memSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq = snap.seq
	s.categories = snap.categories
	s.products = snap.products
	s.accounts = snap.accounts
	s.orders = snap.orders
	s.outbox = snap.outbox
}

func (s *memStore) addCategory(name string) domain.Category {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := domain.Category{ID: s.nextID(), Name: name, CreatedAt: time.Now()}
	s.categories[c.ID] = c
	return c
}

func (s *memStore) addProduct(name string, categoryID int64, price string, stock int64) domain.Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := domain.Product{
		ID:         s.nextID(),
		Name:       name,
		CategoryID: categoryID,
		Price:      decimal.RequireFromString(price),
		Stock:      stock,
		CreatedAt:  time.Now(),
	}
	s.products[p.ID] = p
	return p
}

func (s *memStore) addAccount(id int64, username, hash string) domain.Account {
	s.mu.Lock()
	defer s.mu.Unlock()

	a := domain.Account{ID: id, Username: username, PasswordHash: hash, CreatedAt: time.Now()}
	s.accounts[a.ID] = a
	return a
}

func (s *memStore) stock(id int64) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.products[id].Stock
}

func (s *memStore) orderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

func (s *memStore) outboxEvents() []*OutboxEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.outbox)
}

// fakeTxManager сериализует транзакции (как блокировки строк) и откатывает состояние при ошибке.
type fakeTxManager struct {
	mu    sync.Mutex
	store *memStore
}

func (m *fakeTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	snap := m.store.snapshot()
	if err := fn(ctx); err != nil {
		m.store.restore(snap)
		return err
	}

	return nil
}

type memCategoryRepo struct{ s *memStore }

func (r *memCategoryRepo) Create(_ context.Context, c *domain.Category) (*domain.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.categories {
		if existing.Name == c.Name {
			return nil, e.ErrConflict
		}
	}

	c.ID = r.s.nextID()
	c.CreatedAt = time.Now()
	r.s.categories[c.ID] = *c
	return c, nil
}

func (r *memCategoryRepo) Update(_ context.Context, c *domain.Category) (*domain.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.categories[c.ID]; !ok {
		return nil, e.ErrNotFound
	}

	now := time.Now()
	c.UpdatedAt = &now
	r.s.categories[c.ID] = *c
	return c, nil
}

func (r *memCategoryRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.categories[id]; !ok {
		return e.ErrNotFound
	}

	delete(r.s.categories, id)
	for pid, p := range r.s.products {
		if p.CategoryID == id {
			delete(r.s.products, pid)
		}
	}
	return nil
}

func (r *memCategoryRepo) GetByID(_ context.Context, id int64) (*domain.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.categories[id]
	if !ok {
		return nil, e.ErrNotFound
	}
	return &c, nil
}

func (r *memCategoryRepo) List(_ context.Context) ([]domain.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]domain.Category, 0, len(r.s.categories))
	for _, id := range slices.Sorted(maps.Keys(r.s.categories)) {
		out = append(out, r.s.categories[id])
	}
	return out, nil
}

func (r *memCategoryRepo) ExistsByName(_ context.Context, name string, excludeID int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, c := range r.s.categories {
		if c.Name == name && c.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

type memProductRepo struct{ s *memStore }

func (r *memProductRepo) Create(_ context.Context, p *domain.Product) (*domain.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.categories[p.CategoryID]; !ok {
		return nil, e.ErrNotFound
	}

	p.ID = r.s.nextID()
	p.CreatedAt = time.Now()
	r.s.products[p.ID] = *p
	return p, nil
}

func (r *memProductRepo) Update(_ context.Context, p *domain.Product) (*domain.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.products[p.ID]; !ok {
		return nil, e.ErrNotFound
	}

	r.s.products[p.ID] = *p
	return p, nil
}

func (r *memProductRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.products[id]; !ok {
		return e.ErrNotFound
	}
	delete(r.s.products, id)
	return nil
}

func (r *memProductRepo) GetByID(_ context.Context, id int64) (*domain.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.products[id]
	if !ok {
		return nil, e.ErrNotFound
	}
	return &p, nil
}

func (r *memProductRepo) List(_ context.Context) ([]domain.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]domain.Product, 0, len(r.s.products))
	for _, id := range slices.Sorted(maps.Keys(r.s.products)) {
		out = append(out, r.s.products[id])
	}
	return out, nil
}

func (r *memProductRepo) ExistsByName(_ context.Context, name string, excludeID int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, p := range r.s.products {
		if p.Name == name && p.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r *memProductRepo) ListIDsByCategory(_ context.Context, categoryID int64) ([]int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var ids []int64
	for _, p := range r.s.products {
		if p.CategoryID == categoryID {
			ids = append(ids, p.ID)
		}
	}
	slices.Sort(ids)
	return ids, nil
}

func (r *memProductRepo) GetProductsInfo(_ context.Context, ids []int64) ([]domain.ProductInfo, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []domain.ProductInfo
	for _, id := range ids {
		if p, ok := r.s.products[id]; ok {
			out = append(out, domain.NewProductInfo(p.ID, p.Name, r.s.categories[p.CategoryID].Name, p.Price))
		}
	}
	return out, nil
}

func (r *memProductRepo) LockForUpdate(_ context.Context, ids []int64) (map[int64]domain.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make(map[int64]domain.Product, len(ids))
	for _, id := range ids {
		if p, ok := r.s.products[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (r *memProductRepo) DecrementStock(_ context.Context, id int64, quantity int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.s.decrementErr != nil {
		return r.s.decrementErr
	}

	p, ok := r.s.products[id]
	if !ok || p.Stock < quantity {
		return e.ErrInsufficientStock
	}

	p.Stock -= quantity
	r.s.products[id] = p
	return nil
}

type memOrderRepo struct{ s *memStore }

func (r *memOrderRepo) Create(_ context.Context, o *domain.Order) (*domain.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	o.ID = r.s.nextID()
	o.OrderDate = time.Now()
	lines := make([]domain.OrderLine, len(o.Lines))
	for i, l := range o.Lines {
		l.ID = r.s.nextID()
		l.OrderID = o.ID
		lines[i] = l
	}
	o.Lines = lines

	stored := *o
	stored.Lines = slices.Clone(lines)
	r.s.orders[o.ID] = stored
	return o, nil
}

func (r *memOrderRepo) GetByID(_ context.Context, id int64) (*domain.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	o, ok := r.s.orders[id]
	if !ok {
		return nil, e.ErrNotFound
	}
	o.BuyerUsername = r.s.accounts[o.BuyerID].Username
	o.Lines = slices.Clone(o.Lines)
	return &o, nil
}

func (r *memOrderRepo) List(_ context.Context) ([]domain.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]domain.Order, 0, len(r.s.orders))
	for _, id := range slices.Sorted(maps.Keys(r.s.orders)) {
		o := r.s.orders[id]
		o.BuyerUsername = r.s.accounts[o.BuyerID].Username
		o.Lines = slices.Clone(o.Lines)
		out = append(out, o)
	}
	return out, nil
}

func (r *memOrderRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.orders[id]; !ok {
		return e.ErrNotFound
	}
	delete(r.s.orders, id)
	return nil
}

type memAccountRepo struct{ s *memStore }

func (r *memAccountRepo) Create(_ context.Context, a *domain.Account) (*domain.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.accounts {
		if existing.Username == a.Username {
			return nil, e.ErrConflict
		}
	}

	a.ID = r.s.nextID()
	a.CreatedAt = time.Now()
	r.s.accounts[a.ID] = *a
	return a, nil
}

func (r *memAccountRepo) GetByID(_ context.Context, id int64) (*domain.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	a, ok := r.s.accounts[id]
	if !ok {
		return nil, e.ErrNotFound
	}
	return &a, nil
}

func (r *memAccountRepo) GetByUsername(_ context.Context, username string) (*domain.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, a := range r.s.accounts {
		if a.Username == username {
			return &a, nil
		}
	}
	return nil, e.ErrNotFound
}

type memOutboxRepo struct{ s *memStore }

func (r *memOutboxRepo) Create(_ context.Context, ev *OutboxEvent) (*OutboxEvent, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	ev.ID = r.s.nextID()
	ev.CreatedAt = time.Now()
	r.s.outbox = append(r.s.outbox, ev)
	return ev, nil
}

func (r *memOutboxRepo) GetAndMarkAsProcessing(context.Context, int, time.Duration) ([]*OutboxEvent, error) {
	return nil, nil
}

func (r *memOutboxRepo) MarkAsProcessed(context.Context, int64) error { return nil }

func (r *memOutboxRepo) MarkAsFailed(context.Context, int64, string) error { return nil }

// memCache: кэш в памяти; err заставляет все операции падать.
type memCache struct {
	mu   sync.Mutex
	data map[int64]domain.ProductInfo
	err  error
}

func newMemCache() *memCache {
	return &memCache{data: map[int64]domain.ProductInfo{}}
}

func (c *memCache) GetProducts(_ context.Context, ids []int64) (map[int64]domain.ProductInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.err != nil {
		return nil, c.err
	}

	out := make(map[int64]domain.ProductInfo)
	for _, id := range ids {
		if p, ok := c.data[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (c *memCache) SetProducts(_ context.Context, products []domain.ProductInfo) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.err != nil {
		return c.err
	}
	for _, p := range products {
		c.data[p.ID] = p
	}
	return nil
}

func (c *memCache) DeleteProducts(_ context.Context, ids []int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.err != nil {
		return c.err
	}
	for _, id := range ids {
		delete(c.data, id)
	}
	return nil
}

func (c *memCache) has(id int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.data[id]
	return ok
}
