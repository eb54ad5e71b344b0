package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/iliyamo/retail-pos/internal/model"
	"github.com/iliyamo/retail-pos/internal/utils"
)

// MemoryStore is the process-local fallback backend, used only when no
// relational store is reachable at startup. It implements every store
// interface behind one mutex; nothing survives a restart. It mirrors the
// relational behavior exactly: guarded stock decrements, nullable
// category resolution, expired-token rejection.
type MemoryStore struct {
	mu sync.RWMutex

	nextUserID uint64
	nextItemID uint64
	users      map[uint64]model.User
	tokens     map[string]model.RefreshToken // keyed by token hash
	categories map[string]model.Category
	products   map[string]model.Product
	txs        map[string]model.Transaction
	txItems    map[string][]model.TransactionItem // keyed by transaction id
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:      map[uint64]model.User{},
		tokens:     map[string]model.RefreshToken{},
		categories: map[string]model.Category{},
		products:   map[string]model.Product{},
		txs:        map[string]model.Transaction{},
		txItems:    map[string][]model.TransactionItem{},
	}
}

// ----- UserStore -----

func (m *MemoryStore) Create(ctx context.Context, username, password, role string, cost int) (uint64, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username {
			return 0, ErrConflict
		}
	}
	m.nextUserID++
	u := model.User{
		ID:           m.nextUserID,
		Username:     username,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}
	m.users[u.ID] = u
	return u.ID, nil
}

func (m *MemoryStore) GetByUsername(ctx context.Context, username string) (model.User, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return model.User{}, ErrNotFound
}

func (m *MemoryStore) GetByID(ctx context.Context, id uint64) (model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return model.User{}, ErrNotFound
	}
	return u, nil
}

func (m *MemoryStore) List(ctx context.Context) ([]model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryStore) Delete(ctx context.Context, id uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return ErrNotFound
	}
	delete(m.users, id)
	for hash, t := range m.tokens {
		if t.UserID == id {
			delete(m.tokens, hash)
		}
	}
	return nil
}

// ----- TokenStore -----

func (m *MemoryStore) StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[tokenHash] = model.RefreshToken{
		UserID:    userID,
		TokenHash: tokenHash,
		ExpiresAt: exp,
		CreatedAt: time.Now().UTC(),
	}
	return nil
}

func (m *MemoryStore) ValidateRefresh(ctx context.Context, tokenHash string) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tokens[tokenHash]
	if !ok {
		return 0, ErrNotFound
	}
	if time.Now().UTC().After(t.ExpiresAt) {
		delete(m.tokens, tokenHash)
		return 0, ErrNotFound
	}
	return t.UserID, nil
}

func (m *MemoryStore) DeleteByHash(ctx context.Context, tokenHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tokens, tokenHash)
	return nil
}

func (m *MemoryStore) DeleteAllForUser(ctx context.Context, userID uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for hash, t := range m.tokens {
		if t.UserID == userID {
			delete(m.tokens, hash)
		}
	}
	return nil
}

// ----- CategoryStore -----

func (m *MemoryStore) CreateCategory(ctx context.Context, c *model.Category) error {
	if c.ID == "" {
		c.ID = utils.NewCategoryID()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.categories[c.ID]; ok {
		return ErrConflict
	}
	for _, existing := range m.categories {
		if existing.Name == c.Name {
			return ErrConflict
		}
	}
	c.CreatedAt = time.Now().UTC()
	m.categories[c.ID] = *c
	return nil
}

func (m *MemoryStore) GetCategory(ctx context.Context, id string) (model.Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.categories[id]
	if !ok {
		return model.Category{}, ErrNotFound
	}
	return c, nil
}

func (m *MemoryStore) ListCategories(ctx context.Context) ([]model.Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.Category, 0, len(m.categories))
	for _, c := range m.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MemoryStore) UpdateCategory(ctx context.Context, c *model.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.categories[c.ID]
	if !ok {
		return ErrNotFound
	}
	for id, existing := range m.categories {
		if id != c.ID && existing.Name == c.Name {
			return ErrConflict
		}
	}
	cur.Name = c.Name
	m.categories[c.ID] = cur
	return nil
}

func (m *MemoryStore) DeleteCategory(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.categories[id]; !ok {
		return ErrNotFound
	}
	delete(m.categories, id)
	// ON DELETE SET NULL equivalent.
	for pid, p := range m.products {
		if p.CategoryID != nil && *p.CategoryID == id {
			p.CategoryID = nil
			m.products[pid] = p
		}
	}
	return nil
}

// ----- ProductStore -----

func (m *MemoryStore) CreateProduct(ctx context.Context, p *model.Product) error {
	if p.ID == "" {
		p.ID = utils.NewProductID()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[p.ID]; ok {
		return ErrConflict
	}
	if p.Barcode != nil {
		for _, existing := range m.products {
			if existing.Barcode != nil && *existing.Barcode == *p.Barcode {
				return ErrConflict
			}
		}
	}
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	m.products[p.ID] = *p
	return nil
}

func (m *MemoryStore) GetProduct(ctx context.Context, id string) (ProductDetail, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.products[id]
	if !ok {
		return ProductDetail{}, ErrNotFound
	}
	return m.detailLocked(p), nil
}

func (m *MemoryStore) GetProductByBarcode(ctx context.Context, barcode string) (ProductDetail, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.products {
		if p.Barcode != nil && *p.Barcode == barcode {
			return m.detailLocked(p), nil
		}
	}
	return ProductDetail{}, ErrNotFound
}

func (m *MemoryStore) ListProducts(ctx context.Context) ([]ProductDetail, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]ProductDetail, 0, len(m.products))
	for _, p := range m.products {
		out = append(out, m.detailLocked(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryStore) UpdateProduct(ctx context.Context, p *model.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.products[p.ID]
	if !ok {
		return ErrNotFound
	}
	if p.Barcode != nil {
		for id, existing := range m.products {
			if id != p.ID && existing.Barcode != nil && *existing.Barcode == *p.Barcode {
				return ErrConflict
			}
		}
	}
	p.CreatedAt = cur.CreatedAt
	p.UpdatedAt = time.Now().UTC()
	m.products[p.ID] = *p
	return nil
}

func (m *MemoryStore) DeleteProduct(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[id]; !ok {
		return ErrNotFound
	}
	delete(m.products, id)
	return nil
}

// detailLocked resolves the category name; callers hold at least a read lock.
func (m *MemoryStore) detailLocked(p model.Product) ProductDetail {
	d := ProductDetail{Product: p, CategoryName: UncategorizedName}
	if p.CategoryID != nil {
		if c, ok := m.categories[*p.CategoryID]; ok {
			d.CategoryName = c.Name
		}
	}
	return d
}

// ----- SaleStore -----

// RecordSale validates every line under the lock before applying any
// write, preserving the all-or-nothing contract of the SQL backend.
func (m *MemoryStore) RecordSale(ctx context.Context, in SaleInput) (SaleResult, error) {
	if len(in.Items) == 0 {
		return SaleResult{}, ErrNotFound
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	// Phase one: check every product and its stock; write nothing yet.
	need := map[string]int64{}
	for _, it := range in.Items {
		need[it.ProductID] += it.Quantity
	}
	for pid, qty := range need {
		p, ok := m.products[pid]
		if !ok {
			return SaleResult{}, ErrNotFound
		}
		if p.Stock < qty {
			return SaleResult{}, ErrInsufficientStock
		}
	}

	// Phase two: apply header, items, decrements.
	now := time.Now().UTC()
	id := utils.NewTransactionID(now)
	// Two sales in the same millisecond would share an id; bump forward.
	for _, taken := m.txs[id]; taken; _, taken = m.txs[id] {
		now = now.Add(time.Millisecond)
		id = utils.NewTransactionID(now)
	}
	m.txs[id] = model.Transaction{
		ID:            id,
		TotalAmount:   in.TotalAmount,
		PaymentAmount: in.PaymentAmount,
		ChangeAmount:  in.ChangeAmount,
		Discount:      in.Discount,
		PaymentMethod: in.PaymentMethod,
		CashierID:     in.CashierID,
		CreatedAt:     now,
	}
	items := make([]model.TransactionItem, 0, len(in.Items))
	for _, it := range in.Items {
		m.nextItemID++
		items = append(items, model.TransactionItem{
			ID:              m.nextItemID,
			TransactionID:   id,
			ProductID:       it.ProductID,
			ProductName:     it.ProductName,
			PriceAtSale:     it.PriceAtSale,
			CostPriceAtSale: it.CostPriceAtSale,
			Quantity:        it.Quantity,
		})
	}
	m.txItems[id] = items
	for pid, qty := range need {
		p := m.products[pid]
		p.Stock -= qty
		p.UpdatedAt = now
		m.products[pid] = p
	}
	return SaleResult{TransactionID: id, CreatedAt: now}, nil
}

func (m *MemoryStore) GetSale(ctx context.Context, id string) (model.Transaction, []model.TransactionItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.txs[id]
	if !ok {
		return model.Transaction{}, nil, ErrNotFound
	}
	items := append([]model.TransactionItem(nil), m.txItems[id]...)
	return t, items, nil
}

func (m *MemoryStore) ListSales(ctx context.Context, from, to time.Time) ([]model.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.Transaction, 0, len(m.txs))
	for _, t := range m.txs {
		if !from.IsZero() && t.CreatedAt.Before(from) {
			continue
		}
		if !to.IsZero() && !t.CreatedAt.Before(to) {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MemoryStore) DeleteSale(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.txs[id]; !ok {
		return ErrNotFound
	}
	delete(m.txs, id)
	delete(m.txItems, id)
	return nil
}

func (m *MemoryStore) DeleteAllSales(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := int64(len(m.txs))
	m.txs = map[string]model.Transaction{}
	m.txItems = map[string][]model.TransactionItem{}
	return n, nil
}

// ----- ReportStore -----

func (m *MemoryStore) DailySales(ctx context.Context, from, to time.Time) ([]DailySalesRow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	byDay := map[string]*DailySalesRow{}
	for _, t := range m.txs {
		if !inRange(t.CreatedAt, from, to) {
			continue
		}
		day := t.CreatedAt.Format("2006-01-02")
		row, ok := byDay[day]
		if !ok {
			row = &DailySalesRow{Day: day}
			byDay[day] = row
		}
		row.Transactions++
		row.Total += t.TotalAmount
	}
	out := make([]DailySalesRow, 0, len(byDay))
	for _, row := range byDay {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day > out[j].Day })
	return out, nil
}

func (m *MemoryStore) TopProducts(ctx context.Context, limit int, from, to time.Time) ([]TopProductRow, error) {
	if limit <= 0 {
		limit = 10
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	byProduct := map[string]*TopProductRow{}
	for txID, items := range m.txItems {
		t, ok := m.txs[txID]
		if !ok || !inRange(t.CreatedAt, from, to) {
			continue
		}
		for _, it := range items {
			row, ok := byProduct[it.ProductID]
			if !ok {
				row = &TopProductRow{ProductID: it.ProductID, ProductName: it.ProductName}
				byProduct[it.ProductID] = row
			}
			row.QuantitySold += it.Quantity
			row.Revenue += float64(it.Quantity) * it.PriceAtSale
		}
	}
	out := make([]TopProductRow, 0, len(byProduct))
	for _, row := range byProduct {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].QuantitySold > out[j].QuantitySold })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemoryStore) ProfitLoss(ctx context.Context, from, to time.Time, categoryID string) (ProfitLossReport, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var rep ProfitLossReport
	for txID, items := range m.txItems {
		t, ok := m.txs[txID]
		if !ok || !inRange(t.CreatedAt, from, to) {
			continue
		}
		counted := false
		for _, it := range items {
			if categoryID != "" {
				p, ok := m.products[it.ProductID]
				if !ok || p.CategoryID == nil || *p.CategoryID != categoryID {
					continue
				}
			}
			rep.Revenue += float64(it.Quantity) * it.PriceAtSale
			rep.Cost += float64(it.Quantity) * it.CostPriceAtSale
			counted = true
		}
		if counted {
			rep.Transactions++
		}
	}
	rep.Profit = rep.Revenue - rep.Cost
	return rep, nil
}

func inRange(ts, from, to time.Time) bool {
	if !from.IsZero() && ts.Before(from) {
		return false
	}
	if !to.IsZero() && !ts.Before(to) {
		return false
	}
	return true
}

// Adapters exposing MemoryStore's per-entity methods under the interface
// method names. UserStore and TokenStore are implemented directly; the
// remaining interfaces share method names (Create, GetByID, List, Delete)
// so each gets a thin view.

type memoryCategories struct{ m *MemoryStore }

func (a memoryCategories) Create(ctx context.Context, c *model.Category) error {
	return a.m.CreateCategory(ctx, c)
}
func (a memoryCategories) GetByID(ctx context.Context, id string) (model.Category, error) {
	return a.m.GetCategory(ctx, id)
}
func (a memoryCategories) List(ctx context.Context) ([]model.Category, error) {
	return a.m.ListCategories(ctx)
}
func (a memoryCategories) Update(ctx context.Context, c *model.Category) error {
	return a.m.UpdateCategory(ctx, c)
}
func (a memoryCategories) Delete(ctx context.Context, id string) error {
	return a.m.DeleteCategory(ctx, id)
}

type memoryProducts struct{ m *MemoryStore }

func (a memoryProducts) Create(ctx context.Context, p *model.Product) error {
	return a.m.CreateProduct(ctx, p)
}
func (a memoryProducts) GetByID(ctx context.Context, id string) (ProductDetail, error) {
	return a.m.GetProduct(ctx, id)
}
func (a memoryProducts) GetByBarcode(ctx context.Context, barcode string) (ProductDetail, error) {
	return a.m.GetProductByBarcode(ctx, barcode)
}
func (a memoryProducts) List(ctx context.Context) ([]ProductDetail, error) {
	return a.m.ListProducts(ctx)
}
func (a memoryProducts) Update(ctx context.Context, p *model.Product) error {
	return a.m.UpdateProduct(ctx, p)
}
func (a memoryProducts) Delete(ctx context.Context, id string) error {
	return a.m.DeleteProduct(ctx, id)
}

type memorySales struct{ m *MemoryStore }

func (a memorySales) RecordSale(ctx context.Context, in SaleInput) (SaleResult, error) {
	return a.m.RecordSale(ctx, in)
}
func (a memorySales) GetByID(ctx context.Context, id string) (model.Transaction, []model.TransactionItem, error) {
	return a.m.GetSale(ctx, id)
}
func (a memorySales) List(ctx context.Context, from, to time.Time) ([]model.Transaction, error) {
	return a.m.ListSales(ctx, from, to)
}
func (a memorySales) Delete(ctx context.Context, id string) error {
	return a.m.DeleteSale(ctx, id)
}
func (a memorySales) DeleteAll(ctx context.Context) (int64, error) {
	return a.m.DeleteAllSales(ctx)
}
