package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yourorg/swiftstore/internal/domain"
)

// In-memory repository fakes shared by the service tests.

type memStoreRepo struct {
	byID  map[string]*domain.Store
	bySub map[string]*domain.Store
	seq   int
}

func newMemStoreRepo() *memStoreRepo {
	return &memStoreRepo{byID: map[string]*domain.Store{}, bySub: map[string]*domain.Store{}}
}

func (m *memStoreRepo) Create(ctx context.Context, s *domain.Store) error {
	if _, ok := m.bySub[s.Subdomain]; ok {
		return domain.ErrDuplicateSubdomain
	}
	if s.ID == "" {
		m.seq++
		s.ID = fmt.Sprintf("store-%d", m.seq)
	}
	s.CreatedAt = time.Now()
	s.UpdatedAt = s.CreatedAt
	m.byID[s.ID] = s
	m.bySub[s.Subdomain] = s
	return nil
}

func (m *memStoreRepo) GetByID(ctx context.Context, id string) (*domain.Store, error) {
	if s, ok := m.byID[id]; ok {
		return s, nil
	}
	return nil, domain.ErrNotFound
}

func (m *memStoreRepo) GetBySubdomain(ctx context.Context, sub string) (*domain.Store, error) {
	if s, ok := m.bySub[sub]; ok {
		return s, nil
	}
	return nil, domain.ErrNotFound
}

func (m *memStoreRepo) RefBySubdomain(ctx context.Context, sub string) (*domain.StoreRef, error) {
	if s, ok := m.bySub[sub]; ok {
		return &domain.StoreRef{ID: s.ID, Subdomain: s.Subdomain}, nil
	}
	return nil, domain.ErrNotFound
}

func (m *memStoreRepo) GetByUserID(ctx context.Context, userID string) (*domain.Store, error) {
	for _, s := range m.byID {
		if s.UserID == userID {
			return s, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memStoreRepo) Update(ctx context.Context, s *domain.Store) error {
	if _, ok := m.byID[s.ID]; !ok {
		return domain.ErrNotFound
	}
	s.UpdatedAt = time.Now()
	m.byID[s.ID] = s
	m.bySub[s.Subdomain] = s
	return nil
}

type memProductRepo struct {
	products     map[string]*domain.Product
	variants     map[string]*domain.ProductVariant
	variantStore map[string]string // variant id -> store id
	seq          int
}

func newMemProductRepo() *memProductRepo {
	return &memProductRepo{
		products:     map[string]*domain.Product{},
		variants:     map[string]*domain.ProductVariant{},
		variantStore: map[string]string{},
	}
}

func (m *memProductRepo) Create(ctx context.Context, p *domain.Product) error {
	if p.ID == "" {
		m.seq++
		p.ID = fmt.Sprintf("prod-%d", m.seq)
	}
	for i := range p.Variants {
		v := &p.Variants[i]
		if v.ID == "" {
			m.seq++
			v.ID = fmt.Sprintf("var-%d", m.seq)
		}
		v.ProductID = p.ID
		cp := *v
		m.variants[v.ID] = &cp
		m.variantStore[v.ID] = p.StoreID
	}
	m.products[p.ID] = p
	return nil
}

func (m *memProductRepo) GetByID(ctx context.Context, storeID, productID string) (*domain.Product, error) {
	p, ok := m.products[productID]
	if !ok || p.StoreID != storeID {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

func (m *memProductRepo) ListByStore(ctx context.Context, storeID string, publishedOnly bool) ([]*domain.Product, error) {
	var out []*domain.Product
	for _, p := range m.products {
		if p.StoreID != storeID {
			continue
		}
		if publishedOnly && !p.Published {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (m *memProductRepo) Update(ctx context.Context, p *domain.Product) error {
	existing, ok := m.products[p.ID]
	if !ok || existing.StoreID != p.StoreID {
		return domain.ErrNotFound
	}
	m.products[p.ID] = p
	return nil
}

func (m *memProductRepo) Delete(ctx context.Context, storeID, productID string) error {
	p, ok := m.products[productID]
	if !ok || p.StoreID != storeID {
		return domain.ErrNotFound
	}
	delete(m.products, productID)
	return nil
}

func (m *memProductRepo) CreateVariant(ctx context.Context, v *domain.ProductVariant) error {
	if v.ID == "" {
		m.seq++
		v.ID = fmt.Sprintf("var-%d", m.seq)
	}
	p, ok := m.products[v.ProductID]
	if !ok {
		return domain.ErrNotFound
	}
	cp := *v
	m.variants[v.ID] = &cp
	m.variantStore[v.ID] = p.StoreID
	return nil
}

func (m *memProductRepo) GetVariant(ctx context.Context, variantID string) (*domain.ProductVariant, string, error) {
	v, ok := m.variants[variantID]
	if !ok {
		return nil, "", domain.ErrNotFound
	}
	cp := *v
	return &cp, m.variantStore[variantID], nil
}

func (m *memProductRepo) ListVariants(ctx context.Context, productID string) ([]*domain.ProductVariant, error) {
	var out []*domain.ProductVariant
	for _, v := range m.variants {
		if v.ProductID == productID {
			out = append(out, v)
		}
	}
	return out, nil
}

func (m *memProductRepo) DeleteVariant(ctx context.Context, productID, variantID string) error {
	v, ok := m.variants[variantID]
	if !ok || v.ProductID != productID {
		return domain.ErrNotFound
	}
	delete(m.variants, variantID)
	delete(m.variantStore, variantID)
	return nil
}

func (m *memProductRepo) stock(variantID string) int {
	return m.variants[variantID].Stock
}

type memCustomerRepo struct {
	customers map[string]*domain.Customer
	seq       int
}

func newMemCustomerRepo() *memCustomerRepo {
	return &memCustomerRepo{customers: map[string]*domain.Customer{}}
}

func (m *memCustomerRepo) Create(ctx context.Context, c *domain.Customer) error {
	for _, existing := range m.customers {
		if existing.StoreID == c.StoreID && existing.Email == c.Email {
			return errors.New("duplicate customer email in store")
		}
	}
	if c.ID == "" {
		m.seq++
		c.ID = fmt.Sprintf("cust-%d", m.seq)
	}
	c.CreatedAt = time.Now()
	m.customers[c.ID] = c
	return nil
}

func (m *memCustomerRepo) GetByID(ctx context.Context, storeID, customerID string) (*domain.Customer, error) {
	c, ok := m.customers[customerID]
	if !ok || c.StoreID != storeID {
		return nil, domain.ErrNotFound
	}
	return c, nil
}

func (m *memCustomerRepo) GetByEmail(ctx context.Context, storeID, email string) (*domain.Customer, error) {
	for _, c := range m.customers {
		if c.StoreID == storeID && c.Email == email {
			return c, nil
		}
	}
	return nil, domain.ErrNotFound
}

// memOrderRepo mirrors the transactional semantics of the Postgres
// implementation against the in-memory variant table.
type memOrderRepo struct {
	orders   map[string]*domain.Order
	products *memProductRepo
	seq      int
}

func newMemOrderRepo(products *memProductRepo) *memOrderRepo {
	return &memOrderRepo{orders: map[string]*domain.Order{}, products: products}
}

func (m *memOrderRepo) assignIDs(o *domain.Order) {
	if o.ID == "" {
		m.seq++
		o.ID = fmt.Sprintf("order-%d", m.seq)
	}
	for i := range o.Items {
		if o.Items[i].ID == "" {
			m.seq++
			o.Items[i].ID = fmt.Sprintf("item-%d", m.seq)
		}
		o.Items[i].OrderID = o.ID
	}
}

func (m *memOrderRepo) Create(ctx context.Context, o *domain.Order) error {
	m.assignIDs(o)
	o.CreatedAt = time.Now()
	o.UpdatedAt = o.CreatedAt
	m.orders[o.ID] = o
	return nil
}

func (m *memOrderRepo) CreateWithStockDecrement(ctx context.Context, o *domain.Order) error {
	for _, item := range o.Items {
		v, ok := m.products.variants[item.VariantID]
		if !ok {
			return domain.ErrNotFound
		}
		if v.Stock < item.Quantity {
			return &domain.InsufficientStockError{
				VariantName: item.VariantName,
				Requested:   item.Quantity,
				Available:   v.Stock,
			}
		}
	}
	for _, item := range o.Items {
		m.products.variants[item.VariantID].Stock -= item.Quantity
	}
	return m.Create(ctx, o)
}

func (m *memOrderRepo) GetByID(ctx context.Context, storeID, orderID string) (*domain.Order, error) {
	o, ok := m.orders[orderID]
	if !ok || o.StoreID != storeID {
		return nil, domain.ErrNotFound
	}
	return o, nil
}

func (m *memOrderRepo) GetByPaymentID(ctx context.Context, paymentID string) (*domain.Order, error) {
	for _, o := range m.orders {
		if o.PaymentID == paymentID && paymentID != "" {
			return o, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memOrderRepo) ListByStore(ctx context.Context, storeID string) ([]*domain.Order, error) {
	var out []*domain.Order
	for _, o := range m.orders {
		if o.StoreID == storeID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *memOrderRepo) UpdatePaymentID(ctx context.Context, orderID, paymentID string) error {
	o, ok := m.orders[orderID]
	if !ok {
		return domain.ErrNotFound
	}
	o.PaymentID = paymentID
	return nil
}

func (m *memOrderRepo) UpdateStatus(ctx context.Context, orderID string, status domain.OrderStatus) error {
	o, ok := m.orders[orderID]
	if !ok {
		return nil
	}
	if o.Status == domain.OrderPending {
		o.Status = status
		o.UpdatedAt = time.Now()
	}
	return nil
}

func (m *memOrderRepo) MarkPaidAndDecrementStock(ctx context.Context, orderID, paymentID string) ([]string, error) {
	o, ok := m.orders[orderID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if o.Status != domain.OrderPending {
		return nil, nil
	}
	o.Status = domain.OrderPaid
	o.PaymentID = paymentID
	o.UpdatedAt = time.Now()

	var oversold []string
	for _, item := range o.Items {
		v := m.products.variants[item.VariantID]
		if v.Stock >= item.Quantity {
			v.Stock -= item.Quantity
		} else {
			v.Stock = 0
			oversold = append(oversold, item.VariantID)
		}
	}
	return oversold, nil
}

func (m *memOrderRepo) CancelStalePending(ctx context.Context, cutoff time.Time) ([]string, error) {
	var ids []string
	for _, o := range m.orders {
		if o.Status == domain.OrderPending && o.PaymentID != "" && o.CreatedAt.Before(cutoff) {
			o.Status = domain.OrderCancelled
			ids = append(ids, o.ID)
		}
	}
	return ids, nil
}

type memUserRepo struct {
	byID map[string]*domain.User
	seq  int
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{byID: map[string]*domain.User{}}
}

func (m *memUserRepo) Create(ctx context.Context, u *domain.User) error {
	if u.ID == "" {
		m.seq++
		u.ID = fmt.Sprintf("user-%d", m.seq)
	}
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	m.byID[u.ID] = u
	return nil
}

func (m *memUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if u, ok := m.byID[id]; ok {
		return u, nil
	}
	return nil, domain.ErrNotFound
}

func (m *memUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, u := range m.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	for _, u := range m.byID {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memUserRepo) Update(ctx context.Context, u *domain.User) error {
	if _, ok := m.byID[u.ID]; !ok {
		return domain.ErrNotFound
	}
	u.UpdatedAt = time.Now()
	m.byID[u.ID] = u
	return nil
}

// fakeGateway mints deterministic payment ids.
type fakeGateway struct {
	registered   []*domain.PaymentTransaction
	failRegister bool
}

func (g *fakeGateway) ProvisionalPaymentID() string { return "sb_1_provisional" }
func (g *fakeGateway) PaymentIDFor(orderID string) string {
	return "sb_2_" + orderID
}
func (g *fakeGateway) RedirectURL(paymentID string) string {
	return "http://app.test/api/startbutton/process?paymentId=" + paymentID
}
func (g *fakeGateway) Register(ctx context.Context, tx *domain.PaymentTransaction) error {
	if g.failRegister {
		return errors.New("provider down")
	}
	g.registered = append(g.registered, tx)
	return nil
}

// memDeduper claims each key once, like redis SETNX.
type memDeduper struct {
	claimed map[string]bool
}

func newMemDeduper() *memDeduper { return &memDeduper{claimed: map[string]bool{}} }

func (d *memDeduper) ClaimOnce(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if d.claimed[key] {
		return false, nil
	}
	d.claimed[key] = true
	return true, nil
}
