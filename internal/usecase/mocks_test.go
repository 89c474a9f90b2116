package usecase_test

import (
	"context"
	"sync"

	"storefront/internal/domain/model"
	"storefront/internal/payment"
	repo "storefront/internal/repository"

	"github.com/stretchr/testify/mock"
)

// =====================
// Mocks
// =====================

type ProductRepoMock struct{ mock.Mock }

func (m *ProductRepoMock) ListPublic(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	args := m.Called(ctx, q)
	items, _ := args.Get(0).([]model.Product)
	return items, args.Get(1).(int64), args.Error(2)
}

func (m *ProductRepoMock) FindByID(ctx context.Context, productID int64) (model.Product, error) {
	args := m.Called(ctx, productID)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *ProductRepoMock) FindByIDs(ctx context.Context, ids []int64) ([]model.Product, error) {
	args := m.Called(ctx, ids)
	items, _ := args.Get(0).([]model.Product)
	return items, args.Error(1)
}

func (m *ProductRepoMock) Create(ctx context.Context, p model.Product) (model.Product, error) {
	args := m.Called(ctx, p)
	created, _ := args.Get(0).(model.Product)
	return created, args.Error(1)
}

func (m *ProductRepoMock) Update(ctx context.Context, p model.Product) error {
	return m.Called(ctx, p).Error(0)
}

func (m *ProductRepoMock) SoftDelete(ctx context.Context, productID int64) error {
	return m.Called(ctx, productID).Error(0)
}

func (m *ProductRepoMock) SetStock(ctx context.Context, productID int64, stock int64) error {
	return m.Called(ctx, productID, stock).Error(0)
}

type ReviewRepoMock struct{ mock.Mock }

func (m *ReviewRepoMock) Create(ctx context.Context, r model.Review) (model.Review, error) {
	args := m.Called(ctx, r)
	created, _ := args.Get(0).(model.Review)
	return created, args.Error(1)
}

func (m *ReviewRepoMock) ListByProductID(ctx context.Context, productID int64) ([]model.Review, error) {
	args := m.Called(ctx, productID)
	items, _ := args.Get(0).([]model.Review)
	return items, args.Error(1)
}

type UserRepoMock struct{ mock.Mock }

func (m *UserRepoMock) Create(ctx context.Context, u *model.User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *UserRepoMock) FindByID(ctx context.Context, id int64) (*model.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *UserRepoMock) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *UserRepoMock) FindByReferralCode(ctx context.Context, code string) (*model.User, error) {
	args := m.Called(ctx, code)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *UserRepoMock) Update(ctx context.Context, u *model.User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *UserRepoMock) IncrementTokenVersion(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *UserRepoMock) List(ctx context.Context, page int, limit int) ([]model.User, int64, error) {
	args := m.Called(ctx, page, limit)
	items, _ := args.Get(0).([]model.User)
	return items, args.Get(1).(int64), args.Error(2)
}

func (m *UserRepoMock) ListReferredBy(ctx context.Context, id int64) ([]model.User, error) {
	args := m.Called(ctx, id)
	items, _ := args.Get(0).([]model.User)
	return items, args.Error(1)
}

type AuditRepoMock struct{ mock.Mock }

func (m *AuditRepoMock) Create(ctx context.Context, log model.AuditLog) error {
	return m.Called(ctx, log).Error(0)
}

func (m *AuditRepoMock) List(ctx context.Context, filter repo.AuditLogFilter) ([]model.AuditLog, error) {
	args := m.Called(ctx, filter)
	items, _ := args.Get(0).([]model.AuditLog)
	return items, args.Error(1)
}

// TxManagerStub は同じモックをそのままtx内のrepoとして渡す
type TxManagerStub struct {
	products repo.ProductRepository
	users    repo.UserRepository
	audit    repo.AuditLogRepository
}

func (s *TxManagerStub) Products() repo.ProductRepository   { return s.products }
func (s *TxManagerStub) Users() repo.UserRepository         { return s.users }
func (s *TxManagerStub) AuditLogs() repo.AuditLogRepository { return s.audit }

func (s *TxManagerStub) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return fn(s)
}

type CacheMock struct{ mock.Mock }

func (m *CacheMock) Get(ctx context.Context, query any, v any) (bool, error) {
	args := m.Called(ctx, query, v)
	return args.Bool(0), args.Error(1)
}

func (m *CacheMock) Set(ctx context.Context, query any, v any) error {
	return m.Called(ctx, query, v).Error(0)
}

func (m *CacheMock) Invalidate(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type SearchMock struct{ mock.Mock }

func (m *SearchMock) Search(ctx context.Context, q string, from int, size int) ([]int64, int64, error) {
	args := m.Called(ctx, q, from, size)
	ids, _ := args.Get(0).([]int64)
	return ids, args.Get(1).(int64), args.Error(2)
}

func (m *SearchMock) Index(ctx context.Context, p model.Product) error {
	return m.Called(ctx, p).Error(0)
}

func (m *SearchMock) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type ProviderMock struct {
	mock.Mock
	name model.PaymentProvider
}

func (m *ProviderMock) Name() model.PaymentProvider { return m.name }

func (m *ProviderMock) ScriptURL(currency string) string {
	return "https://sdk.example/" + string(m.name) + "?currency=" + currency
}

func (m *ProviderMock) CreateOrder(ctx context.Context, d payment.OrderDescriptor) (string, error) {
	args := m.Called(ctx, d)
	return args.String(0), args.Error(1)
}

func (m *ProviderMock) Capture(ctx context.Context, orderID string, a payment.Approval) error {
	return m.Called(ctx, orderID, a).Error(0)
}

// attemptStore はメモリ上の CheckoutAttemptRepository
type attemptStore struct {
	mu   sync.Mutex
	data map[string]model.CheckoutAttempt
}

func newAttemptStore() *attemptStore {
	return &attemptStore{data: make(map[string]model.CheckoutAttempt)}
}

func (s *attemptStore) Create(ctx context.Context, a model.CheckoutAttempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[a.ID] = a
	return nil
}

func (s *attemptStore) FindByID(ctx context.Context, id string) (model.CheckoutAttempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.data[id]
	if !ok {
		return model.CheckoutAttempt{}, repo.ErrNotFound
	}
	return a, nil
}

func (s *attemptStore) Save(ctx context.Context, a model.CheckoutAttempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[a.ID]; !ok {
		return repo.ErrNotFound
	}
	s.data[a.ID] = a
	return nil
}

type toastRecorder struct {
	mu     sync.Mutex
	levels []model.ToastLevel
}

func (t *toastRecorder) Toast(userID int64, level model.ToastLevel, message string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.levels = append(t.levels, level)
}

// nopWriter はカートの書き込みを捨てる
type nopWriter struct{}

func (nopWriter) PutItem(int64, model.CartItem) {}
func (nopWriter) DeleteItem(int64, int64)       {}
func (nopWriter) DeleteItems(int64, []int64)    {}
