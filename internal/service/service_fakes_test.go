package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/RoyceAzure/lab/telecom_shop/internal/domain/model"
	"github.com/RoyceAzure/lab/telecom_shop/internal/infra/producer"
	"github.com/RoyceAzure/lab/telecom_shop/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/telecom_shop/internal/infra/repository/redis_repo"
)

// 測試替身: 只實作測試會走到的方法，其餘由嵌入的介面 panic 出來

type fakeProductRepo struct {
	db.IProductRepository
	mu       sync.Mutex
	products map[uint]*model.Product
}

func newFakeProductRepo(products ...*model.Product) *fakeProductRepo {
	m := make(map[uint]*model.Product)
	for _, p := range products {
		m[p.ProductID] = p
	}
	return &fakeProductRepo{products: m}
}

func (f *fakeProductRepo) GetProductByID(ctx context.Context, productID uint) (*model.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	product, ok := f.products[productID]
	if !ok {
		return nil, db.ErrProductNotFound
	}
	cp := *product
	return &cp, nil
}

func (f *fakeProductRepo) RestoreStock(ctx context.Context, productID uint, quantity int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	product, ok := f.products[productID]
	if !ok {
		return db.ErrProductNotFound
	}
	product.Stock += uint(quantity)
	return nil
}

type fakeOrderRepo struct {
	db.IOrderRepository
	mu         sync.Mutex
	orders     map[string]*model.Order
	references int
	// 指定轉移到某狀態時回傳的錯誤，觸發一次後清除
	failOn map[model.OrderStatus]error
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{
		orders: make(map[string]*model.Order),
		failOn: make(map[model.OrderStatus]error),
	}
}

func (f *fakeOrderRepo) CreateOrder(ctx context.Context, order *model.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.references++
	order.Reference = fmt.Sprintf("CMD-20250101-%04d", f.references)
	order.Amount = order.ComputeAmount()
	cp := *order
	f.orders[order.OrderID] = &cp
	return nil
}

func (f *fakeOrderRepo) GetOrderByID(ctx context.Context, id string) (*model.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	order, ok := f.orders[id]
	if !ok {
		return nil, db.ErrOrderNotFound
	}
	cp := *order
	return &cp, nil
}

func (f *fakeOrderRepo) UpdateOrderStatus(ctx context.Context, orderID string, next model.OrderStatus) (*model.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	order, ok := f.orders[orderID]
	if !ok {
		return nil, db.ErrOrderNotFound
	}
	if order.Status == next {
		cp := *order
		return &cp, nil
	}
	if err, ok := f.failOn[next]; ok {
		delete(f.failOn, next)
		return nil, err
	}
	if !model.CanTransition(order.Status, next) {
		return nil, &db.InvalidTransitionError{OrderID: orderID, From: uint(order.Status), To: uint(next)}
	}
	order.Status = next
	cp := *order
	return &cp, nil
}

type fakeCartRepo struct {
	redis_repo.ICartRepository
	mu    sync.Mutex
	carts map[int]*model.Cart
}

func newFakeCartRepo(carts ...*model.Cart) *fakeCartRepo {
	m := make(map[int]*model.Cart)
	for _, c := range carts {
		m[c.UserID] = c
	}
	return &fakeCartRepo{carts: m}
}

func (f *fakeCartRepo) Get(ctx context.Context, userID int) (*model.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cart, ok := f.carts[userID]
	if !ok {
		return nil, redis_repo.ErrCartNotFound
	}
	cp := *cart
	return &cp, nil
}

func (f *fakeCartRepo) Clear(ctx context.Context, userID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.carts, userID)
	return nil
}

type fakeCatalogRepo struct {
	db.ICatalogRepository
	agencies map[uint]*model.Agency
	communes map[uint]*model.Commune
}

func (f *fakeCatalogRepo) GetAgencyByID(ctx context.Context, id uint) (*model.Agency, error) {
	agency, ok := f.agencies[id]
	if !ok {
		return nil, db.ErrAgencyNotFound
	}
	return agency, nil
}

func (f *fakeCatalogRepo) GetCommuneByID(ctx context.Context, id uint) (*model.Commune, error) {
	commune, ok := f.communes[id]
	if !ok {
		return nil, db.ErrCommuneNotFound
	}
	return commune, nil
}

type notifyCall struct {
	template  producer.NotificationTemplate
	recipient string
	data      map[string]interface{}
}

type fakeNotifier struct {
	mu    sync.Mutex
	calls []notifyCall
	err   error
}

func (f *fakeNotifier) Notify(ctx context.Context, template producer.NotificationTemplate, recipient string, data map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, notifyCall{template: template, recipient: recipient, data: data})
	return f.err
}

func (f *fakeNotifier) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}
