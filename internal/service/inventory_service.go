package service

import (
	"context"

	"github.com/RoyceAzure/lab/telecom_shop/internal/domain/model"
	"github.com/RoyceAzure/lab/telecom_shop/internal/infra/repository/db"
	er "github.com/RoyceAzure/rj/util/rj_error"
	"golang.org/x/sync/errgroup"
)

type IInventoryService interface {
	CreateProduct(ctx context.Context, product *model.Product) error
	GetProduct(ctx context.Context, productID uint) (*model.Product, error)
	GetProductByCode(ctx context.Context, code string) (*model.Product, error)
	GetProductsInStock(ctx context.Context) ([]model.Product, error)
	GetDealProducts(ctx context.Context, limit int) ([]model.Product, error)
	GetProductsPaginated(ctx context.Context, page, pageSize int) ([]model.Product, int64, error)
	UpdateProduct(ctx context.Context, product *model.Product) error
	Restock(ctx context.Context, productID uint, quantity int) error
	BatchRestock(ctx context.Context, quantities map[uint]int) map[uint]error
}

// 商品與庫存的後台操作
// 進貨走 Restock (帳本回補入口)，一般編輯碰不到 stock 欄位
type InventoryService struct {
	productRepo db.IProductRepository
}

func NewInventoryService(productRepo db.IProductRepository) *InventoryService {
	return &InventoryService{productRepo: productRepo}
}

func (s *InventoryService) CreateProduct(ctx context.Context, product *model.Product) error {
	if product.Code == "" {
		return er.New(er.InvalidArgumentCode, "product code is required")
	}
	if product.Price.IsNegative() {
		return er.New(er.InvalidArgumentCode, "product price can not be negative")
	}
	return s.productRepo.CreateProduct(ctx, product)
}

func (s *InventoryService) GetProduct(ctx context.Context, productID uint) (*model.Product, error) {
	return s.productRepo.GetProductByID(ctx, productID)
}

func (s *InventoryService) GetProductByCode(ctx context.Context, code string) (*model.Product, error) {
	return s.productRepo.GetProductByCode(ctx, code)
}

func (s *InventoryService) GetProductsInStock(ctx context.Context) ([]model.Product, error) {
	return s.productRepo.GetProductsInStock(ctx)
}

// GetDealProducts 首頁好康區
func (s *InventoryService) GetDealProducts(ctx context.Context, limit int) ([]model.Product, error) {
	return s.productRepo.GetDealProducts(ctx, limit)
}

func (s *InventoryService) GetProductsPaginated(ctx context.Context, page, pageSize int) ([]model.Product, int64, error) {
	return s.productRepo.GetProductsPaginated(ctx, page, pageSize)
}

func (s *InventoryService) UpdateProduct(ctx context.Context, product *model.Product) error {
	if product.Price.IsNegative() {
		return er.New(er.InvalidArgumentCode, "product price can not be negative")
	}
	return s.productRepo.UpdateProduct(ctx, product)
}

// Restock 進貨，量必須是正的
func (s *InventoryService) Restock(ctx context.Context, productID uint, quantity int) error {
	if quantity <= 0 {
		return er.New(er.InvalidArgumentCode, "restock quantity must be positive")
	}
	return s.productRepo.RestoreStock(ctx, productID, quantity)
}

// BatchRestock 批次進貨，逐商品獨立回報
func (s *InventoryService) BatchRestock(ctx context.Context, quantities map[uint]int) map[uint]error {
	type restockResult struct {
		productID uint
		err       error
	}

	results := make(chan restockResult, len(quantities))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)

	for productID, quantity := range quantities {
		g.Go(func() error {
			results <- restockResult{productID: productID, err: s.Restock(gctx, productID, quantity)}
			return nil
		})
	}
	_ = g.Wait()
	close(results)

	out := make(map[uint]error, len(quantities))
	for r := range results {
		out[r.productID] = r.err
	}
	return out
}

var _ IInventoryService = (*InventoryService)(nil)
