package service

import (
	"context"
	"errors"

	"github.com/RoyceAzure/lab/telecom_shop/internal/domain/model"
	"github.com/RoyceAzure/lab/telecom_shop/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/telecom_shop/internal/infra/repository/redis_repo"
	"github.com/shopspring/decimal"
)

type ICartService interface {
	GetCartDetails(ctx context.Context, userID int) ([]model.CartItemDetail, decimal.Decimal, error)
	AddItem(ctx context.Context, userID int, productID uint, quantity int) error
	SetQuantity(ctx context.Context, userID int, productID uint, quantity int) error
	RemoveItem(ctx context.Context, userID int, productID uint) error
	ClearCart(ctx context.Context, userID int) error
}

// 購物車階段只動 Redis，不碰 SQL 庫存
// 數量上限夾在現有庫存，真正的扣減留到訂單確認
type CartService struct {
	cartRepo    redis_repo.ICartRepository
	productRepo db.IProductRepository
}

func NewCartService(cartRepo redis_repo.ICartRepository, productRepo db.IProductRepository) *CartService {
	return &CartService{cartRepo: cartRepo, productRepo: productRepo}
}

// GetCartDetails 給結帳頁用: 明細補上商品名/現價/庫存，總額由現價算
// 商品下架了就直接從車裡拿掉
func (s *CartService) GetCartDetails(ctx context.Context, userID int) ([]model.CartItemDetail, decimal.Decimal, error) {
	cart, err := s.cartRepo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, redis_repo.ErrCartNotFound) {
			return nil, decimal.Zero, nil
		}
		return nil, decimal.Zero, err
	}

	details := make([]model.CartItemDetail, 0, len(cart.CartItems))
	amount := decimal.NewFromInt(0)
	for _, item := range cart.CartItems {
		product, err := s.productRepo.GetProductByID(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, db.ErrProductNotFound) {
				_ = s.cartRepo.Delete(ctx, userID, item.ProductID)
				continue
			}
			return nil, decimal.Zero, err
		}

		quantity := item.Quantity
		if quantity > int(product.Stock) {
			// 庫存縮水了，把車裡的數量夾回來
			quantity = int(product.Stock)
			if err := s.cartRepo.SetQuantity(ctx, userID, item.ProductID, quantity); err != nil {
				return nil, decimal.Zero, err
			}
			if quantity == 0 {
				continue
			}
		}

		unit := product.PriceTTC()
		line := unit.Mul(decimal.NewFromInt(int64(quantity)))
		details = append(details, model.CartItemDetail{
			ProductID:   product.ProductID,
			ProductName: product.Name,
			Quantity:    quantity,
			UnitPrice:   unit,
			LineTotal:   line,
			Stock:       product.Stock,
		})
		amount = amount.Add(line)
	}
	return details, amount, nil
}

// AddItem 加進購物車，加完超過庫存就夾到庫存上限
func (s *CartService) AddItem(ctx context.Context, userID int, productID uint, quantity int) error {
	if quantity <= 0 {
		return redis_repo.ErrInsufficientQuantity
	}
	product, err := s.productRepo.GetProductByID(ctx, productID)
	if err != nil {
		return err
	}

	cart, err := s.cartRepo.Get(ctx, userID)
	current := 0
	if err == nil {
		for _, item := range cart.CartItems {
			if item.ProductID == productID {
				current = item.Quantity
				break
			}
		}
	} else if !errors.Is(err, redis_repo.ErrCartNotFound) {
		return err
	}

	if current+quantity > int(product.Stock) {
		return s.cartRepo.SetQuantity(ctx, userID, productID, int(product.Stock))
	}
	return s.cartRepo.Delta(ctx, userID, productID, quantity)
}

func (s *CartService) SetQuantity(ctx context.Context, userID int, productID uint, quantity int) error {
	if quantity < 0 {
		return redis_repo.ErrInsufficientQuantity
	}
	product, err := s.productRepo.GetProductByID(ctx, productID)
	if err != nil {
		return err
	}
	if quantity > int(product.Stock) {
		quantity = int(product.Stock)
	}
	return s.cartRepo.SetQuantity(ctx, userID, productID, quantity)
}

func (s *CartService) RemoveItem(ctx context.Context, userID int, productID uint) error {
	return s.cartRepo.Delete(ctx, userID, productID)
}

func (s *CartService) ClearCart(ctx context.Context, userID int) error {
	return s.cartRepo.Clear(ctx, userID)
}

var _ ICartService = (*CartService)(nil)
