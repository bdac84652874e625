package db

import (
	"context"
	"errors"

	"github.com/RoyceAzure/lab/telecom_shop/internal/domain/model"
	"gorm.io/gorm"
)

/*
庫存帳本: products.stock 的唯一異動入口
所有扣減都是單一條件 UPDATE，stock >= 需求量才會成立
絕對不做「先讀再寫」，lost update 就是這樣來的
*/
type ProductRepo struct {
	db *DbDao
}

func NewProductRepo(db *DbDao) *ProductRepo {
	return &ProductRepo{db: db}
}

func (s *ProductRepo) CreateProduct(ctx context.Context, product *model.Product) error {
	return s.db.WithContext(ctx).Create(product).Error
}

func (s *ProductRepo) GetProductByID(ctx context.Context, productID uint) (*model.Product, error) {
	var product model.Product
	err := s.db.WithContext(ctx).First(&product, "product_id = ?", productID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return &product, nil
}

func (s *ProductRepo) GetProductByCode(ctx context.Context, code string) (*model.Product, error) {
	var product model.Product
	err := s.db.WithContext(ctx).Where("code = ?", code).First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return &product, nil
}

func (s *ProductRepo) GetProductStock(ctx context.Context, productID uint) (int, error) {
	product, err := s.GetProductByID(ctx, productID)
	if err != nil {
		return 0, err
	}
	return int(product.Stock), nil
}

// TryDebitStock 條件扣庫存
// 單一 UPDATE ... WHERE stock >= ? 在 row lock 下原子完成
// RowsAffected = 0 有兩種可能: 庫存不足或商品不存在，分開回報
func (s *ProductRepo) TryDebitStock(ctx context.Context, productID uint, quantity int) error {
	return tryDebitStock(s.db.WithContext(ctx), productID, quantity)
}

// RestoreStock 無條件回補庫存
func (s *ProductRepo) RestoreStock(ctx context.Context, productID uint, quantity int) error {
	return restoreStock(s.db.WithContext(ctx), productID, quantity)
}

// tryDebitStock 供訂單狀態交易內重用，tx 可以是外層交易
func tryDebitStock(tx *gorm.DB, productID uint, quantity int) error {
	res := tx.Model(&model.Product{}).
		Where("product_id = ? AND stock >= ?", productID, quantity).
		Update("stock", gorm.Expr("stock - ?", quantity))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var product model.Product
		err := tx.Select("product_id", "name").First(&product, "product_id = ?", productID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		if err != nil {
			return err
		}
		return &StockInsufficientError{ProductID: productID, ProductName: product.Name, Requested: quantity}
	}
	return nil
}

func restoreStock(tx *gorm.DB, productID uint, quantity int) error {
	res := tx.Model(&model.Product{}).
		Where("product_id = ?", productID).
		Update("stock", gorm.Expr("stock + ?", quantity))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (s *ProductRepo) GetAllProducts(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	err := s.db.WithContext(ctx).Find(&products).Error
	return products, err
}

// Read - 查詢有庫存的商品
func (s *ProductRepo) GetProductsInStock(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	err := s.db.WithContext(ctx).Where("stock > 0").Find(&products).Error
	return products, err
}

// Read - 查詢好康商品 (首頁用，只列還有庫存的)
func (s *ProductRepo) GetDealProducts(ctx context.Context, limit int) ([]model.Product, error) {
	var products []model.Product
	err := s.db.WithContext(ctx).
		Where("is_deal = ? AND stock > 0", true).
		Limit(limit).
		Find(&products).Error
	return products, err
}

// Update - 更新商品
// 刻意 Omit stock，庫存只能走 TryDebitStock / RestoreStock
func (s *ProductRepo) UpdateProduct(ctx context.Context, product *model.Product) error {
	return s.db.WithContext(ctx).Omit("stock").Save(product).Error
}

// Delete - 硬刪除商品
func (s *ProductRepo) HardDeleteProduct(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Unscoped().Delete(&model.Product{}, id).Error
}

// 分頁查詢商品
func (s *ProductRepo) GetProductsPaginated(ctx context.Context, page, pageSize int) ([]model.Product, int64, error) {
	var products []model.Product
	var total int64

	offset := (page - 1) * pageSize

	// 計算總數
	s.db.WithContext(ctx).Model(&model.Product{}).Count(&total)

	// 分頁查詢
	err := s.db.WithContext(ctx).Offset(offset).Limit(pageSize).Find(&products).Error

	return products, total, err
}

// 批量創建商品
func (s *ProductRepo) CreateProductsBatch(ctx context.Context, products []model.Product) error {
	return s.db.WithContext(ctx).Create(&products).Error
}
