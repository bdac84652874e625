package db

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/RoyceAzure/lab/telecom_shop/internal/domain/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

type ProductRepoTestSuite struct {
	suite.Suite
	db          *gorm.DB
	productRepo *ProductRepo
}

// SetupSuite 在測試套件開始前執行
func (suite *ProductRepoTestSuite) SetupSuite() {
	db, err := GetDbConn("lab_telecom", "localhost", "5432", "royce", "password")
	require.NoError(suite.T(), err)

	dbDao := NewDbDao(db)
	require.NoError(suite.T(), dbDao.InitMigrate())

	suite.db = db
	suite.productRepo = NewProductRepo(dbDao)
}

// SetupTest 在每個測試前執行
func (suite *ProductRepoTestSuite) SetupTest() {
	// 清空資料表
	suite.db.Exec("DELETE FROM order_items")
	suite.db.Exec("DELETE FROM orders")
	suite.db.Exec("DELETE FROM products")
}

// TearDownSuite 在測試套件結束後執行
func (suite *ProductRepoTestSuite) TearDownSuite() {
	sqlDB, _ := suite.db.DB()
	sqlDB.Close()
}

func (suite *ProductRepoTestSuite) newProduct(code string, stock uint) *model.Product {
	return &model.Product{
		Code:        code,
		Name:        "Test Product " + code,
		Price:       decimal.NewFromInt(1000),
		TaxRate:     decimal.NewFromFloat(18.00),
		Stock:       stock,
		Category:    "phone",
		Description: "test",
	}
}

func (suite *ProductRepoTestSuite) TestCreateProduct() {
	product := suite.newProduct("TEST001", 10)

	err := suite.productRepo.CreateProduct(context.Background(), product)

	require.NoError(suite.T(), err)
	require.NotZero(suite.T(), product.ProductID)
	require.False(suite.T(), product.CreatedAt.IsZero())
}

func (suite *ProductRepoTestSuite) TestCreateProduct_DuplicateCode() {
	err1 := suite.productRepo.CreateProduct(context.Background(), suite.newProduct("TEST001", 10))
	err2 := suite.productRepo.CreateProduct(context.Background(), suite.newProduct("TEST001", 20))

	require.NoError(suite.T(), err1)
	require.ErrorIs(suite.T(), err2, gorm.ErrDuplicatedKey)
}

func (suite *ProductRepoTestSuite) TestTryDebitStock() {
	ctx := context.Background()
	product := suite.newProduct("TEST001", 10)
	require.NoError(suite.T(), suite.productRepo.CreateProduct(ctx, product))

	err := suite.productRepo.TryDebitStock(ctx, product.ProductID, 4)
	require.NoError(suite.T(), err)

	stock, err := suite.productRepo.GetProductStock(ctx, product.ProductID)
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), 6, stock)
}

func (suite *ProductRepoTestSuite) TestTryDebitStock_Insufficient() {
	ctx := context.Background()
	product := suite.newProduct("TEST001", 3)
	require.NoError(suite.T(), suite.productRepo.CreateProduct(ctx, product))

	err := suite.productRepo.TryDebitStock(ctx, product.ProductID, 5)

	var stockErr *StockInsufficientError
	require.ErrorAs(suite.T(), err, &stockErr)
	require.Equal(suite.T(), product.ProductID, stockErr.ProductID)
	require.Equal(suite.T(), 5, stockErr.Requested)

	// 庫存原封不動
	stock, err := suite.productRepo.GetProductStock(ctx, product.ProductID)
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), 3, stock)
}

func (suite *ProductRepoTestSuite) TestTryDebitStock_ExactlyZero() {
	ctx := context.Background()
	product := suite.newProduct("TEST001", 5)
	require.NoError(suite.T(), suite.productRepo.CreateProduct(ctx, product))

	// 剛好扣到 0 要成功
	require.NoError(suite.T(), suite.productRepo.TryDebitStock(ctx, product.ProductID, 5))

	stock, err := suite.productRepo.GetProductStock(ctx, product.ProductID)
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), 0, stock)

	// 再扣一件就不行
	err = suite.productRepo.TryDebitStock(ctx, product.ProductID, 1)
	var stockErr *StockInsufficientError
	require.ErrorAs(suite.T(), err, &stockErr)
}

func (suite *ProductRepoTestSuite) TestTryDebitStock_ProductNotFound() {
	err := suite.productRepo.TryDebitStock(context.Background(), 99999, 1)
	require.ErrorIs(suite.T(), err, ErrProductNotFound)
}

func (suite *ProductRepoTestSuite) TestRestoreStock() {
	ctx := context.Background()
	product := suite.newProduct("TEST001", 2)
	require.NoError(suite.T(), suite.productRepo.CreateProduct(ctx, product))

	require.NoError(suite.T(), suite.productRepo.RestoreStock(ctx, product.ProductID, 8))

	stock, err := suite.productRepo.GetProductStock(ctx, product.ProductID)
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), 10, stock)
}

func (suite *ProductRepoTestSuite) TestUpdateProduct_DoesNotTouchStock() {
	ctx := context.Background()
	product := suite.newProduct("TEST001", 10)
	require.NoError(suite.T(), suite.productRepo.CreateProduct(ctx, product))

	// 一般更新就算塞了 stock 也不會寫進去
	product.Name = "Renamed"
	product.Stock = 999
	require.NoError(suite.T(), suite.productRepo.UpdateProduct(ctx, product))

	found, err := suite.productRepo.GetProductByID(ctx, product.ProductID)
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), "Renamed", found.Name)
	require.Equal(suite.T(), uint(10), found.Stock)
}

// 併發搶同一批庫存，成功扣減的總量不可超過初始庫存
func (suite *ProductRepoTestSuite) TestConcurrentDebit_NoOversell() {
	opCtx, opCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer opCancel()

	const (
		initialStock  = uint(100)
		numGoroutines = 200
		debitQuantity = 1
	)

	product := suite.newProduct("TEST-CC", initialStock)
	require.NoError(suite.T(), suite.productRepo.CreateProduct(opCtx, product))

	g, ctx := errgroup.WithContext(opCtx)

	successCount := int32(0)
	insufficientCount := int32(0)

	for i := 0; i < numGoroutines; i++ {
		g.Go(func() error {
			err := suite.productRepo.TryDebitStock(ctx, product.ProductID, debitQuantity)
			if err != nil {
				var stockErr *StockInsufficientError
				if errors.As(err, &stockErr) {
					atomic.AddInt32(&insufficientCount, 1)
					return nil
				}
				return err
			}
			atomic.AddInt32(&successCount, 1)
			return nil
		})
	}

	require.NoError(suite.T(), g.Wait())

	// 成功 + 不足 = 總請求數，且成功數剛好等於初始庫存
	require.Equal(suite.T(), int32(initialStock), successCount)
	require.Equal(suite.T(), int32(numGoroutines)-int32(initialStock), insufficientCount)

	finalStock, err := suite.productRepo.GetProductStock(context.Background(), product.ProductID)
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), 0, finalStock)
}

func TestProductRepoTestSuite(t *testing.T) {
	suite.Run(t, new(ProductRepoTestSuite))
}
