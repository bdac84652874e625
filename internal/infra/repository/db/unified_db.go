package db

import (
	"context"
	"time"

	"github.com/RoyceAzure/lab/telecom_shop/internal/domain/model"
	"gorm.io/gorm"
)

// UnifiedDB 統一的資料庫介面
type UnifiedDB interface {
	// 基礎操作
	GetDB() *gorm.DB
	InitMigrate() error

	// Product 相關操作 (含庫存帳本)
	IProductRepository

	// Order 相關操作 (含狀態機與庫存副作用)
	IOrderRepository

	// 目錄資料
	ICatalogRepository

	// WiFi 票券
	IWifiTicketRepository

	// User 相關操作
	IUserRepository
}

// IProductRepository Product 相關操作介面
// TryDebitStock / RestoreStock 是 products.stock 僅有的兩個寫入口
type IProductRepository interface {
	CreateProduct(ctx context.Context, product *model.Product) error
	GetProductByID(ctx context.Context, productID uint) (*model.Product, error)
	GetProductByCode(ctx context.Context, code string) (*model.Product, error)
	GetProductStock(ctx context.Context, productID uint) (int, error)
	GetAllProducts(ctx context.Context) ([]model.Product, error)
	GetProductsInStock(ctx context.Context) ([]model.Product, error)
	GetDealProducts(ctx context.Context, limit int) ([]model.Product, error)
	GetProductsPaginated(ctx context.Context, page, pageSize int) ([]model.Product, int64, error)
	CreateProductsBatch(ctx context.Context, products []model.Product) error
	UpdateProduct(ctx context.Context, product *model.Product) error
	HardDeleteProduct(ctx context.Context, id uint) error
	TryDebitStock(ctx context.Context, productID uint, quantity int) error
	RestoreStock(ctx context.Context, productID uint, quantity int) error
}

// IOrderRepository Order 相關操作介面
type IOrderRepository interface {
	CreateOrder(ctx context.Context, order *model.Order) error
	GetOrderByID(ctx context.Context, id string) (*model.Order, error)
	GetOrderByReference(ctx context.Context, reference string) (*model.Order, error)
	GetOrdersByUser(ctx context.Context, userID int, email string) ([]model.Order, error)
	GetAllOrders(ctx context.Context) ([]model.Order, error)
	GetOrdersPaginated(ctx context.Context, page, pageSize int) ([]model.Order, int64, error)
	GetOrderItems(ctx context.Context, orderID string) ([]model.OrderItem, error)
	UpdateOrder(ctx context.Context, order *model.Order) error
	UpdateOrderStatus(ctx context.Context, orderID string, next model.OrderStatus) (*model.Order, error)
	DeleteOrder(ctx context.Context, id string) error
}

// ICatalogRepository 門市/區域/方案操作介面
type ICatalogRepository interface {
	GetAgencyByID(ctx context.Context, id uint) (*model.Agency, error)
	GetAllAgencies(ctx context.Context) ([]model.Agency, error)
	SetDefaultAgency(ctx context.Context, id uint) error
	GetDefaultAgency(ctx context.Context) (*model.Agency, error)
	GetZoneByID(ctx context.Context, id uint) (*model.Zone, error)
	GetAllZones(ctx context.Context) ([]model.Zone, error)
	GetCommuneByID(ctx context.Context, id uint) (*model.Commune, error)
	GetCommuneInZone(ctx context.Context, communeID, zoneID uint) (*model.Commune, error)
	GetPlanByID(ctx context.Context, id uint) (*model.Plan, error)
	GetAllPlans(ctx context.Context) ([]model.Plan, error)
	CreateSubscriptionRequest(ctx context.Context, req *model.SubscriptionRequest) error
	GetSubscriptionRequestsPaginated(ctx context.Context, page, pageSize int) ([]model.SubscriptionRequest, int64, error)
}

// IWifiTicketRepository WiFi 票券操作介面
type IWifiTicketRepository interface {
	GetActiveTicketTypes(ctx context.Context) ([]model.WifiTicketType, error)
	GetTicketTypeByID(ctx context.Context, id uint) (*model.WifiTicketType, error)
	CreateTicket(ctx context.Context, ticket *model.WifiTicket) error
	GetTicketByIdentifier(ctx context.Context, identifier string) (*model.WifiTicket, error)
	UseTicket(ctx context.Context, identifier, hotspot string, now time.Time) error
	DeleteExpiredTickets(ctx context.Context, before time.Time) (int64, error)
}

// IUserRepository User 相關操作介面
type IUserRepository interface {
	CreateUser(ctx context.Context, user *model.User) (*model.User, error)
	GetUserByID(ctx context.Context, id int) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateUser(ctx context.Context, user *model.User) error
	DeleteUser(ctx context.Context, id int) error
}

// UnifiedDBImpl 統一資料庫實現，各 repo 透過嵌入提升方法
type UnifiedDBImpl struct {
	db    *gorm.DB
	dbDao *DbDao
	*ProductRepo
	*OrderRepo
	*CatalogRepo
	*WifiTicketRepo
	*UserRepo
}

// NewUnifiedDB 創建新的統一資料庫實例
func NewUnifiedDB(db *gorm.DB) *UnifiedDBImpl {
	dbDao := NewDbDao(db)
	return &UnifiedDBImpl{
		db:             db,
		dbDao:          dbDao,
		ProductRepo:    NewProductRepo(dbDao),
		OrderRepo:      NewOrderRepo(dbDao),
		CatalogRepo:    NewCatalogRepo(dbDao),
		WifiTicketRepo: NewWifiTicketRepo(dbDao),
		UserRepo:       NewUserRepo(dbDao),
	}
}

func (u *UnifiedDBImpl) InitMigrate() error {
	return u.dbDao.InitMigrate()
}

// GetDB 獲取資料庫連接
func (u *UnifiedDBImpl) GetDB() *gorm.DB {
	return u.db
}

var (
	_ UnifiedDB             = (*UnifiedDBImpl)(nil)
	_ IProductRepository    = (*UnifiedDBImpl)(nil)
	_ IOrderRepository      = (*UnifiedDBImpl)(nil)
	_ ICatalogRepository    = (*UnifiedDBImpl)(nil)
	_ IWifiTicketRepository = (*UnifiedDBImpl)(nil)
	_ IUserRepository       = (*UnifiedDBImpl)(nil)
)
