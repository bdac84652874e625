package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/RoyceAzure/lab/telecom_shop/internal/domain/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// 參考號撞號時整筆交易重來重數的上限
const referenceMaxRetries = 5

type OrderRepo struct {
	db *DbDao
}

func NewOrderRepo(db *DbDao) *OrderRepo {
	return &OrderRepo{db: db}
}

// generateReference 人類可讀編號 CMD-YYYYMMDD-NNNN，NNNN = 當日既有訂單數 + 1
// 計數到寫入之間有競態窗口，唯一索引是最後防線
func generateReference(tx *gorm.DB, at time.Time) (string, error) {
	dayStart := time.Date(at.Year(), at.Month(), at.Day(), 0, 0, 0, 0, at.Location())
	dayEnd := dayStart.Add(24 * time.Hour)

	// Unscoped: 軟刪除的訂單還佔著參考號，不算進去的話重試永遠撞同一號
	var count int64
	if err := tx.Unscoped().Model(&model.Order{}).
		Where("order_date >= ? AND order_date < ?", dayStart, dayEnd).
		Count(&count).Error; err != nil {
		return "", err
	}
	return fmt.Sprintf("CMD-%s-%04d", at.Format("20060102"), count+1), nil
}

// CreateOrder 建立訂單與明細快照，pending 起跳
// 總額一律由明細重算，不信任呼叫端塞進來的數字
// 撞號 (gorm.ErrDuplicatedKey) 就重數再試，最多 referenceMaxRetries 次
func (s *OrderRepo) CreateOrder(ctx context.Context, order *model.Order) error {
	var lastRef string
	for attempt := 0; attempt < referenceMaxRetries; attempt++ {
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			ref, err := generateReference(tx, order.OrderDate)
			if err != nil {
				return err
			}
			order.Reference = ref
			lastRef = ref
			order.Amount = order.ComputeAmount()
			return tx.Create(order).Error
		})
		if err == nil {
			return nil
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// 清掉上一輪 rollback 後殘留的明細主鍵，重插才不會帶舊值
			for i := range order.OrderItems {
				order.OrderItems[i].ItemID = 0
			}
			continue
		}
		return err
	}
	return &ReferenceCollisionError{Reference: lastRef, Attempts: referenceMaxRetries}
}

// UpdateOrderStatus 狀態寫入的唯一入口
// 轉移檢查、庫存副作用、狀態落庫全部在同一個交易內:
//   - 先鎖訂單列，重讀已持久化的舊狀態 (不信任呼叫端記憶的狀態)
//   - 狀態未變 => 冪等 no-op
//   - 副作用由 model.PlanStockAction 決定，任何一條明細扣不到 => 整筆 rollback，
//     回傳 *StockInsufficientError，此時訂單狀態與庫存都回到交易前
func (s *OrderRepo) UpdateOrderStatus(ctx context.Context, orderID string, next model.OrderStatus) (*model.Order, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order model.Order
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&order, "order_id = ?", orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return err
		}

		old := order.Status
		if old == next {
			return nil
		}
		if !model.CanTransition(old, next) {
			return &InvalidTransitionError{OrderID: orderID, From: uint(old), To: uint(next)}
		}

		switch model.PlanStockAction(old, next) {
		case model.StockActionDebit:
			if err := debitOrderItems(tx, orderID); err != nil {
				return err
			}
		case model.StockActionRestore:
			if err := restoreOrderItems(tx, orderID); err != nil {
				return err
			}
		}

		return tx.Model(&model.Order{}).
			Where("order_id = ?", orderID).
			Update("status", next).Error
	})
	if err != nil {
		return nil, err
	}
	return s.GetOrderByID(ctx, orderID)
}

// debitOrderItems 依 item_id 升冪鎖定明細
// 固定鎖序，兩筆訂單就算碰到同一批商品也不會互等成死鎖
func debitOrderItems(tx *gorm.DB, orderID string) error {
	var items []model.OrderItem
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("order_id = ?", orderID).
		Order("item_id").
		Find(&items).Error; err != nil {
		return err
	}

	for _, item := range items {
		if item.StockDebited {
			continue
		}
		if err := tryDebitStock(tx, item.ProductID, item.Quantity); err != nil {
			return err
		}
		if err := tx.Model(&model.OrderItem{}).
			Where("item_id = ?", item.ItemID).
			Update("stock_debited", true).Error; err != nil {
			return err
		}
	}
	return nil
}

// restoreOrderItems 只回補有扣過的明細，確認前就取消的訂單碰不到庫存
func restoreOrderItems(tx *gorm.DB, orderID string) error {
	var items []model.OrderItem
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("order_id = ?", orderID).
		Order("item_id").
		Find(&items).Error; err != nil {
		return err
	}

	for _, item := range items {
		if !item.StockDebited {
			continue
		}
		if err := restoreStock(tx, item.ProductID, item.Quantity); err != nil {
			return err
		}
		if err := tx.Model(&model.OrderItem{}).
			Where("item_id = ?", item.ItemID).
			Update("stock_debited", false).Error; err != nil {
			return err
		}
	}
	return nil
}

// Read - 根據ID查詢訂單
func (s *OrderRepo) GetOrderByID(ctx context.Context, id string) (*model.Order, error) {
	var order model.Order
	err := s.db.WithContext(ctx).Preload("OrderItems").First(&order, "order_id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

// Read - 根據參考號查詢訂單
func (s *OrderRepo) GetOrderByReference(ctx context.Context, reference string) (*model.Order, error) {
	var order model.Order
	err := s.db.WithContext(ctx).Preload("OrderItems").First(&order, "reference = ?", reference).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

// Read - 查詢用戶歷史訂單，含登入前用同一個 email 下的訪客單
func (s *OrderRepo) GetOrdersByUser(ctx context.Context, userID int, email string) ([]model.Order, error) {
	var orders []model.Order
	err := s.db.WithContext(ctx).Preload("OrderItems").
		Where("user_id = ? OR (user_id IS NULL AND customer_email = ?)", userID, email).
		Order("order_date DESC").
		Find(&orders).Error
	return orders, err
}

// Read - 查詢所有訂單
func (s *OrderRepo) GetAllOrders(ctx context.Context) ([]model.Order, error) {
	var orders []model.Order
	err := s.db.WithContext(ctx).Preload("OrderItems").Find(&orders).Error
	return orders, err
}

// Update - 更新訂單聯絡/收件欄位
// 刻意 Omit status 與 reference: 狀態一定要走 UpdateOrderStatus 才有庫存副作用，
// 參考號發出後不可變。總額照常由明細重算
func (s *OrderRepo) UpdateOrder(ctx context.Context, order *model.Order) error {
	order.Amount = order.ComputeAmount()
	return s.db.WithContext(ctx).Omit("status", "reference").Save(order).Error
}

// Delete - 軟刪除訂單 (稽核需求，訂單永不硬刪)
// 只收終態訂單: 確認帶的訂單還佔著庫存，歸檔前要先取消或交付
func (s *OrderRepo) DeleteOrder(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order model.Order
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&order, "order_id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return err
		}
		if !order.Status.IsTerminal() {
			return ErrOrderNotTerminal
		}
		return tx.Delete(&order).Error
	})
}

// 分頁查詢訂單
func (s *OrderRepo) GetOrdersPaginated(ctx context.Context, page, pageSize int) ([]model.Order, int64, error) {
	var orders []model.Order
	var total int64

	offset := (page - 1) * pageSize

	// 計算總數
	s.db.WithContext(ctx).Model(&model.Order{}).Count(&total)

	// 分頁查詢
	err := s.db.WithContext(ctx).Preload("OrderItems").Offset(offset).Limit(pageSize).Find(&orders).Error

	return orders, total, err
}

// 取得訂單項目
func (s *OrderRepo) GetOrderItems(ctx context.Context, orderID string) ([]model.OrderItem, error) {
	var items []model.OrderItem
	err := s.db.WithContext(ctx).Where("order_id = ?", orderID).Order("item_id").Find(&items).Error
	return items, err
}
