package model

type StockAction uint

const (
	StockActionNone    StockAction = 0
	StockActionDebit   StockAction = 1
	StockActionRestore StockAction = 2
)

// CanTransition 狀態機規則: 終態不可再轉移，其餘狀態可轉移到任何不同狀態
// (後台可直接跳狀態，與確認帶判斷脫鉤)
func CanTransition(old, next OrderStatus) bool {
	if old == next {
		return true
	}
	return !old.IsTerminal()
}

// PlanStockAction 依新舊狀態決定庫存副作用，由呼叫端執行
// 不在這裡動資料庫，讓轉移規則可以脫離儲存層測試
//
//	舊狀態不在確認帶 且 新狀態在確認帶 => 扣庫存
//	舊狀態在確認帶   且 新狀態為取消   => 還庫存
//	狀態未變 => 冪等，不做任何事
func PlanStockAction(old, next OrderStatus) StockAction {
	if old == next {
		return StockActionNone
	}
	if !old.InConfirmedBand() && next.InConfirmedBand() {
		return StockActionDebit
	}
	if old.InConfirmedBand() && next == OrderStatusCancelled {
		return StockActionRestore
	}
	return StockActionNone
}
