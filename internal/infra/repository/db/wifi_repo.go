package db

import (
	"context"
	"errors"
	"time"

	"github.com/RoyceAzure/lab/telecom_shop/internal/domain/model"
	"gorm.io/gorm"
)

type WifiTicketRepo struct {
	db *DbDao
}

func NewWifiTicketRepo(db *DbDao) *WifiTicketRepo {
	return &WifiTicketRepo{db: db}
}

// Read - 上架中的票種，照排序權重再照時數排
func (s *WifiTicketRepo) GetActiveTicketTypes(ctx context.Context) ([]model.WifiTicketType, error) {
	var types []model.WifiTicketType
	err := s.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("sort_order, duration_hours").
		Find(&types).Error
	return types, err
}

func (s *WifiTicketRepo) GetTicketTypeByID(ctx context.Context, id uint) (*model.WifiTicketType, error) {
	var ticketType model.WifiTicketType
	err := s.db.WithContext(ctx).First(&ticketType, "type_id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTicketTypeNotFound
		}
		return nil, err
	}
	return &ticketType, nil
}

// CreateTicket 帳號有唯一索引，撞號回傳 gorm.ErrDuplicatedKey 由上層換號重試
func (s *WifiTicketRepo) CreateTicket(ctx context.Context, ticket *model.WifiTicket) error {
	return s.db.WithContext(ctx).Create(ticket).Error
}

func (s *WifiTicketRepo) GetTicketByIdentifier(ctx context.Context, identifier string) (*model.WifiTicket, error) {
	var ticket model.WifiTicket
	err := s.db.WithContext(ctx).Where("identifier = ?", identifier).First(&ticket).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTicketNotFound
		}
		return nil, err
	}
	return &ticket, nil
}

// UseTicket 票券核銷，一次性
// 跟庫存扣減同一套路: 條件更新把關，兩個併發核銷只會有一個成功
// RowsAffected = 0 再回頭讀一次只是為了分類錯誤，不參與決策
func (s *WifiTicketRepo) UseTicket(ctx context.Context, identifier, hotspot string, now time.Time) error {
	res := s.db.WithContext(ctx).Model(&model.WifiTicket{}).
		Where("identifier = ? AND is_used = ? AND expires_at > ?", identifier, false, now).
		Updates(map[string]interface{}{
			"is_used": true,
			"used_at": now,
			"hotspot": hotspot,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		ticket, err := s.GetTicketByIdentifier(ctx, identifier)
		if err != nil {
			return err
		}
		if ticket.IsUsed {
			return ErrTicketAlreadyUsed
		}
		if ticket.IsExpired(now) {
			return ErrTicketExpired
		}
		return ErrTicketNotFound
	}
	return nil
}

// 清票: 過期又沒用掉的票定期軟刪
func (s *WifiTicketRepo) DeleteExpiredTickets(ctx context.Context, before time.Time) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("expires_at < ? AND is_used = ?", before, false).
		Delete(&model.WifiTicket{})
	return res.RowsAffected, res.Error
}
