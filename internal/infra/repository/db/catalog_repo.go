package db

import (
	"context"
	"errors"

	"github.com/RoyceAzure/lab/telecom_shop/internal/domain/model"
	"gorm.io/gorm"
)

// 門市/覆蓋區域/方案等結帳會引用到的目錄資料
type CatalogRepo struct {
	db *DbDao
}

func NewCatalogRepo(db *DbDao) *CatalogRepo {
	return &CatalogRepo{db: db}
}

func (s *CatalogRepo) GetAgencyByID(ctx context.Context, id uint) (*model.Agency, error) {
	var agency model.Agency
	err := s.db.WithContext(ctx).First(&agency, "agency_id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAgencyNotFound
		}
		return nil, err
	}
	return &agency, nil
}

func (s *CatalogRepo) GetAllAgencies(ctx context.Context) ([]model.Agency, error) {
	var agencies []model.Agency
	err := s.db.WithContext(ctx).Find(&agencies).Error
	return agencies, err
}

// SetDefaultAgency 設定預設門市
// 「啟用一個就停用其他」是不變量，不藏在一般 save 流程裡，集中在這個單一寫入點
// 一條 UPDATE 同時打開目標、關掉現任，沒有中間狀態
func (s *CatalogRepo) SetDefaultAgency(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var agency model.Agency
		if err := tx.First(&agency, "agency_id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAgencyNotFound
			}
			return err
		}
		return tx.Model(&model.Agency{}).
			Where("agency_id = ? OR is_default = ?", id, true).
			Update("is_default", gorm.Expr("agency_id = ?", id)).Error
	})
}

func (s *CatalogRepo) GetDefaultAgency(ctx context.Context) (*model.Agency, error) {
	var agency model.Agency
	err := s.db.WithContext(ctx).Where("is_default = ?", true).First(&agency).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAgencyNotFound
		}
		return nil, err
	}
	return &agency, nil
}

func (s *CatalogRepo) GetZoneByID(ctx context.Context, id uint) (*model.Zone, error) {
	var zone model.Zone
	err := s.db.WithContext(ctx).Preload("Communes").First(&zone, "zone_id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrZoneNotFound
		}
		return nil, err
	}
	return &zone, nil
}

func (s *CatalogRepo) GetAllZones(ctx context.Context) ([]model.Zone, error) {
	var zones []model.Zone
	err := s.db.WithContext(ctx).Preload("Communes").Find(&zones).Error
	return zones, err
}

func (s *CatalogRepo) GetCommuneByID(ctx context.Context, id uint) (*model.Commune, error) {
	var commune model.Commune
	err := s.db.WithContext(ctx).First(&commune, "commune_id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommuneNotFound
		}
		return nil, err
	}
	return &commune, nil
}

// GetCommuneInZone 確認 commune 屬於該 zone，申裝驗證用
func (s *CatalogRepo) GetCommuneInZone(ctx context.Context, communeID, zoneID uint) (*model.Commune, error) {
	var commune model.Commune
	err := s.db.WithContext(ctx).
		Where("commune_id = ? AND zone_id = ?", communeID, zoneID).
		First(&commune).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommuneNotFound
		}
		return nil, err
	}
	return &commune, nil
}

func (s *CatalogRepo) GetPlanByID(ctx context.Context, id uint) (*model.Plan, error) {
	var plan model.Plan
	err := s.db.WithContext(ctx).First(&plan, "plan_id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	return &plan, nil
}

func (s *CatalogRepo) GetAllPlans(ctx context.Context) ([]model.Plan, error) {
	var plans []model.Plan
	err := s.db.WithContext(ctx).Find(&plans).Error
	return plans, err
}

func (s *CatalogRepo) CreateSubscriptionRequest(ctx context.Context, req *model.SubscriptionRequest) error {
	return s.db.WithContext(ctx).Create(req).Error
}

func (s *CatalogRepo) GetSubscriptionRequestsPaginated(ctx context.Context, page, pageSize int) ([]model.SubscriptionRequest, int64, error) {
	var reqs []model.SubscriptionRequest
	var total int64

	offset := (page - 1) * pageSize
	s.db.WithContext(ctx).Model(&model.SubscriptionRequest{}).Count(&total)
	err := s.db.WithContext(ctx).Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&reqs).Error

	return reqs, total, err
}
