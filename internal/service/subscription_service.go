package service

import (
	"context"
	"errors"

	"github.com/RoyceAzure/lab/telecom_shop/internal/domain/model"
	"github.com/RoyceAzure/lab/telecom_shop/internal/infra/producer"
	"github.com/RoyceAzure/lab/telecom_shop/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/telecom_shop/internal/pkg/util"
	"github.com/RoyceAzure/lab/telecom_shop/internal/pkg/validator"
	er "github.com/RoyceAzure/rj/util/rj_error"
	"github.com/rs/zerolog/log"
)

type ISubscriptionService interface {
	GetPlans(ctx context.Context) ([]model.Plan, error)
	GetZones(ctx context.Context) ([]model.Zone, error)
	SubmitRequest(ctx context.Context, req *model.SubscriptionRequest) error
	GetRequestsPaginated(ctx context.Context, page, pageSize int) ([]model.SubscriptionRequest, int64, error)
}

// 方案申裝
// 需求單驗證通過就落庫，裝機排程是業務的事，這裡只負責收單與通知
type SubscriptionService struct {
	catalogRepo     db.ICatalogRepository
	notifier        producer.INotificationProducer
	commercialEmail string
}

func NewSubscriptionService(catalogRepo db.ICatalogRepository, notifier producer.INotificationProducer, commercialEmail string) *SubscriptionService {
	return &SubscriptionService{catalogRepo: catalogRepo, notifier: notifier, commercialEmail: commercialEmail}
}

func (s *SubscriptionService) GetPlans(ctx context.Context) ([]model.Plan, error) {
	return s.catalogRepo.GetAllPlans(ctx)
}

func (s *SubscriptionService) GetZones(ctx context.Context) ([]model.Zone, error) {
	return s.catalogRepo.GetAllZones(ctx)
}

// SubmitRequest 收申裝需求單
// 公社必須真的屬於選的區域，不然裝機師傅會跑錯地方
func (s *SubscriptionService) SubmitRequest(ctx context.Context, req *model.SubscriptionRequest) error {
	if err := validator.ValidateRequired("name", req.Name); err != nil {
		return er.New(er.InvalidArgumentCode, err.Error())
	}
	if err := validator.ValidatePhone(req.Phone); err != nil {
		return er.New(er.InvalidArgumentCode, err.Error())
	}
	if req.Email != "" {
		if err := validator.ValidateEmail(req.Email); err != nil {
			return er.New(er.InvalidArgumentCode, err.Error())
		}
	}

	if _, err := s.catalogRepo.GetPlanByID(ctx, req.PlanID); err != nil {
		if errors.Is(err, db.ErrPlanNotFound) {
			return er.New(er.InvalidArgumentCode, "unknown plan")
		}
		return err
	}
	if _, err := s.catalogRepo.GetCommuneInZone(ctx, req.CommuneID, req.ZoneID); err != nil {
		if errors.Is(err, db.ErrCommuneNotFound) {
			return er.New(er.InvalidArgumentCode, "commune does not belong to the selected zone")
		}
		return err
	}

	if err := s.catalogRepo.CreateSubscriptionRequest(ctx, req); err != nil {
		return err
	}

	s.notifyRequest(ctx, req)
	return nil
}

func (s *SubscriptionService) GetRequestsPaginated(ctx context.Context, page, pageSize int) ([]model.SubscriptionRequest, int64, error) {
	return s.catalogRepo.GetSubscriptionRequestsPaginated(ctx, page, pageSize)
}

func (s *SubscriptionService) notifyRequest(ctx context.Context, req *model.SubscriptionRequest) {
	if util.IsNil(s.notifier) || s.commercialEmail == "" {
		return
	}
	err := s.notifier.Notify(ctx, producer.TemplateSubscriptionAck, s.commercialEmail, map[string]interface{}{
		"request_id": req.RequestID,
		"name":       req.Name,
		"phone":      req.Phone,
		"plan_id":    req.PlanID,
	})
	if err != nil {
		log.Error().Err(err).Uint("request_id", req.RequestID).Msg("notify subscription request failed")
	}
}

var _ ISubscriptionService = (*SubscriptionService)(nil)
