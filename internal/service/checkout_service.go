package service

import (
	"context"
	"errors"
	"time"

	"github.com/RoyceAzure/lab/telecom_shop/internal/domain/model"
	evt_model "github.com/RoyceAzure/lab/telecom_shop/internal/domain/model/event"
	"github.com/RoyceAzure/lab/telecom_shop/internal/infra/producer"
	"github.com/RoyceAzure/lab/telecom_shop/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/telecom_shop/internal/infra/repository/eventdb"
	"github.com/RoyceAzure/lab/telecom_shop/internal/infra/repository/redis_repo"
	"github.com/RoyceAzure/lab/telecom_shop/internal/pkg/util"
	"github.com/RoyceAzure/lab/telecom_shop/internal/pkg/validator"
	er "github.com/RoyceAzure/rj/util/rj_error"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

var (
	ErrCartEmpty = errors.New("cart is empty")
)

// CheckoutForm 結帳表單，訪客與會員共用，訪客 UserID 為空
type CheckoutForm struct {
	UserID          *int
	CustomerName    string
	CustomerEmail   string
	CustomerPhone   string
	ReceiptMode     string // delivery | agency
	AgencyID        *uint
	DeliveryAddress string
	CommuneID       *uint
}

type ICheckoutService interface {
	Checkout(ctx context.Context, cartUserID int, form *CheckoutForm) (*model.Order, error)
}

// 購物車轉訂單
// 購物車只活在 Redis，訂單落 SQL 後整車清空
// 單價在這裡定格成含稅快照，之後商品改價不影響已成立的訂單
type CheckoutService struct {
	orderRepo       db.IOrderRepository
	productRepo     db.IProductRepository
	catalogRepo     db.ICatalogRepository
	cartRepo        redis_repo.ICartRepository
	eventDao        *eventdb.EventDao
	notifier        producer.INotificationProducer
	commercialEmail string
}

func NewCheckoutService(
	orderRepo db.IOrderRepository,
	productRepo db.IProductRepository,
	catalogRepo db.ICatalogRepository,
	cartRepo redis_repo.ICartRepository,
	eventDao *eventdb.EventDao,
	notifier producer.INotificationProducer,
	commercialEmail string,
) *CheckoutService {
	return &CheckoutService{
		orderRepo:       orderRepo,
		productRepo:     productRepo,
		catalogRepo:     catalogRepo,
		cartRepo:        cartRepo,
		eventDao:        eventDao,
		notifier:        notifier,
		commercialEmail: commercialEmail,
	}
}

// Checkout 結帳主流程
// 1. 驗表單 2. 取車 3. 以現價快照組明細 4. 落單 (pending) 5. 清車
// 清車與通知都在 SQL 交易成功之後，失敗只記 log，訂單已成立不回滾
func (s *CheckoutService) Checkout(ctx context.Context, cartUserID int, form *CheckoutForm) (*model.Order, error) {
	if err := s.validateForm(ctx, form); err != nil {
		return nil, err
	}

	cart, err := s.cartRepo.Get(ctx, cartUserID)
	if err != nil {
		if errors.Is(err, redis_repo.ErrCartNotFound) {
			return nil, ErrCartEmpty
		}
		return nil, err
	}
	if len(cart.CartItems) == 0 {
		return nil, ErrCartEmpty
	}

	items := make([]model.OrderItem, 0, len(cart.CartItems))
	for _, ci := range cart.CartItems {
		product, err := s.productRepo.GetProductByID(ctx, ci.ProductID)
		if err != nil {
			return nil, err
		}
		unit := product.PriceTTC()
		items = append(items, model.OrderItem{
			ProductID: ci.ProductID,
			Quantity:  ci.Quantity,
			UnitPrice: unit,
			LineTotal: unit.Mul(decimal.NewFromInt(int64(ci.Quantity))),
		})
	}

	order := &model.Order{
		OrderID:         uuid.NewString(),
		UserID:          form.UserID,
		CustomerName:    form.CustomerName,
		CustomerEmail:   form.CustomerEmail,
		CustomerPhone:   form.CustomerPhone,
		ReceiptMode:     form.ReceiptMode,
		AgencyID:        form.AgencyID,
		DeliveryAddress: form.DeliveryAddress,
		CommuneID:       form.CommuneID,
		OrderItems:      items,
		OrderDate:       time.Now().UTC(),
		Status:          model.OrderStatusPending,
	}

	if err := s.orderRepo.CreateOrder(ctx, order); err != nil {
		return nil, err
	}

	// 訂單已落庫，之後全是善後
	if err := s.cartRepo.Clear(ctx, cartUserID); err != nil {
		log.Error().Err(err).Int("user_id", cartUserID).Str("reference", order.Reference).
			Msg("clear cart after checkout failed")
	}
	s.appendCreatedEvent(ctx, order)
	s.notifyOrderCreated(ctx, order)

	return order, nil
}

// validateForm 取貨方式互斥: 宅配要地址+公社，自取要門市
func (s *CheckoutService) validateForm(ctx context.Context, form *CheckoutForm) error {
	if err := validator.ValidateRequired("customer_name", form.CustomerName); err != nil {
		return er.New(er.InvalidArgumentCode, err.Error())
	}
	if form.CustomerEmail != "" {
		if err := validator.ValidateEmail(form.CustomerEmail); err != nil {
			return er.New(er.InvalidArgumentCode, err.Error())
		}
	}
	if err := validator.ValidatePhone(form.CustomerPhone); err != nil {
		return er.New(er.InvalidArgumentCode, err.Error())
	}

	switch form.ReceiptMode {
	case model.ReceiptModeDelivery:
		if err := validator.ValidateRequired("delivery_address", form.DeliveryAddress); err != nil {
			return er.New(er.InvalidArgumentCode, err.Error())
		}
		if form.CommuneID == nil {
			return er.New(er.InvalidArgumentCode, "commune_id is required for delivery")
		}
		if _, err := s.catalogRepo.GetCommuneByID(ctx, *form.CommuneID); err != nil {
			if errors.Is(err, db.ErrCommuneNotFound) {
				return er.New(er.InvalidArgumentCode, "unknown commune")
			}
			return err
		}
		form.AgencyID = nil
	case model.ReceiptModeAgency:
		if form.AgencyID == nil {
			return er.New(er.InvalidArgumentCode, "agency_id is required for agency pickup")
		}
		if _, err := s.catalogRepo.GetAgencyByID(ctx, *form.AgencyID); err != nil {
			if errors.Is(err, db.ErrAgencyNotFound) {
				return er.New(er.InvalidArgumentCode, "unknown agency")
			}
			return err
		}
		form.DeliveryAddress = ""
		form.CommuneID = nil
	default:
		return er.New(er.InvalidArgumentCode, "receipt_mode must be delivery or agency")
	}
	return nil
}

func (s *CheckoutService) appendCreatedEvent(ctx context.Context, order *model.Order) {
	if util.IsNil(s.eventDao) {
		return
	}
	evt := evt_model.NewOrderCreatedEvent(order)
	streamID := eventdb.GenerateOrderStreamID(order.OrderID)
	if err := s.eventDao.AppendEvent(ctx, streamID, string(evt.Type()), evt); err != nil {
		log.Error().Err(err).Str("reference", order.Reference).Msg("append order created event failed")
	}
}

// 客戶收確認信，商務信箱收新單通知
func (s *CheckoutService) notifyOrderCreated(ctx context.Context, order *model.Order) {
	if util.IsNil(s.notifier) {
		return
	}
	data := map[string]interface{}{
		"reference":    order.Reference,
		"amount":       order.Amount.String(),
		"receipt_mode": order.ReceiptMode,
	}
	if order.CustomerEmail != "" {
		if err := s.notifier.Notify(ctx, producer.TemplateOrderConfirmation, order.CustomerEmail, data); err != nil {
			log.Error().Err(err).Str("reference", order.Reference).Msg("notify customer failed")
		}
	}
	if s.commercialEmail != "" {
		if err := s.notifier.Notify(ctx, producer.TemplateOrderAlert, s.commercialEmail, data); err != nil {
			log.Error().Err(err).Str("reference", order.Reference).Msg("notify commercial failed")
		}
	}
}

var _ ICheckoutService = (*CheckoutService)(nil)
