package service

import (
	"context"
	"testing"

	"github.com/RoyceAzure/lab/telecom_shop/internal/domain/model"
	"github.com/RoyceAzure/lab/telecom_shop/internal/infra/producer"
	"github.com/RoyceAzure/lab/telecom_shop/internal/infra/repository/redis_repo"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProduct(id uint, price int64, stock uint) *model.Product {
	return &model.Product{
		ProductID: id,
		Code:      "P",
		Name:      "Produit",
		Price:     decimal.NewFromInt(price),
		TaxRate:   decimal.NewFromFloat(18.00),
		Stock:     stock,
	}
}

func validDeliveryForm() *CheckoutForm {
	communeID := uint(1)
	return &CheckoutForm{
		CustomerName:    "Jean Test",
		CustomerEmail:   "jean@example.com",
		CustomerPhone:   "611234567",
		ReceiptMode:     model.ReceiptModeDelivery,
		DeliveryAddress: "12 rue des Cocotiers",
		CommuneID:       &communeID,
	}
}

func newCheckoutFixture(cart *model.Cart, products ...*model.Product) (*CheckoutService, *fakeOrderRepo, *fakeCartRepo, *fakeNotifier) {
	orderRepo := newFakeOrderRepo()
	productRepo := newFakeProductRepo(products...)
	catalogRepo := &fakeCatalogRepo{
		agencies: map[uint]*model.Agency{1: {AgencyID: 1, Name: "Agence Centre"}},
		communes: map[uint]*model.Commune{1: {CommuneID: 1, Name: "Akpakpa", ZoneID: 1}},
	}
	cartRepo := newFakeCartRepo()
	if cart != nil {
		cartRepo.carts[cart.UserID] = cart
	}
	notifier := &fakeNotifier{}
	svc := NewCheckoutService(orderRepo, productRepo, catalogRepo, cartRepo, nil, notifier, "commerce@example.com")
	return svc, orderRepo, cartRepo, notifier
}

func TestCheckout_Success(t *testing.T) {
	cart := &model.Cart{
		CartID: uuid.New(),
		UserID: 7,
		CartItems: []model.CartItem{
			{ProductID: 1, Quantity: 2},
		},
	}
	svc, orderRepo, cartRepo, notifier := newCheckoutFixture(cart, testProduct(1, 1000, 10))

	order, err := svc.Checkout(context.Background(), 7, validDeliveryForm())
	require.NoError(t, err)

	// 單價是下單當下的含稅快照: 1000 * 1.18
	require.Len(t, order.OrderItems, 1)
	assert.True(t, decimal.NewFromInt(1180).Equal(order.OrderItems[0].UnitPrice))
	assert.True(t, decimal.NewFromInt(2360).Equal(order.OrderItems[0].LineTotal))
	assert.True(t, decimal.NewFromInt(2360).Equal(order.Amount))
	assert.Equal(t, model.OrderStatusPending, order.Status)
	assert.NotEmpty(t, order.Reference)

	// 訂單有落庫
	_, err = orderRepo.GetOrderByID(context.Background(), order.OrderID)
	require.NoError(t, err)

	// 成功後整車清空
	_, err = cartRepo.Get(context.Background(), 7)
	assert.ErrorIs(t, err, redis_repo.ErrCartNotFound)

	// 客戶確認信 + 商務新單通知
	require.Equal(t, 2, notifier.callCount())
	assert.Equal(t, producer.TemplateOrderConfirmation, notifier.calls[0].template)
	assert.Equal(t, "jean@example.com", notifier.calls[0].recipient)
	assert.Equal(t, producer.TemplateOrderAlert, notifier.calls[1].template)
	assert.Equal(t, "commerce@example.com", notifier.calls[1].recipient)
}

// email 選填，沒留信箱照樣能下單，只有商務信箱收到新單通知
func TestCheckout_WithoutEmail(t *testing.T) {
	cart := &model.Cart{
		CartID:    uuid.New(),
		UserID:    7,
		CartItems: []model.CartItem{{ProductID: 1, Quantity: 1}},
	}
	svc, _, _, notifier := newCheckoutFixture(cart, testProduct(1, 1000, 10))

	form := validDeliveryForm()
	form.CustomerEmail = ""
	order, err := svc.Checkout(context.Background(), 7, form)
	require.NoError(t, err)
	assert.Empty(t, order.CustomerEmail)

	require.Equal(t, 1, notifier.callCount())
	assert.Equal(t, producer.TemplateOrderAlert, notifier.calls[0].template)
	assert.Equal(t, "commerce@example.com", notifier.calls[0].recipient)
}

// 有留信箱但格式錯誤還是要擋
func TestCheckout_InvalidEmail(t *testing.T) {
	cart := &model.Cart{
		CartID:    uuid.New(),
		UserID:    7,
		CartItems: []model.CartItem{{ProductID: 1, Quantity: 1}},
	}
	svc, orderRepo, _, _ := newCheckoutFixture(cart, testProduct(1, 1000, 10))

	form := validDeliveryForm()
	form.CustomerEmail = "pas-un-email"
	_, err := svc.Checkout(context.Background(), 7, form)
	require.Error(t, err)
	assert.Empty(t, orderRepo.orders)
}

// 通知失敗不影響已成立的訂單
func TestCheckout_NotifyFailureDoesNotFailOrder(t *testing.T) {
	cart := &model.Cart{
		CartID:    uuid.New(),
		UserID:    7,
		CartItems: []model.CartItem{{ProductID: 1, Quantity: 1}},
	}
	svc, _, _, notifier := newCheckoutFixture(cart, testProduct(1, 1000, 10))
	notifier.err = assert.AnError

	order, err := svc.Checkout(context.Background(), 7, validDeliveryForm())
	require.NoError(t, err)
	require.NotNil(t, order)
}

func TestCheckout_EmptyCart(t *testing.T) {
	svc, _, _, _ := newCheckoutFixture(nil, testProduct(1, 1000, 10))

	_, err := svc.Checkout(context.Background(), 7, validDeliveryForm())
	assert.ErrorIs(t, err, ErrCartEmpty)
}

func TestCheckout_InvalidPhone(t *testing.T) {
	cart := &model.Cart{
		CartID:    uuid.New(),
		UserID:    7,
		CartItems: []model.CartItem{{ProductID: 1, Quantity: 1}},
	}
	svc, orderRepo, _, _ := newCheckoutFixture(cart, testProduct(1, 1000, 10))

	form := validDeliveryForm()
	form.CustomerPhone = "991234567"
	_, err := svc.Checkout(context.Background(), 7, form)
	require.Error(t, err)
	assert.Empty(t, orderRepo.orders)
}

func TestCheckout_AgencyModeRequiresAgency(t *testing.T) {
	cart := &model.Cart{
		CartID:    uuid.New(),
		UserID:    7,
		CartItems: []model.CartItem{{ProductID: 1, Quantity: 1}},
	}
	svc, _, _, _ := newCheckoutFixture(cart, testProduct(1, 1000, 10))

	form := validDeliveryForm()
	form.ReceiptMode = model.ReceiptModeAgency
	form.AgencyID = nil
	_, err := svc.Checkout(context.Background(), 7, form)
	require.Error(t, err)

	unknown := uint(99)
	form.AgencyID = &unknown
	_, err = svc.Checkout(context.Background(), 7, form)
	require.Error(t, err)
}

// 門市自取時宅配欄位要被清掉，反之亦然
func TestCheckout_ReceiptModeFieldsExclusive(t *testing.T) {
	cart := &model.Cart{
		CartID:    uuid.New(),
		UserID:    7,
		CartItems: []model.CartItem{{ProductID: 1, Quantity: 1}},
	}
	svc, _, _, _ := newCheckoutFixture(cart, testProduct(1, 1000, 10))

	agencyID := uint(1)
	form := validDeliveryForm()
	form.ReceiptMode = model.ReceiptModeAgency
	form.AgencyID = &agencyID

	order, err := svc.Checkout(context.Background(), 7, form)
	require.NoError(t, err)
	assert.Empty(t, order.DeliveryAddress)
	assert.Nil(t, order.CommuneID)
	require.NotNil(t, order.AgencyID)
	assert.Equal(t, agencyID, *order.AgencyID)
}

func TestCheckout_UnknownReceiptMode(t *testing.T) {
	cart := &model.Cart{
		CartID:    uuid.New(),
		UserID:    7,
		CartItems: []model.CartItem{{ProductID: 1, Quantity: 1}},
	}
	svc, _, _, _ := newCheckoutFixture(cart, testProduct(1, 1000, 10))

	form := validDeliveryForm()
	form.ReceiptMode = "pigeon"
	_, err := svc.Checkout(context.Background(), 7, form)
	require.Error(t, err)
}
