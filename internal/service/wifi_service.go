package service

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"time"

	"github.com/RoyceAzure/lab/telecom_shop/internal/domain/model"
	"github.com/RoyceAzure/lab/telecom_shop/internal/infra/repository/db"
	er "github.com/RoyceAzure/rj/util/rj_error"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// 撞號換號重試上限，帳號空間夠大，連撞五次基本上是出事了
const identifierMaxRetries = 5

// 票券產出後的可用期限，過了沒登入就作廢
const ticketShelfLife = 30 * 24 * time.Hour

const (
	identifierLength = 10
	passwordLength   = 8
	digits           = "0123456789"
	alnum            = "abcdefghjkmnpqrstuvwxyz23456789" // 去掉易混淆字元
)

type IWifiService interface {
	GetTicketTypes(ctx context.Context) ([]model.WifiTicketType, error)
	GenerateTickets(ctx context.Context, typeID uint, count int) ([]model.WifiTicket, error)
	RedeemTicket(ctx context.Context, identifier, hotspot string) error
	PurgeExpiredTickets(ctx context.Context) (int64, error)
}

// WiFi 票券: 帳密一次性，核銷用條件更新把關
type WifiService struct {
	wifiRepo db.IWifiTicketRepository
}

func NewWifiService(wifiRepo db.IWifiTicketRepository) *WifiService {
	return &WifiService{wifiRepo: wifiRepo}
}

func (s *WifiService) GetTicketTypes(ctx context.Context) ([]model.WifiTicketType, error) {
	return s.wifiRepo.GetActiveTicketTypes(ctx)
}

// GenerateTickets 批次產票
// 帳號撞到唯一索引就換號重試，單張失敗整批中止回報已產出的部分
func (s *WifiService) GenerateTickets(ctx context.Context, typeID uint, count int) ([]model.WifiTicket, error) {
	if count <= 0 {
		return nil, er.New(er.InvalidArgumentCode, "ticket count must be positive")
	}
	ticketType, err := s.wifiRepo.GetTicketTypeByID(ctx, typeID)
	if err != nil {
		return nil, err
	}

	expiresAt := time.Now().UTC().Add(ticketShelfLife)
	tickets := make([]model.WifiTicket, 0, count)
	for i := 0; i < count; i++ {
		ticket, err := s.createOneTicket(ctx, ticketType.TypeID, expiresAt)
		if err != nil {
			return tickets, err
		}
		tickets = append(tickets, *ticket)
	}
	return tickets, nil
}

func (s *WifiService) createOneTicket(ctx context.Context, typeID uint, expiresAt time.Time) (*model.WifiTicket, error) {
	for attempt := 0; attempt < identifierMaxRetries; attempt++ {
		identifier, err := randomString(digits, identifierLength)
		if err != nil {
			return nil, err
		}
		password, err := randomString(alnum, passwordLength)
		if err != nil {
			return nil, err
		}

		ticket := &model.WifiTicket{
			TypeID:     typeID,
			Identifier: identifier,
			Password:   password,
			ExpiresAt:  expiresAt,
		}
		err = s.wifiRepo.CreateTicket(ctx, ticket)
		if err == nil {
			return ticket, nil
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			log.Warn().Str("identifier", identifier).Msg("ticket identifier collision, retrying")
			continue
		}
		return nil, err
	}
	return nil, er.New(er.InternalErrorCode, "failed to allocate unique ticket identifier")
}

// RedeemTicket 核銷，條件更新保證一張票只會成功一次
func (s *WifiService) RedeemTicket(ctx context.Context, identifier, hotspot string) error {
	return s.wifiRepo.UseTicket(ctx, identifier, hotspot, time.Now().UTC())
}

// PurgeExpiredTickets 清掉過期未用的票
func (s *WifiService) PurgeExpiredTickets(ctx context.Context) (int64, error) {
	return s.wifiRepo.DeleteExpiredTickets(ctx, time.Now().UTC())
}

func randomString(charset string, length int) (string, error) {
	out := make([]byte, length)
	max := big.NewInt(int64(len(charset)))
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = charset[n.Int64()]
	}
	return string(out), nil
}

var _ IWifiService = (*WifiService)(nil)
