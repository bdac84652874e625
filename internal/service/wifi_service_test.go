package service

import (
	"context"
	"testing"
	"time"

	"github.com/RoyceAzure/lab/telecom_shop/internal/domain/model"
	"github.com/RoyceAzure/lab/telecom_shop/internal/infra/repository/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeWifiRepo struct {
	db.IWifiTicketRepository
	ticketTypes map[uint]*model.WifiTicketType
	created     []model.WifiTicket
	// 前 N 次建票都假裝撞到帳號唯一索引
	collisions int
}

func (f *fakeWifiRepo) GetTicketTypeByID(ctx context.Context, id uint) (*model.WifiTicketType, error) {
	ticketType, ok := f.ticketTypes[id]
	if !ok {
		return nil, db.ErrTicketTypeNotFound
	}
	return ticketType, nil
}

func (f *fakeWifiRepo) CreateTicket(ctx context.Context, ticket *model.WifiTicket) error {
	if f.collisions > 0 {
		f.collisions--
		return gorm.ErrDuplicatedKey
	}
	f.created = append(f.created, *ticket)
	return nil
}

func newFakeWifiRepo() *fakeWifiRepo {
	return &fakeWifiRepo{
		ticketTypes: map[uint]*model.WifiTicketType{
			1: {TypeID: 1, Name: "24h", DurationHours: 24, IsActive: true},
		},
	}
}

func TestGenerateTickets(t *testing.T) {
	repo := newFakeWifiRepo()
	svc := NewWifiService(repo)

	tickets, err := svc.GenerateTickets(context.Background(), 1, 3)
	require.NoError(t, err)
	require.Len(t, tickets, 3)

	seen := make(map[string]bool)
	for _, ticket := range tickets {
		assert.Len(t, ticket.Identifier, identifierLength)
		assert.Len(t, ticket.Password, passwordLength)
		assert.False(t, seen[ticket.Identifier])
		seen[ticket.Identifier] = true
		assert.True(t, ticket.ExpiresAt.After(time.Now()))
	}
}

func TestGenerateTickets_InvalidCount(t *testing.T) {
	svc := NewWifiService(newFakeWifiRepo())

	_, err := svc.GenerateTickets(context.Background(), 1, 0)
	require.Error(t, err)
}

func TestGenerateTickets_UnknownType(t *testing.T) {
	svc := NewWifiService(newFakeWifiRepo())

	_, err := svc.GenerateTickets(context.Background(), 99, 1)
	assert.ErrorIs(t, err, db.ErrTicketTypeNotFound)
}

// 撞號就換號重試，重試範圍內要能成功
func TestGenerateTickets_RetriesOnCollision(t *testing.T) {
	repo := newFakeWifiRepo()
	repo.collisions = identifierMaxRetries - 1
	svc := NewWifiService(repo)

	tickets, err := svc.GenerateTickets(context.Background(), 1, 1)
	require.NoError(t, err)
	require.Len(t, tickets, 1)
	assert.Len(t, repo.created, 1)
}

// 連續撞滿上限就放棄整批
func TestGenerateTickets_CollisionExhausted(t *testing.T) {
	repo := newFakeWifiRepo()
	repo.collisions = identifierMaxRetries
	svc := NewWifiService(repo)

	partial, err := svc.GenerateTickets(context.Background(), 1, 2)
	require.Error(t, err)
	assert.Empty(t, partial)
}
