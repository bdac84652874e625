package redis_repo

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/RoyceAzure/lab/telecom_shop/internal/domain/model"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type CartRepoError error

var (
	ErrInsufficientQuantity CartRepoError = errors.New("insufficient quantity")
	ErrCartNotFound         CartRepoError = errors.New("cart not found")
)

type ICartRepository interface {
	Create(ctx context.Context, cart *model.Cart) error
	Get(ctx context.Context, userID int) (*model.Cart, error)
	Delta(ctx context.Context, userID int, productID uint, deltaQuantity int) error
	SetQuantity(ctx context.Context, userID int, productID uint, quantity int) error
	Delete(ctx context.Context, userID int, productID uint) error
	Clear(ctx context.Context, userID int) error
}

// CartRepo 購物車只存在 Redis，不落 SQL
// 一人一車，key 以 userID 分片: cart:{userID}:items / cart:{userID}:meta
type CartRepo struct {
	CartCache *redis.Client
}

func NewCartRepo(cartCache *redis.Client) *CartRepo {
	return &CartRepo{CartCache: cartCache}
}

func generateCartItemKey(userID int) string {
	return fmt.Sprintf("cart:%d:items", userID)
}

func generateCartMetaKey(userID int) string {
	return fmt.Sprintf("cart:%d:meta", userID)
}

// Create 整車覆寫，meta 與 items 用 Lua 腳本一次寫入確保原子性
func (r *CartRepo) Create(ctx context.Context, cart *model.Cart) error {
	metaKey := generateCartMetaKey(cart.UserID)
	itemsKey := generateCartItemKey(cart.UserID)

	luaScript := `
		redis.call('HSET', ARGV[1], 'cart_id', ARGV[2], 'user_id', ARGV[3])
		redis.call('DEL', ARGV[4])
		for i = 5, #ARGV, 2 do
			redis.call('HSET', ARGV[4], ARGV[i], ARGV[i+1])
		end
		return 1
	`
	args := []interface{}{
		metaKey,              // ARGV[1]: meta key
		cart.CartID.String(), // ARGV[2]: cart_id
		cart.UserID,          // ARGV[3]: user_id
		itemsKey,             // ARGV[4]: items key
	}
	for _, item := range cart.CartItems {
		args = append(args, item.ProductID, item.Quantity)
	}

	_, err := r.CartCache.Eval(ctx, luaScript, []string{}, args...).Result()
	if err != nil {
		return fmt.Errorf("failed to create cart: %w", err)
	}
	return nil
}

// Get 取整車，數量 <= 0 的項目視同不存在
func (r *CartRepo) Get(ctx context.Context, userID int) (*model.Cart, error) {
	metaKey := generateCartMetaKey(userID)
	itemsKey := generateCartItemKey(userID)

	// 獲取元資料
	cartIDStr, err := r.CartCache.HGet(ctx, metaKey, "cart_id").Result()
	if err == redis.Nil {
		return nil, fmt.Errorf("%w: user %d", ErrCartNotFound, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cart meta: %w", err)
	}

	// 獲取商品列表
	items, err := r.CartCache.HGetAll(ctx, itemsKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get cart items: %w", err)
	}

	cart := &model.Cart{UserID: userID}
	if id, err := uuid.Parse(cartIDStr); err == nil {
		cart.CartID = id
	}
	for productIDStr, quantityStr := range items {
		productID, err := strconv.ParseUint(productIDStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid product id %s: %w", productIDStr, err)
		}
		quantity, err := strconv.Atoi(quantityStr)
		if err != nil {
			return nil, fmt.Errorf("invalid quantity for product %s: %w", productIDStr, err)
		}
		if quantity > 0 {
			cart.CartItems = append(cart.CartItems, model.CartItem{
				ProductID: uint(productID),
				Quantity:  quantity,
			})
		}
	}

	return cart, nil
}

// Delta 原子增減指定商品數量
// 扣到 0 直接移除該項，扣超過現有數量回 ErrInsufficientQuantity
func (r *CartRepo) Delta(ctx context.Context, userID int, productID uint, deltaQuantity int) error {
	itemsKey := generateCartItemKey(userID)

	luaScript := `
		local key = KEYS[1]
		local product_id = ARGV[1]
		local delta = tonumber(ARGV[2])

		-- 如果是扣減操作，先檢查數量是否足夠
		if delta < 0 then
			local current = tonumber(redis.call('HGET', key, product_id) or "0")
			if current + delta < 0 then
				return -2  -- 商品數量不足
			end
			-- 如果扣減後剛好為 0，直接刪除
			if current == -delta then
				redis.call('HDEL', key, product_id)
				return 0
			end
		end

		-- 使用 HINCRBY 進行原子增減
		return redis.call('HINCRBY', key, product_id, delta)
	`

	result, err := r.CartCache.Eval(ctx, luaScript, []string{itemsKey}, productID, deltaQuantity).Result()
	if err == redis.Nil {
		return fmt.Errorf("failed to execute cart operation")
	}
	if err != nil {
		return fmt.Errorf("failed to add item to cart: %w", err)
	}

	switch v := result.(type) {
	case int64:
		if v == -2 {
			return fmt.Errorf("%w product %d", ErrInsufficientQuantity, productID)
		}
		return nil
	default:
		return fmt.Errorf("unexpected result type: %T", result)
	}
}

// SetQuantity 直接覆寫指定商品數量，0 等同移除
func (r *CartRepo) SetQuantity(ctx context.Context, userID int, productID uint, quantity int) error {
	itemsKey := generateCartItemKey(userID)
	if quantity <= 0 {
		return r.Delete(ctx, userID, productID)
	}
	if err := r.CartCache.HSet(ctx, itemsKey, strconv.FormatUint(uint64(productID), 10), quantity).Err(); err != nil {
		return fmt.Errorf("failed to set item quantity: %w", err)
	}
	return nil
}

// Delete 從購物車中刪除指定商品
func (r *CartRepo) Delete(ctx context.Context, userID int, productID uint) error {
	itemsKey := generateCartItemKey(userID)

	err := r.CartCache.HDel(ctx, itemsKey, strconv.FormatUint(uint64(productID), 10)).Err()
	if err != nil {
		return fmt.Errorf("failed to delete item from cart: %w", err)
	}
	return nil
}

// Clear 清空購物車，轉單成功後呼叫
func (r *CartRepo) Clear(ctx context.Context, userID int) error {
	metaKey := generateCartMetaKey(userID)
	itemsKey := generateCartItemKey(userID)

	err := r.CartCache.Del(ctx, itemsKey, metaKey).Err()
	if err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

var _ ICartRepository = (*CartRepo)(nil)
