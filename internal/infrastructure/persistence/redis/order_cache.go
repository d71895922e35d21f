package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/xiebiao/shopmall/internal/domain/order"
)

const orderCacheTTL = 10 * time.Minute

// OrderCache 订单详情缓存(cache-aside)
// 设计说明:
// 1. Key设计:order:detail:{order_id}
// 2. 读路径:先查缓存,未命中回源数据库并写入缓存
// 3. 任何状态变更后删除缓存,下次读取回源(删除优于更新,避免并发写出脏值)
// 4. 缓存故障不阻塞主流程,调用方按未命中处理
type OrderCache struct {
	client *redis.Client
}

// NewOrderCache 创建订单缓存
func NewOrderCache(client *redis.Client) *OrderCache {
	return &OrderCache{client: client}
}

func orderDetailKey(orderID uint) string {
	return fmt.Sprintf("order:detail:%d", orderID)
}

// Get 读取缓存的订单详情,未命中返回(nil, nil)
func (c *OrderCache) Get(ctx context.Context, orderID uint) (*order.Order, error) {
	data, err := c.client.Get(ctx, orderDetailKey(orderID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var o order.Order
	if err := json.Unmarshal(data, &o); err != nil {
		// 反序列化失败视为缓存损坏,删除后按未命中处理
		c.client.Del(ctx, orderDetailKey(orderID))
		return nil, nil
	}
	return &o, nil
}

// Set 写入订单详情缓存
func (c *OrderCache) Set(ctx context.Context, o *order.Order) error {
	data, err := json.Marshal(o)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, orderDetailKey(o.ID), data, orderCacheTTL).Err()
}

// Invalidate 删除订单详情缓存(状态变更后调用)
func (c *OrderCache) Invalidate(ctx context.Context, orderID uint) error {
	return c.client.Del(ctx, orderDetailKey(orderID)).Err()
}
