package order

import (
	"context"
	"sync"

	"github.com/xiebiao/shopmall/internal/domain/cart"
	"github.com/xiebiao/shopmall/internal/domain/order"
	"github.com/xiebiao/shopmall/internal/domain/payment"
	"github.com/xiebiao/shopmall/internal/domain/product"
	"github.com/xiebiao/shopmall/internal/domain/user"
	"github.com/xiebiao/shopmall/internal/infrastructure/event"
	apperrors "github.com/xiebiao/shopmall/pkg/errors"
)

// memStore 内存版存储,互斥锁模拟数据库的串行化
// 所有fake仓储共享同一个store,便于跨聚合断言
type memStore struct {
	mu sync.Mutex

	products  map[uint]*product.Product
	sellers   map[uint]*product.Seller
	users     map[uint]*user.User
	addresses map[uint]*user.Address
	orders    map[uint]*order.Order
	orderNos  map[string]uint
	payments  map[uint]*payment.Payment
	cartItems map[uint]*cart.Item

	nextOrderID   uint
	nextItemID    uint
	nextPaymentID uint
}

func newMemStore() *memStore {
	return &memStore{
		products:  make(map[uint]*product.Product),
		sellers:   make(map[uint]*product.Seller),
		users:     make(map[uint]*user.User),
		addresses: make(map[uint]*user.Address),
		orders:    make(map[uint]*order.Order),
		orderNos:  make(map[string]uint),
		payments:  make(map[uint]*payment.Payment),
		cartItems: make(map[uint]*cart.Item),
	}
}

// memTx 事务期间持有store锁,模拟行锁的串行化效果
// fn内的所有仓储操作不再单独加锁
type memTx struct {
	store *memStore
}

func (t *memTx) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()

	// 用快照/还原模拟ROLLBACK
	snapshot := t.store.snapshot()
	if err := fn(ctx); err != nil {
		t.store.restore(snapshot)
		return err
	}
	return nil
}

type storeSnapshot struct {
	products  map[uint]product.Product
	users     map[uint]user.User
	orders    map[uint]order.Order
	orderNos  map[string]uint
	payments  map[uint]payment.Payment
	cartItems map[uint]cart.Item

	nextOrderID   uint
	nextItemID    uint
	nextPaymentID uint
}

func (s *memStore) snapshot() storeSnapshot {
	snap := storeSnapshot{
		products:      make(map[uint]product.Product, len(s.products)),
		users:         make(map[uint]user.User, len(s.users)),
		orders:        make(map[uint]order.Order, len(s.orders)),
		orderNos:      make(map[string]uint, len(s.orderNos)),
		payments:      make(map[uint]payment.Payment, len(s.payments)),
		cartItems:     make(map[uint]cart.Item, len(s.cartItems)),
		nextOrderID:   s.nextOrderID,
		nextItemID:    s.nextItemID,
		nextPaymentID: s.nextPaymentID,
	}
	for id, p := range s.products {
		snap.products[id] = *p
	}
	for id, u := range s.users {
		snap.users[id] = *u
	}
	for id, o := range s.orders {
		cp := *o
		cp.Items = append([]order.OrderItem(nil), o.Items...)
		snap.orders[id] = cp
	}
	for no, id := range s.orderNos {
		snap.orderNos[no] = id
	}
	for id, p := range s.payments {
		snap.payments[id] = *p
	}
	for id, c := range s.cartItems {
		snap.cartItems[id] = *c
	}
	return snap
}

func (s *memStore) restore(snap storeSnapshot) {
	s.products = make(map[uint]*product.Product, len(snap.products))
	for id := range snap.products {
		p := snap.products[id]
		s.products[id] = &p
	}
	s.users = make(map[uint]*user.User, len(snap.users))
	for id := range snap.users {
		u := snap.users[id]
		s.users[id] = &u
	}
	s.orders = make(map[uint]*order.Order, len(snap.orders))
	for id := range snap.orders {
		o := snap.orders[id]
		s.orders[id] = &o
	}
	s.orderNos = snap.orderNos
	s.payments = make(map[uint]*payment.Payment, len(snap.payments))
	for id := range snap.payments {
		p := snap.payments[id]
		s.payments[id] = &p
	}
	s.cartItems = make(map[uint]*cart.Item, len(snap.cartItems))
	for id := range snap.cartItems {
		c := snap.cartItems[id]
		s.cartItems[id] = &c
	}
	s.nextOrderID = snap.nextOrderID
	s.nextItemID = snap.nextItemID
	s.nextPaymentID = snap.nextPaymentID
}

// ---- 商品仓储 ----

type memProductRepo struct{ store *memStore }

func (r *memProductRepo) FindByID(ctx context.Context, id uint) (*product.Product, error) {
	p, ok := r.store.products[id]
	if !ok {
		return nil, product.ErrProductNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *memProductRepo) LockByID(ctx context.Context, id uint) (*product.Product, error) {
	return r.FindByID(ctx, id)
}

func (r *memProductRepo) AdjustStock(ctx context.Context, id uint, delta int) error {
	p, ok := r.store.products[id]
	if !ok {
		return product.ErrProductNotFound
	}
	if p.Stock+delta < 0 {
		return product.ErrOutOfStock
	}
	p.Stock += delta
	return nil
}

func (r *memProductRepo) AdjustSalesCount(ctx context.Context, id uint, delta int) error {
	p, ok := r.store.products[id]
	if !ok {
		return product.ErrProductNotFound
	}
	p.SalesCount += delta
	return nil
}

func (r *memProductRepo) FindSellerByID(ctx context.Context, id uint) (*product.Seller, error) {
	s, ok := r.store.sellers[id]
	if !ok {
		return nil, product.ErrSellerNotFound
	}
	cp := *s
	return &cp, nil
}

// ---- 用户仓储 ----

type memUserRepo struct{ store *memStore }

func (r *memUserRepo) Create(ctx context.Context, u *user.User) error {
	r.store.users[u.ID] = u
	return nil
}

func (r *memUserRepo) FindByID(ctx context.Context, id uint) (*user.User, error) {
	u, ok := r.store.users[id]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memUserRepo) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	for _, u := range r.store.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, user.ErrUserNotFound
}

func (r *memUserRepo) AdjustPoint(ctx context.Context, userID uint, delta int64) error {
	u, ok := r.store.users[userID]
	if !ok {
		return user.ErrUserNotFound
	}
	if u.Point+delta < 0 {
		return user.ErrPointInsufficient
	}
	u.Point += delta
	return nil
}

func (r *memUserRepo) FindAddress(ctx context.Context, userID, addressID uint) (*user.Address, error) {
	a, ok := r.store.addresses[addressID]
	if !ok || a.UserID != userID {
		return nil, user.ErrAddressNotFound
	}
	cp := *a
	return &cp, nil
}

// ---- 订单仓储 ----

type memOrderRepo struct{ store *memStore }

func (r *memOrderRepo) Create(ctx context.Context, o *order.Order) error {
	if _, exists := r.store.orderNos[o.OrderNo]; exists {
		return apperrors.New(apperrors.ErrCodeDuplicateEntry, "订单号冲突")
	}
	r.store.nextOrderID++
	o.ID = r.store.nextOrderID
	for i := range o.Items {
		r.store.nextItemID++
		o.Items[i].ID = r.store.nextItemID
		o.Items[i].OrderID = o.ID
	}
	cp := *o
	cp.Items = append([]order.OrderItem(nil), o.Items...)
	r.store.orders[o.ID] = &cp
	r.store.orderNos[o.OrderNo] = o.ID
	return nil
}

func (r *memOrderRepo) FindByID(ctx context.Context, id uint) (*order.Order, error) {
	o, ok := r.store.orders[id]
	if !ok {
		return nil, order.ErrOrderNotFound
	}
	cp := *o
	cp.Items = append([]order.OrderItem(nil), o.Items...)
	return &cp, nil
}

func (r *memOrderRepo) FindByOrderNo(ctx context.Context, orderNo string) (*order.Order, error) {
	id, ok := r.store.orderNos[orderNo]
	if !ok {
		return nil, order.ErrOrderNotFound
	}
	return r.FindByID(ctx, id)
}

func (r *memOrderRepo) UpdateStatus(ctx context.Context, o *order.Order) error {
	stored, ok := r.store.orders[o.ID]
	if !ok {
		return order.ErrOrderNotFound
	}
	if stored.Version != o.Version {
		return order.ErrOrderConflict
	}
	stored.Status = o.Status
	stored.Version++
	stored.UpdatedAt = o.UpdatedAt
	o.Version = stored.Version
	return nil
}

func (r *memOrderRepo) ListByUserID(ctx context.Context, userID uint, page, pageSize int) ([]*order.Order, int64, error) {
	var result []*order.Order
	for _, o := range r.store.orders {
		if o.UserID == userID {
			cp := *o
			cp.Items = append([]order.OrderItem(nil), o.Items...)
			result = append(result, &cp)
		}
	}
	return result, int64(len(result)), nil
}

func (r *memOrderRepo) MarkItemReviewed(ctx context.Context, orderItemID uint) error {
	for _, o := range r.store.orders {
		for i := range o.Items {
			if o.Items[i].ID == orderItemID {
				if o.Items[i].IsReviewed {
					return order.ErrItemAlreadyReviewed
				}
				o.Items[i].IsReviewed = true
				return nil
			}
		}
	}
	return order.ErrOrderNotFound
}

func (r *memOrderRepo) HasConfirmedPurchase(ctx context.Context, userID, productID uint) (bool, error) {
	for _, o := range r.store.orders {
		if o.UserID != userID || o.Status != order.StatusConfirmed {
			continue
		}
		for _, item := range o.Items {
			if item.ProductID == productID {
				return true, nil
			}
		}
	}
	return false, nil
}

// ---- 支付仓储 ----

type memPaymentRepo struct{ store *memStore }

func (r *memPaymentRepo) Create(ctx context.Context, p *payment.Payment) error {
	r.store.nextPaymentID++
	p.ID = r.store.nextPaymentID
	cp := *p
	r.store.payments[p.ID] = &cp
	return nil
}

func (r *memPaymentRepo) Update(ctx context.Context, p *payment.Payment) error {
	stored, ok := r.store.payments[p.ID]
	if !ok {
		return payment.ErrPaymentNotFound
	}
	*stored = *p
	return nil
}

func (r *memPaymentRepo) FindByID(ctx context.Context, id uint) (*payment.Payment, error) {
	p, ok := r.store.payments[id]
	if !ok {
		return nil, payment.ErrPaymentNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *memPaymentRepo) ListByOrderID(ctx context.Context, orderID uint) ([]*payment.Payment, error) {
	var result []*payment.Payment
	for _, p := range r.store.payments {
		if p.OrderID == orderID {
			cp := *p
			result = append(result, &cp)
		}
	}
	return result, nil
}

func (r *memPaymentRepo) FindLiveByOrderID(ctx context.Context, orderID uint) (*payment.Payment, error) {
	for _, p := range r.store.payments {
		if p.OrderID == orderID && p.Status == payment.StatusCompleted {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memPaymentRepo) FailPendingByOrderID(ctx context.Context, orderID uint) error {
	for _, p := range r.store.payments {
		if p.OrderID == orderID && p.Status == payment.StatusPending {
			p.Status = payment.StatusFailed
		}
	}
	return nil
}

// ---- 购物车仓储 ----

type memCartRepo struct{ store *memStore }

func (r *memCartRepo) ListByUserID(ctx context.Context, userID uint) ([]*cart.Item, error) {
	var result []*cart.Item
	for _, c := range r.store.cartItems {
		if c.UserID == userID {
			cp := *c
			result = append(result, &cp)
		}
	}
	return result, nil
}

func (r *memCartRepo) DeleteItems(ctx context.Context, userID uint, itemIDs []uint) error {
	for _, id := range itemIDs {
		if c, ok := r.store.cartItems[id]; ok && c.UserID == userID {
			delete(r.store.cartItems, id)
		}
	}
	return nil
}

// ---- 事件与缓存 ----

// recordingPublisher 记录发布的事件供断言
type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

type publishedEvent struct {
	routingKey string
	event      event.OrderEvent
}

func (p *recordingPublisher) Publish(ctx context.Context, routingKey string, evt event.OrderEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{routingKey: routingKey, event: evt})
}

// nopCache 空缓存,全部未命中
type nopCache struct{}

func (nopCache) Get(ctx context.Context, orderID uint) (*order.Order, error) { return nil, nil }
func (nopCache) Set(ctx context.Context, o *order.Order) error               { return nil }
func (nopCache) Invalidate(ctx context.Context, orderID uint) error          { return nil }
