package payment

import (
	"context"
	"sync"

	"github.com/xiebiao/shopmall/internal/domain/order"
	"github.com/xiebiao/shopmall/internal/domain/payment"
	"github.com/xiebiao/shopmall/internal/domain/product"
	"github.com/xiebiao/shopmall/internal/domain/user"
	"github.com/xiebiao/shopmall/internal/infrastructure/event"
)

// memStore 支付用例测试的内存存储
type memStore struct {
	mu sync.Mutex

	orders   map[uint]*order.Order
	payments map[uint]*payment.Payment
	users    map[uint]*user.User
	products map[uint]*product.Product

	nextPaymentID uint
}

func newMemStore() *memStore {
	return &memStore{
		orders:   make(map[uint]*order.Order),
		payments: make(map[uint]*payment.Payment),
		users:    make(map[uint]*user.User),
		products: make(map[uint]*product.Product),
	}
}

// memTx 事务期间持锁,失败时快照还原模拟ROLLBACK
type memTx struct{ store *memStore }

func (t *memTx) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()

	snapOrders := make(map[uint]order.Order, len(t.store.orders))
	for id, o := range t.store.orders {
		cp := *o
		cp.Items = append([]order.OrderItem(nil), o.Items...)
		snapOrders[id] = cp
	}
	snapPayments := make(map[uint]payment.Payment, len(t.store.payments))
	for id, p := range t.store.payments {
		snapPayments[id] = *p
	}
	snapUsers := make(map[uint]user.User, len(t.store.users))
	for id, u := range t.store.users {
		snapUsers[id] = *u
	}
	snapProducts := make(map[uint]product.Product, len(t.store.products))
	for id, p := range t.store.products {
		snapProducts[id] = *p
	}
	snapNext := t.store.nextPaymentID

	if err := fn(ctx); err != nil {
		t.store.orders = make(map[uint]*order.Order, len(snapOrders))
		for id := range snapOrders {
			o := snapOrders[id]
			t.store.orders[id] = &o
		}
		t.store.payments = make(map[uint]*payment.Payment, len(snapPayments))
		for id := range snapPayments {
			p := snapPayments[id]
			t.store.payments[id] = &p
		}
		t.store.users = make(map[uint]*user.User, len(snapUsers))
		for id := range snapUsers {
			u := snapUsers[id]
			t.store.users[id] = &u
		}
		t.store.products = make(map[uint]*product.Product, len(snapProducts))
		for id := range snapProducts {
			p := snapProducts[id]
			t.store.products[id] = &p
		}
		t.store.nextPaymentID = snapNext
		return err
	}
	return nil
}

type memOrderRepo struct{ store *memStore }

func (r *memOrderRepo) Create(ctx context.Context, o *order.Order) error {
	r.store.orders[o.ID] = o
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
	for _, o := range r.store.orders {
		if o.OrderNo == orderNo {
			cp := *o
			return &cp, nil
		}
	}
	return nil, order.ErrOrderNotFound
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
	o.Version = stored.Version
	return nil
}

func (r *memOrderRepo) ListByUserID(ctx context.Context, userID uint, page, pageSize int) ([]*order.Order, int64, error) {
	return nil, 0, nil
}

func (r *memOrderRepo) MarkItemReviewed(ctx context.Context, orderItemID uint) error {
	return nil
}

func (r *memOrderRepo) HasConfirmedPurchase(ctx context.Context, userID, productID uint) (bool, error) {
	return false, nil
}

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
	return nil, user.ErrAddressNotFound
}

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
	return nil, product.ErrSellerNotFound
}

// recordingPublisher 记录发布的事件
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

type nopCache struct{}

func (nopCache) Invalidate(ctx context.Context, orderID uint) error { return nil }
