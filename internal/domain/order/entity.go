package order

import (
	"time"
)

// Status 订单状态
// 设计说明:
// 1. 使用string类型存储(状态值是对外契约,评价模块等协作方直接依赖这些字面值)
// 2. 状态机以"转换表"数据形式表达,合法性规则只存在于一处
type Status string

const (
	StatusOrderPlaced      Status = "ORDER_PLACED"      // 已下单(待支付发起)
	StatusPaymentPending   Status = "PAYMENT_PENDING"   // 支付进行中
	StatusPaymentConfirmed Status = "PAYMENT_CONFIRMED" // 支付完成
	StatusPreparing        Status = "PREPARING"         // 备货中
	StatusShipping         Status = "SHIPPING"          // 配送中
	StatusDelivered        Status = "DELIVERED"         // 已送达
	StatusConfirmed        Status = "CONFIRMED"         // 确认收货(可申请退货/可评价)
	StatusReturnRequested  Status = "RETURN_REQUESTED"  // 退货申请中
	StatusReturned         Status = "RETURNED"          // 退货完成(终态)
	StatusCancelled        Status = "CANCELLED"         // 已取消(终态)
)

// AllStatuses 全部状态(测试遍历用)
var AllStatuses = []Status{
	StatusOrderPlaced,
	StatusPaymentPending,
	StatusPaymentConfirmed,
	StatusPreparing,
	StatusShipping,
	StatusDelivered,
	StatusConfirmed,
	StatusReturnRequested,
	StatusReturned,
	StatusCancelled,
}

// ParseStatus 解析状态字符串(管理端接口用)
func ParseStatus(value string) (Status, bool) {
	for _, s := range AllStatuses {
		if string(s) == value {
			return s, true
		}
	}
	return "", false
}

// Label 中文描述(日志/展示用)
func (s Status) Label() string {
	switch s {
	case StatusOrderPlaced:
		return "已下单"
	case StatusPaymentPending:
		return "支付中"
	case StatusPaymentConfirmed:
		return "支付完成"
	case StatusPreparing:
		return "备货中"
	case StatusShipping:
		return "配送中"
	case StatusDelivered:
		return "已送达"
	case StatusConfirmed:
		return "确认收货"
	case StatusReturnRequested:
		return "退货申请中"
	case StatusReturned:
		return "退货完成"
	case StatusCancelled:
		return "已取消"
	default:
		return "未知状态"
	}
}

// transitions 合法状态转换表
// 设计说明:状态机用数据表达而非多态分发,合法性规则只在这里定义
// CANCELLED和RETURNED是终态,无出边
var transitions = map[Status][]Status{
	StatusOrderPlaced:      {StatusPaymentPending, StatusCancelled},
	StatusPaymentPending:   {StatusPaymentConfirmed, StatusCancelled},
	StatusPaymentConfirmed: {StatusPreparing},
	StatusPreparing:        {StatusShipping},
	StatusShipping:         {StatusDelivered},
	StatusDelivered:        {StatusConfirmed, StatusReturnRequested},
	StatusConfirmed:        {StatusReturnRequested},
	StatusReturnRequested:  {StatusReturned},
	StatusReturned:         {},
	StatusCancelled:        {},
}

// AssertTransition 校验状态转换合法性
// 规则:
// 1. current == target 时视为无操作,直接放行
// 2. 否则查转换表,不在表中的转换返回ErrInvalidStatusTransition
//
// 所有修改订单状态的路径(含管理端覆写)都必须经过本函数,任何调用方不得绕过。
func AssertTransition(current, target Status) error {
	if current == target {
		return nil
	}

	allowed, ok := transitions[current]
	if !ok {
		return ErrInvalidStatusTransition
	}
	for _, s := range allowed {
		if s == target {
			return nil
		}
	}
	return ErrInvalidStatusTransition
}

// GuardTransition 在基础合法性之上叠加支付前置条件
//
// hasLivePayment: 该订单是否存在"已完成且未退款"的支付记录
// 前置条件:
// 1. 进入PAYMENT_CONFIRMED必须已有完成的支付
// 2. 存在未退款的完成支付时,禁止进入CANCELLED/RETURNED(必须先退款)
func GuardTransition(current, target Status, hasLivePayment bool) error {
	if err := AssertTransition(current, target); err != nil {
		return err
	}
	if current == target {
		return nil
	}

	switch target {
	case StatusPaymentConfirmed:
		if !hasLivePayment {
			return ErrPaymentRequired
		}
	case StatusCancelled, StatusReturned:
		if hasLivePayment {
			return ErrRefundRequired
		}
	}
	return nil
}

// NeedsCompensation 该转换是否需要执行补偿(回补库存/销量/积分)
// 进入CANCELLED(仅从未支付状态可达)或RETURNED时需要补偿,且必须与状态变更同事务
func NeedsCompensation(current, target Status) bool {
	if current == target {
		return false
	}
	return target == StatusCancelled || target == StatusReturned
}

// Order 订单实体(聚合根)
// 设计说明:
// 1. Order是聚合根,OrderItem是子实体,必须一起持久化
// 2. 收货地址在下单时快照到订单上,后续地址簿修改不影响历史订单
// 3. Version是乐观锁版本号,状态变更竞争时检测丢失更新
type Order struct {
	ID          uint
	OrderNo     string // 订单号(业务主键,全局唯一)
	UserID      uint
	Status      Status
	TotalAmount int64 // 商品总金额(分),折扣前合计
	PointUsed   int64 // 使用积分(分)
	FinalAmount int64 // 实付金额 = TotalAmount - PointUsed,恒>=0
	Memo        string

	// 收货地址快照
	RecipientName string
	Phone         string
	ZipCode       string
	Address       string
	AddressDetail string

	Version   int // 乐观锁版本号
	Items     []OrderItem
	CreatedAt time.Time
	UpdatedAt time.Time
}

// OrderItem 订单明细项(价格冻结快照)
// 设计说明:
// 1. 单价/商品名/卖家名记录"下单时"的值,商家改价改名不影响历史订单
// 2. 不直接关联Product对象,只保存ProductID(避免跨聚合引用)
// 3. IsReviewed由评价模块单向置位,不可回退
type OrderItem struct {
	ID              uint
	OrderID         uint
	ProductID       uint
	SellerID        uint
	ProductName     string // 下单时商品名快照
	SellerName      string // 下单时卖家名快照
	SelectedOptions string // 选中的规格选项
	Quantity        int
	UnitPrice       int64 // 下单时单价(分)
	LineTotal       int64 // UnitPrice * Quantity
	IsReviewed      bool
}

// NewOrder 创建新订单(工厂方法)
// finalAmount为0时(积分全额抵扣)直接进入PAYMENT_CONFIRMED,无需支付记录
func NewOrder(orderNo string, userID uint, items []OrderItem, totalAmount, pointUsed int64) *Order {
	status := StatusOrderPlaced
	if totalAmount-pointUsed == 0 {
		status = StatusPaymentConfirmed
	}

	now := time.Now()
	return &Order{
		OrderNo:     orderNo,
		UserID:      userID,
		Status:      status,
		TotalAmount: totalAmount,
		PointUsed:   pointUsed,
		FinalAmount: totalAmount - pointUsed,
		Items:       items,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// TransitionTo 状态转换(仅合法性校验,支付前置条件由调用方通过GuardTransition保证)
func (o *Order) TransitionTo(target Status) error {
	if err := AssertTransition(o.Status, target); err != nil {
		return err
	}
	o.Status = target
	o.UpdatedAt = time.Now()
	return nil
}

// IsOwnedBy 订单归属校验,防止访问他人订单
func (o *Order) IsOwnedBy(userID uint) bool {
	return o.UserID == userID
}

// IsTerminal 是否处于终态
func (o *Order) IsTerminal() bool {
	return o.Status == StatusCancelled || o.Status == StatusReturned
}
