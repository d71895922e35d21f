package mysql

import (
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/xiebiao/shopmall/internal/infrastructure/config"
)

// NewDB 创建数据库连接
// 设计说明:
// 1. GORM v2作为ORM,连接池参数从配置读取
// 2. 开发环境打印SQL,生产环境关闭
// 3. TranslateError开启后,唯一索引冲突会被翻译为gorm.ErrDuplicatedKey
// 4. AutoMigrate仅用于开发环境,生产环境用版本化迁移脚本
func NewDB(cfg *config.Config) (*gorm.DB, error) {
	dsn := cfg.Database.DSN()

	logLevel := logger.Silent
	if cfg.Server.Mode == "debug" {
		logLevel = logger.Info
	}

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取SQL DB失败: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("数据库连接测试失败: %w", err)
	}

	if err := autoMigrate(db); err != nil {
		return nil, fmt.Errorf("数据库迁移失败: %w", err)
	}

	return db, nil
}

// autoMigrate 自动迁移表结构
func autoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&UserModel{},
		&AddressModel{},
		&SellerModel{},
		&ProductModel{},
		&OrderModel{},
		&OrderItemModel{},
		&PaymentModel{},
		&CartItemModel{},
	)
}

// UserModel GORM用户模型
// 设计说明:infrastructure层的数据模型带GORM tag,与domain实体分离,
// Repository负责两者之间的转换
type UserModel struct {
	ID        uint           `gorm:"primaryKey"`
	Email     string         `gorm:"uniqueIndex;size:100;not null;comment:邮箱"`
	Password  string         `gorm:"size:255;not null;comment:密码(bcrypt加密)"`
	Nickname  string         `gorm:"size:50;not null;comment:昵称"`
	Point     int64          `gorm:"not null;default:0;comment:积分余额(分)"`
	IsAdmin   bool           `gorm:"not null;default:false;comment:是否管理员"`
	CreatedAt time.Time      `gorm:"comment:创建时间"`
	UpdatedAt time.Time      `gorm:"comment:更新时间"`
	DeletedAt gorm.DeletedAt `gorm:"index;comment:删除时间(软删除)"`
}

func (UserModel) TableName() string {
	return "users"
}

// AddressModel GORM收货地址模型
type AddressModel struct {
	ID            uint      `gorm:"primaryKey"`
	UserID        uint      `gorm:"index;not null;comment:用户ID"`
	RecipientName string    `gorm:"size:50;not null;comment:收件人"`
	Phone         string    `gorm:"size:20;not null;comment:电话"`
	ZipCode       string    `gorm:"size:10;comment:邮编"`
	Address       string    `gorm:"size:200;not null;comment:地址"`
	AddressDetail string    `gorm:"size:200;comment:详细地址"`
	IsDefault     bool      `gorm:"not null;default:false;comment:是否默认地址"`
	CreatedAt     time.Time `gorm:"comment:创建时间"`
	UpdatedAt     time.Time `gorm:"comment:更新时间"`
}

func (AddressModel) TableName() string {
	return "addresses"
}

// SellerModel GORM卖家模型
type SellerModel struct {
	ID        uint      `gorm:"primaryKey"`
	Name      string    `gorm:"size:100;not null;comment:卖家名"`
	CreatedAt time.Time `gorm:"comment:创建时间"`
	UpdatedAt time.Time `gorm:"comment:更新时间"`
}

func (SellerModel) TableName() string {
	return "sellers"
}

// ProductModel GORM商品模型
// 设计说明:
// 1. 金额用int64存"分",避免浮点精度问题
// 2. Stock带CHECK约束式守卫在SQL层实现(stock + delta >= 0)
type ProductModel struct {
	ID            uint           `gorm:"primaryKey"`
	SellerID      uint           `gorm:"index;not null;comment:卖家ID"`
	Name          string         `gorm:"size:200;not null;comment:商品名"`
	Description   string         `gorm:"type:text;comment:商品描述"`
	Price         int64          `gorm:"not null;comment:原价(分)"`
	DiscountPrice int64          `gorm:"not null;default:0;comment:折扣价(分),0表示无折扣"`
	Stock         int            `gorm:"not null;default:0;comment:库存"`
	SalesCount    int            `gorm:"not null;default:0;comment:累计销量"`
	OnSale        bool           `gorm:"not null;default:true;comment:是否上架"`
	CreatedAt     time.Time      `gorm:"comment:创建时间"`
	UpdatedAt     time.Time      `gorm:"comment:更新时间"`
	DeletedAt     gorm.DeletedAt `gorm:"index;comment:删除时间(软删除)"`
}

func (ProductModel) TableName() string {
	return "products"
}

// OrderModel GORM订单模型
// 设计说明:
// 1. OrderNo唯一索引是业务主键,订单号碰撞由该索引兜底
// 2. Status存字符串字面值(对外契约),带索引
// 3. Version是乐观锁版本号,状态更新以其为条件
// 4. 收货地址快照列,下单后不再随地址簿变化
type OrderModel struct {
	ID            uint             `gorm:"primaryKey"`
	OrderNo       string           `gorm:"uniqueIndex;size:32;not null;comment:订单号"`
	UserID        uint             `gorm:"index;not null;comment:买家用户ID"`
	Status        string           `gorm:"index;size:20;not null;comment:订单状态"`
	TotalAmount   int64            `gorm:"not null;comment:商品总金额(分)"`
	PointUsed     int64            `gorm:"not null;default:0;comment:使用积分(分)"`
	FinalAmount   int64            `gorm:"not null;comment:实付金额(分)"`
	Memo          string           `gorm:"size:500;comment:买家备注"`
	RecipientName string           `gorm:"size:50;not null;comment:收件人快照"`
	Phone         string           `gorm:"size:20;not null;comment:电话快照"`
	ZipCode       string           `gorm:"size:10;comment:邮编快照"`
	Address       string           `gorm:"size:200;not null;comment:地址快照"`
	AddressDetail string           `gorm:"size:200;comment:详细地址快照"`
	Version       int              `gorm:"not null;default:0;comment:乐观锁版本号"`
	Items         []OrderItemModel `gorm:"foreignKey:OrderID"`
	CreatedAt     time.Time        `gorm:"index;comment:创建时间"`
	UpdatedAt     time.Time        `gorm:"comment:更新时间"`
}

func (OrderModel) TableName() string {
	return "orders"
}

// OrderItemModel GORM订单明细模型(价格冻结快照)
type OrderItemModel struct {
	ID              uint   `gorm:"primaryKey"`
	OrderID         uint   `gorm:"index;not null;comment:订单ID"`
	ProductID       uint   `gorm:"index;not null;comment:商品ID"`
	SellerID        uint   `gorm:"index;not null;comment:卖家ID"`
	ProductName     string `gorm:"size:200;not null;comment:下单时商品名"`
	SellerName      string `gorm:"size:100;not null;comment:下单时卖家名"`
	SelectedOptions string `gorm:"size:200;comment:选中规格"`
	Quantity        int    `gorm:"not null;comment:购买数量"`
	UnitPrice       int64  `gorm:"not null;comment:下单时单价(分)"`
	LineTotal       int64  `gorm:"not null;comment:行小计(分)"`
	IsReviewed      bool   `gorm:"not null;default:false;comment:是否已评价"`
}

func (OrderItemModel) TableName() string {
	return "order_items"
}

// PaymentModel GORM支付记录模型
type PaymentModel struct {
	ID         uint       `gorm:"primaryKey"`
	OrderID    uint       `gorm:"index;not null;comment:订单ID"`
	UserID     uint       `gorm:"index;not null;comment:用户ID"`
	Method     string     `gorm:"size:20;not null;comment:支付方式"`
	Amount     int64      `gorm:"not null;comment:支付金额(分)"`
	PointUsed  int64      `gorm:"not null;default:0;comment:支付时追加使用积分(分)"`
	Status     string     `gorm:"index;size:20;not null;comment:支付状态"`
	TradeNo    string     `gorm:"size:64;comment:第三方流水号"`
	PaidAt     *time.Time `gorm:"comment:支付完成时间"`
	RefundedAt *time.Time `gorm:"comment:退款时间"`
	CreatedAt  time.Time  `gorm:"comment:创建时间"`
	UpdatedAt  time.Time  `gorm:"comment:更新时间"`
}

func (PaymentModel) TableName() string {
	return "payments"
}

// CartItemModel GORM购物车条目模型
type CartItemModel struct {
	ID              uint      `gorm:"primaryKey"`
	UserID          uint      `gorm:"index;not null;comment:用户ID"`
	ProductID       uint      `gorm:"index;not null;comment:商品ID"`
	Quantity        int       `gorm:"not null;comment:数量"`
	SelectedOptions string    `gorm:"size:200;comment:选中规格"`
	CreatedAt       time.Time `gorm:"comment:创建时间"`
	UpdatedAt       time.Time `gorm:"comment:更新时间"`
}

func (CartItemModel) TableName() string {
	return "cart_items"
}
