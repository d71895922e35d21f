package user

import (
	"time"
)

// User 用户实体(聚合根)
// 设计说明:
// 1. 密码仅存bcrypt哈希,不提供明文访问方法
// 2. Point是积分余额(与金额同单位,分),只做相对增减,恒>=0
// 3. 领域实体不依赖GORM tag,映射由infrastructure层处理
type User struct {
	ID        uint
	Email     string
	Password  string // bcrypt哈希值
	Nickname  string
	Point     int64 // 积分余额(分)
	IsAdmin   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewUser 创建新用户(工厂方法)
// hashedPassword必须是bcrypt加密后的密码
func NewUser(email, hashedPassword, nickname string) *User {
	now := time.Now()
	return &User{
		Email:     email,
		Password:  hashedPassword,
		Nickname:  nickname,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// HasEnoughPoint 积分余额是否足够抵扣
func (u *User) HasEnoughPoint(amount int64) bool {
	return u.Point >= amount
}

// Address 收货地址(地址簿条目)
// 下单时内容快照到订单,之后修改地址簿不影响历史订单
type Address struct {
	ID            uint
	UserID        uint
	RecipientName string
	Phone         string
	ZipCode       string
	Address       string
	AddressDetail string
	IsDefault     bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsOwnedBy 地址归属校验,防止用他人地址下单
func (a *Address) IsOwnedBy(userID uint) bool {
	return a.UserID == userID
}
