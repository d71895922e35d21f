package user

import "context"

// Repository 用户仓储接口
type Repository interface {
	// Create 创建用户(邮箱唯一性由数据库UNIQUE索引保证)
	Create(ctx context.Context, user *User) error

	// FindByID 根据ID查找用户
	FindByID(ctx context.Context, id uint) (*User, error)

	// FindByEmail 根据邮箱查找用户
	FindByEmail(ctx context.Context, email string) (*User, error)

	// AdjustPoint 相对调整积分余额(抵扣为负,返还为正)
	// 扣减时带point + delta >= 0守卫,守卫不满足返回ErrPointInsufficient
	AdjustPoint(ctx context.Context, userID uint, delta int64) error

	// FindAddress 查找用户的收货地址(归属校验,非本人地址返回ErrAddressNotFound)
	FindAddress(ctx context.Context, userID, addressID uint) (*Address, error)
}
