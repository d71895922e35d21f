package user

import "github.com/xiebiao/shopmall/pkg/errors"

var (
	ErrUserNotFound      = errors.New(errors.ErrCodeUserNotFound, "用户不存在")
	ErrAddressNotFound   = errors.New(errors.ErrCodeNotFound, "收货地址不存在")
	ErrPointInsufficient = errors.New(errors.ErrCodePointInsufficient, "积分余额不足")
)
