package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/xiebiao/shopmall/internal/domain/user"
	apperrors "github.com/xiebiao/shopmall/pkg/errors"
)

// userRepository 用户仓储实现(MySQL)
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建用户仓储
func NewUserRepository(db *gorm.DB) user.Repository {
	return &userRepository{db: db}
}

// Create 创建用户(邮箱重复时转换为ErrEmailDuplicate)
func (r *userRepository) Create(ctx context.Context, u *user.User) error {
	model := toUserModel(u)

	db := getDB(ctx, r.db)
	if err := db.Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return apperrors.ErrEmailDuplicate
		}
		return apperrors.Wrap(err, "创建用户失败")
	}

	u.ID = model.ID
	return nil
}

// FindByID 根据ID查找用户
func (r *userRepository) FindByID(ctx context.Context, id uint) (*user.User, error) {
	var model UserModel
	db := getDB(ctx, r.db)

	err := db.First(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, user.ErrUserNotFound
		}
		return nil, apperrors.Wrap(err, "查询用户失败")
	}

	return toUserEntity(&model), nil
}

// FindByEmail 根据邮箱查找用户
func (r *userRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	var model UserModel
	db := getDB(ctx, r.db)

	err := db.Where("email = ?", email).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, user.ErrUserNotFound
		}
		return nil, apperrors.Wrap(err, "查询用户失败")
	}

	return toUserEntity(&model), nil
}

// AdjustPoint 原子调整积分余额
// UPDATE users SET point = point + delta WHERE id = ? AND point + delta >= 0
// 影响行数为0时区分"用户不存在"和"积分不足"
func (r *userRepository) AdjustPoint(ctx context.Context, userID uint, delta int64) error {
	db := getDB(ctx, r.db)

	result := db.Model(&UserModel{}).
		Where("id = ?", userID).
		Where("point + ? >= 0", delta).
		Update("point", gorm.Expr("point + ?", delta))

	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新积分失败")
	}

	if result.RowsAffected == 0 {
		var model UserModel
		if err := db.First(&model, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return user.ErrUserNotFound
			}
			return apperrors.Wrap(err, "查询用户失败")
		}
		return user.ErrPointInsufficient
	}

	return nil
}

// FindAddress 查找用户的收货地址(带归属条件,他人地址视为不存在)
func (r *userRepository) FindAddress(ctx context.Context, userID, addressID uint) (*user.Address, error) {
	var model AddressModel
	db := getDB(ctx, r.db)

	err := db.Where("id = ? AND user_id = ?", addressID, userID).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, user.ErrAddressNotFound
		}
		return nil, apperrors.Wrap(err, "查询收货地址失败")
	}

	return &user.Address{
		ID:            model.ID,
		UserID:        model.UserID,
		RecipientName: model.RecipientName,
		Phone:         model.Phone,
		ZipCode:       model.ZipCode,
		Address:       model.Address,
		AddressDetail: model.AddressDetail,
		IsDefault:     model.IsDefault,
		CreatedAt:     model.CreatedAt,
		UpdatedAt:     model.UpdatedAt,
	}, nil
}

func toUserModel(u *user.User) *UserModel {
	return &UserModel{
		ID:        u.ID,
		Email:     u.Email,
		Password:  u.Password,
		Nickname:  u.Nickname,
		Point:     u.Point,
		IsAdmin:   u.IsAdmin,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func toUserEntity(model *UserModel) *user.User {
	return &user.User{
		ID:        model.ID,
		Email:     model.Email,
		Password:  model.Password,
		Nickname:  model.Nickname,
		Point:     model.Point,
		IsAdmin:   model.IsAdmin,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}
