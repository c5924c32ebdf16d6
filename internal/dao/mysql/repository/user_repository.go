package repository

import (
	"time"

	"stranger_chat_server/internal/model"

	"gorm.io/gorm"
)

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建用户 Repository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// FindById 按数字 ID 查找用户
func (r *userRepository) FindById(id uint64) (*model.UserInfo, error) {
	var user model.UserInfo
	if err := r.db.First(&user, "id = ?", id).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询用户 id=%d", id)
	}
	return &user, nil
}

// FindByUsername 按登录名查找用户
func (r *userRepository) FindByUsername(username string) (*model.UserInfo, error) {
	var user model.UserInfo
	if err := r.db.First(&user, "username = ?", username).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询用户 username=%s", username)
	}
	return &user, nil
}

// FindByIds 按 ID 列表查找用户
func (r *userRepository) FindByIds(ids []uint64) ([]model.UserInfo, error) {
	var users []model.UserInfo
	if len(ids) == 0 {
		return users, nil
	}
	if err := r.db.Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, wrapDBError(err, "批量查询用户")
	}
	return users, nil
}

// Create 创建用户
func (r *userRepository) Create(user *model.UserInfo) error {
	if err := r.db.Create(user).Error; err != nil {
		return wrapDBError(err, "创建用户")
	}
	return nil
}

// UpdateUserInfo 更新用户信息
func (r *userRepository) UpdateUserInfo(user *model.UserInfo) error {
	if err := r.db.Save(user).Error; err != nil {
		return wrapDBError(err, "更新用户信息")
	}
	return nil
}

// SetOnline 标记用户在线并覆盖写入连接句柄
// 同一用户重复注册时，后注册的连接获胜
func (r *userRepository) SetOnline(id uint64, connId string) error {
	updates := map[string]interface{}{
		"is_online":      model.UserOnline,
		"conn_id":        connId,
		"last_online_at": time.Now(),
	}
	if err := r.db.Model(&model.UserInfo{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return wrapDBErrorf(err, "标记用户在线 id=%d", id)
	}
	return nil
}

// SetOffline 标记用户离线
func (r *userRepository) SetOffline(id uint64) error {
	updates := map[string]interface{}{
		"is_online":       model.UserOffline,
		"conn_id":         "",
		"last_offline_at": time.Now(),
	}
	if err := r.db.Model(&model.UserInfo{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return wrapDBErrorf(err, "标记用户离线 id=%d", id)
	}
	return nil
}

// SetAllOffline 标记所有在线用户离线
// 服务启动对账时调用，清掉上次进程残留的在线状态
func (r *userRepository) SetAllOffline() error {
	updates := map[string]interface{}{
		"is_online": model.UserOffline,
		"conn_id":   "",
	}
	if err := r.db.Model(&model.UserInfo{}).Where("is_online = ?", model.UserOnline).Updates(updates).Error; err != nil {
		return wrapDBError(err, "批量标记用户离线")
	}
	return nil
}
