package repository

import (
	"database/sql"
	"time"

	"stranger_chat_server/internal/model"

	"gorm.io/gorm"
)

type matchRepository struct {
	db *gorm.DB
}

// NewMatchRepository 创建匹配 Repository
func NewMatchRepository(db *gorm.DB) MatchRepository {
	return &matchRepository{db: db}
}

// Create 创建匹配记录
func (r *matchRepository) Create(match *model.ActiveMatch) error {
	if err := r.db.Create(match).Error; err != nil {
		return wrapDBError(err, "创建匹配记录")
	}
	return nil
}

// FindByRoom 按房间 id 查找匹配，不限状态
func (r *matchRepository) FindByRoom(roomId string) (*model.ActiveMatch, error) {
	var match model.ActiveMatch
	if err := r.db.First(&match, "room_id = ?", roomId).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询匹配 room_id=%s", roomId)
	}
	return &match, nil
}

// FindActiveByRoom 按房间 id 查找进行中的匹配
func (r *matchRepository) FindActiveByRoom(roomId string) (*model.ActiveMatch, error) {
	var match model.ActiveMatch
	if err := r.db.Where("room_id = ? AND status = ?", roomId, model.MatchStatusActive).
		First(&match).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询进行中匹配 room_id=%s", roomId)
	}
	return &match, nil
}

// FindActiveByUser 查找用户当前进行中的匹配
func (r *matchRepository) FindActiveByUser(userId uint64) (*model.ActiveMatch, error) {
	var match model.ActiveMatch
	if err := r.db.Where("(user1_id = ? OR user2_id = ?) AND status = ?",
		userId, userId, model.MatchStatusActive).First(&match).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询用户匹配 user_id=%d", userId)
	}
	return &match, nil
}

// AllActive 列出所有进行中的匹配
func (r *matchRepository) AllActive() ([]model.ActiveMatch, error) {
	var matches []model.ActiveMatch
	if err := r.db.Where("status = ?", model.MatchStatusActive).Find(&matches).Error; err != nil {
		return nil, wrapDBError(err, "查询进行中匹配列表")
	}
	return matches, nil
}

// End 将匹配置为已结束
// 已结束的记录不再更新，重复调用无副作用
func (r *matchRepository) End(roomId string, endedBy uint64, at time.Time) error {
	updates := map[string]interface{}{
		"status":   model.MatchStatusEnded,
		"ended_by": endedBy,
		"ended_at": sql.NullTime{Time: at, Valid: true},
	}
	if err := r.db.Model(&model.ActiveMatch{}).
		Where("room_id = ? AND status = ?", roomId, model.MatchStatusActive).
		Updates(updates).Error; err != nil {
		return wrapDBErrorf(err, "结束匹配 room_id=%s", roomId)
	}
	return nil
}
