package repository

import (
	"time"

	"stranger_chat_server/internal/model"

	"gorm.io/gorm"
)

type queueRepository struct {
	db *gorm.DB
}

// NewQueueRepository 创建队列 Repository
func NewQueueRepository(db *gorm.DB) QueueRepository {
	return &queueRepository{db: db}
}

// FindWaitingByUser 查找用户当前的等待记录
func (r *queueRepository) FindWaitingByUser(userId uint64) (*model.QueueEntry, error) {
	var entry model.QueueEntry
	if err := r.db.Where("user_id = ? AND status = ?", userId, model.QueueStatusWaiting).First(&entry).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询等待记录 user_id=%d", userId)
	}
	return &entry, nil
}

// CreateWaiting 为用户创建等待记录
func (r *queueRepository) CreateWaiting(userId uint64, at time.Time) (*model.QueueEntry, error) {
	entry := &model.QueueEntry{
		UserId:     userId,
		Status:     model.QueueStatusWaiting,
		EnqueuedAt: at,
	}
	if err := r.db.Create(entry).Error; err != nil {
		return nil, wrapDBErrorf(err, "创建等待记录 user_id=%d", userId)
	}
	return entry, nil
}

// CancelWaiting 取消用户的所有等待记录
// 没有等待记录时不报错，保持幂等
func (r *queueRepository) CancelWaiting(userId uint64) error {
	if err := r.db.Model(&model.QueueEntry{}).
		Where("user_id = ? AND status = ?", userId, model.QueueStatusWaiting).
		Update("status", model.QueueStatusCancelled).Error; err != nil {
		return wrapDBErrorf(err, "取消等待记录 user_id=%d", userId)
	}
	return nil
}

// CancelForUsers 将多名用户的全部未取消记录置为已取消
// 匹配结束时的兜底清理，等待中和已匹配的记录一并作废
func (r *queueRepository) CancelForUsers(userIds []uint64) error {
	if len(userIds) == 0 {
		return nil
	}
	if err := r.db.Model(&model.QueueEntry{}).
		Where("user_id IN ? AND status <> ?", userIds, model.QueueStatusCancelled).
		Update("status", model.QueueStatusCancelled).Error; err != nil {
		return wrapDBError(err, "批量取消排队记录")
	}
	return nil
}

// MarkMatched 将指定用户的等待记录置为已匹配
// 配对事务内调用，两个用户一起更新
func (r *queueRepository) MarkMatched(userIds []uint64) error {
	if len(userIds) == 0 {
		return nil
	}
	if err := r.db.Model(&model.QueueEntry{}).
		Where("user_id IN ? AND status = ?", userIds, model.QueueStatusWaiting).
		Update("status", model.QueueStatusMatched).Error; err != nil {
		return wrapDBError(err, "标记等待记录已匹配")
	}
	return nil
}

// ListWaiting 按入队时间升序列出所有等待记录
func (r *queueRepository) ListWaiting() ([]model.QueueEntry, error) {
	var entries []model.QueueEntry
	if err := r.db.Where("status = ?", model.QueueStatusWaiting).
		Order("enqueued_at asc").Find(&entries).Error; err != nil {
		return nil, wrapDBError(err, "查询等待队列")
	}
	return entries, nil
}

// ListWaitingBefore 列出早于 cutoff 入队的等待记录
// 超时清扫使用
func (r *queueRepository) ListWaitingBefore(cutoff time.Time) ([]model.QueueEntry, error) {
	var entries []model.QueueEntry
	if err := r.db.Where("status = ? AND enqueued_at < ?", model.QueueStatusWaiting, cutoff).
		Order("enqueued_at asc").Find(&entries).Error; err != nil {
		return nil, wrapDBError(err, "查询超时等待记录")
	}
	return entries, nil
}
