package repository

import (
	"stranger_chat_server/internal/model"

	"gorm.io/gorm"
)

type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository 创建消息 Repository
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

// Create 保存消息
func (r *messageRepository) Create(message *model.Message) error {
	if err := r.db.Create(message).Error; err != nil {
		return wrapDBError(err, "保存消息")
	}
	return nil
}

// FindByUserIds 查找两个用户之间的全部私聊消息，按发送时间升序
func (r *messageRepository) FindByUserIds(userOneId, userTwoId uint64) ([]model.Message, error) {
	var messages []model.Message
	if err := r.db.Where(
		"(send_id = ? AND receive_id = ?) OR (send_id = ? AND receive_id = ?)",
		userOneId, userTwoId, userTwoId, userOneId).
		Order("send_at asc").Find(&messages).Error; err != nil {
		return nil, wrapDBError(err, "查询私聊消息")
	}
	return messages, nil
}

// MarkRead 将 sendId 发给 receiveId 的未读消息置为已读
func (r *messageRepository) MarkRead(sendId, receiveId uint64) error {
	if err := r.db.Model(&model.Message{}).
		Where("send_id = ? AND receive_id = ? AND status = ?", sendId, receiveId, model.MessageStatusUnread).
		Update("status", model.MessageStatusRead).Error; err != nil {
		return wrapDBErrorf(err, "标记消息已读 send_id=%d receive_id=%d", sendId, receiveId)
	}
	return nil
}
