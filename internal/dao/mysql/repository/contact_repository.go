package repository

import (
	"stranger_chat_server/internal/model"

	"gorm.io/gorm"
)

type contactRepository struct {
	db *gorm.DB
}

// NewContactRepository 创建好友关系 Repository
func NewContactRepository(db *gorm.DB) ContactRepository {
	return &contactRepository{db: db}
}

// FindByUserIdAndContactId 查找 userId 视角下与 contactId 的关系
func (r *contactRepository) FindByUserIdAndContactId(userId, contactId uint64) (*model.UserContact, error) {
	var contact model.UserContact
	if err := r.db.Where("user_id = ? AND contact_id = ?", userId, contactId).
		First(&contact).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询好友关系 user_id=%d contact_id=%d", userId, contactId)
	}
	return &contact, nil
}

// FindFriends 列出用户的正常好友关系
func (r *contactRepository) FindFriends(userId uint64) ([]model.UserContact, error) {
	var contacts []model.UserContact
	if err := r.db.Where("user_id = ? AND status = ?", userId, model.ContactStatusNormal).
		Find(&contacts).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询好友列表 user_id=%d", userId)
	}
	return contacts, nil
}

// Create 创建好友关系
func (r *contactRepository) Create(contact *model.UserContact) error {
	if err := r.db.Create(contact).Error; err != nil {
		return wrapDBError(err, "创建好友关系")
	}
	return nil
}

// UpdateStatus 更新关系状态
func (r *contactRepository) UpdateStatus(userId, contactId uint64, status int8) error {
	if err := r.db.Model(&model.UserContact{}).
		Where("user_id = ? AND contact_id = ?", userId, contactId).
		Update("status", status).Error; err != nil {
		return wrapDBErrorf(err, "更新好友关系状态 user_id=%d contact_id=%d", userId, contactId)
	}
	return nil
}

// SoftDelete 软删除好友关系
// 状态置为已删除，记录保留，重新加好友时复用
func (r *contactRepository) SoftDelete(userId, contactId uint64) error {
	if err := r.db.Model(&model.UserContact{}).
		Where("user_id = ? AND contact_id = ?", userId, contactId).
		Update("status", model.ContactStatusDeleted).Error; err != nil {
		return wrapDBErrorf(err, "删除好友关系 user_id=%d contact_id=%d", userId, contactId)
	}
	return nil
}
