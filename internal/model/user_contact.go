package model

import (
	"gorm.io/gorm"
)

// UserContact 好友关系
// 双向关系存两条记录，UserId 视角下 ContactId 是否好友/拉黑
type UserContact struct {
	gorm.Model
	UserId    uint64 `gorm:"column:user_id;index:idx_user_contact,unique;not null;comment:用户ID"`
	ContactId uint64 `gorm:"column:contact_id;index:idx_user_contact,unique;not null;comment:联系人ID"`
	Status    int8   `gorm:"column:status;index;not null;comment:状态，0.正常，1.拉黑，2.被拉黑，3.已删除"`
}

func (UserContact) TableName() string {
	return "user_contact"
}
