package model

import (
	"time"

	"gorm.io/gorm"
)

// FriendRequest 好友申请
// 匹配中通过房间发起的申请也落到这张表
type FriendRequest struct {
	gorm.Model
	ApplicantId uint64    `gorm:"column:applicant_id;index;not null;comment:申请人ID"`
	TargetId    uint64    `gorm:"column:target_id;index;not null;comment:目标用户ID"`
	Status      int8      `gorm:"column:status;not null;comment:申请状态，0.申请中，1.通过，2.拒绝，3.拉黑"`
	Message     string    `gorm:"column:message;type:varchar(100);comment:申请信息"`
	LastApplyAt time.Time `gorm:"column:last_apply_at;type:datetime;not null;comment:最后申请时间"`
}

func (FriendRequest) TableName() string {
	return "friend_request"
}
