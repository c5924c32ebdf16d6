package model

import (
	"database/sql"
	"time"

	"gorm.io/gorm"
)

// ActiveMatch 活跃匹配记录
// User1Id < User2Id，保证同一对用户只有一种表示
type ActiveMatch struct {
	gorm.Model
	RoomId   string       `gorm:"column:room_id;uniqueIndex;type:varchar(80);not null;comment:房间id"`
	User1Id  uint64       `gorm:"column:user1_id;index;not null;comment:较小的用户ID"`
	User2Id  uint64       `gorm:"column:user2_id;index;not null;comment:较大的用户ID"`
	Status   int8         `gorm:"column:status;index;not null;comment:状态，0.进行中，1.已结束"`
	EndedBy  uint64       `gorm:"column:ended_by;comment:结束发起者用户ID，0表示系统"`
	EndedAt  sql.NullTime `gorm:"column:ended_at;type:datetime;comment:结束时间"`
	PairedAt time.Time    `gorm:"column:paired_at;type:datetime;not null;comment:配对时间"`
}

func (ActiveMatch) TableName() string {
	return "active_match"
}

// OtherUser 返回 userId 在该匹配中的对端用户
// userId 不属于该匹配时返回 0
func (m *ActiveMatch) OtherUser(userId uint64) uint64 {
	switch userId {
	case m.User1Id:
		return m.User2Id
	case m.User2Id:
		return m.User1Id
	}
	return 0
}

// Involves 判断 userId 是否是该匹配的参与者
func (m *ActiveMatch) Involves(userId uint64) bool {
	return userId == m.User1Id || userId == m.User2Id
}
