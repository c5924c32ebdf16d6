package model

import (
	"time"

	"gorm.io/gorm"
)

// QueueEntry 匹配等待队列
// 每个用户同一时刻最多一条 waiting 记录
type QueueEntry struct {
	gorm.Model
	UserId     uint64    `gorm:"column:user_id;index;not null;comment:等待用户ID"`
	Status     int8      `gorm:"column:status;index;not null;comment:状态，0.等待中，1.已匹配，2.已取消"`
	EnqueuedAt time.Time `gorm:"column:enqueued_at;type:datetime;not null;comment:入队时间"`
}

func (QueueEntry) TableName() string {
	return "queue_entry"
}
