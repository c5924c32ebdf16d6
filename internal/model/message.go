package model

import (
	"time"

	"gorm.io/gorm"
)

// Message 好友私信消息
// Uuid 由雪花算法生成，保证全局有序且唯一
type Message struct {
	gorm.Model
	Uuid      string    `gorm:"column:uuid;uniqueIndex;type:char(20);not null;comment:消息唯一id"`
	SendId    uint64    `gorm:"column:send_id;index;not null;comment:发送者ID"`
	ReceiveId uint64    `gorm:"column:receive_id;index;not null;comment:接收者ID"`
	Type      int8      `gorm:"column:type;not null;comment:消息类型，0.文本"`
	Content   string    `gorm:"column:content;type:varchar(2000);comment:消息内容"`
	Status    int8      `gorm:"column:status;index;not null;comment:状态，0.未读，1.已读"`
	SendAt    time.Time `gorm:"column:send_at;type:datetime;not null;comment:发送时间"`
}

func (Message) TableName() string {
	return "message"
}
