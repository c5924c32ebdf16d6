package model

// 队列状态
const (
	QueueStatusWaiting   int8 = 0
	QueueStatusMatched   int8 = 1
	QueueStatusCancelled int8 = 2
)

// 匹配状态
const (
	MatchStatusActive int8 = 0
	MatchStatusEnded  int8 = 1
)

// 好友关系状态
const (
	ContactStatusNormal  int8 = 0
	ContactStatusBlack   int8 = 1
	ContactStatusBlacked int8 = 2
	ContactStatusDeleted int8 = 3
)

// 好友申请状态
const (
	ApplyStatusPending  int8 = 0
	ApplyStatusAgree    int8 = 1
	ApplyStatusRefuse   int8 = 2
	ApplyStatusBlack    int8 = 3
)

// 消息状态
const (
	MessageStatusUnread int8 = 0
	MessageStatusRead   int8 = 1
)

// 用户在线状态
const (
	UserOffline int8 = 0
	UserOnline  int8 = 1
)
