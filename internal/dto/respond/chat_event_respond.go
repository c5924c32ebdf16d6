package respond

import "encoding/json"

// ChatEventRespond WebSocket 下行事件信封
// 所有服务端推送统一为 {"event": "...", "data": {...}}
// 使用位置:
//   - internal/service/chat/dispatcher.go
//   - internal/service/chat/relay.go
type ChatEventRespond struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data,omitempty"`
}

// StatusRespond 搜索状态通知
// status 取值: waiting
type StatusRespond struct {
	Status string `json:"status"`
}

// MatchConfirmedRespond 匹配成功通知
// Role 取值: initiator/receiver，发起搜索的一方是 initiator，由它创建 WebRTC offer
type MatchConfirmedRespond struct {
	Room       string `json:"room"`
	PeerId     uint64 `json:"peer_id"`
	PeerName   string `json:"peer_name"`
	PeerAvatar string `json:"peer_avatar"`
	Role       string `json:"role"`
}

// SignalRespond WebRTC 信令转发
// Payload 原样透传，服务端不解析内容
type SignalRespond struct {
	Room    string          `json:"room"`
	From    uint64          `json:"from"`
	Payload json.RawMessage `json:"payload"`
}

// ErrorRespond 错误事件
type ErrorRespond struct {
	Message string `json:"message"`
}

// FriendAddedNotificationRespond 匹配中好友添加成功通知
type FriendAddedNotificationRespond struct {
	FriendId uint64 `json:"friend_id"`
	Nickname string `json:"nickname"`
}

// FriendRequestNotifyRespond 好友申请实时提醒，推送给被申请人
// 客户端收到后刷新待处理申请列表
type FriendRequestNotifyRespond struct {
	ApplicantId uint64 `json:"applicant_id"`
	Message     string `json:"message"`
}

// FriendRequestAcceptedRespond 好友申请通过提醒，推送给申请人
type FriendRequestAcceptedRespond struct {
	FriendId uint64 `json:"friend_id"`
}

// MessageNotificationRespond 新私信提醒
// 接收方不在会话页面时客户端用它刷新角标
type MessageNotificationRespond struct {
	FromId   uint64 `json:"from_id"`
	Nickname string `json:"nickname"`
}
