package request

import "encoding/json"

// ChatEventRequest WebSocket 事件信封
// 所有客户端上行事件统一为 {"event": "...", "data": {...}}
// 使用位置:
//   - internal/service/chat/conn.go: Read
//   - internal/service/chat/dispatcher.go: Dispatch
type ChatEventRequest struct {
	Event string          `json:"event" binding:"required"`
	Data  json.RawMessage `json:"data"`
}

// SignalRequest WebRTC 信令转发请求
// Payload 对服务端完全不透明，原样转发给房间内对端
type SignalRequest struct {
	Room    string          `json:"room" binding:"required"`
	Payload json.RawMessage `json:"payload"`
}

// EndChatRequest 结束当前匹配请求
// Room 可选，缺省时结束用户当前进行中的匹配
type EndChatRequest struct {
	Room string `json:"room"`
}

// AddFriendInMatchRequest 匹配中添加好友请求
// 只带房间号，对端身份由服务端从匹配记录解析
type AddFriendInMatchRequest struct {
	Room    string `json:"room" binding:"required"`
	Message string `json:"message" binding:"max=100"`
}
