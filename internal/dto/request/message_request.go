package request

// SendMessageRequest 发送好友私信请求
// 使用位置:
//   - internal/handler/message_handler.go: SendMessage
//   - internal/service/chat/dispatcher.go: send_message 事件
type SendMessageRequest struct {
	ReceiveId uint64 `json:"receive_id" binding:"required"`
	Type      int8   `json:"type"`
	Content   string `json:"content" binding:"required,max=2000"`
}

// GetMessageListRequest 获取与某个好友的历史消息请求
type GetMessageListRequest struct {
	PeerId uint64 `json:"peer_id" binding:"required"`
}

// MarkAsReadRequest 标记已读请求
// 将 peer 发给当前用户的未读消息全部置为已读
type MarkAsReadRequest struct {
	PeerId uint64 `json:"peer_id" binding:"required"`
}
