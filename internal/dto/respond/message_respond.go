package respond

// MessageRespond 私信消息
// 历史消息列表和 receive_message 实时推送复用该结构
type MessageRespond struct {
	Uuid      string `json:"uuid"`
	SendId    uint64 `json:"send_id"`
	ReceiveId uint64 `json:"receive_id"`
	Type      int8   `json:"type"`
	Content   string `json:"content"`
	Status    int8   `json:"status"`
	SendAt    string `json:"send_at"`
}
