package respond

// MyFriendListRespond 好友列表条目
// 使用位置:
//   - internal/service/contact/contact_service.go: GetFriendList
type MyFriendListRespond struct {
	Id       uint64 `json:"id"`
	Nickname string `json:"nickname"`
	Avatar   string `json:"avatar"`
	IsOnline int8   `json:"is_online"`
}

// NewFriendRequestRespond 待处理好友申请条目
type NewFriendRequestRespond struct {
	ApplicantId uint64 `json:"applicant_id"`
	Nickname    string `json:"nickname"`
	Avatar      string `json:"avatar"`
	Message     string `json:"message"`
	LastApplyAt string `json:"last_apply_at"`
}
