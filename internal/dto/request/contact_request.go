package request

// ApplyFriendRequest 发起好友申请请求
// 使用位置:
//   - internal/handler/contact_handler.go: ApplyFriend
type ApplyFriendRequest struct {
	TargetId uint64 `json:"target_id" binding:"required"`
	Message  string `json:"message" binding:"max=100"`
}

// HandleFriendApplyRequest 处理好友申请请求（通过/拒绝/拉黑）
type HandleFriendApplyRequest struct {
	ApplicantId uint64 `json:"applicant_id" binding:"required"`
}

// DeleteContactRequest 删除好友请求
type DeleteContactRequest struct {
	ContactId uint64 `json:"contact_id" binding:"required"`
}

// BlackContactRequest 拉黑好友请求
type BlackContactRequest struct {
	ContactId uint64 `json:"contact_id" binding:"required"`
}
