package repository

import (
	"stranger_chat_server/internal/model"

	"gorm.io/gorm"
)

type friendRequestRepository struct {
	db *gorm.DB
}

// NewFriendRequestRepository 创建好友申请 Repository
func NewFriendRequestRepository(db *gorm.DB) FriendRequestRepository {
	return &friendRequestRepository{db: db}
}

// FindByApplicantIdAndTargetId 根据申请人和目标查找申请
// 用于检查是否已存在申请记录
func (r *friendRequestRepository) FindByApplicantIdAndTargetId(applicantId, targetId uint64) (*model.FriendRequest, error) {
	var request model.FriendRequest
	if err := r.db.Where("applicant_id = ? AND target_id = ?", applicantId, targetId).
		First(&request).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询申请 applicant_id=%d target_id=%d", applicantId, targetId)
	}
	return &request, nil
}

// FindByTargetIdPending 查找目标用户的待处理申请
func (r *friendRequestRepository) FindByTargetIdPending(targetId uint64) ([]model.FriendRequest, error) {
	var requests []model.FriendRequest
	if err := r.db.Where("target_id = ? AND status = ?", targetId, model.ApplyStatusPending).
		Find(&requests).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询待处理申请 target_id=%d", targetId)
	}
	return requests, nil
}

// Create 创建新申请
func (r *friendRequestRepository) Create(request *model.FriendRequest) error {
	if err := r.db.Create(request).Error; err != nil {
		return wrapDBError(err, "创建好友申请")
	}
	return nil
}

// Update 更新申请记录（全字段更新）
func (r *friendRequestRepository) Update(request *model.FriendRequest) error {
	if err := r.db.Save(request).Error; err != nil {
		return wrapDBError(err, "更新好友申请")
	}
	return nil
}
