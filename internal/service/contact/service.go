// Package contact 好友关系业务逻辑
// 好友申请、好友列表、拉黑、删除，以及匹配中加好友的旁路通道
package contact

import (
	"strconv"
	"time"

	"stranger_chat_server/internal/dao/mysql/repository"
	myredis "stranger_chat_server/internal/dao/redis"
	"stranger_chat_server/internal/dto/request"
	"stranger_chat_server/internal/dto/respond"
	"stranger_chat_server/internal/model"
	"stranger_chat_server/pkg/errorx"

	"go.uber.org/zap"
)

// userContactService 好友业务逻辑实现
type userContactService struct {
	repos *repository.Repositories
}

// NewContactService 构造函数
func NewContactService(repos *repository.Repositories) *userContactService {
	return &userContactService{repos: repos}
}

// friendCacheKey 好友 ID 集合的缓存键
func friendCacheKey(userId uint64) string {
	return "contact_relation:user:" + strconv.FormatUint(userId, 10)
}

// invalidateFriendCache 异步失效双方的好友缓存
func invalidateFriendCache(userIds ...uint64) {
	keys := make([]string, 0, len(userIds))
	for _, id := range userIds {
		keys = append(keys, friendCacheKey(id))
	}
	myredis.SubmitCacheTask(func() {
		for _, key := range keys {
			_ = myredis.DelKeyIfExists(key)
		}
	})
}

// GetFriendList 获取好友列表
// 好友 ID 集合走 Redis Set 缓存，用户资料回源数据库
func (u *userContactService) GetFriendList(userId uint64) ([]respond.MyFriendListRespond, error) {
	cacheKey := friendCacheKey(userId)

	memberIds, err := myredis.SMembers(cacheKey)
	if err != nil || len(memberIds) == 0 {
		// 缓存未命中，回源数据库
		contactList, dbErr := u.repos.Contact.FindFriends(userId)
		if dbErr != nil {
			zap.L().Error("查询好友列表失败", zap.Error(dbErr))
			return nil, errorx.ErrServerBusy
		}

		memberIds = make([]string, 0, len(contactList))
		for _, c := range contactList {
			memberIds = append(memberIds, strconv.FormatUint(c.ContactId, 10))
		}

		if len(memberIds) > 0 {
			membersArgs := make([]interface{}, len(memberIds))
			for i, v := range memberIds {
				membersArgs[i] = v
			}
			_ = myredis.SAdd(cacheKey, membersArgs...)
		}
	}

	if len(memberIds) == 0 {
		return []respond.MyFriendListRespond{}, nil
	}

	friendIds := make([]uint64, 0, len(memberIds))
	for _, idStr := range memberIds {
		id, convErr := strconv.ParseUint(idStr, 10, 64)
		if convErr != nil {
			continue
		}
		friendIds = append(friendIds, id)
	}

	users, err := u.repos.User.FindByIds(friendIds)
	if err != nil {
		zap.L().Error("批量查询好友资料失败", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}

	friendListRsp := make([]respond.MyFriendListRespond, 0, len(users))
	for _, friend := range users {
		friendListRsp = append(friendListRsp, respond.MyFriendListRespond{
			Id:       uint64(friend.ID),
			Nickname: friend.Nickname,
			Avatar:   friend.Avatar,
			IsOnline: friend.IsOnline,
		})
	}
	return friendListRsp, nil
}

// GetNewFriendRequests 获取待处理好友申请
func (u *userContactService) GetNewFriendRequests(userId uint64) ([]respond.NewFriendRequestRespond, error) {
	requests, err := u.repos.FriendRequest.FindByTargetIdPending(userId)
	if err != nil {
		zap.L().Error("查询待处理申请失败", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	if len(requests) == 0 {
		return []respond.NewFriendRequestRespond{}, nil
	}

	applicantIds := make([]uint64, 0, len(requests))
	for _, req := range requests {
		applicantIds = append(applicantIds, req.ApplicantId)
	}
	users, err := u.repos.User.FindByIds(applicantIds)
	if err != nil {
		zap.L().Error("批量查询申请人资料失败", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	userMap := make(map[uint64]model.UserInfo, len(users))
	for _, user := range users {
		userMap[uint64(user.ID)] = user
	}

	rsp := make([]respond.NewFriendRequestRespond, 0, len(requests))
	for _, req := range requests {
		applicant := userMap[req.ApplicantId]
		rsp = append(rsp, respond.NewFriendRequestRespond{
			ApplicantId: req.ApplicantId,
			Nickname:    applicant.Nickname,
			Avatar:      applicant.Avatar,
			Message:     req.Message,
			LastApplyAt: req.LastApplyAt.Format("2006-01-02 15:04:05"),
		})
	}
	return rsp, nil
}

// ApplyFriend 发起好友申请
// 已有待处理申请时只刷新申请时间和附言
func (u *userContactService) ApplyFriend(userId uint64, req request.ApplyFriendRequest) error {
	if userId == req.TargetId {
		return errorx.ErrInvalidParam
	}
	if _, err := u.repos.User.FindById(req.TargetId); err != nil {
		if errorx.IsNotFound(err) {
			return errorx.ErrUserNotExist
		}
		return errorx.ErrServerBusy
	}

	isFriend, blocked, err := u.relationState(userId, req.TargetId)
	if err != nil {
		return errorx.ErrServerBusy
	}
	if blocked {
		return errorx.New(errorx.CodeApplyExist, "对方拒绝接收你的申请")
	}
	if isFriend {
		return errorx.New(errorx.CodeAlreadyFriends, "你们已经是好友")
	}

	existing, err := u.repos.FriendRequest.FindByApplicantIdAndTargetId(userId, req.TargetId)
	if err == nil {
		existing.Status = model.ApplyStatusPending
		existing.Message = req.Message
		existing.LastApplyAt = time.Now()
		return u.repos.FriendRequest.Update(existing)
	}
	if !errorx.IsNotFound(err) {
		return errorx.ErrServerBusy
	}

	return u.repos.FriendRequest.Create(&model.FriendRequest{
		ApplicantId: userId,
		TargetId:    req.TargetId,
		Status:      model.ApplyStatusPending,
		Message:     req.Message,
		LastApplyAt: time.Now(),
	})
}

// PassFriendApply 通过好友申请
// 申请状态更新与双向关系建立在同一事务内
func (u *userContactService) PassFriendApply(userId, applicantId uint64) error {
	apply, err := u.repos.FriendRequest.FindByApplicantIdAndTargetId(applicantId, userId)
	if err != nil {
		if errorx.IsNotFound(err) {
			return errorx.New(errorx.CodeNotFound, "申请不存在")
		}
		return errorx.ErrServerBusy
	}
	if apply.Status != model.ApplyStatusPending {
		return errorx.New(errorx.CodeInvalidParam, "申请已处理")
	}

	err = u.repos.Transaction(func(tx *repository.Repositories) error {
		apply.Status = model.ApplyStatusAgree
		if err := tx.FriendRequest.Update(apply); err != nil {
			return err
		}
		return createMutualContacts(tx, userId, applicantId)
	})
	if err != nil {
		zap.L().Error("通过好友申请失败", zap.Error(err))
		return errorx.ErrServerBusy
	}

	invalidateFriendCache(userId, applicantId)
	return nil
}

// RefuseFriendApply 拒绝好友申请
func (u *userContactService) RefuseFriendApply(userId, applicantId uint64) error {
	apply, err := u.repos.FriendRequest.FindByApplicantIdAndTargetId(applicantId, userId)
	if err != nil {
		if errorx.IsNotFound(err) {
			return errorx.New(errorx.CodeNotFound, "申请不存在")
		}
		return errorx.ErrServerBusy
	}
	apply.Status = model.ApplyStatusRefuse
	return u.repos.FriendRequest.Update(apply)
}

// BlackContact 拉黑好友
// 双方记录分别置为拉黑/被拉黑，拉黑后不再互相匹配
func (u *userContactService) BlackContact(userId, contactId uint64) error {
	err := u.repos.Transaction(func(tx *repository.Repositories) error {
		if err := upsertContact(tx, userId, contactId, model.ContactStatusBlack); err != nil {
			return err
		}
		return upsertContact(tx, contactId, userId, model.ContactStatusBlacked)
	})
	if err != nil {
		zap.L().Error("拉黑好友失败", zap.Error(err))
		return errorx.ErrServerBusy
	}
	invalidateFriendCache(userId, contactId)
	return nil
}

// DeleteContact 删除好友，双向关系一并解除
func (u *userContactService) DeleteContact(userId, contactId uint64) error {
	err := u.repos.Transaction(func(tx *repository.Repositories) error {
		if err := tx.Contact.SoftDelete(userId, contactId); err != nil {
			return err
		}
		return tx.Contact.SoftDelete(contactId, userId)
	})
	if err != nil {
		zap.L().Error("删除好友失败", zap.Error(err))
		return errorx.ErrServerBusy
	}
	invalidateFriendCache(userId, contactId)
	return nil
}

// AddFriendDuringMatch 匹配中直接建立双向好友关系
// 不走申请流程，这是匹配会话内的旁路通道
// 已经是好友时直接返回成功，调用方照常推送确认通知
func (u *userContactService) AddFriendDuringMatch(userId, peerId uint64) error {
	isFriend, blocked, err := u.relationState(userId, peerId)
	if err != nil {
		return errorx.ErrServerBusy
	}
	if blocked {
		return errorx.New(errorx.CodeApplyExist, "无法添加该用户为好友")
	}
	if isFriend {
		return nil
	}

	if err := u.repos.Transaction(func(tx *repository.Repositories) error {
		return createMutualContacts(tx, userId, peerId)
	}); err != nil {
		zap.L().Error("匹配中添加好友失败", zap.Error(err))
		return errorx.ErrServerBusy
	}

	invalidateFriendCache(userId, peerId)
	return nil
}

// relationState 返回双方关系：是否好友、是否存在任一方向的拉黑
func (u *userContactService) relationState(userId, otherId uint64) (isFriend bool, blocked bool, err error) {
	for _, pair := range [][2]uint64{{userId, otherId}, {otherId, userId}} {
		contact, findErr := u.repos.Contact.FindByUserIdAndContactId(pair[0], pair[1])
		if findErr != nil {
			if errorx.IsNotFound(findErr) {
				continue
			}
			return false, false, findErr
		}
		switch contact.Status {
		case model.ContactStatusNormal:
			isFriend = true
		case model.ContactStatusBlack, model.ContactStatusBlacked:
			blocked = true
		}
	}
	return isFriend, blocked, nil
}

// createMutualContacts 建立双向好友记录
// 历史记录存在时复用并改回正常状态
func createMutualContacts(tx *repository.Repositories, userId, otherId uint64) error {
	if err := upsertContact(tx, userId, otherId, model.ContactStatusNormal); err != nil {
		return err
	}
	return upsertContact(tx, otherId, userId, model.ContactStatusNormal)
}

// upsertContact 写入或更新单向关系记录
func upsertContact(tx *repository.Repositories, userId, contactId uint64, status int8) error {
	_, err := tx.Contact.FindByUserIdAndContactId(userId, contactId)
	if err == nil {
		return tx.Contact.UpdateStatus(userId, contactId, status)
	}
	if !errorx.IsNotFound(err) {
		return err
	}
	return tx.Contact.Create(&model.UserContact{
		UserId:    userId,
		ContactId: contactId,
		Status:    status,
	})
}
