// Package message 好友私信业务逻辑
// 私信只在好友之间可用，历史消息走 Redis 缓存加速
package message

import (
	"encoding/json"
	"fmt"
	"time"

	"stranger_chat_server/internal/dao/mysql/repository"
	myredis "stranger_chat_server/internal/dao/redis"
	"stranger_chat_server/internal/dto/request"
	"stranger_chat_server/internal/dto/respond"
	"stranger_chat_server/internal/model"
	"stranger_chat_server/pkg/constants"
	"stranger_chat_server/pkg/errorx"
	"stranger_chat_server/pkg/util/snowflake"

	"go.uber.org/zap"
)

type messageService struct {
	repos *repository.Repositories
}

// NewMessageService 构造函数
func NewMessageService(repos *repository.Repositories) *messageService {
	return &messageService{repos: repos}
}

// messageListCacheKey 两人会话的消息列表缓存键
// 用户 ID 排序后拼接，保证两个方向取到同一个键
func messageListCacheKey(userOneId, userTwoId uint64) string {
	if userOneId > userTwoId {
		userOneId, userTwoId = userTwoId, userOneId
	}
	return fmt.Sprintf("message_list_%d_%d", userOneId, userTwoId)
}

// invalidateMessageCache 异步失效会话消息缓存
func invalidateMessageCache(userOneId, userTwoId uint64) {
	key := messageListCacheKey(userOneId, userTwoId)
	myredis.SubmitCacheTask(func() {
		_ = myredis.DelKeyIfExists(key)
	})
}

// SendDirectMessage 发送好友私信
// 只有正常好友关系的双方可以互发
func (m *messageService) SendDirectMessage(sendId uint64, req request.SendMessageRequest) (*respond.MessageRespond, error) {
	if sendId == req.ReceiveId {
		return nil, errorx.ErrInvalidParam
	}
	contact, err := m.repos.Contact.FindByUserIdAndContactId(sendId, req.ReceiveId)
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, errorx.New(errorx.CodeInvalidParam, "只能给好友发送私信")
		}
		return nil, errorx.ErrServerBusy
	}
	if contact.Status != model.ContactStatusNormal {
		return nil, errorx.New(errorx.CodeInvalidParam, "只能给好友发送私信")
	}

	message := &model.Message{
		Uuid:      snowflake.GenerateIDString(),
		SendId:    sendId,
		ReceiveId: req.ReceiveId,
		Type:      req.Type,
		Content:   req.Content,
		Status:    model.MessageStatusUnread,
		SendAt:    time.Now(),
	}
	if err := m.repos.Message.Create(message); err != nil {
		zap.L().Error("保存私信失败", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}

	invalidateMessageCache(sendId, req.ReceiveId)

	return &respond.MessageRespond{
		Uuid:      message.Uuid,
		SendId:    message.SendId,
		ReceiveId: message.ReceiveId,
		Type:      message.Type,
		Content:   message.Content,
		Status:    message.Status,
		SendAt:    message.SendAt.Format("2006-01-02 15:04:05"),
	}, nil
}

// GetMessageList 获取与好友的历史消息（cache-aside）
func (m *messageService) GetMessageList(userId, peerId uint64) ([]respond.MessageRespond, error) {
	cacheKey := messageListCacheKey(userId, peerId)

	if cached, err := myredis.GetKey(cacheKey); err == nil && cached != "" {
		var rsp []respond.MessageRespond
		if err := json.Unmarshal([]byte(cached), &rsp); err == nil {
			return rsp, nil
		}
	}

	messages, err := m.repos.Message.FindByUserIds(userId, peerId)
	if err != nil {
		zap.L().Error("查询历史消息失败", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}

	rsp := make([]respond.MessageRespond, 0, len(messages))
	for _, msg := range messages {
		rsp = append(rsp, respond.MessageRespond{
			Uuid:      msg.Uuid,
			SendId:    msg.SendId,
			ReceiveId: msg.ReceiveId,
			Type:      msg.Type,
			Content:   msg.Content,
			Status:    msg.Status,
			SendAt:    msg.SendAt.Format("2006-01-02 15:04:05"),
		})
	}

	if rspBytes, err := json.Marshal(rsp); err == nil {
		myredis.SubmitCacheTask(func() {
			_ = myredis.SetKeyEx(cacheKey, string(rspBytes), time.Minute*constants.REDIS_TIMEOUT)
		})
	}
	return rsp, nil
}

// MarkAsRead 将 peer 发给当前用户的未读消息全部置为已读
func (m *messageService) MarkAsRead(userId, peerId uint64) error {
	if err := m.repos.Message.MarkRead(peerId, userId); err != nil {
		zap.L().Error("标记已读失败", zap.Error(err))
		return errorx.ErrServerBusy
	}
	invalidateMessageCache(userId, peerId)
	return nil
}
