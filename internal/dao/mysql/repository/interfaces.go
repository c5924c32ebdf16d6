package repository

import (
	"time"

	"stranger_chat_server/internal/model"

	"gorm.io/gorm"
)

// ==================== Repository 接口定义 ====================

// UserRepository 用户数据访问接口
type UserRepository interface {
	// FindById 根据数字 ID 查找用户
	FindById(id uint64) (*model.UserInfo, error)
	// FindByUsername 根据登录名查找用户
	FindByUsername(username string) (*model.UserInfo, error)
	// FindByIds 批量根据 ID 查找用户
	FindByIds(ids []uint64) ([]model.UserInfo, error)
	// Create 创建新用户
	Create(user *model.UserInfo) error
	// UpdateUserInfo 更新用户信息
	UpdateUserInfo(user *model.UserInfo) error
	// SetOnline 标记用户在线并记录当前连接句柄
	SetOnline(id uint64, connId string) error
	// SetOffline 标记用户离线并清空连接句柄
	SetOffline(id uint64) error
	// SetAllOffline 标记所有用户离线，服务启动时对账使用
	SetAllOffline() error
}

// QueueRepository 匹配等待队列数据访问接口
// 队列落库，服务重启后等待状态可恢复
type QueueRepository interface {
	// FindWaitingByUser 查找用户当前的等待记录
	FindWaitingByUser(userId uint64) (*model.QueueEntry, error)
	// CreateWaiting 为用户创建一条等待记录
	CreateWaiting(userId uint64, at time.Time) (*model.QueueEntry, error)
	// CancelWaiting 将用户所有等待记录置为已取消
	CancelWaiting(userId uint64) error
	// CancelForUsers 将多名用户的全部未取消记录置为已取消
	CancelForUsers(userIds []uint64) error
	// MarkMatched 将指定用户的等待记录置为已匹配
	MarkMatched(userIds []uint64) error
	// ListWaiting 按入队时间升序列出所有等待记录
	ListWaiting() ([]model.QueueEntry, error)
	// ListWaitingBefore 列出早于 cutoff 入队的等待记录
	ListWaitingBefore(cutoff time.Time) ([]model.QueueEntry, error)
}

// MatchRepository 活跃匹配数据访问接口
type MatchRepository interface {
	// Create 创建匹配记录
	Create(match *model.ActiveMatch) error
	// FindByRoom 根据房间 id 查找匹配
	FindByRoom(roomId string) (*model.ActiveMatch, error)
	// FindActiveByRoom 根据房间 id 查找进行中的匹配
	FindActiveByRoom(roomId string) (*model.ActiveMatch, error)
	// FindActiveByUser 查找用户当前进行中的匹配
	FindActiveByUser(userId uint64) (*model.ActiveMatch, error)
	// AllActive 列出所有进行中的匹配，启动对账使用
	AllActive() ([]model.ActiveMatch, error)
	// End 将匹配置为已结束并记录发起者，幂等
	End(roomId string, endedBy uint64, at time.Time) error
}

// ContactRepository 好友关系数据访问接口
type ContactRepository interface {
	// FindByUserIdAndContactId 查找 userId 视角下与 contactId 的关系
	FindByUserIdAndContactId(userId, contactId uint64) (*model.UserContact, error)
	// FindFriends 列出用户的正常好友关系
	FindFriends(userId uint64) ([]model.UserContact, error)
	// Create 创建好友关系
	Create(contact *model.UserContact) error
	// UpdateStatus 更新关系状态（正常/拉黑等）
	UpdateStatus(userId, contactId uint64, status int8) error
	// SoftDelete 软删除好友关系
	SoftDelete(userId, contactId uint64) error
}

// FriendRequestRepository 好友申请数据访问接口
type FriendRequestRepository interface {
	// FindByApplicantIdAndTargetId 根据申请人和目标查找申请
	FindByApplicantIdAndTargetId(applicantId, targetId uint64) (*model.FriendRequest, error)
	// FindByTargetIdPending 查找目标用户的待处理申请
	FindByTargetIdPending(targetId uint64) ([]model.FriendRequest, error)
	// Create 创建新申请
	Create(request *model.FriendRequest) error
	// Update 更新申请记录
	Update(request *model.FriendRequest) error
}

// MessageRepository 私信消息数据访问接口
type MessageRepository interface {
	// Create 保存消息
	Create(message *model.Message) error
	// FindByUserIds 查找两个用户之间的全部私聊消息
	FindByUserIds(userOneId, userTwoId uint64) ([]model.Message, error)
	// MarkRead 将 sendId 发给 receiveId 的未读消息置为已读
	MarkRead(sendId, receiveId uint64) error
}

// ==================== Repository 聚合 ====================

// Repositories 聚合所有 Repository 实例
// 作为依赖注入的入口，Service 层通过此结构访问数据层
type Repositories struct {
	db            *gorm.DB
	User          UserRepository
	Queue         QueueRepository
	Match         MatchRepository
	Contact       ContactRepository
	FriendRequest FriendRequestRepository
	Message       MessageRepository
}

// NewRepositories 创建所有 Repository 实例
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		db:            db,
		User:          NewUserRepository(db),
		Queue:         NewQueueRepository(db),
		Match:         NewMatchRepository(db),
		Contact:       NewContactRepository(db),
		FriendRequest: NewFriendRequestRepository(db),
		Message:       NewMessageRepository(db),
	}
}

// Transaction 在数据库事务中执行函数
// 事务内的所有操作要么全部成功，要么全部回滚
// fn: 事务执行函数，接收事务内的 Repositories 实例
func (r *Repositories) Transaction(fn func(txRepos *Repositories) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx))
	})
}
