// Package chat 实现陌生人匹配与信令转发的核心服务层
// matcher.go
// 核心职责：匹配协调器
// 1. 排队入队（自愈式，残留记录先清后建）
// 2. 候选扫描与双向偏好过滤
// 3. 配对事务与房间建立
// 4. 结束、跳过、断线、超时清扫、启动对账
package chat

import (
	"strings"
	"sync"
	"time"

	"stranger_chat_server/internal/dao/mysql/repository"
	"stranger_chat_server/internal/dto/respond"
	"stranger_chat_server/internal/model"
	"stranger_chat_server/pkg/errorx"

	"go.uber.org/zap"
)

// Matcher 匹配协调器
// mu 串行化配对与结束操作，保证同一用户不会同时进入两个房间
// Kafka 模式下断线清理跑在读协程、事件消费跑在消费协程，两边都要过这把锁
type Matcher struct {
	repos    *repository.Repositories
	presence *Presence
	rooms    *RoomIndex

	mu sync.Mutex
}

// NewMatcher 创建匹配协调器
func NewMatcher(repos *repository.Repositories, presence *Presence, rooms *RoomIndex) *Matcher {
	return &Matcher{
		repos:    repos,
		presence: presence,
		rooms:    rooms,
	}
}

// StartSearch 开始寻找陌生人
// 已在匹配中返回 ErrAlreadyMatched；找到候选立即配对，否则留在队列等待
func (m *Matcher) StartSearch(userId uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.startSearch(userId)
}

func (m *Matcher) startSearch(userId uint64) error {
	user, err := m.repos.User.FindById(userId)
	if err != nil {
		return err
	}

	// 已有进行中的匹配时拒绝排队
	if _, err := m.repos.Match.FindActiveByUser(userId); err == nil {
		return errorx.ErrAlreadyMatched
	} else if !errorx.IsNotFound(err) {
		return err
	}

	// 自愈式入队：上一次搜索的残留记录先清掉再建新记录
	if err := m.repos.Queue.CancelWaiting(userId); err != nil {
		return errorx.Wrap(err, errorx.CodeQueueWrite, "加入匹配队列失败")
	}
	if _, err := m.repos.Queue.CreateWaiting(userId, time.Now()); err != nil {
		return errorx.Wrap(err, errorx.CodeQueueWrite, "加入匹配队列失败")
	}

	// 入队即通知排队中，配对成功的通知随后到达
	pushEvent(m.presence.Get(userId), EventStatus, respond.StatusRespond{Status: "waiting"})

	candidate, err := m.findCandidate(user)
	if err != nil {
		return err
	}
	if candidate == nil {
		// 没有合适候选，留在队列等待
		return nil
	}

	return m.pair(user, candidate)
}

// findCandidate 扫描等待队列，返回最早入队的合格候选
// 合格条件：不是自己、在线、双向偏好匹配、双方不存在拉黑关系
func (m *Matcher) findCandidate(user *model.UserInfo) (*model.UserInfo, error) {
	entries, err := m.repos.Queue.ListWaiting()
	if err != nil {
		return nil, err
	}
	for _, entry := range entries {
		if entry.UserId == uint64(user.ID) {
			continue
		}
		if !m.presence.IsOnline(entry.UserId) {
			continue
		}
		candidate, err := m.repos.User.FindById(entry.UserId)
		if err != nil {
			if errorx.IsNotFound(err) {
				continue
			}
			return nil, err
		}
		if !mutualPreferenceMatch(user, candidate) {
			continue
		}
		blocked, err := m.isBlockedPair(uint64(user.ID), entry.UserId)
		if err != nil {
			return nil, err
		}
		if blocked {
			continue
		}
		return candidate, nil
	}
	return nil, nil
}

// pair 将两名用户配对，user 为主动发起搜索的一方
// 队列标记与匹配记录创建在同一事务内，失败整体回滚
func (m *Matcher) pair(user, candidate *model.UserInfo) error {
	user1Id, user2Id := uint64(user.ID), uint64(candidate.ID)
	if user1Id > user2Id {
		user1Id, user2Id = user2Id, user1Id
	}
	roomId := NewRoomId(user1Id, user2Id)

	err := m.repos.Transaction(func(tx *repository.Repositories) error {
		if err := tx.Queue.MarkMatched([]uint64{user1Id, user2Id}); err != nil {
			return err
		}
		return tx.Match.Create(&model.ActiveMatch{
			RoomId:   roomId,
			User1Id:  user1Id,
			User2Id:  user2Id,
			Status:   model.MatchStatusActive,
			PairedAt: time.Now(),
		})
	})
	if err != nil {
		return errorx.Wrap(err, errorx.CodeMatchCreate, "创建匹配失败")
	}

	m.rooms.Add(roomId, user1Id, user2Id)

	// 发起搜索的一方担任 initiator，由它创建 WebRTC offer
	m.notifyMatched(user, candidate, roomId, "initiator")
	m.notifyMatched(candidate, user, roomId, "receiver")

	zap.L().Info("配对成功",
		zap.String("room_id", roomId),
		zap.Uint64("user1_id", user1Id),
		zap.Uint64("user2_id", user2Id))
	return nil
}

// notifyMatched 向 user 推送匹配成功事件，peer 为对端
func (m *Matcher) notifyMatched(user, peer *model.UserInfo, roomId, role string) {
	pushEvent(m.presence.Get(uint64(user.ID)), EventMatchConfirmed, respond.MatchConfirmedRespond{
		Room:       roomId,
		PeerId:     uint64(peer.ID),
		PeerName:   peer.Nickname,
		PeerAvatar: peer.Avatar,
		Role:       role,
	})
}

// EndChat 结束匹配
// roomId 为空时结束用户当前进行中的匹配
// notifyEvent 指定推送给对端的事件名，为空则不通知
// 匹配已结束时静默成功，保证幂等
func (m *Matcher) EndChat(userId uint64, roomId string, notifyEvent string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.endChat(userId, roomId, notifyEvent)
}

func (m *Matcher) endChat(userId uint64, roomId string, notifyEvent string) error {
	var match *model.ActiveMatch
	var err error
	if roomId == "" {
		match, err = m.repos.Match.FindActiveByUser(userId)
	} else {
		match, err = m.repos.Match.FindActiveByRoom(roomId)
	}
	if err != nil {
		if errorx.IsNotFound(err) {
			return errorx.ErrNoActiveMatch
		}
		return err
	}
	// 只有参与者可以结束房间，userId 为 0 表示系统操作
	if userId != 0 && !match.Involves(userId) {
		return errorx.ErrNoActiveMatch
	}

	if err := m.repos.Match.End(match.RoomId, userId, time.Now()); err != nil {
		return err
	}
	m.rooms.Remove(match.RoomId)

	// 兜底清理：双方的排队记录一并作废
	if err := m.repos.Queue.CancelForUsers([]uint64{match.User1Id, match.User2Id}); err != nil {
		zap.L().Error("清理排队记录失败", zap.String("room_id", match.RoomId), zap.Error(err))
	}

	if notifyEvent != "" {
		if other := match.OtherUser(userId); other != 0 {
			pushEvent(m.presence.Get(other), notifyEvent, struct{}{})
		}
	}

	zap.L().Info("匹配结束",
		zap.String("room_id", match.RoomId),
		zap.Uint64("ended_by", userId))
	return nil
}

// Skip 跳过当前陌生人并立即重新排队
// 等价于显式的 end_chat + start_search 两步
func (m *Matcher) Skip(userId uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.endChat(userId, "", EventStrangerSkipped); err != nil && err != errorx.ErrNoActiveMatch {
		return err
	}
	return m.startSearch(userId)
}

// HandleDisconnect 处理连接断开
// 旧连接被新连接顶替时注销不生效，此时不能清理用户状态
func (m *Matcher) HandleDisconnect(client *UserConn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.presence.Unregister(client) {
		return
	}
	userId := client.UserId
	if err := m.repos.Queue.CancelWaiting(userId); err != nil {
		zap.L().Error("断线清理队列失败", zap.Uint64("user_id", userId), zap.Error(err))
	}
	if err := m.endChat(userId, "", EventStrangerDisconnected); err != nil && err != errorx.ErrNoActiveMatch {
		zap.L().Error("断线结束匹配失败", zap.Uint64("user_id", userId), zap.Error(err))
	}
}

// SweepExpired 清扫超时的排队记录
// 超时用户收到 search_timeout 事件并出队
func (m *Matcher) SweepExpired(timeout time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entries, err := m.repos.Queue.ListWaitingBefore(time.Now().Add(-timeout))
	if err != nil {
		zap.L().Error("查询超时排队记录失败", zap.Error(err))
		return
	}
	for _, entry := range entries {
		if err := m.repos.Queue.CancelWaiting(entry.UserId); err != nil {
			zap.L().Error("取消超时排队失败", zap.Uint64("user_id", entry.UserId), zap.Error(err))
			continue
		}
		pushEvent(m.presence.Get(entry.UserId), EventSearchTimeout, struct{}{})
		zap.L().Info("排队超时出队", zap.Uint64("user_id", entry.UserId))
	}
}

// StartSweeper 启动后台超时清扫协程
// 返回停止函数
func (m *Matcher) StartSweeper(interval, timeout time.Duration) func() {
	stop := make(chan struct{})
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				m.SweepExpired(timeout)
			case <-stop:
				return
			}
		}
	}()
	return func() { close(stop) }
}

// Reconcile 启动对账
// 进程重启后所有连接都已失效：在线标志全部清零，遗留的活跃匹配全部结束
// 排队记录保留，用户重连后的下一次搜索会自愈
func (m *Matcher) Reconcile() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.repos.User.SetAllOffline(); err != nil {
		return err
	}
	matches, err := m.repos.Match.AllActive()
	if err != nil {
		return err
	}
	now := time.Now()
	for _, match := range matches {
		if err := m.repos.Match.End(match.RoomId, 0, now); err != nil {
			return err
		}
	}
	if len(matches) > 0 {
		zap.L().Info("启动对账结束遗留匹配", zap.Int("count", len(matches)))
	}
	return nil
}

// isBlockedPair 判断两名用户之间是否存在任一方向的拉黑关系
func (m *Matcher) isBlockedPair(userId, otherId uint64) (bool, error) {
	for _, pair := range [][2]uint64{{userId, otherId}, {otherId, userId}} {
		contact, err := m.repos.Contact.FindByUserIdAndContactId(pair[0], pair[1])
		if err != nil {
			if errorx.IsNotFound(err) {
				continue
			}
			return false, err
		}
		if contact.Status == model.ContactStatusBlack || contact.Status == model.ContactStatusBlacked {
			return true, nil
		}
	}
	return false, nil
}

// mutualPreferenceMatch 双向偏好匹配
// 双方都接受对方时才允许配对
func mutualPreferenceMatch(a, b *model.UserInfo) bool {
	return preferenceAccepts(a, b) && preferenceAccepts(b, a)
}

// preferenceAccepts 判断 viewer 的偏好是否接受 target
// 偏好字段为零值表示不限
func preferenceAccepts(viewer, target *model.UserInfo) bool {
	if viewer.PrefGender != 0 && viewer.PrefGender != target.Gender {
		return false
	}
	if viewer.PrefAgeMin != 0 && target.Age < viewer.PrefAgeMin {
		return false
	}
	if viewer.PrefAgeMax != 0 && target.Age > viewer.PrefAgeMax {
		return false
	}
	if viewer.PrefCountries != "" && !countryListContains(viewer.PrefCountries, target.Country) {
		return false
	}
	return true
}

// countryListContains 判断逗号分隔的国家代码列表是否包含 country
func countryListContains(list, country string) bool {
	for _, code := range strings.Split(list, ",") {
		if strings.TrimSpace(code) == country {
			return true
		}
	}
	return false
}
