package chat_test

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"stranger_chat_server/internal/dao/mysql/repository"
	"stranger_chat_server/internal/model"
	"stranger_chat_server/internal/service/chat"
	"stranger_chat_server/pkg/errorx"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// chatFixture 组装一套基于内存数据库的匹配服务
type chatFixture struct {
	db       *gorm.DB
	repos    *repository.Repositories
	presence *chat.Presence
	rooms    *chat.RoomIndex
	matcher  *chat.Matcher
	relay    *chat.Relay
}

func newChatFixture(t *testing.T) *chatFixture {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	err = db.AutoMigrate(
		&model.UserInfo{},
		&model.QueueEntry{},
		&model.ActiveMatch{},
		&model.UserContact{},
		&model.FriendRequest{},
		&model.Message{},
	)
	if err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	repos := repository.NewRepositories(db)
	presence := chat.NewPresence(repos.User)
	rooms := chat.NewRoomIndex()
	return &chatFixture{
		db:       db,
		repos:    repos,
		presence: presence,
		rooms:    rooms,
		matcher:  chat.NewMatcher(repos, presence, rooms),
		relay:    chat.NewRelay(repos, presence, rooms),
	}
}

// addUser 创建用户并返回其数字 id
func (f *chatFixture) addUser(t *testing.T, user *model.UserInfo) uint64 {
	t.Helper()
	if user.Username == "" {
		user.Username = uuid.New().String()[:8]
	}
	if user.Nickname == "" {
		user.Nickname = user.Username
	}
	user.Password = "hashed"
	require.NoError(t, f.repos.User.Create(user))
	return uint64(user.ID)
}

// connect 为用户注册一条假连接，事件写入带缓冲的 SendBack
func (f *chatFixture) connect(userId uint64) *chat.UserConn {
	client := &chat.UserConn{
		UserId:   userId,
		ConnId:   uuid.New().String(),
		SendBack: make(chan []byte, 16),
	}
	f.presence.Register(client)
	return client
}

type eventEnvelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// recvEvent 取出并解码一条下行事件，通道为空时失败
func recvEvent(t *testing.T, client *chat.UserConn) eventEnvelope {
	t.Helper()
	select {
	case raw := <-client.SendBack:
		var env eventEnvelope
		require.NoError(t, json.Unmarshal(raw, &env))
		return env
	default:
		t.Fatal("expected a pending event, got none")
		return eventEnvelope{}
	}
}

func assertNoEvent(t *testing.T, client *chat.UserConn) {
	t.Helper()
	select {
	case raw := <-client.SendBack:
		t.Fatalf("expected no event, got %s", raw)
	default:
	}
}

func TestStartSearchAloneWaits(t *testing.T) {
	f := newChatFixture(t)
	aliceId := f.addUser(t, &model.UserInfo{Username: "alice"})
	alice := f.connect(aliceId)

	require.NoError(t, f.matcher.StartSearch(aliceId))

	env := recvEvent(t, alice)
	assert.Equal(t, chat.EventStatus, env.Event)

	entry, err := f.repos.Queue.FindWaitingByUser(aliceId)
	require.NoError(t, err)
	assert.Equal(t, model.QueueStatusWaiting, entry.Status)
}

func TestStartSearchPairsTwoUsers(t *testing.T) {
	f := newChatFixture(t)
	aliceId := f.addUser(t, &model.UserInfo{Username: "alice"})
	bobId := f.addUser(t, &model.UserInfo{Username: "bob"})
	alice := f.connect(aliceId)
	bob := f.connect(bobId)

	require.NoError(t, f.matcher.StartSearch(aliceId))
	recvEvent(t, alice) // status: waiting
	require.NoError(t, f.matcher.StartSearch(bobId))

	// 第二个搜索者也先收到排队通知，再收到配对结果
	assert.Equal(t, chat.EventStatus, recvEvent(t, bob).Event)

	aliceEnv := recvEvent(t, alice)
	bobEnv := recvEvent(t, bob)
	require.Equal(t, chat.EventMatchConfirmed, aliceEnv.Event)
	require.Equal(t, chat.EventMatchConfirmed, bobEnv.Event)

	var aliceData, bobData struct {
		Room   string `json:"room"`
		PeerId uint64 `json:"peer_id"`
		Role   string `json:"role"`
	}
	require.NoError(t, json.Unmarshal(aliceEnv.Data, &aliceData))
	require.NoError(t, json.Unmarshal(bobEnv.Data, &bobData))

	// 双方进入同一房间，发起本次配对的 bob 担任 initiator
	assert.Equal(t, aliceData.Room, bobData.Room)
	assert.Equal(t, bobId, aliceData.PeerId)
	assert.Equal(t, aliceId, bobData.PeerId)
	assert.Equal(t, "receiver", aliceData.Role)
	assert.Equal(t, "initiator", bobData.Role)

	match, err := f.repos.Match.FindActiveByUser(aliceId)
	require.NoError(t, err)
	assert.Equal(t, aliceData.Room, match.RoomId)

	// 两边的排队记录都已标记为已匹配
	waiting, err := f.repos.Queue.ListWaiting()
	require.NoError(t, err)
	assert.Empty(t, waiting)
}

func TestStartSearchWhileMatched(t *testing.T) {
	f := newChatFixture(t)
	aliceId := f.addUser(t, &model.UserInfo{Username: "alice"})
	bobId := f.addUser(t, &model.UserInfo{Username: "bob"})
	f.connect(aliceId)
	f.connect(bobId)

	require.NoError(t, f.matcher.StartSearch(aliceId))
	require.NoError(t, f.matcher.StartSearch(bobId))

	err := f.matcher.StartSearch(aliceId)
	assert.ErrorIs(t, err, errorx.ErrAlreadyMatched)
}

func TestStartSearchIsSelfHealing(t *testing.T) {
	f := newChatFixture(t)
	aliceId := f.addUser(t, &model.UserInfo{Username: "alice"})
	f.connect(aliceId)

	// 重复搜索不会累积排队记录
	require.NoError(t, f.matcher.StartSearch(aliceId))
	require.NoError(t, f.matcher.StartSearch(aliceId))

	waiting, err := f.repos.Queue.ListWaiting()
	require.NoError(t, err)
	assert.Len(t, waiting, 1)
}

func TestOfflineCandidateSkipped(t *testing.T) {
	f := newChatFixture(t)
	aliceId := f.addUser(t, &model.UserInfo{Username: "alice"})
	bobId := f.addUser(t, &model.UserInfo{Username: "bob"})
	alice := f.connect(aliceId)

	// bob 有排队记录但没有活跃连接
	_, err := f.repos.Queue.CreateWaiting(bobId, time.Now())
	require.NoError(t, err)

	require.NoError(t, f.matcher.StartSearch(aliceId))
	env := recvEvent(t, alice)
	assert.Equal(t, chat.EventStatus, env.Event)
}

func TestPreferenceFilteringIsMutual(t *testing.T) {
	f := newChatFixture(t)
	// alice 只接受女性，bob 是男性
	aliceId := f.addUser(t, &model.UserInfo{Username: "alice", Gender: 2, Age: 25, PrefGender: 2})
	bobId := f.addUser(t, &model.UserInfo{Username: "bob", Gender: 1, Age: 25})
	alice := f.connect(aliceId)
	bob := f.connect(bobId)

	require.NoError(t, f.matcher.StartSearch(aliceId))
	recvEvent(t, alice)
	require.NoError(t, f.matcher.StartSearch(bobId))

	// bob 接受 alice，但 alice 不接受 bob，不能配对
	env := recvEvent(t, bob)
	assert.Equal(t, chat.EventStatus, env.Event)
	assertNoEvent(t, alice)

	// carol 满足 alice 的偏好，立即配对
	carolId := f.addUser(t, &model.UserInfo{Username: "carol", Gender: 2, Age: 30})
	carol := f.connect(carolId)
	require.NoError(t, f.matcher.StartSearch(carolId))
	assert.Equal(t, chat.EventStatus, recvEvent(t, carol).Event)
	assert.Equal(t, chat.EventMatchConfirmed, recvEvent(t, carol).Event)
	assert.Equal(t, chat.EventMatchConfirmed, recvEvent(t, alice).Event)
}

func TestAgePreferenceFiltering(t *testing.T) {
	f := newChatFixture(t)
	aliceId := f.addUser(t, &model.UserInfo{Username: "alice", Age: 25, PrefAgeMin: 20, PrefAgeMax: 30})
	bobId := f.addUser(t, &model.UserInfo{Username: "bob", Age: 40})
	f.connect(aliceId)
	bob := f.connect(bobId)

	require.NoError(t, f.matcher.StartSearch(aliceId))
	require.NoError(t, f.matcher.StartSearch(bobId))

	env := recvEvent(t, bob)
	assert.Equal(t, chat.EventStatus, env.Event)
}

func TestCountryPreferenceFiltering(t *testing.T) {
	f := newChatFixture(t)
	aliceId := f.addUser(t, &model.UserInfo{Username: "alice", Country: "CN", PrefCountries: "CN,JP"})
	bobId := f.addUser(t, &model.UserInfo{Username: "bob", Country: "US"})
	alice := f.connect(aliceId)
	bob := f.connect(bobId)

	require.NoError(t, f.matcher.StartSearch(aliceId))
	recvEvent(t, alice)
	require.NoError(t, f.matcher.StartSearch(bobId))

	// bob 的国家不在 alice 的偏好列表里，不能配对
	assert.Equal(t, chat.EventStatus, recvEvent(t, bob).Event)
	assertNoEvent(t, alice)

	carolId := f.addUser(t, &model.UserInfo{Username: "carol", Country: "JP"})
	carol := f.connect(carolId)
	require.NoError(t, f.matcher.StartSearch(carolId))
	assert.Equal(t, chat.EventStatus, recvEvent(t, carol).Event)
	assert.Equal(t, chat.EventMatchConfirmed, recvEvent(t, carol).Event)
	assert.Equal(t, chat.EventMatchConfirmed, recvEvent(t, alice).Event)
}

func TestBlockedPairNeverMatches(t *testing.T) {
	f := newChatFixture(t)
	aliceId := f.addUser(t, &model.UserInfo{Username: "alice"})
	bobId := f.addUser(t, &model.UserInfo{Username: "bob"})
	f.connect(aliceId)
	bob := f.connect(bobId)

	// alice 拉黑了 bob，任一方向的拉黑都阻止配对
	require.NoError(t, f.repos.Contact.Create(&model.UserContact{
		UserId: aliceId, ContactId: bobId, Status: model.ContactStatusBlack,
	}))
	require.NoError(t, f.repos.Contact.Create(&model.UserContact{
		UserId: bobId, ContactId: aliceId, Status: model.ContactStatusBlacked,
	}))

	require.NoError(t, f.matcher.StartSearch(aliceId))
	require.NoError(t, f.matcher.StartSearch(bobId))

	env := recvEvent(t, bob)
	assert.Equal(t, chat.EventStatus, env.Event)
}

func TestEndChatIsIdempotent(t *testing.T) {
	f := newChatFixture(t)
	aliceId := f.addUser(t, &model.UserInfo{Username: "alice"})
	bobId := f.addUser(t, &model.UserInfo{Username: "bob"})
	alice := f.connect(aliceId)
	bob := f.connect(bobId)

	require.NoError(t, f.matcher.StartSearch(aliceId))
	require.NoError(t, f.matcher.StartSearch(bobId))
	recvEvent(t, alice) // status
	recvEvent(t, alice) // match_confirmed
	recvEvent(t, bob)   // status
	recvEvent(t, bob)   // match_confirmed

	require.NoError(t, f.matcher.EndChat(aliceId, "", chat.EventStrangerSkipped))
	env := recvEvent(t, bob)
	assert.Equal(t, chat.EventStrangerSkipped, env.Event)

	// 重复结束返回 ErrNoActiveMatch，对端不会收到第二次通知
	err := f.matcher.EndChat(aliceId, "", chat.EventStrangerSkipped)
	assert.ErrorIs(t, err, errorx.ErrNoActiveMatch)
	err = f.matcher.EndChat(bobId, "", chat.EventStrangerSkipped)
	assert.ErrorIs(t, err, errorx.ErrNoActiveMatch)
	assertNoEvent(t, alice)
	assertNoEvent(t, bob)
}

func TestEndChatRejectsOutsider(t *testing.T) {
	f := newChatFixture(t)
	aliceId := f.addUser(t, &model.UserInfo{Username: "alice"})
	bobId := f.addUser(t, &model.UserInfo{Username: "bob"})
	eveId := f.addUser(t, &model.UserInfo{Username: "eve"})
	f.connect(aliceId)
	f.connect(bobId)

	require.NoError(t, f.matcher.StartSearch(aliceId))
	require.NoError(t, f.matcher.StartSearch(bobId))
	match, err := f.repos.Match.FindActiveByUser(aliceId)
	require.NoError(t, err)

	err = f.matcher.EndChat(eveId, match.RoomId, chat.EventStrangerSkipped)
	assert.ErrorIs(t, err, errorx.ErrNoActiveMatch)

	// 房间仍然有效
	_, err = f.repos.Match.FindActiveByRoom(match.RoomId)
	require.NoError(t, err)
}

func TestSkipRequeuesAndNotifiesPeer(t *testing.T) {
	f := newChatFixture(t)
	aliceId := f.addUser(t, &model.UserInfo{Username: "alice"})
	bobId := f.addUser(t, &model.UserInfo{Username: "bob"})
	alice := f.connect(aliceId)
	bob := f.connect(bobId)

	require.NoError(t, f.matcher.StartSearch(aliceId))
	require.NoError(t, f.matcher.StartSearch(bobId))
	recvEvent(t, alice)
	recvEvent(t, alice)
	recvEvent(t, bob)
	recvEvent(t, bob)

	require.NoError(t, f.matcher.Skip(aliceId))

	// 对端恰好收到一次 stranger_skipped
	env := recvEvent(t, bob)
	assert.Equal(t, chat.EventStrangerSkipped, env.Event)
	assertNoEvent(t, bob)

	// 跳过者重新排队等待
	env = recvEvent(t, alice)
	assert.Equal(t, chat.EventStatus, env.Event)
	entry, err := f.repos.Queue.FindWaitingByUser(aliceId)
	require.NoError(t, err)
	assert.Equal(t, model.QueueStatusWaiting, entry.Status)
}

func TestSkipWithoutMatchJustSearches(t *testing.T) {
	f := newChatFixture(t)
	aliceId := f.addUser(t, &model.UserInfo{Username: "alice"})
	alice := f.connect(aliceId)

	require.NoError(t, f.matcher.Skip(aliceId))
	env := recvEvent(t, alice)
	assert.Equal(t, chat.EventStatus, env.Event)
}

func TestHandleDisconnectCleansUp(t *testing.T) {
	f := newChatFixture(t)
	aliceId := f.addUser(t, &model.UserInfo{Username: "alice"})
	bobId := f.addUser(t, &model.UserInfo{Username: "bob"})
	alice := f.connect(aliceId)
	bob := f.connect(bobId)

	require.NoError(t, f.matcher.StartSearch(aliceId))
	require.NoError(t, f.matcher.StartSearch(bobId))
	recvEvent(t, alice)
	recvEvent(t, alice)
	recvEvent(t, bob)
	recvEvent(t, bob)

	f.matcher.HandleDisconnect(alice)

	env := recvEvent(t, bob)
	assert.Equal(t, chat.EventStrangerDisconnected, env.Event)

	assert.False(t, f.presence.IsOnline(aliceId))
	_, err := f.repos.Match.FindActiveByUser(bobId)
	assert.True(t, errorx.IsNotFound(err))

	user, err := f.repos.User.FindById(aliceId)
	require.NoError(t, err)
	assert.Equal(t, model.UserOffline, user.IsOnline)
}

func TestStaleDisconnectIsIgnored(t *testing.T) {
	f := newChatFixture(t)
	aliceId := f.addUser(t, &model.UserInfo{Username: "alice"})
	bobId := f.addUser(t, &model.UserInfo{Username: "bob"})
	oldConn := f.connect(aliceId)
	bob := f.connect(bobId)

	require.NoError(t, f.matcher.StartSearch(aliceId))
	require.NoError(t, f.matcher.StartSearch(bobId))
	recvEvent(t, bob)
	recvEvent(t, bob)

	// 同一用户重连，旧连接的迟到断开不能清理新状态
	newConn := f.connect(aliceId)
	f.matcher.HandleDisconnect(oldConn)

	assert.True(t, f.presence.IsOnline(aliceId))
	assert.Same(t, newConn, f.presence.Get(aliceId))
	_, err := f.repos.Match.FindActiveByUser(aliceId)
	require.NoError(t, err)
	assertNoEvent(t, bob)
}

func TestSweepExpiredTimesOutWaiters(t *testing.T) {
	f := newChatFixture(t)
	aliceId := f.addUser(t, &model.UserInfo{Username: "alice"})
	bobId := f.addUser(t, &model.UserInfo{Username: "bob"})
	alice := f.connect(aliceId)
	bob := f.connect(bobId)

	_, err := f.repos.Queue.CreateWaiting(aliceId, time.Now().Add(-11*time.Minute))
	require.NoError(t, err)
	_, err = f.repos.Queue.CreateWaiting(bobId, time.Now())
	require.NoError(t, err)

	f.matcher.SweepExpired(10 * time.Minute)

	env := recvEvent(t, alice)
	assert.Equal(t, chat.EventSearchTimeout, env.Event)
	assertNoEvent(t, bob)

	_, err = f.repos.Queue.FindWaitingByUser(aliceId)
	assert.True(t, errorx.IsNotFound(err))
	_, err = f.repos.Queue.FindWaitingByUser(bobId)
	require.NoError(t, err)
}

func TestEndChatClearsQueueEntries(t *testing.T) {
	f := newChatFixture(t)
	aliceId := f.addUser(t, &model.UserInfo{Username: "alice"})
	bobId := f.addUser(t, &model.UserInfo{Username: "bob"})
	f.connect(aliceId)
	f.connect(bobId)

	require.NoError(t, f.matcher.StartSearch(aliceId))
	require.NoError(t, f.matcher.StartSearch(bobId))
	require.NoError(t, f.matcher.EndChat(aliceId, "", ""))

	// 配对时标记为已匹配的记录在结束时一并作废
	var remaining int64
	require.NoError(t, f.db.Model(&model.QueueEntry{}).
		Where("status <> ?", model.QueueStatusCancelled).Count(&remaining).Error)
	assert.Zero(t, remaining)
}

func TestStartSearchReportsQueueWriteFailure(t *testing.T) {
	f := newChatFixture(t)
	aliceId := f.addUser(t, &model.UserInfo{Username: "alice"})
	f.connect(aliceId)

	require.NoError(t, f.db.Migrator().DropTable(&model.QueueEntry{}))

	err := f.matcher.StartSearch(aliceId)
	require.Error(t, err)
	assert.Equal(t, errorx.CodeQueueWrite, errorx.GetCode(err))
}

func TestConcurrentSearchesCreateSingleRoom(t *testing.T) {
	f := newChatFixture(t)
	aliceId := f.addUser(t, &model.UserInfo{Username: "alice"})
	bobId := f.addUser(t, &model.UserInfo{Username: "bob"})
	f.connect(aliceId)
	f.connect(bobId)

	// 两名用户同时搜索，不能互相选中对方建出两个房间
	var wg sync.WaitGroup
	for _, id := range []uint64{aliceId, bobId} {
		wg.Add(1)
		go func(userId uint64) {
			defer wg.Done()
			assert.NoError(t, f.matcher.StartSearch(userId))
		}(id)
	}
	wg.Wait()

	matches, err := f.repos.Match.AllActive()
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.True(t, matches[0].Involves(aliceId))
	assert.True(t, matches[0].Involves(bobId))
}

func TestReconcileClearsStaleState(t *testing.T) {
	f := newChatFixture(t)
	aliceId := f.addUser(t, &model.UserInfo{Username: "alice"})
	bobId := f.addUser(t, &model.UserInfo{Username: "bob"})

	// 模拟上一个进程遗留的状态
	require.NoError(t, f.repos.User.SetOnline(aliceId, "stale-conn"))
	require.NoError(t, f.repos.Match.Create(&model.ActiveMatch{
		RoomId:   "match_stale",
		User1Id:  aliceId,
		User2Id:  bobId,
		Status:   model.MatchStatusActive,
		PairedAt: time.Now(),
	}))

	require.NoError(t, f.matcher.Reconcile())

	user, err := f.repos.User.FindById(aliceId)
	require.NoError(t, err)
	assert.Equal(t, model.UserOffline, user.IsOnline)

	_, err = f.repos.Match.FindActiveByRoom("match_stale")
	assert.True(t, errorx.IsNotFound(err))
}
