package chat_test

import (
	"strings"
	"testing"

	"stranger_chat_server/internal/model"
	"stranger_chat_server/internal/service/chat"

	"github.com/stretchr/testify/assert"
)

func TestNewRoomIdCanonicalOrder(t *testing.T) {
	roomId := chat.NewRoomId(42, 7)
	assert.True(t, strings.HasPrefix(roomId, "match_7_42_"))

	// 同一对用户的两次匹配得到不同的房间
	assert.NotEqual(t, chat.NewRoomId(7, 42), chat.NewRoomId(7, 42))
}

func TestRoomIndexLookups(t *testing.T) {
	rooms := chat.NewRoomIndex()
	rooms.Add("room-1", 1, 2)

	u1, u2, ok := rooms.Members("room-1")
	assert.True(t, ok)
	assert.Equal(t, uint64(1), u1)
	assert.Equal(t, uint64(2), u2)

	other, ok := rooms.OtherParty("room-1", 1)
	assert.True(t, ok)
	assert.Equal(t, uint64(2), other)
	other, ok = rooms.OtherParty("room-1", 2)
	assert.True(t, ok)
	assert.Equal(t, uint64(1), other)

	// 非参与者查不到对端
	_, ok = rooms.OtherParty("room-1", 3)
	assert.False(t, ok)
	_, ok = rooms.OtherParty("room-404", 1)
	assert.False(t, ok)

	roomId, ok := rooms.RoomOf(2)
	assert.True(t, ok)
	assert.Equal(t, "room-1", roomId)
}

func TestRoomIndexRemove(t *testing.T) {
	rooms := chat.NewRoomIndex()
	rooms.Add("room-1", 1, 2)
	rooms.Remove("room-1")

	_, _, ok := rooms.Members("room-1")
	assert.False(t, ok)
	_, ok = rooms.RoomOf(1)
	assert.False(t, ok)

	// 重复移除无副作用
	rooms.Remove("room-1")
}

func TestRoomIndexRemoveKeepsNewerRoom(t *testing.T) {
	rooms := chat.NewRoomIndex()
	rooms.Add("room-old", 1, 2)
	// 用户 1 已进入新房间，旧房间的移除不能抹掉新索引
	rooms.Add("room-new", 1, 3)
	rooms.Remove("room-old")

	roomId, ok := rooms.RoomOf(1)
	assert.True(t, ok)
	assert.Equal(t, "room-new", roomId)
	_, ok = rooms.RoomOf(2)
	assert.False(t, ok)
}

func TestPresenceLastRegistrationWins(t *testing.T) {
	f := newChatFixture(t)
	aliceId := f.addUser(t, &model.UserInfo{Username: "alice"})

	oldConn := f.connect(aliceId)
	newConn := f.connect(aliceId)
	assert.Same(t, newConn, f.presence.Get(aliceId))

	// 旧连接注销不掉新连接
	assert.False(t, f.presence.Unregister(oldConn))
	assert.True(t, f.presence.IsOnline(aliceId))

	assert.True(t, f.presence.Unregister(newConn))
	assert.False(t, f.presence.IsOnline(aliceId))
	assert.Equal(t, 0, f.presence.OnlineCount())
}

func TestPresenceSyncsDatabaseFlags(t *testing.T) {
	f := newChatFixture(t)
	aliceId := f.addUser(t, &model.UserInfo{Username: "alice"})

	client := f.connect(aliceId)
	user, err := f.repos.User.FindById(aliceId)
	assert.NoError(t, err)
	assert.Equal(t, model.UserOnline, user.IsOnline)
	assert.Equal(t, client.ConnId, user.ConnId)

	f.presence.Unregister(client)
	user, err = f.repos.User.FindById(aliceId)
	assert.NoError(t, err)
	assert.Equal(t, model.UserOffline, user.IsOnline)
}
