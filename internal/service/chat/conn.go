// Package chat 实现陌生人匹配与信令转发的核心服务层
// conn.go
// 核心职责：WebSocket 连接生命周期管理
// 1. 建立 WebSocket 连接 (Upgrade)
// 2. 封装 UserConn 对象，管理读写协程 (Read/Write Loop)
// 3. 通过 MatchBroker 接口解耦事件投递逻辑
package chat

import (
	"context"
	"net/http"
	"time"

	"stranger_chat_server/pkg/constants"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	// writeWait 单次写操作的最长等待时间
	writeWait = 10 * time.Second
	// pongWait 收到 pong 的最长等待时间，超时判定连接死亡
	pongWait = 60 * time.Second
	// pingPeriod 心跳间隔，必须小于 pongWait
	pingPeriod = (pongWait * 9) / 10
	// maxMessageSize 单条上行消息的大小上限
	maxMessageSize = 8192
)

// UserConn 表示一个 WebSocket 客户端连接
type UserConn struct {
	Conn   *websocket.Conn
	UserId uint64
	// ConnId 连接句柄，每次连接生成新值
	// 同一用户重连后旧连接凭句柄区分，后注册者获胜
	ConnId   string
	SendBack chan []byte // 下行事件通道
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  2048,
	WriteBufferSize: 2048,
	// 允许任何来源的连接，跨域由前端部署环境约束
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

var ctx = context.Background()

// Send 非阻塞投递下行事件
// 通道满说明连接已经写不动了，丢弃该事件并记录日志
func (c *UserConn) Send(message []byte) {
	select {
	case c.SendBack <- message:
	default:
		zap.L().Warn("ws send buffer full, drop event",
			zap.Uint64("user_id", c.UserId))
	}
}

// Read 从 WebSocket 读取事件并通过 Broker 发布
func (c *UserConn) Read(broker MatchBroker) {
	defer func() {
		broker.UnregisterClient(c)
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		_, jsonMessage, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				zap.L().Error("ws read", zap.Uint64("user_id", c.UserId), zap.Error(err))
			}
			return
		}
		// 通过接口发布事件，不关心具体实现
		if err := broker.Publish(ctx, c.UserId, jsonMessage); err != nil {
			zap.L().Error("publish event", zap.Uint64("user_id", c.UserId), zap.Error(err))
		}
	}
}

// Write 从 SendBack 通道读取事件并发送给 WebSocket
// 定时发送 ping 维持连接活性
func (c *UserConn) Write() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.SendBack:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				zap.L().Error("ws write", zap.Uint64("user_id", c.UserId), zap.Error(err))
				return
			}
		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// NewClientInit 前端携带有效令牌发起 ws 连接时调用
func NewClientInit(c *gin.Context, userId uint64, broker MatchBroker) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		zap.L().Error("ws upgrade", zap.Error(err))
		return
	}
	client := &UserConn{
		Conn:     conn,
		UserId:   userId,
		ConnId:   uuid.New().String(),
		SendBack: make(chan []byte, constants.CLIENT_SEND_BUFFER),
	}
	// 通过接口注册 websocket 客户端
	broker.RegisterClient(client)
	go client.Read(broker)
	go client.Write()
	zap.L().Info("ws连接成功", zap.Uint64("user_id", userId))
}
