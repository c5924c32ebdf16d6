// Package chat 实现陌生人匹配与信令转发的核心服务层
// server.go
// 核心职责：聊天服务器聚合结构和依赖注入
// 封装 MatchBroker、KafkaClient 等组件，提供统一的生命周期管理
package chat

import (
	"context"
	"time"

	"stranger_chat_server/internal/dao/mysql/repository"
)

// MatchBroker 定义事件代理接口
// 支持多种实现：KafkaBroker (分布式), ChannelBroker (单机)
type MatchBroker interface {
	// Publish 发布上行事件
	Publish(ctx context.Context, userId uint64, msg []byte) error
	// RegisterClient 注册客户端连接
	RegisterClient(client *UserConn)
	// UnregisterClient 注销客户端连接
	UnregisterClient(client *UserConn)
	// GetClient 获取指定用户的连接
	GetClient(userId uint64) *UserConn
	// PushToUser 向在线用户推送一条下行事件，离线用户静默忽略
	PushToUser(userId uint64, event string, data interface{})
	// Start 启动事件消费循环
	Start()
	// Close 关闭代理资源
	Close()
}

// ChatServer 聊天服务器聚合结构
// 封装所有匹配相关组件，通过依赖注入管理生命周期
type ChatServer struct {
	// Broker 事件代理，根据配置可能是 ChannelBroker 或 KafkaBroker
	Broker MatchBroker

	// KafkaClient Kafka 客户端（仅 Kafka 模式使用）
	KafkaClient *KafkaClient

	Presence   *Presence
	Rooms      *RoomIndex
	Matcher    *Matcher
	Relay      *Relay
	Dispatcher *Dispatcher

	repos       *repository.Repositories
	mode        string
	stopSweeper func()

	sweepInterval time.Duration
	queueTimeout  time.Duration
}

// ChatServerConfig 聊天服务器配置
type ChatServerConfig struct {
	Mode          string // "channel" 或 "kafka"
	Repos         *repository.Repositories
	ContactOps    ContactOps
	MessageOps    MessageOps
	KafkaHostPort string
	KafkaTopic    string
	SweepInterval time.Duration // 超时清扫间隔
	QueueTimeout  time.Duration // 排队超时时间
}

// NewChatServer 创建聊天服务器实例
// 根据配置选择 ChannelBroker 或 KafkaBroker
func NewChatServer(cfg ChatServerConfig) *ChatServer {
	presence := NewPresence(cfg.Repos.User)
	rooms := NewRoomIndex()
	matcher := NewMatcher(cfg.Repos, presence, rooms)
	relay := NewRelay(cfg.Repos, presence, rooms)
	dispatcher := NewDispatcher(cfg.Repos, presence, rooms, matcher, relay, cfg.ContactOps, cfg.MessageOps)

	cs := &ChatServer{
		Presence:      presence,
		Rooms:         rooms,
		Matcher:       matcher,
		Relay:         relay,
		Dispatcher:    dispatcher,
		repos:         cfg.Repos,
		mode:          cfg.Mode,
		sweepInterval: cfg.SweepInterval,
		queueTimeout:  cfg.QueueTimeout,
	}

	if cfg.Mode == "kafka" {
		// Kafka 模式
		cs.KafkaClient = NewKafkaClient(cfg.KafkaHostPort, cfg.KafkaTopic)
		cs.Broker = NewKafkaBroker(cs.KafkaClient, presence, dispatcher)
	} else {
		// Channel 模式（默认）
		cs.Broker = NewChannelBroker(presence, dispatcher)
	}

	return cs
}

// InitKafka 初始化 Kafka 连接（仅 Kafka 模式需要调用）
func (cs *ChatServer) InitKafka() {
	if cs.KafkaClient != nil {
		cs.KafkaClient.KafkaInit()
	}
}

// Start 启动聊天服务器
// 先做启动对账，再拉起事件消费循环和超时清扫
func (cs *ChatServer) Start() error {
	if err := cs.Matcher.Reconcile(); err != nil {
		return err
	}
	go cs.Broker.Start()
	cs.stopSweeper = cs.Matcher.StartSweeper(cs.sweepInterval, cs.queueTimeout)
	return nil
}

// Close 关闭聊天服务器
func (cs *ChatServer) Close() {
	if cs.stopSweeper != nil {
		cs.stopSweeper()
	}
	cs.Broker.Close()
	if cs.KafkaClient != nil {
		cs.KafkaClient.KafkaClose()
	}
}

// GetBroker 获取事件代理
func (cs *ChatServer) GetBroker() MatchBroker {
	return cs.Broker
}
