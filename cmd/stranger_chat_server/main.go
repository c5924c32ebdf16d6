package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"stranger_chat_server/internal/config"
	dao "stranger_chat_server/internal/dao/mysql"
	myredis "stranger_chat_server/internal/dao/redis"
	"stranger_chat_server/internal/handler"
	"stranger_chat_server/internal/https_server"
	"stranger_chat_server/internal/infrastructure/logger"
	"stranger_chat_server/internal/service"
	"stranger_chat_server/internal/service/chat"
	"stranger_chat_server/pkg/util/jwt"
	"stranger_chat_server/pkg/util/snowflake"

	"go.uber.org/zap"
)

func main() {
	// 1. 加载配置
	conf := config.GetConfig()

	// 2. 初始化日志
	if err := logger.Init(&conf.LogConfig, "dev"); err != nil {
		log.Fatalf("init logger failed: %v", err)
	}
	zap.L().Info("日志初始化成功")

	// 3. 初始化数据库
	dao.Init()
	zap.L().Info("数据库初始化成功")

	// 4. 初始化 Redis
	myredis.Init()
	zap.L().Info("Redis 初始化成功")

	// 5. 初始化 JWT 和雪花算法
	jwt.Init(conf.JWTConfig.Secret, conf.JWTConfig.AccessTokenExpiry, conf.JWTConfig.RefreshTokenExpiry)
	snowflake.Init()
	zap.L().Info("JWT/Snowflake 初始化成功")

	// 6. 初始化 Service 层 (依赖注入)
	service.InitServices(dao.Repos)
	zap.L().Info("Service 层初始化成功")

	// 7. 初始化 ChatServer
	chatServer := chat.NewChatServer(chat.ChatServerConfig{
		Mode:          conf.KafkaConfig.EventMode,
		Repos:         dao.Repos,
		ContactOps:    service.Svc.Contact,
		MessageOps:    service.Svc.Message,
		KafkaHostPort: conf.KafkaConfig.HostPort,
		KafkaTopic:    conf.KafkaConfig.EventTopic,
		SweepInterval: conf.SweepInterval(),
		QueueTimeout:  conf.QueueTimeout(),
	})
	if conf.KafkaConfig.EventMode == "kafka" {
		chatServer.InitKafka()
	}
	// 启动对账 + 事件消费循环 + 排队超时清扫
	if err := chatServer.Start(); err != nil {
		zap.L().Fatal("ChatServer 启动失败", zap.Error(err))
	}
	zap.L().Info("ChatServer 初始化成功")

	// 8. 初始化参数校验翻译器和 HTTP 服务器
	if err := handler.InitTrans("zh"); err != nil {
		zap.L().Fatal("validator 翻译器初始化失败", zap.Error(err))
	}
	handlers := handler.NewHandlers(service.Svc, chatServer.GetBroker())
	engine := https_server.Init(handlers)
	zap.L().Info("HTTP 服务器初始化成功")

	// 9. 启动服务
	host := conf.MainConfig.Host
	port := conf.MainConfig.Port
	go func() {
		if err := engine.Run(fmt.Sprintf("%s:%d", host, port)); err != nil {
			zap.L().Fatal("server running fault", zap.Error(err))
		}
	}()

	// 等待退出信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zap.L().Info("关闭服务器...")
	chatServer.Close()
	zap.L().Info("服务器已关闭")
}
