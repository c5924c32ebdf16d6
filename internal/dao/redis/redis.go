// Package redis 提供 Redis 缓存操作的封装
// 包含 String 类型的基础操作以及模式匹配删除等高级功能
// 使用 github.com/redis/go-redis/v9 作为底层客户端
package redis

import (
	"context"
	"errors"
	"strconv"
	"time"

	"stranger_chat_server/internal/config"
	"stranger_chat_server/pkg/errorx"

	"github.com/redis/go-redis/v9"
)

// redisClient 全局 Redis 客户端实例
var redisClient *redis.Client

// ctx 全局上下文，用于 Redis 操作
var ctx = context.Background()

// Init 初始化 Redis 连接
// 从配置文件读取连接参数并创建客户端实例
func Init() {
	conf := config.GetConfig()
	addr := conf.RedisConfig.Host + ":" + strconv.Itoa(conf.RedisConfig.Port)

	redisClient = redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: conf.RedisConfig.Password,
		DB:       conf.RedisConfig.Db,

		// 连接池配置
		PoolSize:     50, // 最大连接数
		MinIdleConns: 15, // 最小空闲连接，与 Worker 数量匹配
	})

	// 启动 15 个 Worker，缓冲区大小 3000，多个 Service 共享
	InitCacheWorker(15, 3000)
}

// ==================== 基础 String 操作 ====================

// SetKeyEx 设置键值对并指定过期时间
func SetKeyEx(key string, value string, timeout time.Duration) error {
	if err := redisClient.Set(ctx, key, value, timeout).Err(); err != nil {
		return errorx.Wrapf(err, errorx.CodeCacheError, "redis set key %s", key)
	}
	return nil
}

// GetKey 获取键对应的值
// 如果键不存在，返回空字符串和 nil（不视为错误）
func GetKey(key string) (string, error) {
	value, err := redisClient.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", errorx.Wrapf(err, errorx.CodeCacheError, "redis get key %s", key)
	}
	return value, nil
}

// GetKeyNilIsErr 获取键对应的值（键不存在视为错误）
// 与 GetKey 的区别：如果键不存在，返回 CodeNotFound 错误
func GetKeyNilIsErr(key string) (string, error) {
	value, err := redisClient.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", errorx.Wrapf(err, errorx.CodeNotFound, "redis key %s not found", key)
		}
		return "", errorx.Wrapf(err, errorx.CodeCacheError, "redis get key %s", key)
	}
	return value, nil
}

// ==================== 删除操作 ====================

// DelKeyIfExists 删除键（如果存在）
// 无论键是否存在都返回成功
func DelKeyIfExists(key string) error {
	exists, err := redisClient.Exists(ctx, key).Result()
	if err != nil {
		return errorx.Wrapf(err, errorx.CodeCacheError, "redis exists key %s", key)
	}
	if exists == 1 {
		if err := redisClient.Del(ctx, key).Err(); err != nil {
			return errorx.Wrapf(err, errorx.CodeCacheError, "redis delete key %s", key)
		}
	}
	return nil
}

// DelKeysWithPattern 删除匹配模式的所有键
// 使用 SCAN 分批扫描 + UNLINK 异步删除，避免阻塞 Redis
// pattern: 匹配模式，如 "friend_list_*"
func DelKeysWithPattern(pattern string) error {
	var cursor uint64
	for {
		var keys []string
		var err error

		keys, cursor, err = redisClient.Scan(ctx, cursor, pattern, 500).Result()
		if err != nil {
			return errorx.Wrapf(err, errorx.CodeCacheError, "redis scan pattern %s", pattern)
		}

		if len(keys) > 0 {
			// UNLINK 会在后台线程释放内存，不阻塞主线程
			if err := redisClient.Unlink(ctx, keys...).Err(); err != nil {
				return errorx.Wrapf(err, errorx.CodeCacheError, "redis unlink keys with pattern %s", pattern)
			}
		}

		if cursor == 0 {
			break
		}
	}
	return nil
}

// DelKeysWithPrefix 删除指定前缀的所有键
func DelKeysWithPrefix(prefix string) error {
	return DelKeysWithPattern(prefix + "*")
}

// DeleteAllRedisKeys 删除当前数据库中的所有键
// 警告：此操作会清空整个数据库，通常用于服务器关闭时的清理
func DeleteAllRedisKeys() error {
	var cursor uint64 = 0
	for {
		keys, nextCursor, err := redisClient.Scan(ctx, cursor, "*", 0).Result()
		if err != nil {
			return errorx.Wrap(err, errorx.CodeCacheError, "redis scan all keys")
		}
		cursor = nextCursor

		if len(keys) > 0 {
			if _, err := redisClient.Del(ctx, keys...).Result(); err != nil {
				return errorx.Wrap(err, errorx.CodeCacheError, "redis delete all keys")
			}
		}

		if cursor == 0 {
			break
		}
	}
	return nil
}
