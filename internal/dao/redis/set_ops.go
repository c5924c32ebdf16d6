// Package redis 提供 Redis 缓存操作的封装
// 本文件包含 Set（集合）类型的操作

package redis

import (
	"stranger_chat_server/pkg/errorx"
)

// ==================== Set 集合操作 ====================

// SAdd 向集合添加一个或多个成员
// 集合成员唯一，重复添加不会报错也不会增加成员
func SAdd(key string, members ...interface{}) error {
	if err := redisClient.SAdd(ctx, key, members...).Err(); err != nil {
		return errorx.Wrapf(err, errorx.CodeCacheError, "redis sadd key %s", key)
	}
	return nil
}

// SRem 从集合移除一个或多个成员
func SRem(key string, members ...interface{}) error {
	if err := redisClient.SRem(ctx, key, members...).Err(); err != nil {
		return errorx.Wrapf(err, errorx.CodeCacheError, "redis srem key %s", key)
	}
	return nil
}

// SMembers 获取集合中的所有成员
func SMembers(key string) ([]string, error) {
	members, err := redisClient.SMembers(ctx, key).Result()
	if err != nil {
		return nil, errorx.Wrapf(err, errorx.CodeCacheError, "redis smembers key %s", key)
	}
	return members, nil
}

// SIsMember 判断成员是否存在于集合中
func SIsMember(key string, member interface{}) (bool, error) {
	isMember, err := redisClient.SIsMember(ctx, key, member).Result()
	if err != nil {
		return false, errorx.Wrapf(err, errorx.CodeCacheError, "redis sismember key %s", key)
	}
	return isMember, nil
}
