package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrDrawLockFailed = errors.New("failed to acquire draw lock")

// DrawLock 开奖互斥锁
//
// 使用 Redis SET NX 在多副本部署下串行化同一项目的开奖。
// 数据库唯一约束是最终防线，锁避免并发副本重复消耗随机数。
type DrawLock struct {
	redis *redis.Client
	ttl   time.Duration
}

// NewDrawLock 创建开奖锁
func NewDrawLock(rdb *redis.Client, ttl time.Duration) *DrawLock {
	if ttl == 0 {
		ttl = 30 * time.Second
	}
	return &DrawLock{redis: rdb, ttl: ttl}
}

// lockKey 生成锁 key
func (l *DrawLock) lockKey(projectID uint64) string {
	return fmt.Sprintf("luckpool:registry:draw:lock:%d", projectID)
}

// Acquire 获取项目的开奖锁
func (l *DrawLock) Acquire(ctx context.Context, projectID uint64) (bool, error) {
	ok, err := l.redis.SetNX(ctx, l.lockKey(projectID), "1", l.ttl).Result()
	if err != nil {
		return false, err
	}
	return ok, nil
}

// Release 释放项目的开奖锁
func (l *DrawLock) Release(ctx context.Context, projectID uint64) error {
	return l.redis.Del(ctx, l.lockKey(projectID)).Err()
}
