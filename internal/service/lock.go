package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"learnpath/backend/pkg/redis"
)

// ErrLockBusy 同一用户已有请求持有锁
var ErrLockBusy = errors.New("操作正在进行中，请稍后重试")

// Locker 按 key 串行化的互斥锁
// Lock 成功后返回释放函数，释放函数可重复调用
type Locker interface {
	Lock(ctx context.Context, key string) (func(), error)
}

// ────────────────────── Redis 分布式锁 ──────────────────────

type redisLocker struct {
	rdb      *redis.Client
	ttl      time.Duration
	wait     time.Duration
	fallback *localLocker
	logger   *zap.Logger
}

// NewLocker rdb 为 nil 时只使用进程内锁
// Redis 不可用时（非锁占用错误）降级为进程内锁
func NewLocker(rdb *redis.Client, ttl, wait time.Duration, logger *zap.Logger) Locker {
	local := newLocalLocker()
	if rdb == nil {
		return local
	}
	return &redisLocker{rdb: rdb, ttl: ttl, wait: wait, fallback: local, logger: logger}
}

func (l *redisLocker) Lock(ctx context.Context, key string) (func(), error) {
	lock, err := l.rdb.AcquireLock(ctx, key, l.ttl, l.wait)
	if err != nil {
		if errors.Is(err, redis.ErrLockHeld) {
			return nil, ErrLockBusy
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		l.logger.Warn("Redis 锁不可用，降级为进程内锁", zap.String("key", key), zap.Error(err))
		return l.fallback.Lock(ctx, key)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			// 请求 ctx 可能已取消，释放使用独立的短超时
			releaseCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			if err := lock.Release(releaseCtx); err != nil {
				l.logger.Warn("释放 Redis 锁失败，等待 TTL 过期", zap.String("key", key), zap.Error(err))
			}
		})
	}, nil
}

// ────────────────────── 进程内锁 ──────────────────────

type keyLock struct {
	ch   chan struct{}
	refs int
}

type localLocker struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

func newLocalLocker() *localLocker {
	return &localLocker{locks: make(map[string]*keyLock)}
}

// Lock 阻塞直到获得 key 对应的锁或 ctx 结束
func (l *localLocker) Lock(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	k, ok := l.locks[key]
	if !ok {
		k = &keyLock{ch: make(chan struct{}, 1)}
		l.locks[key] = k
	}
	k.refs++
	l.mu.Unlock()

	select {
	case k.ch <- struct{}{}:
	case <-ctx.Done():
		l.release(key, k)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-k.ch
			l.release(key, k)
		})
	}, nil
}

func (l *localLocker) release(key string, k *keyLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	k.refs--
	if k.refs == 0 {
		delete(l.locks, key)
	}
}
