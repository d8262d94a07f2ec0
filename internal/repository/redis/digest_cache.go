package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"acta_diurna/internal/model"
)

const (
	DigestCacheTTL       = 24 * time.Hour
	DigestCacheKeyPrefix = "digest:owner"
)

// DigestCache 周报读缓存。真相在 MySQL（唯一约束兜底），
// 这里只做读路径加速，写失败一律忽略。
type DigestCache struct {
	RDB *redis.Client
	ttl time.Duration
}

func NewDigestCache(rdb *redis.Client) *DigestCache {
	return &DigestCache{RDB: rdb, ttl: DigestCacheTTL}
}

func (c *DigestCache) key(ownerID uint64, weekID string) string {
	return fmt.Sprintf("%s:%d:%s", DigestCacheKeyPrefix, ownerID, weekID)
}

// Get 命中返回 (digest, true)；未命中或反序列化失败都按 miss 处理
func (c *DigestCache) Get(ctx context.Context, ownerID uint64, weekID string) (*model.Digest, bool) {
	raw, err := c.RDB.Get(ctx, c.key(ownerID, weekID)).Bytes()
	if errors.Is(err, redis.Nil) || err != nil {
		return nil, false
	}
	var d model.Digest
	if err := json.Unmarshal(raw, &d); err != nil {
		_ = c.RDB.Del(ctx, c.key(ownerID, weekID)).Err()
		return nil, false
	}
	return &d, true
}

// Set 回填缓存，尽力而为
func (c *DigestCache) Set(ctx context.Context, d *model.Digest) {
	raw, err := json.Marshal(d)
	if err != nil {
		return
	}
	_ = c.RDB.Set(ctx, c.key(d.OwnerID, d.RequestedWeek), raw, c.ttl).Err()
}

// Delete 立刻删一次；delay>0 时后台再删一次，抵消并发回填窗口
func (c *DigestCache) Delete(ctx context.Context, ownerID uint64, weekID string, delay ...time.Duration) error {
	key := c.key(ownerID, weekID)
	if err := c.RDB.Del(ctx, key).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	if len(delay) > 0 && delay[0] > 0 {
		d := delay[0]
		go func() {
			t := time.NewTimer(d)
			defer t.Stop()
			<-t.C
			_ = c.RDB.Del(context.Background(), key).Err()
		}()
	}
	return nil
}
