package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	sessionTokenPrefix = "session:user:token"

	// SessionTokenTTL 会话空闲超时，每次校验通过后滑动续期
	SessionTokenTTL = 30 * time.Minute
)

var (
	ErrTokenNotFound    = errors.New("token not found")
	ErrRedisUnavailable = errors.New("redis unavailable")
)

// UserRepository 登录会话存取。每个用户只保留一个有效 access token，
// 新登录直接覆盖旧值，实现互踢。
type UserRepository struct{}

func sessionKey(usrID uint64) string {
	return fmt.Sprintf("%s:%d", sessionTokenPrefix, usrID)
}

func (r *UserRepository) AddUserToken(usrID uint64, token string) error {
	if err := Client.Set(context.Background(), sessionKey(usrID), token, SessionTokenTTL).Err(); err != nil {
		return ErrRedisUnavailable
	}
	return nil
}

func (r *UserRepository) GetUserToken(usrID uint64) (string, error) {
	token, err := Client.Get(context.Background(), sessionKey(usrID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrTokenNotFound
	}
	if err != nil {
		return "", ErrRedisUnavailable
	}
	return token, nil
}

// ExtendUserToken 活跃会话滑动续期
func (r *UserRepository) ExtendUserToken(usrID uint64) error {
	if err := Client.Expire(context.Background(), sessionKey(usrID), SessionTokenTTL).Err(); err != nil {
		return ErrRedisUnavailable
	}
	return nil
}

// DeleteUserToken 登出即删会话，幂等
func (r *UserRepository) DeleteUserToken(usrID uint64) error {
	if err := Client.Del(context.Background(), sessionKey(usrID)).Err(); err != nil {
		return ErrRedisUnavailable
	}
	return nil
}
