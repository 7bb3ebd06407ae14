package cache

import (
	"time"
)

const (
	OnlineUsersTTL = 90 * time.Second // Match pong timeout
	onlineSetKey   = "online:users"
)

// UserCache tracks which users hold a live socket on any instance
type UserCache struct {
	redis *RedisCache
}

func NewUserCache(redis *RedisCache) *UserCache {
	return &UserCache{redis: redis}
}

func onlineKey(userID string) string {
	return "online:" + userID
}

// SetUserOnline adds a user to the online users set
func (uc *UserCache) SetUserOnline(userID string) error {
	if uc == nil || uc.redis == nil {
		return nil
	}
	if err := uc.redis.SetAdd(onlineSetKey, userID); err != nil {
		return err
	}
	// Individual key with TTL so crashed instances do not leave users online forever.
	return uc.redis.Set(onlineKey(userID), []byte("1"), OnlineUsersTTL)
}

// SetUserOffline removes a user from the online users set
func (uc *UserCache) SetUserOffline(userID string) error {
	if uc == nil || uc.redis == nil {
		return nil
	}
	if err := uc.redis.SetRemove(onlineSetKey, userID); err != nil {
		return err
	}
	return uc.redis.Delete(onlineKey(userID))
}

// IsUserOnline checks if a user is online. Without Redis nobody is.
func (uc *UserCache) IsUserOnline(userID string) bool {
	if uc == nil || uc.redis == nil {
		return false
	}
	online, err := uc.redis.Exists(onlineKey(userID))
	return err == nil && online
}

// GetOnlineCount returns the number of online users
func (uc *UserCache) GetOnlineCount() (int64, error) {
	if uc == nil || uc.redis == nil {
		return 0, nil
	}
	return uc.redis.SetCard(onlineSetKey)
}

// RefreshUserOnline extends the TTL for an online user
func (uc *UserCache) RefreshUserOnline(userID string) error {
	if uc == nil || uc.redis == nil {
		return nil
	}
	return uc.redis.Set(onlineKey(userID), []byte("1"), OnlineUsersTTL)
}
