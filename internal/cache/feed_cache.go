package cache

import (
	"fmt"
	"time"

	"github.com/AnemiB/SipStop/internal/models"
	"github.com/vmihailenco/msgpack/v5"
)

// FeedTTL bounds staleness when an invalidation is missed.
const FeedTTL = 2 * time.Minute

const feedKeyPrefix = "feed:community:"

// FeedCache caches the community note feed as msgpack
type FeedCache struct {
	redis *RedisCache
}

func NewFeedCache(redis *RedisCache) *FeedCache {
	return &FeedCache{redis: redis}
}

func communityKey(limit int) string {
	return fmt.Sprintf("%s%d", feedKeyPrefix, limit)
}

func (fc *FeedCache) GetCommunity(limit int) ([]models.NoteResponse, bool) {
	if fc == nil || fc.redis == nil {
		return nil, false
	}
	data, err := fc.redis.Get(communityKey(limit))
	if err != nil || data == nil {
		return nil, false
	}

	var notes []models.NoteResponse
	if err := msgpack.Unmarshal(data, &notes); err != nil {
		return nil, false
	}
	return notes, true
}

func (fc *FeedCache) SetCommunity(limit int, notes []models.NoteResponse) error {
	if fc == nil || fc.redis == nil {
		return nil
	}
	data, err := msgpack.Marshal(notes)
	if err != nil {
		return err
	}
	return fc.redis.Set(communityKey(limit), data, FeedTTL)
}

// InvalidateCommunity drops every cached page size.
func (fc *FeedCache) InvalidateCommunity() error {
	if fc == nil || fc.redis == nil {
		return nil
	}
	return fc.redis.DeletePattern(feedKeyPrefix + "*")
}
