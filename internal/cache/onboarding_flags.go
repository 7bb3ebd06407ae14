package cache

import "errors"

const deviceOnboardedKeyPrefix = "onboarding:hasOnboarded_anonymous:"

var errNoRedis = errors.New("redis unavailable")

// OnboardingFlags stores "has seen the intro" for signed-out devices. The
// flag never expires.
type OnboardingFlags struct {
	redis *RedisCache
}

func NewOnboardingFlags(redis *RedisCache) *OnboardingFlags {
	return &OnboardingFlags{redis: redis}
}

func deviceKey(deviceID string) string {
	return deviceOnboardedKeyPrefix + deviceID
}

func (f *OnboardingFlags) HasOnboarded(deviceID string) (bool, error) {
	if f == nil || f.redis == nil {
		return false, errNoRedis
	}
	val, err := f.redis.Get(deviceKey(deviceID))
	if err != nil {
		return false, err
	}
	return string(val) == "true", nil
}

func (f *OnboardingFlags) MarkOnboarded(deviceID string) error {
	if f == nil || f.redis == nil {
		return errNoRedis
	}
	return f.redis.Set(deviceKey(deviceID), []byte("true"), 0)
}
