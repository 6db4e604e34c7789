package services

import (
	"errors"
	"testing"
	"time"

	"github.com/website-f/gate/config"
	"github.com/website-f/gate/models"
)

// fakeCache 内存实现的Redis缓存桩，供本包测试共用
type fakeCache struct {
	token    string
	statuses map[string]models.DeviceStatus

	tokenReads  int
	tokenWrites int
	loginCached string
}

var errCacheMiss = errors.New("cache miss")

func newFakeCache() *fakeCache {
	return &fakeCache{statuses: make(map[string]models.DeviceStatus)}
}

func (f *fakeCache) Set(key string, value interface{}, expiration time.Duration) error { return nil }
func (f *fakeCache) Get(key string, dest interface{}) error                            { return errCacheMiss }
func (f *fakeCache) Delete(key string) error                                           { return nil }

func (f *fakeCache) CacheBackofficeToken(token string, expiration time.Duration) error {
	f.token = token
	f.tokenWrites++
	f.loginCached = token
	return nil
}

func (f *fakeCache) GetBackofficeToken() (string, error) {
	f.tokenReads++
	if f.token == "" {
		return "", errCacheMiss
	}
	return f.token, nil
}

func (f *fakeCache) CacheDeviceStatus(ip string, status models.DeviceStatus) error {
	f.statuses[ip] = status
	return nil
}

func (f *fakeCache) GetDeviceStatus(ip string) (models.DeviceStatus, error) {
	status, ok := f.statuses[ip]
	if !ok {
		return "", errCacheMiss
	}
	return status, nil
}

func TestProbeByIPServesCachedStatus(t *testing.T) {
	client := &fakeWhitelistClient{}
	cache := newFakeCache()
	cache.statuses["10.0.0.1"] = models.DeviceStatusOnline

	svc := &DeviceService{Config: &config.Config{}, Client: client, Cache: cache}

	if status := svc.ProbeByIP("10.0.0.1"); status != models.DeviceStatusOnline {
		t.Fatalf("expected cached online status, got %s", status)
	}
	// TTL内不允许再探测设备
	if len(client.probeCalls) != 0 {
		t.Fatalf("cached status must not trigger a probe, got %d probe calls", len(client.probeCalls))
	}
}

func TestProbeByIPProbesAndCachesOnMiss(t *testing.T) {
	client := &fakeWhitelistClient{offline: map[string]bool{"10.0.0.2": true}}
	cache := newFakeCache()

	svc := &DeviceService{Config: &config.Config{}, Client: client, Cache: cache}

	if status := svc.ProbeByIP("10.0.0.2"); status != models.DeviceStatusOffline {
		t.Fatalf("expected probed offline status, got %s", status)
	}
	if len(client.probeCalls) != 1 {
		t.Fatalf("cache miss must probe exactly once, got %d", len(client.probeCalls))
	}
	if cache.statuses["10.0.0.2"] != models.DeviceStatusOffline {
		t.Fatal("probe result must be written back to the cache")
	}
}

func TestProbeAndCacheBypassesStaleCache(t *testing.T) {
	// 刷新路径必须绕过缓存：缓存里是offline，设备实际在线
	client := &fakeWhitelistClient{}
	cache := newFakeCache()
	cache.statuses["10.0.0.3"] = models.DeviceStatusOffline

	svc := &DeviceService{Config: &config.Config{}, Client: client, Cache: cache}

	if status := svc.probeAndCache("10.0.0.3"); status != models.DeviceStatusOnline {
		t.Fatalf("refresh must return the freshly probed status, got %s", status)
	}
	if cache.statuses["10.0.0.3"] != models.DeviceStatusOnline {
		t.Fatal("refresh must overwrite the stale cache entry")
	}
}
