package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/civic-complaint-api/pkg/config"
)

func TestOptions(t *testing.T) {
	opts := Options(config.RedisConfig{Host: "cache", Port: 6380, Password: "pw", DB: 2})
	assert.Equal(t, "cache:6380", opts.Addr)
	assert.Equal(t, "pw", opts.Password)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, 500*time.Millisecond, opts.ReadTimeout)
}

func TestOptionsIPv6(t *testing.T) {
	assert.Equal(t, "[::1]:6379", Options(config.RedisConfig{Host: "::1", Port: 6379}).Addr)
}
