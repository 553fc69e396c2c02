package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestViper(overrides map[string]interface{}) *viper.Viper {
	v := viper.New()
	setDefaults(v)
	for key, value := range overrides {
		v.Set(key, value)
	}
	return v
}

func TestConfigDefaults(t *testing.T) {
	cfg, err := fromViper(newTestViper(nil))
	require.NoError(t, err)

	assert.Equal(t, "/api", cfg.APIPrefix)
	assert.Equal(t, 7*24*time.Hour, cfg.JWT.Expiration)
	assert.Equal(t, ImageStorageNone, cfg.Images.Storage)
	assert.Equal(t, int64(5*1024*1024), cfg.Images.MaxSizeBytes)
	assert.Equal(t, 100, cfg.Export.PDFMaxRows)
	assert.Equal(t, 5, cfg.Complaints.RewardMin)
	assert.Equal(t, 15, cfg.Complaints.RewardMax)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
}

func TestConfigInvalidDurationFallsBack(t *testing.T) {
	cfg, err := fromViper(newTestViper(map[string]interface{}{
		"JWT_EXPIRATION": "soon",
		"CACHE_TTL":      "1m",
	}))
	require.NoError(t, err)
	assert.Equal(t, 7*24*time.Hour, cfg.JWT.Expiration)
	assert.Equal(t, time.Minute, cfg.Cache.TTL)
}

func TestConfigProductionRequiresSecret(t *testing.T) {
	_, err := fromViper(newTestViper(map[string]interface{}{
		"ENV":        EnvProduction,
		"JWT_SECRET": "",
	}))
	require.Error(t, err)
}

func TestConfigRewardRangeReset(t *testing.T) {
	cfg, err := fromViper(newTestViper(map[string]interface{}{
		"REWARD_MIN": 20,
		"REWARD_MAX": 10,
	}))
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Complaints.RewardMin)
	assert.Equal(t, 15, cfg.Complaints.RewardMax)
}

func TestSplitAndTrim(t *testing.T) {
	assert.Nil(t, splitAndTrim(""))
	assert.Equal(t, []string{"http://a", "http://b"}, splitAndTrim(" http://a , ,http://b"))
}
