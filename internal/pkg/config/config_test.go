package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDefaults(t *testing.T) {
	configs := loadConfigFromEnv()

	assert.Equal(t, "uway", configs.App.Name)
	assert.Equal(t, 9990, configs.Server.Port)
	assert.Equal(t, 64, configs.Relay.SendBufferSize)
	assert.Equal(t, 5, configs.Client.ReconnectInterval)
	assert.Equal(t, 3, configs.Client.SampleInterval)
	assert.Equal(t, 5.0, configs.Client.SampleDistanceM)
	assert.Equal(t, 30, configs.Client.StalenessSweep)
	assert.Equal(t, 60, configs.Client.StalenessThreshold)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "8080")
	t.Setenv("RELAY_SEND_BUFFER_SIZE", "128")
	t.Setenv("CLIENT_SAMPLE_DISTANCE_M", "10.5")
	t.Setenv("APP_DEBUG", "false")

	configs := loadConfigFromEnv()

	assert.Equal(t, 8080, configs.Server.Port)
	assert.Equal(t, 128, configs.Relay.SendBufferSize)
	assert.Equal(t, 10.5, configs.Client.SampleDistanceM)
	assert.False(t, configs.App.Debug)
}

func TestEnvHelpers_BadValuesFallBack(t *testing.T) {
	t.Setenv("SOME_INT", "not-a-number")
	t.Setenv("SOME_BOOL", "maybe")
	t.Setenv("SOME_FLOAT", "wide")

	assert.Equal(t, 7, GetEnvAsInt("SOME_INT", 7))
	assert.True(t, GetEnvAsBool("SOME_BOOL", true))
	assert.Equal(t, 1.5, GetEnvAsFloat("SOME_FLOAT", 1.5))
	assert.Equal(t, "fallback", GetEnv("UNSET_KEY", "fallback"))
}
