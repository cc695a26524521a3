package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("PUBLIC_ORIGIN", "https://learn.example.com/")
	t.Setenv("CERT_PROGRAM_PREFIX", "nyst")
	t.Setenv("SEND_TIMEOUT", "5")
	t.Setenv("DISPATCH_WORKERS", "0")

	LoadConfig()

	assert.Equal(t, "https://learn.example.com", AppConfig.PublicOrigin)
	assert.Equal(t, "NYST", AppConfig.CertProgramPrefix)
	assert.Equal(t, 5*time.Second, AppConfig.SendTimeout)
	assert.Equal(t, 1, AppConfig.DispatchWorkers)
	assert.False(t, AppConfig.EnforceLinkSignature)
}

func TestEnforceSignatureNeedsKey(t *testing.T) {
	t.Setenv("ENFORCE_LINK_SIGNATURE", "true")
	t.Setenv("LINK_SIGNING_KEY", "")

	LoadConfig()
	assert.False(t, AppConfig.EnforceLinkSignature)

	t.Setenv("LINK_SIGNING_KEY", "k")
	LoadConfig()
	assert.True(t, AppConfig.EnforceLinkSignature)
}

func TestGetEnvDuration(t *testing.T) {
	t.Setenv("X_DURATION", "250ms")
	assert.Equal(t, 250*time.Millisecond, getEnvDuration("X_DURATION", time.Second))

	t.Setenv("X_DURATION", "nope")
	assert.Equal(t, time.Second, getEnvDuration("X_DURATION", time.Second))
}
