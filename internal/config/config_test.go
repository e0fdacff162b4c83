package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tictactoe.yml")
	content := []byte("tick-rate: 10\nleaderboard-id: weekly\nvoice:\n  issuer: iss\n  token-ttl: 2m\n")
	require.NoError(t, os.WriteFile(path, content, 0o600))

	c, err := Parse(path)
	require.NoError(t, err)

	assert.Equal(t, 10, c.TickRate)
	assert.Equal(t, "weekly", c.LeaderboardID)
	assert.Equal(t, "match_results", c.ResultCollection)
	assert.Equal(t, int64(25), c.FinishedLingerTicks)
	assert.Equal(t, "iss", c.Voice.Issuer)
	assert.Equal(t, 2*time.Minute, c.Voice.TokenTTL)
}

func TestParse_MissingFileUsesDefaults(t *testing.T) {
	c, err := Parse(filepath.Join(t.TempDir(), "absent.yml"))
	require.NoError(t, err)

	assert.Equal(t, 5, c.TickRate)
	assert.Equal(t, int64(60), c.TickReportInterval)
	assert.Equal(t, "tictactoe_global", c.LeaderboardID)
	assert.Equal(t, "tictactoe", c.LabelGame)
	assert.Equal(t, 90*time.Second, c.Voice.TokenTTL)
}

func TestParse_ClampsTickRate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tictactoe.yml")
	require.NoError(t, os.WriteFile(path, []byte("tick-rate: 500\n"), 0o600))

	c, err := Parse(path)
	require.NoError(t, err)
	assert.Equal(t, 60, c.TickRate)
}

func TestWithRuntimeEnv(t *testing.T) {
	base := Default()
	c := base.WithRuntimeEnv(map[string]string{
		EnvTickRate:    "2",
		EnvVoiceIssuer: "iss",
		EnvVoiceSecret: "secret",
		EnvVoiceDomain: "voice.example.com",
	})

	assert.Equal(t, 2, c.TickRate)
	assert.Equal(t, "iss", c.Voice.Issuer)
	assert.Equal(t, "secret", c.Voice.Secret)
	assert.Equal(t, "voice.example.com", c.Voice.Domain)
	assert.Empty(t, base.Voice.Secret, "base config is not modified")
}
