package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
[bot]
token = "file-token"
admin_chat_ids = [42, 43]

[http]
addr = ":9090"

[cache]
catalogue_ttl = "30m"
session_ttl = "90m"

[log]
level = "debug"
format = "json"

[learning]
timezone = "Europe/Rome"
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "sommelier.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	// keep a stray .env in the repo from leaking into the test
	t.Chdir(dir)
	return path
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, sample)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "file-token", cfg.Bot.Token)
	assert.Equal(t, []int64{42, 43}, cfg.Bot.AdminChatIDs)
	assert.Equal(t, ":9090", cfg.HTTP.Addr)
	assert.Equal(t, 30*time.Minute, cfg.Cache.CatalogueTTL.Duration)
	assert.Equal(t, 90*time.Minute, cfg.Cache.SessionTTL.Duration)
	assert.Equal(t, 5*time.Minute, cfg.Cache.FallbackTTL.Duration, "defaults survive")
	assert.Equal(t, "json", cfg.Log.Format)
	assert.True(t, cfg.IsAdmin(43))
	assert.False(t, cfg.IsAdmin(1))

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "Europe/Rome", loc.String())
	assert.NoError(t, cfg.Validate())
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, sample)
	t.Setenv("SOMMELIER_BOT_TOKEN", "env-token")
	t.Setenv("SOMMELIER_ADMIN_CHAT_IDS", "7, 8")
	t.Setenv("SOMMELIER_SHEET_RANGES", "Wine!A1:Z,Beer!A1:Z")
	t.Setenv("SOMMELIER_LLM_PROVIDER", "none")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "env-token", cfg.Bot.Token)
	assert.Equal(t, []int64{7, 8}, cfg.Bot.AdminChatIDs)
	assert.Equal(t, []string{"Wine!A1:Z", "Beer!A1:Z"}, cfg.Sheets.Ranges)
	assert.False(t, cfg.LLM.Enabled())
}

func TestLoad_DotEnv(t *testing.T) {
	writeConfig(t, "")
	require.NoError(t, os.WriteFile(".env", []byte("SOMMELIER_DB=/tmp/from-dotenv.db\n"), 0o600))
	t.Setenv("SOMMELIER_DB", "")
	os.Unsetenv("SOMMELIER_DB")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/from-dotenv.db", cfg.DB.Path)
	os.Unsetenv("SOMMELIER_DB")
}

func TestLoad_Errors(t *testing.T) {
	writeConfig(t, "")
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)

	bad := writeConfig(t, "[cache]\nsession_ttl = \"soon\"\n")
	_, err = Load(bad)
	assert.Error(t, err)

	t.Setenv("SOMMELIER_ADMIN_CHAT_IDS", "abc")
	_, err = Load("")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bot token")

	cfg.Bot.Token = "t"
	cfg.Log.Format = "xml"
	cfg.Learning.Timezone = "Mars/Olympus"
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log format")
	assert.Contains(t, err.Error(), "timezone")

	cfg.Log.Format = "text"
	cfg.Learning.Timezone = ""
	assert.NoError(t, cfg.Validate())

	cfg.LLM.Provider = "anthropic"
	assert.Error(t, cfg.Validate())
}
