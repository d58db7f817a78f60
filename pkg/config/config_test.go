package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	// Provide a path that definitely doesn't exist
	config, err := LoadConfig("non_existent_config.yml")
	require.NoError(t, err)

	assert.Equal(t, "+", config.Bot.Prefix)
	assert.Equal(t, 3, config.Moderation.WarnThreshold)
	assert.Equal(t, "storage.json", config.Store.Path)
	assert.Equal(t, 6, config.Games.HangmanAttempts)
	assert.Equal(t, 3, config.Games.WordGameRounds)
	assert.Equal(t, 90, config.Games.WordGameSeconds.Easy)
	assert.Equal(t, 60, config.Games.WordGameSeconds.Medium)
	assert.Equal(t, 30, config.Games.WordGameSeconds.Hard)
}

func TestLoadConfig_ValidFile(t *testing.T) {
	content := []byte(`
bot:
  prefix: "!"
  owner_ids: "111,222"
  control_group_id: "control"
moderation:
  warn_threshold: 5
store:
  path: /tmp/bot-state.json
games:
  hangman_attempts: 8
  wordgame_rounds: 4
`)
	tmpfile, err := os.CreateTemp("", "config_test_*.yml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name()) // clean up

	if _, err := tmpfile.Write(content); err != nil {
		tmpfile.Close()
		t.Fatal(err)
	}
	if err := tmpfile.Close(); err != nil {
		t.Fatal(err)
	}

	config, err := LoadConfig(tmpfile.Name())
	require.NoError(t, err)

	assert.Equal(t, "!", config.Bot.Prefix)
	assert.Equal(t, "control", config.Bot.ControlGroupID)
	assert.Equal(t, 5, config.Moderation.WarnThreshold)
	assert.Equal(t, "/tmp/bot-state.json", config.Store.Path)
	assert.Equal(t, 8, config.Games.HangmanAttempts)
	assert.Equal(t, 4, config.Games.WordGameRounds)
	// Unset sections still receive defaults
	assert.Equal(t, 60, config.Games.WordGameSeconds.Medium)
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	content := []byte(`
bot:
  prefix: "!"
  broken_yaml: [ unclosed bracket
`)
	tmpfile, err := os.CreateTemp("", "config_invalid_*.yml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	if _, err := tmpfile.Write(content); err != nil {
		tmpfile.Close()
		t.Fatal(err)
	}
	if err := tmpfile.Close(); err != nil {
		t.Fatal(err)
	}

	config, err := LoadConfig(tmpfile.Name())
	assert.Error(t, err)
	assert.Nil(t, config)
}

func TestOwnerList(t *testing.T) {
	config, err := LoadConfig("non_existent_config.yml")
	require.NoError(t, err)
	config.Bot.OwnerIDs = " 111 ,222,, 333"

	t.Setenv("OWNER_IDS", "")
	assert.Equal(t, []string{"111", "222", "333"}, config.OwnerList())

	t.Setenv("OWNER_IDS", "999")
	assert.Equal(t, []string{"999"}, config.OwnerList())
}
