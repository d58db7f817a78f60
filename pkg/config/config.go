package config

import (
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Bot struct {
		Prefix         string `yaml:"prefix"`
		OwnerIDs       string `yaml:"owner_ids"`
		ControlGroupID string `yaml:"control_group_id"`
		AdminRoleID    string `yaml:"admin_role_id"`
	} `yaml:"bot"`
	Moderation struct {
		WarnThreshold int `yaml:"warn_threshold"`
	} `yaml:"moderation"`
	Store struct {
		Path string `yaml:"path"`
	} `yaml:"store"`
	Games struct {
		HangmanAttempts int `yaml:"hangman_attempts"`
		WordGameRounds  int `yaml:"wordgame_rounds"`
		WordGameSeconds struct {
			Easy   int `yaml:"easy"`
			Medium int `yaml:"medium"`
			Hard   int `yaml:"hard"`
		} `yaml:"wordgame_round_seconds"`
	} `yaml:"games"`
	Words struct {
		RandomURL     string `yaml:"random_url"`
		DictionaryURL string `yaml:"dictionary_url"`
	} `yaml:"words"`
}

func LoadConfig(path string) (*Config, error) {
	config := &Config{}

	_, err := os.Stat(path)
	if os.IsNotExist(err) {
		applyDefaults(config)
		return config, nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	err = yaml.Unmarshal(file, config)
	if err != nil {
		return nil, err
	}

	applyDefaults(config)
	return config, nil
}

func applyDefaults(c *Config) {
	if c.Bot.Prefix == "" {
		c.Bot.Prefix = "+"
	}
	if c.Moderation.WarnThreshold == 0 {
		c.Moderation.WarnThreshold = 3
	}
	if c.Store.Path == "" {
		c.Store.Path = "storage.json"
	}
	if c.Games.HangmanAttempts == 0 {
		c.Games.HangmanAttempts = 6
	}
	if c.Games.WordGameRounds == 0 {
		c.Games.WordGameRounds = 3
	}
	if c.Games.WordGameSeconds.Easy == 0 {
		c.Games.WordGameSeconds.Easy = 90
	}
	if c.Games.WordGameSeconds.Medium == 0 {
		c.Games.WordGameSeconds.Medium = 60
	}
	if c.Games.WordGameSeconds.Hard == 0 {
		c.Games.WordGameSeconds.Hard = 30
	}
	if c.Words.RandomURL == "" {
		c.Words.RandomURL = "https://random-word-api.vercel.app/api"
	}
	if c.Words.DictionaryURL == "" {
		c.Words.DictionaryURL = "https://api.dictionaryapi.dev/api/v2/entries/en"
	}
}

// OwnerList returns the configured owner ids. The OWNER_IDS environment
// variable takes precedence over the yaml value so deployments can rotate
// owners without editing the config file.
func (c *Config) OwnerList() []string {
	raw := os.Getenv("OWNER_IDS")
	if raw == "" {
		raw = c.Bot.OwnerIDs
	}
	var owners []string
	for _, id := range strings.Split(raw, ",") {
		id = strings.TrimSpace(id)
		if id != "" {
			owners = append(owners, id)
		}
	}
	return owners
}
