package main

import (
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"caprisun/pkg/bot"
	"caprisun/pkg/cache"
	"caprisun/pkg/config"
	"caprisun/pkg/store"
	"caprisun/pkg/words"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	if os.Getenv("DEBUG") != "" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	// Load config.yml
	cfg, err := config.LoadConfig("config.yml")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Load .env for secrets
	if err := godotenv.Load(); err != nil {
		log.Info().Msg("no .env file found, relying on environment variables")
	}

	token := os.Getenv("DISCORD_TOKEN")
	if token == "" {
		log.Fatal().Msg("missing required environment variable: DISCORD_TOKEN")
	}

	// Store backend: file by default, SurrealDB when configured.
	var backend store.Backend
	if surrealHost := os.Getenv("SURREAL_DB_HOST"); surrealHost != "" {
		surrealUser := os.Getenv("SURREAL_DB_USER")
		surrealPass := os.Getenv("SURREAL_DB_PASS")
		surrealNS := os.Getenv("SURREAL_DB_NAMESPACE")
		surrealDB := os.Getenv("SURREAL_DB_DATABASE")
		if surrealNS == "" {
			surrealNS = "caprisun"
		}
		if surrealDB == "" {
			surrealDB = "bot"
		}
		if !strings.HasPrefix(surrealHost, "ws://") && !strings.HasPrefix(surrealHost, "wss://") {
			surrealHost = "wss://" + surrealHost + "/rpc"
		}

		log.Info().Str("host", surrealHost).Str("ns", surrealNS).Str("db", surrealDB).Msg("connecting to SurrealDB")
		surreal, err := store.NewSurrealBackend(surrealHost, surrealUser, surrealPass, surrealNS, surrealDB)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to SurrealDB")
		}
		defer surreal.Close()
		backend = surreal
	} else {
		backend = store.NewFileBackend(cfg.Store.Path)
	}

	repo, err := store.NewRepository(backend)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open store")
	}

	// Lookup cache: Redis when configured, in-memory otherwise.
	var lookupCache cache.Cache
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		redisCache, err := cache.NewRedisCache(redisURL, "caprisun")
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to Redis")
		}
		defer redisCache.Close()
		lookupCache = redisCache
		log.Info().Msg("using Redis lookup cache")
	} else {
		lookupCache = cache.NewMemoryCache()
	}

	// Create Discord session
	dg, err := discordgo.New("Bot " + token)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create Discord session")
	}
	dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsDirectMessages |
		discordgo.IntentMessageContent

	transport := &bot.DiscordTransport{Session: dg, AdminRoleID: cfg.Bot.AdminRoleID}
	directory := bot.NewDirectory(transport, lookupCache)
	resolver := bot.NewRoleResolver(directory, cfg.OwnerList())
	moderator := bot.NewModerator(repo, transport, directory, resolver, cfg.Moderation.WarnThreshold)

	wordClient := words.NewClient(cfg.Words.RandomURL, cfg.Words.DictionaryURL)
	roundLen := map[string]time.Duration{
		"easy":   time.Duration(cfg.Games.WordGameSeconds.Easy) * time.Second,
		"medium": time.Duration(cfg.Games.WordGameSeconds.Medium) * time.Second,
		"hard":   time.Duration(cfg.Games.WordGameSeconds.Hard) * time.Second,
	}

	router := bot.NewRouter(
		bot.NewSystemCommands(repo, directory, cfg.OwnerList()),
		bot.NewAdminCommands(repo, transport, directory, moderator),
		bot.NewMediaCommands(transport),
		bot.NewHangmanCommands(repo, directory, wordClient, cfg.Games.HangmanAttempts),
		bot.NewTicTacToeCommands(repo, directory),
		bot.NewWordGameCommands(repo, directory, wordClient, cfg.Games.WordGameRounds, roundLen),
	)

	b := bot.New(cfg, repo, transport, directory, resolver, moderator, router)
	dg.AddHandler(b.MessageCreate)
	dg.AddHandler(b.GuildMemberAdd)

	if err := dg.Open(); err != nil {
		log.Fatal().Err(err).Msg("failed to open Discord connection")
	}
	b.SetBotID(dg.State.User.ID)

	log.Info().Msg("caprisun is now running, press CTRL-C to exit")

	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	dg.Close()
}
