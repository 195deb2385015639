package config

import (
	"os"
	"strconv"
)

type Config struct {
	DiscordClientID     string
	DiscordClientSecret string
	DiscordBotToken     string
	DiscordRedirectURI  string
	PostgresURI         string
	RedisURI            string
	SecretKey           string
	StateCookieName     string
	VerifyStudioID      int64
}

func LoadConfig() *Config {
	return &Config{
		DiscordClientID:     getEnv("DISCORD_CLIENT_ID", ""),
		DiscordClientSecret: getEnv("DISCORD_CLIENT_SECRET", ""),
		DiscordBotToken:     getEnv("DISCORD_BOT_TOKEN", ""),
		DiscordRedirectURI:  getEnv("DISCORD_REDIRECT_URI", "http://localhost:3000/discord-oauth-callback"),
		PostgresURI:         getEnv("POSTGRES_URI", ""),
		RedisURI:            getEnv("REDIS_URI", ""),
		SecretKey:           getEnv("SECRET_KEY", ""),
		StateCookieName:     getEnv("STATE_COOKIE_NAME", "oauth_state"),
		VerifyStudioID:      getEnvInt64("VERIFY_STUDIO_ID", 29137750),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}
