package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port     string
	MongoURI string
	DBName   string

	SMTPHost  string
	SMTPPort  int
	SMTPUser  string
	SMTPPass  string
	EmailFrom string

	RedisURL      string
	RedisPassword string

	LogFile    string
	Serverless bool
}

// Load reads configuration from the environment. A .env file is consulted
// only when the process is not running on a managed platform, which injects
// its own environment and PORT.
func Load() *Config {
	serverless := os.Getenv("PLATFORM") == "serverless"
	if !serverless {
		if err := godotenv.Load(); err != nil {
			log.Println("No .env file found; using system environment")
		}
	}

	smtpPort := 587
	if v := os.Getenv("SMTP_PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			log.Printf("Invalid SMTP_PORT %q; using %d", v, smtpPort)
		} else {
			smtpPort = p
		}
	}

	cfg := &Config{
		Port:          os.Getenv("PORT"),
		MongoURI:      os.Getenv("MONGODB_URI"),
		DBName:        os.Getenv("DB_NAME"),
		SMTPHost:      os.Getenv("SMTP_HOST"),
		SMTPPort:      smtpPort,
		SMTPUser:      os.Getenv("SMTP_USER"),
		SMTPPass:      os.Getenv("SMTP_PASS"),
		EmailFrom:     os.Getenv("EMAIL_FROM"),
		RedisURL:      os.Getenv("REDIS_URL"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		LogFile:       os.Getenv("LOG_FILE"),
		Serverless:    serverless,
	}

	if cfg.MongoURI == "" {
		cfg.MongoURI = "mongodb://localhost:27017"
	}
	if cfg.DBName == "" {
		cfg.DBName = "carenest"
	}
	if cfg.Port == "" {
		cfg.Port = ":8080"
	} else if cfg.Port[0] != ':' {
		cfg.Port = ":" + cfg.Port
	}
	if cfg.EmailFrom == "" {
		cfg.EmailFrom = cfg.SMTPUser
	}

	return cfg
}

// EmailEnabled reports whether SMTP credentials are complete. When they are
// not, booking confirmations are skipped entirely.
func (c *Config) EmailEnabled() bool {
	return c.SMTPHost != "" && c.SMTPUser != "" && c.SMTPPass != ""
}
