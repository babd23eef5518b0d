package core

import (
	"fmt"
	"log"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Conf is the application configuration, resolved once at startup.
var Conf *Config

type (
	Config struct {
		Env      string
		Debug    bool
		TestMode bool
		AppName  string
		Build    string

		SecretKey       string
		FrontendBaseURL string
		DefaultFromName string
		DefaultFromAddr string
		ProductionInbox string // the print-production team's mailbox
		SendgridApiKey  string
		RollbarToken    string

		Server      ServerConfig
		Database    DatabaseConfig
		Redis       RedisConfig
		Upstream    UpstreamConfig
		ObjectStore ObjectStoreConfig
	}

	ServerConfig struct {
		Host               string
		Port               int
		JWTExpirationDelta time.Duration
	}

	DatabaseConfig struct {
		Engine        string
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		Host          string
		Port          int
		DisableTLS    bool
	}

	RedisConfig struct {
		URL      string
		CacheTTL time.Duration
	}

	// UpstreamConfig points at the managed print-production backend.
	// When BaseURL is empty the console runs self-hosted on its own database.
	UpstreamConfig struct {
		BaseURL string
		Timeout time.Duration
		IDToken string
	}

	ObjectStoreConfig struct {
		Endpoint  string
		AccessKey string
		SecretKey string
		Bucket    string
		UseSSL    bool
		URLExpiry time.Duration
	}
)

func (c ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func (c DatabaseConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func (c Config) DefaultFromEmail() mail.Address {
	return mail.Address{Name: c.DefaultFromName, Address: c.DefaultFromAddr}
}

func (c Config) ProductionTeamEmail() mail.Address {
	return mail.Address{Name: c.AppName + " Production", Address: c.ProductionInbox}
}

func (c Config) SelfHosted() bool {
	return c.Upstream.BaseURL == ""
}

func init() {
	v := viper.New()
	v.SetTypeByDefaultValue(true)

	// defaults
	v.SetDefault("debug", true)
	v.SetDefault("appName", "Kitabu")
	v.SetDefault("build", "dev")
	v.SetDefault("secretKey", "w3n)enb$+57=dz&uoxh2(h!x)#*c2(#yg4h^$cegm2emy")
	v.SetDefault("frontendBaseURL", "http://localhost:3000")
	v.SetDefault("defaultFromName", "Kitabu")
	v.SetDefault("defaultFromAddr", "noreply@localhost")
	v.SetDefault("productionInbox", "production@localhost")

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.jwtExpirationDelta", 7*24*time.Hour)

	v.SetDefault("database.engine", "postgres")
	v.SetDefault("database.name", "kitabu")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.disableTLS", true)

	v.SetDefault("redis.url", "")
	v.SetDefault("redis.cacheTTL", 12*time.Hour)

	v.SetDefault("upstream.baseURL", "")
	v.SetDefault("upstream.timeout", 10*time.Second)

	v.SetDefault("objectStore.endpoint", "")
	v.SetDefault("objectStore.bucket", "kitabu-covers")
	v.SetDefault("objectStore.urlExpiry", time.Hour)

	env := os.Getenv("ENV") // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	}
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join("config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	Conf = &Config{
		Env:             env,
		Debug:           v.GetBool("debug"),
		TestMode:        v.GetBool("testMode"),
		AppName:         v.GetString("appName"),
		Build:           v.GetString("build"),
		SecretKey:       v.GetString("secretKey"),
		FrontendBaseURL: v.GetString("frontendBaseURL"),
		DefaultFromName: v.GetString("defaultFromName"),
		DefaultFromAddr: v.GetString("defaultFromAddr"),
		ProductionInbox: v.GetString("productionInbox"),
		SendgridApiKey:  v.GetString("sendgridApiKey"),
		RollbarToken:    v.GetString("rollbarToken"),
		Server: ServerConfig{
			Host:               v.GetString("server.host"),
			Port:               v.GetInt("server.port"),
			JWTExpirationDelta: v.GetDuration("server.jwtExpirationDelta"),
		},
		Database: DatabaseConfig{
			Engine:        v.GetString("database.engine"),
			Name:          v.GetString("database.name"),
			User:          v.GetString("database.user"),
			Password:      v.GetString("database.password"),
			AdminUser:     v.GetString("database.adminUser"),
			AdminPassword: v.GetString("database.adminPassword"),
			Host:          v.GetString("database.host"),
			Port:          v.GetInt("database.port"),
			DisableTLS:    v.GetBool("database.disableTLS"),
		},
		Redis: RedisConfig{
			URL:      v.GetString("redis.url"),
			CacheTTL: v.GetDuration("redis.cacheTTL"),
		},
		Upstream: UpstreamConfig{
			BaseURL: v.GetString("upstream.baseURL"),
			Timeout: v.GetDuration("upstream.timeout"),
			IDToken: v.GetString("upstream.idToken"),
		},
		ObjectStore: ObjectStoreConfig{
			Endpoint:  v.GetString("objectStore.endpoint"),
			AccessKey: v.GetString("objectStore.accessKey"),
			SecretKey: v.GetString("objectStore.secretKey"),
			Bucket:    v.GetString("objectStore.bucket"),
			UseSSL:    v.GetBool("objectStore.useSSL"),
			URLExpiry: v.GetDuration("objectStore.urlExpiry"),
		},
	}
}
