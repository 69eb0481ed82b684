package config

import (
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	LogLevel  string `env:"LOG_LEVEL"`
	HTTP      HTTP
	Redis     Redis
	API       API
	Cache     Cache
	Valuation Valuation
}

type HTTP struct {
	Port         int           `env:"HTTP_PORT"`
	ReadTimeout  time.Duration `env:"HTTP_READ_TIMEOUT"`
	WriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT"`
}

type Redis struct {
	Host     string `env:"REDIS_HOST"`
	Port     int    `env:"REDIS_PORT"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB"`
}

type API struct {
	Debug        bool          `env:"API_DEBUG"`
	Timeout      time.Duration `env:"API_TIMEOUT"`
	StockApi     StockApi
	CryptoApi    CryptoApi
	ForexApi     ForexApi
	PortfolioApi PortfolioApi
}

type StockApi struct {
	Url string `env:"STOCK_API_URL"`
}

type CryptoApi struct {
	Url string `env:"CRYPTO_API_URL"`
}

type ForexApi struct {
	Url string `env:"FOREX_API_URL"`
}

type PortfolioApi struct {
	Url string `env:"PORTFOLIO_API_URL"`
}

type Cache struct {
	SnapshotExpiration time.Duration `env:"CACHE_SNAPSHOT_EXPIRATION"`
}

type Valuation struct {
	ChartSteps int `env:"VALUATION_CHART_STEPS"`
}

func MustLoad() *Config {
	_ = godotenv.Load(".env")

	cfg := &Config{}

	opts := env.Options{RequiredIfNoDef: true}

	if err := env.ParseWithOptions(cfg, opts); err != nil {
		log.Fatalf("parse config error: %s", err)
	}

	return cfg
}
