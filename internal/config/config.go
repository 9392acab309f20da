package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const (
	StorageMongo  = "mongo"
	StorageMemory = "memory"
)

type Config struct {
	Port          string
	StorageDriver string
	LogLevel      string

	MongoURI    string
	MongoDBName string

	MySQL MySQL

	RedisAddr     string
	RedisPassword string
	CartCacheTTL  time.Duration

	RabbitMQURL   string
	OrderExchange string

	ProductServiceURL string
	ProductTimeout    time.Duration
}

type MySQL struct {
	User     string
	Password string
	Host     string
	Port     string
	Database string
}

// DSN builds the go-sql-driver DSN. clientFoundRows makes conditional
// updates report matched rows rather than changed rows.
func (m MySQL) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local&clientFoundRows=true",
		m.User, m.Password, m.Host, m.Port, m.Database)
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("STORAGE_DRIVER", StorageMongo)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DB_NAME", "storefront")
	v.SetDefault("MYSQL_USER", "root")
	v.SetDefault("MYSQL_PASSWORD", "")
	v.SetDefault("MYSQL_HOST", "localhost")
	v.SetDefault("MYSQL_PORT", "3306")
	v.SetDefault("MYSQL_DATABASE", "storefront")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("CART_CACHE_TTL", 15*time.Minute)
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("ORDER_EXCHANGE", "order.exchange")
	v.SetDefault("PRODUCT_SERVICE_URL", "http://localhost:8081")
	v.SetDefault("PRODUCT_TIMEOUT", 2*time.Second)

	cfg := &Config{
		Port:          v.GetString("PORT"),
		StorageDriver: v.GetString("STORAGE_DRIVER"),
		LogLevel:      v.GetString("LOG_LEVEL"),
		MongoURI:      v.GetString("MONGO_URI"),
		MongoDBName:   v.GetString("MONGO_DB_NAME"),
		MySQL: MySQL{
			User:     v.GetString("MYSQL_USER"),
			Password: v.GetString("MYSQL_PASSWORD"),
			Host:     v.GetString("MYSQL_HOST"),
			Port:     v.GetString("MYSQL_PORT"),
			Database: v.GetString("MYSQL_DATABASE"),
		},
		RedisAddr:         v.GetString("REDIS_ADDR"),
		RedisPassword:     v.GetString("REDIS_PASSWORD"),
		CartCacheTTL:      v.GetDuration("CART_CACHE_TTL"),
		RabbitMQURL:       v.GetString("RABBITMQ_URL"),
		OrderExchange:     v.GetString("ORDER_EXCHANGE"),
		ProductServiceURL: v.GetString("PRODUCT_SERVICE_URL"),
		ProductTimeout:    v.GetDuration("PRODUCT_TIMEOUT"),
	}

	if cfg.StorageDriver != StorageMongo && cfg.StorageDriver != StorageMemory {
		return nil, errors.Errorf("unsupported STORAGE_DRIVER %q", cfg.StorageDriver)
	}
	return cfg, nil
}
