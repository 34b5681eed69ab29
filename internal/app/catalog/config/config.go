package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config содержит все настройки Catalog Service
type Config struct {
	Server ServerConfig
	Mongo  MongoConfig
	Redis  RedisConfig
	Kafka  KafkaConfig
	Cron   CronConfig
	JWT    JWTConfig
	Log    LogConfig
}

// ServerConfig - настройки HTTP сервера
type ServerConfig struct {
	Host           string
	Port           string
	AllowedOrigins []string // Origins для CORS (браузерный фронтенд)
}

// MongoConfig - настройки подключения к MongoDB
// Категории и товары хранятся в двух независимых коллекциях,
// ссылочная целостность между ними на уровне схемы не обеспечивается
type MongoConfig struct {
	URI      string
	Database string
}

// RedisConfig - настройки Redis для кеширования списка категорий
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// KafkaConfig - настройки Kafka для событий о товарах
type KafkaConfig struct {
	Brokers []string
	Topic   string // Топик событий PRODUCT_CREATED, PRODUCT_UPDATED, PRODUCT_DELETED
}

// CronConfig - расписания фоновых задач
type CronConfig struct {
	CategoriesRefresh string // Периодический прогрев кеша списка категорий
}

// JWTConfig - настройки проверки JWT токенов
type JWTConfig struct {
	Secret string // Должен совпадать с секретом auth-сервиса
}

// LogConfig - настройки логирования
type LogConfig struct {
	Level string
}

// Load загружает конфигурацию из переменных окружения
func Load() (*Config, error) {
	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB value: %w", err)
	}

	return &Config{
		Server: ServerConfig{
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			Port:           getEnv("SERVER_PORT", "8082"),
			AllowedOrigins: strings.Split(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000"), ","),
		},
		Mongo: MongoConfig{
			URI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
			Database: getEnv("MONGO_DATABASE", "catalog"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Kafka: KafkaConfig{
			Brokers: strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
			Topic:   getEnv("KAFKA_TOPIC", "product.events"),
		},
		Cron: CronConfig{
			CategoriesRefresh: getEnv("CRON_CATEGORIES_REFRESH", "@every 15m"),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", "your-secret-key-change-this-in-production"),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}, nil
}

// Address возвращает адрес сервера в формате host:port
func (c *ServerConfig) Address() string {
	return c.Host + ":" + c.Port
}

// Address возвращает адрес Redis в формате host:port
func (c *RedisConfig) Address() string {
	return c.Host + ":" + c.Port
}

// getEnv получает значение переменной окружения или значение по умолчанию
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
