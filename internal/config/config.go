package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultPath = "config/config.yaml"

	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

// Config определяет структуру конфигурации всего приложения целиком
type Config struct {
	HTTPServer `yaml:"http_server"`
	Storage    `yaml:"storage"`
	Postgres   `yaml:"postgres"`
	Kafka      `yaml:"kafka"`
	Logger     `yaml:"logger"`
	GraphQL    `yaml:"graphql"`
	Debug      bool `yaml:"debug"`
}

// HTTPServer содержит конфигурацию для HTTP-сервера
type HTTPServer struct {
	Port    string        `yaml:"port"`
	Timeout time.Duration `yaml:"timeout"`
	// LegacyErrors сворачивает все ошибки (кроме 404) в 400 с текстом запроса
	LegacyErrors bool `yaml:"legacy_errors"`
}

// Storage выбирает реализацию хранилища заказов
type Storage struct {
	Driver string `yaml:"driver"`
}

// Postgres содержит конфигурацию для подключения к базе данных
type Postgres struct {
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	DBName   string `yaml:"db_name"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int32  `yaml:"max_conns"`
}

// Kafka содержит конфигурацию для подключения к кафке
type Kafka struct {
	Enabled bool     `yaml:"enabled"`
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
	GroupID string   `yaml:"group_id"`
}

// Logger содержит конфигурацию для логгера
type Logger struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// GraphQL содержит конфигурацию GraphQL-эндпоинта
type GraphQL struct {
	Path     string `yaml:"path"`
	GraphiQL bool   `yaml:"graphiql"`
}

// Default возвращает конфигурацию, которой достаточно для локального запуска
func Default() Config {
	return Config{
		HTTPServer: HTTPServer{Port: ":9000", Timeout: 10 * time.Second},
		Storage:    Storage{Driver: StorageDriverPostgres},
		Postgres: Postgres{
			User:     "postgres",
			Password: "postgres",
			Host:     "localhost",
			Port:     "5432",
			DBName:   "orders",
			SSLMode:  "disable",
			MaxConns: 10,
		},
		Kafka: Kafka{
			Brokers: []string{"localhost:9092"},
			Topic:   "orders.create",
			GroupID: "order-tracking-api",
		},
		Logger:  Logger{Level: "INFO", Format: "text"},
		GraphQL: GraphQL{Path: "/graphql"},
	}
}

// Load читает YAML-файл поверх значений по умолчанию и применяет переменные окружения
func Load(configPath string) (*Config, error) {
	const op = "config.Load"

	cfg := Default()

	file, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read config file: %w", op, err)
	}

	if err := yaml.Unmarshal(file, &cfg); err != nil {
		return nil, fmt.Errorf("%s: failed to unmarshal config: %w", op, err)
	}

	applyEnv(&cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &cfg, nil
}

// MustLoad загружает конфигурацию из файла по указанному пути
// в случае ошибки программа завершается с фатальной ошибкой
func MustLoad(configPath string) *Config {
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("config file does not exist: %s", configPath)
	}

	cfg, err := Load(configPath)
	if err != nil {
		log.Fatal(err)
	}

	return cfg
}

// Path возвращает путь к конфигу из CONFIG_PATH или путь по умолчанию
func Path() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return DefaultPath
}

// applyEnv накладывает переменные окружения
// DEBUG=TRUE включает отладочные логи и GraphiQL
func applyEnv(cfg *Config) {
	if strings.EqualFold(os.Getenv("DEBUG"), "TRUE") {
		cfg.Debug = true
	}
	if cfg.Debug {
		cfg.Logger.Level = "DEBUG"
		cfg.GraphQL.GraphiQL = true
	}
	if host := os.Getenv("POSTGRES_HOST"); host != "" {
		cfg.Postgres.Host = host
	}
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.Kafka.Brokers = strings.Split(brokers, ",")
	}
}

func (c *Config) validate() error {
	switch c.Storage.Driver {
	case StorageDriverPostgres, StorageDriverMemory:
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.HTTPServer.Port == "" {
		return errors.New("http_server.port is required")
	}
	if !strings.HasPrefix(c.GraphQL.Path, "/") {
		return fmt.Errorf("graphql.path must start with '/', got %q", c.GraphQL.Path)
	}
	if c.Kafka.Enabled && (len(c.Kafka.Brokers) == 0 || c.Kafka.Topic == "") {
		return errors.New("kafka.brokers and kafka.topic are required when kafka is enabled")
	}
	return nil
}
