package config

import (
	"fmt"
	"os"
	"time"

	"github.com/tiendc/go-deepcopy"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Fleet     FleetConfig     `yaml:"fleet"     json:"fleet"`
	Database  DatabaseConfig  `yaml:"database"  json:"database"`
	Redis     RedisConfig     `yaml:"redis"     json:"redis"`
	Web       WebConfig       `yaml:"web"       json:"web"`
	Messaging MessagingConfig `yaml:"messaging" json:"messaging"`
}

// FleetConfig is read once at startup; the fleet is never resized at runtime.
type FleetConfig struct {
	Lifts           int `yaml:"lifts"             json:"lifts"`
	Floors          int `yaml:"floors"            json:"floors"`
	SecondsPerFloor int `yaml:"seconds_per_floor" json:"seconds_per_floor"`
	// TravelUnit scales simulated time; one of SecondsPerFloor lasts this long.
	TravelUnit time.Duration `yaml:"travel_unit" json:"travel_unit"`
	// Seed drives tonnage and passenger simulation. 0 seeds from the clock.
	Seed int64 `yaml:"seed" json:"seed"`
}

type DatabaseConfig struct {
	Driver   string         `yaml:"driver"   json:"driver"`
	SQLite   SQLiteConfig   `yaml:"sqlite"   json:"sqlite"`
	Postgres PostgresConfig `yaml:"postgres" json:"postgres"`
}

type SQLiteConfig struct {
	Path string `yaml:"path" json:"path"`
}

type PostgresConfig struct {
	Host     string `yaml:"host"     json:"host"`
	Port     int    `yaml:"port"     json:"port"`
	Database string `yaml:"database" json:"database"`
	User     string `yaml:"user"     json:"user"`
	Password string `yaml:"password" json:"password"`
	SSLMode  string `yaml:"sslmode"  json:"sslmode"`
}

type RedisConfig struct {
	Address  string `yaml:"address"  json:"address"`
	Password string `yaml:"password" json:"password"`
	DB       int    `yaml:"db"       json:"db"`
}

type WebConfig struct {
	Host          string `yaml:"host"           json:"host"`
	Port          int    `yaml:"port"           json:"port"`
	SessionSecret string `yaml:"session_secret" json:"session_secret"`
}

type MessagingConfig struct {
	Backend             string        `yaml:"backend"               json:"backend"` // "kafka", "mqtt" or "" to disable
	Kafka               KafkaConfig   `yaml:"kafka"                 json:"kafka"`
	MQTT                MQTTConfig    `yaml:"mqtt"                  json:"mqtt"`
	RequestsTopic       string        `yaml:"requests_topic"        json:"requests_topic"`
	EventsTopic         string        `yaml:"events_topic"          json:"events_topic"`
	OutboxDrainInterval time.Duration `yaml:"outbox_drain_interval" json:"outbox_drain_interval"`
	StationID           string        `yaml:"station_id"            json:"station_id"`
}

type KafkaConfig struct {
	Brokers []string `yaml:"brokers"  json:"brokers"`
	GroupID string   `yaml:"group_id" json:"group_id"`
}

type MQTTConfig struct {
	Broker   string `yaml:"broker"    json:"broker"`
	Port     int    `yaml:"port"      json:"port"`
	ClientID string `yaml:"client_id" json:"client_id"`
}

func Defaults() *Config {
	return &Config{
		Fleet: FleetConfig{
			Lifts:           3,
			Floors:          10,
			SecondsPerFloor: 2,
			TravelUnit:      time.Second,
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			SQLite: SQLiteConfig{Path: "liftcore.db"},
			Postgres: PostgresConfig{
				Host:     "localhost",
				Port:     5432,
				Database: "liftcore",
				User:     "liftcore",
				Password: "",
				SSLMode:  "disable",
			},
		},
		Redis: RedisConfig{
			Address: "localhost:6379",
		},
		Web: WebConfig{
			Host:          "0.0.0.0",
			Port:          8080,
			SessionSecret: "change-me-in-production",
		},
		Messaging: MessagingConfig{
			Backend: "kafka",
			Kafka: KafkaConfig{
				Brokers: []string{"localhost:9092"},
				GroupID: "liftcore",
			},
			MQTT: MQTTConfig{
				Broker:   "localhost",
				Port:     1883,
				ClientID: "liftcore",
			},
			RequestsTopic:       "liftcore.requests",
			EventsTopic:         "liftcore.events",
			OutboxDrainInterval: 2 * time.Second,
			StationID:           "liftcore",
		},
	}
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Defaults()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, cfg.Validate()
		}
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	if c.Fleet.Lifts < 1 {
		return fmt.Errorf("fleet.lifts must be at least 1, got %d", c.Fleet.Lifts)
	}
	if c.Fleet.Floors < 1 {
		return fmt.Errorf("fleet.floors must be at least 1, got %d", c.Fleet.Floors)
	}
	if c.Fleet.SecondsPerFloor < 0 {
		return fmt.Errorf("fleet.seconds_per_floor must not be negative, got %d", c.Fleet.SecondsPerFloor)
	}
	switch c.Messaging.Backend {
	case "", "kafka", "mqtt":
	default:
		return fmt.Errorf("unknown messaging backend %q", c.Messaging.Backend)
	}
	return nil
}

func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Redacted returns a deep copy safe to show to operators.
func (c *Config) Redacted() (*Config, error) {
	out := new(Config)
	if err := deepcopy.Copy(out, c); err != nil {
		return nil, fmt.Errorf("copy config: %w", err)
	}
	const mask = "********"
	if out.Database.Postgres.Password != "" {
		out.Database.Postgres.Password = mask
	}
	if out.Redis.Password != "" {
		out.Redis.Password = mask
	}
	if out.Web.SessionSecret != "" {
		out.Web.SessionSecret = mask
	}
	return out, nil
}
