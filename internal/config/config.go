package config

import "time"

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"

	// DriverPgx - pgx через gorm.io/driver/postgres, DriverPQ - database/sql драйвер lib/pq.
	DriverPgx = "pgx"
	DriverPQ  = "postgres"
)

type Config struct {
	HTTPConfig
	LogConfig
	StorageConfig
	DBConfig
}

type HTTPConfig struct {
	Addr           string        `envconfig:"HTTP_ADDR" default:":5000"`
	RequestTimeout time.Duration `envconfig:"HTTP_REQUEST_TIMEOUT" default:"15s"`
	RateLimit      int           `envconfig:"HTTP_RATE_LIMIT" default:"120"` // запросов в минуту с одного IP
}

type LogConfig struct {
	Level    string `envconfig:"LOG_LEVEL" default:"info"`
	Encoding string `envconfig:"LOG_ENCODING" default:"json"`
}

type StorageConfig struct {
	Storage string `envconfig:"STORAGE" default:"postgres"`
}

// DBConfig обязателен только при STORAGE=postgres, поэтому поля без required.
type DBConfig struct {
	User   string `envconfig:"DBUSER" masked:"true"`
	Pass   string `envconfig:"DBPASS" masked:"true"`
	Host   string `envconfig:"DBHOST" masked:"true"`
	DBName string `envconfig:"DBNAME" masked:"true"`

	Port    string `envconfig:"DBPORT" default:"5432"`
	SSLMode string `envconfig:"DBSSLMODE" default:"disable"`

	Driver          string        `envconfig:"DB_DRIVER" default:"pgx"`
	MaxOpenConns    int           `envconfig:"DB_MAX_OPEN_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"DB_CONN_MAX_LIFETIME" default:"30m"`
	LogLevel        string        `envconfig:"DB_LOG_LEVEL" default:"warn"`
}
