package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	appconfig "github.com/electrokart/electrokart_api/internal/config"
)

func TestDSN_EscapesCredentials(t *testing.T) {
	dsn := DSN(&appconfig.DatabaseConfig{
		Host:     "db",
		Port:     "5432",
		User:     "shop user",
		Password: "p@ss/word",
		Name:     "electrokart",
		SSLMode:  "disable",
	})

	assert.Equal(t, "postgres://shop+user:p%40ss%2Fword@db:5432/electrokart?sslmode=disable", dsn)
}

func TestBackoff(t *testing.T) {
	assert.Equal(t, 500*time.Millisecond, backoff(1))
	assert.Equal(t, time.Second, backoff(2))
	assert.Equal(t, 4*time.Second, backoff(4))
	assert.Equal(t, 5*time.Second, backoff(5))
}

func TestConnect_NilConfig(t *testing.T) {
	_, err := Connect(nil)
	assert.EqualError(t, err, "nil database config")
}
