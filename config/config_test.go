package config

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"STORE_DRIVER", "GEO_LOOKUP_URL_TEMPLATE", "GEO_ALLOWED_COUNTRY", "LOCATION_DENIED_STATUS", "EVENT_PUBLISH_TIMEOUT", "RABBITMQ_USER_EVENTS_QUEUE", "INDEXER_RETRY_DELAY"} {
		t.Setenv(k, "")
	}
	cfg := Load()

	assert.Equal(t, "postgres", cfg.StoreDriver)
	assert.Equal(t, "https://ipapi.co/{ip}/country", cfg.GeoLookupURLTemplate)
	assert.Equal(t, "CH", cfg.GeoAllowedCountry)
	assert.Equal(t, http.StatusForbidden, cfg.LocationDeniedStatus)
	assert.Equal(t, 2*time.Second, cfg.EventPublishTimeout)
	assert.Equal(t, "user-events", cfg.RabbitMQUserEventsQueue)
	assert.Equal(t, 5*time.Second, cfg.IndexerRetryDelay)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", "Memory")
	t.Setenv("GEO_ALLOWED_COUNTRY", "LI")
	t.Setenv("GEO_READ_TIMEOUT", "750ms")
	t.Setenv("LOCATION_DENIED_STATUS", "404")
	t.Setenv("MESSAGE_BUS_ENABLED", "false")
	t.Setenv("CREATE_RATE_LIMIT", "5")
	cfg := Load()

	assert.Equal(t, "memory", cfg.StoreDriver)
	assert.Equal(t, "LI", cfg.GeoAllowedCountry)
	assert.Equal(t, 750*time.Millisecond, cfg.GeoReadTimeout)
	assert.Equal(t, http.StatusNotFound, cfg.LocationDeniedStatus)
	assert.False(t, cfg.MessageBusEnabled)
	assert.Equal(t, 5, cfg.CreateRateLimit)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("LOCATION_DENIED_STATUS", "418")
	t.Setenv("EVENT_PUBLISH_TIMEOUT", "soon")
	t.Setenv("MESSAGE_BUS_ENABLED", "maybe")
	cfg := Load()

	assert.Equal(t, http.StatusForbidden, cfg.LocationDeniedStatus)
	assert.Equal(t, 2*time.Second, cfg.EventPublishTimeout)
	assert.True(t, cfg.MessageBusEnabled)
}

func TestConfigHelpers(t *testing.T) {
	c := &Config{
		DBUser: "u", DBPassword: "p", DBHost: "db", DBPort: "5432", DBName: "users", DBSSLMode: "disable",
		CORSAllowedOrigins: " https://a.ch, ,https://b.ch",
	}
	assert.Equal(t, "postgres://u:p@db:5432/users?sslmode=disable", c.PostgresDSN())
	assert.Equal(t, []string{"https://a.ch", "https://b.ch"}, c.CORSOrigins())
	assert.Empty(t, (&Config{}).ESAddrs())
}
