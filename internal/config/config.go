package config

import (
	"net"

	"github.com/kelseyhightower/envconfig"
)

type Server struct {
	Host        string `envconfig:"SERVER_HOST" default:"0.0.0.0"`
	Port        string `envconfig:"SERVER_PORT" default:"8000"`
	ReadTimeout int    `envconfig:"SERVER_TIMEOUT" default:"10"`
	Mode        string `envconfig:"GIN_MODE" default:"release"`
}

// Geolocation configures the IP -> coordinates provider (ipstack).
type Geolocation struct {
	APIKey string `envconfig:"IP_TRACK_API_KEY" required:"true"`
	URL    string `envconfig:"IP_TRACK_API_URL" default:"http://api.ipstack.com"`
}

// Forecast configures the MET Norway locationforecast provider.
type Forecast struct {
	URL       string `envconfig:"WEATHER_API_URL" default:"https://api.met.no/weatherapi/locationforecast/2.0/compact"`
	UserAgent string `envconfig:"WEATHER_USER_AGENT" default:"drizzly-bear/1.0 github.com/drizzly-bear/weather-check"`
}

type Upstream struct {
	Timeout int `envconfig:"UPSTREAM_TIMEOUT" default:"10"`
}

type Config struct {
	ServiceName string `envconfig:"SERVICE_NAME" default:"weather_check"`

	Server      Server
	Geolocation Geolocation
	Forecast    Forecast
	Upstream    Upstream

	LogsPath     string `envconfig:"LOGS_PATH" default:"./log/weather-check.log"`
	HTTPLogsPath string `envconfig:"HTTP_LOGS_PATH" default:"./log/weather-check-http.log"`
}

func NewConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c Config) ServerAddress() string {
	return net.JoinHostPort(c.Server.Host, c.Server.Port)
}
