package models

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// WeatherRequest is the body of a weather check, bound from JSON or form input.
type WeatherRequest struct {
	UserIP    *string    `json:"user_ip" form:"user_ip" maxLength:"45"`
	Latitude  Coordinate `json:"latitude" form:"latitude" swaggertype:"number"`
	Longitude Coordinate `json:"longitude" form:"longitude" swaggertype:"number"`
}

// Coordinates is a resolved latitude/longitude pair.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// ForecastPayload is the forecast document exactly as the provider returned it.
type ForecastPayload json.RawMessage

// Coordinate is an optional number that remembers whether it was supplied and
// whether it parsed. Numeric strings are accepted; null and "" count as absent.
type Coordinate struct {
	value   float64
	present bool
	valid   bool
}

func NewCoordinate(v float64) Coordinate {
	return Coordinate{value: v, present: true, valid: true}
}

func (c Coordinate) Present() bool { return c.present }

func (c Coordinate) Valid() bool { return c.valid }

// Value returns the number and true only when it was supplied and parsed.
func (c Coordinate) Value() (float64, bool) {
	return c.value, c.present && c.valid
}

func (c *Coordinate) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*c = Coordinate{}
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			*c = Coordinate{present: true}
			return nil
		}
		return c.UnmarshalParam(s)
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		*c = Coordinate{present: true}
		return nil
	}
	c.parse(n.String())
	return nil
}

// UnmarshalParam implements gin's binding.BindUnmarshaler for form input.
func (c *Coordinate) UnmarshalParam(param string) error {
	param = strings.TrimSpace(param)
	if param == "" {
		*c = Coordinate{}
		return nil
	}
	c.parse(param)
	return nil
}

func (c *Coordinate) parse(s string) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		*c = Coordinate{present: true}
		return
	}
	*c = Coordinate{value: v, present: true, valid: true}
}
