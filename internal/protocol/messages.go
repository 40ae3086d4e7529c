package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/smukkama/agrisense/internal/reading"
	"github.com/smukkama/agrisense/internal/zone"
)

// Kind identifies which reading a message carries
type Kind string

const (
	KindSoil    Kind = "soil"
	KindWater   Kind = "water"
	KindWeather Kind = "weather"
)

// WeatherKey is the partition key of weather station messages
const WeatherKey = "weather"

var ErrInvalidMessage = errors.New("invalid reading message")

// ReadingMessage is the Kafka envelope of one generated sensor reading.
// Exactly one of Soil, Water and Weather is set, matching Kind.
type ReadingMessage struct {
	RunID       uuid.UUID               `json:"run_id"`
	Kind        Kind                    `json:"kind"`
	Seq         int                     `json:"seq"`
	PublishedAt time.Time               `json:"published_at"`
	Soil        *reading.SoilReading    `json:"soil,omitempty"`
	Water       *reading.WaterReading   `json:"water,omitempty"`
	Weather     *reading.WeatherReading `json:"weather,omitempty"`
}

// NewSoilMessage wraps a soil reading
func NewSoilMessage(runID uuid.UUID, seq int, r reading.SoilReading) *ReadingMessage {
	return &ReadingMessage{RunID: runID, Kind: KindSoil, Seq: seq, PublishedAt: time.Now().UTC(), Soil: &r}
}

// NewWaterMessage wraps a water reading
func NewWaterMessage(runID uuid.UUID, seq int, r reading.WaterReading) *ReadingMessage {
	return &ReadingMessage{RunID: runID, Kind: KindWater, Seq: seq, PublishedAt: time.Now().UTC(), Water: &r}
}

// NewWeatherMessage wraps a weather reading
func NewWeatherMessage(runID uuid.UUID, seq int, r reading.WeatherReading) *ReadingMessage {
	return &ReadingMessage{RunID: runID, Kind: KindWeather, Seq: seq, PublishedAt: time.Now().UTC(), Weather: &r}
}

// Key is the partition key: the zone for soil, the source for water
func (m *ReadingMessage) Key() string {
	switch m.Kind {
	case KindSoil:
		return string(m.Soil.ZoneID)
	case KindWater:
		return string(m.Water.SourceType)
	default:
		return WeatherKey
	}
}

// Timestamp returns the reading time of the carried reading
func (m *ReadingMessage) Timestamp() time.Time {
	switch m.Kind {
	case KindSoil:
		return m.Soil.Timestamp
	case KindWater:
		return m.Water.Timestamp
	default:
		return m.Weather.Timestamp
	}
}

// Validate checks the envelope against its payload
func (m *ReadingMessage) Validate() error {
	if m.RunID == uuid.Nil {
		return fmt.Errorf("%w: missing run id", ErrInvalidMessage)
	}

	set := 0
	for _, ok := range []bool{m.Soil != nil, m.Water != nil, m.Weather != nil} {
		if ok {
			set++
		}
	}
	if set != 1 {
		return fmt.Errorf("%w: %d payloads set", ErrInvalidMessage, set)
	}

	switch m.Kind {
	case KindSoil:
		if m.Soil == nil {
			return fmt.Errorf("%w: soil message without soil reading", ErrInvalidMessage)
		}
		if _, err := zone.ParseID(string(m.Soil.ZoneID)); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidMessage, err)
		}
	case KindWater:
		if m.Water == nil {
			return fmt.Errorf("%w: water message without water reading", ErrInvalidMessage)
		}
		if _, err := reading.ParseSourceType(string(m.Water.SourceType)); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidMessage, err)
		}
	case KindWeather:
		if m.Weather == nil {
			return fmt.Errorf("%w: weather message without weather reading", ErrInvalidMessage)
		}
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidMessage, m.Kind)
	}
	return nil
}

// EncodeReadingMessage encodes a ReadingMessage to JSON
func EncodeReadingMessage(msg *ReadingMessage) ([]byte, error) {
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return json.Marshal(msg)
}

// DecodeReadingMessage decodes and validates a ReadingMessage
func DecodeReadingMessage(data []byte) (*ReadingMessage, error) {
	var msg ReadingMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return &msg, nil
}
