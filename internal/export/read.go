package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"time"

	"github.com/smukkama/agrisense/internal/reading"
	"github.com/smukkama/agrisense/internal/zone"
)

// ErrHeaderMismatch is returned when a CSV header is not the expected one
var ErrHeaderMismatch = errors.New("unexpected CSV header")

// fieldReader parses the cells of one record and keeps the first error
type fieldReader struct {
	rec []string
	err error
}

func (f *fieldReader) float(i int) float64 {
	if f.err != nil {
		return 0
	}
	v, err := strconv.ParseFloat(f.rec[i], 64)
	if err != nil {
		f.err = err
	}
	return v
}

func (f *fieldReader) optional(i int) *float64 {
	if f.rec[i] == "" {
		return nil
	}
	v := f.float(i)
	return &v
}

func (f *fieldReader) timestamp(i int) time.Time {
	if f.err != nil {
		return time.Time{}
	}
	t, err := time.Parse(reading.TimestampLayout, f.rec[i])
	if err != nil {
		f.err = err
	}
	return t
}

func (f *fieldReader) integer(i int) int {
	if f.err != nil {
		return 0
	}
	v, err := strconv.Atoi(f.rec[i])
	if err != nil {
		f.err = err
	}
	return v
}

func (f *fieldReader) check(err error) {
	if f.err == nil {
		f.err = err
	}
}

// readTable checks the header and parses every following record
func readTable[T any](r io.Reader, header []string, parse func(*fieldReader) T) ([]T, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	got, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	if !slices.Equal(got, header) {
		return nil, fmt.Errorf("%w: %v", ErrHeaderMismatch, got)
	}
	cr.FieldsPerRecord = len(header)

	var out []T
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read line %d: %w", line, err)
		}
		f := &fieldReader{rec: rec}
		row := parse(f)
		if f.err != nil {
			return nil, fmt.Errorf("failed to parse line %d: %w", line, f.err)
		}
		out = append(out, row)
	}
}

// ReadSoil parses a soil table written with reading.SoilColumns
func ReadSoil(r io.Reader) ([]reading.SoilReading, error) {
	return readTable(r, reading.SoilColumns, func(f *fieldReader) reading.SoilReading {
		id, err := zone.ParseID(f.rec[1])
		f.check(err)
		st, err := zone.ParseSoilType(f.rec[2])
		f.check(err)
		return reading.SoilReading{
			Timestamp:       f.timestamp(0),
			ZoneID:          id,
			SoilType:        st,
			Nitrogen:        f.optional(3),
			Phosphorus:      f.optional(4),
			Potassium:       f.float(5),
			PH:              f.float(6),
			OrganicMatter:   f.float(7),
			Moisture:        f.float(8),
			SoilTemperature: f.float(9),
			EC:              f.optional(10),
		}
	})
}

// ReadWater parses a water table written with reading.WaterColumns
func ReadWater(r io.Reader) ([]reading.WaterReading, error) {
	return readTable(r, reading.WaterColumns, func(f *fieldReader) reading.WaterReading {
		src, err := reading.ParseSourceType(f.rec[1])
		f.check(err)
		grade, err := reading.ParseGrade(f.rec[11])
		f.check(err)
		return reading.WaterReading{
			Timestamp:        f.timestamp(0),
			SourceType:       src,
			PH:               f.float(2),
			TDS:              f.float(3),
			Turbidity:        f.optional(4),
			DissolvedOxygen:  f.optional(5),
			Hardness:         f.float(6),
			Chloride:         f.float(7),
			Sulfate:          f.float(8),
			Nitrate:          f.float(9),
			WaterTemperature: f.float(10),
			QualityGrade:     grade,
		}
	})
}

// ReadWeather parses a weather table written with reading.WeatherColumns
func ReadWeather(r io.Reader) ([]reading.WeatherReading, error) {
	return readTable(r, reading.WeatherColumns, func(f *fieldReader) reading.WeatherReading {
		return reading.WeatherReading{
			Timestamp:      f.timestamp(0),
			Temperature:    f.float(1),
			Humidity:       f.float(2),
			Rainfall:       f.float(3),
			WindSpeed:      f.float(4),
			SolarRadiation: f.float(5),
			Pressure:       f.float(6),
			UVIndex:        f.integer(7),
		}
	})
}

// ReadFile opens path and parses it with read
func ReadFile[T any](path string, read func(io.Reader) ([]T, error)) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	rows, err := read(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return rows, nil
}
