package zone

import (
	"errors"
	"fmt"
)

// ID identifies one of the fixed spatial zones
type ID string

const (
	Zone1 ID = "Zone_1"
	Zone2 ID = "Zone_2"
	Zone3 ID = "Zone_3"
	Zone4 ID = "Zone_4"
	Zone5 ID = "Zone_5"
	Zone6 ID = "Zone_6"
	Zone7 ID = "Zone_7"
	Zone8 ID = "Zone_8"
)

// SoilType is the soil texture class of a zone
type SoilType string

const (
	Loamy     SoilType = "Loamy"
	Clay      SoilType = "Clay"
	Sandy     SoilType = "Sandy"
	Silt      SoilType = "Silt"
	ClayLoam  SoilType = "Clay Loam"
	SandyLoam SoilType = "Sandy Loam"
	Peaty     SoilType = "Peaty"
)

var (
	ErrUnknownZone     = errors.New("unknown zone")
	ErrUnknownSoilType = errors.New("unknown soil type")
)

// Profile is the baseline soil chemistry of a zone
type Profile struct {
	ID           ID
	SoilType     SoilType
	BasePH       float64
	BaseN        float64
	BaseP        float64
	BaseK        float64
	BaseMoisture float64
}

// profiles is ordered by zone number; index i holds Zone_{i+1}.
var profiles = [...]Profile{
	{ID: Zone1, SoilType: Loamy, BasePH: 6.5, BaseN: 80, BaseP: 45, BaseK: 60, BaseMoisture: 35},
	{ID: Zone2, SoilType: Clay, BasePH: 7.2, BaseN: 60, BaseP: 35, BaseK: 50, BaseMoisture: 45},
	{ID: Zone3, SoilType: Sandy, BasePH: 5.8, BaseN: 40, BaseP: 20, BaseK: 35, BaseMoisture: 15},
	{ID: Zone4, SoilType: Silt, BasePH: 6.8, BaseN: 70, BaseP: 40, BaseK: 55, BaseMoisture: 40},
	{ID: Zone5, SoilType: Loamy, BasePH: 6.2, BaseN: 90, BaseP: 50, BaseK: 70, BaseMoisture: 32},
	{ID: Zone6, SoilType: ClayLoam, BasePH: 7.0, BaseN: 55, BaseP: 30, BaseK: 45, BaseMoisture: 42},
	{ID: Zone7, SoilType: SandyLoam, BasePH: 6.0, BaseN: 50, BaseP: 25, BaseK: 40, BaseMoisture: 22},
	{ID: Zone8, SoilType: Peaty, BasePH: 5.5, BaseN: 100, BaseP: 55, BaseK: 75, BaseMoisture: 55},
}

var soilTypes = [...]SoilType{Loamy, Clay, Sandy, Silt, ClayLoam, SandyLoam, Peaty}

// Count is the number of zones in the registry
const Count = len(profiles)

// All returns a copy of every zone profile in zone order
func All() []Profile {
	out := make([]Profile, len(profiles))
	copy(out, profiles[:])
	return out
}

// IDs returns every zone ID in zone order
func IDs() []ID {
	ids := make([]ID, len(profiles))
	for i, p := range profiles {
		ids[i] = p.ID
	}
	return ids
}

// At returns the profile at position i (0-based)
func At(i int) Profile {
	return profiles[i]
}

// Lookup returns the profile for a zone ID
func Lookup(id ID) (Profile, bool) {
	for _, p := range profiles {
		if p.ID == id {
			return p, true
		}
	}
	return Profile{}, false
}

// ParseID validates a zone key
func ParseID(s string) (ID, error) {
	if _, ok := Lookup(ID(s)); !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownZone, s)
	}
	return ID(s), nil
}

// SoilTypes returns every known soil type
func SoilTypes() []SoilType {
	out := make([]SoilType, len(soilTypes))
	copy(out, soilTypes[:])
	return out
}

// ParseSoilType validates a soil type name
func ParseSoilType(s string) (SoilType, error) {
	for _, st := range soilTypes {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSoilType, s)
}
