package matcher

import (
	"errors"
	"fmt"

	"github.com/dsih-artpark/epipipeline-v2/internal/regions"
)

// ErrInvalidThreshold is returned for thresholds outside 0-100.
var ErrInvalidThreshold = errors.New("invalid match threshold")

// Thresholds are the minimum TokenSortRatio scores accepted per level. Fine
// levels have large candidate pools and need near-exact matches.
type Thresholds struct {
	District    int `yaml:"district" json:"district"`
	Subdistrict int `yaml:"subdistrict" json:"subdistrict"`
	ULB         int `yaml:"ulb" json:"ulb"`
	Village     int `yaml:"village" json:"village"`
	Ward        int `yaml:"ward" json:"ward"`
}

// DefaultThresholds returns the production cut-offs.
func DefaultThresholds() Thresholds {
	return Thresholds{
		District:    65,
		Subdistrict: 65,
		ULB:         65,
		Village:     95,
		Ward:        95,
	}
}

// Validate reports every threshold outside 0-100.
func (t Thresholds) Validate() error {
	var errs []error
	for _, f := range []struct {
		level regions.Level
		value int
	}{
		{regions.LevelDistrict, t.District},
		{regions.LevelSubdistrict, t.Subdistrict},
		{regions.LevelULB, t.ULB},
		{regions.LevelVillage, t.Village},
		{regions.LevelWard, t.Ward},
	} {
		if f.value < 0 || f.value > 100 {
			errs = append(errs, fmt.Errorf("%w: %s=%d", ErrInvalidThreshold, f.level, f.value))
		}
	}
	return errors.Join(errs...)
}

// For returns the threshold of a level. Levels without their own cut-off
// require an exact match.
func (t Thresholds) For(level regions.Level) int {
	switch level {
	case regions.LevelDistrict:
		return t.District
	case regions.LevelSubdistrict:
		return t.Subdistrict
	case regions.LevelULB:
		return t.ULB
	case regions.LevelVillage:
		return t.Village
	case regions.LevelWard:
		return t.Ward
	}
	return 100
}
