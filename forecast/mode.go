package forecast

import (
	"strings"

	fcErrors "github.com/ezoic/fuelcast/pkg/errors"
)

// FitMode selects which fuel subset the scaler and projection are fitted on.
type FitMode string

const (
	// ModeShared fits one scaler and projection on Petrol features and
	// reuses them, transform-only, for Diesel.
	ModeShared FitMode = "shared"

	// ModePerFuel fits an independent scaler and projection per fuel type.
	ModePerFuel FitMode = "per-fuel"

	// ModeUnion fits one scaler and projection on Petrol and Diesel together.
	ModeUnion FitMode = "union"
)

// FitModes lists the supported modes, default first.
var FitModes = []FitMode{ModeShared, ModePerFuel, ModeUnion}

// ParseFitMode parses a mode name. The empty string selects ModeShared.
func ParseFitMode(s string) (FitMode, error) {
	switch m := FitMode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return ModeShared, nil
	case ModeShared, ModePerFuel, ModeUnion:
		return m, nil
	default:
		return "", fcErrors.NewValidationError("fit_mode", "must be one of shared, per-fuel, union", s)
	}
}

func (m FitMode) String() string { return string(m) }
