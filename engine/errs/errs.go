// Package errs defines the recoverable error kinds returned by engine
// operations. None of these terminate a player's session; callers match
// them with errors.Is and surface the message to the player.
package errs

import "errors"

var (
	ErrLevelTooLow              = errors.New("level too low")
	ErrRequirementsNotMet       = errors.New("requirements not met")
	ErrAlreadyEngaged           = errors.New("already engaged")
	ErrNotEngaged               = errors.New("not engaged")
	ErrNoPathFound              = errors.New("no path found")
	ErrInsufficientEnergy       = errors.New("insufficient run energy")
	ErrInsufficientPrayerPoints = errors.New("insufficient prayer points")
	ErrConflictingEffectActive  = errors.New("conflicting effect active")
	ErrOnCooldown               = errors.New("on cooldown")
	ErrUnknownCatalogEntry      = errors.New("unknown catalog entry")
)

// Wire codes for each error kind, used by the transport layer.
const (
	CodeLevelTooLow              = "E_LEVEL_TOO_LOW"
	CodeRequirementsNotMet       = "E_REQUIREMENTS_NOT_MET"
	CodeAlreadyEngaged           = "E_ALREADY_ENGAGED"
	CodeNotEngaged               = "E_NOT_ENGAGED"
	CodeNoPathFound              = "E_NO_PATH_FOUND"
	CodeInsufficientEnergy       = "E_INSUFFICIENT_ENERGY"
	CodeInsufficientPrayerPoints = "E_INSUFFICIENT_PRAYER_POINTS"
	CodeConflictingEffectActive  = "E_CONFLICTING_EFFECT"
	CodeOnCooldown               = "E_ON_COOLDOWN"
	CodeUnknownCatalogEntry      = "E_UNKNOWN_CATALOG_ENTRY"
	CodeInternal                 = "E_INTERNAL"
)

var codes = []struct {
	err  error
	code string
}{
	{ErrLevelTooLow, CodeLevelTooLow},
	{ErrRequirementsNotMet, CodeRequirementsNotMet},
	{ErrAlreadyEngaged, CodeAlreadyEngaged},
	{ErrNotEngaged, CodeNotEngaged},
	{ErrNoPathFound, CodeNoPathFound},
	{ErrInsufficientEnergy, CodeInsufficientEnergy},
	{ErrInsufficientPrayerPoints, CodeInsufficientPrayerPoints},
	{ErrConflictingEffectActive, CodeConflictingEffectActive},
	{ErrOnCooldown, CodeOnCooldown},
	{ErrUnknownCatalogEntry, CodeUnknownCatalogEntry},
}

// Code maps an engine error to its wire code. Unrecognized errors map to
// CodeInternal; nil maps to "".
func Code(err error) string {
	if err == nil {
		return ""
	}
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return CodeInternal
}
