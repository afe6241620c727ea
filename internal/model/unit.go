package model

import "fmt"

// Unit selects the memory unit used when rendering page counts.
type Unit string

// Supported memory units. The zero value is not valid; use UnitKB as the
// default.
const (
	// UnitKB renders exact kilobyte values (pages * 4).
	UnitKB Unit = "K"

	// UnitMB renders megabytes with two decimals.
	UnitMB Unit = "M"

	// UnitGB renders gigabytes with two decimals.
	UnitGB Unit = "G"
)

// ParseUnit converts a user-supplied unit flag value into a Unit.
// Accepts "K", "M", and "G" (case-sensitive, matching the reference tools).
func ParseUnit(s string) (Unit, error) {
	switch Unit(s) {
	case UnitKB, UnitMB, UnitGB:
		return Unit(s), nil
	default:
		return "", fmt.Errorf("invalid unit %q: must be K, M, or G", s)
	}
}

// Convert converts a page count into the unit's memory value and returns
// it with the unit label. Pages are 4 KiB each.
func (u Unit) Convert(pages int64) (float64, string) {
	kb := float64(pages * PageSizeKB)
	switch u {
	case UnitMB:
		return kb / 1024, "MB"
	case UnitGB:
		return kb / 1024 / 1024, "GB"
	default:
		return kb, "kB"
	}
}

// ColumnHeader returns the memory column header for this unit.
func (u Unit) ColumnHeader() string {
	switch u {
	case UnitMB:
		return "Mbytes"
	case UnitGB:
		return "Gbytes"
	default:
		return "Kbytes"
	}
}
