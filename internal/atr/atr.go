// Package atr parses automated traffic recorder (ATR) file names.
//
// Names look like
//
//	7362_NA_NA_147_TRAIN-ST_DORCHESTER_24-HOURS_XXX_03-19-2014.XLSX
//
// where fields 3 and 4 carry the street address, field 6 the count
// duration and field 7 the count type.
package atr

import (
	"path/filepath"
	"strings"
)

// DefaultCity is appended to addresses by Address when no city is given.
const DefaultCity = "Boston, MA"

const minFields = 9

// IsReadable reports whether name is a 24 hour XXX count (speed, volume and
// classification) stored as XLSX.
func IsReadable(name string) bool {
	parts := strings.Split(filepath.Base(name), "_")
	if len(parts) < minFields {
		return false
	}
	ext := strings.SplitN(parts[8], ".", 2)
	if len(ext) != 2 {
		return false
	}
	return parts[7] == "XXX" && parts[6] == "24-HOURS" && ext[1] == "XLSX"
}

// Address builds a geocodable address from name, e.g.
// "147 TRAIN ST Boston, MA". ok is false for names too short to hold one.
func Address(name, city string) (string, bool) {
	parts := strings.Split(filepath.Base(name), "_")
	if len(parts) < 5 {
		return "", false
	}
	if city == "" {
		city = DefaultCity
	}
	addr := strings.ReplaceAll(strings.Join(parts[3:5], " "), "-", " ")
	return addr + " " + city, true
}
