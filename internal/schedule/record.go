// Package schedule provides shipping-schedule row types and the helpers that
// turn loosely shaped spreadsheet or feed rows into them.
package schedule

import (
	"encoding/json"
	"strconv"
	"strings"
	"unicode"
)

// FlexInt64 handles capacity fields that can be either a number or a string
// such as "4,500 TEU".
type FlexInt64 int64

func (f *FlexInt64) UnmarshalJSON(data []byte) error {
	// Try as number first
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*f = FlexInt64(n)
		return nil
	}

	// Try as string
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = FlexInt64(ParseCapacity(s))
		return nil
	}

	*f = 0
	return nil // Silently ignore unparseable capacities
}

// ParseCapacity reads the leading integer of a capacity string, ignoring
// thousands separators and trailing units. Unparseable text yields 0.
func ParseCapacity(s string) int64 {
	var digits strings.Builder
	for _, r := range strings.TrimSpace(s) {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
			continue
		}
		if r == ',' && digits.Len() > 0 {
			continue
		}
		break
	}
	i, err := strconv.ParseInt(digits.String(), 10, 64)
	if err != nil {
		return 0
	}
	return i
}

// SailingRecord is one schedule row. Port is raw text, resolved later.
type SailingRecord struct {
	VesselVoyage string    `json:"vessel_voyage,omitempty"` // Combined "VESSEL VOYAGE" or "VESSEL/VOYAGE".
	Vessel       string    `json:"vessel"`
	Voyage       string    `json:"voyage,omitempty"`
	ShipType     string    `json:"ship_type,omitempty"`
	Carrier      string    `json:"carrier"`
	SailingDate  string    `json:"sailing_date"`
	Port         string    `json:"port"`
	Capacity     FlexInt64 `json:"capacity,omitempty"`
}

// VesselAndVoyage returns the vessel name and voyage number, preferring the
// explicit fields and falling back to splitting VesselVoyage.
func (r SailingRecord) VesselAndVoyage() (vessel, voyage string) {
	vessel = strings.TrimSpace(r.Vessel)
	voyage = strings.TrimSpace(r.Voyage)
	if vessel != "" {
		return vessel, voyage
	}
	v, voy := SplitVesselVoyage(r.VesselVoyage)
	if voyage == "" {
		voyage = voy
	}
	return v, voyage
}

// SplitVesselVoyage splits a combined field on whitespace or '/'. The first
// token is the vessel name and the second, if present, the voyage number.
func SplitVesselVoyage(s string) (vessel, voyage string) {
	tokens := strings.FieldsFunc(s, func(r rune) bool {
		return r == '/' || unicode.IsSpace(r)
	})
	if len(tokens) > 0 {
		vessel = tokens[0]
	}
	if len(tokens) > 1 {
		voyage = tokens[1]
	}
	return vessel, voyage
}
