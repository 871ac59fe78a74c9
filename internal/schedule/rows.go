package schedule

import (
	"strconv"
	"strings"
	"time"
)

// Header names accepted for each field, English and Chinese spreadsheet
// spellings. Dotted names address nested objects.
var (
	vesselVoyageKeys = []string{"vessel_voyage", "vesselVoyage", "船名航次", "船名/航次"}
	vesselKeys       = []string{"vessel", "vessel_name", "船名"}
	voyageKeys       = []string{"voyage", "voyage_no", "航次"}
	shipTypeKeys     = []string{"ship_type", "shipType", "type", "船型"}
	carrierKeys      = []string{"carrier", "carrier_name", "船公司", "承运人"}
	dateKeys         = []string{"sailing_date", "sailingDate", "etd", "date", "开航日期", "开船日期", "ETD"}
	portKeys         = []string{"port", "pol", "pod", "港口", "目的港", "起运港"}
	capacityKeys     = []string{"capacity", "teu", "舱位", "运力"}
)

// FromMap builds a record from a loosely shaped row, as produced by JSON
// decoding or a spreadsheet reader. Numbers are accepted where strings are
// expected and the sailing date is normalised.
func FromMap(row map[string]any) SailingRecord {
	rec := SailingRecord{
		VesselVoyage: strings.TrimSpace(firstString(row, vesselVoyageKeys...)),
		Vessel:       strings.TrimSpace(firstString(row, vesselKeys...)),
		Voyage:       strings.TrimSpace(firstString(row, voyageKeys...)),
		ShipType:     strings.TrimSpace(firstString(row, shipTypeKeys...)),
		Carrier:      strings.TrimSpace(firstString(row, carrierKeys...)),
		SailingDate:  NormaliseDate(firstString(row, dateKeys...)),
		Port:         strings.TrimSpace(firstString(row, portKeys...)),
		Capacity:     FlexInt64(firstInt64(row, capacityKeys...)),
	}
	if rec.Vessel == "" && rec.VesselVoyage != "" {
		rec.Vessel, rec.Voyage = rec.VesselAndVoyage()
	}
	return rec
}

// dateLayouts are the sailing-date spellings seen in carrier spreadsheets.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"2006.01.02",
	"2006-1-2",
	"2006/1/2",
	"20060102",
	"2006年1月2日",
	"01/02/2006",
	"02-Jan-2006",
	"02 Jan 2006",
	"Jan 2, 2006",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// NormaliseDate rewrites a date in any known layout as YYYY-MM-DD. Text that
// matches no layout is returned trimmed so it can still key a record.
func NormaliseDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return s
}

func firstString(root map[string]any, paths ...string) string {
	for _, p := range paths {
		if v, ok := deepGet(root, p); ok {
			switch t := v.(type) {
			case string:
				if strings.TrimSpace(t) != "" {
					return t
				}
			case float64:
				// Voyage numbers often arrive as numbers; keep them integral.
				if t == float64(int64(t)) {
					return strconv.FormatInt(int64(t), 10)
				}
				return strconv.FormatFloat(t, 'f', -1, 64)
			case int:
				return strconv.Itoa(t)
			case int64:
				return strconv.FormatInt(t, 10)
			}
		}
	}
	return ""
}

func firstInt64(root map[string]any, paths ...string) int64 {
	for _, p := range paths {
		if v, ok := deepGet(root, p); ok {
			switch t := v.(type) {
			case float64:
				return int64(t)
			case int:
				return int64(t)
			case int64:
				return t
			case string:
				if i := ParseCapacity(t); i != 0 {
					return i
				}
			}
		}
	}
	return 0
}

// deepGet walks a map[string]any using a dotted path: "a.b.c".
// A key that itself contains a dot is tried whole first.
func deepGet(root map[string]any, dotted string) (any, bool) {
	if v, ok := root[dotted]; ok {
		return v, true
	}
	parts := strings.Split(dotted, ".")
	var cur any = root
	for _, part := range parts {
		switch node := cur.(type) {
		case map[string]any:
			v, ok := node[part]
			if !ok {
				return nil, false
			}
			cur = v
		default:
			return nil, false
		}
	}
	return cur, true
}
