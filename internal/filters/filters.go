// Package filters holds the typed listing filters for artifacts and scans and
// the rules for deriving the active set from a request.
package filters

import (
	"net/url"
	"strings"
)

// ArtifactFilters narrows the artifact listing. Field order is the order in
// which predicates are appended to the query.
type ArtifactFilters struct {
	BusinessUnit     string `json:"business_unit"`
	AlteraProduct    string `json:"altera_product"`
	Rapid7App        string `json:"rapid7_app"`
	CheckmarxProduct string `json:"checkmarx_product"`
	MendProduct      string `json:"mend_product"`
	MendProject      string `json:"mend_project"`
}

// ScanFilters narrows the scan listing.
type ScanFilters struct {
	BusinessUnit   string `json:"business_unit"`
	ScanTool       string `json:"scan_tool"`
	ScanType       string `json:"scan_type"`
	MostRecentOnly bool   `json:"most_recent_only"`
}

// ParseArtifacts reads the recognized artifact filter keys. Unknown keys are ignored.
func ParseArtifacts(q url.Values) ArtifactFilters {
	return ArtifactFilters{
		BusinessUnit:     trimmed(q, "business_unit"),
		AlteraProduct:    trimmed(q, "altera_product"),
		Rapid7App:        trimmed(q, "rapid7_app"),
		CheckmarxProduct: trimmed(q, "checkmarx_product"),
		MendProduct:      trimmed(q, "mend_product"),
		MendProject:      trimmed(q, "mend_project"),
	}
}

// ParseScans reads the recognized scan filter keys. Unknown keys are ignored.
func ParseScans(q url.Values) ScanFilters {
	return ScanFilters{
		BusinessUnit:   trimmed(q, "business_unit"),
		ScanTool:       trimmed(q, "scan_tool"),
		ScanType:       trimmed(q, "scan_type"),
		MostRecentOnly: q.Get("most_recent_only") == "1",
	}
}

// IsZero reports whether no artifact filter is active.
func (f ArtifactFilters) IsZero() bool {
	return f == ArtifactFilters{}
}

// IsZero reports whether no scan filter is active.
func (f ScanFilters) IsZero() bool {
	return f == ScanFilters{}
}

// Query renders the filters back into URL query form, omitting empty values.
func (f ArtifactFilters) Query() url.Values {
	q := url.Values{}
	set(q, "business_unit", f.BusinessUnit)
	set(q, "altera_product", f.AlteraProduct)
	set(q, "rapid7_app", f.Rapid7App)
	set(q, "checkmarx_product", f.CheckmarxProduct)
	set(q, "mend_product", f.MendProduct)
	set(q, "mend_project", f.MendProject)
	return q
}

// Query renders the filters back into URL query form, omitting empty values.
func (f ScanFilters) Query() url.Values {
	q := url.Values{}
	set(q, "business_unit", f.BusinessUnit)
	set(q, "scan_tool", f.ScanTool)
	set(q, "scan_type", f.ScanType)
	if f.MostRecentOnly {
		q.Set("most_recent_only", "1")
	}
	return q
}

func trimmed(q url.Values, key string) string {
	return strings.TrimSpace(q.Get(key))
}

func set(q url.Values, key, value string) {
	if value != "" {
		q.Set(key, value)
	}
}
