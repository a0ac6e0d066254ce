// Package records turns submitted forms into store writes.
package records

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/jamesruggles/scanledger/internal/database"
)

// ArtifactForm is the typed artifact form. Optional strings are nil when
// blank; integers fall back to their default when missing or unparsable.
type ArtifactForm struct {
	BusinessUnit     string `form:"business_unit" validate:"required"`
	AlteraProduct    *string
	Rapid7App        *string
	CheckmarxProduct *string
	MendProduct      *string
	MendProject      *string
	Owner            *string
	SCAScans         int
	SASTScans        int
	DASTScans        int
	RecentSCA        *string
	RecentSCAOK      int
	RecentSAST       *string
	RecentSASTOK     int
	RecentDAST       *string
	RecentDASTOK     int
	RecentLOC        int
}

// ScanForm is the typed scan form.
type ScanForm struct {
	ArtifactID      int64  `form:"artifact_id" validate:"required"`
	ScanTool        string `form:"scan_tool" validate:"required"`
	ScanType        string `form:"scan_type" validate:"required"`
	ScanDateTime    string `form:"scan_datetime" validate:"required"`
	ScanRepeatCount int
	Critical        int
	High            int
	Medium          int
	CriticalNP      int
	HighNP          int
	MediumNP        int
}

// NormalizeString trims s and maps the empty result to nil.
func NormalizeString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// intOr parses the field as an integer, falling back to def.
func intOr(v url.Values, key string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(v.Get(key)))
	if err != nil {
		return def
	}
	return n
}

func ParseArtifactForm(v url.Values) (ArtifactForm, error) {
	f := ArtifactForm{
		BusinessUnit:     strings.TrimSpace(v.Get("business_unit")),
		AlteraProduct:    NormalizeString(v.Get("altera_product")),
		Rapid7App:        NormalizeString(v.Get("rapid7_app")),
		CheckmarxProduct: NormalizeString(v.Get("checkmarx_product")),
		MendProduct:      NormalizeString(v.Get("mend_product")),
		MendProject:      NormalizeString(v.Get("mend_project")),
		Owner:            NormalizeString(v.Get("owner")),
		SCAScans:         intOr(v, "sca_scans", 0),
		SASTScans:        intOr(v, "sast_scans", 0),
		DASTScans:        intOr(v, "dast_scans", 0),
		RecentSCA:        NormalizeString(v.Get("recent_sca")),
		RecentSCAOK:      intOr(v, "recent_sca_ok", 0),
		RecentSAST:       NormalizeString(v.Get("recent_sast")),
		RecentSASTOK:     intOr(v, "recent_sast_ok", 0),
		RecentDAST:       NormalizeString(v.Get("recent_dast")),
		RecentDASTOK:     intOr(v, "recent_dast_ok", 0),
		RecentLOC:        intOr(v, "recent_loc", 0),
	}
	if err := validate(f); err != nil {
		return ArtifactForm{}, err
	}
	return f, nil
}

func ParseScanForm(v url.Values) (ScanForm, error) {
	f := ScanForm{
		ScanTool:        strings.TrimSpace(v.Get("scan_tool")),
		ScanType:        strings.TrimSpace(v.Get("scan_type")),
		ScanDateTime:    strings.TrimSpace(v.Get("scan_datetime")),
		ScanRepeatCount: intOr(v, "scan_repeat_count", 1),
		Critical:        intOr(v, "critical", 0),
		High:            intOr(v, "high", 0),
		Medium:          intOr(v, "medium", 0),
		CriticalNP:      intOr(v, "critical_np", 0),
		HighNP:          intOr(v, "high_np", 0),
		MediumNP:        intOr(v, "medium_np", 0),
	}

	// artifact_id has no default: anything but an integer rejects the form.
	if raw := strings.TrimSpace(v.Get("artifact_id")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return ScanForm{}, &InputError{Field: "artifact_id", Reason: "must be an integer, got " + strconv.Quote(raw)}
		}
		f.ArtifactID = id
	}

	if err := validate(f); err != nil {
		return ScanForm{}, err
	}
	return f, nil
}

func (f ArtifactForm) Artifact(id int64) database.Artifact {
	return database.Artifact{
		ID:               id,
		BusinessUnit:     f.BusinessUnit,
		AlteraProduct:    f.AlteraProduct,
		Rapid7App:        f.Rapid7App,
		CheckmarxProduct: f.CheckmarxProduct,
		MendProduct:      f.MendProduct,
		MendProject:      f.MendProject,
		Owner:            f.Owner,
		SCAScans:         f.SCAScans,
		SASTScans:        f.SASTScans,
		DASTScans:        f.DASTScans,
		RecentSCA:        f.RecentSCA,
		RecentSCAOK:      f.RecentSCAOK,
		RecentSAST:       f.RecentSAST,
		RecentSASTOK:     f.RecentSASTOK,
		RecentDAST:       f.RecentDAST,
		RecentDASTOK:     f.RecentDASTOK,
		RecentLOC:        f.RecentLOC,
	}
}

func (f ScanForm) Scan(id int64) database.Scan {
	return database.Scan{
		ID:              id,
		ArtifactID:      f.ArtifactID,
		ScanTool:        f.ScanTool,
		ScanType:        f.ScanType,
		ScanDateTime:    f.ScanDateTime,
		ScanRepeatCount: f.ScanRepeatCount,
		Critical:        f.Critical,
		High:            f.High,
		Medium:          f.Medium,
		CriticalNP:      f.CriticalNP,
		HighNP:          f.HighNP,
		MediumNP:        f.MediumNP,
	}
}
