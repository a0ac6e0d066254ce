package report

import (
	"strings"
	"unicode/utf8"

	"github.com/jamesruggles/scanledger/internal/database"
	"github.com/jamesruggles/scanledger/internal/filters"
)

// MaxSheetName is the longest worksheet name Excel accepts.
const MaxSheetName = 31

const allBusinessUnits = "AllBUs"

var ArtifactHeaders = []string{
	"ID", "BusinessUnit", "AlteraProduct", "Rapid7App", "CheckmarxProduct", "MendProduct",
	"MendProject", "Owner", "SCAScans", "SASTScans", "DASTScans", "RecentSCA",
	"RecentSCAOK", "RecentSAST", "RecentSASTOK", "RecentDAST", "RecentDASTOK", "RecentLOC",
}

var ScanHeaders = []string{
	"ID", "BusinessUnit", "Rapid7App", "CheckmarxProduct", "MendProduct", "MendProject",
	"ScanTool", "ScanType", "ScanDateTime", "ScanRepeatCount",
	"Critical", "High", "Medium", "CriticalNP", "HighNP", "MediumNP",
}

// Sheet is one exported table. A nil cell is rendered empty.
type Sheet struct {
	Kind    string
	Title   string
	Headers []string
	Rows    [][]any
}

func ArtifactSheet(rows []database.Artifact, f filters.ArtifactFilters) Sheet {
	s := Sheet{Kind: "Artifacts", Title: ArtifactTitle(f), Headers: ArtifactHeaders}
	for _, a := range rows {
		s.Rows = append(s.Rows, []any{
			a.ID, a.BusinessUnit, opt(a.AlteraProduct), opt(a.Rapid7App), opt(a.CheckmarxProduct),
			opt(a.MendProduct), opt(a.MendProject), opt(a.Owner), a.SCAScans, a.SASTScans, a.DASTScans,
			opt(a.RecentSCA), a.RecentSCAOK, opt(a.RecentSAST), a.RecentSASTOK,
			opt(a.RecentDAST), a.RecentDASTOK, a.RecentLOC,
		})
	}
	return s
}

func ScanSheet(rows []database.ScanRow, f filters.ScanFilters) Sheet {
	s := Sheet{Kind: "Scans", Title: ScanTitle(f), Headers: ScanHeaders}
	for _, r := range rows {
		s.Rows = append(s.Rows, []any{
			r.ID, r.BusinessUnit, opt(r.Rapid7App), opt(r.CheckmarxProduct), opt(r.MendProduct), opt(r.MendProject),
			r.ScanTool, r.ScanType, r.ScanDateTime, r.ScanRepeatCount,
			r.Critical, r.High, r.Medium, r.CriticalNP, r.HighNP, r.MediumNP,
		})
	}
	return s
}

func opt(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

// ArtifactTitle names the worksheet after the active artifact filters.
func ArtifactTitle(f filters.ArtifactFilters) string {
	parts := []string{businessUnit(f.BusinessUnit)}
	parts = token(parts, "Altera=", f.AlteraProduct)
	parts = token(parts, "R7=", f.Rapid7App)
	parts = token(parts, "CX=", f.CheckmarxProduct)
	parts = token(parts, "MP=", f.MendProduct)
	parts = token(parts, "MJ=", f.MendProject)
	return sheetName(parts)
}

// ScanTitle names the worksheet after the active scan filters.
func ScanTitle(f filters.ScanFilters) string {
	parts := []string{businessUnit(f.BusinessUnit)}
	parts = token(parts, "Tool_", f.ScanTool)
	parts = token(parts, "Type_", f.ScanType)
	if f.MostRecentOnly {
		parts = append(parts, "MostRecent")
	}
	return sheetName(parts)
}

func businessUnit(bu string) string {
	bu = strings.Trim(bu, "'")
	if bu == "" {
		return allBusinessUnits
	}
	return bu
}

func token(parts []string, prefix, value string) []string {
	if value == "" {
		return parts
	}
	return append(parts, prefix+value)
}

// Excel rejects these in worksheet names.
var sheetNameReplacer = strings.NewReplacer(
	":", "_", `\`, "_", "/", "_", "?", "_", "*", "_", "[", "_", "]", "_",
)

func sheetName(parts []string) string {
	name := sheetNameReplacer.Replace(strings.Join(parts, "_"))
	if utf8.RuneCountInString(name) > MaxSheetName {
		name = string([]rune(name)[:MaxSheetName])
	}
	name = strings.Trim(name, "'")
	if name == "" {
		return allBusinessUnits
	}
	return name
}
