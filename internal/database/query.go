package database

import (
	"strings"

	"github.com/jamesruggles/scanledger/internal/filters"
)

// Query is SQL text with its positional arguments in binding order.
type Query struct {
	Text string
	Args []any
}

const artifactColumns = `ID, BusinessUnit, AlteraProduct, Rapid7App, CheckmarxProduct, MendProduct, MendProject, Owner,
	COALESCE(SCAScans, 0) AS SCAScans, COALESCE(SASTScans, 0) AS SASTScans, COALESCE(DASTScans, 0) AS DASTScans,
	RecentSCA, COALESCE(RecentSCAOK, 0) AS RecentSCAOK,
	RecentSAST, COALESCE(RecentSASTOK, 0) AS RecentSASTOK,
	RecentDAST, COALESCE(RecentDASTOK, 0) AS RecentDASTOK,
	COALESCE(RecentLOC, 0) AS RecentLOC, COALESCE(Deleted, 0) AS Deleted`

const scanColumns = `ID, ArtifactID, ScanTool, ScanType, ScanDateTime,
	COALESCE(ScanRepeatCount, 1) AS ScanRepeatCount,
	COALESCE(Critical, 0) AS Critical, COALESCE(High, 0) AS High, COALESCE(Medium, 0) AS Medium,
	COALESCE(CriticalNP, 0) AS CriticalNP, COALESCE(HighNP, 0) AS HighNP, COALESCE(MediumNP, 0) AS MediumNP`

const scanRowColumns = `s.ID AS ID, s.ArtifactID AS ArtifactID, s.ScanTool AS ScanTool, s.ScanType AS ScanType,
	s.ScanDateTime AS ScanDateTime, COALESCE(s.ScanRepeatCount, 1) AS ScanRepeatCount,
	COALESCE(s.Critical, 0) AS Critical, COALESCE(s.High, 0) AS High, COALESCE(s.Medium, 0) AS Medium,
	COALESCE(s.CriticalNP, 0) AS CriticalNP, COALESCE(s.HighNP, 0) AS HighNP, COALESCE(s.MediumNP, 0) AS MediumNP,
	a.BusinessUnit AS BusinessUnit, a.Rapid7App AS Rapid7App, a.CheckmarxProduct AS CheckmarxProduct,
	a.MendProduct AS MendProduct, a.MendProject AS MendProject`

// predicates appends AND clauses to a base query. Values are only ever bound.
type predicates struct {
	b    strings.Builder
	args []any
}

func (p *predicates) equals(column, value string) {
	if value == "" {
		return
	}
	p.b.WriteString(" AND " + column + " = ?")
	p.args = append(p.args, value)
}

// contains is a case-sensitive substring match; instr treats % and _ literally.
func (p *predicates) contains(column, value string) {
	if value == "" {
		return
	}
	p.b.WriteString(" AND instr(" + column + ", ?) > 0")
	p.args = append(p.args, value)
}

// ArtifactQuery lists non-deleted artifacts matching f.
func ArtifactQuery(f filters.ArtifactFilters) Query {
	var p predicates
	p.b.WriteString(`SELECT ` + artifactColumns + ` FROM Artifacts WHERE Deleted = 0`)
	p.equals("BusinessUnit", f.BusinessUnit)
	p.contains("AlteraProduct", f.AlteraProduct)
	p.contains("Rapid7App", f.Rapid7App)
	p.contains("CheckmarxProduct", f.CheckmarxProduct)
	p.contains("MendProduct", f.MendProduct)
	p.contains("MendProject", f.MendProject)
	p.b.WriteString(` ORDER BY BusinessUnit, ID`)
	return Query{Text: p.b.String(), Args: p.args}
}

// ScanQuery lists scans joined with their artifact, newest first. The
// most-recent restriction is applied afterwards by LatestPerTriple.
func ScanQuery(f filters.ScanFilters) Query {
	var p predicates
	p.b.WriteString(`SELECT ` + scanRowColumns + ` FROM Scans s JOIN Artifacts a ON s.ArtifactID = a.ID WHERE 1=1`)
	p.equals("a.BusinessUnit", f.BusinessUnit)
	p.contains("s.ScanTool", f.ScanTool)
	p.contains("s.ScanType", f.ScanType)
	p.b.WriteString(` ORDER BY s.ScanDateTime DESC, s.ID DESC`)
	return Query{Text: p.b.String(), Args: p.args}
}
