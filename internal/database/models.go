package database

// Artifact is a tracked product or application owned by a business unit.
// Nil string pointers are NULL in the store.
type Artifact struct {
	ID               int64   `db:"ID" json:"id"`
	BusinessUnit     string  `db:"BusinessUnit" json:"business_unit"`
	AlteraProduct    *string `db:"AlteraProduct" json:"altera_product"`
	Rapid7App        *string `db:"Rapid7App" json:"rapid7_app"`
	CheckmarxProduct *string `db:"CheckmarxProduct" json:"checkmarx_product"`
	MendProduct      *string `db:"MendProduct" json:"mend_product"`
	MendProject      *string `db:"MendProject" json:"mend_project"`
	Owner            *string `db:"Owner" json:"owner"`
	SCAScans         int     `db:"SCAScans" json:"sca_scans"`
	SASTScans        int     `db:"SASTScans" json:"sast_scans"`
	DASTScans        int     `db:"DASTScans" json:"dast_scans"`
	RecentSCA        *string `db:"RecentSCA" json:"recent_sca"`
	RecentSCAOK      int     `db:"RecentSCAOK" json:"recent_sca_ok"`
	RecentSAST       *string `db:"RecentSAST" json:"recent_sast"`
	RecentSASTOK     int     `db:"RecentSASTOK" json:"recent_sast_ok"`
	RecentDAST       *string `db:"RecentDAST" json:"recent_dast"`
	RecentDASTOK     int     `db:"RecentDASTOK" json:"recent_dast_ok"`
	RecentLOC        int     `db:"RecentLOC" json:"recent_loc"`
	Deleted          int     `db:"Deleted" json:"deleted"`
}

// Scan is one recorded security scan result against an artifact.
type Scan struct {
	ID              int64  `db:"ID" json:"id"`
	ArtifactID      int64  `db:"ArtifactID" json:"artifact_id"`
	ScanTool        string `db:"ScanTool" json:"scan_tool"`
	ScanType        string `db:"ScanType" json:"scan_type"`
	ScanDateTime    string `db:"ScanDateTime" json:"scan_datetime"`
	ScanRepeatCount int    `db:"ScanRepeatCount" json:"scan_repeat_count"`
	Critical        int    `db:"Critical" json:"critical"`
	High            int    `db:"High" json:"high"`
	Medium          int    `db:"Medium" json:"medium"`
	CriticalNP      int    `db:"CriticalNP" json:"critical_np"`
	HighNP          int    `db:"HighNP" json:"high_np"`
	MediumNP        int    `db:"MediumNP" json:"medium_np"`
}

// ScanRow is a scan joined with the identifying columns of its artifact.
type ScanRow struct {
	Scan
	BusinessUnit     string  `db:"BusinessUnit" json:"business_unit"`
	Rapid7App        *string `db:"Rapid7App" json:"rapid7_app"`
	CheckmarxProduct *string `db:"CheckmarxProduct" json:"checkmarx_product"`
	MendProduct      *string `db:"MendProduct" json:"mend_product"`
	MendProject      *string `db:"MendProject" json:"mend_project"`
}

// ArtifactOption is an entry of the artifact picker on the scan form.
type ArtifactOption struct {
	ID               int64   `db:"ID"`
	BusinessUnit     string  `db:"BusinessUnit"`
	Rapid7App        *string `db:"Rapid7App"`
	CheckmarxProduct *string `db:"CheckmarxProduct"`
	MendProduct      *string `db:"MendProduct"`
	MendProject      *string `db:"MendProject"`
}

// Label names the option by business unit and the first product name set.
func (o ArtifactOption) Label() string {
	for _, p := range []*string{o.Rapid7App, o.CheckmarxProduct, o.MendProduct, o.MendProject} {
		if p != nil {
			return o.BusinessUnit + " - " + *p
		}
	}
	return o.BusinessUnit
}

type Stats struct {
	Artifacts     int `db:"artifacts" json:"artifacts"`
	BusinessUnits int `db:"business_units" json:"business_units"`
	Scans         int `db:"scans" json:"scans"`
}
