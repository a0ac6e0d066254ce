package database

type scanKey struct {
	artifactID int64
	tool       string
	typ        string
}

// LatestPerTriple keeps, for every (ArtifactID, ScanTool, ScanType), the rows
// whose ScanDateTime equals the greatest ScanDateTime seen for that triple.
// Rows sharing that maximum are all kept. Input order is preserved.
func LatestPerTriple(rows []ScanRow) []ScanRow {
	latest := make(map[scanKey]string, len(rows))
	for _, r := range rows {
		k := scanKey{r.ArtifactID, r.ScanTool, r.ScanType}
		if cur, ok := latest[k]; !ok || r.ScanDateTime > cur {
			latest[k] = r.ScanDateTime
		}
	}

	out := make([]ScanRow, 0, len(latest))
	for _, r := range rows {
		if r.ScanDateTime == latest[scanKey{r.ArtifactID, r.ScanTool, r.ScanType}] {
			out = append(out, r)
		}
	}
	return out
}
