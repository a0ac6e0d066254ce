package report

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"github.com/jamesruggles/scanledger/internal/database"
	"github.com/jamesruggles/scanledger/internal/filters"
)

func ptr(s string) *string { return &s }

func TestArtifactTitle(t *testing.T) {
	tests := []struct {
		name string
		f    filters.ArtifactFilters
		want string
	}{
		{"no filters", filters.ArtifactFilters{}, "AllBUs"},
		{"business unit", filters.ArtifactFilters{BusinessUnit: "Networking"}, "Networking"},
		{"products", filters.ArtifactFilters{AlteraProduct: "sw", MendProject: "core"}, "AllBUs_Altera=sw_MJ=core"},
		{"every token", filters.ArtifactFilters{
			BusinessUnit: "N", AlteraProduct: "a", Rapid7App: "r", CheckmarxProduct: "c", MendProduct: "m", MendProject: "j",
		}, "N_Altera=a_R7=r_CX=c_MP=m_MJ=j"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ArtifactTitle(tt.f))
		})
	}
}

func TestScanTitle(t *testing.T) {
	assert.Equal(t, "AllBUs", ScanTitle(filters.ScanFilters{}))
	assert.Equal(t, "N_Tool_Mend_Type_SCA_MostRecent", ScanTitle(filters.ScanFilters{
		BusinessUnit: "N", ScanTool: "Mend", ScanType: "SCA", MostRecentOnly: true,
	}))
	assert.Equal(t, "Networking_Tool_Mend_Type_SCA_M", ScanTitle(filters.ScanFilters{
		BusinessUnit: "Networking", ScanTool: "Mend", ScanType: "SCA", MostRecentOnly: true,
	}), "cut to the sheet name limit")
	assert.Equal(t, "AllBUs_MostRecent", ScanTitle(filters.ScanFilters{MostRecentOnly: true}))
}

func TestSheetNameSanitized(t *testing.T) {
	title := ArtifactTitle(filters.ArtifactFilters{BusinessUnit: "R&D: a/b?c*[d]\\e"})
	assert.Equal(t, "R&D_ a_b_c__d__e", title)

	long := ScanTitle(filters.ScanFilters{BusinessUnit: strings.Repeat("x", 40), ScanTool: "Mend"})
	assert.Equal(t, MaxSheetName, utf8.RuneCountInString(long))
	assert.Equal(t, strings.Repeat("x", 31), long)

	assert.Equal(t, "quoted", ArtifactTitle(filters.ArtifactFilters{BusinessUnit: "'quoted'"}))
	assert.Equal(t, "AllBUs", ArtifactTitle(filters.ArtifactFilters{BusinessUnit: "''"}))
	assert.Equal(t, "AllBUs_Tool_x", ScanTitle(filters.ScanFilters{BusinessUnit: "'''", ScanTool: "x"}))
}

func TestArtifactSheetRows(t *testing.T) {
	s := ArtifactSheet([]database.Artifact{{
		ID: 4, BusinessUnit: "Networking", Rapid7App: ptr("portal"), SCAScans: 2, RecentLOC: 900,
	}}, filters.ArtifactFilters{BusinessUnit: "Networking"})

	assert.Equal(t, "Artifacts", s.Kind)
	assert.Equal(t, "Networking", s.Title)
	assert.Len(t, s.Rows, 1)
	row := s.Rows[0]
	assert.Len(t, row, len(ArtifactHeaders))
	assert.Equal(t, int64(4), row[0])
	assert.Nil(t, row[2], "AlteraProduct")
	assert.Equal(t, "portal", row[3])
	assert.Equal(t, 2, row[8])
	assert.Equal(t, 900, row[17])
}

func TestScanSheetColumnOrder(t *testing.T) {
	s := ScanSheet([]database.ScanRow{{
		Scan: database.Scan{
			ID: 7, ArtifactID: 4, ScanTool: "Mend", ScanType: "SCA", ScanDateTime: "2024-03-01 10:00",
			ScanRepeatCount: 1, Critical: 3, MediumNP: 5,
		},
		BusinessUnit: "Networking",
		MendProject:  ptr("core"),
	}}, filters.ScanFilters{})

	assert.Equal(t, []string{
		"ID", "BusinessUnit", "Rapid7App", "CheckmarxProduct", "MendProduct", "MendProject",
		"ScanTool", "ScanType", "ScanDateTime", "ScanRepeatCount",
		"Critical", "High", "Medium", "CriticalNP", "HighNP", "MediumNP",
	}, s.Headers)
	row := s.Rows[0]
	assert.Equal(t, []any{
		int64(7), "Networking", nil, nil, nil, "core",
		"Mend", "SCA", "2024-03-01 10:00", 1,
		3, 0, 0, 0, 0, 5,
	}, row)
}
