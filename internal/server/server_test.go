package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/jamesruggles/scanledger/internal/config"
	"github.com/jamesruggles/scanledger/internal/database"
	"github.com/jamesruggles/scanledger/internal/records"
	"github.com/jamesruggles/scanledger/internal/session"
)

type testEnv struct {
	t      *testing.T
	srv    *Server
	db     *database.DB
	ts     *httptest.Server
	client *http.Client
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := database.New(filepath.Join(t.TempDir(), "server.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cfg := &config.Config{
		Session: config.SessionConfig{CookieName: "scanledger_session"},
		Reports: config.ReportsConfig{Directory: t.TempDir()},
	}
	srv, err := New(cfg, db, session.NewMemoryStore(time.Hour))
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return &testEnv{t: t, srv: srv, db: db, ts: ts, client: client}
}

func (e *testEnv) get(path string) *http.Response {
	e.t.Helper()
	resp, err := e.client.Get(e.ts.URL + path)
	require.NoError(e.t, err)
	e.t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (e *testEnv) post(path string, form url.Values) *http.Response {
	e.t.Helper()
	resp, err := e.client.PostForm(e.ts.URL+path, form)
	require.NoError(e.t, err)
	e.t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (e *testEnv) body(path string) string {
	e.t.Helper()
	resp := e.get(path)
	require.Equal(e.t, http.StatusOK, resp.StatusCode, path)
	data, err := io.ReadAll(resp.Body)
	require.NoError(e.t, err)
	return string(data)
}

func (e *testEnv) artifact(bu string, mendProject *string) int64 {
	e.t.Helper()
	a := database.Artifact{BusinessUnit: bu, MendProject: mendProject}
	require.NoError(e.t, e.db.CreateArtifact(context.Background(), &a))
	return a.ID
}

func (e *testEnv) scan(artifactID int64, tool, typ, at string) int64 {
	e.t.Helper()
	s := database.Scan{ArtifactID: artifactID, ScanTool: tool, ScanType: typ, ScanDateTime: at, ScanRepeatCount: 1}
	require.NoError(e.t, e.db.CreateScan(context.Background(), &s))
	return s.ID
}

// export downloads an export and returns its sheet name and rows.
func (e *testEnv) export(path string) (*http.Response, string, [][]string) {
	e.t.Helper()
	resp := e.get(path)
	require.Equal(e.t, http.StatusOK, resp.StatusCode)
	data, err := io.ReadAll(resp.Body)
	require.NoError(e.t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(e.t, err)
	defer f.Close()

	name := f.GetSheetName(0)
	rows, err := f.GetRows(name)
	require.NoError(e.t, err)
	return resp, name, rows
}

func firstColumn(rows [][]string) []string {
	var out []string
	for _, r := range rows[1:] {
		out = append(out, r[0])
	}
	return out
}

func itoa(id int64) string { return strconv.FormatInt(id, 10) }

func ptr(s string) *string { return &s }

func TestExportMatchesListing(t *testing.T) {
	e := newTestEnv(t)
	net1 := e.artifact("Networking", ptr("core"))
	net2 := e.artifact("Networking", nil)
	e.artifact("Storage", nil)

	page := e.body("/artifacts?business_unit=Networking")
	assert.Contains(t, page, `value="Networking"`)

	_, name, rows := e.export("/artifacts/export")
	assert.Equal(t, "Networking", name)
	assert.Equal(t, []string{itoa(net1), itoa(net2)}, firstColumn(rows))
}

func TestExportUsesOnlyStoredFilters(t *testing.T) {
	e := newTestEnv(t)
	e.artifact("Networking", nil)
	e.artifact("Storage", nil)

	_, name, rows := e.export("/artifacts/export?business_unit=Storage")
	assert.Equal(t, "AllBUs", name)
	assert.Len(t, rows, 3)
}

func TestScanExportLayout(t *testing.T) {
	e := newTestEnv(t)
	a := e.artifact("Networking", ptr("core"))
	e.scan(a, "Mend", "SCA", "2024-01-01 09:00:00")
	latest := e.scan(a, "Mend", "SCA", "2024-02-01 09:00:00")
	other := e.scan(a, "Checkmarx", "SAST", "2024-01-15 09:00:00")

	e.body("/scans?business_unit=Networking&most_recent_only=1")

	resp := e.get("/scans/export")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "attachment")
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "Scans_Networking_MostRecent_")

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	sheet := "Networking_MostRecent"
	rows, err := f.GetRows(sheet)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"ID", "BusinessUnit", "Rapid7App", "CheckmarxProduct", "MendProduct", "MendProject",
		"ScanTool", "ScanType", "ScanDateTime", "ScanRepeatCount",
		"Critical", "High", "Medium", "CriticalNP", "HighNP", "MediumNP",
	}, rows[0])
	assert.Equal(t, []string{itoa(latest), itoa(other)}, firstColumn(rows))

	panes, err := f.GetPanes(sheet)
	require.NoError(t, err)
	assert.True(t, panes.Freeze)
	assert.Equal(t, 1, panes.YSplit)

	styleID, err := f.GetCellStyle(sheet, "A1")
	require.NoError(t, err)
	style, err := f.GetStyle(styleID)
	require.NoError(t, err)
	require.NotNil(t, style.Font)
	assert.True(t, style.Font.Bold)
}

func TestExportFormats(t *testing.T) {
	e := newTestEnv(t)
	e.artifact("Networking", nil)

	resp := e.get("/artifacts/export?format=pdf")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))

	resp = e.get("/artifacts/export?format=csv")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestClearRedirectsToBareListing(t *testing.T) {
	e := newTestEnv(t)
	e.artifact("Networking", nil)
	e.artifact("Storage", nil)

	e.body("/artifacts?business_unit=Networking")
	_, name, _ := e.export("/artifacts/export")
	require.Equal(t, "Networking", name)

	resp := e.get("/artifacts?clear=1")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/artifacts", resp.Header.Get("Location"))

	page := e.body("/artifacts")
	assert.Contains(t, page, "Storage")
	_, name, rows := e.export("/artifacts/export")
	assert.Equal(t, "AllBUs", name)
	assert.Len(t, rows, 3)
}

func TestStoredFiltersPersistAcrossRequests(t *testing.T) {
	e := newTestEnv(t)
	e.artifact("Networking", nil)
	e.artifact("Storage", nil)

	e.body("/artifacts?business_unit=Storage")
	page := e.body("/artifacts")
	assert.Contains(t, page, `value="Storage"`)
	assert.NotContains(t, page, "<td>Networking</td>")
}

func TestSoftDeletedArtifactHiddenEverywhere(t *testing.T) {
	e := newTestEnv(t)
	keep := e.artifact("Networking", ptr("keep"))
	gone := e.artifact("Networking", ptr("gone"))

	resp := e.post("/artifacts/"+itoa(gone)+"/delete", nil)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/artifacts", resp.Header.Get("Location"))

	page := e.body("/artifacts")
	assert.Contains(t, page, "Artifact "+itoa(gone)+" deleted")
	assert.NotContains(t, page, "gone")

	form := e.body("/scans/new")
	assert.Contains(t, form, `<option value="`+itoa(keep)+`"`)
	assert.NotContains(t, form, `<option value="`+itoa(gone)+`"`)

	_, _, rows := e.export("/artifacts/export")
	assert.Equal(t, []string{itoa(keep)}, firstColumn(rows))

	a, err := e.db.GetArtifact(context.Background(), gone)
	require.NoError(t, err)
	assert.Equal(t, 1, a.Deleted)
}

func TestCreateArtifactFlashesAndStoresNulls(t *testing.T) {
	e := newTestEnv(t)

	resp := e.post("/artifacts/new", url.Values{
		"business_unit": {"Networking"},
		"owner":         {""},
		"mend_project":  {"  "},
		"sca_scans":     {"abc"},
	})
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/artifacts", resp.Header.Get("Location"))

	page := e.body("/artifacts")
	assert.Contains(t, page, "Artifact 1 created")
	assert.NotContains(t, e.body("/artifacts"), "Artifact 1 created", "flash shown once")

	a, err := e.db.GetArtifact(context.Background(), 1)
	require.NoError(t, err)
	assert.Nil(t, a.Owner)
	assert.Nil(t, a.MendProject)
	assert.Zero(t, a.SCAScans)
}

func TestWriteErrorsBecomeFlashes(t *testing.T) {
	e := newTestEnv(t)
	a := e.artifact("Networking", nil)

	tests := []struct {
		name string
		path string
		form url.Values
		want string
		next string
	}{
		{
			name: "missing business unit",
			path: "/artifacts/new",
			form: url.Values{"owner": {"ops"}},
			want: "Invalid input: business_unit is required",
			next: "/artifacts",
		},
		{
			name: "unparsable artifact id",
			path: "/scans/new",
			form: url.Values{"artifact_id": {"x"}, "scan_tool": {"Mend"}, "scan_type": {"SCA"}, "scan_datetime": {"2024-01-01"}},
			want: "Invalid input: artifact_id",
			next: "/scans",
		},
		{
			name: "unknown artifact",
			path: "/scans/new",
			form: url.Values{"artifact_id": {"999"}, "scan_tool": {"Mend"}, "scan_type": {"SCA"}, "scan_datetime": {"2024-01-01"}},
			want: "Database constraint violated",
			next: "/scans",
		},
		{
			name: "update missing scan",
			path: "/scans/999/edit",
			form: url.Values{"artifact_id": {itoa(a)}, "scan_tool": {"Mend"}, "scan_type": {"SCA"}, "scan_datetime": {"2024-01-01"}},
			want: "Scan 999 not found",
			next: "/scans",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := e.post(tt.path, tt.form)
			require.Equal(t, http.StatusSeeOther, resp.StatusCode)
			require.Equal(t, tt.next, resp.Header.Get("Location"))
			assert.Contains(t, e.body(tt.next), tt.want)
		})
	}

	rows, err := e.db.ListScansByArtifact(context.Background(), a)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestEditMissingRecordRedirects(t *testing.T) {
	e := newTestEnv(t)

	resp := e.get("/artifacts/42/edit")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/artifacts", resp.Header.Get("Location"))
	assert.Contains(t, e.body("/artifacts"), "Artifact 42 not found")

	assert.Equal(t, http.StatusNotFound, e.get("/artifacts/abc/edit").StatusCode)
}

func TestEditIsFullReplace(t *testing.T) {
	e := newTestEnv(t)
	a := database.Artifact{BusinessUnit: "Networking", Owner: ptr("ops"), Rapid7App: ptr("portal"), SASTScans: 4}
	require.NoError(t, e.db.CreateArtifact(context.Background(), &a))

	form := e.body("/artifacts/" + itoa(a.ID) + "/edit")
	assert.Contains(t, form, `value="portal"`)

	resp := e.post("/artifacts/"+itoa(a.ID)+"/edit", url.Values{"business_unit": {"Storage"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	got, err := e.db.GetArtifact(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Storage", got.BusinessUnit)
	assert.Nil(t, got.Owner)
	assert.Nil(t, got.Rapid7App)
	assert.Zero(t, got.SASTScans)
}

func TestScanLifecycleThroughForms(t *testing.T) {
	e := newTestEnv(t)
	a := e.artifact("Networking", ptr("core"))

	resp := e.post("/scans/new", url.Values{
		"artifact_id": {itoa(a)}, "scan_tool": {"Mend"}, "scan_type": {"SCA"},
		"scan_datetime": {"2024-03-01 10:00:00"}, "critical": {"2"},
	})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Contains(t, e.body("/scans"), "Scan 1 created")

	page := e.body("/artifacts/" + itoa(a) + "/scans")
	assert.Contains(t, page, "2024-03-01 10:00:00")

	edit := e.body("/scans/1/edit")
	assert.Contains(t, edit, `<option value="`+itoa(a)+`" selected>`)

	resp = e.post("/scans/1/edit", url.Values{
		"artifact_id": {itoa(a)}, "scan_tool": {"Mend"}, "scan_type": {"SCA"}, "scan_datetime": {"2024-03-02 10:00:00"},
	})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	s, err := e.db.GetScan(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-02 10:00:00", s.ScanDateTime)
	assert.Zero(t, s.Critical)
	assert.Equal(t, 1, s.ScanRepeatCount)

	resp = e.post("/scans/1/delete", nil)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	_, err = e.db.GetScan(context.Background(), 1)
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestMostRecentOnlyListing(t *testing.T) {
	e := newTestEnv(t)
	a := e.artifact("Networking", nil)
	e.scan(a, "Mend", "SCA", "2024-01-01 00:00:00")
	e.scan(a, "Mend", "SCA", "2024-03-01 00:00:00")

	page := e.body("/scans?most_recent_only=1")
	assert.Contains(t, page, "2024-03-01 00:00:00")
	assert.NotContains(t, page, "2024-01-01 00:00:00")

	page = e.body("/scans?most_recent_only=0")
	assert.Contains(t, page, "2024-01-01 00:00:00")
}

func TestWebSocketChangeFeed(t *testing.T) {
	e := newTestEnv(t)
	a := e.artifact("Networking", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(e.ts.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.CloseNow()

	require.NoError(t, conn.Write(ctx, websocket.MessageText, []byte(`{"kind":"scans"}`)))
	require.Eventually(t, func() bool {
		return len(e.srv.hub.subscribers(records.KindScans)) == 1
	}, 2*time.Second, 10*time.Millisecond)

	resp := e.post("/scans/new", url.Values{
		"artifact_id": {itoa(a)}, "scan_tool": {"Mend"}, "scan_type": {"SCA"}, "scan_datetime": {"2024-03-01"},
	})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	_, data, err := conn.Read(ctx)
	require.NoError(t, err)
	var ev records.Event
	require.NoError(t, json.Unmarshal(data, &ev))
	assert.Equal(t, records.KindScans, ev.Kind)
	assert.Equal(t, "created", ev.Action)
	assert.Equal(t, int64(1), ev.ID)
}

func TestWebSocketRejectsUnknownKind(t *testing.T) {
	e := newTestEnv(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(e.ts.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.CloseNow()

	require.NoError(t, conn.Write(ctx, websocket.MessageText, []byte(`{"kind":"projects"}`)))
	_, _, err = conn.Read(ctx)
	assert.Equal(t, websocket.StatusInvalidFramePayloadData, websocket.CloseStatus(err))
}

func TestOperationalEndpoints(t *testing.T) {
	e := newTestEnv(t)

	resp := e.get("/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var health map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, "ok", health["status"])

	e.post("/artifacts/new", url.Values{"business_unit": {"Networking"}})
	metrics := e.body("/metrics")
	assert.Contains(t, metrics, "scanledger_record_writes_total")
	assert.Contains(t, metrics, "scanledger_http_request_duration_seconds")

	index := e.body("/")
	assert.Contains(t, index, "business units")
	assert.Equal(t, "nosniff", e.get("/").Header.Get("X-Content-Type-Options"))

	assert.Equal(t, http.StatusOK, e.get("/static/css/style.css").StatusCode)
	assert.Equal(t, http.StatusNotFound, e.get("/nope").StatusCode)
	assert.Equal(t, http.StatusMethodNotAllowed, e.get("/artifacts/1/delete").StatusCode)
}
