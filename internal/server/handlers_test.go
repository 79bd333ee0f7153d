package server

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/KaramelBytes/echantillon-cli/internal/table"
)

const regionsCSV = "id,region,score\n" +
	"1,A,10\n2,A,11\n3,A,12\n" +
	"4,B,20\n5,B,21\n6,B,22\n" +
	"7,C,30\n8,C,31\n9,C,32\n"

func testServer() *Server {
	return New(Config{
		Loader: table.DefaultOptions(),
		Now:    func() time.Time { return time.Date(2024, 3, 5, 14, 7, 9, 0, time.UTC) },
	})
}

func uploadRequest(t *testing.T, path, filename, content string, fields map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if filename != "" {
		fw, err := mw.CreateFormFile("file", filename)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := fw.Write([]byte(content)); err != nil {
			t.Fatalf("write form file: %v", err)
		}
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) apiError {
	t.Helper()
	var body errorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body %q: %v", rec.Body.String(), err)
	}
	return body.Error
}

func TestHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	testServer().Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatalf("missing request id header")
	}
}

func TestMethods(t *testing.T) {
	rec := httptest.NewRecorder()
	testServer().Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/methods", nil))
	var out []methodInfo
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out) != 5 || out[2].ColumnField != "strata_column" {
		t.Fatalf("unexpected methods %+v", out)
	}
}

func TestInspectReportsSchemaAndBounds(t *testing.T) {
	req := uploadRequest(t, "/api/inspect", "regions.csv", regionsCSV, map[string]string{"column": "region"})
	rec := httptest.NewRecorder()
	testServer().Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var resp inspectResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Rows != 9 || len(resp.Columns) != 3 || len(resp.Bounds) != 5 {
		t.Fatalf("unexpected inspect response %+v", resp)
	}
	if resp.Columns[1].Name != "region" || resp.Columns[1].Distinct != 3 {
		t.Fatalf("unexpected region column %+v", resp.Columns[1])
	}
	cl := resp.Bounds[3]
	r, ok := cl.Range("cluster_count")
	if cl.Method != "cluster1" || !ok || r.Min != 1 || r.Max != 3 {
		t.Fatalf("unexpected cluster bounds %+v", cl)
	}
}

func TestSampleReturnsCSVAttachment(t *testing.T) {
	req := uploadRequest(t, "/api/sample", "regions.csv", regionsCSV, map[string]string{
		"method": "systematic",
		"size":   "3",
		"format": "csv",
	})
	rec := httptest.NewRecorder()
	testServer().Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	want := `attachment; filename="Echantillon_regions_20240305_140709.csv"`
	if got := rec.Header().Get("Content-Disposition"); got != want {
		t.Fatalf("content disposition %q, want %q", got, want)
	}
	if got := rec.Header().Get("X-Sample-Rows"); got != "3" {
		t.Fatalf("sample rows header %q", got)
	}
	recs, err := csv.NewReader(rec.Body).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(recs) != 4 || recs[1][0] != "1" || recs[2][0] != "4" || recs[3][0] != "7" {
		t.Fatalf("unexpected systematic sample %v", recs)
	}
}

func TestSampleIsReproducibleWithSeed(t *testing.T) {
	h := testServer().Handler()
	run := func() string {
		req := uploadRequest(t, "/api/sample", "regions.csv", regionsCSV, map[string]string{
			"method": "random", "size": "4", "seed": "42", "format": "csv",
		})
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
		}
		if got := rec.Header().Get("X-Sample-Seed"); got != "42" {
			t.Fatalf("seed header %q", got)
		}
		return rec.Body.String()
	}
	if a, b := run(), run(); a != b {
		t.Fatalf("same seed produced different samples:\n%s\n%s", a, b)
	}
}

func TestSampleDefaultsToXLSX(t *testing.T) {
	req := uploadRequest(t, "/api/sample", "regions.csv", regionsCSV, map[string]string{
		"method": "cluster1", "column": "region", "clusters": "2",
	})
	rec := httptest.NewRecorder()
	testServer().Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.HasSuffix(rec.Header().Get("Content-Disposition"), `.xlsx"`) {
		t.Fatalf("expected xlsx attachment, got %q", rec.Header().Get("Content-Disposition"))
	}
	got, err := table.Load("sample.xlsx", rec.Body.Bytes(), table.DefaultOptions())
	if err != nil {
		t.Fatalf("reload xlsx: %v", err)
	}
	if got.Len() != 6 {
		t.Fatalf("two clusters of three rows should give 6 rows, got %d", got.Len())
	}
}

func TestSampleErrors(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		content  string
		fields   map[string]string
		status   int
		code     string
		field    string
	}{
		{"size above rows", "regions.csv", regionsCSV, map[string]string{"method": "random", "size": "10"}, http.StatusBadRequest, "invalid_parameter", "sample_size"},
		{"unknown method", "regions.csv", regionsCSV, map[string]string{"method": "quota", "size": "2"}, http.StatusBadRequest, "invalid_parameter", "method"},
		{"missing column", "regions.csv", regionsCSV, map[string]string{"method": "stratified", "size": "3"}, http.StatusBadRequest, "invalid_parameter", "strata_column"},
		{"unknown column", "regions.csv", regionsCSV, map[string]string{"method": "cluster1", "column": "zone", "clusters": "1"}, http.StatusBadRequest, "invalid_parameter", "cluster_column"},
		{"not an integer", "regions.csv", regionsCSV, map[string]string{"method": "random", "size": "two"}, http.StatusBadRequest, "invalid_parameter", "sample_size"},
		{"bad format", "regions.csv", regionsCSV, map[string]string{"method": "random", "size": "2", "format": "ods"}, http.StatusBadRequest, "invalid_parameter", "format"},
		{"legacy xls", "old.xls", "whatever", map[string]string{"method": "random", "size": "2"}, http.StatusUnsupportedMediaType, "unsupported_file_format", ""},
		{"no file", "", "", map[string]string{"method": "random", "size": "2"}, http.StatusBadRequest, "invalid_parameter", "file"},
	}
	h := testServer().Handler()
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, uploadRequest(t, "/api/sample", tc.filename, tc.content, tc.fields))
			if rec.Code != tc.status {
				t.Fatalf("status %d, want %d: %s", rec.Code, tc.status, rec.Body.String())
			}
			e := decodeError(t, rec)
			if e.Code != tc.code || e.Field != tc.field {
				t.Fatalf("unexpected error %+v", e)
			}
		})
	}
}

func TestSampleErrorCarriesRange(t *testing.T) {
	req := uploadRequest(t, "/api/sample", "regions.csv", regionsCSV, map[string]string{"method": "cluster2", "column": "region", "clusters": "5", "size": "3"})
	rec := httptest.NewRecorder()
	testServer().Handler().ServeHTTP(rec, req)
	e := decodeError(t, rec)
	if e.Min == nil || e.Max == nil || *e.Min != 1 || *e.Max != 3 {
		t.Fatalf("expected range 1..3, got %+v", e)
	}
}

func TestUploadLimit(t *testing.T) {
	s := New(Config{MaxUploadBytes: 64, Loader: table.DefaultOptions()})
	req := uploadRequest(t, "/api/inspect", "big.csv", strings.Repeat("a,b\n", 100), nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Code == http.StatusOK {
		t.Fatalf("oversized upload accepted")
	}
}

func TestMethodNotAllowed(t *testing.T) {
	rec := httptest.NewRecorder()
	testServer().Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sample", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status %d", rec.Code)
	}
}
