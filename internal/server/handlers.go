package server

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"strconv"
	"strings"

	"github.com/KaramelBytes/echantillon-cli/internal/export"
	"github.com/KaramelBytes/echantillon-cli/internal/sampling"
	"github.com/KaramelBytes/echantillon-cli/internal/table"
	"github.com/pterm/pterm"
)

// multipart parts above this size spill to disk.
const formMemory = 8 << 20

type inspectResponse struct {
	Name    string            `json:"name"`
	Rows    int               `json:"rows"`
	Columns []table.Column    `json:"columns"`
	Bounds  []sampling.Bounds `json:"bounds"`
}

type methodInfo struct {
	Method      sampling.Method `json:"method"`
	Label       string          `json:"label"`
	ColumnField string          `json:"column_field,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleMethods(w http.ResponseWriter, _ *http.Request) {
	out := make([]methodInfo, 0, len(sampling.Methods))
	for _, m := range sampling.Methods {
		out = append(out, methodInfo{Method: m, Label: m.Label(), ColumnField: m.ColumnField()})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	t, err := s.readUpload(w, r)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	column := strings.TrimSpace(r.FormValue("column"))
	resp := inspectResponse{Name: t.Name(), Rows: t.Len(), Columns: t.Schema()}
	for _, m := range sampling.Methods {
		col := ""
		if m.ColumnField() != "" {
			col = column
		}
		b, err := sampling.ComputeBounds(t, m, col)
		if err != nil {
			writeFailure(w, r, err)
			return
		}
		resp.Bounds = append(resp.Bounds, b)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSample(w http.ResponseWriter, r *http.Request) {
	t, err := s.readUpload(w, r)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	req, err := requestFromForm(r)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	format := s.cfg.DefaultFormat
	if v := r.FormValue("format"); v != "" {
		if format, err = export.ParseFormat(v); err != nil {
			writeError(w, http.StatusBadRequest, apiError{Code: "invalid_parameter", Message: err.Error(), Field: "format"})
			return
		}
	}
	seed, err := s.seedFromForm(r)
	if err != nil {
		writeFailure(w, r, err)
		return
	}

	res, err := sampling.NewSeeded(seed).Run(t, req)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	for _, warn := range res.Warnings {
		pterm.Debug.Printfln("[%s] %s", requestID(r.Context()), warn)
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, res.Sample, format); err != nil {
		writeFailure(w, r, fmt.Errorf("export sample: %w", err))
		return
	}
	name := export.FileName(t.Name(), s.cfg.Now(), format)
	h := w.Header()
	h.Set("Content-Type", format.ContentType())
	h.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	h.Set("X-Sample-Method", string(req.Method()))
	h.Set("X-Sample-Rows", strconv.Itoa(res.Sample.Len()))
	h.Set("X-Sample-Seed", strconv.FormatUint(seed, 10))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// readUpload loads the multipart "file" part as a table.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (*table.Table, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(formMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, err
		}
		return nil, &sampling.InvalidParameterError{Field: "file", Reason: "expected a multipart form upload", Err: err}
	}
	f, hdr, err := r.FormFile("file")
	if err != nil {
		return nil, &sampling.InvalidParameterError{Field: "file", Reason: "missing file part", Err: err}
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	opt := s.cfg.Loader
	if v := r.FormValue("sheet"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			opt.SheetIndex, opt.SheetName = i, ""
		} else {
			opt.SheetName = v
		}
	}
	return table.Load(hdr.Filename, data, opt)
}

func requestFromForm(r *http.Request) (sampling.Request, error) {
	m, err := sampling.ParseMethod(r.FormValue("method"))
	if err != nil {
		return nil, err
	}
	size, err := formInt(r, "size", sampling.FieldSampleSize)
	if err != nil {
		return nil, err
	}
	clusters, err := formInt(r, "clusters", sampling.FieldClusterCount)
	if err != nil {
		return nil, err
	}
	return sampling.NewRequest(m, sampling.Params{
		SampleSize:   size,
		Column:       strings.TrimSpace(r.FormValue("column")),
		ClusterCount: clusters,
	})
}

func formInt(r *http.Request, key, field string) (int, error) {
	v := strings.TrimSpace(r.FormValue(key))
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, &sampling.InvalidParameterError{Field: field, Value: v, Reason: "not an integer", Err: err}
	}
	return n, nil
}

// seedFromForm prefers the request's seed, then the configured one, then a
// fresh random seed.
func (s *Server) seedFromForm(r *http.Request) (uint64, error) {
	if v := strings.TrimSpace(r.FormValue("seed")); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return 0, &sampling.InvalidParameterError{Field: "seed", Value: v, Reason: "not an unsigned integer", Err: err}
		}
		return seed, nil
	}
	if s.cfg.Seed != 0 {
		return s.cfg.Seed, nil
	}
	return rand.Uint64(), nil
}
