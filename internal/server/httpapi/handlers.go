package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/premiumkeeper/internal/common"
	"github.com/dmitrijs2005/premiumkeeper/internal/premium"
	"github.com/dmitrijs2005/premiumkeeper/internal/server/export"
	"github.com/dmitrijs2005/premiumkeeper/internal/server/submissions"
	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
)

// submitResponse is returned by both submission endpoints.
type submitResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Provision string `json:"provision"`
	ID        string `json:"id,omitempty"`
}

// submitBody accepts premium as a JSON number or a numeric string.
type submitBody struct {
	Company string `json:"company"`
	Plate   string `json:"plate"`
	Premium any    `json:"premium"`
	User    string `json:"user"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	c, err := s.catalog.Load(r.Context())
	if err != nil {
		s.logger.Error(r.Context(), "catalog load failed", "error", err)
		writeError(w, r, http.StatusInternalServerError, "catalog unavailable")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var body submitBody
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&body); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid JSON body")
		return
	}

	s.submit(w, r, submissions.Request{
		Company: body.Company,
		Plate:   body.Plate,
		Premium: premiumText(body.Premium),
		User:    body.User,
	})
}

// handleForm is the hosted form gateway. The company may be omitted, in which
// case it is looked up from the catalog by plate.
func (s *Server) handleForm(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid form body")
		return
	}
	if r.PostForm.Get("form-name") != common.PremiumFormName {
		writeError(w, r, http.StatusBadRequest, "unknown form")
		return
	}

	req := submissions.Request{
		Company: r.PostForm.Get("company"),
		Plate:   r.PostForm.Get("nummerplade"),
		Premium: r.PostForm.Get("premium"),
		User:    r.PostForm.Get("user"),
	}
	if strings.TrimSpace(req.Company) == "" && strings.TrimSpace(req.Plate) != "" {
		company, err := s.submissions.ResolveCompany(r.Context(), req.Plate)
		if err != nil {
			status := statusFor(err)
			writeError(w, r, status, publicMessage(status, err))
			return
		}
		req.Company = company
	}

	s.submit(w, r, req)
}

func (s *Server) submit(w http.ResponseWriter, r *http.Request, req submissions.Request) {
	id, _ := identityFrom(r.Context())

	rec, err := s.submissions.Submit(r.Context(), id, req)
	if err != nil {
		status := statusFor(err)
		writeError(w, r, status, publicMessage(status, err))
		return
	}

	writeJSON(w, http.StatusOK, submitResponse{
		Success:   true,
		Message:   "Præmie gemt succesfuldt!",
		Provision: premium.FormatCommission(rec.Commission),
		ID:        rec.ID,
	})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	records, err := s.submissions.List(r.Context())
	if err != nil {
		s.logger.Error(r.Context(), "ledger list failed", "error", err)
		writeError(w, r, http.StatusInternalServerError, "ledger unavailable")
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	records, err := s.submissions.List(r.Context())
	if err != nil {
		s.logger.Error(r.Context(), "ledger list failed", "error", err)
		writeError(w, r, http.StatusInternalServerError, "ledger unavailable")
		return
	}

	workbook, err := export.Workbook(records)
	if err != nil {
		s.logger.Error(r.Context(), "workbook build failed", "error", err)
		writeError(w, r, http.StatusInternalServerError, "export failed")
		return
	}

	archive, _ := strconv.ParseBool(r.URL.Query().Get("archive"))
	if !archive {
		s.countExport("download")
		w.Header().Set("Content-Type", export.MediaType)
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, export.FileName))
		w.Header().Set("Content-Length", strconv.Itoa(len(workbook)))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(workbook)
		return
	}

	if s.archiver == nil {
		writeError(w, r, http.StatusServiceUnavailable, "export archive is not configured")
		return
	}
	key, link, err := s.archiver.Archive(r.Context(), workbook)
	if err != nil {
		s.logger.Error(r.Context(), "export archive failed", "error", err)
		writeError(w, r, http.StatusBadGateway, "export archive failed")
		return
	}
	s.countExport("archive")
	writeJSON(w, http.StatusOK, map[string]any{
		"key":        key,
		"url":        link,
		"expires_in": int(export.LinkValidity.Seconds()),
		"records":    len(records),
	})
}

func (s *Server) handleCatalogMerge(w http.ResponseWriter, r *http.Request) {
	company, err := url.PathUnescape(chi.URLParam(r, "company"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid company")
		return
	}

	var records []premium.PlateRecord
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&records); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid JSON body")
		return
	}

	added, err := s.catalog.Merge(r.Context(), company, records)
	if err != nil {
		if errors.Is(err, common.ErrorValidation) {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Error(r.Context(), "catalog merge failed", "company", company, "error", err)
		writeError(w, r, http.StatusInternalServerError, "catalog update failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"company": company, "added": added})
}

func (s *Server) countExport(kind string) {
	if s.metrics != nil {
		s.metrics.Exports.WithLabelValues(kind).Inc()
	}
}

// premiumText normalizes a decoded JSON premium to the text the service parses.
func premiumText(v any) string {
	switch p := v.(type) {
	case nil:
		return ""
	case string:
		return p
	case float64:
		return strconv.FormatFloat(p, 'f', -1, 64)
	case json.Number:
		return p.String()
	default:
		return ""
	}
}
