package httpapi

import (
	"net/http"
	"time"

	"github.com/example/malkhana/internal/core/access"
	"github.com/example/malkhana/internal/ctxutil"
	"github.com/example/malkhana/internal/ledgererr"
	"github.com/example/malkhana/internal/ports/primary"
)

func actorOf(r *http.Request) ctxutil.Actor {
	return ctxutil.ActorFromContext(r.Context())
}

// ---------------------------------------------------------------------------
// cases

type createCaseBody struct {
	Station     string   `json:"station"`
	CrimeNumber string   `json:"crimeNumber"`
	Year        int      `json:"year"`
	FIRDate     string   `json:"firDate"`
	SeizureDate string   `json:"seizureDate"`
	ActLaw      string   `json:"actLaw"`
	Sections    []string `json:"sections"`
}

func (s *Server) createCase(w http.ResponseWriter, r *http.Request) {
	var body createCaseBody
	if err := decode(r, &body); err != nil {
		writeError(w, err)
		return
	}

	firDate, err := parseDate("firDate", body.FIRDate)
	if err != nil {
		writeError(w, err)
		return
	}
	req := primary.CreateCaseRequest{
		Station:     body.Station,
		CrimeNumber: body.CrimeNumber,
		Year:        body.Year,
		FIRDate:     firDate,
		ActLaw:      body.ActLaw,
		Sections:    body.Sections,
	}
	if body.SeizureDate != "" {
		seized, err := parseDate("seizureDate", body.SeizureDate)
		if err != nil {
			writeError(w, err)
			return
		}
		req.SeizureDate = &seized
	}

	c, err := s.svc.Cases.CreateCase(r.Context(), req, actorOf(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) listCases(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		writeError(w, err)
		return
	}
	q := r.URL.Query()
	cases, err := s.svc.Cases.ListCases(r.Context(), primary.CaseFilters{
		Search: q.Get("search"),
		Status: q.Get("status"),
		Limit:  limit,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cases)
}

func (s *Server) getCase(w http.ResponseWriter, r *http.Request) {
	c, err := s.svc.Cases.GetCase(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) closeCheck(w http.ResponseWriter, r *http.Request) {
	actor := actorOf(r)
	if err := access.CanPerform(actor.ID, actor.Role, access.ActionCloseCase).Error(); err != nil {
		writeError(w, err)
		return
	}

	result, err := s.svc.Cases.CloseIfComplete(r.Context(), r.PathValue("id"), actor)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// ---------------------------------------------------------------------------
// properties and custody

func (s *Server) addProperty(w http.ResponseWriter, r *http.Request) {
	var req primary.AddPropertyRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	p, err := s.svc.Custody.AddProperty(r.Context(), req, actorOf(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) listProperties(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		writeError(w, err)
		return
	}
	q := r.URL.Query()
	properties, err := s.svc.Custody.ListProperties(r.Context(), primary.PropertyFilters{
		CaseID: q.Get("caseId"),
		Status: q.Get("status"),
		Limit:  limit,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, properties)
}

func (s *Server) getProperty(w http.ResponseWriter, r *http.Request) {
	p, err := s.svc.Custody.GetProperty(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) transfer(w http.ResponseWriter, r *http.Request) {
	var req primary.TransferRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	req.PropertyID = r.PathValue("id")

	result, err := s.svc.Custody.TransferCustody(r.Context(), req, actorOf(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (s *Server) custodyHistory(w http.ResponseWriter, r *http.Request) {
	logs, err := s.svc.Custody.ListCustodyLogs(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, logs)
}

// ---------------------------------------------------------------------------
// disposals

func (s *Server) dispose(w http.ResponseWriter, r *http.Request) {
	var req primary.DisposeRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	req.PropertyID = r.PathValue("id")

	result, err := s.svc.Disposals.DisposeProperty(r.Context(), req, actorOf(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (s *Server) getDisposal(w http.ResponseWriter, r *http.Request) {
	d, err := s.svc.Disposals.GetDisposalForProperty(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) listDisposals(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		writeError(w, err)
		return
	}
	disposals, err := s.svc.Disposals.ListDisposals(r.Context(), primary.DisposalFilters{
		PropertyID: r.URL.Query().Get("propertyId"),
		Limit:      limit,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, disposals)
}

// ---------------------------------------------------------------------------
// audit

func (s *Server) listAudit(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		writeError(w, err)
		return
	}
	q := r.URL.Query()
	entries, err := s.svc.Audit.Query(r.Context(), primary.AuditQuery{
		EntityID:   q.Get("entityId"),
		EntityType: q.Get("entityType"),
		Limit:      limit,
	}, actorOf(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// ---------------------------------------------------------------------------
// notifications

func (s *Server) listNotifications(w http.ResponseWriter, r *http.Request) {
	actor := actorOf(r)
	if actor.ID == "" {
		writeError(w, ledgererr.Forbidden("listing notifications requires an authenticated actor"))
		return
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		writeError(w, err)
		return
	}
	list, err := s.svc.Notifications.ListForUser(r.Context(), actor.ID, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) markRead(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Notifications.MarkRead(r.Context(), r.PathValue("id"), actorOf(r)); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) sweep(w http.ResponseWriter, r *http.Request) {
	actor := actorOf(r)
	if err := access.CanPerform(actor.ID, actor.Role, access.ActionRunSweep).Error(); err != nil {
		writeError(w, err)
		return
	}

	threshold := s.opts.SweepThreshold
	if raw := r.URL.Query().Get("threshold"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d < 0 {
			writeError(w, ledgererr.Validation(ledgererr.FieldError{Field: "threshold", Message: "must be a non-negative duration such as 24h"}))
			return
		}
		threshold = d
	}

	result, err := s.svc.Notifications.Sweep(r.Context(), threshold)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// ---------------------------------------------------------------------------
// officers and dashboard

func (s *Server) addOfficer(w http.ResponseWriter, r *http.Request) {
	var req primary.AddOfficerRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	o, err := s.svc.Officers.AddOfficer(r.Context(), req, actorOf(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, o)
}

func (s *Server) listOfficers(w http.ResponseWriter, r *http.Request) {
	officers, err := s.svc.Officers.ListOfficers(r.Context(), r.URL.Query().Get("role"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, officers)
}

func (s *Server) dashboard(w http.ResponseWriter, r *http.Request) {
	m, err := s.svc.Dashboard.Metrics(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}
