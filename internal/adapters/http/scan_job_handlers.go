package httpadapter

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/MagicMike0112/Project-Study-BSH/internal/core/domain"
)

var errScanJobsDisabled = domain.WrapError(domain.ErrFeatureDisabled, "scan jobs", errors.New("asynchronous scans are not enabled"))

func (rt *Router) submitScanJob(w http.ResponseWriter, r *http.Request) {
	if rt.submitter == nil {
		rt.writeError(w, r, errScanJobsDisabled)
		return
	}
	var req scanRequest
	if err := decodeJSON(r, &req); err != nil {
		rt.writeError(w, r, err)
		return
	}
	job, err := rt.submitter.Submit(r.Context(), req.toDomain())
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/v1/scan-jobs/"+job.ID)
	writeJSON(w, http.StatusAccepted, job)
}

func (rt *Router) getScanJob(w http.ResponseWriter, r *http.Request) {
	job, ok := rt.loadScanJob(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (rt *Router) exportScanJob(w http.ResponseWriter, r *http.Request) {
	job, ok := rt.loadScanJob(w, r)
	if !ok {
		return
	}
	if job.Status != domain.ScanJobReady || job.Result == nil {
		writeJSON(w, http.StatusConflict, errorResponse{Error: "scan job is " + string(job.Status) + ", export needs a ready job"})
		return
	}
	rt.writeWorkbook(w, r, *job.Result, "scan-"+job.ID)
}

func (rt *Router) loadScanJob(w http.ResponseWriter, r *http.Request) (*domain.ScanJob, bool) {
	if rt.jobs == nil {
		rt.writeError(w, r, errScanJobsDisabled)
		return nil, false
	}
	id := mux.Vars(r)["id"]
	if id == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "scan job id is required"})
		return nil, false
	}
	job, err := rt.jobs.GetByID(r.Context(), id)
	if err != nil {
		rt.writeError(w, r, err)
		return nil, false
	}
	return job, true
}
