package httpapi

import "net/http"

// Health serves GET /api/health: store reachability plus the last successful
// run per job name, the two signals the pipeline's own health depends on.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Health")
	defer span.End()

	result := h.readService.Health(ctx)

	status := "ok"
	httpStatus := http.StatusOK
	if !result.DBReachable {
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable
	}

	jobs := make(map[string]jobRunDTO, len(result.LastSuccesses))
	for name, run := range result.LastSuccesses {
		jobs[name] = jobRunToDTO(run)
	}

	writeSuccess(ctx, w, httpStatus, healthDTO{
		Status:        status,
		DBReachable:   result.DBReachable,
		LastSuccesses: jobs,
	})
}
