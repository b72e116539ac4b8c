package fetch

import (
	"net/http"

	"catchup-feed/internal/handler/http/respond"
	"catchup-feed/internal/usecase/scheduler"
)

type TriggerHandler struct{ Scheduler *scheduler.Scheduler }

type triggerResponseDTO struct {
	Ran      bool   `json:"ran"`
	Inserted int    `json:"inserted"`
	Skipped  int    `json:"skipped"`
	Decoded  int    `json:"decoded"`
	Analyzed int    `json:"analyzed"`
	Errors   []string `json:"errors,omitempty"`
}

// ServeHTTP runs one scheduler cycle now. The visibility-based trigger the
// frontend fires on tab focus calls this endpoint plainly, still subject to
// the minimum-gap check — it's just another opportunity for a due fetch to
// run, not an override. ?force=true sets skip_gap_check (spec §4.11
// Triggers: "manual (sets skip_gap_check)"), for an explicit user action.
//
// @Summary      Trigger an auto-fetch cycle now
// @Tags         fetch
// @Security     BearerAuth
// @Produce      json
// @Param        force query bool false "bypass the minimum-gap check"
// @Success      200 {object} triggerResponseDTO
// @Router       /fetch/trigger [post]
func (h TriggerHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	skipGapCheck := r.URL.Query().Get("force") == "true"
	result, err := h.Scheduler.PerformFetch(r.Context(), skipGapCheck)
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}

	errs := make([]string, 0, len(result.Errors))
	for _, e := range result.Errors {
		errs = append(errs, e.Error())
	}
	respond.JSON(w, http.StatusOK, triggerResponseDTO{
		Ran:      result.Ran,
		Inserted: result.Inserted,
		Skipped:  result.Skipped,
		Decoded:  result.Decoded,
		Analyzed: result.Analyzed,
		Errors:   errs,
	})
}
