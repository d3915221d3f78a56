package handlers

import (
	"net/http"

	"github.com/snapdiff/snapdiff/internal/pkg/logger"
	"github.com/snapdiff/snapdiff/internal/pkg/utils"
	"github.com/snapdiff/snapdiff/internal/services"
)

type AnalysisHandler struct {
	runner services.AnalysisRunner
	logger *logger.Logger
}

func NewAnalysisHandler(runner services.AnalysisRunner, log *logger.Logger) *AnalysisHandler {
	return &AnalysisHandler{runner: runner, logger: log}
}

// Run triggers batch regression analysis for a test run
// @Summary Run regression analysis
// @Tags Analysis
// @Produce json
// @Param runId path int true "Test run ID"
// @Success 200 {object} services.RegressionReport "Batch report"
// @Failure 404 {object} utils.ErrorResponse "Test run not found"
// @Router /analysis/runs/{runId} [post]
func (h *AnalysisHandler) Run(w http.ResponseWriter, r *http.Request) {
	runID, err := urlParamInt64(r, "runId")
	if err != nil {
		writeServiceError(w, err, "invalid runId")
		return
	}

	report, err := h.runner.RunRegressionAnalysis(r.Context(), runID)
	if err != nil {
		writeServiceError(w, err, "Failed to run regression analysis")
		return
	}

	utils.WriteSuccess(w, http.StatusOK, report)
}
