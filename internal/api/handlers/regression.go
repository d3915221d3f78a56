package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/snapdiff/snapdiff/internal/api/dto"
	"github.com/snapdiff/snapdiff/internal/domain/regression"
	"github.com/snapdiff/snapdiff/internal/pkg/errors"
	"github.com/snapdiff/snapdiff/internal/pkg/logger"
	"github.com/snapdiff/snapdiff/internal/pkg/utils"
	"github.com/snapdiff/snapdiff/internal/pkg/validator"
)

type RegressionHandler struct {
	service   regression.Service
	logger    *logger.Logger
	validator *validator.Validator
}

func NewRegressionHandler(service regression.Service, log *logger.Logger, val *validator.Validator) *RegressionHandler {
	return &RegressionHandler{service: service, logger: log, validator: val}
}

// List returns the regressions of a test run with filtering and pagination
// @Summary List regressions
// @Tags Regressions
// @Produce json
// @Param test_run_id query int true "Test run ID"
// @Param status query string false "Filter by review status"
// @Param significant query bool false "Filter by significance"
// @Param page query int false "Page number (default: 1)"
// @Param page_size query int false "Page size (default: 20, max: 100)"
// @Success 200 {object} utils.PaginatedResponse{data=[]dto.RegressionDTO} "List of regressions"
// @Failure 400 {object} utils.ErrorResponse "Missing or invalid test_run_id"
// @Router /regressions [get]
func (h *RegressionHandler) List(w http.ResponseWriter, r *http.Request) {
	testRunID, err := strconv.ParseInt(r.URL.Query().Get("test_run_id"), 10, 64)
	if err != nil || testRunID <= 0 {
		utils.WriteError(w, errors.BadRequest("test_run_id query parameter is required"))
		return
	}

	filter := regression.Filter{
		Status: r.URL.Query().Get("status"),
	}
	if raw := r.URL.Query().Get("significant"); raw != "" {
		significant, err := strconv.ParseBool(raw)
		if err != nil {
			utils.WriteError(w, errors.BadRequest("significant must be a boolean"))
			return
		}
		filter.IsSignificant = &significant
	}

	p := utils.ParsePaginationParams(r)
	regs, total, err := h.service.List(r.Context(), testRunID, filter, p.PageSize, p.Offset)
	if err != nil {
		writeServiceError(w, err, "Failed to list regressions")
		return
	}

	dtos := make([]dto.RegressionDTO, len(regs))
	for i, reg := range regs {
		dtos[i] = toRegressionDTO(reg)
	}

	utils.WriteSuccess(w, http.StatusOK, utils.NewPaginatedResponse(dtos, p.Page, p.PageSize, total))
}

// Get returns a single regression by ID
// @Summary Get regression by ID
// @Tags Regressions
// @Produce json
// @Param id path int true "Regression ID"
// @Success 200 {object} dto.RegressionDTO "Regression details"
// @Failure 404 {object} utils.ErrorResponse "Regression not found"
// @Router /regressions/{id} [get]
func (h *RegressionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamInt64(r, "id")
	if err != nil {
		writeServiceError(w, err, "invalid id")
		return
	}

	reg, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, "Failed to get regression")
		return
	}

	utils.WriteSuccess(w, http.StatusOK, toRegressionDTO(reg))
}

// Review applies a review action to a regression
// @Summary Review regression
// @Tags Regressions
// @Accept json
// @Produce json
// @Param id path int true "Regression ID"
// @Param request body dto.ReviewRequest true "Review action"
// @Success 200 {object} utils.SuccessResponse "Review recorded"
// @Failure 400 {object} utils.ErrorResponse "Invalid status"
// @Failure 404 {object} utils.ErrorResponse "Regression not found"
// @Router /regressions/{id}/review [put]
func (h *RegressionHandler) Review(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamInt64(r, "id")
	if err != nil {
		writeServiceError(w, err, "invalid id")
		return
	}

	var req dto.ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, errors.BadRequest("invalid request body"))
		return
	}
	if validationErrors := h.validator.Validate(req); len(validationErrors) > 0 {
		utils.WriteError(w, errors.ValidationError("validation failed").WithDetails(validationErrors))
		return
	}

	if err := h.service.Review(r.Context(), id, req.Status, req.Notes, req.ReviewedBy); err != nil {
		writeServiceError(w, err, "Failed to review regression")
		return
	}

	utils.WriteSuccessWithMessage(w, http.StatusOK, "review recorded", nil)
}

// Stats returns the regression summary of a test run
// @Summary Regression stats
// @Tags Regressions
// @Produce json
// @Param test_run_id query int true "Test run ID"
// @Success 200 {object} regression.Stats "Run summary"
// @Failure 400 {object} utils.ErrorResponse "Missing or invalid test_run_id"
// @Router /regressions/stats [get]
func (h *RegressionHandler) Stats(w http.ResponseWriter, r *http.Request) {
	testRunID, err := strconv.ParseInt(r.URL.Query().Get("test_run_id"), 10, 64)
	if err != nil || testRunID <= 0 {
		utils.WriteError(w, errors.BadRequest("test_run_id query parameter is required"))
		return
	}

	stats, err := h.service.Stats(r.Context(), testRunID)
	if err != nil {
		writeServiceError(w, err, "Failed to get regression stats")
		return
	}

	utils.WriteSuccess(w, http.StatusOK, stats)
}

func toRegressionDTO(reg *regression.Regression) dto.RegressionDTO {
	return dto.RegressionDTO{
		ID:                  reg.ID,
		TestRunID:           reg.TestRunID,
		BaselineRunID:       reg.BaselineRunID,
		TestName:            reg.TestName,
		Viewport:            reg.Viewport,
		StepName:            reg.StepName,
		PixelsDifferent:     reg.PixelsDifferent,
		PercentageDifferent: reg.PercentageDifferent,
		Width:               reg.Width,
		Height:              reg.Height,
		Threshold:           reg.Threshold,
		IsSignificant:       reg.IsSignificant,
		DiffRef:             reg.DiffRef,
		Annotation:          reg.Annotation,
		Status:              reg.Status,
		ReviewedBy:          reg.ReviewedBy,
		ReviewedAt:          reg.ReviewedAt,
		Notes:               reg.Notes,
		CreatedAt:           reg.CreatedAt,
	}
}
