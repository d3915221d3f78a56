package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/snapdiff/snapdiff/internal/api/dto"
	"github.com/snapdiff/snapdiff/internal/domain/baseline"
	"github.com/snapdiff/snapdiff/internal/domain/regression"
	"github.com/snapdiff/snapdiff/internal/domain/settings"
	"github.com/snapdiff/snapdiff/internal/pkg/errors"
	"github.com/snapdiff/snapdiff/internal/pkg/logger"
	"github.com/snapdiff/snapdiff/internal/pkg/utils"
	"github.com/snapdiff/snapdiff/internal/pkg/validator"
)

// SuiteHandler handles per-suite resources: baseline, settings, ignore
// regions and trends.
type SuiteHandler struct {
	baselines   baseline.Service
	settings    settings.Service
	regressions regression.Service
	logger      *logger.Logger
	validator   *validator.Validator
}

func NewSuiteHandler(baselines baseline.Service, set settings.Service, regs regression.Service, log *logger.Logger, val *validator.Validator) *SuiteHandler {
	return &SuiteHandler{
		baselines:   baselines,
		settings:    set,
		regressions: regs,
		logger:      log,
		validator:   val,
	}
}

// GetBaseline returns the suite's baseline designation
// @Summary Get baseline
// @Tags Suites
// @Produce json
// @Param suiteId path int true "Suite ID"
// @Success 200 {object} dto.BaselineDTO "Baseline; baseline_run_id is null when unset"
// @Router /suites/{suiteId}/baseline [get]
func (h *SuiteHandler) GetBaseline(w http.ResponseWriter, r *http.Request) {
	suiteID, err := urlParamInt64(r, "suiteId")
	if err != nil {
		writeServiceError(w, err, "invalid suiteId")
		return
	}

	b, err := h.baselines.Get(r.Context(), suiteID)
	if err != nil {
		writeServiceError(w, err, "Failed to get baseline")
		return
	}

	utils.WriteSuccess(w, http.StatusOK, dto.BaselineDTO{
		SuiteID:       b.SuiteID,
		BaselineRunID: b.BaselineRunID,
		SetAt:         b.SetAt,
		Notes:         b.Notes,
	})
}

// SetBaseline designates a run as the suite's baseline
// @Summary Set baseline
// @Tags Suites
// @Accept json
// @Produce json
// @Param suiteId path int true "Suite ID"
// @Param request body dto.SetBaselineRequest true "Baseline run"
// @Success 200 {object} utils.SuccessResponse "Baseline set"
// @Failure 400 {object} utils.ErrorResponse "Run invalid for this suite"
// @Router /suites/{suiteId}/baseline [put]
func (h *SuiteHandler) SetBaseline(w http.ResponseWriter, r *http.Request) {
	suiteID, err := urlParamInt64(r, "suiteId")
	if err != nil {
		writeServiceError(w, err, "invalid suiteId")
		return
	}

	var req dto.SetBaselineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, errors.BadRequest("invalid request body"))
		return
	}
	if validationErrors := h.validator.Validate(req); len(validationErrors) > 0 {
		utils.WriteError(w, errors.ValidationError("validation failed").WithDetails(validationErrors))
		return
	}

	if err := h.baselines.Set(r.Context(), suiteID, req.RunID, req.Notes); err != nil {
		writeServiceError(w, err, "Failed to set baseline")
		return
	}

	utils.WriteSuccessWithMessage(w, http.StatusOK, "baseline set", nil)
}

// ClearBaseline removes the suite's baseline designation
// @Summary Clear baseline
// @Tags Suites
// @Produce json
// @Param suiteId path int true "Suite ID"
// @Success 200 {object} utils.SuccessResponse "Baseline cleared"
// @Router /suites/{suiteId}/baseline [delete]
func (h *SuiteHandler) ClearBaseline(w http.ResponseWriter, r *http.Request) {
	suiteID, err := urlParamInt64(r, "suiteId")
	if err != nil {
		writeServiceError(w, err, "invalid suiteId")
		return
	}

	if err := h.baselines.Clear(r.Context(), suiteID); err != nil {
		writeServiceError(w, err, "Failed to clear baseline")
		return
	}

	utils.WriteSuccessWithMessage(w, http.StatusOK, "baseline cleared", nil)
}

// GetSettings returns the suite's comparison settings
// @Summary Get suite settings
// @Tags Suites
// @Produce json
// @Param suiteId path int true "Suite ID"
// @Success 200 {object} dto.SuiteSettingsDTO "Settings with effective threshold"
// @Router /suites/{suiteId}/settings [get]
func (h *SuiteHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	suiteID, err := urlParamInt64(r, "suiteId")
	if err != nil {
		writeServiceError(w, err, "invalid suiteId")
		return
	}

	s, err := h.settings.GetSettings(r.Context(), suiteID)
	if err != nil {
		writeServiceError(w, err, "Failed to get suite settings")
		return
	}

	utils.WriteSuccess(w, http.StatusOK, dto.SuiteSettingsDTO{
		SuiteID:             s.SuiteID,
		Threshold:           s.Threshold,
		EffectiveThreshold:  s.EffectiveThreshold(),
		IncludeAntialiasing: s.IncludeAntialiasing,
	})
}

// UpdateSettings replaces the suite's comparison settings
// @Summary Update suite settings
// @Tags Suites
// @Accept json
// @Produce json
// @Param suiteId path int true "Suite ID"
// @Param request body dto.UpdateSettingsRequest true "New settings"
// @Success 200 {object} utils.SuccessResponse "Settings updated"
// @Failure 422 {object} utils.ErrorResponse "Validation error"
// @Router /suites/{suiteId}/settings [put]
func (h *SuiteHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	suiteID, err := urlParamInt64(r, "suiteId")
	if err != nil {
		writeServiceError(w, err, "invalid suiteId")
		return
	}

	var req dto.UpdateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, errors.BadRequest("invalid request body"))
		return
	}
	if validationErrors := h.validator.Validate(req); len(validationErrors) > 0 {
		utils.WriteError(w, errors.ValidationError("validation failed").WithDetails(validationErrors))
		return
	}

	err = h.settings.UpdateSettings(r.Context(), &settings.SuiteSettings{
		SuiteID:             suiteID,
		Threshold:           req.Threshold,
		IncludeAntialiasing: req.IncludeAntialiasing,
	})
	if err != nil {
		writeServiceError(w, err, "Failed to update suite settings")
		return
	}

	utils.WriteSuccessWithMessage(w, http.StatusOK, "settings updated", nil)
}

// ListIgnoreRegions returns every ignore region of a suite
// @Summary List ignore regions
// @Tags Suites
// @Produce json
// @Param suiteId path int true "Suite ID"
// @Success 200 {array} dto.IgnoreRegionDTO "Ignore regions"
// @Router /suites/{suiteId}/ignore-regions [get]
func (h *SuiteHandler) ListIgnoreRegions(w http.ResponseWriter, r *http.Request) {
	suiteID, err := urlParamInt64(r, "suiteId")
	if err != nil {
		writeServiceError(w, err, "invalid suiteId")
		return
	}

	regions, err := h.settings.ListIgnoreRegions(r.Context(), suiteID)
	if err != nil {
		writeServiceError(w, err, "Failed to list ignore regions")
		return
	}

	dtos := make([]dto.IgnoreRegionDTO, len(regions))
	for i, reg := range regions {
		dtos[i] = dto.IgnoreRegionDTO{
			ID:       reg.ID,
			TestName: reg.TestName,
			Viewport: reg.Viewport,
			X:        reg.X,
			Y:        reg.Y,
			Width:    reg.Width,
			Height:   reg.Height,
		}
	}

	utils.WriteSuccess(w, http.StatusOK, dtos)
}

// CreateIgnoreRegion adds an ignore region to a suite
// @Summary Add ignore region
// @Tags Suites
// @Accept json
// @Produce json
// @Param suiteId path int true "Suite ID"
// @Param request body dto.CreateIgnoreRegionRequest true "Region"
// @Success 201 {object} map[string]int64 "Created region ID"
// @Failure 422 {object} utils.ErrorResponse "Validation error"
// @Router /suites/{suiteId}/ignore-regions [post]
func (h *SuiteHandler) CreateIgnoreRegion(w http.ResponseWriter, r *http.Request) {
	suiteID, err := urlParamInt64(r, "suiteId")
	if err != nil {
		writeServiceError(w, err, "invalid suiteId")
		return
	}

	var req dto.CreateIgnoreRegionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, errors.BadRequest("invalid request body"))
		return
	}
	if validationErrors := h.validator.Validate(req); len(validationErrors) > 0 {
		utils.WriteError(w, errors.ValidationError("validation failed").WithDetails(validationErrors))
		return
	}

	id, err := h.settings.AddIgnoreRegion(r.Context(), &settings.IgnoreRegion{
		SuiteID:  suiteID,
		TestName: req.TestName,
		Viewport: req.Viewport,
		X:        req.X,
		Y:        req.Y,
		Width:    req.Width,
		Height:   req.Height,
	})
	if err != nil {
		writeServiceError(w, err, "Failed to create ignore region")
		return
	}

	utils.WriteSuccess(w, http.StatusCreated, map[string]int64{"id": id})
}

// DeleteIgnoreRegion removes an ignore region from a suite
// @Summary Delete ignore region
// @Tags Suites
// @Produce json
// @Param suiteId path int true "Suite ID"
// @Param id path int true "Region ID"
// @Success 200 {object} utils.SuccessResponse "Region deleted"
// @Failure 404 {object} utils.ErrorResponse "Region not found"
// @Router /suites/{suiteId}/ignore-regions/{id} [delete]
func (h *SuiteHandler) DeleteIgnoreRegion(w http.ResponseWriter, r *http.Request) {
	suiteID, err := urlParamInt64(r, "suiteId")
	if err != nil {
		writeServiceError(w, err, "invalid suiteId")
		return
	}
	id, err := urlParamInt64(r, "id")
	if err != nil {
		writeServiceError(w, err, "invalid id")
		return
	}

	if err := h.settings.RemoveIgnoreRegion(r.Context(), suiteID, id); err != nil {
		writeServiceError(w, err, "Failed to delete ignore region")
		return
	}

	utils.WriteSuccessWithMessage(w, http.StatusOK, "ignore region deleted", nil)
}

// Trends returns the suite's daily regression series
// @Summary Suite trends
// @Tags Suites
// @Produce json
// @Param suiteId path int true "Suite ID"
// @Param days query int false "Window in days (default: 30)"
// @Success 200 {array} regression.TrendPoint "Daily series, ascending"
// @Router /suites/{suiteId}/trends [get]
func (h *SuiteHandler) Trends(w http.ResponseWriter, r *http.Request) {
	suiteID, err := urlParamInt64(r, "suiteId")
	if err != nil {
		writeServiceError(w, err, "invalid suiteId")
		return
	}

	days := 30
	if raw := r.URL.Query().Get("days"); raw != "" {
		days, err = strconv.Atoi(raw)
		if err != nil || days <= 0 {
			utils.WriteError(w, errors.BadRequest("days must be a positive integer"))
			return
		}
	}

	points, err := h.regressions.Trends(r.Context(), suiteID, days)
	if err != nil {
		writeServiceError(w, err, "Failed to get trends")
		return
	}

	utils.WriteSuccess(w, http.StatusOK, points)
}
