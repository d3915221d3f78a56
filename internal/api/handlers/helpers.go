package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/snapdiff/snapdiff/internal/pkg/errors"
	"github.com/snapdiff/snapdiff/internal/pkg/utils"
)

// urlParamInt64 parses a chi URL parameter as int64
func urlParamInt64(r *http.Request, name string) (int64, error) {
	value, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || value <= 0 {
		return 0, errors.BadRequest("invalid " + name)
	}
	return value, nil
}

// writeServiceError maps a service error onto the response, preserving the
// status of AppErrors
func writeServiceError(w http.ResponseWriter, err error, fallback string) {
	if appErr, ok := err.(*errors.AppError); ok {
		utils.WriteError(w, appErr)
		return
	}
	utils.WriteError(w, errors.Internal(fallback, err))
}
