package validators

import (
	"net/http"
	"strconv"

	"github.com/campusbite/campusbite-backend/pkg/enums"
	pkgerrors "github.com/campusbite/campusbite-backend/pkg/errors"
	"github.com/campusbite/campusbite-backend/pkg/pagination"
)

// Pagination reads page/limit query params; absent or malformed values fall
// back to the defaults via Normalize.
func Pagination(r *http.Request) pagination.Params {
	params := pagination.Params{}
	if raw := r.URL.Query().Get("page"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			params.Page = v
		}
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			params.Limit = v
		}
	}
	return params.Normalize()
}

// StatusFilter reads an optional ?status= param. An unknown status is a
// validation error rather than an empty result set.
func StatusFilter(r *http.Request) (*enums.OrderStatus, error) {
	raw := r.URL.Query().Get("status")
	if raw == "" {
		return nil, nil
	}
	status, err := enums.ParseOrderStatus(raw)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unknown status filter")
	}
	return &status, nil
}
