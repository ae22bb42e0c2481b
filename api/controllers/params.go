package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mohdashiqtp/procurement-app/api/validators"
)

func pathID(r *http.Request) (uuid.UUID, error) {
	return validators.ParsePathUUID(chi.URLParam(r, "id"), "id")
}

type paging struct {
	page  int
	limit int
	sort  string
}

func parsePaging(r *http.Request, defaultLimit int) (paging, error) {
	page, err := validators.ParseQueryInt(r, "page", 1, 1, 1_000_000)
	if err != nil {
		return paging{}, err
	}
	limit, err := validators.ParseQueryInt(r, "limit", defaultLimit, 1, 500)
	if err != nil {
		return paging{}, err
	}
	return paging{
		page:  page,
		limit: limit,
		sort:  validators.SanitizeString(r.URL.Query().Get("sort"), 200),
	}, nil
}
