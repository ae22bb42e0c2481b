package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mohdashiqtp/procurement-app/api/responses"
	"github.com/mohdashiqtp/procurement-app/internal/items"
	"github.com/mohdashiqtp/procurement-app/pkg/config"
	pkgerrors "github.com/mohdashiqtp/procurement-app/pkg/errors"
	"github.com/mohdashiqtp/procurement-app/pkg/logger"
)

const (
	imagesField        = "images"
	multipartMemory    = 8 << 20
	multipartOverheads = 1 << 20
)

// ItemAddImages accepts a multipart upload under the "images" field.
func ItemAddImages(svc items.Service, cfg config.UploadsConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			itemServiceUnavailable(w, r, logg)
			return
		}
		id, err := pathID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, int64(cfg.MaxFiles)*cfg.MaxFileBytes()+multipartOverheads)
		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart upload"))
			return
		}
		defer r.MultipartForm.RemoveAll()

		files := r.MultipartForm.File[imagesField]
		item, err := svc.AddImages(r.Context(), id, files)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

func ItemRemoveImage(svc items.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			itemServiceUnavailable(w, r, logg)
			return
		}
		id, err := pathID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		item, err := svc.RemoveImage(r.Context(), id, chi.URLParam(r, "name"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}
