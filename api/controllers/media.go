package controllers

import (
	"fmt"
	"io"
	"net/http"
	"path"
	"time"

	"github.com/google/uuid"

	"github.com/campusbite/campusbite-backend/api/middleware"
	"github.com/campusbite/campusbite-backend/api/responses"
	pkgerrors "github.com/campusbite/campusbite-backend/pkg/errors"
	"github.com/campusbite/campusbite-backend/pkg/logger"
	"github.com/campusbite/campusbite-backend/pkg/storage/gcs"
)

// MediaUpload accepts a multipart image and stores it under the vendor's
// prefix, returning the public URL for use on menu items and logos.
func MediaUpload(uploader gcs.Uploader, maxUploadMB int, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if uploader == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "media storage unavailable"))
			return
		}

		vendorID := middleware.VendorIDFromContext(r.Context())
		if vendorID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "vendor context missing"))
			return
		}

		maxBytes := int64(maxUploadMB) << 20
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
		if err := r.ParseMultipartForm(maxBytes); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid upload"))
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "file field is required"))
			return
		}
		defer func() { _ = file.Close() }()

		data, err := io.ReadAll(file)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unreadable upload"))
			return
		}

		contentType := header.Header.Get("Content-Type")
		name := fmt.Sprintf("vendors/%s/%d-%s%s",
			vendorID,
			time.Now().UTC().Unix(),
			uuid.NewString()[:8],
			path.Ext(header.Filename),
		)

		url, err := uploader.Upload(r.Context(), data, name, contentType)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "media upload failed"))
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]string{"url": url})
	}
}
