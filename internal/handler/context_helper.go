package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Karama2000/kara-app-sub001/internal/backend"
	"github.com/Karama2000/kara-app-sub001/internal/middleware"
	"github.com/Karama2000/kara-app-sub001/internal/session"
	appErrors "github.com/Karama2000/kara-app-sub001/pkg/errors"
	"github.com/Karama2000/kara-app-sub001/pkg/response"
)

// sessionFromContext returns the resolved session or writes a 401.
func sessionFromContext(c *gin.Context) (*session.Session, bool) {
	sess, ok := middleware.CurrentSession(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return nil, false
	}
	return sess, true
}

func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "corps de requête invalide"))
		return false
	}
	return true
}

func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "multipart/form-data")
}

// uploadedFile opens an optional multipart file. A missing part yields a nil file.
// The returned close func is always safe to call.
func uploadedFile(c *gin.Context, field string) (*backend.File, func(), error) {
	noop := func() {}
	header, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, noop, nil
		}
		return nil, noop, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "fichier illisible")
	}
	f, err := header.Open()
	if err != nil {
		return nil, noop, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "fichier illisible")
	}
	file := &backend.File{
		Field:       field,
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Content:     f,
	}
	return file, func() { _ = f.Close() }, nil
}

func withMeta(c *gin.Context, extra map[string]interface{}) map[string]interface{} {
	meta := middleware.ExtractMeta(c)
	if meta == nil {
		meta = map[string]interface{}{}
	}
	for k, v := range extra {
		meta[k] = v
	}
	if len(meta) == 0 {
		return nil
	}
	return meta
}
