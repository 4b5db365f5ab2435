package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/vidtube/backend/internal/apperror"
	"github.com/emilythestrangee/vidtube/backend/internal/media"
)

type Uploader interface {
	Upload(ctx context.Context, kind media.Kind, body io.Reader, size int64, contentType string) (string, error)
}

// multipart overhead allowed on top of the largest file
const uploadSlack = 1 << 20

type UploadHandler struct {
	uploader Uploader
	maxBody  int64
}

func NewUploadHandler(uploader Uploader) *UploadHandler {
	return &UploadHandler{uploader: uploader, maxBody: media.MaxVideoSize + uploadSlack}
}

var errUploadTooLarge = apperror.Validation("Upload exceeds the maximum size")

// Upload stores the multipart "file" field and returns its URL. The "kind"
// form field selects video (default), thumbnail or avatar.
func (h *UploadHandler) Upload(c *gin.Context) {
	if _, ok := requireUser(c); !ok {
		return
	}
	if h.uploader == nil {
		_ = c.Error(apperror.Upstream("Media storage is not configured", nil))
		return
	}
	if c.Request.ContentLength > h.maxBody {
		_ = c.Error(errUploadTooLarge)
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBody)

	header, err := c.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			_ = c.Error(errUploadTooLarge)
			return
		}
		_ = c.Error(apperror.Validation("A file is required in the \"file\" field"))
		return
	}
	kind := media.Kind(c.DefaultPostForm("kind", string(media.KindVideo)))
	if _, err := media.Validate(kind, header.Size, header.Header.Get("Content-Type")); err != nil {
		_ = c.Error(err)
		return
	}

	file, err := header.Open()
	if err != nil {
		_ = c.Error(apperror.Validation("Could not read the uploaded file"))
		return
	}
	defer file.Close()

	url, err := h.uploader.Upload(c.Request.Context(), kind, file, header.Size, header.Header.Get("Content-Type"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"url": url, "kind": kind})
}
