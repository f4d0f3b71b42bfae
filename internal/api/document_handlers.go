package api

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/mironism/helsi/internal"
	"github.com/mironism/helsi/internal/medical"
)

// PostDocuments accepts one or more files as multipart form data under
// the "files" field and processes them sequentially. Documents that
// fail processing still appear in the response with status failed.
func PostDocuments(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		form, err := c.MultipartForm()
		if err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid multipart form")
			return
		}
		files := form.File["files"]
		if len(files) == 0 {
			HandleError(c, app.Logger(), errors.New("no files in request"), 400, "Upload failed")
			return
		}

		uploads := make([]medical.Upload, 0, len(files))
		for _, fh := range files {
			if fh.Size > medical.MaxFileSize {
				HandleError(c, app.Logger(), errors.New(fh.Filename+" is too large"), 400, "Upload failed")
				return
			}
			mimeType := fh.Header.Get("Content-Type")
			if _, ok := medical.FileTypeFor(mimeType); !ok {
				HandleError(c, app.Logger(), errors.New("unsupported file type "+mimeType), 400, "Upload failed")
				return
			}

			f, err := fh.Open()
			if err != nil {
				HandleError(c, app.Logger(), err, 500, "Failed to read upload")
				return
			}
			content, err := io.ReadAll(f)
			f.Close()
			if err != nil {
				HandleError(c, app.Logger(), err, 500, "Failed to read upload")
				return
			}

			uploads = append(uploads, medical.Upload{
				FileName: fh.Filename,
				MimeType: mimeType,
				Size:     fh.Size,
				Content:  content,
			})
		}

		// Failed documents come back with status failed rather than
		// aborting the batch; the client reads processing_status.
		docs, err := app.Pipeline().ProcessAll(c.Request.Context(), uploads)
		if err != nil {
			if errors.Is(err, internal.ErrNoUser) {
				HandleError(c, app.Logger(), err, 404, "No profile")
				return
			}
			HandleError(c, app.Logger(), err, 500, "Failed to process documents")
			return
		}

		HandleSuccess(c, app.Logger(), docs, map[string]any{"count": len(docs)})
	}
}

func GetDocuments(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := app.UserRepo().GetUser(c.Request.Context())
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to fetch profile")
			return
		}
		if user == nil {
			HandleError(c, app.Logger(), internal.ErrNoUser, 404, "No profile")
			return
		}

		docs, err := app.DocRepo().ListDocuments(c.Request.Context(), user.ID)
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to fetch documents")
			return
		}

		HandleSuccess(c, app.Logger(), docs, map[string]any{"count": len(docs)})
	}
}

func GetDocumentInsights(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		insight, err := app.Pipeline().GenerateMedicalInsights(c.Request.Context())
		if err != nil {
			if errors.Is(err, internal.ErrNoUser) {
				HandleError(c, app.Logger(), err, 404, "No profile")
				return
			}
			HandleError(c, app.Logger(), err, 500, "Failed to generate medical insights")
			return
		}
		HandleSuccess(c, app.Logger(), gin.H{"insight": insight}, nil)
	}
}
