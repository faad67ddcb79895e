package handlers

import (
	"errors"
	"net/http"

	"github.com/yantrahq/yantra/internal/api/dto/v1/dashboard"
	"github.com/yantrahq/yantra/internal/api/mapper"
	"github.com/yantrahq/yantra/internal/api/middleware"
	"github.com/yantrahq/yantra/internal/logging"
	"github.com/yantrahq/yantra/internal/service"
	"github.com/yantrahq/yantra/internal/session"
	"github.com/yantrahq/yantra/internal/utils"

	"github.com/gin-gonic/gin"
)

// multipartOverhead is the body allowance above the file limit for the
// multipart envelope.
const multipartOverhead = 1 << 20

// SubmissionHandler accepts round submissions as multipart uploads.
type SubmissionHandler struct {
	submissions *service.SubmissionService
	binder      *session.Binder
	maxBytes    int64
	logger      *logging.Logger
}

func NewSubmissionHandler(submissions *service.SubmissionService, binder *session.Binder, maxBytes int64, logger *logging.Logger) *SubmissionHandler {
	return &SubmissionHandler{submissions: submissions, binder: binder, maxBytes: maxBytes, logger: logger}
}

// Submit stores the "file" form field as the caller's team submission
func (h *SubmissionHandler) Submit(c *gin.Context) {
	sc := middleware.SessionFrom(c)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes+multipartOverhead)

	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			utils.HandleServiceError(c, service.ErrFileTooLarge)
			return
		}
		utils.HandleServiceError(c, service.ErrInvalidInput.Wrap(err))
		return
	}

	file, err := fh.Open()
	if err != nil {
		utils.HandleServiceError(c, service.ErrInvalidInput.Wrap(err))
		return
	}
	defer file.Close()

	submission, err := h.submissions.Submit(c.Request.Context(), sc.Principal(), service.Upload{
		FileName:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Body:        file,
	})
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	if err := h.binder.Resync(c.Request.Context(), sc); err != nil {
		h.logger.Warn("Failed to refresh current team after submission: %v", err)
	}

	utils.HandleCreated(c, dashboard.SubmissionResponse{
		Submission: *mapper.SubmissionToResponse(submission),
		Team:       mapper.TeamDetailsToResponse(sc.CurrentTeam()),
	})
}
