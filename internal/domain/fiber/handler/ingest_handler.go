package handler

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"talent-graph/internal/apperror"
	"talent-graph/internal/dto"
	"talent-graph/internal/middleware"
	"talent-graph/internal/response"
	"talent-graph/internal/usecase"
	"talent-graph/internal/util"
)

const (
	maxUploadSize           = 5 * 1024 * 1024
	defaultBatchConcurrency = 4
)

type IngestHandler struct {
	uc *usecase.IngestionUsecase
}

func NewIngestHandler(uc *usecase.IngestionUsecase) *IngestHandler {
	return &IngestHandler{uc: uc}
}

func (h *IngestHandler) RegisterRoutes(app *fiber.App) {
	app.Post("/candidates", middleware.RateLimiter(20, time.Minute), h.IngestCandidate)
	app.Post("/candidates/batch", middleware.RateLimiter(5, time.Minute), h.IngestBatch)
	app.Post("/candidates/upload", middleware.RateLimiter(10, time.Minute), h.UploadCandidate)
	app.Post("/jobs", h.UpsertJob)
	app.Get("/jobs", h.ListJobs)
}

func (h *IngestHandler) IngestCandidate(c *fiber.Ctx) error {
	var req dto.IngestDocumentRequest
	if err := c.BodyParser(&req); err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "invalid request body",
		}, err)
	}
	if strings.TrimSpace(req.Text) == "" {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "text is required",
		}, util.NewFormError("text is required", map[string]string{"text": "required"}))
	}

	report, err := h.uc.IngestDocument(c.Context(), usecase.Document{ID: req.ID, Text: req.Text})
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    errorStatus(err),
			Message: "failed to ingest document",
		}, err)
	}

	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Code:    fiber.StatusCreated,
		Message: "Success ingest document",
		Data:    report,
	})
}

func (h *IngestHandler) IngestBatch(c *fiber.Ctx) error {
	var req dto.IngestBatchRequest
	if err := c.BodyParser(&req); err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "invalid request body",
		}, err)
	}
	if len(req.Documents) == 0 {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "documents is required",
		}, util.NewFormError("documents is required", map[string]string{"documents": "required"}))
	}

	docs := make([]usecase.Document, 0, len(req.Documents))
	for _, d := range req.Documents {
		docs = append(docs, usecase.Document{ID: d.ID, Text: d.Text})
	}
	report := h.uc.IngestBatch(c.Context(), docs, defaultBatchConcurrency)

	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success ingest batch",
		Data:    report,
	})
}

func (h *IngestHandler) UploadCandidate(c *fiber.Ctx) error {
	text, err := h.processFile(c, "resume", "./uploads/resumes/")
	if err != nil {
		return err
	}

	doc := usecase.Document{ID: c.FormValue("id"), Text: text}
	report, err := h.uc.IngestDocument(c.Context(), doc)
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    errorStatus(err),
			Message: "failed to ingest uploaded resume",
		}, err)
	}

	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Code:    fiber.StatusCreated,
		Message: "Success ingest resume",
		Data:    report,
	})
}

func (h *IngestHandler) UpsertJob(c *fiber.Ctx) error {
	var req dto.UpsertJobRequest
	if err := c.BodyParser(&req); err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "invalid request body",
		}, err)
	}
	if strings.TrimSpace(req.Title) == "" {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "title is required",
		}, util.NewFormError("title is required", map[string]string{"title": "required"}))
	}

	seed := usecase.JobSeed{ID: req.ID, Title: req.Title, RequiredSkills: req.RequiredSkills}
	if err := h.uc.SeedJobs(c.Context(), []usecase.JobSeed{seed}); err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    errorStatus(err),
			Message: "failed to upsert job",
		}, err)
	}

	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Code:    fiber.StatusCreated,
		Message: "Success upsert job",
	})
}

func (h *IngestHandler) ListJobs(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	pageSize := c.QueryInt("page_size", 20)
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	jobs, total, err := h.uc.ListJobs(c.Context(), page, pageSize)
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    errorStatus(err),
			Message: "failed to list jobs",
		}, err)
	}

	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message:    "Success list jobs",
		Data:       jobs,
		Pagination: response.NewPagination(page, pageSize, len(jobs), total),
	})
}

func (h *IngestHandler) processFile(c *fiber.Ctx, fieldName, uploadDir string) (string, error) {
	file, err := c.FormFile(fieldName)
	if err != nil {
		return "", util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: fmt.Sprintf("%s file is required", fieldName),
		}, err)
	}

	if file.Size > maxUploadSize {
		return "", util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: fmt.Sprintf("%s file size is too large (max 5MB)", fieldName),
		}, nil)
	}

	savePath := filepath.Join(uploadDir, file.Filename)
	if err := c.SaveFile(file, savePath); err != nil {
		return "", util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: fmt.Sprintf("cannot save %s file", fieldName),
		}, err)
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	var content string
	switch ext {
	case ".pdf":
		content, err = util.ExtractPDFText(savePath)
	case ".txt", ".md":
		var raw []byte
		raw, err = os.ReadFile(savePath)
		content = string(raw)
	default:
		return "", util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: fmt.Sprintf("unsupported %s file type", fieldName),
		}, nil)
	}
	if err != nil {
		return "", util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: fmt.Sprintf("failed to extract %s text", fieldName),
		}, err)
	}

	return content, nil
}

// errorStatus maps pipeline failure classes to HTTP statuses. Dependency
// outages surface as 503 so callers know to retry, not to fix the request.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, apperror.ErrExtractionUnavailable),
		errors.Is(err, apperror.ErrStoreUnavailable):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}
