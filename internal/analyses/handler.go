package analyses

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"energydocs-backend/internal/extract"
	"energydocs-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the analyses service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches document and analysis routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/documents", h.uploadDocument)
	rg.GET("/analyses", h.listAnalyses)
	rg.GET("/analyses/:id", h.getAnalysis)
	rg.GET("/supported-formats", h.supportedFormats)
}

// RegisterTaskRoutes attaches the task polling route. It is registered on its
// own group so the status-poll rate limit applies only here.
func (h *Handler) RegisterTaskRoutes(rg *gin.RouterGroup) {
	rg.GET("/tasks/:id", h.getTask)
}

func (h *Handler) uploadDocument(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "file is required", nil)
		return
	}

	src, err := file.Open()
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to read upload", nil)
		return
	}
	defer src.Close()

	taskID, err := h.Svc.Submit(c.Request.Context(), file.Filename, src)
	if err != nil {
		switch {
		case errors.Is(err, ErrUnsupportedType):
			respond.Error(c, http.StatusBadRequest, "unsupported_type", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to save upload", nil)
		}
		return
	}

	respond.JSON(c, http.StatusAccepted, gin.H{"taskId": taskID})
}

func (h *Handler) getTask(c *gin.Context) {
	taskID := c.Param("id")
	status, ok := h.Svc.Task(taskID)
	if !ok {
		respond.Error(c, http.StatusNotFound, "not_found", "task not found", nil)
		return
	}
	respond.OK(c, status)
}

func (h *Handler) getAnalysis(c *gin.Context) {
	analysisID := c.Param("id")
	if analysisID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "analysis id is required", nil)
		return
	}

	analysis, err := h.Svc.Get(c.Request.Context(), analysisID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "analysis not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch analysis", nil)
		}
		return
	}

	respond.OK(c, analysis)
}

func (h *Handler) listAnalyses(c *gin.Context) {
	limit := 20
	offset := 0

	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	if limit < 0 {
		limit = 0
	}
	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}
	if offset < 0 {
		offset = 0
	}

	analyses, err := h.Svc.List(c.Request.Context(), limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list analyses", nil)
		return
	}

	resp := make([]gin.H, 0, len(analyses))
	for _, a := range analyses {
		item := gin.H{
			"id":               a.ID,
			"originalFilename": a.OriginalFilename,
			"status":           a.Status,
			"riskFlagCount":    len(a.RiskFlags),
			"createdAt":        a.CreatedAt,
		}
		if a.Facts != nil && a.Facts.ProjectName != nil {
			item["projectName"] = *a.Facts.ProjectName
		}
		resp = append(resp, item)
	}
	respond.OK(c, resp)
}

func (h *Handler) supportedFormats(c *gin.Context) {
	descriptions := map[string]string{
		".pdf":  "PDF documents",
		".docx": "Microsoft Word documents",
		".doc":  "Legacy Microsoft Word documents",
	}
	formats := make([]gin.H, 0, len(extract.SupportedExtensions))
	for _, ext := range extract.SupportedExtensions {
		formats = append(formats, gin.H{
			"extension":   ext,
			"description": descriptions[ext],
		})
	}
	respond.OK(c, gin.H{"supportedFormats": formats})
}
