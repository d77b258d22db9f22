package server

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mzhao/ai-invoice-audit/internal/extract"
	"github.com/mzhao/ai-invoice-audit/internal/pipeline"
	"github.com/mzhao/ai-invoice-audit/internal/repository"
	"github.com/mzhao/ai-invoice-audit/internal/vendors"
	"github.com/mzhao/ai-invoice-audit/internal/vlm"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	auditor   *pipeline.Auditor
	auditRepo *repository.AuditRepository
	directory vendors.Directory
	logger    *zap.Logger
}

// NewHandlers creates a new Handlers instance. The directory may be
// nil, in which case vendor checks degrade per the audit core's rules.
func NewHandlers(
	auditor *pipeline.Auditor,
	auditRepo *repository.AuditRepository,
	directory vendors.Directory,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		auditor:   auditor,
		auditRepo: auditRepo,
		directory: directory,
		logger:    logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: gin.H{
			"status":    "healthy",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		},
	})
}

// RunAudit handles POST /api/v1/audits. The invoice document is a
// multipart upload under "document"; contract policy text may be
// supplied in the "policy_text" form field.
func (h *Handlers) RunAudit(c *gin.Context) {
	file, err := c.FormFile("document")
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "multipart field 'document' is required",
		})
		return
	}

	tmpDir, err := os.MkdirTemp("", "invoice-audit-*")
	if err != nil {
		h.logger.Error("Failed to create upload directory", zap.Error(err))
		c.JSON(http.StatusInternalServerError, Response{
			Success: false,
			Error:   "failed to store upload",
		})
		return
	}
	defer os.RemoveAll(tmpDir)

	uploadPath := filepath.Join(tmpDir, filepath.Base(file.Filename))
	if err := c.SaveUploadedFile(file, uploadPath); err != nil {
		h.logger.Error("Failed to save upload", zap.Error(err))
		c.JSON(http.StatusInternalServerError, Response{
			Success: false,
			Error:   "failed to store upload",
		})
		return
	}

	policyText := c.PostForm("policy_text")

	report, err := h.auditor.Run(c.Request.Context(), uploadPath, h.directory, policyText)
	if err != nil {
		status := http.StatusInternalServerError
		var parseErr *extract.ParseError
		var outputErr *vlm.OutputError
		if errors.As(err, &parseErr) || errors.As(err, &outputErr) {
			status = http.StatusUnprocessableEntity
		}
		h.logger.Error("Audit failed", zap.String("file", file.Filename), zap.Error(err))
		c.JSON(status, Response{
			Success: false,
			Error:   err.Error(),
		})
		return
	}

	auditID, err := h.auditRepo.Create(c.Request.Context(), report)
	if err != nil {
		h.logger.Error("Failed to persist audit", zap.Error(err))
		// The audit itself succeeded; return it anyway.
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: gin.H{
			"audit_id": auditID,
			"report":   report,
		},
	})
}

// ListAudits handles GET /api/v1/audits
func (h *Handlers) ListAudits(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	records, err := h.auditRepo.List(c.Request.Context(), limit, offset)
	if err != nil {
		h.logger.Error("Failed to list audits", zap.Error(err))
		c.JSON(http.StatusInternalServerError, Response{
			Success: false,
			Error:   "failed to list audits",
		})
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    records,
	})
}

// GetAudit handles GET /api/v1/audits/:id
func (h *Handlers) GetAudit(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "invalid audit id",
		})
		return
	}

	record, err := h.auditRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, Response{
			Success: false,
			Error:   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    record,
	})
}
