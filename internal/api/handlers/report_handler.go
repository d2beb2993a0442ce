package handlers

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/andresuchdata/chicken-settlement/backend-go/internal/domain"
	"github.com/andresuchdata/chicken-settlement/backend-go/internal/repository"
	"github.com/andresuchdata/chicken-settlement/backend-go/internal/service"
	"github.com/andresuchdata/chicken-settlement/backend-go/internal/settlement"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type ReportHandler struct {
	service    *service.ReportService
	loc        *time.Location
	periodDays int
	now        func() time.Time
}

func NewReportHandler(service *service.ReportService, loc *time.Location, periodDays int) *ReportHandler {
	if loc == nil {
		loc = time.Local
	}
	if periodDays < 1 {
		periodDays = settlement.DefaultPeriodDays
	}
	return &ReportHandler{service: service, loc: loc, periodDays: periodDays, now: time.Now}
}

// parseRequest reads start, end and cost_basis. Without start and end the
// current settlement period ending today is used.
func (h *ReportHandler) parseRequest(c *gin.Context) (service.ReportRequest, error) {
	var req service.ReportRequest

	start := strings.TrimSpace(c.Query("start"))
	end := strings.TrimSpace(c.Query("end"))
	switch {
	case start == "" && end == "":
		rng, err := settlement.PeriodEndingAt(h.now().In(h.loc), h.periodDays)
		if err != nil {
			return req, err
		}
		req.Range = rng
	case start == "" || end == "":
		return req, errors.New("start and end must be given together")
	default:
		rng, err := domain.ParseDateRange(start, end, h.loc)
		if err != nil {
			return req, err
		}
		req.Range = rng
	}

	if raw := strings.TrimSpace(c.Query("cost_basis")); raw != "" {
		cost, err := decimal.NewFromString(raw)
		if err != nil {
			return req, errors.New("cost_basis must be a number")
		}
		if cost.IsNegative() {
			return req, errors.New("cost_basis must not be negative")
		}
		req.CostBasis = &cost
	}
	return req, nil
}

// GetReport returns the display projection.
func (h *ReportHandler) GetReport(c *gin.Context) {
	req, err := h.parseRequest(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	display, err := h.service.Display(c.Request.Context(), req)
	if err != nil {
		writeReportError(c, "failed to generate report", err)
		return
	}
	c.JSON(http.StatusOK, display)
}

// GetTable returns the category table with its summary row.
func (h *ReportHandler) GetTable(c *gin.Context) {
	req, err := h.parseRequest(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	table, err := h.service.Table(c.Request.Context(), req)
	if err != nil {
		writeReportError(c, "failed to generate table", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"header": table.Header, "rows": table.Rows})
}

// ExportReport streams the generated workbook.
func (h *ReportHandler) ExportReport(c *gin.Context) {
	req, err := h.parseRequest(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	result, err := h.service.Export(c.Request.Context(), req)
	if err != nil {
		writeReportError(c, "failed to export report", err)
		return
	}
	if result.ObjectKey != "" {
		c.Header("X-Object-Key", result.ObjectKey)
	}
	c.FileAttachment(result.Path, filepath.Base(result.Path))
}

// ListRuns returns recent report runs.
func (h *ReportHandler) ListRuns(c *gin.Context) {
	filter := repository.RunFilter{
		Source: strings.TrimSpace(c.Query("source")),
		From:   strings.TrimSpace(c.Query("from")),
		To:     strings.TrimSpace(c.Query("to")),
	}
	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil && limit > 0 {
		filter.Limit = limit
	}

	runs, err := h.service.ListRuns(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch runs", "details": err.Error()})
		return
	}
	if runs == nil {
		runs = make([]domain.ReportRun, 0)
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

// GetRun returns one run with its category totals.
func (h *ReportHandler) GetRun(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid run id"})
		return
	}

	run, err := h.service.GetRun(c.Request.Context(), id)
	if errors.Is(err, repository.ErrRunNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch run", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, run)
}

func writeReportError(c *gin.Context, message string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrInvalidDateRange):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrDataSourceTimeout), errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{"error": message, "details": err.Error()})
}

// InvalidateCache drops cached reports after prices or sheet rows change.
func (h *ReportHandler) InvalidateCache(c *gin.Context) {
	if err := h.service.InvalidateCache(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to invalidate cache", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
