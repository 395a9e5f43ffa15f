package handler

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"ndclink/internal/domain"
	"ndclink/internal/export"
	"ndclink/internal/port"
)

const (
	defaultLimit = 50
	maxLimit     = 1000

	// exportPageSize bounds how many rows are pulled from the database per
	// round trip while streaming an export.
	exportPageSize = 5000
)

// CrossRefHandler serves read access to the NDC cross-reference table.
type CrossRefHandler struct {
	repo port.CrossRefRepository
}

// NewCrossRefHandler creates a new CrossRefHandler.
func NewCrossRefHandler(repo port.CrossRefRepository) *CrossRefHandler {
	return &CrossRefHandler{repo: repo}
}

// GetByNDC handles GET /api/v1/crossrefs/:ndc
func (h *CrossRefHandler) GetByNDC(c *gin.Context) {
	ndc := c.Param("ndc")
	if ndc == "" {
		RespondError(c, http.StatusBadRequest, "INVALID_NDC", "ndc path parameter is required")
		return
	}

	ref, err := h.repo.GetByNDC(c.Request.Context(), ndc)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, ref)
}

// List handles GET /api/v1/crossrefs
func (h *CrossRefHandler) List(c *gin.Context) {
	offset, limit := parsePagination(c)

	total, err := h.repo.Count(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}

	refs, err := h.repo.List(c.Request.Context(), offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondPaginated(c, refs, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// ExportCSV handles GET /api/v1/crossrefs/export/csv
func (h *CrossRefHandler) ExportCSV(c *gin.Context) {
	filename := export.BuildFilename("ndc crossref", "csv")
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)

	if _, err := c.Writer.Write(export.BOM); err != nil {
		return
	}

	w := export.NewWriter(c.Writer)
	if err := w.WriteHeader(); err != nil {
		return
	}

	for offset := 0; ; offset += exportPageSize {
		refs, err := h.repo.List(c.Request.Context(), offset, exportPageSize)
		if err != nil {
			return
		}
		if len(refs) == 0 {
			break
		}
		if err := w.WriteRefs(refs); err != nil {
			return
		}
		w.Flush()
	}
	w.Flush()
}

// ExportXLSX handles GET /api/v1/crossrefs/export/xlsx
func (h *CrossRefHandler) ExportXLSX(c *gin.Context) {
	refs, err := h.collectAll(c)
	if err != nil {
		HandleError(c, err)
		return
	}

	filename := export.BuildFilename("ndc crossref", "xlsx")
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)

	if err := export.WriteXLSX(c.Writer, refs); err != nil {
		log.Printf("handler.CrossRefHandler: xlsx export failed: %v", err)
	}
}

func (h *CrossRefHandler) collectAll(c *gin.Context) ([]domain.CrossReference, error) {
	var all []domain.CrossReference
	for offset := 0; ; offset += exportPageSize {
		refs, err := h.repo.List(c.Request.Context(), offset, exportPageSize)
		if err != nil {
			return nil, err
		}
		if len(refs) == 0 {
			return all, nil
		}
		all = append(all, refs...)
	}
}

func parsePagination(c *gin.Context) (offset, limit int) {
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if offset < 0 {
		offset = 0
	}
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLimit)))
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return offset, limit
}
