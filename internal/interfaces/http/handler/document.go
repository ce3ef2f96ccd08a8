package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	booksapp "github.com/smallbooks/backend/internal/application/books"
	"github.com/smallbooks/backend/internal/interfaces/http/dto"
)

// DocumentHandler handles document reconciliation endpoints
type DocumentHandler struct {
	BaseHandler
	engine *booksapp.Engine
}

// NewDocumentHandler creates a new DocumentHandler
func NewDocumentHandler(engine *booksapp.Engine) *DocumentHandler {
	return &DocumentHandler{engine: engine}
}

// RegisterRoutes registers document routes on the given group
func (h *DocumentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	docs := rg.Group("/documents/:kind")
	{
		docs.POST("", h.Create)
		docs.GET("", h.List)
		docs.GET("/:id", h.Get)
		docs.PATCH("/:id", h.Update)
		docs.DELETE("/:id", h.Delete)
		docs.POST("/:id/reverse-allocations", h.ReverseAllocations)
	}
}

// Create records a new document
func (h *DocumentHandler) Create(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.BadRequest(c, "Invalid company ID")
		return
	}

	var req booksapp.CreateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	req.Kind = c.Param("kind")

	doc, err := h.engine.CreateDocument(c.Request.Context(), companyID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, doc)
}

// Get fetches a document by kind and id
func (h *DocumentHandler) Get(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.BadRequest(c, "Invalid company ID")
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid document ID")
		return
	}

	doc, err := h.engine.GetDocument(c.Request.Context(), companyID, c.Param("kind"), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, doc)
}

// List lists documents of one kind
func (h *DocumentHandler) List(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.BadRequest(c, "Invalid company ID")
		return
	}

	var listReq dto.ListRequest
	if err := c.ShouldBindQuery(&listReq); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	listReq.Normalize()

	docs, total, err := h.engine.ListDocuments(c.Request.Context(), companyID, c.Param("kind"), toFilter(listReq))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, docs, total, listReq.Page, listReq.PageSize)
}

// Update patches a document. An amount change while allocations exist needs
// an adjustment choice, otherwise the response is a 409 with the allocation
// summary.
func (h *DocumentHandler) Update(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.BadRequest(c, "Invalid company ID")
		return
	}
	userID, err := getUserID(c)
	if err != nil {
		h.BadRequest(c, "Invalid user ID")
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid document ID")
		return
	}

	var req booksapp.UpdateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.engine.UpdateDocument(c.Request.Context(), companyID, c.Param("kind"), id, userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Delete soft-deletes a document, unwinding its ledger effects first
func (h *DocumentHandler) Delete(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.BadRequest(c, "Invalid company ID")
		return
	}
	userID, err := getUserID(c)
	if err != nil {
		h.BadRequest(c, "Invalid user ID")
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid document ID")
		return
	}

	doc, err := h.engine.DeleteDocument(c.Request.Context(), companyID, c.Param("kind"), id, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, doc)
}

// ReverseAllocations unwinds every payment allocation on a document without
// deleting the document itself
func (h *DocumentHandler) ReverseAllocations(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.BadRequest(c, "Invalid company ID")
		return
	}
	userID, err := getUserID(c)
	if err != nil {
		h.BadRequest(c, "Invalid user ID")
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid document ID")
		return
	}

	if err := h.engine.ReverseAllocationsForDocument(c.Request.Context(), companyID, c.Param("kind"), id, userID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
