package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	booksapp "github.com/smallbooks/backend/internal/application/books"
	"github.com/smallbooks/backend/internal/interfaces/http/dto"
)

// PaymentHandler handles payment endpoints
type PaymentHandler struct {
	BaseHandler
	engine *booksapp.Engine
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(engine *booksapp.Engine) *PaymentHandler {
	return &PaymentHandler{engine: engine}
}

// RegisterRoutes registers payment routes on the given group
func (h *PaymentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	payments := rg.Group("/payments")
	{
		payments.POST("", h.Create)
		payments.GET("", h.List)
		payments.GET("/:id", h.Get)
		payments.DELETE("/:id", h.Delete)
	}
}

// Create records a payment, with optional document allocations
func (h *PaymentHandler) Create(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.BadRequest(c, "Invalid company ID")
		return
	}

	var req booksapp.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	payment, err := h.engine.CreatePayment(c.Request.Context(), companyID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, payment)
}

// Get fetches a payment with its allocations
func (h *PaymentHandler) Get(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.BadRequest(c, "Invalid company ID")
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid payment ID")
		return
	}

	payment, err := h.engine.GetPayment(c.Request.Context(), companyID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, payment)
}

// List lists payments for a company
func (h *PaymentHandler) List(c *gin.Context) {
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

	payments, total, err := h.engine.ListPayments(c.Request.Context(), companyID, toFilter(listReq))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, payments, total, listReq.Page, listReq.PageSize)
}

// Delete removes a payment, mirror-reversing every effect it caused
func (h *PaymentHandler) Delete(c *gin.Context) {
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
		h.BadRequest(c, "Invalid payment ID")
		return
	}

	if err := h.engine.DeletePayment(c.Request.Context(), companyID, id, userID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
