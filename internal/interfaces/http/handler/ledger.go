package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	ledgerapp "github.com/smallbooks/backend/internal/application/ledger"
	"github.com/smallbooks/backend/internal/domain/shared"
	"github.com/smallbooks/backend/internal/interfaces/http/dto"
)

// LedgerHandler handles bank account and contact endpoints
type LedgerHandler struct {
	BaseHandler
	service *ledgerapp.Service
}

// NewLedgerHandler creates a new LedgerHandler
func NewLedgerHandler(service *ledgerapp.Service) *LedgerHandler {
	return &LedgerHandler{service: service}
}

// RegisterRoutes registers ledger routes on the given group
func (h *LedgerHandler) RegisterRoutes(rg *gin.RouterGroup) {
	banks := rg.Group("/bank-accounts")
	{
		banks.POST("", h.CreateBankAccount)
		banks.GET("", h.ListBankAccounts)
		banks.GET("/:id", h.GetBankAccount)
	}

	contacts := rg.Group("/contacts")
	{
		contacts.POST("", h.CreateContact)
		contacts.GET("", h.ListContacts)
		contacts.GET("/:id", h.GetContact)
	}
}

// CreateBankAccount creates a bank account with an opening balance
func (h *LedgerHandler) CreateBankAccount(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.BadRequest(c, "Invalid company ID")
		return
	}

	var req ledgerapp.CreateBankAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	account, err := h.service.CreateBankAccount(c.Request.Context(), companyID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, account)
}

// GetBankAccount gets a bank account by ID
func (h *LedgerHandler) GetBankAccount(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.BadRequest(c, "Invalid company ID")
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid bank account ID")
		return
	}

	account, err := h.service.GetBankAccount(c.Request.Context(), companyID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, account)
}

// ListBankAccounts lists bank accounts for a company
func (h *LedgerHandler) ListBankAccounts(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.BadRequest(c, "Invalid company ID")
		return
	}

	listReq, ok := h.bindListRequest(c)
	if !ok {
		return
	}

	accounts, total, err := h.service.ListBankAccounts(c.Request.Context(), companyID, toFilter(listReq))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, accounts, total, listReq.Page, listReq.PageSize)
}

// CreateContact creates a contact with an opening balance
func (h *LedgerHandler) CreateContact(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.BadRequest(c, "Invalid company ID")
		return
	}

	var req ledgerapp.CreateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	contact, err := h.service.CreateContact(c.Request.Context(), companyID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, contact)
}

// GetContact gets a contact by ID
func (h *LedgerHandler) GetContact(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.BadRequest(c, "Invalid company ID")
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid contact ID")
		return
	}

	contact, err := h.service.GetContact(c.Request.Context(), companyID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, contact)
}

// ListContacts lists contacts for a company
func (h *LedgerHandler) ListContacts(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.BadRequest(c, "Invalid company ID")
		return
	}

	listReq, ok := h.bindListRequest(c)
	if !ok {
		return
	}

	contacts, total, err := h.service.ListContacts(c.Request.Context(), companyID, toFilter(listReq))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, contacts, total, listReq.Page, listReq.PageSize)
}

func (h *LedgerHandler) bindListRequest(c *gin.Context) (dto.ListRequest, bool) {
	var listReq dto.ListRequest
	if err := c.ShouldBindQuery(&listReq); err != nil {
		h.BadRequest(c, err.Error())
		return listReq, false
	}
	listReq.Normalize()
	return listReq, true
}

func toFilter(r dto.ListRequest) shared.Filter {
	return shared.Filter{
		Page:     r.Page,
		PageSize: r.PageSize,
		OrderBy:  r.OrderBy,
		OrderDir: r.OrderDir,
	}
}
