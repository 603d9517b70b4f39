package support

import (
	"errors"
	"net/http"

	"github.com/Ar-Aj/desi-prompts-backend2-sub000/internal/shared/middleware"
	"github.com/Ar-Aj/desi-prompts-backend2-sub000/internal/shared/pagination"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Handler handles support HTTP requests.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new support handler.
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers public ticket routes. Guests may open and
// read tickets by ticket number.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	tickets := r.Group("/tickets")
	{
		tickets.POST("", h.OpenTicket)
		tickets.GET("/:ticket_no", h.GetTicket)
		tickets.POST("/:ticket_no/reply", h.Reply)
	}
}

// RegisterAdminRoutes registers admin ticket routes.
func (h *Handler) RegisterAdminRoutes(r *gin.RouterGroup) {
	tickets := r.Group("/tickets")
	{
		tickets.GET("", h.ListTickets)
		tickets.POST("/:id/reply", h.AdminReply)
		tickets.POST("/:id/close", h.CloseTicket)
	}
}

// OpenTicketRequest opens a new ticket.
type OpenTicketRequest struct {
	Email      string `json:"email" binding:"required,email"`
	Name       string `json:"name" binding:"omitempty,max=100"`
	PurchaseID string `json:"purchase_id" binding:"omitempty,max=16"`
	Subject    string `json:"subject" binding:"required,max=200"`
	Body       string `json:"body" binding:"required,max=8000"`
}

// ReplyRequest appends a message to a ticket.
type ReplyRequest struct {
	Body string `json:"body" binding:"required,max=8000"`
}

// OpenTicket handles POST /tickets
func (h *Handler) OpenTicket(c *gin.Context) {
	var req OpenTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{
			"code":    "INVALID_REQUEST",
			"message": err.Error(),
		}})
		return
	}

	in := &OpenTicketInput{
		Email:      req.Email,
		Name:       req.Name,
		PurchaseID: req.PurchaseID,
		Subject:    req.Subject,
		Body:       req.Body,
	}
	if middleware.IsAuthenticated(c) {
		id := middleware.GetUserID(c)
		in.UserID = &id
	}

	ticket, err := h.service.Open(c.Request.Context(), in)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ticket)
}

// GetTicket handles GET /tickets/:ticket_no
func (h *Handler) GetTicket(c *gin.Context) {
	ticket, err := h.service.Get(c.Request.Context(), c.Param("ticket_no"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, ticket)
}

// Reply handles POST /tickets/:ticket_no/reply
func (h *Handler) Reply(c *gin.Context) {
	ticket, err := h.service.Get(c.Request.Context(), c.Param("ticket_no"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	var req ReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{
			"code":    "INVALID_REQUEST",
			"message": err.Error(),
		}})
		return
	}

	updated, err := h.service.Reply(c.Request.Context(), ticket.ID, req.Body, false)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// ListTickets handles GET /admin/tickets
func (h *Handler) ListTickets(c *gin.Context) {
	var p pagination.Pagination
	if err := c.ShouldBindQuery(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{
			"code":    "INVALID_REQUEST",
			"message": err.Error(),
		}})
		return
	}
	p.Normalize()

	tickets, total, err := h.service.List(c.Request.Context(), TicketStatus(c.Query("status")), &p)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"tickets":     tickets,
		"total":       total,
		"page":        p.Page,
		"page_size":   p.PageSize,
		"total_pages": p.TotalPages(total),
	})
}

// AdminReply handles POST /admin/tickets/:id/reply
func (h *Handler) AdminReply(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{
			"code":    "INVALID_REQUEST",
			"message": "invalid ticket id",
		}})
		return
	}

	var req ReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{
			"code":    "INVALID_REQUEST",
			"message": err.Error(),
		}})
		return
	}

	ticket, err := h.service.Reply(c.Request.Context(), id, req.Body, true)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, ticket)
}

// CloseTicket handles POST /admin/tickets/:id/close
func (h *Handler) CloseTicket(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{
			"code":    "INVALID_REQUEST",
			"message": "invalid ticket id",
		}})
		return
	}

	if err := h.service.Close(c.Request.Context(), id); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "closed"})
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrTicketNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": gin.H{
			"code":    "TICKET_NOT_FOUND",
			"message": "ticket not found",
		}})
	case errors.Is(err, ErrTicketClosed):
		c.JSON(http.StatusConflict, gin.H{"error": gin.H{
			"code":    "TICKET_CLOSED",
			"message": "ticket is closed",
		}})
	default:
		h.logger.Error("support request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{
			"code":    "INTERNAL_ERROR",
			"message": "internal server error",
		}})
	}
}
