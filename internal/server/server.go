// Package server exposes the allocation engine over HTTP.
package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/tabsplit-dev/tabsplit/internal/extract"
	"github.com/tabsplit-dev/tabsplit/internal/model"
	"github.com/tabsplit-dev/tabsplit/internal/money"
	"github.com/tabsplit-dev/tabsplit/internal/split"
	"github.com/tabsplit-dev/tabsplit/internal/storage"
)

// Server wires the extraction and allocation services behind a gin router.
// The extractor is optional; when nil the extract endpoint reports the
// service as unavailable.
type Server struct {
	store     storage.Store
	extractor *extract.Extractor
	defaults  split.Config
}

func New(store storage.Store, extractor *extract.Extractor, defaults split.Config) *Server {
	return &Server{store: store, extractor: extractor, defaults: defaults}
}

// Router builds the HTTP routes. Callers own the engine's lifecycle.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
	}))

	r.GET("/healthz", s.health)

	api := r.Group("/api/v1")
	api.POST("/extract", s.extractReceipt)
	api.POST("/allocate", s.allocate)
	api.POST("/receipts", s.createReceipt)
	api.GET("/receipts", s.listReceipts)
	api.GET("/receipts/:id", s.getReceipt)
	api.POST("/receipts/:id/settlement", s.settleReceipt)
	api.GET("/receipts/:id/settlement", s.getSettlement)

	return r
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type extractRequest struct {
	Text string `json:"text" binding:"required"`
}

func (s *Server) extractReceipt(c *gin.Context) {
	if s.extractor == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "extraction service not configured"})
		return
	}
	var req extractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text field is required"})
		return
	}
	candidate, err := s.extractor.Extract(c.Request.Context(), req.Text)
	if err != nil {
		slog.Error("extraction failed", "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, candidate)
}

type allocateRequest struct {
	Receipt      model.Receipt       `json:"receipt"`
	Participants []model.Participant `json:"participants"`
	Assignments  split.Assignment    `json:"assignments"`
	Config       *split.Config       `json:"config"`
}

func (s *Server) allocate(c *gin.Context) {
	var req allocateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	breakdown, err := s.runAllocation(req)
	if err != nil {
		writeAllocationError(c, err)
		return
	}
	c.JSON(http.StatusOK, breakdown)
}

func (s *Server) runAllocation(req allocateRequest) (model.SettlementBreakdown, error) {
	cfg := s.defaults
	if req.Config != nil {
		cfg = *req.Config
	}
	return split.Allocate(req.Receipt, req.Participants, req.Assignments, cfg)
}

func (s *Server) createReceipt(c *gin.Context) {
	var receipt model.Receipt
	if err := c.ShouldBindJSON(&receipt); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := receipt.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.store.SaveReceipt(c.Request.Context(), &receipt); err != nil {
		slog.Error("saving receipt failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not save receipt"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": receipt.ID})
}

func (s *Server) listReceipts(c *gin.Context) {
	summaries, err := s.store.ListReceipts(c.Request.Context())
	if err != nil {
		slog.Error("listing receipts failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list receipts"})
		return
	}
	if summaries == nil {
		summaries = []storage.ReceiptSummary{}
	}
	c.JSON(http.StatusOK, summaries)
}

func (s *Server) getReceipt(c *gin.Context) {
	receipt, err := s.store.GetReceipt(c.Request.Context(), c.Param("id"))
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "receipt not found"})
		return
	}
	if err != nil {
		slog.Error("loading receipt failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load receipt"})
		return
	}
	c.JSON(http.StatusOK, receipt)
}

type settleRequest struct {
	Participants []model.Participant `json:"participants"`
	Assignments  split.Assignment    `json:"assignments"`
	Config       *split.Config       `json:"config"`
}

func (s *Server) settleReceipt(c *gin.Context) {
	id := c.Param("id")
	receipt, err := s.store.GetReceipt(c.Request.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "receipt not found"})
		return
	}
	if err != nil {
		slog.Error("loading receipt failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load receipt"})
		return
	}

	var req settleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	breakdown, err := s.runAllocation(allocateRequest{
		Receipt:      *receipt,
		Participants: req.Participants,
		Assignments:  req.Assignments,
		Config:       req.Config,
	})
	if err != nil {
		writeAllocationError(c, err)
		return
	}
	if err := s.store.SaveSettlement(c.Request.Context(), id, &breakdown); err != nil {
		slog.Error("saving settlement failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not save settlement"})
		return
	}
	c.JSON(http.StatusOK, breakdown)
}

func (s *Server) getSettlement(c *gin.Context) {
	breakdown, err := s.store.GetSettlement(c.Request.Context(), c.Param("id"))
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "settlement not found"})
		return
	}
	if err != nil {
		slog.Error("loading settlement failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load settlement"})
		return
	}
	c.JSON(http.StatusOK, breakdown)
}

func writeAllocationError(c *gin.Context, err error) {
	var incomplete split.IncompleteAssignmentError
	var mismatch money.CurrencyMismatchError
	var negative split.NegativeShareError
	switch {
	case errors.As(err, &incomplete):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "unassigned_items": incomplete.Items})
	case errors.As(err, &mismatch):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &negative):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
}
