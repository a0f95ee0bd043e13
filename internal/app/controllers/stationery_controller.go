package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/yigit/placement/internal/app/models/dto"
	"github.com/yigit/placement/internal/app/services"
	"github.com/yigit/placement/internal/middleware"
	"github.com/yigit/placement/internal/pkg/helpers"
)

// StationeryController handles the committee and technical stationery desks
type StationeryController struct {
	stationeryService services.StationeryService
}

// NewStationeryController creates a new StationeryController
func NewStationeryController(stationeryService services.StationeryService) *StationeryController {
	return &StationeryController{stationeryService: stationeryService}
}

// ListItems lists inventory items
// @Summary List stationery items
// @Tags stationery
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.StationeryItem}
// @Router /technical/stationery/items [get]
func (c *StationeryController) ListItems(ctx *gin.Context) {
	items, err := c.stationeryService.ListItems(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, items)
}

// CreateItem adds an inventory item
// @Summary Create stationery item
// @Tags stationery
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateItemRequest true "Item"
// @Success 201 {object} dto.APIResponse{data=models.StationeryItem}
// @Failure 409 {object} dto.ErrorResponse "Item already exists"
// @Router /technical/stationery/items [post]
func (c *StationeryController) CreateItem(ctx *gin.Context) {
	staffID, ok := sessionUserID(ctx)
	if !ok {
		return
	}
	var req dto.CreateItemRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	item, err := c.stationeryService.CreateItem(ctx, staffID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondCreated(ctx, item, "Item created")
}

// AddStock increases an item's stock
// @Summary Add stock
// @Tags stationery
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.AddStockRequest true "Stock"
// @Success 200 {object} dto.APIResponse{data=models.StationeryItem}
// @Failure 404 {object} dto.ErrorResponse "Item not found"
// @Router /technical/stationery/stock [post]
func (c *StationeryController) AddStock(ctx *gin.Context) {
	staffID, ok := sessionUserID(ctx)
	if !ok {
		return
	}
	var req dto.AddStockRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	item, err := c.stationeryService.AddStock(ctx, staffID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, item)
}

// ListHistory lists stock changes
// @Summary Stock history
// @Tags stationery
// @Security BearerAuth
// @Param item_id query int false "Item"
// @Success 200 {object} dto.APIResponse{data=[]models.StockHistory}
// @Router /technical/stationery/stock-history [get]
func (c *StationeryController) ListHistory(ctx *gin.Context) {
	itemID, err := helpers.OptionalInt64Query(ctx, "item_id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	history, err := c.stationeryService.ListHistory(ctx, itemID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, history)
}

// ListCommitteeRequests lists requests raised by the committee
// @Summary Committee requests
// @Tags stationery
// @Security BearerAuth
// @Param status query string false "pending, forwarded, approved or rejected"
// @Success 200 {object} dto.APIResponse{data=[]models.StationeryRequest}
// @Router /committee/stationery/requests [get]
func (c *StationeryController) ListCommitteeRequests(ctx *gin.Context) {
	requests, err := c.stationeryService.ListCommitteeRequests(ctx, ctx.Query("status"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, requests)
}

// ListRequests lists every request for the technical store
// @Summary Technical requests
// @Tags stationery
// @Security BearerAuth
// @Param status query string false "pending, forwarded, approved or rejected"
// @Success 200 {object} dto.APIResponse{data=[]models.StationeryRequest}
// @Router /technical/stationery/requests [get]
func (c *StationeryController) ListRequests(ctx *gin.Context) {
	requests, err := c.stationeryService.ListRequests(ctx, ctx.Query("status"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, requests)
}

// CreateCommitteeRequest raises a pending request
// @Summary Create committee request
// @Tags stationery
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CommitteeRequest true "Request"
// @Success 201 {object} dto.APIResponse{data=models.StationeryRequest}
// @Router /committee/stationery/requests [post]
func (c *StationeryController) CreateCommitteeRequest(ctx *gin.Context) {
	staffID, ok := sessionUserID(ctx)
	if !ok {
		return
	}
	var req dto.CommitteeRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	request, err := c.stationeryService.CreateCommitteeRequest(ctx, staffID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondCreated(ctx, request, "Request created")
}

// CreateTechnicalRequest raises a request at the technical store
// @Summary Create technical request
// @Tags stationery
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.TechnicalRequest true "Request"
// @Success 201 {object} dto.APIResponse{data=models.StationeryRequest}
// @Router /technical/stationery/requests [post]
func (c *StationeryController) CreateTechnicalRequest(ctx *gin.Context) {
	staffID, ok := sessionUserID(ctx)
	if !ok {
		return
	}
	var req dto.TechnicalRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	request, err := c.stationeryService.CreateTechnicalRequest(ctx, staffID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondCreated(ctx, request, "Request created")
}

// Forward hands a personnel request to the technical store
// @Summary Forward request
// @Tags stationery
// @Security BearerAuth
// @Param id path int true "Request ID"
// @Success 200 {object} dto.APIResponse{data=models.StationeryRequest}
// @Failure 409 {object} dto.ErrorResponse "Request cannot be forwarded"
// @Router /committee/stationery/requests/{id}/forward [put]
func (c *StationeryController) Forward(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	request, err := c.stationeryService.Forward(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, request)
}

// Review approves or rejects a request
// @Summary Review request
// @Tags stationery
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Request ID"
// @Param request body dto.ReviewRequest true "Decision"
// @Success 200 {object} dto.APIResponse{data=models.StationeryRequest}
// @Failure 409 {object} dto.ErrorResponse "Insufficient stock or invalid transition"
// @Router /technical/stationery/requests/{id}/review [put]
func (c *StationeryController) Review(ctx *gin.Context) {
	staffID, ok := sessionUserID(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req dto.ReviewRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	request, err := c.stationeryService.Review(ctx, staffID, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, request)
}
