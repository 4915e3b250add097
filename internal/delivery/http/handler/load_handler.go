package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"fleetlease/internal/middleware"
	leaseUsecase "fleetlease/internal/usecase/lease"
	"fleetlease/internal/usecase/load"
	"fleetlease/pkg/utils"
)

type LoadHandler struct {
	service      *load.Service
	leaseService *leaseUsecase.Service
}

func NewLoadHandler(service *load.Service, leaseService *leaseUsecase.Service) *LoadHandler {
	return &LoadHandler{service: service, leaseService: leaseService}
}

func (h *LoadHandler) RegisterFleetRoutes(router *gin.RouterGroup) {
	loads := router.Group("/loads")
	{
		loads.POST("", h.Create)
		loads.GET("", h.ListMine)
		loads.GET("/marketplace", h.Marketplace)
		loads.GET("/:id", h.Get)
		loads.POST("/:id/close", h.Close)
		loads.POST("/:id/accept", h.Accept)
	}
}

func (h *LoadHandler) Create(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "User ID not found in context")
		return
	}

	var req load.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.service.Create(c.Request.Context(), userID, &req)
	if err != nil {
		utils.FailureResponse(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, "Load posted successfully", result)
}

func (h *LoadHandler) Marketplace(c *gin.Context) {
	var req load.MarketplaceRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid query parameters")
		return
	}

	result, err := h.service.Marketplace(c.Request.Context(), &req)
	if err != nil {
		utils.FailureResponse(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Marketplace retrieved successfully", result)
}

func (h *LoadHandler) ListMine(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "User ID not found in context")
		return
	}

	result, err := h.service.ListMine(c.Request.Context(), userID)
	if err != nil {
		utils.FailureResponse(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Loads retrieved successfully", result)
}

func (h *LoadHandler) Get(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "User ID not found in context")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid load ID")
		return
	}

	result, err := h.service.Get(c.Request.Context(), userID, isAdmin(c), id)
	if err != nil {
		utils.FailureResponse(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Load retrieved successfully", result)
}

func (h *LoadHandler) Close(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "User ID not found in context")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid load ID")
		return
	}

	result, err := h.service.Close(c.Request.Context(), userID, id)
	if err != nil {
		utils.FailureResponse(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Load closed successfully", result)
}

// Accept drafts a lease agreement: the caller offers one of its drivers
// against the posted load.
func (h *LoadHandler) Accept(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "User ID not found in context")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid load ID")
		return
	}

	var req leaseUsecase.AcceptMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.leaseService.AcceptMatch(c.Request.Context(), userID, id, &req)
	if err != nil {
		utils.FailureResponse(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, "Match accepted; agreement drafted", result)
}
