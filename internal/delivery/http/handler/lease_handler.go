package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"fleetlease/internal/domain/account"
	"fleetlease/internal/lease/lifecycle"
	"fleetlease/internal/middleware"
	leaseUsecase "fleetlease/internal/usecase/lease"
	"fleetlease/pkg/utils"
)

type LeaseHandler struct {
	service *leaseUsecase.Service
}

func NewLeaseHandler(service *leaseUsecase.Service) *LeaseHandler {
	return &LeaseHandler{service: service}
}

func (h *LeaseHandler) RegisterRoutes(router *gin.RouterGroup) {
	leases := router.Group("/leases")
	{
		leases.GET("", h.List)
		leases.GET("/:id", h.Get)
		leases.GET("/:id/signing-status", h.SigningStatus)
		leases.POST("/:id/sign", h.Sign)
		leases.POST("/:id/start-trip", h.StartTrip)
		leases.POST("/:id/end-trip", h.EndTrip)
		leases.POST("/:id/void", h.Void)
		leases.POST("/:id/attest-insurance", h.AttestInsurance)
		leases.POST("/:id/fee-session", h.CreateFeeSession)
	}
}

// isAdmin reports whether the authenticated caller holds the admin role.
func isAdmin(c *gin.Context) bool {
	return middleware.UserRole(c) == account.RoleAdmin
}

func actorFrom(c *gin.Context) (lifecycle.Actor, bool) {
	userID, ok := middleware.UserID(c)
	if !ok {
		return lifecycle.Actor{}, false
	}
	return lifecycle.Actor{AccountID: userID, IsAdmin: isAdmin(c)}, true
}

func leaseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid agreement ID")
		return uuid.Nil, false
	}
	return id, true
}

func (h *LeaseHandler) List(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "User ID not found in context")
		return
	}

	var req leaseUsecase.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid query parameters")
		return
	}

	result, err := h.service.List(c.Request.Context(), actor, middleware.UserRole(c), &req)
	if err != nil {
		utils.FailureResponse(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Agreements retrieved successfully", result)
}

func (h *LeaseHandler) Get(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "User ID not found in context")
		return
	}
	id, ok := leaseID(c)
	if !ok {
		return
	}

	result, err := h.service.Get(c.Request.Context(), id, actor)
	if err != nil {
		utils.FailureResponse(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Agreement retrieved successfully", result)
}

func (h *LeaseHandler) SigningStatus(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "User ID not found in context")
		return
	}
	id, ok := leaseID(c)
	if !ok {
		return
	}

	result, err := h.service.SigningStatus(c.Request.Context(), id, actor)
	if err != nil {
		utils.FailureResponse(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Signing status retrieved successfully", result)
}

func (h *LeaseHandler) Sign(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "User ID not found in context")
		return
	}
	id, ok := leaseID(c)
	if !ok {
		return
	}

	var req leaseUsecase.SignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.service.Sign(c.Request.Context(), id, actor, c.ClientIP(), &req)
	if err != nil {
		utils.FailureResponse(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Agreement signed successfully", result)
}

func (h *LeaseHandler) StartTrip(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "User ID not found in context")
		return
	}
	id, ok := leaseID(c)
	if !ok {
		return
	}

	result, err := h.service.StartTrip(c.Request.Context(), id, actor)
	if err != nil {
		utils.FailureResponse(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Trip started successfully", result)
}

func (h *LeaseHandler) EndTrip(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "User ID not found in context")
		return
	}
	id, ok := leaseID(c)
	if !ok {
		return
	}

	result, err := h.service.EndTrip(c.Request.Context(), id, actor)
	if err != nil {
		utils.FailureResponse(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Trip completed successfully", result)
}

func (h *LeaseHandler) Void(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "User ID not found in context")
		return
	}
	id, ok := leaseID(c)
	if !ok {
		return
	}

	var req leaseUsecase.VoidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.service.Void(c.Request.Context(), id, actor, &req)
	if err != nil {
		utils.FailureResponse(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Agreement voided", result)
}

func (h *LeaseHandler) AttestInsurance(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "User ID not found in context")
		return
	}
	id, ok := leaseID(c)
	if !ok {
		return
	}

	var req leaseUsecase.AttestInsuranceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.service.AttestInsurance(c.Request.Context(), id, actor, &req)
	if err != nil {
		utils.FailureResponse(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Insurance attestation recorded", result)
}

func (h *LeaseHandler) CreateFeeSession(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "User ID not found in context")
		return
	}
	id, ok := leaseID(c)
	if !ok {
		return
	}

	result, err := h.service.CreateFeeSession(c.Request.Context(), id, actor)
	if err != nil {
		utils.FailureResponse(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Payment session created", result)
}
