package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"fleetlease/internal/middleware"
	driverUsecase "fleetlease/internal/usecase/driver"
	"fleetlease/pkg/utils"
)

type DriverHandler struct {
	service *driverUsecase.Service
}

func NewDriverHandler(service *driverUsecase.Service) *DriverHandler {
	return &DriverHandler{service: service}
}

func (h *DriverHandler) RegisterPublicRoutes(router *gin.RouterGroup) {
	router.POST("/drivers/invitations/redeem", h.Redeem)
}

func (h *DriverHandler) RegisterFleetRoutes(router *gin.RouterGroup) {
	drivers := router.Group("/drivers")
	{
		drivers.POST("/invitations", h.Invite)
		drivers.GET("/invitations", h.ListInvitations)
		drivers.GET("", h.List)
		drivers.POST("/:id/confirm", h.Confirm)
		drivers.POST("/:id/reject", h.Reject)
	}
}

func (h *DriverHandler) RegisterSharedRoutes(router *gin.RouterGroup) {
	drivers := router.Group("/drivers")
	{
		drivers.GET("/:id", h.Get)
		drivers.GET("/:id/compliance", h.Compliance)
		drivers.POST("/:id/profile", h.SubmitProfile)
		drivers.POST("/:id/cdl-image", h.UploadCDLImage)
		drivers.POST("/:id/availability", h.SetAvailability)
	}
}

func driverID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid driver ID")
		return uuid.Nil, false
	}
	return id, true
}

func (h *DriverHandler) Invite(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "User ID not found in context")
		return
	}

	var req driverUsecase.InviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.service.Invite(c.Request.Context(), userID, &req)
	if err != nil {
		utils.FailureResponse(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, "Invitation sent successfully", result)
}

func (h *DriverHandler) ListInvitations(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "User ID not found in context")
		return
	}

	result, err := h.service.ListInvitations(c.Request.Context(), userID)
	if err != nil {
		utils.FailureResponse(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Invitations retrieved successfully", result)
}

func (h *DriverHandler) Redeem(c *gin.Context) {
	var req driverUsecase.RedeemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.service.Redeem(c.Request.Context(), &req)
	if err != nil {
		utils.FailureResponse(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, "Invitation redeemed successfully", result)
}

func (h *DriverHandler) SubmitProfile(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "User ID not found in context")
		return
	}
	id, ok := driverID(c)
	if !ok {
		return
	}

	var req driverUsecase.SubmitProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Device == "" {
		req.Device = c.Request.UserAgent()
	}

	result, err := h.service.SubmitProfile(c.Request.Context(), userID, id, c.ClientIP(), &req)
	if err != nil {
		utils.FailureResponse(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Profile submitted for confirmation", result)
}

func (h *DriverHandler) Confirm(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "User ID not found in context")
		return
	}
	id, ok := driverID(c)
	if !ok {
		return
	}

	result, err := h.service.Confirm(c.Request.Context(), userID, isAdmin(c), id)
	if err != nil {
		utils.FailureResponse(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Driver confirmed successfully", result)
}

func (h *DriverHandler) Reject(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "User ID not found in context")
		return
	}
	id, ok := driverID(c)
	if !ok {
		return
	}

	var req driverUsecase.RejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.service.Reject(c.Request.Context(), userID, isAdmin(c), id, &req)
	if err != nil {
		utils.FailureResponse(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Driver profile rejected", result)
}

func (h *DriverHandler) Get(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "User ID not found in context")
		return
	}
	id, ok := driverID(c)
	if !ok {
		return
	}

	result, err := h.service.Get(c.Request.Context(), userID, isAdmin(c), id)
	if err != nil {
		utils.FailureResponse(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Driver retrieved successfully", result)
}

func (h *DriverHandler) List(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "User ID not found in context")
		return
	}

	result, err := h.service.ListByFleet(c.Request.Context(), userID)
	if err != nil {
		utils.FailureResponse(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Drivers retrieved successfully", result)
}

func (h *DriverHandler) Compliance(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "User ID not found in context")
		return
	}
	id, ok := driverID(c)
	if !ok {
		return
	}

	result, err := h.service.Compliance(c.Request.Context(), userID, isAdmin(c), id)
	if err != nil {
		utils.FailureResponse(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Compliance evaluated successfully", result)
}

func (h *DriverHandler) UploadCDLImage(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "User ID not found in context")
		return
	}
	id, ok := driverID(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Image file required")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Could not read uploaded file")
		return
	}
	defer file.Close()

	result, err := h.service.UploadCDLImage(c.Request.Context(), userID, isAdmin(c), id,
		fileHeader.Filename, file, fileHeader.Size, fileHeader.Header.Get("Content-Type"))
	if err != nil {
		utils.FailureResponse(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "CDL image uploaded successfully", result)
}

func (h *DriverHandler) SetAvailability(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "User ID not found in context")
		return
	}
	id, ok := driverID(c)
	if !ok {
		return
	}

	var req driverUsecase.AvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.service.SetAvailability(c.Request.Context(), userID, id, &req)
	if err != nil {
		utils.FailureResponse(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Availability updated successfully", result)
}
