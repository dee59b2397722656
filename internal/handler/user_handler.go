package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MathewAndreiAbao/eguidance-api/internal/service"
	appErrors "github.com/MathewAndreiAbao/eguidance-api/pkg/errors"
	"github.com/MathewAndreiAbao/eguidance-api/pkg/response"
)

// UserHandler exposes the user directory endpoints.
type UserHandler struct {
	service *service.UserService
}

// NewUserHandler constructs a user handler.
func NewUserHandler(svc *service.UserService) *UserHandler {
	return &UserHandler{service: svc}
}

// Me godoc
// @Summary Current user profile
// @Tags Users
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /users/me [get]
func (h *UserHandler) Me(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	profile, err := h.service.Profile(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile, nil)
}

// ListCounselors godoc
// @Summary List bookable counselors
// @Tags Users
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /users/counselors [get]
func (h *UserHandler) ListCounselors(c *gin.Context) {
	counselors, err := h.service.ListCounselors(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, counselors, nil)
}
