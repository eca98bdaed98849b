// Package profile provides HTTP handlers for the signed-in principal's own profile.
package profile

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/XevilA/spu-nexus-sub000/internal/model"
	"github.com/XevilA/spu-nexus-sub000/internal/service"
	"github.com/XevilA/spu-nexus-sub000/internal/utilities"
)

// ProfileController handles profile related endpoints
type ProfileController struct {
	Identity *service.IdentityService
}

// NewProfileController creates a new instance of ProfileController
func NewProfileController(identity *service.IdentityService) *ProfileController {
	return &ProfileController{
		Identity: identity,
	}
}

// MeResponse is the profile of the caller with its landing path.
type MeResponse struct {
	User    model.Profile `json:"user"`
	Landing string        `json:"landing"`
}

// GetMe returns the profile of the signed-in principal.
// @Summary Retrieve my profile
// @Tags Profile
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Success 200 {object} MeResponse "Successfully retrieve profile"
// @Failure 400 {object} utilities.ErrorResponse "Invalid authorization header"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /me [get]
func (pc *ProfileController) GetMe(c *gin.Context) {
	session, ok := utilities.RequireSession(c)
	if !ok {
		return
	}

	profile, err := pc.Identity.Me(c.Request.Context(), session)
	if err != nil {
		utilities.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, MeResponse{User: profile, Landing: profile.Role.LandingPath()})
}

// EditProfile overwrites the non-empty editable fields of the caller's profile.
// @Summary Edit my profile
// @Description Only display name, telephone, faculty and major can be changed
// @Tags Profile
// @Accept json
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param profile body model.EditableProfileInfo true "Profile info to be written"
// @Success 200 {object} model.Profile "Successfully overwrite"
// @Failure 400 {object} utilities.ErrorResponse "Invalid authorization header or request body"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /me [patch]
func (pc *ProfileController) EditProfile(c *gin.Context) {
	session, ok := utilities.RequireSession(c)
	if !ok {
		return
	}

	var info model.EditableProfileInfo
	if err := utilities.DecodeStrict(c, &info); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	profile, err := pc.Identity.UpdateProfile(c.Request.Context(), session, info)
	if err != nil {
		utilities.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}
