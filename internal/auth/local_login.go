// Package auth contains handlers that sign principals in and out.
package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/XevilA/spu-nexus-sub000/internal/apperr"
	"github.com/XevilA/spu-nexus-sub000/internal/model"
	"github.com/XevilA/spu-nexus-sub000/internal/service"
	"github.com/XevilA/spu-nexus-sub000/internal/utilities"
)

// LocalAuthHandler holds the identity service and token issuer for handler methods.
type LocalAuthHandler struct {
	Identity *service.IdentityService
	Issuer   *JwtIssuer
	Log      logrus.FieldLogger
}

// NewLocalAuthHandler creates a new instance of LocalAuthHandler.
func NewLocalAuthHandler(identity *service.IdentityService, issuer *JwtIssuer, log logrus.FieldLogger) *LocalAuthHandler {
	return &LocalAuthHandler{Identity: identity, Issuer: issuer, Log: log}
}

type registerInfo struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role" binding:"required" example:"student"`
}

type loginInfo struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type adminLoginInfo struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type adminRegisterInfo struct {
	Email    string `json:"email" binding:"required"`
	Username string `json:"username"`
	Password string `json:"password" binding:"required"`
}

// respondWithToken signs a token for profile and writes the login response.
func respondWithToken(c *gin.Context, issuer *JwtIssuer, status int, profile model.Profile) {
	accessToken, err := issuer.GenerateStandardToken(profile.ID)
	if err != nil {
		utilities.WriteError(c, apperr.E(apperr.CodePersistence, "auth.token", "Failed to generate access token", err))
		return
	}
	c.JSON(status, model.LoginResponse{
		User:        profile,
		AccessToken: accessToken,
		Landing:     profile.Role.LandingPath(),
	})
}

// LocalRegisterHandler handles local registration by receiving username and password
// @Summary Handles local registration by receiving username and password
// @Description Username must not already exist and password must longer or equal to 8 characters long
// @Tags Auth
// @Accept json
// @Produce json
// @Param Info body registerInfo true "role can be only 'student' or 'company'"
// @Success 201 {object} model.LoginResponse
// @Failure 400 {object} utilities.ErrorResponse "Info provided not met the condition"
// @Failure 409 {object} utilities.ErrorResponse "Username already exist"
// @Failure 500 {object} utilities.ErrorResponse "Database or password hashing error"
// @Router /auth/register [post]
func (lh *LocalAuthHandler) LocalRegisterHandler(c *gin.Context) {
	var info registerInfo
	if err := c.ShouldBindJSON(&info); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: "Username, password, and Role (Only 'student' or 'company') must be provided",
		})
		return
	}

	profile, err := lh.Identity.Register(c.Request.Context(), info.Username, info.Password, info.Role)
	logAuthAttempt(lh.Log, "LocalRegister", info.Username, err)
	if err != nil {
		utilities.WriteError(c, err)
		return
	}
	respondWithToken(c, lh.Issuer, http.StatusCreated, profile)
}

// LocalLoginHandler handles local login by receiving username and password
// @Summary Handles local login by receiving username and password
// @Description Username must exist and password match
// @Tags Auth
// @Accept json
// @Produce json
// @Param Info body loginInfo true "Credentials for login"
// @Success 200 {object} model.LoginResponse
// @Failure 400 {object} utilities.ErrorResponse "Info provided not met the condition"
// @Failure 401 {object} utilities.ErrorResponse "Username not exist or password incorrect"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /auth/login [post]
func (lh *LocalAuthHandler) LocalLoginHandler(c *gin.Context) {
	var info loginInfo
	if err := c.ShouldBindJSON(&info); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: "Username or password is not provided",
		})
		return
	}

	profile, err := lh.Identity.Login(c.Request.Context(), info.Username, info.Password)
	logAuthAttempt(lh.Log, "Local", info.Username, err)
	if err != nil {
		utilities.WriteError(c, err)
		return
	}
	respondWithToken(c, lh.Issuer, http.StatusOK, profile)
}

// AdminLoginHandler signs in an admin whose email is on the allow-list
// @Summary Admin login
// @Description The email must be an active admin allow-list entry
// @Tags Auth
// @Accept json
// @Produce json
// @Param Info body adminLoginInfo true "Admin credentials"
// @Success 200 {object} model.LoginResponse
// @Failure 400 {object} utilities.ErrorResponse "Info provided not met the condition"
// @Failure 401 {object} utilities.ErrorResponse "Email or password incorrect"
// @Failure 403 {object} utilities.ErrorResponse "Email is not allow-listed"
// @Router /auth/admin/login [post]
func (lh *LocalAuthHandler) AdminLoginHandler(c *gin.Context) {
	var info adminLoginInfo
	if err := c.ShouldBindJSON(&info); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{Error: "Email and password must be provided"})
		return
	}

	profile, err := lh.Identity.AdminLogin(c.Request.Context(), info.Email, info.Password)
	logAuthAttempt(lh.Log, "Admin", info.Email, err)
	if err != nil {
		utilities.WriteError(c, err)
		return
	}
	respondWithToken(c, lh.Issuer, http.StatusOK, profile)
}

// AdminRegisterHandler creates an admin account for an allow-listed email
// @Summary Admin registration
// @Description The email must be an active admin allow-list entry
// @Tags Auth
// @Accept json
// @Produce json
// @Param Info body adminRegisterInfo true "Admin account"
// @Success 201 {object} model.LoginResponse
// @Failure 400 {object} utilities.ErrorResponse "Info provided not met the condition"
// @Failure 403 {object} utilities.ErrorResponse "Email is not allow-listed"
// @Failure 409 {object} utilities.ErrorResponse "Account already exist"
// @Router /auth/admin/register [post]
func (lh *LocalAuthHandler) AdminRegisterHandler(c *gin.Context) {
	var info adminRegisterInfo
	if err := c.ShouldBindJSON(&info); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{Error: "Email and password must be provided"})
		return
	}

	profile, err := lh.Identity.RegisterAdmin(c.Request.Context(), info.Email, info.Username, info.Password)
	logAuthAttempt(lh.Log, "AdminRegister", info.Email, err)
	if err != nil {
		utilities.WriteError(c, err)
		return
	}
	respondWithToken(c, lh.Issuer, http.StatusCreated, profile)
}
