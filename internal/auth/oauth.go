package auth

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/XevilA/spu-nexus-sub000/internal/model"
	"github.com/XevilA/spu-nexus-sub000/internal/service"
	"github.com/XevilA/spu-nexus-sub000/internal/utilities"
)

// GoogleUserInfoEndpoint is where the profile of a Google account is read.
const GoogleUserInfoEndpoint = "https://www.googleapis.com/oauth2/v2/userinfo"

// OauthLoginHandler holds the identity service and OAuth2 configuration for handling
// Google login.
type OauthLoginHandler struct {
	Identity         *service.IdentityService
	Issuer           *JwtIssuer
	OauthConfig      *oauth2.Config
	UserInfoEndpoint string
	Log              logrus.FieldLogger
}

type code struct {
	Code string `json:"code" binding:"required"`
}

// NewGoogleOauthConfig builds the OAuth2 configuration of the Google provider.
func NewGoogleOauthConfig(clientID, clientSecret, redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Scopes: []string{
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}
}

// NewOauthLoginHandler creates a new instance of OauthLoginHandler.
func NewOauthLoginHandler(identity *service.IdentityService, issuer *JwtIssuer, oauthConfig *oauth2.Config, userInfoEndpoint string, log logrus.FieldLogger) *OauthLoginHandler {
	return &OauthLoginHandler{
		Identity:         identity,
		Issuer:           issuer,
		OauthConfig:      oauthConfig,
		UserInfoEndpoint: userInfoEndpoint,
		Log:              log,
	}
}

// getUserInfo exchanges the authorization code in the body and reads the Google
// profile. It writes the error response itself.
func (h *OauthLoginHandler) getUserInfo(c *gin.Context) (model.GoogleUserInfo, error) {
	var body code
	var uInfo model.GoogleUserInfo

	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("No authorization code provided: %v", err.Error()),
		})
		return uInfo, err
	}

	ctx := c.Request.Context()
	token, err := h.OauthConfig.Exchange(ctx, body.Code)
	if err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to receive token: %v", err.Error()),
		})
		return uInfo, err
	}

	resp, err := h.OauthConfig.Client(ctx, token).Get(h.UserInfoEndpoint)
	if err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to fetch user information: %v", err.Error()),
		})
		return uInfo, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to fetch user information: status=%d body=%s", resp.StatusCode, string(bodyBytes)),
		})
		return uInfo, fmt.Errorf("userinfo endpoint returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(&uInfo); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to decode user info: %v", err.Error()),
		})
		return uInfo, err
	}
	return uInfo, nil
}

// GoogleLoginHandler exchanges a Google authorization code, finds or creates the
// student linked to the account and returns an access token.
// @Summary Handles Google login, exchanges code for user info
// @Description Creates a student principal on first login
// @Tags Auth
// @Accept json
// @Produce json
// @Param Code body code true "Authentication code from google"
// @Success 200 {object} model.LoginResponse "Login success"
// @Success 201 {object} model.LoginResponse "Register success"
// @Failure 400 {object} utilities.ErrorResponse "Fail to receive token or fetch user info"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /auth/google [post]
func (h *OauthLoginHandler) GoogleLoginHandler(c *gin.Context) {
	uInfo, err := h.getUserInfo(c)
	if err != nil {
		logAuthAttempt(h.Log, "Google", "", err)
		return
	}

	profile, created, err := h.Identity.GoogleLogin(c.Request.Context(), uInfo)
	logAuthAttempt(h.Log, "Google", uInfo.Email, err)
	if err != nil {
		utilities.WriteError(c, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	respondWithToken(c, h.Issuer, status, profile)
}

// Callback echoes the "code" query parameter for clients that complete the consent
// screen in a browser.
// @Summary Retrieves a query parameter named "code" from the request and returns it in a JSON response
// @Tags Auth
// @Produce json
// @Param Code query string false "Authentication code from google"
// @Success 200 {object} code
// @Router /auth/google/callback [get]
func (h *OauthLoginHandler) Callback(c *gin.Context) {
	c.JSON(http.StatusOK, code{Code: c.Query("code")})
}
