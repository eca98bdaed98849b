// Package advice exposes the advisory bridge over HTTP.
package advice

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/XevilA/spu-nexus-sub000/internal/advisor"
	"github.com/XevilA/spu-nexus-sub000/internal/apperr"
	"github.com/XevilA/spu-nexus-sub000/internal/model"
	"github.com/XevilA/spu-nexus-sub000/internal/utilities"
)

// Advisor answers advice requests.
type Advisor interface {
	RequestAdvice(ctx context.Context, session model.Session, req advisor.Request) (string, error)
}

// AdviceController handles the advice endpoint
type AdviceController struct {
	Advisor Advisor
}

// NewAdviceController creates a new instance of AdviceController
func NewAdviceController(a Advisor) *AdviceController {
	return &AdviceController{
		Advisor: a,
	}
}

// AdviceResponse is the body of every advice answer.
type AdviceResponse struct {
	Success bool   `json:"success"`
	Advice  string `json:"advice,omitempty"`
	Error   string `json:"error,omitempty"`
}

// RequestAdvice asks the language model for career advice.
// @Summary Request career advice
// @Description type is job_recommendations, portfolio_improvement or general_question. question is required for general_question.
// @Tags Advice
// @Accept json
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param request body advisor.Request true "Advice request"
// @Success 200 {object} AdviceResponse "Advice text"
// @Failure 400 {object} AdviceResponse "Unknown type or empty question"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} AdviceResponse "user_id is not the caller"
// @Failure 404 {object} AdviceResponse "Profile not found"
// @Failure 502 {object} AdviceResponse "Advice service is unavailable"
// @Router /advice [post]
func (ac *AdviceController) RequestAdvice(c *gin.Context) {
	session, ok := utilities.RequireSession(c)
	if !ok {
		return
	}

	req := advisor.Request{}
	if err := utilities.DecodeStrict(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, AdviceResponse{Error: err.Error()})
		return
	}

	text, err := ac.Advisor.RequestAdvice(c.Request.Context(), session, req)
	if err != nil {
		status := apperr.HTTPStatus(err)
		if status >= http.StatusInternalServerError {
			_ = c.Error(err)
		}
		c.JSON(status, AdviceResponse{Error: apperr.Message(err)})
		return
	}

	c.JSON(http.StatusOK, AdviceResponse{Success: true, Advice: text})
}
