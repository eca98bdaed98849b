// Package message provides HTTP handlers for the conversation attached to an application.
package message

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/XevilA/spu-nexus-sub000/internal/service"
	"github.com/XevilA/spu-nexus-sub000/internal/utilities"
)

// MessageController handles message related endpoints
type MessageController struct {
	Messages *service.MessageService
}

// NewMessageController creates a new instance of MessageController
func NewMessageController(messages *service.MessageService) *MessageController {
	return &MessageController{
		Messages: messages,
	}
}

type messageInfo struct {
	Content string `json:"content" example:"Are you available for an interview on Monday?"`
}

// PostMessage appends a message to an application's conversation.
// @Summary Send a message
// @Description Only the applicant and the HR account owning the job can write
// @Tags Message
// @Accept json
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path integer true "Application ID"
// @Param message body messageInfo true "Message content"
// @Success 201 {object} model.Message "Stored message"
// @Failure 400 {object} utilities.ErrorResponse "Empty or too long content"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Caller is not a participant"
// @Failure 404 {object} utilities.ErrorResponse "Application not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /applications/{id}/messages [post]
func (mc *MessageController) PostMessage(c *gin.Context) {
	session, ok := utilities.RequireSession(c)
	if !ok {
		return
	}

	id, err := utilities.UintParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	info := messageInfo{}
	if err := utilities.DecodeStrict(c, &info); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	msg, err := mc.Messages.Post(c.Request.Context(), session, id, info.Content)
	if err != nil {
		utilities.WriteError(c, err)
		return
	}

	c.JSON(http.StatusCreated, msg)
}

// GetMessages lists an application's conversation, oldest first.
// @Summary List messages
// @Tags Message
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path integer true "Application ID"
// @Success 200 {array} model.Message "Conversation"
// @Failure 400 {object} utilities.ErrorResponse "Invalid authorization header, or id"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Caller is not a participant"
// @Failure 404 {object} utilities.ErrorResponse "Application not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /applications/{id}/messages [get]
func (mc *MessageController) GetMessages(c *gin.Context) {
	session, ok := utilities.RequireSession(c)
	if !ok {
		return
	}

	id, err := utilities.UintParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	messages, err := mc.Messages.List(c.Request.Context(), session, id)
	if err != nil {
		utilities.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, messages)
}
