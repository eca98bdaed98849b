package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm/clause"

	"github.com/XevilA/spu-nexus-sub000/internal/apperr"
	"github.com/XevilA/spu-nexus-sub000/internal/database"
	"github.com/XevilA/spu-nexus-sub000/internal/model"
	"github.com/XevilA/spu-nexus-sub000/internal/notify"
)

// MaxMessageRunes bounds the length of a chat message.
const MaxMessageRunes = 4000

// MessageService is the append-only chat attached to an application.
type MessageService struct {
	Deps
}

// Post appends a message from the caller and notifies the other participant.
func (s *MessageService) Post(ctx context.Context, session model.Session, applicationID uint, content string) (model.Message, error) {
	const op = "message.Post"

	content = strings.TrimSpace(content)
	if content == "" {
		return model.Message{}, apperr.Validation(op, "Message content is required")
	}
	if utf8.RuneCountInString(content) > MaxMessageRunes {
		return model.Message{}, apperr.Validation(op, "Message is too long")
	}

	app, err := s.participant(ctx, op, session, applicationID)
	if err != nil {
		return model.Message{}, err
	}

	msg := model.Message{
		ApplicationID: app.ID,
		SenderID:      session.UserID,
		SenderRole:    session.Role,
		SenderName:    session.DisplayName,
		Content:       content,
	}
	if err := s.DB.WithContext(ctx).Omit(clause.Associations).Create(&msg).Error; err != nil {
		return model.Message{}, database.TranslateError(op, "", err)
	}

	recipient := app.StudentID
	if session.UserID == app.StudentID {
		recipient = app.Job.Company.OwnerID
	}
	s.publish(ctx, notify.UserTopic(recipient), notify.KindMessageCreated, app.ID)
	return msg, nil
}

// List returns the messages of an application, oldest first.
func (s *MessageService) List(ctx context.Context, session model.Session, applicationID uint) ([]model.Message, error) {
	const op = "message.List"

	if _, err := s.participant(ctx, op, session, applicationID); err != nil {
		return nil, err
	}
	messages := []model.Message{}
	err := s.DB.WithContext(ctx).
		Where("application_id = ?", applicationID).
		Order("created_at ASC, id ASC").
		Find(&messages).Error
	if err != nil {
		return nil, database.TranslateError(op, "", err)
	}
	return messages, nil
}
