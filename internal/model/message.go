package model

import (
	"time"

	"github.com/google/uuid"
)

// Message is an append-only chat entry scoped to an application.
type Message struct {
	ID            uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	ApplicationID uint      `gorm:"not null;index" json:"application_id"`
	SenderID      uuid.UUID `gorm:"type:uuid;not null" json:"sender_id"`
	SenderRole    Role      `gorm:"type:text" json:"sender_role"`
	SenderName    string    `gorm:"type:text" json:"sender_name"`
	Content       string    `gorm:"type:text;not null" json:"content"`
	CreatedAt     time.Time `gorm:"index" json:"created_at"`
}

// AIUsageLog records one successful advisory call.
type AIUsageLog struct {
	ID             uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID         uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	RequestType    string    `gorm:"type:text;not null" json:"request_type"`
	ResponseLength int       `json:"response_length"`
	CreatedAt      time.Time `json:"created_at"`
}
