// Package utilities contain utility code that use across the package
package utilities

import (
	"errors"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/XevilA/spu-nexus-sub000/internal/apperr"
	"github.com/XevilA/spu-nexus-sub000/internal/model"
)

// ErrorResponse type for swagger docs
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse type for swagger docs
type MessageResponse struct {
	Message string `json:"message"`
}

// ExtractUser extracts the profile set by the auth middleware from Gin context.
func ExtractUser(c *gin.Context) (model.Profile, error) {
	u, _ := c.Get("user")
	if u == nil {
		return model.Profile{}, errors.New("User information not provided")
	}

	user, ok := u.(model.Profile)
	if !ok {
		return model.Profile{}, errors.New("Failed to assert type")
	}
	return user, nil
}

// ExtractSession returns the session of the authenticated caller.
func ExtractSession(c *gin.Context) (model.Session, error) {
	if s, ok := c.Get("session"); ok {
		if session, ok := s.(model.Session); ok {
			return session, nil
		}
	}
	user, err := ExtractUser(c)
	if err != nil {
		return model.Session{}, err
	}
	return user.Session(), nil
}

// WriteError aborts the request with the status and message of err. Internal errors
// are logged, their cause is never sent to the client.
func WriteError(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	if status >= 500 {
		logrus.WithError(err).WithField("path", c.FullPath()).Error("request failed")
	}
	c.AbortWithStatusJSON(status, ErrorResponse{Error: apperr.Message(err)})
}

// CreateAdmin creates an admin user with the given password, username and email and
// puts the email on the active admin allow-list. Admin sessions are refused without it.
func CreateAdmin(password, username, email string, db *gorm.DB) (model.Profile, error) {
	hashedPassword, err := HashPassword(password)
	if err != nil {
		return model.Profile{}, err
	}

	email = strings.ToLower(strings.TrimSpace(email))
	admin := model.Profile{
		Username: username,
		Email:    &email,
		Password: hashedPassword,
		Role:     model.RoleAdmin,
	}
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&model.AdminWhitelist{Email: email, Active: true}).Error; err != nil {
			return err
		}
		return tx.Create(&admin).Error
	})
	if err != nil {
		return model.Profile{}, err
	}
	return admin, nil
}

// MergeNonEmpty help merge struct with non-empty field
func MergeNonEmpty(dst, src interface{}) {
	dv := reflect.ValueOf(dst).Elem()
	sv := reflect.ValueOf(src).Elem()

	for i := 0; i < sv.NumField(); i++ {
		sf := sv.Field(i)
		if !sf.IsZero() {
			df := dv.FieldByName(sv.Type().Field(i).Name)
			if df.IsValid() && df.CanSet() {
				df.Set(sf)
			}
		}
	}
}
