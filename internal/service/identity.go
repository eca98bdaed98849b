package service

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/XevilA/spu-nexus-sub000/internal/apperr"
	"github.com/XevilA/spu-nexus-sub000/internal/database"
	"github.com/XevilA/spu-nexus-sub000/internal/model"
	"github.com/XevilA/spu-nexus-sub000/internal/utilities"
)

// IdentityService resolves and creates principals.
type IdentityService struct {
	Deps
}

// Register creates a principal with username and password. role accepts the sign-up
// roles "student" (or legacy "user") and "company".
func (s *IdentityService) Register(ctx context.Context, username, password, rawRole string) (model.Profile, error) {
	const op = "identity.Register"

	username = strings.TrimSpace(username)
	if username == "" {
		return model.Profile{}, apperr.Validation(op, "Username is required")
	}
	if len(password) < utilities.MinPasswordLength {
		return model.Profile{}, apperr.Validation(op, "Password should longer or equal to 8 characters")
	}
	role, err := model.NormalizeRole(rawRole)
	if err != nil || (role != model.RoleStudent && role != model.RoleCompanyHR) {
		return model.Profile{}, apperr.Validation(op, "Role must be 'student' or 'company'")
	}

	hashed, err := utilities.HashPassword(password)
	if err != nil {
		return model.Profile{}, apperr.Persistence(op, "Failed to hash password", err)
	}

	profile := model.Profile{
		Username:            username,
		Password:            hashed,
		Role:                role,
		EditableProfileInfo: model.EditableProfileInfo{DisplayName: username},
	}
	if err := s.DB.WithContext(ctx).Create(&profile).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return model.Profile{}, apperr.E(apperr.CodeConflict, op, "Username already exist", err)
		}
		return model.Profile{}, database.TranslateError(op, "", err)
	}
	return profile, nil
}

// Login checks username and password. Admins must also hold an active allow-list entry.
func (s *IdentityService) Login(ctx context.Context, username, password string) (model.Profile, error) {
	const op = "identity.Login"

	var profile model.Profile
	err := s.DB.WithContext(ctx).Where("username = ?", strings.TrimSpace(username)).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Profile{}, apperr.E(apperr.CodeUnauthenticated, op, "Username or password is incorrect", nil)
	}
	if err != nil {
		return model.Profile{}, database.TranslateError(op, "", err)
	}
	if profile.Password == "" || !utilities.VerifyPassword(profile.Password, password) {
		return model.Profile{}, apperr.E(apperr.CodeUnauthenticated, op, "Username or password is incorrect", nil)
	}
	if err := s.admitAdmin(ctx, op, profile); err != nil {
		return model.Profile{}, err
	}
	return profile, nil
}

// admitAdmin refuses admin principals whose email is not on the active allow-list.
// Other roles pass.
func (s *IdentityService) admitAdmin(ctx context.Context, op string, profile model.Profile) error {
	if profile.Role != model.RoleAdmin {
		return nil
	}
	allowed, err := database.AdminAllowed(ctx, s.DB.DB, profile.Email)
	if err != nil {
		return database.TranslateError(op, "", err)
	}
	if !allowed {
		return apperr.Forbidden(op, "Email is not allowed to sign in as admin")
	}
	return nil
}

// whitelisted reports whether email is an active admin allow-list entry.
func (s *IdentityService) whitelisted(ctx context.Context, email string) (bool, error) {
	return database.AdminAllowed(ctx, s.DB.DB, &email)
}

// AdminLogin authenticates an admin by email. The email must be on the active
// allow-list.
func (s *IdentityService) AdminLogin(ctx context.Context, email, password string) (model.Profile, error) {
	const op = "identity.AdminLogin"

	email = normalizeEmail(email)
	ok, err := s.whitelisted(ctx, email)
	if err != nil {
		return model.Profile{}, database.TranslateError(op, "", err)
	}
	if !ok {
		return model.Profile{}, apperr.Forbidden(op, "Email is not allowed to sign in as admin")
	}

	var profile model.Profile
	err = s.DB.WithContext(ctx).Where("email = ? AND role = ?", email, model.RoleAdmin).First(&profile).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Profile{}, database.TranslateError(op, "", err)
	}
	if err != nil || !utilities.VerifyPassword(profile.Password, password) {
		return model.Profile{}, apperr.E(apperr.CodeUnauthenticated, op, "Email or password is incorrect", nil)
	}
	return profile, nil
}

// RegisterAdmin creates an admin account for an allow-listed email.
func (s *IdentityService) RegisterAdmin(ctx context.Context, email, username, password string) (model.Profile, error) {
	const op = "identity.RegisterAdmin"

	email = normalizeEmail(email)
	ok, err := s.whitelisted(ctx, email)
	if err != nil {
		return model.Profile{}, database.TranslateError(op, "", err)
	}
	if !ok {
		return model.Profile{}, apperr.Forbidden(op, "Email is not allowed to register as admin")
	}
	if len(password) < utilities.MinPasswordLength {
		return model.Profile{}, apperr.Validation(op, "Password should longer or equal to 8 characters")
	}
	if strings.TrimSpace(username) == "" {
		username = email
	}

	hashed, err := utilities.HashPassword(password)
	if err != nil {
		return model.Profile{}, apperr.Persistence(op, "Failed to hash password", err)
	}
	profile := model.Profile{
		Username:            strings.TrimSpace(username),
		Email:               &email,
		Password:            hashed,
		Role:                model.RoleAdmin,
		EditableProfileInfo: model.EditableProfileInfo{DisplayName: strings.TrimSpace(username)},
	}
	if err := s.DB.WithContext(ctx).Create(&profile).Error; err != nil {
		return model.Profile{}, database.TranslateError(op, "", err)
	}
	return profile, nil
}

// SetWhitelist adds or deactivates an admin allow-list entry.
func (s *IdentityService) SetWhitelist(ctx context.Context, email string, active bool) (model.AdminWhitelist, error) {
	const op = "identity.SetWhitelist"

	email = normalizeEmail(email)
	if email == "" || !strings.Contains(email, "@") {
		return model.AdminWhitelist{}, apperr.Validation(op, "A valid email is required")
	}
	entry := model.AdminWhitelist{Email: email, Active: active}
	err := s.DB.WithContext(ctx).
		Where(model.AdminWhitelist{Email: email}).
		Assign(map[string]any{"active": active}).
		FirstOrCreate(&entry).Error
	if err != nil {
		return model.AdminWhitelist{}, database.TranslateError(op, "", err)
	}
	return entry, nil
}

// GoogleLogin finds the principal linked to a Google account or creates a student for it.
// created reports whether a new principal was made.
func (s *IdentityService) GoogleLogin(ctx context.Context, info model.GoogleUserInfo) (profile model.Profile, created bool, err error) {
	const op = "identity.GoogleLogin"

	if info.GID == "" {
		return model.Profile{}, false, apperr.Validation(op, "Google account id is missing")
	}

	err = s.DB.WithContext(ctx).Where("google_id = ?", info.GID).First(&profile).Error
	switch {
	case err == nil:
		if err := s.admitAdmin(ctx, op, profile); err != nil {
			return model.Profile{}, false, err
		}
		return profile, false, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return model.Profile{}, false, database.TranslateError(op, "", err)
	}

	gid := info.GID
	name := strings.TrimSpace(info.FirstName + " " + info.LastName)
	profile = model.Profile{
		Username:            "google_" + gid,
		GoogleID:            &gid,
		Role:                model.RoleStudent,
		EditableProfileInfo: model.EditableProfileInfo{DisplayName: name},
	}
	if email := normalizeEmail(info.Email); email != "" {
		profile.Email = &email
	}
	if err := s.DB.WithContext(ctx).Create(&profile).Error; err != nil {
		return model.Profile{}, false, database.TranslateError(op, "", err)
	}
	return profile, true, nil
}

// Me returns the caller's profile.
func (s *IdentityService) Me(ctx context.Context, session model.Session) (model.Profile, error) {
	var profile model.Profile
	err := s.DB.WithContext(ctx).First(&profile, "id = ?", session.UserID).Error
	return profile, database.TranslateError("identity.Me", "Profile not found", err)
}

// UpdateProfile overwrites the non-empty editable fields of the caller's profile.
func (s *IdentityService) UpdateProfile(ctx context.Context, session model.Session, info model.EditableProfileInfo) (model.Profile, error) {
	const op = "identity.UpdateProfile"

	profile, err := s.Me(ctx, session)
	if err != nil {
		return model.Profile{}, err
	}
	utilities.MergeNonEmpty(&profile.EditableProfileInfo, &info)
	if err := s.DB.WithContext(ctx).Save(&profile).Error; err != nil {
		return model.Profile{}, database.TranslateError(op, "", err)
	}
	return profile, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
