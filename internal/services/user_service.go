package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/Bekarys04/CollabTask_Manager/internal/apperrors"
	"github.com/Bekarys04/CollabTask_Manager/internal/models"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// UserService encapsulates the business logic for user operations.
type UserService struct {
	repo    UserRepository
	mailer  EmailSender
	baseURL string
}

// NewUserService creates a new instance of UserService.
func NewUserService(repo UserRepository, mailer EmailSender, baseURL string) *UserService {
	return &UserService{
		repo:    repo,
		mailer:  mailer,
		baseURL: baseURL,
	}
}

// RegisterUser registers a new user after hashing their password and sends
// the verification email.
func (s *UserService) RegisterUser(ctx context.Context, user *models.User, password string) (*models.User, error) {
	logrus.Info("Registering new user")

	if user.Email == "" || user.Username == "" || password == "" {
		logrus.Warn("Missing required fields during registration")
		return nil, fmt.Errorf("%w: missing required user fields", apperrors.ErrInvalidRequest)
	}

	if !emailRegex.MatchString(user.Email) {
		logrus.WithField("email", user.Email).Warn("Invalid email format during registration")
		return nil, fmt.Errorf("%w: invalid email format", apperrors.ErrInvalidRequest)
	}

	// Check if the email is already registered
	existingUser, _ := s.repo.GetUserByEmail(ctx, user.Email)
	if existingUser != nil {
		logrus.WithField("email", user.Email).Warn("Email already in use")
		return nil, fmt.Errorf("%w: email already in use", apperrors.ErrConflict)
	}

	hashedPwd, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logrus.WithError(err).Error("Password hashing failed")
		return nil, fmt.Errorf("failed to hash password: %v", err)
	}

	user.HashedPassword = string(hashedPwd)
	if user.Role == "" {
		user.Role = "user"
	}
	user.VerifyToken = uuid.NewString()
	user.IsVerified = false

	createdUser, err := s.repo.CreateUser(ctx, user)
	if err != nil {
		logrus.WithError(err).Error("User registration failed")
		return nil, err
	}

	verificationLink := fmt.Sprintf("%s/users/verify?token=%s", s.baseURL, user.VerifyToken)
	emailBody := fmt.Sprintf("Welcome to Collab Task Manager!\n\nPlease verify your email by clicking the link below:\n%s", verificationLink)

	if err := s.mailer.Send(user.Email, "Email Verification", emailBody); err != nil {
		logrus.WithError(err).Error("Failed to send verification email")
		return nil, fmt.Errorf("failed to send verification email")
	}

	logrus.WithFields(logrus.Fields{
		"userID": createdUser.ID.Hex(),
		"role":   createdUser.Role,
	}).Info("User registered successfully")

	return createdUser, nil
}

// VerifyEmail marks the account with the given verification token as
// verified.
func (s *UserService) VerifyEmail(ctx context.Context, token string) error {
	user, err := s.repo.GetUserByVerifyToken(ctx, token)
	if err != nil {
		return fmt.Errorf("%w: invalid or expired verification token", apperrors.ErrNotFound)
	}

	update := map[string]interface{}{
		"is_verified":  true,
		"verify_token": "",
		"updated_at":   time.Now(),
	}

	if err := s.repo.UpdateUser(ctx, user.ID, update); err != nil {
		return fmt.Errorf("failed to update user verification status: %v", err)
	}

	return nil
}

// RequestPasswordReset issues a reset token and emails it to the user.
func (s *UserService) RequestPasswordReset(ctx context.Context, userEmail string) error {
	user, err := s.repo.GetUserByEmail(ctx, userEmail)
	if err != nil {
		return fmt.Errorf("%w: no account found with this email", apperrors.ErrNotFound)
	}

	resetToken := uuid.NewString()
	update := map[string]interface{}{
		"reset_token":     resetToken,
		"reset_token_exp": time.Now().Add(1 * time.Hour),
		"updated_at":      time.Now(),
	}

	if err := s.repo.UpdateUser(ctx, user.ID, update); err != nil {
		return fmt.Errorf("failed to save reset token")
	}

	resetLink := fmt.Sprintf("%s/users/reset-password?token=%s", s.baseURL, resetToken)
	body := fmt.Sprintf("Click the link below to reset your password:\n\n%s", resetLink)

	if err := s.mailer.Send(user.Email, "Reset Your Password", body); err != nil {
		return fmt.Errorf("failed to send password reset email: %v", err)
	}

	logrus.Infof("Password reset email sent to %s", userEmail)
	return nil
}

// ResetPassword sets a new password for the user holding a valid reset
// token.
func (s *UserService) ResetPassword(ctx context.Context, token, newPassword string) error {
	user, err := s.repo.GetUserByResetToken(ctx, token)
	if err != nil {
		return fmt.Errorf("%w: invalid or expired reset token", apperrors.ErrNotFound)
	}

	if time.Now().After(user.ResetTokenExp) {
		return fmt.Errorf("%w: reset token has expired", apperrors.ErrInvalidRequest)
	}

	hashedPwd, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %v", err)
	}

	update := map[string]interface{}{
		"hashed_password": string(hashedPwd),
		"reset_token":     "",
		"reset_token_exp": time.Time{},
		"updated_at":      time.Now(),
	}

	return s.repo.UpdateUser(ctx, user.ID, update)
}

// AuthenticateUser verifies the email and password and returns the user if
// credentials are valid.
func (s *UserService) AuthenticateUser(ctx context.Context, email, password string) (*models.User, error) {
	logrus.WithField("email", email).Info("Authenticating user")

	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		logrus.WithField("email", email).Warn("User not found")
		return nil, fmt.Errorf("user not found")
	}

	if !user.IsVerified {
		logrus.WithField("email", email).Warn("Attempt to login with unverified email")
		return nil, fmt.Errorf("email not verified. Please check your inbox")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)); err != nil {
		logrus.WithField("email", email).Warn("Invalid credentials")
		return nil, fmt.Errorf("invalid credentials")
	}

	logrus.WithField("userID", user.ID.Hex()).Info("User authenticated successfully")
	return user, nil
}

// SearchUsers returns the public projection of users matching the query.
// An empty query returns everyone.
func (s *UserService) SearchUsers(ctx context.Context, query string) ([]models.PublicUser, error) {
	users, err := s.repo.SearchUsers(ctx, query)
	if err != nil {
		logrus.WithError(err).Error("Failed to search users")
		return nil, fmt.Errorf("failed to search users: %v", err)
	}
	return users, nil
}

// GetUser retrieves a user by their ID.
func (s *UserService) GetUser(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get user: %v", err)
	}
	return user, nil
}

// GetAllUsers returns every user record. Admin only.
func (s *UserService) GetAllUsers(ctx context.Context) ([]models.User, error) {
	return s.repo.GetAllUsers(ctx)
}
