package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/Ramez-krichen/office-supplies-management-sub002/internal/access"
	"github.com/Ramez-krichen/office-supplies-management-sub002/internal/event"
	"github.com/Ramez-krichen/office-supplies-management-sub002/internal/middleware"
	"github.com/Ramez-krichen/office-supplies-management-sub002/internal/model"
	"github.com/Ramez-krichen/office-supplies-management-sub002/internal/repository"
	"github.com/Ramez-krichen/office-supplies-management-sub002/pkg/apperror"
)

const (
	accessTokenTTL  = 24 * time.Hour
	refreshTokenTTL = 7 * 24 * time.Hour
)

// DTOs for request validation
type CreateUserDTO struct {
	Name       string `json:"name" binding:"required"`
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required,min=8"`
	Role       string `json:"role" binding:"required"`
	Department string `json:"department"`
}

type UpdateUserDTO struct {
	Name       *string `json:"name"`
	Email      *string `json:"email" binding:"omitempty,email"`
	Password   *string `json:"password" binding:"omitempty,min=8"`
	Role       *string `json:"role"`
	Department *string `json:"department"`
	Status     *string `json:"status"`
}

type LoginDTO struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type UserResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	Department string `json:"department,omitempty"`
	Status     string `json:"status"`
	CreatedAt  string `json:"created_at"`
}

// UserService covers authentication plus admin user management.
type UserService interface {
	Login(ctx context.Context, req LoginDTO) (UserResponse, TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
	GetByID(ctx context.Context, id string) (UserResponse, error)
	Create(ctx context.Context, actor Actor, req CreateUserDTO) (UserResponse, error)
	List(ctx context.Context, role, department string, page, limit int) ([]UserResponse, int64, error)
	Update(ctx context.Context, actor Actor, id string, req UpdateUserDTO) (UserResponse, error)
	Delete(ctx context.Context, actor Actor, id string) error
}

type userService struct {
	users   repository.UserRepository
	emitter *event.Emitter
}

func NewUserService(users repository.UserRepository, emitter *event.Emitter) UserService {
	return &userService{users: users, emitter: emitter}
}

func toUserResponse(user *model.User) UserResponse {
	return UserResponse{
		ID:         user.ID.String(),
		Name:       user.Name,
		Email:      user.Email,
		Role:       user.Role,
		Department: user.Department,
		Status:     user.Status,
		CreatedAt:  user.CreatedAt.Format(time.RFC3339),
	}
}

func (s *userService) signAccessToken(user *model.User) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":        user.ID.String(),
		"role":       user.Role,
		"department": user.Department,
		"exp":        time.Now().Add(accessTokenTTL).Unix(),
	})
	return token.SignedString(middleware.GetJWTSecret())
}

func newRefreshToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func (s *userService) issueTokens(ctx context.Context, user *model.User) (TokenPair, error) {
	accessToken, err := s.signAccessToken(user)
	if err != nil {
		return TokenPair{}, apperror.Internal(err, "failed to generate token")
	}

	refreshToken, err := newRefreshToken()
	if err != nil {
		return TokenPair{}, apperror.Internal(err, "failed to generate refresh token")
	}
	err = s.users.CreateRefreshToken(ctx, &model.RefreshToken{
		UserID:    user.ID,
		Token:     refreshToken,
		ExpiresAt: time.Now().Add(refreshTokenTTL),
	})
	if err != nil {
		return TokenPair{}, apperror.Internal(err, "failed to persist refresh token")
	}

	return TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

func (s *userService) Login(ctx context.Context, req LoginDTO) (UserResponse, TokenPair, error) {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		// Same message for unknown email and bad password.
		return UserResponse{}, TokenPair{}, apperror.Unauthenticated("invalid email or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return UserResponse{}, TokenPair{}, apperror.Unauthenticated("invalid email or password")
	}
	if user.Status != model.UserStatusActive {
		return UserResponse{}, TokenPair{}, apperror.Forbidden("account is deactivated")
	}

	tokens, err := s.issueTokens(ctx, user)
	if err != nil {
		return UserResponse{}, TokenPair{}, err
	}
	return toUserResponse(user), tokens, nil
}

func (s *userService) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	if refreshToken == "" {
		return TokenPair{}, apperror.Unauthenticated("refresh token is missing")
	}

	stored, err := s.users.GetRefreshToken(ctx, refreshToken)
	if err != nil {
		return TokenPair{}, apperror.Unauthenticated("invalid refresh token")
	}
	if time.Now().After(stored.ExpiresAt) {
		_ = s.users.DeleteRefreshToken(ctx, refreshToken)
		return TokenPair{}, apperror.Unauthenticated("refresh token has expired")
	}

	user, err := s.users.GetByID(ctx, stored.UserID.String())
	if err != nil || user.Status != model.UserStatusActive {
		return TokenPair{}, apperror.Unauthenticated("account is no longer active")
	}

	// Rotate: the used token is invalidated and a fresh pair issued.
	if err := s.users.DeleteRefreshToken(ctx, refreshToken); err != nil {
		return TokenPair{}, apperror.Internal(err, "failed to rotate refresh token")
	}
	return s.issueTokens(ctx, user)
}

func (s *userService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	if err := s.users.DeleteRefreshToken(ctx, refreshToken); err != nil {
		return apperror.Internal(err, "failed to revoke refresh token")
	}
	return nil
}

func (s *userService) GetByID(ctx context.Context, id string) (UserResponse, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return UserResponse{}, apperror.NotFound("user not found")
		}
		return UserResponse{}, apperror.Internal(err, "failed to fetch user")
	}
	return toUserResponse(user), nil
}

func (s *userService) Create(ctx context.Context, actor Actor, req CreateUserDTO) (UserResponse, error) {
	if _, err := access.ParseRole(req.Role); err != nil {
		return UserResponse{}, apperror.Validation("role must be one of: EMPLOYEE, MANAGER, GENERAL_MANAGER, ADMIN")
	}
	if _, err := s.users.GetByEmail(ctx, req.Email); err == nil {
		return UserResponse{}, apperror.Conflict("email already exists")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return UserResponse{}, apperror.Internal(err, "failed to hash password")
	}

	user := &model.User{
		Name:       req.Name,
		Email:      req.Email,
		Password:   string(hashedPassword),
		Role:       req.Role,
		Department: req.Department,
		Status:     model.UserStatusActive,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return UserResponse{}, apperror.Internal(err, "failed to create user")
	}

	s.emitter.Emit(ctx, event.Event{
		ActorID:  &actor.ID,
		Action:   model.ActionCreateUser,
		Entity:   model.EntityUser,
		EntityID: user.ID.String(),
		Details:  map[string]interface{}{"email": user.Email, "role": user.Role},
	})
	return toUserResponse(user), nil
}

func (s *userService) List(ctx context.Context, role, department string, page, limit int) ([]UserResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	users, total, err := s.users.List(ctx, role, department, page, limit)
	if err != nil {
		return nil, 0, apperror.Internal(err, "failed to fetch users")
	}

	result := make([]UserResponse, 0, len(users))
	for i := range users {
		result = append(result, toUserResponse(&users[i]))
	}
	return result, total, nil
}

func (s *userService) Update(ctx context.Context, actor Actor, id string, req UpdateUserDTO) (UserResponse, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return UserResponse{}, apperror.NotFound("user not found")
		}
		return UserResponse{}, apperror.Internal(err, "failed to fetch user")
	}

	if req.Role != nil {
		if _, parseErr := access.ParseRole(*req.Role); parseErr != nil {
			return UserResponse{}, apperror.Validation("role must be one of: EMPLOYEE, MANAGER, GENERAL_MANAGER, ADMIN")
		}
		user.Role = *req.Role
	}
	if req.Name != nil {
		if *req.Name == "" {
			return UserResponse{}, apperror.Validation("name cannot be empty")
		}
		user.Name = *req.Name
	}
	if req.Email != nil && *req.Email != user.Email {
		if _, emailErr := s.users.GetByEmail(ctx, *req.Email); emailErr == nil {
			return UserResponse{}, apperror.Conflict("email already exists")
		}
		user.Email = *req.Email
	}
	if req.Password != nil {
		hashed, hashErr := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if hashErr != nil {
			return UserResponse{}, apperror.Internal(hashErr, "failed to hash password")
		}
		user.Password = string(hashed)
	}
	if req.Department != nil {
		user.Department = *req.Department
	}
	if req.Status != nil {
		if *req.Status != model.UserStatusActive && *req.Status != model.UserStatusInactive {
			return UserResponse{}, apperror.Validation("status must be ACTIVE or INACTIVE")
		}
		user.Status = *req.Status
		if user.Status == model.UserStatusInactive {
			// Deactivation kills every session immediately.
			_ = s.users.DeleteRefreshTokensForUser(ctx, user.ID.String())
		}
	}

	if err := s.users.Update(ctx, user); err != nil {
		return UserResponse{}, apperror.Internal(err, "failed to update user")
	}

	s.emitter.Emit(ctx, event.Event{
		ActorID:  &actor.ID,
		Action:   model.ActionUpdateUser,
		Entity:   model.EntityUser,
		EntityID: user.ID.String(),
		Details:  map[string]interface{}{"email": user.Email},
	})
	return toUserResponse(user), nil
}

func (s *userService) Delete(ctx context.Context, actor Actor, id string) error {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound("user not found")
		}
		return apperror.Internal(err, "failed to fetch user")
	}
	if user.ID == actor.ID {
		return apperror.Validation("you cannot delete your own account")
	}

	_ = s.users.DeleteRefreshTokensForUser(ctx, id)
	if err := s.users.Delete(ctx, id); err != nil {
		return apperror.Internal(err, "failed to delete user")
	}

	s.emitter.Emit(ctx, event.Event{
		ActorID:  &actor.ID,
		Action:   model.ActionDeleteUser,
		Entity:   model.EntityUser,
		EntityID: id,
		Details:  map[string]interface{}{"email": user.Email},
	})
	return nil
}
