package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"notekeeper-be/internal/dto"
	"notekeeper-be/internal/entity"
	"notekeeper-be/internal/pkg/apperror"
	"notekeeper-be/internal/pkg/logger"
	"notekeeper-be/internal/pkg/token"
	"notekeeper-be/internal/repository/specification"
	"notekeeper-be/internal/repository/unitofwork"
	"notekeeper-be/pkg/database"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// SessionIssuer is satisfied by *token.Issuer.
type SessionIssuer interface {
	Issue(userId uuid.UUID) (string, token.CookieOptions, error)
}

// Session is what register and login hand to the transport layer.
type Session struct {
	UserId uuid.UUID
	Token  string
	Cookie token.CookieOptions
}

type IAuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*Session, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*Session, error)
	Me(ctx context.Context, userId uuid.UUID) (*dto.UserProfileResponse, error)
}

type authService struct {
	uowFactory unitofwork.RepositoryFactory
	issuer     SessionIssuer
	logger     logger.ILogger
	bcryptCost int
}

func NewAuthService(uowFactory unitofwork.RepositoryFactory, issuer SessionIssuer, log logger.ILogger) IAuthService {
	return &authService{
		uowFactory: uowFactory,
		issuer:     issuer,
		logger:     log,
		bcryptCost: bcrypt.DefaultCost,
	}
}

var errUserExists = apperror.BadRequest("User already exists")

func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*Session, error) {
	email := normalizeEmail(req.Email)
	switch {
	case email == "":
		return nil, apperror.BadRequest("Email is required")
	case req.Password == "":
		return nil, apperror.BadRequest("Password is required")
	case strings.TrimSpace(req.Username) == "":
		return nil, apperror.BadRequest("Username is required")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	existing, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: email})
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if existing != nil {
		return nil, errUserExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, apperror.BadRequest("password must not exceed 72 characters")
		}
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now()
	user := &entity.User{
		Id:           uuid.New(),
		Email:        email,
		Username:     strings.TrimSpace(req.Username),
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := uow.UserRepository().Create(ctx, user); err != nil {
		// Lost a race with a concurrent registration of the same email.
		if database.IsUniqueViolation(err) {
			return nil, errUserExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("AUTH", "User registered", map[string]interface{}{
		"user_id": user.Id.String(),
	})

	return s.newSession(user.Id)
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*Session, error) {
	email := normalizeEmail(req.Email)
	if email == "" {
		return nil, apperror.BadRequest("Email is required")
	}
	if req.Password == "" {
		return nil, apperror.BadRequest("Password is required")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: email})
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return nil, apperror.NotFound("User not found")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apperror.BadRequest("Password is incorrect")
	}

	return s.newSession(user.Id)
}

func (s *authService) Me(ctx context.Context, userId uuid.UUID) (*dto.UserProfileResponse, error) {
	if userId == uuid.Nil {
		return nil, apperror.Unauthorized("User not authorized")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return nil, apperror.NotFound("User not found")
	}

	return &dto.UserProfileResponse{
		Id:        user.Id,
		Username:  user.Username,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	}, nil
}

func (s *authService) newSession(userId uuid.UUID) (*Session, error) {
	signed, cookie, err := s.issuer.Issue(userId)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &Session{UserId: userId, Token: signed, Cookie: cookie}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
