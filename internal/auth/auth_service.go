package auth

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	autherrors "github.com/Corose/dashboard/internal/auth/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

//go:generate mockgen -source=auth_service.go -destination=mock/auth_service_mock.go -package=mock
type Service interface {
	Login(ctx context.Context, username, password string) (TokenResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (TokenResponse, error)
	GetMe(ctx context.Context, userID string) (*AuthResponse, error)
	Register(ctx context.Context, req RegisterRequest) (AuthResponse, error)
}

type service struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("auth.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("auth.service")
	}
	return &service{repo: repo, logger: l}
}

func (s *service) Login(ctx context.Context, username, password string) (TokenResponse, error) {
	account, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return TokenResponse{}, autherrors.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.Password), []byte(password)); err != nil {
		s.logger.Warn("login password mismatch", zap.String("username", username))
		return TokenResponse{}, autherrors.ErrInvalidCredentials
	}

	accessToken, err := s.generateToken(account, time.Minute*15)
	if err != nil {
		return TokenResponse{}, autherrors.ErrTokenGenerationFailed
	}
	refreshToken, err := s.generateToken(account, time.Hour*24*7)
	if err != nil {
		return TokenResponse{}, autherrors.ErrTokenGenerationFailed
	}

	s.logger.Info("login success", zap.String("username", username), zap.String("role", account.Role))

	return TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         mapToResponse(account),
	}, nil
}

func (s *service) RefreshToken(ctx context.Context, refreshToken string) (TokenResponse, error) {
	token, err := jwt.Parse(refreshToken, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, autherrors.ErrInvalidToken
		}
		return []byte(os.Getenv("JWT_SECRET")), nil
	})

	if err != nil || !token.Valid {
		return TokenResponse{}, autherrors.ErrInvalidRefreshToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return TokenResponse{}, autherrors.ErrInvalidToken
	}

	userIDStr, ok := claims["user_id"].(string)
	if !ok {
		return TokenResponse{}, autherrors.ErrInvalidToken
	}

	userID, err := strconv.ParseUint(userIDStr, 10, 64)
	if err != nil {
		return TokenResponse{}, autherrors.ErrInvalidToken
	}

	account, err := s.repo.GetByID(ctx, uint(userID))
	if err != nil {
		return TokenResponse{}, autherrors.ErrAccountNotFound
	}

	newAccessToken, err := s.generateToken(account, time.Minute*15)
	if err != nil {
		return TokenResponse{}, autherrors.ErrTokenGenerationFailed
	}
	newRefreshToken, err := s.generateToken(account, time.Hour*24*7)
	if err != nil {
		return TokenResponse{}, autherrors.ErrTokenGenerationFailed
	}

	return TokenResponse{
		AccessToken:  newAccessToken,
		RefreshToken: newRefreshToken,
		User:         mapToResponse(account),
	}, nil
}

func (s *service) GetMe(ctx context.Context, userID string) (*AuthResponse, error) {
	id, err := strconv.ParseUint(userID, 10, 64)
	if err != nil {
		return nil, autherrors.ErrInvalidToken
	}

	account, err := s.repo.GetByID(ctx, uint(id))
	if err != nil {
		return nil, autherrors.ErrAccountNotFound
	}

	resp := mapToResponse(account)
	return &resp, nil
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (AuthResponse, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return AuthResponse{}, err
	}

	account := &StaffAccount{
		Username: req.Username,
		Password: string(hash),
		Role:     req.Role,
	}

	if err := s.repo.Create(ctx, account); err != nil {
		return AuthResponse{}, mapRepositoryError(err)
	}

	s.logger.Info("staff account registered",
		zap.String("username", account.Username),
		zap.String("role", account.Role),
	)

	return mapToResponse(account), nil
}

func (s *service) generateToken(account *StaffAccount, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"user_id":  fmt.Sprintf("%d", account.ID),
		"username": account.Username,
		"role":     account.Role,
		"exp":      time.Now().Add(ttl).Unix(),
		"iat":      time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(os.Getenv("JWT_SECRET")))
}

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return autherrors.ErrAccountNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return autherrors.ErrUsernameAlreadyExists
	}
	if strings.Contains(strings.ToLower(err.Error()), "duplicate key value") {
		return autherrors.ErrUsernameAlreadyExists
	}

	return err
}

func mapToResponse(account *StaffAccount) AuthResponse {
	return AuthResponse{
		ID:       account.ID,
		Username: account.Username,
		Role:     account.Role,
	}
}
