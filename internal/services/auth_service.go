package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"bakeshop/internal/caching"
	"bakeshop/internal/models"
)

// AuthService handles JWT access tokens and Redis-backed refresh tokens.
type AuthService interface {
	GenerateTokens(ctx context.Context, userID uuid.UUID, role string) (*models.TokenResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*models.TokenResponse, error)
	ValidateToken(ctx context.Context, token string) (*TokenClaims, error)
	RevokeRefreshToken(ctx context.Context, refreshToken string) error
	CleanupExpiredTokens(ctx context.Context) error
}

type authService struct {
	cacheSvc   caching.CacheService
	jwtSecret  []byte
	tokenTTL   int // Access token TTL in seconds
	refreshTTL int // Refresh token TTL in seconds
}

// TokenClaims represents JWT claims
type TokenClaims struct {
	UserID  string `json:"user_id"`
	Role    string `json:"role"`
	TokenID string `json:"token_id"`
	jwt.RegisteredClaims
}

func NewAuthService(cacheSvc caching.CacheService, jwtSecret string, tokenTTLSeconds, refreshTTLSeconds int) AuthService {
	return &authService{
		cacheSvc:   cacheSvc,
		jwtSecret:  []byte(jwtSecret),
		tokenTTL:   tokenTTLSeconds,
		refreshTTL: refreshTTLSeconds,
	}
}

// GenerateTokens generates access and refresh tokens for a user
func (s *authService) GenerateTokens(ctx context.Context, userID uuid.UUID, role string) (*models.TokenResponse, error) {
	now := time.Now()
	tokenID := uuid.NewString()

	claims := TokenClaims{
		UserID:  userID.String(),
		Role:    role,
		TokenID: tokenID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "bakeshop-auth",
			Subject:   userID.String(),
			Audience:  jwt.ClaimStrings{"bakeshop-api"},
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(s.tokenTTL) * time.Second)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        tokenID,
		},
	}

	accessToken := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	accessTokenString, err := accessToken.SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign JWT: %v", err)
	}

	refreshToken := s.generateSecureToken()
	refreshTokenHash, err := s.hashToken(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("failed to hash refresh token: %v", err)
	}

	refreshTokenData := fmt.Sprintf("%s:%s:%d", userID.String(), role, now.Unix()+int64(s.refreshTTL))
	cacheKey := fmt.Sprintf("bakeshop:refresh_token:%s", refreshTokenHash)
	if err := s.cacheSvc.SetString(ctx, cacheKey, refreshTokenData, time.Duration(s.refreshTTL)*time.Second); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %v", err)
	}

	return &models.TokenResponse{
		AccessToken:  accessTokenString,
		TokenType:    "Bearer",
		ExpiresIn:    s.tokenTTL,
		RefreshToken: refreshToken,
		UserID:       userID.String(),
		Role:         role,
		TokenID:      tokenID,
		IssuedAt:     now,
	}, nil
}

// RefreshToken validates a refresh token and rotates it for a new pair.
func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (*models.TokenResponse, error) {
	refreshTokenHash, err := s.hashToken(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("failed to hash refresh token: %v", err)
	}

	cacheKey := fmt.Sprintf("bakeshop:refresh_token:%s", refreshTokenHash)
	tokenData, err := s.cacheSvc.GetString(ctx, cacheKey)
	if err != nil || tokenData == "" {
		return nil, fmt.Errorf("invalid refresh token")
	}

	parts := strings.Split(tokenData, ":")
	if len(parts) != 3 {
		return nil, fmt.Errorf("invalid token data")
	}

	userIDStr, role, expiryStr := parts[0], parts[1], parts[2]
	expiry, err := strconv.ParseInt(expiryStr, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid token expiry")
	}
	if time.Now().Unix() > expiry {
		s.cacheSvc.Delete(ctx, cacheKey)
		return nil, fmt.Errorf("refresh token expired")
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID in token")
	}

	// Rotate: the presented token is single use.
	if err := s.cacheSvc.Delete(ctx, cacheKey); err != nil {
		log.Printf("Failed to delete rotated refresh token: %v", err)
	}

	return s.GenerateTokens(ctx, userID, role)
}

// ValidateToken validates a JWT access token.
func (s *authService) ValidateToken(ctx context.Context, token string) (*TokenClaims, error) {
	jwtToken, err := jwt.ParseWithClaims(token, &TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("token validation failed: %v", err)
	}

	if claims, ok := jwtToken.Claims.(*TokenClaims); ok && jwtToken.Valid {
		return claims, nil
	}
	return nil, fmt.Errorf("invalid token claims")
}

// RevokeRefreshToken drops a refresh token so it can no longer be redeemed.
func (s *authService) RevokeRefreshToken(ctx context.Context, refreshToken string) error {
	refreshTokenHash, err := s.hashToken(refreshToken)
	if err != nil {
		return fmt.Errorf("failed to hash refresh token: %v", err)
	}
	return s.cacheSvc.Delete(ctx, fmt.Sprintf("bakeshop:refresh_token:%s", refreshTokenHash))
}

// CleanupExpiredTokens sweeps refresh tokens whose embedded expiry has
// passed. Redis TTLs expire entries on their own; this catches tokens whose
// TTL was extended or rewritten without updating the payload.
func (s *authService) CleanupExpiredTokens(ctx context.Context) error {
	keys, err := s.cacheSvc.Keys(ctx, "bakeshop:refresh_token:*")
	if err != nil {
		return fmt.Errorf("failed to list refresh tokens: %v", err)
	}

	removed := 0
	now := time.Now().Unix()
	for _, key := range keys {
		tokenData, err := s.cacheSvc.GetString(ctx, key)
		if err != nil || tokenData == "" {
			continue
		}
		parts := strings.Split(tokenData, ":")
		if len(parts) != 3 {
			continue
		}
		expiry, err := strconv.ParseInt(parts[2], 10, 64)
		if err != nil || now <= expiry {
			continue
		}
		if err := s.cacheSvc.Delete(ctx, key); err != nil {
			log.Printf("Failed to delete expired refresh token: %v", err)
			continue
		}
		removed++
	}

	if removed > 0 {
		log.Printf("Removed %d expired refresh tokens", removed)
	}
	return nil
}

// generateSecureToken generates a cryptographically secure random token
func (s *authService) generateSecureToken() string {
	bytes := make([]byte, 32)
	rand.Read(bytes)
	return base64.URLEncoding.EncodeToString(bytes)
}

// hashToken creates a SHA-256 hash of the token for secure storage
func (s *authService) hashToken(token string) (string, error) {
	hasher := sha256.New()
	if _, err := hasher.Write([]byte(token)); err != nil {
		return "", err
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}
