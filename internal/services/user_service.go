package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/spysignal-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/spysignal-backend/internal/models"
	"gorm.io/gorm"
)

// tokenBytes is the entropy of a bearer token; it is stored hex-encoded.
const tokenBytes = 32

type UserService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// Register returns the existing account for a known username, otherwise it
// creates one with a fresh token. The token of an existing account is never
// rotated and telegram_id is not updated on repeat calls.
func (s *UserService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error) {
	if req.Username == nil || strings.TrimSpace(*req.Username) == "" {
		return nil, ErrUsernameRequired
	}
	username := *req.Username
	db := s.db.WithContext(ctx)

	existing, err := s.findByUsername(db, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return registerResponse(existing), nil
	}

	token, err := generateToken()
	if err != nil {
		return nil, err
	}

	user := models.User{
		Username:   username,
		TelegramID: req.TelegramID,
		Token:      token,
		CreatedAt:  s.now(),
	}
	if err := db.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// A concurrent registration of the same username won.
			if winner, lookupErr := s.findByUsername(db, username); lookupErr == nil && winner != nil {
				return registerResponse(winner), nil
			}
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return registerResponse(&user), nil
}

// Authenticate resolves an Authorization header of the form "Bearer <token>".
func (s *UserService) Authenticate(ctx context.Context, header string) (*models.User, error) {
	if header == "" {
		return nil, ErrMissingCredentials
	}

	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return nil, ErrInvalidCredentialsFormat
	}

	var users []models.User
	if err := s.db.WithContext(ctx).Where("token = ?", parts[1]).Limit(1).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to look up token: %w", err)
	}
	if len(users) == 0 {
		return nil, ErrInvalidToken
	}
	return &users[0], nil
}

// Search returns the user whose id equals an all-digit query first, followed
// by every case-insensitive username substring match ordered by lowercased
// username, then username, then id.
func (s *UserService) Search(ctx context.Context, query string) ([]dto.UserResult, error) {
	q := strings.TrimSpace(query)
	results := make([]dto.UserResult, 0)
	if q == "" {
		return results, nil
	}
	db := s.db.WithContext(ctx)

	var idMatch uint
	if isDigits(q) {
		if id, err := strconv.ParseUint(q, 10, 63); err == nil {
			var byID []models.User
			if err := db.Where("id = ?", id).Limit(1).Find(&byID).Error; err != nil {
				return nil, fmt.Errorf("failed to search users by id: %w", err)
			}
			if len(byID) == 1 {
				idMatch = byID[0].ID
				results = append(results, dto.UserResult{ID: byID[0].ID, Username: byID[0].Username})
			}
		}
	}

	var byName []models.User
	pattern := "%" + escapeLike(strings.ToLower(q)) + "%"
	if err := db.Where(`LOWER(username) LIKE ? ESCAPE '\'`, pattern).
		Order("LOWER(username) asc, username asc, id asc").
		Find(&byName).Error; err != nil {
		return nil, fmt.Errorf("failed to search users by username: %w", err)
	}
	for _, u := range byName {
		if u.ID == idMatch {
			continue
		}
		results = append(results, dto.UserResult{ID: u.ID, Username: u.Username})
	}

	return results, nil
}

// SetPubKey overwrites the caller's public key without validating its format.
func (s *UserService) SetPubKey(ctx context.Context, userID uint, req *dto.PubKeyUpdateRequest) error {
	if req.PubKey == nil {
		return ErrPubKeyRequired
	}
	result := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Update("pubkey", *req.PubKey)
	if result.Error != nil {
		return fmt.Errorf("failed to save pubkey: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (s *UserService) GetPubKey(ctx context.Context, userID uint) (string, error) {
	var users []models.User
	if err := s.db.WithContext(ctx).Where("id = ?", userID).Limit(1).Find(&users).Error; err != nil {
		return "", fmt.Errorf("failed to load pubkey: %w", err)
	}
	if len(users) == 0 || users[0].PubKey == nil || *users[0].PubKey == "" {
		return "", ErrPubKeyNotFound
	}
	return *users[0].PubKey, nil
}

func (s *UserService) findByUsername(db *gorm.DB, username string) (*models.User, error) {
	var users []models.User
	if err := db.Where("username = ?", username).Limit(1).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if len(users) == 0 {
		return nil, nil
	}
	return &users[0], nil
}

func registerResponse(u *models.User) *dto.RegisterResponse {
	return &dto.RegisterResponse{ID: u.ID, Username: u.Username, Token: u.Token}
}

func generateToken() (string, error) {
	raw := make([]byte, tokenBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return hex.EncodeToString(raw), nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
