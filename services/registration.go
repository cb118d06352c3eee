package services

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"sort"
	"strings"
	"time"

	"referral-service/logger"
	"referral-service/models"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const referralCodeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// codeGenAttempts bounds how often a colliding referral code is redrawn
// before the registration is rejected.
const codeGenAttempts = 5

// FieldErrors maps request fields to validation messages. It is the error
// type handlers turn into per-field 400 payloads.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	parts := make([]string, 0, len(e))
	for field, msg := range e {
		parts = append(parts, field+": "+msg)
	}
	sort.Strings(parts)
	return strings.Join(parts, "; ")
}

// RegisterInput is the validated registration payload.
type RegisterInput struct {
	Username     string
	Email        string
	Password     string
	ReferralCode string // optional
}

type RegistrationService struct {
	DB *gorm.DB
}

func NewRegistrationService(db *gorm.DB) *RegistrationService {
	return &RegistrationService{DB: db}
}

// Register creates the user, their profile and — when a referral code was
// supplied — the referral edge plus the referrer's point, all in a single
// transaction. A failure at any step leaves no partial state behind.
func (s *RegistrationService) Register(in RegisterInput) (*models.User, error) {
	var created models.User

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("email = ?", in.Email).Count(&count).Error; err != nil {
			return fmt.Errorf("check email: %w", err)
		}
		if count > 0 {
			return FieldErrors{"email": "email already exists"}
		}
		if err := tx.Model(&models.User{}).Where("username = ?", in.Username).Count(&count).Error; err != nil {
			return fmt.Errorf("check username: %w", err)
		}
		if count > 0 {
			return FieldErrors{"username": "username already exists"}
		}

		// Resolve the referrer before writing anything, so an unknown code
		// rejects the whole registration.
		var referrer *models.Profile
		if in.ReferralCode != "" {
			var p models.Profile
			if err := tx.Where("referral_code = ?", in.ReferralCode).First(&p).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return FieldErrors{"referral_code": "invalid referral code"}
				}
				return fmt.Errorf("lookup referral code: %w", err)
			}
			referrer = &p
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}

		created = models.User{
			ID:           uuid.NewString(),
			Username:     in.Username,
			Email:        in.Email,
			PasswordHash: hash,
		}
		if err := tx.Create(&created).Error; err != nil {
			return fmt.Errorf("create user: %w", err)
		}

		profile, err := createProfile(tx, created.ID)
		if err != nil {
			return err
		}

		if referrer != nil {
			referral := models.Referral{
				ID:             uuid.NewString(),
				ReferrerID:     referrer.ID,
				ReferredUserID: profile.ID,
			}
			if err := tx.Create(&referral).Error; err != nil {
				return fmt.Errorf("create referral: %w", err)
			}
			// Only after the edge is persisted does the referrer get their point.
			if err := awardPoint(tx, referrer.UserID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info().
		Str("user_id", created.ID).
		Str("username", created.Username).
		Bool("referred", in.ReferralCode != "").
		Msg("user registered")
	return &created, nil
}

// createProfile inserts the user's profile, redrawing the referral code a
// bounded number of times if a freshly generated code is already taken.
func createProfile(tx *gorm.DB, userID string) (*models.Profile, error) {
	for attempt := 0; attempt < codeGenAttempts; attempt++ {
		code, err := generateReferralCode()
		if err != nil {
			return nil, fmt.Errorf("generate referral code: %w", err)
		}
		var count int64
		if err := tx.Model(&models.Profile{}).Where("referral_code = ?", code).Count(&count).Error; err != nil {
			return nil, fmt.Errorf("check referral code: %w", err)
		}
		if count > 0 {
			continue
		}
		profile := models.Profile{ID: uuid.NewString(), UserID: userID, ReferralCode: code}
		if err := tx.Create(&profile).Error; err != nil {
			return nil, fmt.Errorf("create profile: %w", err)
		}
		return &profile, nil
	}
	return nil, fmt.Errorf("no free referral code after %d attempts", codeGenAttempts)
}

// awardPoint bumps the referrer's ledger row by one, creating it on first
// award. The increment runs as a single upsert so two concurrent referred
// registrations cannot lose an update.
func awardPoint(tx *gorm.DB, userID string) error {
	row := models.ReferralPoints{ID: uuid.NewString(), UserID: userID, Points: 1}
	err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"points":     gorm.Expr("referral_points.points + 1"),
			"updated_at": time.Now(),
		}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("award point: %w", err)
	}
	return nil
}

func generateReferralCode() (string, error) {
	code := make([]byte, models.ReferralCodeLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(referralCodeCharset))))
		if err != nil {
			return "", err
		}
		code[i] = referralCodeCharset[n.Int64()]
	}
	return string(code), nil
}
