package services

import (
	"errors"
	"fmt"
	"time"

	"referral-service/models"

	"gorm.io/gorm"
)

// ErrProfileNotFound means no profile exists for the requested user id.
var ErrProfileNotFound = errors.New("profile not found")

// ReferralPageSize is the fixed number of referrals per page.
const ReferralPageSize = 20

type ReferralService struct {
	DB *gorm.DB
}

func NewReferralService(db *gorm.DB) *ReferralService {
	return &ReferralService{DB: db}
}

// ProfileView is the caller-facing snapshot of a user's profile.
type ProfileView struct {
	Username         string    `json:"username"`
	Email            string    `json:"email"`
	ReferralCode     string    `json:"referral_code"`
	RegistrationDate time.Time `json:"registration_date"`
}

// ReferralEntry is one row of the referral listing.
type ReferralEntry struct {
	ReferredUser     ProfileView `json:"referred_user"`
	RegistrationDate time.Time   `json:"registration_date"`
}

// ReferralPage carries one page of referrals plus pagination metadata.
// Next and Previous are page numbers, nil at the ends of the listing.
type ReferralPage struct {
	Count    int64           `json:"count"`
	Next     *int            `json:"next"`
	Previous *int            `json:"previous"`
	Results  []ReferralEntry `json:"results"`
}

// GetUserProfile returns the profile snapshot for the given user id.
func (s *ReferralService) GetUserProfile(userID string) (*ProfileView, error) {
	var profile models.Profile
	err := s.DB.Preload("User").Where("user_id = ?", userID).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("load profile: %w", err)
	}
	view := profileView(&profile)
	return &view, nil
}

// ListReferrals returns the page-th page of referrals made with the given
// user's code, ordered by when the referred users registered.
func (s *ReferralService) ListReferrals(userID string, page int) (*ReferralPage, error) {
	if page < 1 {
		page = 1
	}

	var profile models.Profile
	if err := s.DB.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("load profile: %w", err)
	}

	var count int64
	if err := s.DB.Model(&models.Referral{}).Where("referrer_id = ?", profile.ID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("count referrals: %w", err)
	}

	var referrals []models.Referral
	err := s.DB.Where("referrer_id = ?", profile.ID).
		Preload("ReferredUser").
		Preload("ReferredUser.User").
		Order("registration_date ASC").
		Limit(ReferralPageSize).
		Offset((page - 1) * ReferralPageSize).
		Find(&referrals).Error
	if err != nil {
		return nil, fmt.Errorf("list referrals: %w", err)
	}

	results := make([]ReferralEntry, len(referrals))
	for i, r := range referrals {
		results[i] = ReferralEntry{
			ReferredUser:     profileView(&r.ReferredUser),
			RegistrationDate: r.RegistrationDate,
		}
	}

	var next, previous *int
	if int64(page)*ReferralPageSize < count {
		n := page + 1
		next = &n
	}
	if page > 1 {
		p := page - 1
		previous = &p
	}

	return &ReferralPage{Count: count, Next: next, Previous: previous, Results: results}, nil
}

func profileView(p *models.Profile) ProfileView {
	return ProfileView{
		Username:         p.User.Username,
		Email:            p.User.Email,
		ReferralCode:     p.ReferralCode,
		RegistrationDate: p.RegistrationDate,
	}
}
