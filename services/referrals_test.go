package services

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetUserProfile(t *testing.T) {
	db := openTestDB(t)
	regSvc := NewRegistrationService(db)
	refSvc := NewReferralService(db)

	user := mustRegister(t, regSvc, "alice", "alice@example.com", "")
	profile := profileOf(t, db, user.ID)

	view, err := refSvc.GetUserProfile(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", view.Username)
	assert.Equal(t, "alice@example.com", view.Email)
	assert.Equal(t, profile.ReferralCode, view.ReferralCode)
	assert.False(t, view.RegistrationDate.IsZero())
}

func TestGetUserProfileNotFound(t *testing.T) {
	db := openTestDB(t)
	refSvc := NewReferralService(db)

	_, err := refSvc.GetUserProfile(uuid.NewString())
	assert.ErrorIs(t, err, ErrProfileNotFound)
}

func TestListReferralsEmpty(t *testing.T) {
	db := openTestDB(t)
	regSvc := NewRegistrationService(db)
	refSvc := NewReferralService(db)

	user := mustRegister(t, regSvc, "alice", "alice@example.com", "")

	page, err := refSvc.ListReferrals(user.ID, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 0, page.Count)
	assert.Empty(t, page.Results)
	assert.Nil(t, page.Next)
	assert.Nil(t, page.Previous)
}

func TestListReferralsUnknownCaller(t *testing.T) {
	db := openTestDB(t)
	refSvc := NewReferralService(db)

	_, err := refSvc.ListReferrals(uuid.NewString(), 1)
	assert.ErrorIs(t, err, ErrProfileNotFound)
}

func TestListReferralsPagination(t *testing.T) {
	db := openTestDB(t)
	regSvc := NewRegistrationService(db)
	refSvc := NewReferralService(db)

	referrer := mustRegister(t, regSvc, "alice", "alice@example.com", "")
	code := profileOf(t, db, referrer.ID).ReferralCode

	for i := 0; i < 25; i++ {
		mustRegister(t, regSvc,
			fmt.Sprintf("user%02d", i),
			fmt.Sprintf("user%02d@example.com", i),
			code)
	}

	first, err := refSvc.ListReferrals(referrer.ID, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 25, first.Count)
	assert.Len(t, first.Results, 20)
	require.NotNil(t, first.Next)
	assert.Equal(t, 2, *first.Next)
	assert.Nil(t, first.Previous)

	second, err := refSvc.ListReferrals(referrer.ID, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 25, second.Count)
	assert.Len(t, second.Results, 5)
	assert.Nil(t, second.Next)
	require.NotNil(t, second.Previous)
	assert.Equal(t, 1, *second.Previous)

	for _, entry := range append(first.Results, second.Results...) {
		assert.False(t, entry.RegistrationDate.IsZero(), "referral timestamps survive paging")
		assert.NotEmpty(t, entry.ReferredUser.Username)
		assert.Len(t, entry.ReferredUser.ReferralCode, 6)
	}

	// past the end: still a valid, empty page
	third, err := refSvc.ListReferrals(referrer.ID, 3)
	require.NoError(t, err)
	assert.Empty(t, third.Results)
	assert.Nil(t, third.Next)
}
