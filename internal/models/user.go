package models

import "time"

// User is the full account record for a traveler identity, including
// authentication state (password hash, 2FA, face enrollment) and the
// profile fields the rest of the product reads.
type User struct {
	ID           int64  `json:"id"`
	Email        string `json:"email"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`

	Phone          string    `json:"phone,omitempty"`
	DateOfBirth    time.Time `json:"date_of_birth"`
	Gender         string    `json:"gender,omitempty"`
	Nationality    string    `json:"nationality,omitempty"`
	City           string    `json:"city,omitempty"`
	Country        string    `json:"country,omitempty"`
	Bio            string    `json:"bio,omitempty"`
	Profession     string    `json:"profession,omitempty"`
	ProfilePicture string    `json:"profile_picture,omitempty"`
	CoverPicture   string    `json:"cover_picture,omitempty"`

	// FaceEncodingData is the opaque base64 embedding produced by the face
	// service. Empty means the account has no enrolled face.
	FaceEncodingData string `json:"-"`
	FaceVerified     bool   `json:"face_verified"`

	Roles []string `json:"roles"`

	IsVerified bool `json:"is_verified"`
	IsActive   bool `json:"is_active"`
	IsBanned   bool `json:"is_banned"`

	TwoFactorEnabled bool   `json:"two_factor_enabled"`
	TwoFactorSecret  string `json:"-"`

	TravelStyles      []string `json:"travel_styles,omitempty"`
	Languages         []string `json:"languages,omitempty"`
	Interests         []string `json:"interests,omitempty"`
	PersonalityType   string   `json:"personality_type,omitempty"`
	PersonalityTraits string   `json:"personality_traits,omitempty"`
	DreamCountries    string   `json:"dream_countries,omitempty"`

	LastLogin *time.Time `json:"last_login,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// HasFace reports whether the account has enrolled face data.
func (u User) HasFace() bool {
	return u.FaceEncodingData != ""
}

// HasRole reports whether the user carries the given role.
func (u User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}
