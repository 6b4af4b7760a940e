package domain

import "time"

// SocialProvider identifies a federated identity source.
type SocialProvider string

const (
	ProviderGoogle SocialProvider = "google"
	ProviderNaver  SocialProvider = "naver"
	ProviderKakao  SocialProvider = "kakao"
)

// User is the local account. Accounts are created either by sign-up
// (password-based) or on first social login (empty password hash).
//
// Uniqueness is enforced by the store schema: user_id, email (when present),
// and the (social_provider, provider_user_id) pair.
type User struct {
	UserID       string
	Name         string
	Email        string
	PasswordHash string // argon2 encoded; empty for social-only accounts
	Birth        string

	SocialProvider SocialProvider // empty when the account has no linked provider
	ProviderUserID string
	EmailVerified  *bool // as reported by the provider; nil when unknown
	ProfileImage   string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// SocialLink is the state transition that attaches a provider identity to an
// existing account. It is applied through the store's update path so the
// uniqueness constraints are checked at the same boundary as the mutation.
// It never touches the password or the user_id.
type SocialLink struct {
	Provider       SocialProvider
	ProviderUserID string
	EmailVerified  *bool
	ProfileImage   string
}
