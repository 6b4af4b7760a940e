package domain

// SocialProfile is the provider-agnostic shape every provider userinfo
// response is normalized into before account resolution. ProviderUserID is
// the only field a provider must supply; everything else is best effort.
type SocialProfile struct {
	Provider       SocialProvider
	ProviderUserID string
	Email          string // empty when the provider did not share it
	DisplayName    string
	EmailVerified  *bool // nil when the provider does not report it
	ProfileImage   string
}

// SyntheticUserID derives the user id for accounts created from a social
// profile, e.g. "google:123".
func (p SocialProfile) SyntheticUserID() string {
	return string(p.Provider) + ":" + p.ProviderUserID
}
