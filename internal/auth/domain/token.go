package domain

// TokenPair is what a successful login, reissue, or social sign-in returns:
// the short-lived access token and the longer-lived refresh token, both
// signed JWTs.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}
