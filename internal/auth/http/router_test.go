package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/wonfolio/auth/internal/auth/domain"
	"github.com/wonfolio/auth/internal/auth/service"
	"github.com/wonfolio/auth/internal/auth/session"
	"github.com/wonfolio/auth/internal/auth/social"
	"github.com/wonfolio/auth/internal/auth/store/drivers/sqlite"
	"github.com/wonfolio/auth/pkg/jwtx"
	"github.com/wonfolio/auth/pkg/slogx"
)

type testEnv struct {
	router  *Router
	session *session.MemoryStore
	store   *sqlite.Store
	mails   *captureMailer
}

type captureMailer struct {
	bodies []string
}

func (m *captureMailer) Send(ctx context.Context, to, subject, body string) error {
	m.bodies = append(m.bodies, body)
	return nil
}

type stubProvider struct {
	key     domain.SocialProvider
	profile domain.SocialProfile
}

func (p *stubProvider) Key() domain.SocialProvider { return p.key }

func (p *stubProvider) ExchangeCode(ctx context.Context, code string) (string, error) {
	return "provider-token", nil
}

func (p *stubProvider) FetchProfile(ctx context.Context, token string) (domain.SocialProfile, error) {
	return p.profile, nil
}

func newTestEnv(t *testing.T, providers ...social.Provider) *testEnv {
	t.Helper()

	db, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.ApplyMigrations())

	sess := session.NewMemoryStore()
	codec, err := jwtx.NewCodec(jwtx.Config{
		Secret: []byte("router-test-secret-router-test-secret"),
		Issuer: "test-issuer",
	})
	require.NoError(t, err)

	tokens := &service.TokenService{Codec: codec, Session: sess}
	mails := &captureMailer{}

	r := NewRouter("test", db, sess, slogx.New(slogx.Config{Service: "auth-test"}))
	r.TokenService = tokens
	r.UserService = &service.UserService{Store: db, Tokens: tokens}
	r.SocialService = &service.SocialService{
		Providers: social.NewRegistry(providers...),
		Store:     db,
		Tokens:    tokens,
	}
	r.EmailService = &service.EmailService{
		Codec:   codec,
		Session: sess,
		Mailer:  mails,
		BaseURL: "https://account.example.com",
	}
	r.ApplyRoutes()

	return &testEnv{router: r, session: sess, store: db, mails: mails}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) signUp(t *testing.T, userID, email, password string) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, e.session.MarkEmailVerified(ctx, email, time.Minute))
	rec := e.do(t, http.MethodPost, "/api/auth/signup", map[string]string{
		"user_id": userID, "password": password, "name": "Test User", "email": email,
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func (e *testEnv) login(t *testing.T, userID, password string) domain.TokenPair {
	t.Helper()

	rec := e.do(t, http.MethodPost, "/api/auth/login", map[string]string{
		"user_id": userID, "password": password,
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var pair domain.TokenPair
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pair))
	return pair
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error
}

func TestSignupEndpoint(t *testing.T) {
	t.Run("rejects unverified email", func(t *testing.T) {
		env := newTestEnv(t)

		rec := env.do(t, http.MethodPost, "/api/auth/signup", map[string]string{
			"user_id": "alice", "password": "pw12345678", "name": "Alice", "email": "alice@example.com",
		}, nil)
		require.Equal(t, http.StatusForbidden, rec.Code)
		require.Equal(t, "email_not_verified", errorCode(t, rec))
	})

	t.Run("rejects missing fields", func(t *testing.T) {
		env := newTestEnv(t)

		rec := env.do(t, http.MethodPost, "/api/auth/signup", map[string]string{
			"user_id": "alice",
		}, nil)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("duplicate user id maps to conflict", func(t *testing.T) {
		env := newTestEnv(t)
		env.signUp(t, "alice", "alice@example.com", "pw12345678")

		require.NoError(t, env.session.MarkEmailVerified(context.Background(), "other@example.com", time.Minute))
		rec := env.do(t, http.MethodPost, "/api/auth/signup", map[string]string{
			"user_id": "alice", "password": "pw12345678", "name": "A2", "email": "other@example.com",
		}, nil)
		require.Equal(t, http.StatusConflict, rec.Code)
		require.Equal(t, "duplicate_user_id", errorCode(t, rec))
	})
}

func TestLoginEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.signUp(t, "alice", "alice@example.com", "pw12345678")

	t.Run("returns a token pair", func(t *testing.T) {
		pair := env.login(t, "alice", "pw12345678")
		require.NotEmpty(t, pair.AccessToken)
		require.NotEmpty(t, pair.RefreshToken)
	})

	t.Run("bad credentials map to 401", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/auth/login", map[string]string{
			"user_id": "alice", "password": "wrong",
		}, nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Equal(t, "login_failed", errorCode(t, rec))
	})

	t.Run("token responses are uncacheable", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/auth/login", map[string]string{
			"user_id": "alice", "password": "pw12345678",
		}, nil)
		require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	})
}

func TestReissueEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.signUp(t, "alice", "alice@example.com", "pw12345678")
	pair := env.login(t, "alice", "pw12345678")

	rec := env.do(t, http.MethodPost, "/api/auth/reissue", map[string]string{
		"refresh_token": pair.RefreshToken,
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var next domain.TokenPair
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &next))
	require.NotEqual(t, pair.RefreshToken, next.RefreshToken)

	t.Run("superseded token is rejected", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/auth/reissue", map[string]string{
			"refresh_token": pair.RefreshToken,
		}, nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Equal(t, "invalid_refresh_token", errorCode(t, rec))
	})
}

func TestLogoutEndpoints(t *testing.T) {
	t.Run("token-present logout revokes the session", func(t *testing.T) {
		env := newTestEnv(t)
		env.signUp(t, "alice", "alice@example.com", "pw12345678")
		pair := env.login(t, "alice", "pw12345678")

		bearer := map[string]string{"Authorization": "Bearer " + pair.AccessToken}
		rec := env.do(t, http.MethodDelete, "/api/auth/logout", nil, bearer)
		require.Equal(t, http.StatusOK, rec.Code)

		// The revoked access token no longer authenticates.
		rec = env.do(t, http.MethodDelete, "/api/auth/logout/user", nil, bearer)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Equal(t, "invalid_token", errorCode(t, rec))
	})

	t.Run("logout without a bearer token errors", func(t *testing.T) {
		env := newTestEnv(t)

		rec := env.do(t, http.MethodDelete, "/api/auth/logout", nil, nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Equal(t, "missing_token", errorCode(t, rec))
	})

	t.Run("subject-only logout is idempotent", func(t *testing.T) {
		env := newTestEnv(t)
		env.signUp(t, "alice", "alice@example.com", "pw12345678")
		pair := env.login(t, "alice", "pw12345678")

		bearer := map[string]string{"Authorization": "Bearer " + pair.AccessToken}
		for range 2 {
			rec := env.do(t, http.MethodDelete, "/api/auth/logout/user", nil, bearer)
			require.Equal(t, http.StatusOK, rec.Code)
		}

		// The refresh mapping is gone, but the access token still parses
		// until expiry: reissue fails, bearer auth still passes.
		rec := env.do(t, http.MethodPost, "/api/auth/reissue", map[string]string{
			"refresh_token": pair.RefreshToken,
		}, nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestSocialEndpoint(t *testing.T) {
	profile := domain.SocialProfile{
		Provider:       domain.ProviderGoogle,
		ProviderUserID: "g-1",
		Email:          "social@example.com",
		DisplayName:    "Social U",
	}
	env := newTestEnv(t, &stubProvider{key: domain.ProviderGoogle, profile: profile})

	t.Run("returns a pair for a known provider", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/auth/social/google", map[string]string{
			"code": "auth-code",
		}, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var pair domain.TokenPair
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pair))
		require.NotEmpty(t, pair.AccessToken)
	})

	t.Run("unknown provider maps to 400 without network", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/auth/social/github", map[string]string{
			"code": "auth-code",
		}, nil)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Equal(t, "unsupported_provider", errorCode(t, rec))
	})
}

func TestEmailEndpoints(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/email/send", map[string]string{
		"email": "new@example.com",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, env.mails.bodies, 1)

	t.Run("immediate resend hits the cooldown", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/email/send", map[string]string{
			"email": "new@example.com",
		}, nil)
		require.Equal(t, http.StatusTooManyRequests, rec.Code)
		require.Equal(t, "email_cooldown", errorCode(t, rec))
	})

	t.Run("verify link token enables signup", func(t *testing.T) {
		// Extract the token from the mailed link.
		body := env.mails.bodies[0]
		const marker = "token="
		idx := bytes.Index([]byte(body), []byte(marker))
		require.Positive(t, idx)
		token := body[idx+len(marker):]

		rec := env.do(t, http.MethodPost, "/api/email/verify?token="+token, nil, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		rec = env.do(t, http.MethodPost, "/api/auth/signup", map[string]string{
			"user_id": "newbie", "password": "pw12345678", "name": "Newbie", "email": "new@example.com",
		}, nil)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	})
}

func TestHealthEndpoints(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/livez", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/readyz", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "ok", body.Status)
}

func TestProfileEndpoints(t *testing.T) {
	env := newTestEnv(t)
	env.signUp(t, "alice", "alice@example.com", "pw12345678")
	pair := env.login(t, "alice", "pw12345678")
	auth := map[string]string{"Authorization": "Bearer " + pair.AccessToken}

	t.Run("requires a bearer token", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/auth/profile", nil, nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Equal(t, "missing_token", errorCode(t, rec))
	})

	t.Run("returns the authenticated account", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/auth/profile", nil, auth)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var body profileResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Equal(t, "alice", body.UserID)
		require.Equal(t, "Test User", body.Name)
		require.Equal(t, "alice@example.com", body.Email)
	})

	t.Run("patch updates name and birth", func(t *testing.T) {
		rec := env.do(t, http.MethodPatch, "/api/auth/profile", map[string]string{
			"name": "Alice B", "birth": "1996-04-03",
		}, auth)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var body profileResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Equal(t, "Alice B", body.Name)
		require.Equal(t, "1996-04-03", body.Birth)
	})

	t.Run("patch requires a name", func(t *testing.T) {
		rec := env.do(t, http.MethodPatch, "/api/auth/profile", map[string]string{
			"birth": "1996-04-03",
		}, auth)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("withdraw deletes the account", func(t *testing.T) {
		rec := env.do(t, http.MethodDelete, "/api/auth/profile", nil, auth)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		rec = env.do(t, http.MethodPost, "/api/auth/login", map[string]string{
			"user_id": "alice", "password": "pw12345678",
		}, nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Equal(t, "login_failed", errorCode(t, rec))
	})
}

func TestPasswordResetEndpoints(t *testing.T) {
	env := newTestEnv(t)
	env.signUp(t, "alice", "alice@example.com", "pw12345678")

	rec := env.do(t, http.MethodPost, "/api/email/reset", map[string]string{
		"email": "alice@example.com",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Len(t, env.mails.bodies, 1)

	const marker = "token="
	body := env.mails.bodies[0]
	idx := bytes.Index([]byte(body), []byte(marker))
	require.Positive(t, idx)
	token := body[idx+len(marker):]

	t.Run("redeeming the link replaces the password", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/auth/password/reset", map[string]string{
			"token": token, "new_password": "a brand new passphrase",
		}, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		rec = env.do(t, http.MethodPost, "/api/auth/login", map[string]string{
			"user_id": "alice", "password": "pw12345678",
		}, nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code)

		env.login(t, "alice", "a brand new passphrase")
	})

	t.Run("a reset token cannot verify an email", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/email/verify?token="+token, nil, nil)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Equal(t, "invalid_verification_purpose", errorCode(t, rec))
	})
}
