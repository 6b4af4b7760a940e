package social

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wonfolio/auth/internal/auth/domain"
)

// tokenServer fakes a provider token endpoint. It records the submitted form
// and answers with the given JSON body.
func tokenServer(t *testing.T, status int, body string, gotForm *map[string][]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, r.ParseForm())
		if gotForm != nil {
			*gotForm = r.PostForm
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func userinfoServer(t *testing.T, status int, body string, gotAuth *string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		if gotAuth != nil {
			*gotAuth = r.Header.Get("Authorization")
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestExchangeCode(t *testing.T) {
	ctx := context.Background()

	t.Run("submits authorization code form", func(t *testing.T) {
		var form map[string][]string
		srv := tokenServer(t, http.StatusOK, `{"access_token":"provider-token"}`, &form)

		g := NewGoogle(Config{
			ClientID:     "cid",
			ClientSecret: "shh",
			RedirectURI:  "https://app.example/cb",
			TokenURL:     srv.URL,
		})

		tok, err := g.ExchangeCode(ctx, "auth-code")
		require.NoError(t, err)
		require.Equal(t, "provider-token", tok)

		require.Equal(t, []string{"authorization_code"}, form["grant_type"])
		require.Equal(t, []string{"cid"}, form["client_id"])
		require.Equal(t, []string{"shh"}, form["client_secret"])
		require.Equal(t, []string{"auth-code"}, form["code"])
		require.Equal(t, []string{"https://app.example/cb"}, form["redirect_uri"])
	})

	t.Run("omits empty client secret", func(t *testing.T) {
		var form map[string][]string
		srv := tokenServer(t, http.StatusOK, `{"access_token":"tok"}`, &form)

		k := NewKakao(Config{ClientID: "cid", TokenURL: srv.URL})
		_, err := k.ExchangeCode(ctx, "auth-code")
		require.NoError(t, err)

		_, present := form["client_secret"]
		require.False(t, present)
	})

	t.Run("missing access_token", func(t *testing.T) {
		srv := tokenServer(t, http.StatusOK, `{"token_type":"bearer"}`, nil)

		g := NewGoogle(Config{TokenURL: srv.URL})
		_, err := g.ExchangeCode(ctx, "auth-code")
		require.ErrorIs(t, err, ErrTokenExchange)
	})

	t.Run("non-200 response", func(t *testing.T) {
		srv := tokenServer(t, http.StatusBadRequest, `{"error":"invalid_grant"}`, nil)

		g := NewGoogle(Config{TokenURL: srv.URL})
		_, err := g.ExchangeCode(ctx, "expired-code")
		require.ErrorIs(t, err, ErrTokenExchange)
	})
}

func TestGoogleFetchProfile(t *testing.T) {
	ctx := context.Background()

	t.Run("maps flat claims", func(t *testing.T) {
		var auth string
		srv := userinfoServer(t, http.StatusOK,
			`{"sub":"g-123","email":"u@example.com","name":"U Ser","email_verified":true,"picture":"https://img/x.png"}`,
			&auth)

		g := NewGoogle(Config{UserinfoURL: srv.URL})
		p, err := g.FetchProfile(ctx, "provider-token")
		require.NoError(t, err)

		require.Equal(t, "Bearer provider-token", auth)
		require.Equal(t, domain.ProviderGoogle, p.Provider)
		require.Equal(t, "g-123", p.ProviderUserID)
		require.Equal(t, "u@example.com", p.Email)
		require.Equal(t, "U Ser", p.DisplayName)
		require.NotNil(t, p.EmailVerified)
		require.True(t, *p.EmailVerified)
		require.Equal(t, "https://img/x.png", p.ProfileImage)
	})

	t.Run("missing sub", func(t *testing.T) {
		srv := userinfoServer(t, http.StatusOK, `{"email":"u@example.com"}`, nil)

		g := NewGoogle(Config{UserinfoURL: srv.URL})
		_, err := g.FetchProfile(ctx, "tok")
		require.ErrorIs(t, err, ErrUserinfo)
	})
}

func TestNaverFetchProfile(t *testing.T) {
	ctx := context.Background()

	t.Run("maps nested response", func(t *testing.T) {
		srv := userinfoServer(t, http.StatusOK,
			`{"resultcode":"00","response":{"id":"n-77","email":"n@example.com","nickname":"nick","profile_image":"https://img/n.png"}}`,
			nil)

		n := NewNaver(Config{UserinfoURL: srv.URL})
		p, err := n.FetchProfile(ctx, "tok")
		require.NoError(t, err)

		require.Equal(t, domain.ProviderNaver, p.Provider)
		require.Equal(t, "n-77", p.ProviderUserID)
		require.Equal(t, "n@example.com", p.Email)
		require.Equal(t, "nick", p.DisplayName)
		require.Nil(t, p.EmailVerified)
	})

	t.Run("name beats nickname", func(t *testing.T) {
		srv := userinfoServer(t, http.StatusOK,
			`{"response":{"id":"n-77","name":"Real Name","nickname":"nick"}}`, nil)

		n := NewNaver(Config{UserinfoURL: srv.URL})
		p, err := n.FetchProfile(ctx, "tok")
		require.NoError(t, err)
		require.Equal(t, "Real Name", p.DisplayName)
	})

	t.Run("missing response id", func(t *testing.T) {
		srv := userinfoServer(t, http.StatusOK, `{"response":{}}`, nil)

		n := NewNaver(Config{UserinfoURL: srv.URL})
		_, err := n.FetchProfile(ctx, "tok")
		require.ErrorIs(t, err, ErrUserinfo)
	})
}

func TestKakaoFetchProfile(t *testing.T) {
	ctx := context.Background()

	t.Run("maps numeric id with account", func(t *testing.T) {
		srv := userinfoServer(t, http.StatusOK,
			`{"id":42,"kakao_account":{"email":"k@example.com","is_email_verified":false,"profile":{"nickname":"kk","profile_image_url":"https://img/k.png"}}}`,
			nil)

		k := NewKakao(Config{UserinfoURL: srv.URL})
		p, err := k.FetchProfile(ctx, "tok")
		require.NoError(t, err)

		require.Equal(t, domain.ProviderKakao, p.Provider)
		require.Equal(t, "42", p.ProviderUserID)
		require.Equal(t, "k@example.com", p.Email)
		require.Equal(t, "kk", p.DisplayName)
		require.NotNil(t, p.EmailVerified)
		require.False(t, *p.EmailVerified)
	})

	t.Run("tolerates absent kakao_account", func(t *testing.T) {
		srv := userinfoServer(t, http.StatusOK, `{"id":42}`, nil)

		k := NewKakao(Config{UserinfoURL: srv.URL})
		p, err := k.FetchProfile(ctx, "tok")
		require.NoError(t, err)
		require.Equal(t, "42", p.ProviderUserID)
		require.Empty(t, p.Email)
		require.Empty(t, p.DisplayName)
	})

	t.Run("missing id", func(t *testing.T) {
		srv := userinfoServer(t, http.StatusOK, `{"kakao_account":{}}`, nil)

		k := NewKakao(Config{UserinfoURL: srv.URL})
		_, err := k.FetchProfile(ctx, "tok")
		require.ErrorIs(t, err, ErrUserinfo)
	})
}

func TestRegistry(t *testing.T) {
	t.Parallel()

	reg := NewRegistry(
		NewGoogle(Config{}),
		NewNaver(Config{}),
		NewKakao(Config{}),
	)

	for _, key := range []string{"google", "naver", "kakao"} {
		p, err := reg.Resolve(key)
		require.NoError(t, err)
		require.Equal(t, key, string(p.Key()))
	}

	_, err := reg.Resolve("github")
	require.ErrorIs(t, err, ErrUnsupportedProvider)
}
