package auth

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"portal_backend/internal/config"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

var ErrInvalidState = errors.New("invalid oauth state")

type GoogleUser struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// GoogleOAuth runs the authorization code flow for "Sign in with Google".
type GoogleOAuth struct {
	config      *oauth2.Config
	stateSecret []byte
	stateTTL    time.Duration
	userInfoURL string
	now         func() time.Time
}

// NewGoogleOAuth returns nil when no client id is configured.
func NewGoogleOAuth(cfg *config.Config) *GoogleOAuth {
	g := cfg.OAuth.Google
	if g.ClientID == "" {
		return nil
	}
	return &GoogleOAuth{
		config: &oauth2.Config{
			ClientID:     g.ClientID,
			ClientSecret: g.ClientSecret,
			RedirectURL:  g.RedirectURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
		stateSecret: []byte(cfg.JWT.Secret),
		stateTTL:    10 * time.Minute,
		userInfoURL: googleUserInfoURL,
		now:         time.Now,
	}
}

// AuthCodeURL returns the consent page URL along with the signed state embedded in it.
func (g *GoogleOAuth) AuthCodeURL() (string, string, error) {
	state, err := g.newState()
	if err != nil {
		return "", "", err
	}
	return g.config.AuthCodeURL(state, oauth2.AccessTypeOnline), state, nil
}

// Exchange verifies state, trades code for a token and fetches the Google profile.
func (g *GoogleOAuth) Exchange(ctx context.Context, state, code string) (*GoogleUser, error) {
	if err := g.VerifyState(state); err != nil {
		return nil, err
	}

	tok, err := g.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("oauth exchange: %w", err)
	}

	client := g.config.Client(ctx, tok)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.userInfoURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch userinfo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch userinfo: status %d", resp.StatusCode)
	}

	var user GoogleUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("decode userinfo: %w", err)
	}
	if user.ID == "" || user.Email == "" {
		return nil, errors.New("userinfo without id or email")
	}
	return &user, nil
}

// State format: base64(nonce) "." unix-seconds "." base64(hmac).
func (g *GoogleOAuth) newState() (string, error) {
	nonce := make([]byte, 16)
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	payload := base64.RawURLEncoding.EncodeToString(nonce) + "." + strconv.FormatInt(g.now().Unix(), 10)
	return payload + "." + g.sign(payload), nil
}

func (g *GoogleOAuth) VerifyState(state string) error {
	idx := strings.LastIndex(state, ".")
	if idx <= 0 {
		return ErrInvalidState
	}
	payload, sig := state[:idx], state[idx+1:]
	if !hmac.Equal([]byte(sig), []byte(g.sign(payload))) {
		return ErrInvalidState
	}

	parts := strings.SplitN(payload, ".", 2)
	if len(parts) != 2 {
		return ErrInvalidState
	}
	issued, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return ErrInvalidState
	}
	if g.now().Sub(time.Unix(issued, 0)) > g.stateTTL {
		return ErrInvalidState
	}
	return nil
}

func (g *GoogleOAuth) sign(payload string) string {
	mac := hmac.New(sha256.New, g.stateSecret)
	mac.Write([]byte(payload))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
