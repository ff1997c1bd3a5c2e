package session

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/najubudeen/vanturalog/internal/domain"
)

// Cookie names. The token cookie is HttpOnly and sealed; the rest are
// plain so the rendering shell can read them without a server round-trip.
const (
	cookieToken   = "auth_token"
	cookieName    = "user_name"
	cookieRole    = "user_role"
	cookieEmail   = "user_email"
	cookieAvatar  = "user_avatar"
	cookieSubject = "user_id"
)

// DefaultTTL favors long-lived persistence over short sessions: the cookie
// outlives upstream flakiness and the session dies only on explicit logout
// or a verified rejection. The long-lived bearer token is an accepted
// trade-off of that choice.
const DefaultTTL = 365 * 24 * time.Hour

// CookieStore persists one request's session in the response cookie jar.
type CookieStore struct {
	w      http.ResponseWriter
	r      *http.Request
	codec  *Codec
	ttl    time.Duration
	secure bool
}

// NewCookieStore binds a store to one request/response pair.
func NewCookieStore(w http.ResponseWriter, r *http.Request, codec *Codec, ttl time.Duration, secure bool) *CookieStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &CookieStore{w: w, r: r, codec: codec, ttl: ttl, secure: secure}
}

// Get reads the session from the request cookies. A missing or unopenable
// token cookie means no session.
func (s *CookieStore) Get(_ context.Context) (*Data, error) {
	c, err := s.r.Cookie(cookieToken)
	if err != nil {
		return nil, fmt.Errorf("session cookie: %w", domain.ErrNotFound)
	}
	token, err := s.codec.Open(c.Value)
	if err != nil {
		return nil, fmt.Errorf("session cookie: %w", domain.ErrNotFound)
	}

	d := &Data{
		Token:       token,
		DisplayName: s.plain(cookieName),
		Role:        s.plain(cookieRole),
		Email:       s.plain(cookieEmail),
		AvatarURL:   s.plain(cookieAvatar),
	}
	if raw := s.plain(cookieSubject); raw != "" {
		d.SubjectID, _ = strconv.ParseInt(raw, 10, 64)
	}
	return d, nil
}

// Set writes the complete cookie set with the configured expiry.
func (s *CookieStore) Set(_ context.Context, d *Data) error {
	sealed, err := s.codec.Seal(d.Token)
	if err != nil {
		return fmt.Errorf("session cookie: seal token: %w", err)
	}

	s.write(cookieToken, sealed, true)
	s.write(cookieName, url.QueryEscape(d.DisplayName), false)
	s.write(cookieRole, url.QueryEscape(d.Role), false)
	s.write(cookieEmail, url.QueryEscape(d.Email), false)
	if d.AvatarURL != "" {
		s.write(cookieAvatar, url.QueryEscape(d.AvatarURL), false)
	}
	if d.SubjectID != 0 {
		s.write(cookieSubject, strconv.FormatInt(d.SubjectID, 10), false)
	}
	return nil
}

// Clear expires every session cookie in one response.
func (s *CookieStore) Clear(_ context.Context) error {
	for _, name := range []string{cookieToken, cookieName, cookieRole, cookieEmail, cookieAvatar, cookieSubject} {
		http.SetCookie(s.w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			SameSite: http.SameSiteLaxMode,
			Secure:   s.secure,
		})
	}
	return nil
}

func (s *CookieStore) plain(name string) string {
	c, err := s.r.Cookie(name)
	if err != nil {
		return ""
	}
	v, err := url.QueryUnescape(c.Value)
	if err != nil {
		return c.Value
	}
	return v
}

func (s *CookieStore) write(name, value string, httpOnly bool) {
	http.SetCookie(s.w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(s.ttl / time.Second),
		HttpOnly: httpOnly,
		SameSite: http.SameSiteLaxMode,
		Secure:   s.secure,
	})
}
