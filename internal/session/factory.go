package session

import (
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Factory builds the request-scoped Store for one request/response pair.
type Factory interface {
	Store(w http.ResponseWriter, r *http.Request) Store
}

// CookieFactory produces cookie-backed stores: the whole session lives in
// the browser, with the token sealed.
type CookieFactory struct {
	Codec  *Codec
	TTL    time.Duration
	Secure bool
}

func (f CookieFactory) Store(w http.ResponseWriter, r *http.Request) Store {
	return NewCookieStore(w, r, f.Codec, f.TTL, f.Secure)
}

// sessionIDCookie names the cookie holding the server-side session key.
const sessionIDCookie = "session_id"

// PostgresFactory produces database-backed stores keyed by an opaque id
// cookie. The id is random and meaningless, so it travels unsealed; the
// token itself never leaves the database.
type PostgresFactory struct {
	DB     DB
	TTL    time.Duration
	Secure bool
}

func (f PostgresFactory) Store(w http.ResponseWriter, r *http.Request) Store {
	id := f.sessionID(w, r)
	return NewPostgresStore(f.DB, id, f.TTL)
}

// sessionID reads the id cookie, minting and setting a fresh one when it
// is absent or malformed.
func (f PostgresFactory) sessionID(w http.ResponseWriter, r *http.Request) uuid.UUID {
	if c, err := r.Cookie(sessionIDCookie); err == nil {
		if id, err := uuid.Parse(c.Value); err == nil {
			return id
		}
	}

	ttl := f.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	id := uuid.New()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionIDCookie,
		Value:    id.String(),
		Path:     "/",
		MaxAge:   int(ttl / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   f.Secure,
	})
	return id
}
