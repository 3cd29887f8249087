package common

import "context"

// GuestOwner is the persistence key for the shared anonymous portfolio.
const GuestOwner = "guest"

// Session identifies the caller of a request. A session is either anonymous
// or authenticated with a verified email address.
type Session struct {
	Email string
}

// Anonymous returns the session for an unauthenticated caller.
func Anonymous() Session {
	return Session{}
}

// Authenticated returns a session bound to the given email.
func Authenticated(email string) Session {
	return Session{Email: email}
}

// IsAuthenticated reports whether the session carries a verified identity.
func (s Session) IsAuthenticated() bool {
	return s.Email != ""
}

// StorageOwner returns the key the session's portfolio is persisted under.
// Anonymous sessions share the guest record.
func (s Session) StorageOwner() string {
	if s.Email == "" {
		return GuestOwner
	}
	return s.Email
}

type sessionKey struct{}

// WithSession returns a context carrying the session.
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// SessionFrom extracts the session from the context. Requests that never
// passed through the identity middleware resolve as anonymous.
func SessionFrom(ctx context.Context) Session {
	if s, ok := ctx.Value(sessionKey{}).(Session); ok {
		return s
	}
	return Anonymous()
}
