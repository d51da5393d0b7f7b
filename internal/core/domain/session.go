package domain

// Session pairs the tokens with the cached user record.
type Session struct {
	AccessToken  string `json:"-"`
	RefreshToken string `json:"-"`
	User         *User  `json:"user"`
}

// Authenticated reports whether the session carries a token and a user.
func (s *Session) Authenticated() bool {
	return s != nil && s.AccessToken != "" && s.User != nil
}

// SessionState is the lifecycle position of a Session Store.
type SessionState string

const (
	StateChecking        SessionState = "checking"
	StateAuthenticated   SessionState = "authenticated"
	StateUnauthenticated SessionState = "unauthenticated"
)
