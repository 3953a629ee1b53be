package client

import (
	"encoding/json"
	"errors"
	"sync"
)

const (
	keyUser         = "user"
	keyAccessToken  = "accessToken"
	keyRefreshToken = "refreshToken"
)

type User struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Avatar string `json:"avatar,omitempty"`
}

// State is a point-in-time copy of a Session.
type State struct {
	User            *User
	AccessToken     string
	RefreshToken    string
	IsAuthenticated bool
	Loading         bool
	Error           string
}

// Session holds the signed-in user and tokens across two storage tiers:
// persistent (remember me) and session-scoped.
type Session struct {
	mu            sync.RWMutex
	persistent    Storage
	sessionScoped Storage
	state         State
}

// NewSession hydrates from the persistent tier first and falls back to the
// session tier.
func NewSession(persistent, sessionScoped Storage) *Session {
	if persistent == nil {
		persistent = NewMemoryStorage()
	}
	if sessionScoped == nil {
		sessionScoped = NewMemoryStorage()
	}

	s := &Session{persistent: persistent, sessionScoped: sessionScoped}
	tier := persistent
	if _, ok := persistent.Get(keyAccessToken); !ok {
		tier = sessionScoped
	}

	s.state.AccessToken, _ = tier.Get(keyAccessToken)
	s.state.RefreshToken, _ = tier.Get(keyRefreshToken)
	if raw, ok := tier.Get(keyUser); ok {
		var u User
		if err := json.Unmarshal([]byte(raw), &u); err == nil {
			s.state.User = &u
		}
	}
	s.state.IsAuthenticated = s.state.AccessToken != ""
	return s
}

func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state := s.state
	if state.User != nil {
		u := *state.User
		state.User = &u
	}
	return state
}

func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.AccessToken
}

func (s *Session) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.RefreshToken
}

// SetCredentials stores user and tokens in the persistent tier when remember
// is set, otherwise in the session tier.
func (s *Session) SetCredentials(user User, accessToken, refreshToken string, remember bool) error {
	rawUser, err := json.Marshal(user)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.User = &user
	s.state.AccessToken = accessToken
	s.state.RefreshToken = refreshToken
	s.state.IsAuthenticated = true

	tier := s.sessionScoped
	if remember {
		tier = s.persistent
	}
	return errors.Join(
		tier.Set(keyAccessToken, accessToken),
		tier.Set(keyRefreshToken, refreshToken),
		tier.Set(keyUser, string(rawUser)),
	)
}

// UpdateAccessToken writes to whichever tier holds the refresh token.
func (s *Session) UpdateAccessToken(accessToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.AccessToken = accessToken
	s.state.IsAuthenticated = accessToken != ""

	if _, ok := s.persistent.Get(keyRefreshToken); ok {
		return s.persistent.Set(keyAccessToken, accessToken)
	}
	if _, ok := s.sessionScoped.Get(keyRefreshToken); ok {
		return s.sessionScoped.Set(keyAccessToken, accessToken)
	}
	return nil
}

func (s *Session) SetUser(user User) error {
	rawUser, err := json.Marshal(user)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.User = &user
	if _, ok := s.persistent.Get(keyRefreshToken); ok {
		return s.persistent.Set(keyUser, string(rawUser))
	}
	if _, ok := s.sessionScoped.Get(keyRefreshToken); ok {
		return s.sessionScoped.Set(keyUser, string(rawUser))
	}
	return nil
}

// Logout clears the in-memory state and both tiers.
func (s *Session) Logout() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = State{}
	var errs []error
	for _, tier := range []Storage{s.persistent, s.sessionScoped} {
		for _, key := range []string{keyAccessToken, keyRefreshToken, keyUser} {
			errs = append(errs, tier.Remove(key))
		}
	}
	return errors.Join(errs...)
}

func (s *Session) setLoading(loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Loading = loading
	if loading {
		s.state.Error = ""
	}
}

func (s *Session) setError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		s.state.Error = ""
		return
	}
	s.state.Error = err.Error()
}
