// Package auth implements the credential gate for the admin surface:
// bcrypt-checked login, bearer session tokens and an observable
// signed-in state with explicit unsubscription.
package auth

import (
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// Options configures the auth service.
type Options struct {
	Username     string
	PasswordHash string // bcrypt hash of the admin password
	Secret       string // HS256 signing secret for session tokens
	TokenTTL     time.Duration
	Logger       *logrus.Logger
}

const defaultTokenTTL = 12 * time.Hour

// Service is an explicitly constructed credential gate. A successful login
// issues a signed session token; Logout revokes it. Subscribers registered
// through OnAuthChange observe the signed-in state across transitions.
type Service struct {
	username string
	hash     []byte
	secret   []byte
	ttl      time.Duration
	logger   *logrus.Logger
	now      func() time.Time

	mu          sync.Mutex
	sessions    map[string]time.Time // jti -> expiry
	subscribers map[int]func(bool)
	nextSubID   int
}

// NewService validates options and constructs the gate.
func NewService(opts Options) (*Service, error) {
	if opts.Username == "" {
		return nil, eris.New("admin username is required")
	}
	if opts.PasswordHash == "" {
		return nil, eris.New("admin password hash is required")
	}
	if opts.Secret == "" {
		return nil, eris.New("session secret is required")
	}

	ttl := opts.TokenTTL
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}

	return &Service{
		username:    opts.Username,
		hash:        []byte(opts.PasswordHash),
		secret:      []byte(opts.Secret),
		ttl:         ttl,
		logger:      opts.Logger,
		now:         time.Now,
		sessions:    make(map[string]time.Time),
		subscribers: make(map[int]func(bool)),
	}, nil
}

// Login verifies the credentials. On success it returns a session token and
// ok=true; a wrong username or password returns ok=false with no state
// change. The error return is reserved for token-signing failures.
func (s *Service) Login(username, password string) (string, bool, error) {
	if username != s.username {
		return "", false, nil
	}
	if err := bcrypt.CompareHashAndPassword(s.hash, []byte(password)); err != nil {
		if s.logger != nil {
			s.logger.WithField("username", username).Warn("failed login attempt")
		}
		return "", false, nil
	}

	now := s.now()
	jti := uuid.NewString()
	expiry := now.Add(s.ttl)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": username,
		"jti": jti,
		"iat": now.Unix(),
		"exp": expiry.Unix(),
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", false, eris.Wrap(err, "signing session token")
	}

	s.mu.Lock()
	wasAuthenticated := s.hasLiveSessionLocked()
	s.sessions[jti] = expiry
	subs := s.snapshotSubscribersLocked()
	s.mu.Unlock()

	if !wasAuthenticated {
		notify(subs, true)
	}

	return signed, true, nil
}

// Logout revokes the session carried by the token. Unknown or malformed
// tokens are ignored.
func (s *Service) Logout(token string) {
	jti, ok := s.verify(token)
	if !ok {
		return
	}

	s.mu.Lock()
	delete(s.sessions, jti)
	stillAuthenticated := s.hasLiveSessionLocked()
	subs := s.snapshotSubscribersLocked()
	s.mu.Unlock()

	if !stillAuthenticated {
		notify(subs, false)
	}
}

// IsAuthenticated reports whether the token belongs to a live session. It is
// a synchronous best-effort snapshot.
func (s *Service) IsAuthenticated(token string) bool {
	_, ok := s.verify(token)
	return ok
}

// OnAuthChange registers a callback observing the signed-in state. The
// callback fires once immediately with the current state and then on every
// transition. The returned function unsubscribes and is safe to call more
// than once.
func (s *Service) OnAuthChange(fn func(authenticated bool)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	current := s.hasLiveSessionLocked()
	s.mu.Unlock()

	fn(current)

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subscribers, id)
			s.mu.Unlock()
		})
	}
}

// verify parses and validates the token signature and expiry, then checks
// the session has not been revoked. It returns the session id on success.
func (s *Service) verify(token string) (string, bool) {
	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return "", false
	}

	parsed, err := jwt.Parse(trimmed, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithTimeFunc(func() time.Time { return s.now() }))
	if err != nil || !parsed.Valid {
		return "", false
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return "", false
	}
	jti, _ := claims["jti"].(string)
	if jti == "" {
		return "", false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	expiry, live := s.sessions[jti]
	if !live {
		return "", false
	}
	if s.now().After(expiry) {
		delete(s.sessions, jti)
		return "", false
	}
	return jti, true
}

func (s *Service) hasLiveSessionLocked() bool {
	now := s.now()
	for jti, expiry := range s.sessions {
		if now.After(expiry) {
			delete(s.sessions, jti)
			continue
		}
		return true
	}
	return false
}

func (s *Service) snapshotSubscribersLocked() []func(bool) {
	subs := make([]func(bool), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subs = append(subs, fn)
	}
	return subs
}

func notify(subs []func(bool), authenticated bool) {
	for _, fn := range subs {
		fn(authenticated)
	}
}

// HashPassword produces a bcrypt hash for configuration bootstrap.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", eris.Wrap(err, "hashing password")
	}
	return string(hash), nil
}
