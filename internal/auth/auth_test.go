package auth

import (
	"testing"
	"time"
)

const testPassword = "correct-horse"

func newTestService(t *testing.T) *Service {
	t.Helper()

	hash, err := HashPassword(testPassword)
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}

	svc, err := NewService(Options{
		Username:     "admin",
		PasswordHash: hash,
		Secret:       "test-secret",
		TokenTTL:     time.Hour,
	})
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}
	return svc
}

func TestNewServiceRequiresCredentials(t *testing.T) {
	t.Parallel()

	if _, err := NewService(Options{PasswordHash: "x", Secret: "y"}); err == nil {
		t.Fatal("expected error for missing username")
	}
	if _, err := NewService(Options{Username: "a", Secret: "y"}); err == nil {
		t.Fatal("expected error for missing password hash")
	}
	if _, err := NewService(Options{Username: "a", PasswordHash: "x"}); err == nil {
		t.Fatal("expected error for missing secret")
	}
}

func TestLoginSuccessIssuesVerifiableToken(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)

	token, ok, err := svc.Login("admin", testPassword)
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if !ok || token == "" {
		t.Fatal("expected successful login with a token")
	}

	if !svc.IsAuthenticated(token) {
		t.Fatal("expected issued token to authenticate")
	}
}

func TestLoginFailureReturnsFalseWithoutStateChange(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)

	token, ok, err := svc.Login("admin", "wrong")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if ok || token != "" {
		t.Fatal("expected failed login")
	}

	if _, ok, _ := svc.Login("intruder", testPassword); ok {
		t.Fatal("expected unknown username to fail")
	}

	if svc.IsAuthenticated("") || svc.IsAuthenticated("garbage") {
		t.Fatal("expected no authenticated session")
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)

	token, ok, err := svc.Login("admin", testPassword)
	if err != nil || !ok {
		t.Fatalf("login failed: ok=%v err=%v", ok, err)
	}

	svc.Logout(token)

	if svc.IsAuthenticated(token) {
		t.Fatal("expected token to be revoked after logout")
	}

	// Logging out an already-revoked token is a no-op.
	svc.Logout(token)
}

func TestExpiredTokenRejected(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	base := time.Now()
	svc.now = func() time.Time { return base }

	token, ok, err := svc.Login("admin", testPassword)
	if err != nil || !ok {
		t.Fatalf("login failed: ok=%v err=%v", ok, err)
	}

	svc.now = func() time.Time { return base.Add(2 * time.Hour) }

	if svc.IsAuthenticated(token) {
		t.Fatal("expected expired token to be rejected")
	}
}

func TestOnAuthChangeFiresImmediatelyAndOnTransitions(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)

	var events []bool
	unsubscribe := svc.OnAuthChange(func(authenticated bool) {
		events = append(events, authenticated)
	})

	if len(events) != 1 || events[0] {
		t.Fatalf("expected immediate false event, got %v", events)
	}

	token, ok, err := svc.Login("admin", testPassword)
	if err != nil || !ok {
		t.Fatalf("login failed: ok=%v err=%v", ok, err)
	}
	if len(events) != 2 || !events[1] {
		t.Fatalf("expected signed-in event, got %v", events)
	}

	svc.Logout(token)
	if len(events) != 3 || events[2] {
		t.Fatalf("expected signed-out event, got %v", events)
	}

	unsubscribe()
	unsubscribe() // idempotent

	if _, ok, _ := svc.Login("admin", testPassword); !ok {
		t.Fatal("login failed after unsubscribe")
	}
	if len(events) != 3 {
		t.Fatalf("expected no events after unsubscribe, got %v", events)
	}
}

func TestSecondSessionDoesNotRefireSignedIn(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)

	var count int
	defer svc.OnAuthChange(func(bool) { count++ })()

	if _, ok, _ := svc.Login("admin", testPassword); !ok {
		t.Fatal("first login failed")
	}
	if _, ok, _ := svc.Login("admin", testPassword); !ok {
		t.Fatal("second login failed")
	}

	// Immediate snapshot + one signed-in transition.
	if count != 2 {
		t.Fatalf("expected 2 events, got %d", count)
	}
}
