package assistant

import (
	"errors"
	"net/http"
	"testing"

	"github.com/RaffaelSchaefer/gc25-sub000/pkg/models"
)

type fakeResolver struct {
	session *models.Session
	calls   int
}

func (f *fakeResolver) Resolve(headers http.Header) *models.Session {
	f.calls++
	return f.session
}

func TestFromCacheLoadsOnce(t *testing.T) {
	rc := NewRunContext(nil, nil, nil)
	calls := 0
	loader := func() (int, error) {
		calls++
		return 42, nil
	}

	for i := 0; i < 3; i++ {
		v, err := FromCache(rc, "k", loader)
		if err != nil {
			t.Fatal(err)
		}
		if v != 42 {
			t.Fatalf("got %d, want 42", v)
		}
	}
	if calls != 1 {
		t.Fatalf("loader ran %d times, want 1", calls)
	}
}

func TestFromCacheNilCacheBypasses(t *testing.T) {
	rc := &RunContext{}
	calls := 0
	loader := func() (string, error) {
		calls++
		return "v", nil
	}

	for i := 0; i < 2; i++ {
		if _, err := FromCache(rc, "k", loader); err != nil {
			t.Fatal(err)
		}
	}
	if calls != 2 {
		t.Fatalf("loader ran %d times, want 2 with caching disabled", calls)
	}
}

func TestFromCacheDoesNotCacheErrors(t *testing.T) {
	rc := NewRunContext(nil, nil, nil)
	calls := 0
	loader := func() (int, error) {
		calls++
		if calls == 1 {
			return 0, errors.New("transient")
		}
		return 7, nil
	}

	if _, err := FromCache(rc, "k", loader); err == nil {
		t.Fatal("expected error from first load")
	}
	v, err := FromCache(rc, "k", loader)
	if err != nil {
		t.Fatal(err)
	}
	if v != 7 {
		t.Fatalf("got %d, want 7", v)
	}
	if calls != 2 {
		t.Fatalf("loader ran %d times, want 2", calls)
	}
}

func TestFromCacheKeysAreIndependent(t *testing.T) {
	rc := NewRunContext(nil, nil, nil)
	load := func(v int) func() (int, error) {
		return func() (int, error) { return v, nil }
	}

	a, _ := FromCache(rc, CacheKey.Event("e1"), load(1))
	b, _ := FromCache(rc, CacheKey.Goodie("e1"), load(2))
	c, _ := FromCache(rc, CacheKey.EventParticipants("e1", 10), load(3))
	d, _ := FromCache(rc, CacheKey.EventParticipants("e1", 20), load(4))

	if a != 1 || b != 2 || c != 3 || d != 4 {
		t.Fatalf("cache keys collided: %d %d %d %d", a, b, c, d)
	}
}

func TestRequireSessionLazyResolvesOnce(t *testing.T) {
	resolver := &fakeResolver{session: &models.Session{User: models.User{ID: "u1"}}}
	headers := http.Header{"Authorization": []string{"Bearer token"}}
	rc := NewRunContext(nil, headers, resolver)

	for i := 0; i < 3; i++ {
		session, errRes := RequireSession(rc)
		if errRes != nil {
			t.Fatalf("unexpected auth error: %s", errRes.Content)
		}
		if session.User.ID != "u1" {
			t.Fatalf("got user %q, want u1", session.User.ID)
		}
	}
	if resolver.calls != 1 {
		t.Fatalf("resolver ran %d times, want 1", resolver.calls)
	}
}

func TestRequireSessionAnonymous(t *testing.T) {
	t.Run("no resolver", func(t *testing.T) {
		rc := NewRunContext(nil, nil, nil)
		session, errRes := RequireSession(rc)
		if session != nil {
			t.Fatal("expected nil session")
		}
		assertErrorKind(t, errRes, ErrAuthRequired)
	})

	t.Run("resolver yields nil", func(t *testing.T) {
		resolver := &fakeResolver{}
		rc := NewRunContext(nil, http.Header{}, resolver)
		_, errRes := RequireSession(rc)
		assertErrorKind(t, errRes, ErrAuthRequired)

		// Failed resolution is not retried within the request.
		_, errRes = RequireSession(rc)
		assertErrorKind(t, errRes, ErrAuthRequired)
		if resolver.calls != 1 {
			t.Fatalf("resolver ran %d times, want 1", resolver.calls)
		}
	})

	t.Run("pre-resolved session skips resolver", func(t *testing.T) {
		resolver := &fakeResolver{}
		rc := NewRunContext(&models.Session{User: models.User{ID: "u2"}}, http.Header{}, resolver)
		session, errRes := RequireSession(rc)
		if errRes != nil {
			t.Fatalf("unexpected auth error: %s", errRes.Content)
		}
		if session.User.ID != "u2" {
			t.Fatalf("got user %q, want u2", session.User.ID)
		}
		if resolver.calls != 0 {
			t.Fatalf("resolver ran %d times, want 0", resolver.calls)
		}
	})
}
