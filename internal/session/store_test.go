package session

import (
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kimutaijeremy/handyproconnect/internal/models"
)

func testUser() *models.User {
	return &models.User{ID: 5, Email: "jane@example.com", FullName: "Jane", Role: models.RoleCustomer}
}

func newFileStore(t *testing.T) *FileTokenStore {
	t.Helper()
	fs, err := NewFileTokenStore(filepath.Join(t.TempDir(), "session.json"))
	require.NoError(t, err)
	return fs
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "jane@example.com",
		"exp": exp.Unix(),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return tok
}

func assertPairInvariant(t *testing.T, snap Snapshot) {
	t.Helper()
	assert.Equal(t, snap.Token != "", snap.User != nil, "token and user must be both present or both absent: %+v", snap)
	if snap.Status == StatusAuthenticated {
		assert.True(t, snap.Authenticated())
	} else {
		assert.Empty(t, snap.Token)
	}
}

func TestStore_InitialState(t *testing.T) {
	s := NewStore(nil)
	snap := s.Snapshot()
	assert.Equal(t, StatusAnonymous, snap.Status)
	assert.Nil(t, snap.User)
	assert.Empty(t, snap.Token)
	assert.Empty(t, snap.LastError)
}

func TestStore_Transitions(t *testing.T) {
	s := NewStore(nil)

	s.FailAuth("bad password")
	snap := s.Snapshot()
	assert.Equal(t, StatusError, snap.Status)
	assert.Equal(t, "bad password", snap.LastError)
	assertPairInvariant(t, snap)

	s.BeginAuth()
	snap = s.Snapshot()
	assert.Equal(t, StatusAuthenticating, snap.Status)
	assert.Empty(t, snap.LastError, "a new attempt clears the last error")
	assertPairInvariant(t, snap)

	require.NoError(t, s.CompleteAuth(testUser(), "tok"))
	snap = s.Snapshot()
	assert.Equal(t, StatusAuthenticated, snap.Status)
	assert.Equal(t, "tok", snap.Token)
	assert.Equal(t, int64(5), snap.User.ID)
	assert.Equal(t, models.RoleCustomer, snap.Role())
	assertPairInvariant(t, snap)

	s.BeginAuth()
	assertPairInvariant(t, s.Snapshot())
}

func TestStore_CompleteAuthRejectsHalfSession(t *testing.T) {
	s := NewStore(nil)
	s.BeginAuth()

	assert.ErrorIs(t, s.CompleteAuth(nil, "tok"), ErrIncompleteSession)
	assert.ErrorIs(t, s.CompleteAuth(testUser(), ""), ErrIncompleteSession)

	snap := s.Snapshot()
	assert.Equal(t, StatusAuthenticating, snap.Status)
	assertPairInvariant(t, snap)
}

func TestStore_SnapshotIsACopy(t *testing.T) {
	s := NewStore(nil)
	require.NoError(t, s.CompleteAuth(testUser(), "tok"))

	snap := s.Snapshot()
	snap.User.FullName = "Mallory"

	assert.Equal(t, "Jane", s.Snapshot().User.FullName)
}

func TestStore_ClearIsIdempotent(t *testing.T) {
	fs := newFileStore(t)
	s := NewStore(fs)
	require.NoError(t, s.CompleteAuth(testUser(), "tok"))

	s.Clear()
	once := s.Snapshot()
	s.Clear()
	twice := s.Snapshot()

	assert.Equal(t, once, twice)
	assert.Equal(t, Snapshot{Status: StatusAnonymous}, twice)

	stored, err := fs.Load()
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestStore_PersistsToken(t *testing.T) {
	fs := newFileStore(t)
	s := NewStore(fs)

	require.NoError(t, s.CompleteAuth(testUser(), "opaque-token"))
	stored, err := fs.Load()
	require.NoError(t, err)
	assert.Equal(t, "opaque-token", stored)

	s.FailAuth("expired")
	stored, err = fs.Load()
	require.NoError(t, err)
	assert.Empty(t, stored, "a failed attempt must not leave a token behind")
}

func TestStore_Restore(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	t.Run("no persistence", func(t *testing.T) {
		_, ok := NewStore(nil).Restore()
		assert.False(t, ok)
	})

	t.Run("opaque token", func(t *testing.T) {
		fs := newFileStore(t)
		require.NoError(t, fs.Save("opaque"))

		s := NewStore(fs, WithClock(func() time.Time { return now }))
		tok, ok := s.Restore()
		require.True(t, ok)
		assert.Equal(t, "opaque", tok)
		assert.Equal(t, StatusAnonymous, s.Snapshot().Status, "restore does not authenticate")
	})

	t.Run("live jwt", func(t *testing.T) {
		fs := newFileStore(t)
		live := signedToken(t, now.Add(time.Hour))
		require.NoError(t, fs.Save(live))

		tok, ok := NewStore(fs, WithClock(func() time.Time { return now })).Restore()
		require.True(t, ok)
		assert.Equal(t, live, tok)
	})

	t.Run("expired jwt is discarded", func(t *testing.T) {
		fs := newFileStore(t)
		require.NoError(t, fs.Save(signedToken(t, now.Add(-time.Minute))))

		_, ok := NewStore(fs, WithClock(func() time.Time { return now })).Restore()
		assert.False(t, ok)

		stored, err := fs.Load()
		require.NoError(t, err)
		assert.Empty(t, stored)
	})
}

type failingTokenStore struct{}

func (failingTokenStore) Load() (string, error) { return "", errors.New("disk gone") }
func (failingTokenStore) Save(string) error     { return errors.New("disk gone") }
func (failingTokenStore) Delete() error         { return errors.New("disk gone") }

func TestStore_PersistenceFailureKeepsMemoryState(t *testing.T) {
	s := NewStore(failingTokenStore{})

	require.NoError(t, s.CompleteAuth(testUser(), "tok"))
	assert.True(t, s.Authenticated())

	_, ok := s.Restore()
	assert.False(t, ok)
}

func TestStore_Subscribe(t *testing.T) {
	s := NewStore(nil)

	var seen []Status
	unsubscribe := s.Subscribe(func(snap Snapshot) {
		assertPairInvariant(t, snap)
		seen = append(seen, snap.Status)
	})

	s.BeginAuth()
	require.NoError(t, s.CompleteAuth(testUser(), "tok"))
	s.Clear()
	unsubscribe()
	unsubscribe()
	s.FailAuth("ignored")

	assert.Equal(t, []Status{StatusAuthenticating, StatusAuthenticated, StatusAnonymous}, seen)
}

func TestStore_SubscribersRunInOrder(t *testing.T) {
	s := NewStore(nil)

	var order []string
	s.Subscribe(func(Snapshot) { order = append(order, "first") })
	s.Subscribe(func(Snapshot) { order = append(order, "second") })

	s.Clear()
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestStore_ConcurrentReadersSeeConsistentPairs(t *testing.T) {
	s := NewStore(nil)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			s.BeginAuth()
			_ = s.CompleteAuth(testUser(), "tok")
			s.Clear()
		}
	}()

	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				snap := s.Snapshot()
				if (snap.Token != "") != (snap.User != nil) {
					t.Errorf("observed half-updated session: %+v", snap)
					return
				}
			}
		}()
	}

	wg.Wait()
}
