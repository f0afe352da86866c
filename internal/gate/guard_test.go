package gate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kimutaijeremy/handyproconnect/internal/models"
	"github.com/Kimutaijeremy/handyproconnect/internal/session"
)

type hop struct{ from, to string }

func newGuard(t *testing.T, store *session.Store) (*Guard, *[]hop) {
	t.Helper()
	var redirects []hop
	g := NewGuard(store, DefaultRoutes(), OnRedirect(func(from, to string) {
		redirects = append(redirects, hop{from, to})
	}))
	t.Cleanup(g.Close)
	return g, &redirects
}

func TestGuard_NavigateAnonymous(t *testing.T) {
	g, redirects := newGuard(t, session.NewStore(nil))

	route := g.Navigate("/dashboard")
	assert.Equal(t, "/login", route.Path)
	assert.Equal(t, []hop{{"/dashboard", "/login"}}, *redirects)
	assert.Equal(t, "/login", g.Current().Path)
}

func TestGuard_CustomerOnProfessionalRoute(t *testing.T) {
	store := session.NewStore(nil)
	require.NoError(t, store.CompleteAuth(&models.User{ID: 2, Role: models.RoleCustomer}, "tok"))
	g, redirects := newGuard(t, store)

	route := g.Navigate("/pro/jobs")
	assert.Equal(t, "/dashboard", route.Path)
	assert.Equal(t, []hop{{"/pro/jobs", "/dashboard"}}, *redirects)
}

func TestGuard_LogoutRedirectsImmediately(t *testing.T) {
	store := session.NewStore(nil)
	require.NoError(t, store.CompleteAuth(&models.User{ID: 3, Role: models.RoleProfessional}, "tok"))
	g, redirects := newGuard(t, store)

	route := g.Navigate("/job/9")
	require.Equal(t, "/job/9", route.Path)
	require.Empty(t, *redirects)

	store.Clear()

	assert.Equal(t, "/login", g.Current().Path)
	assert.Equal(t, []hop{{"/job/9", "/login"}}, *redirects)
}

func TestGuard_PublicRouteUnaffectedByLogout(t *testing.T) {
	store := session.NewStore(nil)
	require.NoError(t, store.CompleteAuth(&models.User{ID: 3, Role: models.RoleCustomer}, "tok"))
	g, redirects := newGuard(t, store)

	g.Navigate("/services")
	store.Clear()

	assert.Equal(t, "/services", g.Current().Path)
	assert.Empty(t, *redirects)
}

func TestGuard_Close(t *testing.T) {
	store := session.NewStore(nil)
	require.NoError(t, store.CompleteAuth(&models.User{ID: 3, Role: models.RoleCustomer}, "tok"))
	g, redirects := newGuard(t, store)

	g.Navigate("/dashboard")
	g.Close()
	store.Clear()

	assert.Equal(t, "/dashboard", g.Current().Path)
	assert.Empty(t, *redirects)
}

func TestGuard_UnknownRoute(t *testing.T) {
	g, redirects := newGuard(t, session.NewStore(nil))

	route := g.Navigate("/missing")
	assert.Equal(t, "/", route.Path)
	assert.Equal(t, []hop{{"/missing", "/"}}, *redirects)
}
