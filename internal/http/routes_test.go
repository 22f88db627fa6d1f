package httpx

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudboard/cloudboard/internal/domain/model"
	mocksauth "github.com/cloudboard/cloudboard/internal/mocks/auth"
	"github.com/cloudboard/cloudboard/internal/ports"
	"github.com/cloudboard/cloudboard/internal/reporting"
	"github.com/cloudboard/cloudboard/internal/service"
)

type memoryAlbumRepo struct {
	albums []model.Album
}

func (r *memoryAlbumRepo) ListAlbums(_ context.Context, in ports.ListAlbumsInput) (ports.AlbumPage, error) {
	limit := int(in.Limit)
	start := 0
	if in.Cursor != nil {
		for i, a := range r.albums {
			if a.AlbumName == *in.Cursor {
				start = i + 1
				break
			}
		}
	}
	end := start + limit
	if end >= len(r.albums) {
		return ports.AlbumPage{Albums: r.albums[start:]}, nil
	}
	cursor := r.albums[end-1].AlbumName
	return ports.AlbumPage{Albums: r.albums[start:end], NextCursor: &cursor}, nil
}

func (r *memoryAlbumRepo) PutAlbum(_ context.Context, album model.Album) error {
	r.albums = append(r.albums, album)
	return nil
}

type stubCosts struct{ costs []reporting.MonthlyCost }

func (s *stubCosts) MonthlyCosts(context.Context) ([]reporting.MonthlyCost, error) {
	return s.costs, nil
}

type stubResources struct{ counts reporting.ResourceCounts }

func (s *stubResources) Counts(context.Context) (reporting.ResourceCounts, error) {
	return s.counts, nil
}

type routerFixture struct {
	provider *mocksauth.MockIdentityProvider
	repo     *memoryAlbumRepo
	server   *httptest.Server
	client   *http.Client
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()
	provider := mocksauth.NewMockIdentityProvider()
	auth := service.NewAuthService(service.AuthServiceOptions{
		Provider: provider,
		Sessions: mocksauth.NewMemorySessionStore(),
		Pending:  mocksauth.NewMemoryPendingStore(),
	})
	repo := &memoryAlbumRepo{albums: []model.Album{
		{AlbumName: "A"}, {AlbumName: "B"}, {AlbumName: "C"},
	}}

	handler := NewRouter(RouterServices{
		Auth:   auth,
		Albums: service.NewAlbumService(repo),
		Users:  service.NewUserService(&nullDirectory{}),
		Costs: &stubCosts{costs: []reporting.MonthlyCost{
			{Month: "2024-04-01", Amount: 8.5, Unit: "USD"},
		}},
		Resources: &stubResources{counts: reporting.ResourceCounts{Lambdas: 2}},
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	jar := newCookieClient(t, server)
	return &routerFixture{provider: provider, repo: repo, server: server, client: jar}
}

type nullDirectory struct{}

func (nullDirectory) CreateUser(_ context.Context, in model.NewUserInput) (model.User, error) {
	return model.User{Email: in.Email, IsAdmin: in.IsAdmin}, nil
}

func (nullDirectory) ListUsers(context.Context, ports.ListUsersInput) (ports.UserPage, error) {
	return ports.UserPage{}, nil
}

func newCookieClient(t *testing.T, server *httptest.Server) *http.Client {
	t.Helper()
	client := server.Client()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client.Jar = jar
	return client
}

func (fx *routerFixture) login(t *testing.T, username string) {
	t.Helper()
	resp, err := fx.client.Post(fx.server.URL+"/auth/login", "application/json",
		strings.NewReader(`{"username":"`+username+`","password":"pw"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRouter_HealthIsPublic(t *testing.T) {
	fx := newRouterFixture(t)

	resp, err := fx.client.Get(fx.server.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRouter_AlbumsRequireAuth(t *testing.T) {
	fx := newRouterFixture(t)

	resp, err := fx.client.Get(fx.server.URL + "/api/albums")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRouter_AlbumPagination(t *testing.T) {
	fx := newRouterFixture(t)
	fx.login(t, "user@example.com")

	resp, err := fx.client.Get(fx.server.URL + "/api/albums?limit=2")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var page albumPageResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&page))
	require.Len(t, page.Albums, 2)
	require.NotNil(t, page.NextCursor)

	resp, err = fx.client.Get(fx.server.URL + "/api/albums?limit=2&cursor=" + *page.NextCursor)
	require.NoError(t, err)
	defer resp.Body.Close()
	page = albumPageResponse{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&page))
	require.Len(t, page.Albums, 1)
	assert.Equal(t, "C", page.Albums[0].AlbumName)
	assert.Nil(t, page.NextCursor)
}

func TestRouter_AdminRoutesForbidNonAdmins(t *testing.T) {
	fx := newRouterFixture(t)
	fx.login(t, "user@example.com") // default identity carries no Admin group

	for _, path := range []string{"/api/users", "/api/reports/costs", "/api/reports/resources"} {
		resp, err := fx.client.Get(fx.server.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusForbidden, resp.StatusCode, path)
	}
}

func TestRouter_AdminRoutes(t *testing.T) {
	fx := newRouterFixture(t)
	fx.provider.DefaultIdentity.Groups = []string{"Admin"}
	fx.login(t, "admin@example.com")

	resp, err := fx.client.Get(fx.server.URL + "/api/reports/costs")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Costs []reporting.MonthlyCost `json:"costs"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Costs, 1)
	assert.Equal(t, "2024-04-01", body.Costs[0].Month)

	resp, err = fx.client.Post(fx.server.URL+"/api/users", "application/json",
		strings.NewReader(`{"email":"new@example.com","name":"New","is_admin":true}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestRouter_CreateAlbumValidates(t *testing.T) {
	fx := newRouterFixture(t)
	fx.login(t, "user@example.com")

	resp, err := fx.client.Post(fx.server.URL+"/api/albums", "application/json",
		strings.NewReader(`{"album_name":"","artist":"X"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = fx.client.Post(fx.server.URL+"/api/albums", "application/json",
		strings.NewReader(`{"album_name":"D","artist":"X","num_songs":9}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Len(t, fx.repo.albums, 4)
}
