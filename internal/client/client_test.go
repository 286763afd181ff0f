package client_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foxxcyber/compwatch/internal/client"
	"github.com/foxxcyber/compwatch/internal/models"
	"github.com/foxxcyber/compwatch/internal/testutil"
)

type countingTransport struct {
	requests atomic.Int32
}

func (t *countingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	t.requests.Add(1)
	return http.DefaultTransport.RoundTrip(req)
}

func newClient(t *testing.T, baseURL string, store client.KeyValueStore) (*client.Client, *countingTransport) {
	t.Helper()
	transport := &countingTransport{}
	return client.New(baseURL, store, client.WithHTTPClient(&http.Client{Transport: transport})), transport
}

func TestProtectedCallsWithoutTokenSkipNetwork(t *testing.T) {
	api := testutil.NewAPI(t)
	c, transport := newClient(t, api.Server.URL, client.NewMemoryStore())
	ctx := t.Context()

	calls := map[string]func() error{
		"me":               func() error { _, err := c.Me(ctx); return err },
		"tracking status":  func() error { _, err := c.TrackingStatus(ctx); return err },
		"set tracking":     func() error { return c.SetTrackingStatus(ctx, true) },
		"business profile": func() error { _, err := c.BusinessProfile(ctx); return err },
		"search": func() error {
			_, err := c.SearchCompetitors(ctx, models.CompetitorSearchRequest{BusinessType: "Cafe", Location: "NY"})
			return err
		},
		"bulk select":     func() error { _, err := c.BulkSelect(ctx, []int{1}, nil); return err },
		"add competitor":  func() error { _, err := c.AddCompetitor(ctx, &models.ManualCompetitorRequest{Name: "x"}); return err },
		"list":            func() error { _, err := c.ListCompetitors(ctx, false); return err },
		"update":          func() error { _, err := c.UpdateCompetitor(ctx, 1, &models.UpdateCompetitorRequest{}); return err },
		"delete":          func() error { return c.DeleteCompetitor(ctx, 1) },
		"fetch menu":      func() error { _, err := c.FetchMenu(ctx, 1, true); return err },
		"stored menu":     func() error { _, err := c.StoredMenu(ctx, 1); return err },
		"menu batches":    func() error { _, err := c.MenuBatches(ctx, 1, 0); return err },
		"get competitor":  func() error { _, err := c.GetCompetitor(ctx, 1); return err },
	}

	for name, call := range calls {
		err := call()
		assert.ErrorIs(t, err, client.ErrAuthRequired, name)
		assert.Equal(t, "authentication required, please log in", client.UserMessage(err), name)
	}
	assert.Zero(t, transport.requests.Load(), "no request may leave the client without a token")
	assert.False(t, c.Authenticated())
}

func TestRegisterLoginLogout(t *testing.T) {
	api := testutil.NewAPI(t)
	store := client.NewMemoryStore()
	c, _ := newClient(t, api.Server.URL, store)
	ctx := t.Context()

	_, err := c.Register(ctx, models.RegisterRequest{Email: "owner@example.com", Password: "correct-horse"})
	require.NoError(t, err)
	assert.True(t, c.Authenticated())

	user, err := c.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "owner@example.com", user.Email)

	require.NoError(t, c.Logout())
	assert.False(t, c.Authenticated())

	_, err = c.Login(ctx, "owner@example.com", "correct-horse")
	require.NoError(t, err)
	token, ok, _ := store.Get(client.TokenKey)
	assert.True(t, ok)
	assert.NotEmpty(t, token)
}

func TestAPIErrorCarriesServerText(t *testing.T) {
	api := testutil.NewAPI(t)
	c, _ := newClient(t, api.Server.URL, client.NewMemoryStore())

	_, err := c.Register(t.Context(), models.RegisterRequest{Email: "not-an-email", Password: "correct-horse"})

	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "invalid email format", client.UserMessage(err))
}

func TestUserMessageFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>bad gateway</html>"))
	}))
	defer srv.Close()

	store := client.NewMemoryStore()
	require.NoError(t, store.Set(client.TokenKey, "token"))
	c, _ := newClient(t, srv.URL, store)

	_, err := c.ListCompetitors(t.Context(), false)
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Equal(t, "request failed, please try again", client.UserMessage(err))

	srv.Close()
	_, err = c.ListCompetitors(t.Context(), false)
	require.Error(t, err)
	assert.Equal(t, "request failed, please try again", client.UserMessage(err))
	assert.Empty(t, client.UserMessage(nil))
}

func TestCompetitorLifecycle(t *testing.T) {
	api := testutil.NewAPI(t)
	_, token := api.NewUser(t, "owner@example.com")
	store := client.NewMemoryStore()
	require.NoError(t, store.Set(client.TokenKey, token))
	c, _ := newClient(t, api.Server.URL, store)
	ctx := context.Background()

	comp, err := c.AddCompetitor(ctx, &models.ManualCompetitorRequest{
		Name: "Brew Lab", Website: "https://brewlab.example", IsSelected: true,
	})
	require.NoError(t, err)

	batch, err := c.FetchMenu(ctx, comp.ID, true)
	require.NoError(t, err)
	assert.NotEmpty(t, batch.Items)

	stored, err := c.StoredMenu(ctx, comp.ID)
	require.NoError(t, err)
	assert.Equal(t, batch.BatchID, stored.BatchID)

	history, err := c.MenuBatches(ctx, comp.ID, 5)
	require.NoError(t, err)
	assert.Len(t, history, 1)

	selected := false
	updated, err := c.UpdateCompetitor(ctx, comp.ID, &models.UpdateCompetitorRequest{IsSelected: &selected})
	require.NoError(t, err)
	assert.False(t, updated.IsSelected)

	list, err := c.ListCompetitors(ctx, false)
	require.NoError(t, err)
	assert.Empty(t, list)
	list, err = c.ListCompetitors(ctx, true)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, c.DeleteCompetitor(ctx, comp.ID))
	_, err = c.StoredMenu(ctx, comp.ID)
	assert.True(t, client.IsNotFound(err))
	_, err = c.GetCompetitor(ctx, comp.ID)
	assert.True(t, client.IsNotFound(err))
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.json")

	s := client.NewFileStore(path)
	_, ok, err := s.Get(client.TokenKey)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(client.TokenKey, "abc"))
	require.NoError(t, s.Set("other", "value"))

	reopened := client.NewFileStore(path)
	v, ok, err := reopened.Get(client.TokenKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "abc", v)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	require.NoError(t, reopened.Delete(client.TokenKey))
	_, ok, _ = s.Get(client.TokenKey)
	assert.False(t, ok)
	v, _, _ = s.Get("other")
	assert.Equal(t, "value", v)
}

func TestFileStoreRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, _, err := client.NewFileStore(path).Get(client.TokenKey)
	assert.Error(t, err)
}
