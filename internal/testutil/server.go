package testutil

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"golang.org/x/crypto/bcrypt"

	"github.com/foxxcyber/compwatch/internal/config"
	"github.com/foxxcyber/compwatch/internal/handlers"
	"github.com/foxxcyber/compwatch/internal/middleware"
)

// Config returns a server configuration suitable for tests
func Config() *config.Config {
	return &config.Config{
		JWTSecret:          "test-secret",
		JWTExpiry:          time.Hour,
		Environment:        "test",
		MenuCacheTTL:       6 * time.Hour,
		MenuBatchRetention: 5,
		MenuFetchTimeout:   5 * time.Second,
		DefaultCurrency:    "USD",
	}
}

// API is the full route table backed by in-memory dependencies
type API struct {
	App     *fiber.App
	Server  *httptest.Server
	Config  *config.Config
	Store   *MemStore
	Places  *StubPlaces
	Scraper *StubScraper
	Archive *StubArchive
}

// NewAPI builds the app and serves it over httptest until the test ends
func NewAPI(t testing.TB) *API {
	t.Helper()

	a := &API{
		Config:  Config(),
		Store:   NewMemStore(),
		Places:  &StubPlaces{},
		Scraper: &StubScraper{},
		Archive: &StubArchive{},
	}

	h := handlers.New(a.Store, a.Config, nil,
		handlers.WithPlaces(a.Places),
		handlers.WithScraper(a.Scraper),
		handlers.WithArchive(a.Archive),
	)

	a.App = fiber.New(fiber.Config{ErrorHandler: handlers.ErrorHandler})
	h.SetupRoutes(a.App)

	a.Server = httptest.NewServer(adaptor.FiberApp(a.App))
	t.Cleanup(a.Server.Close)

	return a
}

// NewUser creates an account directly in the store and returns a bearer token for it
func (a *API) NewUser(t testing.TB, email string) (int, string) {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user, err := a.Store.CreateUser(t.Context(), email, string(hash), nil)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	token, err := middleware.IssueToken(user, a.Config.JWTSecret, a.Config.JWTExpiry)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return user.ID, token
}
