package factory

import (
	"context"
	"time"

	"github.com/mcoot/deckduel/internal/config"
	"github.com/mcoot/deckduel/internal/dependencies/mocks"
	"github.com/mcoot/deckduel/internal/lock"
	"github.com/mcoot/deckduel/internal/services/auth"
	"github.com/mcoot/deckduel/internal/storage/memory"
	"github.com/mcoot/deckduel/internal/testutil"
)

// TestSecret signs sessions issued by a TestApp
const TestSecret = "test-secret"

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock *mocks.MockClock
	MockIDs   *mocks.SequentialIDs
}

// NewTestApp creates an App configured for testing with mocked dependencies
// and the fixture catalog loaded
func NewTestApp() *TestApp {
	return NewTestAppWithRules(config.DefaultRules())
}

// NewTestAppWithRules is NewTestApp with custom game rules
func NewTestAppWithRules(rules config.Rules) *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC))
	mockClock.Step = time.Second
	mockIDs := mocks.NewSequentialIDs()

	authCfg := auth.DefaultConfig()
	authCfg.Secret = TestSecret

	app := newWithDependencies(store, lock.NewLocal(), mockClock, mockIDs, rules, authCfg, testutil.NopLogger())
	if err := app.CatalogService.Load(context.Background(), testutil.Catalog()); err != nil {
		panic(err)
	}

	return &TestApp{
		App:       app,
		MockClock: mockClock,
		MockIDs:   mockIDs,
	}
}
