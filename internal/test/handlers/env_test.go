package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"woodlinks-backend/internal/handlers"
	"woodlinks-backend/internal/logger"
	"woodlinks-backend/internal/mocks"
	"woodlinks-backend/internal/payments"
	"woodlinks-backend/internal/services"
	"woodlinks-backend/internal/test/testutil"
)

// testEnv wires the real router over the in-memory store. Checkout session
// creation goes to a mock; webhook verification uses the real Stripe code.
type testEnv struct {
	router   *gin.Engine
	store    *testutil.MemoryStore
	gateway  *mocks.MockGateway
	notifier *mocks.MockNotifier
	cards    *services.CardService
}

func newTestEnv(t *testing.T) *testEnv {
	gin.SetMode(gin.TestMode)
	cfg := testutil.Config()
	log := logger.NewTestLogger(t)
	store := testutil.NewMemoryStore()

	ctrl := gomock.NewController(t)
	gateway := mocks.NewMockGateway(ctrl)
	stripeGateway := payments.NewStripeGateway("", testutil.WebhookSecret)
	gateway.EXPECT().ParseWebhook(gomock.Any(), gomock.Any()).
		DoAndReturn(stripeGateway.ParseWebhook).AnyTimes()
	notifier := mocks.NewMockNotifier(ctrl)

	cards := services.NewCardService(store, store, store, testutil.NewMemoryAvatars(), cfg, log)
	t.Cleanup(cards.Wait)

	orders := services.NewOrderService(store, store, gateway, notifier, cfg, log)
	t.Cleanup(orders.Wait)

	router := handlers.NewRouter(cfg, handlers.Services{
		Orders:    orders,
		Cards:     cards,
		Inventory: services.NewInventoryService(store, cfg, log),
		Admin:     services.NewAdminService(store, store, store, cfg),
	}, log)

	return &testEnv{router: router, store: store, gateway: gateway, notifier: notifier, cards: cards}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

type user struct {
	id    uuid.UUID
	token string
}

func newUser(t *testing.T, email string) user {
	id := uuid.New()
	return user{id: id, token: testutil.Token(t, id, email)}
}
