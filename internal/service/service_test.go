package service

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/settleup/internal/auth"
	"github.com/mmynk/settleup/internal/events"
	"github.com/mmynk/settleup/internal/metrics"
	"github.com/mmynk/settleup/internal/middleware"
	"github.com/mmynk/settleup/internal/payments"
	"github.com/mmynk/settleup/internal/payments/mocks"
	"github.com/mmynk/settleup/internal/storage/sqlite"
	"github.com/mmynk/settleup/pkg/api"
	"github.com/mmynk/settleup/pkg/api/apiconnect"
)

const testWebhookSecret = "webhook-secret"

// recordingPublisher keeps published events in memory.
type recordingPublisher struct {
	mu     sync.Mutex
	events []events.PaymentUpdated
}

func (p *recordingPublisher) PublishPaymentUpdated(_ context.Context, e events.PaymentUpdated) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) published() []events.PaymentUpdated {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.PaymentUpdated(nil), p.events...)
}

// testEnv is a running API backed by a temp SQLite database. Requests carry
// the token in env.token.
type testEnv struct {
	server    *httptest.Server
	store     *sqlite.SQLiteStore
	gateway   *mocks.MockGateway
	publisher *recordingPublisher
	metrics   *metrics.Metrics

	token string

	auth     apiconnect.AuthServiceClient
	contacts apiconnect.ContactServiceClient
	groups   apiconnect.GroupServiceClient
	expenses apiconnect.ExpenseServiceClient
	payments apiconnect.PaymentServiceClient
}

func setupTestServer(t *testing.T) *testEnv {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	ctrl := gomock.NewController(t)
	env := &testEnv{
		store:     store,
		gateway:   mocks.NewMockGateway(ctrl),
		publisher: &recordingPublisher{},
		metrics:   metrics.New(),
	}

	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	authenticator := auth.NewPasswordAuthenticator(store).WithCost(bcrypt.MinCost)
	interceptors := connect.WithInterceptors(
		middleware.MetricsInterceptor(env.metrics),
		middleware.RequireAuth(jwtManager, PublicProcedures...),
	)

	paymentSvc := NewPaymentService(store, env.gateway, env.publisher, PaymentConfig{
		BackendURL: "https://api.example.com",
		Currency:   "ARS",
		Verifier:   payments.NewSignatureVerifier(testWebhookSecret, true),
	}, env.metrics)

	mux := http.NewServeMux()
	mux.Handle(apiconnect.NewAuthServiceHandler(NewAuthService(authenticator, jwtManager, store, slog.Default()), interceptors))
	mux.Handle(apiconnect.NewContactServiceHandler(NewContactService(store), interceptors))
	mux.Handle(apiconnect.NewGroupServiceHandler(NewGroupService(store, env.metrics), interceptors))
	mux.Handle(apiconnect.NewExpenseServiceHandler(NewExpenseService(store), interceptors))
	mux.Handle(apiconnect.NewPaymentServiceHandler(paymentSvc, interceptors))
	mux.Handle(WebhookPath, paymentSvc.WebhookHandler())

	env.server = httptest.NewServer(mux)
	t.Cleanup(env.server.Close)

	clientOpts := connect.WithInterceptors(env.bearer())
	env.auth = apiconnect.NewAuthServiceClient(http.DefaultClient, env.server.URL, clientOpts)
	env.contacts = apiconnect.NewContactServiceClient(http.DefaultClient, env.server.URL, clientOpts)
	env.groups = apiconnect.NewGroupServiceClient(http.DefaultClient, env.server.URL, clientOpts)
	env.expenses = apiconnect.NewExpenseServiceClient(http.DefaultClient, env.server.URL, clientOpts)
	env.payments = apiconnect.NewPaymentServiceClient(http.DefaultClient, env.server.URL, clientOpts)

	return env
}

// bearer attaches the current token to outgoing requests.
func (e *testEnv) bearer() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if e.token != "" {
				req.Header().Set("Authorization", "Bearer "+e.token)
			}
			return next(ctx, req)
		}
	}
}

// signIn registers a user and makes it the caller of subsequent requests.
func (e *testEnv) signIn(t *testing.T, email, name string) *api.User {
	t.Helper()
	resp, err := e.auth.Register(context.Background(), connect.NewRequest(&api.RegisterRequest{
		Email:       email,
		DisplayName: name,
		Password:    "password123",
	}))
	require.NoError(t, err)
	e.token = resp.Msg.Token
	return resp.Msg.User
}

func (e *testEnv) createContact(t *testing.T, name, alias string) *api.Contact {
	t.Helper()
	resp, err := e.contacts.CreateContact(context.Background(), connect.NewRequest(&api.CreateContactRequest{
		Name:  name,
		Alias: alias,
	}))
	require.NoError(t, err)
	return resp.Msg.Contact
}

// createTrip signs in Alice and creates a group with Bob and Charlie.
func (e *testEnv) createTrip(t *testing.T) *api.Group {
	t.Helper()
	e.signIn(t, "alice@example.com", "Alice")
	bob := e.createContact(t, "Bob", "bob.alias")
	charlie := e.createContact(t, "Charlie", "")

	resp, err := e.groups.CreateGroup(context.Background(), connect.NewRequest(&api.CreateGroupRequest{
		Name:       "Trip",
		ContactIDs: []int64{bob.ID, charlie.ID},
	}))
	require.NoError(t, err)
	require.Len(t, resp.Msg.Group.Members, 3)
	return resp.Msg.Group
}

func (e *testEnv) addExpense(t *testing.T, groupID int64, amount string, payer int64, participants ...int64) *api.Expense {
	t.Helper()
	resp, err := e.expenses.CreateExpense(context.Background(), connect.NewRequest(&api.CreateExpenseRequest{
		GroupID:              groupID,
		Amount:               amount,
		PayerMemberID:        payer,
		ParticipantMemberIDs: participants,
	}))
	require.NoError(t, err)
	return resp.Msg.Expense
}

func requireCode(t *testing.T, err error, code connect.Code) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, code, connect.CodeOf(err), "error: %v", err)
}
