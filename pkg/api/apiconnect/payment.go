package apiconnect

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/settleup/pkg/api"
)

// PaymentServiceName is the fully-qualified name of the PaymentService.
const PaymentServiceName = "settleup.v1.PaymentService"

const (
	PaymentServiceCreatePaymentPreferenceProcedure = "/settleup.v1.PaymentService/CreatePaymentPreference"
	PaymentServiceListGroupPaymentsProcedure       = "/settleup.v1.PaymentService/ListGroupPayments"
	PaymentServiceGetPaymentStatusProcedure        = "/settleup.v1.PaymentService/GetPaymentStatus"
)

// PaymentServiceHandler starts gateway payments against suggested transfers and
// reports their status.
type PaymentServiceHandler interface {
	CreatePaymentPreference(context.Context, *connect.Request[api.CreatePaymentPreferenceRequest]) (*connect.Response[api.CreatePaymentPreferenceResponse], error)
	ListGroupPayments(context.Context, *connect.Request[api.ListGroupPaymentsRequest]) (*connect.Response[api.ListGroupPaymentsResponse], error)
	GetPaymentStatus(context.Context, *connect.Request[api.GetPaymentStatusRequest]) (*connect.Response[api.GetPaymentStatusResponse], error)
}

// NewPaymentServiceHandler builds an HTTP handler for every PaymentService procedure.
// It returns the path prefix to mount it on.
func NewPaymentServiceHandler(svc PaymentServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	mux := http.NewServeMux()
	handle(mux, PaymentServiceCreatePaymentPreferenceProcedure, svc.CreatePaymentPreference, opts)
	handle(mux, PaymentServiceListGroupPaymentsProcedure, svc.ListGroupPayments, opts)
	handle(mux, PaymentServiceGetPaymentStatusProcedure, svc.GetPaymentStatus, opts)
	return "/" + PaymentServiceName + "/", mux
}

// PaymentServiceClient is a client for the PaymentService.
type PaymentServiceClient interface {
	CreatePaymentPreference(context.Context, *connect.Request[api.CreatePaymentPreferenceRequest]) (*connect.Response[api.CreatePaymentPreferenceResponse], error)
	ListGroupPayments(context.Context, *connect.Request[api.ListGroupPaymentsRequest]) (*connect.Response[api.ListGroupPaymentsResponse], error)
	GetPaymentStatus(context.Context, *connect.Request[api.GetPaymentStatusRequest]) (*connect.Response[api.GetPaymentStatusResponse], error)
}

// NewPaymentServiceClient constructs a client for the PaymentService at baseURL
// (for example, http://localhost:8080).
func NewPaymentServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) PaymentServiceClient {
	return &paymentServiceClient{
		createPaymentPreference: newClient[api.CreatePaymentPreferenceRequest, api.CreatePaymentPreferenceResponse](httpClient, baseURL, PaymentServiceCreatePaymentPreferenceProcedure, opts),
		listGroupPayments:       newClient[api.ListGroupPaymentsRequest, api.ListGroupPaymentsResponse](httpClient, baseURL, PaymentServiceListGroupPaymentsProcedure, opts),
		getPaymentStatus:        newClient[api.GetPaymentStatusRequest, api.GetPaymentStatusResponse](httpClient, baseURL, PaymentServiceGetPaymentStatusProcedure, opts),
	}
}

type paymentServiceClient struct {
	createPaymentPreference *connect.Client[api.CreatePaymentPreferenceRequest, api.CreatePaymentPreferenceResponse]
	listGroupPayments       *connect.Client[api.ListGroupPaymentsRequest, api.ListGroupPaymentsResponse]
	getPaymentStatus        *connect.Client[api.GetPaymentStatusRequest, api.GetPaymentStatusResponse]
}

func (c *paymentServiceClient) CreatePaymentPreference(ctx context.Context, req *connect.Request[api.CreatePaymentPreferenceRequest]) (*connect.Response[api.CreatePaymentPreferenceResponse], error) {
	return c.createPaymentPreference.CallUnary(ctx, req)
}

func (c *paymentServiceClient) ListGroupPayments(ctx context.Context, req *connect.Request[api.ListGroupPaymentsRequest]) (*connect.Response[api.ListGroupPaymentsResponse], error) {
	return c.listGroupPayments.CallUnary(ctx, req)
}

func (c *paymentServiceClient) GetPaymentStatus(ctx context.Context, req *connect.Request[api.GetPaymentStatusRequest]) (*connect.Response[api.GetPaymentStatusResponse], error) {
	return c.getPaymentStatus.CallUnary(ctx, req)
}
