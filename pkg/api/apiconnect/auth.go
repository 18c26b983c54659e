package apiconnect

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/settleup/pkg/api"
)

// AuthServiceName is the fully-qualified name of the AuthService.
const AuthServiceName = "settleup.v1.AuthService"

const (
	AuthServiceRegisterProcedure            = "/settleup.v1.AuthService/Register"
	AuthServiceLoginProcedure               = "/settleup.v1.AuthService/Login"
	AuthServiceGetCurrentUserProcedure      = "/settleup.v1.AuthService/GetCurrentUser"
	AuthServiceUpdatePaymentTargetProcedure = "/settleup.v1.AuthService/UpdatePaymentTarget"
)

// AuthServiceHandler registers and signs in users. Register and Login are the only
// procedures callable without a token.
type AuthServiceHandler interface {
	Register(context.Context, *connect.Request[api.RegisterRequest]) (*connect.Response[api.RegisterResponse], error)
	Login(context.Context, *connect.Request[api.LoginRequest]) (*connect.Response[api.LoginResponse], error)
	GetCurrentUser(context.Context, *connect.Request[api.GetCurrentUserRequest]) (*connect.Response[api.GetCurrentUserResponse], error)
	UpdatePaymentTarget(context.Context, *connect.Request[api.UpdatePaymentTargetRequest]) (*connect.Response[api.UpdatePaymentTargetResponse], error)
}

// NewAuthServiceHandler builds an HTTP handler for every AuthService procedure.
// It returns the path prefix to mount it on.
func NewAuthServiceHandler(svc AuthServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	mux := http.NewServeMux()
	handle(mux, AuthServiceRegisterProcedure, svc.Register, opts)
	handle(mux, AuthServiceLoginProcedure, svc.Login, opts)
	handle(mux, AuthServiceGetCurrentUserProcedure, svc.GetCurrentUser, opts)
	handle(mux, AuthServiceUpdatePaymentTargetProcedure, svc.UpdatePaymentTarget, opts)
	return "/" + AuthServiceName + "/", mux
}

// AuthServiceClient is a client for the AuthService.
type AuthServiceClient interface {
	Register(context.Context, *connect.Request[api.RegisterRequest]) (*connect.Response[api.RegisterResponse], error)
	Login(context.Context, *connect.Request[api.LoginRequest]) (*connect.Response[api.LoginResponse], error)
	GetCurrentUser(context.Context, *connect.Request[api.GetCurrentUserRequest]) (*connect.Response[api.GetCurrentUserResponse], error)
	UpdatePaymentTarget(context.Context, *connect.Request[api.UpdatePaymentTargetRequest]) (*connect.Response[api.UpdatePaymentTargetResponse], error)
}

// NewAuthServiceClient constructs a client for the AuthService at baseURL
// (for example, http://localhost:8080).
func NewAuthServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) AuthServiceClient {
	return &authServiceClient{
		register:            newClient[api.RegisterRequest, api.RegisterResponse](httpClient, baseURL, AuthServiceRegisterProcedure, opts),
		login:               newClient[api.LoginRequest, api.LoginResponse](httpClient, baseURL, AuthServiceLoginProcedure, opts),
		getCurrentUser:      newClient[api.GetCurrentUserRequest, api.GetCurrentUserResponse](httpClient, baseURL, AuthServiceGetCurrentUserProcedure, opts),
		updatePaymentTarget: newClient[api.UpdatePaymentTargetRequest, api.UpdatePaymentTargetResponse](httpClient, baseURL, AuthServiceUpdatePaymentTargetProcedure, opts),
	}
}

type authServiceClient struct {
	register            *connect.Client[api.RegisterRequest, api.RegisterResponse]
	login               *connect.Client[api.LoginRequest, api.LoginResponse]
	getCurrentUser      *connect.Client[api.GetCurrentUserRequest, api.GetCurrentUserResponse]
	updatePaymentTarget *connect.Client[api.UpdatePaymentTargetRequest, api.UpdatePaymentTargetResponse]
}

func (c *authServiceClient) Register(ctx context.Context, req *connect.Request[api.RegisterRequest]) (*connect.Response[api.RegisterResponse], error) {
	return c.register.CallUnary(ctx, req)
}

func (c *authServiceClient) Login(ctx context.Context, req *connect.Request[api.LoginRequest]) (*connect.Response[api.LoginResponse], error) {
	return c.login.CallUnary(ctx, req)
}

func (c *authServiceClient) GetCurrentUser(ctx context.Context, req *connect.Request[api.GetCurrentUserRequest]) (*connect.Response[api.GetCurrentUserResponse], error) {
	return c.getCurrentUser.CallUnary(ctx, req)
}

func (c *authServiceClient) UpdatePaymentTarget(ctx context.Context, req *connect.Request[api.UpdatePaymentTargetRequest]) (*connect.Response[api.UpdatePaymentTargetResponse], error) {
	return c.updatePaymentTarget.CallUnary(ctx, req)
}
