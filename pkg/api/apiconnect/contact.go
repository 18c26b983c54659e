package apiconnect

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/settleup/pkg/api"
)

// ContactServiceName is the fully-qualified name of the ContactService.
const ContactServiceName = "settleup.v1.ContactService"

const (
	ContactServiceCreateContactProcedure = "/settleup.v1.ContactService/CreateContact"
	ContactServiceListContactsProcedure  = "/settleup.v1.ContactService/ListContacts"
	ContactServiceUpdateContactProcedure = "/settleup.v1.ContactService/UpdateContact"
	ContactServiceDeleteContactProcedure = "/settleup.v1.ContactService/DeleteContact"
)

// ContactServiceHandler manages the caller's address book.
type ContactServiceHandler interface {
	CreateContact(context.Context, *connect.Request[api.CreateContactRequest]) (*connect.Response[api.CreateContactResponse], error)
	ListContacts(context.Context, *connect.Request[api.ListContactsRequest]) (*connect.Response[api.ListContactsResponse], error)
	UpdateContact(context.Context, *connect.Request[api.UpdateContactRequest]) (*connect.Response[api.UpdateContactResponse], error)
	DeleteContact(context.Context, *connect.Request[api.DeleteContactRequest]) (*connect.Response[api.DeleteContactResponse], error)
}

// NewContactServiceHandler builds an HTTP handler for every ContactService procedure.
// It returns the path prefix to mount it on.
func NewContactServiceHandler(svc ContactServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	mux := http.NewServeMux()
	handle(mux, ContactServiceCreateContactProcedure, svc.CreateContact, opts)
	handle(mux, ContactServiceListContactsProcedure, svc.ListContacts, opts)
	handle(mux, ContactServiceUpdateContactProcedure, svc.UpdateContact, opts)
	handle(mux, ContactServiceDeleteContactProcedure, svc.DeleteContact, opts)
	return "/" + ContactServiceName + "/", mux
}

// ContactServiceClient is a client for the ContactService.
type ContactServiceClient interface {
	CreateContact(context.Context, *connect.Request[api.CreateContactRequest]) (*connect.Response[api.CreateContactResponse], error)
	ListContacts(context.Context, *connect.Request[api.ListContactsRequest]) (*connect.Response[api.ListContactsResponse], error)
	UpdateContact(context.Context, *connect.Request[api.UpdateContactRequest]) (*connect.Response[api.UpdateContactResponse], error)
	DeleteContact(context.Context, *connect.Request[api.DeleteContactRequest]) (*connect.Response[api.DeleteContactResponse], error)
}

// NewContactServiceClient constructs a client for the ContactService at baseURL
// (for example, http://localhost:8080).
func NewContactServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) ContactServiceClient {
	return &contactServiceClient{
		createContact: newClient[api.CreateContactRequest, api.CreateContactResponse](httpClient, baseURL, ContactServiceCreateContactProcedure, opts),
		listContacts:  newClient[api.ListContactsRequest, api.ListContactsResponse](httpClient, baseURL, ContactServiceListContactsProcedure, opts),
		updateContact: newClient[api.UpdateContactRequest, api.UpdateContactResponse](httpClient, baseURL, ContactServiceUpdateContactProcedure, opts),
		deleteContact: newClient[api.DeleteContactRequest, api.DeleteContactResponse](httpClient, baseURL, ContactServiceDeleteContactProcedure, opts),
	}
}

type contactServiceClient struct {
	createContact *connect.Client[api.CreateContactRequest, api.CreateContactResponse]
	listContacts  *connect.Client[api.ListContactsRequest, api.ListContactsResponse]
	updateContact *connect.Client[api.UpdateContactRequest, api.UpdateContactResponse]
	deleteContact *connect.Client[api.DeleteContactRequest, api.DeleteContactResponse]
}

func (c *contactServiceClient) CreateContact(ctx context.Context, req *connect.Request[api.CreateContactRequest]) (*connect.Response[api.CreateContactResponse], error) {
	return c.createContact.CallUnary(ctx, req)
}

func (c *contactServiceClient) ListContacts(ctx context.Context, req *connect.Request[api.ListContactsRequest]) (*connect.Response[api.ListContactsResponse], error) {
	return c.listContacts.CallUnary(ctx, req)
}

func (c *contactServiceClient) UpdateContact(ctx context.Context, req *connect.Request[api.UpdateContactRequest]) (*connect.Response[api.UpdateContactResponse], error) {
	return c.updateContact.CallUnary(ctx, req)
}

func (c *contactServiceClient) DeleteContact(ctx context.Context, req *connect.Request[api.DeleteContactRequest]) (*connect.Response[api.DeleteContactResponse], error) {
	return c.deleteContact.CallUnary(ctx, req)
}
