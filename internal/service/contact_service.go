package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/storage"
	"github.com/mmynk/settleup/pkg/api"
	"github.com/mmynk/settleup/pkg/api/apiconnect"
)

var errContactInUse = errors.New("contact is a member of an active group")

// ContactService implements the Connect ContactService.
type ContactService struct {
	store storage.Store
}

var _ apiconnect.ContactServiceHandler = (*ContactService)(nil)

// NewContactService creates a new ContactService with the given storage backend.
func NewContactService(store storage.Store) *ContactService {
	return &ContactService{store: store}
}

// CreateContact adds a person to the caller's address book.
func (s *ContactService) CreateContact(ctx context.Context, req *connect.Request[api.CreateContactRequest]) (*connect.Response[api.CreateContactResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("CreateContact request received", "user_id", userID)

	name := strings.TrimSpace(req.Msg.Name)
	if name == "" {
		return nil, invalidArgument("name required")
	}

	contact := &models.Contact{
		OwnerID: userID,
		Name:    name,
		Target: models.PaymentTarget{
			Alias:      strings.TrimSpace(req.Msg.Alias),
			AccountRef: strings.TrimSpace(req.Msg.AccountRef),
		},
	}
	if err := s.store.CreateContact(ctx, contact); err != nil {
		slog.Error("CreateContact failed", "error", err)
		return nil, storeError(err)
	}

	slog.Info("Contact created", "contact_id", contact.ID)
	return connect.NewResponse(&api.CreateContactResponse{Contact: toAPIContact(contact)}), nil
}

// ListContacts returns the caller's contacts ordered by name.
func (s *ContactService) ListContacts(ctx context.Context, req *connect.Request[api.ListContactsRequest]) (*connect.Response[api.ListContactsResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("ListContacts request received", "user_id", userID)

	contacts, err := s.store.ListContacts(ctx, userID)
	if err != nil {
		slog.Error("ListContacts failed", "error", err)
		return nil, storeError(err)
	}

	out := make([]api.Contact, len(contacts))
	for i, c := range contacts {
		out[i] = *toAPIContact(c)
	}

	slog.Info("ListContacts successful", "count", len(out))
	return connect.NewResponse(&api.ListContactsResponse{Contacts: out}), nil
}

// UpdateContact changes a contact's name and payment target. Existing group
// members keep the display name they were added with.
func (s *ContactService) UpdateContact(ctx context.Context, req *connect.Request[api.UpdateContactRequest]) (*connect.Response[api.UpdateContactResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("UpdateContact request received", "contact_id", req.Msg.ContactID)

	contact, err := s.store.GetContact(ctx, userID, req.Msg.ContactID)
	if err != nil {
		slog.Error("UpdateContact failed", "contact_id", req.Msg.ContactID, "error", err)
		return nil, storeError(err)
	}

	if name := strings.TrimSpace(req.Msg.Name); name != "" {
		contact.Name = name
	}
	contact.Target = models.PaymentTarget{
		Alias:      strings.TrimSpace(req.Msg.Alias),
		AccountRef: strings.TrimSpace(req.Msg.AccountRef),
	}

	if err := s.store.UpdateContact(ctx, contact); err != nil {
		slog.Error("UpdateContact failed", "contact_id", contact.ID, "error", err)
		return nil, storeError(err)
	}

	slog.Info("Contact updated", "contact_id", contact.ID)
	return connect.NewResponse(&api.UpdateContactResponse{Contact: toAPIContact(contact)}), nil
}

// DeleteContact removes a contact that is not part of any active group.
func (s *ContactService) DeleteContact(ctx context.Context, req *connect.Request[api.DeleteContactRequest]) (*connect.Response[api.DeleteContactResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("DeleteContact request received", "contact_id", req.Msg.ContactID)

	if _, err := s.store.GetContact(ctx, userID, req.Msg.ContactID); err != nil {
		return nil, storeError(err)
	}

	n, err := s.store.CountActiveMemberships(ctx, req.Msg.ContactID)
	if err != nil {
		slog.Error("DeleteContact failed", "contact_id", req.Msg.ContactID, "error", err)
		return nil, storeError(err)
	}
	if n > 0 {
		return nil, connect.NewError(connect.CodeFailedPrecondition, errContactInUse)
	}

	if err := s.store.DeleteContact(ctx, userID, req.Msg.ContactID); err != nil {
		slog.Error("DeleteContact failed", "contact_id", req.Msg.ContactID, "error", err)
		return nil, storeError(err)
	}

	slog.Info("Contact deleted", "contact_id", req.Msg.ContactID)
	return connect.NewResponse(&api.DeleteContactResponse{}), nil
}
