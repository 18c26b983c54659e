package service

import (
	"context"
	"testing"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/settleup/pkg/api"
)

func TestContactService_CRUD(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	env.signIn(t, "alice@example.com", "Alice")

	zoe := env.createContact(t, "Zoe", "")
	bob := env.createContact(t, "Bob", "bob.alias")

	list, err := env.contacts.ListContacts(ctx, connect.NewRequest(&api.ListContactsRequest{}))
	require.NoError(t, err)
	require.Len(t, list.Msg.Contacts, 2)
	assert.Equal(t, "Bob", list.Msg.Contacts[0].Name)
	assert.Equal(t, "Zoe", list.Msg.Contacts[1].Name)

	updated, err := env.contacts.UpdateContact(ctx, connect.NewRequest(&api.UpdateContactRequest{
		ContactID: bob.ID,
		Name:      "Robert",
		Alias:     "robert.alias",
	}))
	require.NoError(t, err)
	assert.Equal(t, "Robert", updated.Msg.Contact.Name)
	assert.Equal(t, "robert.alias", updated.Msg.Contact.Alias)

	_, err = env.contacts.DeleteContact(ctx, connect.NewRequest(&api.DeleteContactRequest{ContactID: zoe.ID}))
	require.NoError(t, err)

	_, err = env.contacts.CreateContact(ctx, connect.NewRequest(&api.CreateContactRequest{Name: "  "}))
	requireCode(t, err, connect.CodeInvalidArgument)
}

func TestContactService_ContactsArePrivate(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	env.signIn(t, "alice@example.com", "Alice")
	bob := env.createContact(t, "Bob", "")

	env.signIn(t, "mallory@example.com", "Mallory")
	list, err := env.contacts.ListContacts(ctx, connect.NewRequest(&api.ListContactsRequest{}))
	require.NoError(t, err)
	assert.Empty(t, list.Msg.Contacts)

	_, err = env.contacts.DeleteContact(ctx, connect.NewRequest(&api.DeleteContactRequest{ContactID: bob.ID}))
	requireCode(t, err, connect.CodeNotFound)
}

func TestContactService_DeleteInUse(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	group := env.createTrip(t)
	bobID := group.Members[1].Contact.ID

	_, err := env.contacts.DeleteContact(ctx, connect.NewRequest(&api.DeleteContactRequest{ContactID: bobID}))
	requireCode(t, err, connect.CodeFailedPrecondition)

	// Archived groups no longer pin their contacts.
	_, err = env.groups.DeleteGroup(ctx, connect.NewRequest(&api.DeleteGroupRequest{GroupID: group.ID}))
	require.NoError(t, err)
	_, err = env.contacts.DeleteContact(ctx, connect.NewRequest(&api.DeleteContactRequest{ContactID: bobID}))
	require.NoError(t, err)
}
