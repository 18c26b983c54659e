package api

type CreateContactRequest struct {
	Name       string `json:"name"`
	Alias      string `json:"alias,omitempty"`
	AccountRef string `json:"account_ref,omitempty"`
}

type CreateContactResponse struct {
	Contact *Contact `json:"contact"`
}

type ListContactsRequest struct{}

type ListContactsResponse struct {
	Contacts []Contact `json:"contacts"`
}

type UpdateContactRequest struct {
	ContactID  int64  `json:"contact_id"`
	Name       string `json:"name"`
	Alias      string `json:"alias,omitempty"`
	AccountRef string `json:"account_ref,omitempty"`
}

type UpdateContactResponse struct {
	Contact *Contact `json:"contact"`
}

type DeleteContactRequest struct {
	ContactID int64 `json:"contact_id"`
}

type DeleteContactResponse struct{}
