package models

// Role is the kind of participant acting on the network.
type Role string

const (
	RoleBanker   Role = "banker"
	RoleCustomer Role = "customer"
)

// Participant is an authenticated caller. Customers own exactly one account.
type Participant struct {
	ID      string `json:"id"`
	Role    Role   `json:"role"`
	Account string `json:"account,omitempty"`
}
