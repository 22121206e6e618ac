package cqrs

type CreateAccountCommand struct {
	Name        string
	Email       string
	Address     string
	PhoneNumber *string
}

// UpdateAccountCommand replaces every mutable field of account ID.
type UpdateAccountCommand struct {
	ID          int64
	Name        string
	Email       string
	Address     string
	PhoneNumber *string
}

type DeleteAccountCommand struct {
	ID int64
}
