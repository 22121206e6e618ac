package cqrs

// GetAccountQuery fetches a single account by id.
type GetAccountQuery struct {
	ID int64
}

// ListAccountsQuery fetches every account in id order.
type ListAccountsQuery struct{}
