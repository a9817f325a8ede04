package domain

// An Alert is a user-facing failure notice. Message is the fixed localized
// text of the failed operation.
type Alert struct {
	Op      string
	Message string
	Err     error
}
