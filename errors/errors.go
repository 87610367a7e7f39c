package errors

import "fmt"

var (
	// ErrNoSharedTenant means the two users belong to no common tenant,
	// so no direct conversation can be established between them.
	ErrNoSharedTenant = fmt.Errorf("users share no tenant")

	// ErrConversationExists is returned by the store when the canonical
	// pair key is already taken, either by an earlier insert or by a
	// concurrent writer that committed first.
	ErrConversationExists = fmt.Errorf("direct conversation already exists for this pair")

	ErrConversationNotFound = fmt.Errorf("conversation not found")

	// ErrMalformedConversation flags a record whose participant set
	// violates the data model (empty, or not exactly two for a direct).
	ErrMalformedConversation = fmt.Errorf("malformed conversation record")

	ErrSamePairUser = fmt.Errorf("a direct conversation needs two distinct users")

	ErrWorkerPanic = fmt.Errorf("worker panic")
)
