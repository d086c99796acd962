package handler

const (
	errInternalServer     = "Internal server error"
	errInvalidBody        = "Invalid request body"
	errDuplicateUser      = "User already exists"
	errInvalidCredentials = "Invalid credentials"
	errUnauthenticated    = "Not authenticated"
	errNoteNotFound       = "Note not found"
	errForbidden          = "Not authorized to modify this note"
	errInvalidNoteID      = "Invalid note id"

	msgUserRegistered = "User registered successfully"
	msgNoteDeleted    = "Note deleted"
)
