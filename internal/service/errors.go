package service

import "errors"

// Failure classes surfaced to the API layer. Handlers map these to HTTP
// statuses; anything else is reported as an opaque server error.
var (
	// ErrNotFound indicates the referenced meme, comment, or user is absent.
	ErrNotFound = errors.New("resource not found")

	// ErrForbidden indicates the caller does not own the targeted resource.
	ErrForbidden = errors.New("not authorized to modify this resource")

	// ErrInvalidVoteType indicates a vote kind outside upvote/downvote.
	ErrInvalidVoteType = errors.New("invalid vote type")

	// ErrCommentTooLong indicates a comment body over the 140 character cap.
	ErrCommentTooLong = errors.New("comment must be 140 characters or less")

	// ErrEmptyComment indicates a blank comment body.
	ErrEmptyComment = errors.New("comment content is required")

	// ErrMissingImage indicates a meme create without an image reference.
	ErrMissingImage = errors.New("image URL is required")

	// ErrUserExists indicates a register with a taken username or email.
	ErrUserExists = errors.New("username or email already in use")

	// ErrInvalidCredentials indicates a failed login.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrInvalidToken indicates a missing, malformed, or expired token.
	ErrInvalidToken = errors.New("token is not valid")

	// ErrFileTooLarge indicates an upload over the configured size cap.
	ErrFileTooLarge = errors.New("file exceeds the maximum upload size")

	// ErrNotAnImage indicates an upload that is not a decodable image.
	ErrNotAnImage = errors.New("only image files are allowed")
)
