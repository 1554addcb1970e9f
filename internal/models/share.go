package models

// Share grants a user collaborative access to a trip.
type Share struct {
	// ID is the unique identifier for the share (UUID format).
	ID string `json:"id"`

	TripID string `json:"trip_id"`
	UserID string `json:"user_id"`

	// Role is the access level granted. Only "editor" is issued today.
	Role string `json:"role"`

	// CreatedAt is the Unix timestamp when the share was created.
	CreatedAt int64 `json:"created_at"`

	// Email and DisplayName are joined from the shared user's account for
	// display; they are not stored on the share row.
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
}

// Invite is a code-redeemable offer to join a trip.
type Invite struct {
	// Code is the URL-safe token that identifies and redeems the invite.
	Code string `json:"code"`

	TripID    string `json:"trip_id"`
	Role      string `json:"role"`
	CreatedBy string `json:"created_by"`

	// CreatedAt and ExpiresAt are Unix timestamps. An invite whose
	// ExpiresAt has passed cannot be accepted.
	CreatedAt int64 `json:"created_at"`
	ExpiresAt int64 `json:"expires_at"`
}

// ShareResult is the structured outcome of a sharing operation. Domain
// failures (user not found, invite expired, already shared, self-share) are
// reported here rather than as errors so callers can render them inline.
type ShareResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`

	// Trip is set on successful invite acceptance.
	Trip *Trip `json:"trip,omitempty"`

	// InviteCode is set when a new invite link is created.
	InviteCode string `json:"invite_code,omitempty"`
}

// ShareFailure builds a failed result with the given message.
func ShareFailure(msg string) ShareResult {
	return ShareResult{Success: false, Error: msg}
}
