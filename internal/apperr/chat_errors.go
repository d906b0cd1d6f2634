package apperr

var (
	// Auth
	ErrInvalidCredentials = Unauthorized("invalid credentials")
	ErrInvalidToken       = Unauthorized("invalid or expired token")
	ErrMissingToken       = Unauthorized("missing token")
	ErrUserExists         = AlreadyExists("user already exists")
	ErrFieldsRequired     = InvalidArg("all fields are required")

	// Rooms
	ErrRoomNotFound        = NotFound("room not found")
	ErrNotRoomMember       = Forbidden("not a member of this room")
	ErrRoomNameRequired    = InvalidArg("room name is required")
	ErrDirectRoomMembers   = InvalidArg("a direct room requires exactly one other member")
	ErrDirectRoomImmutable = InvalidArg("cannot add members to a direct room")
	ErrMemberIDsRequired   = InvalidArg("member ids are required")

	// Messages
	ErrMessageTextRequired = InvalidArg("message text is required")

	// Summaries
	ErrInsufficientContext = FailedPrecondition("need at least 3 messages to create a summary")
	ErrSummarizationFailed = Unavailable("could not generate a summary")
)
