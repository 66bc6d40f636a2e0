package application

import "errors"

// Request-scoped failure taxonomy. Handlers translate these into user
// facing responses; anything not listed here is a persistence failure
// and must surface as a generic message.
var (
	ErrDuplicateAccount     = errors.New("account with this email already exists")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrVerificationRequired = errors.New("email verification required")
	ErrAccountBanned        = errors.New("account is banned")
	ErrAccountInactive      = errors.New("account is inactive")
	ErrInvalidToken         = errors.New("invalid token")
	ErrTokenExpired         = errors.New("token expired")

	ErrCompetitionClosed     = errors.New("competition is not accepting submissions")
	ErrNominationUnavailable = errors.New("nomination is unavailable")
	ErrSubmissionLimit       = errors.New("submission limit for this nomination reached")
	ErrUnsupportedFileType   = errors.New("unsupported file type")
	ErrArtworkNotFound       = errors.New("artwork not found")
	ErrInvalidScore          = errors.New("score must be between 1 and 10")
	ErrRatingWindowClosed    = errors.New("rating window is closed")
	ErrJudgingStillOpen      = errors.New("judging window is still open")
	ErrInvalidTimeWindow     = errors.New("competition window must satisfy start <= end <= summing up")
	ErrNothingRated          = errors.New("no rated artworks in this nomination")
	ErrInvalidStatus         = errors.New("invalid status")
	ErrUserNotFound          = errors.New("user not found")
	ErrCompetitionNotFound   = errors.New("competition not found")
	ErrNominationNotFound    = errors.New("nomination not found")
)
