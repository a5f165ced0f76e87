package apperror

// ErrorCode is the general, system-level category of an error.
type ErrorCode string

const (
	CodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	CodeRequestFailed    ErrorCode = "REQUEST_FAILED"
	CodeChannelFailed    ErrorCode = "CHANNEL_FAILED"
	CodeConflict         ErrorCode = "CONFLICT"
	CodeUnauthorized     ErrorCode = "UNAUTHORIZED"
	CodeInternalError    ErrorCode = "INTERNAL_SERVER_ERROR"
)

// BusinessCode narrows an ErrorCode down to the reason the board cares about.
type BusinessCode string

const (
	BusinessCodeGeneral            BusinessCode = "GENERAL"
	BusinessCodeEmptyContent       BusinessCode = "EMPTY_CONTENT"
	BusinessCodeInvalidFormat      BusinessCode = "INVALID_FORMAT"
	BusinessCodeUnknownChangeKind  BusinessCode = "UNKNOWN_CHANGE_KIND"
	BusinessCodeFetchFailed        BusinessCode = "FETCH_FAILED"
	BusinessCodeInsertFailed       BusinessCode = "INSERT_FAILED"
	BusinessCodeSubscribeFailed    BusinessCode = "SUBSCRIBE_FAILED"
	BusinessCodeSubmissionInFlight BusinessCode = "SUBMISSION_IN_FLIGHT"
	BusinessCodeFeedAlreadyActive  BusinessCode = "FEED_ALREADY_ACTIVE"
	BusinessCodeTokenMissing       BusinessCode = "TOKEN_MISSING"
	BusinessCodeTokenInvalid       BusinessCode = "TOKEN_INVALID"
	BusinessCodeTokenExpired       BusinessCode = "TOKEN_EXPIRED"
)
