package respond

// Application error codes returned in Error.Code.
const (
	CODE_INTERNAL_ERROR = iota + 1
	CODE_INVALID_JSON
	CODE_NOT_FOUND
	CODE_INVALID_MINUTES
	CODE_ALREADY_EXISTS
	CODE_FILE_TOO_BIG
	CODE_UNSUPPORTED_TYPE
	CODE_INVALID_INPUT
	CODE_NOT_PLAYING
	CODE_AUTH_HEADER_MISSING
	CODE_AUTH_TOKEN_INVALID
	CODE_UNSUPPORTED_LANGUAGE
)
