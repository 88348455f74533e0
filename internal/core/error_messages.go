package core

// error_messages.go maps technical errors to messages a user can act on.
//
// Error codes are grouped by category:
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large: the upload exceeds UPLOAD_MAX_FILE_SIZE
//	          Action: Upload a smaller file
//	          Matches: ErrFileTooLarge, "request body too large"
//
//	FILE002 - Unsupported file type: the suffix is not csv, xls, xlsx or json
//	          Action: Upload a .csv, .xls, .xlsx or .json file
//	          Matches: *dataset.UnsupportedFormatError
//
//	FILE003 - Parse failure: the file has a supported suffix but could not be read
//	          Action: Check that the file is well-formed and try again
//	          Matches: *dataset.LoadError
//
//	FILE004 - No file: no file was attached to the upload
//	          Action: Choose a file to upload
//	          Matches: ErrNoFile, "no such file"
//
// # Chart Errors (CHART001-CHART099)
//
//	CHART001 - Chart cannot be drawn from the selected columns
//	           Action: Pick a numeric column for the plotted values
//	           Matches: *chart.RenderError
//
// # Session Errors (SES001-SES099)
//
//	SES001 - No dataset loaded for this session
//	         Action: Upload a file first
//	         Matches: ErrNoTable
//
// # Upload Errors (UPL001-UPL099)
//
//	UPL002 - System busy: every parse slot is taken
//	         Action: Please wait a moment and try again
//	         Matches: ErrParseQueueFull
//
//	UPL004 - Request cancelled ("context canceled")
//	UPL005 - Request timeout ("context deadline exceeded")
//
// # Rate Limiting (RATE001)
//
//	RATE001 - Too many requests ("rate limit")
//
// # Default Error (ERR000)
//
//	ERR000 - An unexpected error occurred. Check the server log for the
//	         original error.
//
// Typed errors are matched first with errors.As / errors.Is. Anything else
// falls through to case-insensitive substring patterns; the first match wins.

import (
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/explorer/internal/chart"
	"github.com/JonMunkholm/explorer/internal/dataset"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string `json:"message"` // What happened
	Action  string `json:"action"`  // What to do about it
	Code    string `json:"code"`    // Support reference
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

var (
	msgTooLarge = UserMessage{
		Message: "File exceeds the maximum upload size",
		Action:  "Upload a smaller file",
		Code:    "FILE001",
	}
	msgNoFile = UserMessage{
		Message: "No file was selected",
		Action:  "Choose a file to upload",
		Code:    "FILE004",
	}
	msgNoTable = UserMessage{
		Message: "No dataset is loaded",
		Action:  "Upload a file first",
		Code:    "SES001",
	}
	msgBusy = UserMessage{
		Message: "System is busy processing other uploads",
		Action:  "Please wait a moment and try again",
		Code:    "UPL002",
	}
)

// errorPatterns catch errors that reach MapError without a typed cause,
// mostly from net/http and context.
var errorPatterns = []errorPattern{
	{pattern: "request body too large", msg: msgTooLarge},
	{pattern: "no such file", msg: msgNoFile},
	{pattern: "too many uploads", msg: msgBusy},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "UPL004",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try a smaller file or check your connection",
			Code:    "UPL005",
		},
	},
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when nothing matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
//
// Example:
//
//	_, err := dataset.Load("notes.txt", r)
//	msg := MapError(err)
//	// msg.Code == "FILE002"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var unsupported *dataset.UnsupportedFormatError
	var loadErr *dataset.LoadError
	var renderErr *chart.RenderError

	switch {
	case errors.As(err, &unsupported):
		return UserMessage{
			Message: fmt.Sprintf("%q is not a supported file type", unsupported.Name),
			Action:  "Upload a " + strings.Join(dataset.SupportedExtensions, ", ") + " file",
			Code:    "FILE002",
		}
	case errors.As(err, &loadErr):
		return UserMessage{
			Message: fmt.Sprintf("Could not read %s as %s: %v", loadErr.Name, loadErr.Format, loadErr.Err),
			Action:  "Check that the file is well-formed and try again",
			Code:    "FILE003",
		}
	case errors.As(err, &renderErr):
		return UserMessage{
			Message: renderErr.Error(),
			Action:  "Pick a numeric column for the plotted values",
			Code:    "CHART001",
		}
	case errors.Is(err, ErrFileTooLarge):
		return msgTooLarge
	case errors.Is(err, ErrNoFile):
		return msgNoFile
	case errors.Is(err, ErrNoTable):
		return msgNoTable
	case errors.Is(err, ErrParseQueueFull):
		return msgBusy
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display:
// "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to something more specific than
// ERR000.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error with its user-facing message.
type UserError struct {
	Technical error
	User      UserMessage
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
