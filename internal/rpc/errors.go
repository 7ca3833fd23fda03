package rpc

// XRPL RPC error codes. The codes and error strings must match rippled
// exactly, clients switch on them.

// Error represents an XRPL RPC error with code and message.
type Error struct {
	Code        int    `json:"error_code"`
	ErrorString string `json:"error"`
	Message     string `json:"error_message,omitempty"`
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.ErrorString
}

const (
	// Universal errors
	CodeUnknown        = -1
	CodeJSONRPC        = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternal       = -32603
	CodeParseError     = -32700

	// General purpose errors
	CodeNoCurrent = 4
	CodeTooBusy   = 6
	CodeSlowDown  = 7

	// Server state
	CodeNotReady = 13

	// Ledger errors
	CodeLgrNotFound = 15

	// Account errors
	CodeActNotFound  = 19
	CodeActMalformed = 50

	// Transaction errors
	CodeTxnNotFound = 24

	// Database errors
	CodeDBDeserialization = 41

	// Object errors
	CodeObjectNotFound = 92
)

func NewError(code int, errorString, message string) *Error {
	return &Error{
		Code:        code,
		ErrorString: errorString,
		Message:     message,
	}
}

// Common error constructors matching rippled.

func ErrorUnknown(message string) *Error {
	return NewError(CodeUnknown, "unknown", message)
}

func ErrorInvalidParams(message string) *Error {
	return NewError(CodeInvalidParams, "invalidParams", message)
}

func ErrorMethodNotFound(method string) *Error {
	return NewError(CodeMethodNotFound, "unknownCmd", "Unknown method: "+method)
}

func ErrorLgrNotFound(message string) *Error {
	return NewError(CodeLgrNotFound, "lgrNotFound", message)
}

func ErrorActNotFound(message string) *Error {
	return NewError(CodeActNotFound, "actNotFound", message)
}

func ErrorActMalformed(message string) *Error {
	return NewError(CodeActMalformed, "actMalformed", message)
}

func ErrorInternal(message string) *Error {
	return NewError(CodeInternal, "internal", message)
}

// ErrorNotReady reports that the store holds no validated ledgers yet.
func ErrorNotReady() *Error {
	return NewError(CodeNotReady, "notReady", "Not ready to handle this request.")
}

func ErrorDBDeserialization(message string) *Error {
	return NewError(CodeDBDeserialization, "dbDeserialization", message)
}

func ErrorObjectNotFound(message string) *Error {
	return NewError(CodeObjectNotFound, "objectNotFound", message)
}

// ErrorMissingField matches rippled's missing_field_error text.
func ErrorMissingField(field string) *Error {
	return NewError(CodeInvalidParams, "invalidParams", "Missing field '"+field+"'.")
}

// ErrorInvalidField matches rippled's invalid_field_error text.
func ErrorInvalidField(field string) *Error {
	return NewError(CodeInvalidParams, "invalidParams", "Invalid field '"+field+"'.")
}
