package librarycore

import (
	jsoniter "github.com/json-iterator/go"
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// Result is the uniform envelope returned to hosts wrapping the library
// operations: a success flag, an optional human-readable message, and an
// optional typed payload for read operations.
//
// Callers must branch on OK before touching Payload. Message is always
// populated and descriptive when OK is false; it may be empty on success.
type Result struct {
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
	Payload any    `json:"payload,omitempty"`
}

// SuccessResult builds a successful Result carrying the given payload.
// Pass nil for operations without a payload.
func SuccessResult(payload any) Result {
	return Result{OK: true, Payload: payload}
}

// FailureResult builds a failed Result; err must not be nil, its text becomes
// the envelope message.
func FailureResult(err error) Result {
	return Result{OK: false, Message: err.Error()}
}

// ResultOf converts the (payload, error) pair returned by a library operation
// into the envelope: a nil error yields a successful Result carrying payload,
// any other error yields a failed Result carrying the error text.
func ResultOf(payload any, err error) Result {
	if err != nil {
		return FailureResult(err)
	}

	return SuccessResult(payload)
}

// ToJSON encodes the envelope for hosts speaking JSON.
func (r Result) ToJSON() ([]byte, error) {
	return jsonAPI.Marshal(r)
}
