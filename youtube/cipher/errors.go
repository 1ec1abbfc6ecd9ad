package cipher

import (
	"errors"
	"fmt"

	"github.com/ytget/ytapi/errs"
)

// Error codes
const (
	ErrCodePlayerJSNotFound  = "PLAYER_JS_NOT_FOUND"
	ErrCodePlayerJSDownload  = "PLAYER_JS_DOWNLOAD_FAILED"
	ErrCodeSignatureDecipher = "SIGNATURE_DECIPHER_FAILED"
	ErrCodeSignatureInvalid  = "SIGNATURE_INVALID"
	ErrCodeJSExecutionFailed = "JS_EXECUTION_FAILED"
)

// Error represents a deciphering failure with a code and optional cause.
// It matches errs.ErrCipherFailed under errors.Is.
type Error struct {
	Code    string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is reports errs.ErrCipherFailed as a match.
func (e *Error) Is(target error) bool { return target == errs.ErrCipherFailed }

// NewError creates a new Error with the given code, message and cause.
func NewError(code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

func hasCode(err error, codes ...string) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	for _, c := range codes {
		if e.Code == c {
			return true
		}
	}
	return false
}

// IsNotFound returns true if player.js could not be located.
func IsNotFound(err error) bool { return hasCode(err, ErrCodePlayerJSNotFound) }

// IsInvalid returns true if the signatureCipher value was malformed.
func IsInvalid(err error) bool { return hasCode(err, ErrCodeSignatureInvalid) }

// IsJSError returns true if player.js failed to load or run.
func IsJSError(err error) bool {
	return hasCode(err, ErrCodeJSExecutionFailed, ErrCodeSignatureDecipher)
}
