package llmpipe

import "errors"

// Input errors are written to the consumer verbatim after the "Error: " prefix,
// so their text is part of the line protocol.
var (
	// ErrInvalidFormat indicates a blank prompt without exactly three fields.
	ErrInvalidFormat = errors.New("Invalid prompt format. Expected format: length,first_letter,hint_word") //nolint:staticcheck
	// ErrInvalidLength indicates a blank prompt whose length field is not a non-negative integer.
	ErrInvalidLength = errors.New("Length must be an integer.") //nolint:staticcheck
	// ErrInvalidFirstLetter indicates a blank prompt whose first letter field is not one letter.
	ErrInvalidFirstLetter = errors.New("First letter must be a single alphabetic character.") //nolint:staticcheck
)

var (
	// ErrRemoteCall matches every *RemoteError.
	ErrRemoteCall = errors.New("remote call failed")
	// ErrMissingAPIKey indicates no credential was configured for the provider.
	ErrMissingAPIKey = errors.New("api key missing")
	// ErrUnknownProvider indicates an unsupported completion provider name.
	ErrUnknownProvider = errors.New("unknown provider")
	// ErrEmptyCompletion indicates the provider returned no candidates.
	ErrEmptyCompletion = errors.New("no choices in response")
	// ErrNotReady indicates the bridge process did not send its handshake.
	ErrNotReady = errors.New("bridge not ready")
	// ErrProcessClosed indicates the bridge process stopped producing output.
	ErrProcessClosed = errors.New("bridge process closed")
	// ErrMultilinePrompt indicates a prompt that would break the line protocol.
	ErrMultilinePrompt = errors.New("prompt contains a line break")
)

// RemoteError wraps any failure of a completion call.
type RemoteError struct {
	Err error
}

func (e *RemoteError) Error() string {
	if e.Err == nil {
		return ErrRemoteCall.Error()
	}

	return e.Err.Error()
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// Is reports true for ErrRemoteCall so callers can tell remote failures from input errors.
func (e *RemoteError) Is(target error) bool {
	return target == ErrRemoteCall
}

// AnswerError is an "Error: " line received from a bridge process.
type AnswerError struct {
	Message string
}

func (e *AnswerError) Error() string {
	return "bridge: " + e.Message
}

// IsInputError reports whether err is one of the blank prompt validation errors.
func IsInputError(err error) bool {
	return errors.Is(err, ErrInvalidFormat) ||
		errors.Is(err, ErrInvalidLength) ||
		errors.Is(err, ErrInvalidFirstLetter)
}
