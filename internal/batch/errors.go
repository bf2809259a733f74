package batch

import "emailcount/pkg/serrors"

// UnknownError is the message of a failure record whose error carried none.
const UnknownError = "Unknown error"

// ErrorMessage converts a provider failure into the message stored in a
// failure record. Semantic errors yield their own message without the wrapped
// cause; a nil error or an empty message yields UnknownError.
func ErrorMessage(err error) string {
	if err == nil {
		return UnknownError
	}
	if msg := serrors.UserMessage(err); msg != "" {
		return msg
	}

	return UnknownError
}
