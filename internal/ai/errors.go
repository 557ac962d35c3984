package ai

import (
	"errors"
	"fmt"
)

// ErrMatchingFailed is matched by every failure of a live matching request.
var ErrMatchingFailed = errors.New("matching failed")

// FailureKind tells apart failures that look the same to the user.
type FailureKind string

const (
	FailureModel     FailureKind = "model_failure"
	FailureMalformed FailureKind = "malformed_response"
)

// MatchingError wraps the cause of a failed matching request.
// errors.Is reports true for both ErrMatchingFailed and the cause.
type MatchingError struct {
	Kind FailureKind
	Err  error
}

func (e *MatchingError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s (%s)", ErrMatchingFailed, e.Kind)
	}
	return fmt.Sprintf("%s (%s): %v", ErrMatchingFailed, e.Kind, e.Err)
}

func (e *MatchingError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrMatchingFailed}
	}
	return []error{ErrMatchingFailed, e.Err}
}

func ModelFailure(err error) error {
	return &MatchingError{Kind: FailureModel, Err: err}
}

func MalformedResponse(err error) error {
	return &MatchingError{Kind: FailureMalformed, Err: err}
}

// KindOf returns the failure kind of err, or an empty kind when err is not a MatchingError.
func KindOf(err error) FailureKind {
	var me *MatchingError
	if errors.As(err, &me) {
		return me.Kind
	}
	return ""
}

var failureMessages = map[Language]string{
	LanguageEnglish: "Sorry, we couldn't find matches at this time. Please try again later.",
	LanguageCzech:   "Omlouváme se, momentálně se nepodařilo najít vhodné projekty. Zkuste to prosím později.",
}

// FailureMessage is the user-facing text for any failed matching request.
func FailureMessage(lang Language) string {
	if msg, ok := failureMessages[lang]; ok {
		return msg
	}
	return failureMessages[DefaultLanguage]
}
