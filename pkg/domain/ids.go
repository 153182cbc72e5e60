package domain

import (
	dErrors "pinksync/pkg/domain-errors"
)

// Identifier rules shared by app, user, and consumer IDs. Callers declare
// these IDs themselves, so the broker enforces a restricted charset at every
// trust boundary: ASCII letters, digits, underscore, and hyphen.

// AppID identifies the application emitting events. Caller-declared,
// 3-64 characters from the restricted charset.
type AppID string

// UserID optionally identifies the end user behind an event. Empty for
// anonymous events; at most 128 characters from the restricted charset.
type UserID string

// ConsumerID identifies a subscription consumer. Caller-declared,
// 3-64 characters from the restricted charset.
type ConsumerID string

// ParseAppID constructs an AppID from external input.
//
// Errors: returns CodeInvalidInput on length or charset violations.
func ParseAppID(s string) (AppID, error) {
	if len(s) < 3 || len(s) > 64 {
		return "", dErrors.New(dErrors.CodeInvalidInput, "app_id must be 3-64 characters")
	}
	if !isRestrictedCharset(s) {
		return "", dErrors.New(dErrors.CodeInvalidInput, "app_id contains invalid characters")
	}
	return AppID(s), nil
}

// ParseUserID constructs a UserID from external input. Empty input is valid
// and denotes an anonymous event.
func ParseUserID(s string) (UserID, error) {
	if s == "" {
		return "", nil
	}
	if len(s) > 128 {
		return "", dErrors.New(dErrors.CodeInvalidInput, "user_id must be at most 128 characters")
	}
	if !isRestrictedCharset(s) {
		return "", dErrors.New(dErrors.CodeInvalidInput, "user_id contains invalid characters")
	}
	return UserID(s), nil
}

// ParseConsumerID constructs a ConsumerID from external input.
func ParseConsumerID(s string) (ConsumerID, error) {
	if len(s) < 3 || len(s) > 64 {
		return "", dErrors.New(dErrors.CodeInvalidInput, "consumer_id must be 3-64 characters")
	}
	if !isRestrictedCharset(s) {
		return "", dErrors.New(dErrors.CodeInvalidInput, "consumer_id contains invalid characters")
	}
	return ConsumerID(s), nil
}

func (a AppID) String() string      { return string(a) }
func (u UserID) String() string     { return string(u) }
func (c ConsumerID) String() string { return string(c) }

// isRestrictedCharset reports whether s matches ^[a-zA-Z0-9_-]+$ without the
// regexp machinery; these checks sit on the hot submission path.
func isRestrictedCharset(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		case c == '_' || c == '-':
		default:
			return false
		}
	}
	return len(s) > 0
}
