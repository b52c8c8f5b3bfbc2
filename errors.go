package directory

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-ldap/ldap/v3"
)

// Kind categorizes directory operation failures.
type Kind string

const (
	KindBind        Kind = "bind"
	KindOption      Kind = "option"
	KindConnection  Kind = "connection"
	KindPersistence Kind = "persistence"
	KindNoResult    Kind = "no_result"
	KindSizeLimit   Kind = "size_limit"
	KindFilter      Kind = "filter"
	KindSearch      Kind = "search"
)

// Error provides structured failure information for directory operations.
type Error struct {
	Op        string // The operation that failed
	Kind      Kind   // Failure kind
	Code      uint16 // LDAP result code, 0 when not code-driven
	Message   string // Human-readable message
	ServerMsg string // Server-provided message
	DN        string // DN involved in the operation (if applicable)
	Retryable bool   // Whether the failure is retryable
	Cause     error  // Underlying error
}

func (e *Error) Error() string {
	var parts []string

	if e.Code > 0 {
		parts = append(parts, fmt.Sprintf("directory %s failed (code %d)", e.Op, e.Code))
	} else {
		parts = append(parts, fmt.Sprintf("directory %s failed", e.Op))
	}

	if e.Message != "" {
		parts = append(parts, e.Message)
	}

	if e.ServerMsg != "" && e.ServerMsg != e.Message {
		parts = append(parts, fmt.Sprintf("server: %s", e.ServerMsg))
	}

	if e.DN != "" {
		parts = append(parts, fmt.Sprintf("DN: %s", e.DN))
	}

	return strings.Join(parts, " - ")
}

func (e *Error) IsRetryable() bool {
	return e.Retryable
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// newError builds an *Error from an underlying failure, extracting the LDAP
// result code when present. The fallback kind applies when the code does not
// map to a more specific kind.
func newError(op string, fallback Kind, err error) *Error {
	if err == nil {
		return nil
	}

	e := &Error{
		Op:    op,
		Kind:  fallback,
		Cause: err,
	}

	var ldapErr *ldap.Error
	if errors.As(err, &ldapErr) {
		e.Code = ldapErr.ResultCode
		e.ServerMsg = ldapErr.Err.Error()
		e.Retryable = isCodeRetryable(ldapErr.ResultCode)
		e.Message = ldap.LDAPResultCodeMap[ldapErr.ResultCode]
	} else {
		e.Retryable = isGenericRetryable(err)
		e.Message = err.Error()
	}

	return e
}

// newSearchError translates a search failure, refining the kind by result
// code: filter syntax rejection, size-limit cap, and no-such-object each get
// their own kind; every other non-zero code stays a generic search failure
// carrying the original code and message.
func newSearchError(op string, err error) *Error {
	e := newError(op, KindSearch, err)
	if e == nil {
		return nil
	}

	switch e.Code {
	case ldap.LDAPResultFilterError:
		e.Kind = KindFilter
	case ldap.LDAPResultSizeLimitExceeded:
		e.Kind = KindSizeLimit
	case ldap.LDAPResultNoSuchObject:
		e.Kind = KindNoResult
	}

	return e
}

// newBindError translates an authentication failure.
func newBindError(op string, err error) *Error {
	return newError(op, KindBind, err)
}

// newPersistenceError translates an add/modify/delete failure for dn.
func newPersistenceError(op, dn string, err error) *Error {
	e := newError(op, KindPersistence, err)
	if e == nil {
		return nil
	}
	e.DN = dn
	return e
}

// newConnectionError translates a connect/teardown failure.
func newConnectionError(op string, retryable bool, err error) *Error {
	e := newError(op, KindConnection, err)
	if e == nil {
		return nil
	}
	e.Retryable = retryable
	return e
}

// newOptionError reports a rejected connection option.
func newOptionError(op string, opt Option, message string) *Error {
	return &Error{
		Op:      op,
		Kind:    KindOption,
		Message: fmt.Sprintf("option %s: %s", opt, message),
	}
}

// KindOf returns the kind of err, or "" for non-directory errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsNoResult reports whether err indicates a search that matched nothing
// where the server signals this distinctly from an empty result.
func IsNoResult(err error) bool {
	return KindOf(err) == KindNoResult
}

// IsSizeLimit reports whether err indicates a server-enforced result cap.
func IsSizeLimit(err error) bool {
	return KindOf(err) == KindSizeLimit
}

// IsFilter reports whether err indicates a rejected filter expression.
func IsFilter(err error) bool {
	return KindOf(err) == KindFilter
}

// IsBind reports whether err indicates an authentication failure.
func IsBind(err error) bool {
	return KindOf(err) == KindBind
}

// IsRetryable reports whether err represents a transient condition worth
// retrying.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var e *Error
	if errors.As(err, &e) {
		return e.Retryable
	}

	var ldapErr *ldap.Error
	if errors.As(err, &ldapErr) {
		return isCodeRetryable(ldapErr.ResultCode)
	}

	return isGenericRetryable(err)
}

// isCodeRetryable reports whether an LDAP result code indicates a transient
// server condition.
func isCodeRetryable(code uint16) bool {
	switch code {
	case ldap.LDAPResultBusy,
		ldap.LDAPResultUnavailable,
		ldap.LDAPResultServerDown,
		ldap.LDAPResultTimeLimitExceeded,
		ldap.LDAPResultConnectError:
		return true
	default:
		return false
	}
}

// isGenericRetryable classifies non-LDAP errors by message.
func isGenericRetryable(err error) bool {
	errStr := strings.ToLower(err.Error())

	retryablePatterns := []string{
		"connection",
		"timeout",
		"network",
		"broken pipe",
		"connection reset",
		"temporary failure",
	}

	for _, pattern := range retryablePatterns {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}

	return false
}
