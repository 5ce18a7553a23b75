// Package failure classifies the errors surfaced by the client into the four
// kinds views care about: transport, validation, ambiguity and conflict.
// All of them are *goerrors.Error values so callers can inspect the category,
// status code and metadata uniformly.
package failure

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"
)

// Text codes attached to failures raised on the client side.
const (
	CodeTransport        = "TRANSPORT_FAILURE"
	CodeValidation       = "VALIDATION_FAILED"
	CodeAmbiguousLinkKey = "AMBIGUOUS_LINK_KEY"
	CodeDuplicateLink    = "DUPLICATE_LINK"
	CodeConflict         = "CONFLICT"
	CodeMutationInFlight = "MUTATION_IN_FLIGHT"
	CodeDialogState      = "DIALOG_STATE"
	CodeNotEditable      = "LINK_NOT_EDITABLE"
	CodeLinkNotFound     = "LINK_NOT_FOUND"
)

// Transport reports a non-2xx response. A 409 is classified as a conflict and
// keeps the server message verbatim.
func Transport(method, url string, status int, message string, body any) *goerrors.Error {
	category := goerrors.CategoryExternal
	code := CodeTransport
	if status == http.StatusConflict {
		category = goerrors.CategoryConflict
		code = CodeConflict
	}

	if message == "" {
		message = fmt.Sprintf("%s %s failed: %d %s", method, url, status, http.StatusText(status))
	}

	return goerrors.New(message, category).
		WithCode(status).
		WithTextCode(code).
		WithMetadata(map[string]any{
			"method": method,
			"url":    url,
			"status": status,
			"body":   body,
		})
}

// Network wraps a failure that happened before any response was received.
func Network(method, url string, err error) *goerrors.Error {
	return goerrors.Wrap(err, goerrors.CategoryExternal, fmt.Sprintf("%s %s failed", method, url)).
		WithTextCode(CodeTransport).
		WithMetadata(map[string]any{"method": method, "url": url})
}

// Validation converts ozzo-validation output into a validation failure with
// one message per field in the "fields" metadata.
func Validation(err error) error {
	if err == nil {
		return nil
	}

	fields := map[string]string{}
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		for field, ferr := range verrs {
			if ferr != nil {
				fields[field] = ferr.Error()
			}
		}
	} else {
		var internal validation.InternalError
		if errors.As(err, &internal) {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "validation rule failed")
		}
		fields[""] = err.Error()
	}

	return goerrors.New(validationMessage(fields), goerrors.CategoryValidation).
		WithTextCode(CodeValidation).
		WithMetadata(map[string]any{"fields": fields})
}

// InvalidField builds a validation failure for a single field.
func InvalidField(field, message string) *goerrors.Error {
	fields := map[string]string{field: message}
	return goerrors.New(validationMessage(fields), goerrors.CategoryValidation).
		WithTextCode(CodeValidation).
		WithMetadata(map[string]any{"fields": fields})
}

// Ambiguity rejects a request that does not carry the full natural key.
func Ambiguity(message string) *goerrors.Error {
	return goerrors.New(message, goerrors.CategoryBadInput).
		WithTextCode(CodeAmbiguousLinkKey)
}

// Duplicate rejects a link whose natural key is already present.
func Duplicate(key string) *goerrors.Error {
	return goerrors.New("link already exists: "+key, goerrors.CategoryConflict).
		WithTextCode(CodeDuplicateLink).
		WithMetadata(map[string]any{"naturalKey": key})
}

// Operation reports a request that is illegal in the current state.
func Operation(code, message string) *goerrors.Error {
	return goerrors.New(message, goerrors.CategoryOperation).WithTextCode(code)
}

// IsTransport reports whether err is a transport failure, conflicts included.
func IsTransport(err error) bool {
	e, ok := As(err)
	return ok && (e.TextCode == CodeTransport || e.TextCode == CodeConflict)
}

// IsValidation reports whether err is a validation failure.
func IsValidation(err error) bool {
	return hasCategory(err, goerrors.CategoryValidation)
}

// IsAmbiguity reports whether err rejects an incomplete natural key.
func IsAmbiguity(err error) bool {
	e, ok := As(err)
	return ok && e.TextCode == CodeAmbiguousLinkKey
}

// IsConflict reports whether err is a server or client side duplicate.
func IsConflict(err error) bool {
	return hasCategory(err, goerrors.CategoryConflict)
}

// HasCode reports whether err carries the given text code.
func HasCode(err error, code string) bool {
	e, ok := As(err)
	return ok && e.TextCode == code
}

// Status returns the HTTP status attached to a transport failure, or 0.
func Status(err error) int {
	if e, ok := As(err); ok {
		return e.Code
	}
	return 0
}

// Fields returns the per-field messages of a validation failure.
func Fields(err error) map[string]string {
	e, ok := As(err)
	if !ok || e.Metadata == nil {
		return nil
	}
	fields, _ := e.Metadata["fields"].(map[string]string)
	return fields
}

// As extracts the *goerrors.Error from err.
func As(err error) (*goerrors.Error, bool) {
	var e *goerrors.Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

func hasCategory(err error, category goerrors.Category) bool {
	e, ok := As(err)
	return ok && e.Category == category
}

func validationMessage(fields map[string]string) string {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		if name == "" {
			parts = append(parts, fields[name])
			continue
		}
		parts = append(parts, name+": "+fields[name])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
