package model

import (
	"errors"
	"fmt"
	"net/http"
)

// TransportError reports a page that could not be fetched, either because
// the request failed or because the server answered with a non-2xx status.
type TransportError struct {
	// URL is the absolute URL that was requested.
	URL string

	// StatusCode is the HTTP status, or 0 when no response was received.
	StatusCode int

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d (%s): %v",
			e.URL, e.StatusCode, http.StatusText(e.StatusCode), e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

// Unwrap returns the underlying cause.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// Temporary reports whether retrying the request may succeed.
// Client errors other than 429 are permanent.
func (e *TransportError) Temporary() bool {
	if e.StatusCode == 0 {
		return true
	}
	if e.StatusCode == http.StatusTooManyRequests {
		return true
	}
	return e.StatusCode >= http.StatusInternalServerError
}

// ParseShapeError reports markup that does not have the expected shape.
//
// When Record is empty the error concerns the whole page (for example the
// listing lists have different lengths). Otherwise it concerns one record.
type ParseShapeError struct {
	// Page is the URL of the page being parsed.
	Page string

	// Field names the field or list that is malformed.
	Field string

	// Record is the display name of the affected record, if any.
	Record string

	// Index is the position of the record on its page.
	Index int

	// Detail describes what was wrong.
	Detail string
}

// Error implements the error interface.
func (e *ParseShapeError) Error() string {
	if e.Record == "" {
		return fmt.Sprintf("page %s: field %s: %s", e.Page, e.Field, e.Detail)
	}
	return fmt.Sprintf("page %s: record %q (#%d): field %s: %s",
		e.Page, e.Record, e.Index, e.Field, e.Detail)
}

// RecordScoped reports whether the error affects a single record only.
func (e *ParseShapeError) RecordScoped() bool {
	return e.Record != ""
}

// IsRecordError reports whether err is a ParseShapeError scoped to one
// record. Such errors drop the record and let the crawl continue.
func IsRecordError(err error) bool {
	var shapeErr *ParseShapeError
	if errors.As(err, &shapeErr) {
		return shapeErr.RecordScoped()
	}
	return false
}

// IsTransportError reports whether err wraps a TransportError.
func IsTransportError(err error) bool {
	var transportErr *TransportError
	return errors.As(err, &transportErr)
}
