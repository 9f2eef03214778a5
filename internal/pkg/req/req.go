/*
Package req provides helper functions for HTTP request parsing and data binding.

It encapsulates JSON body binding, identity extraction from the User header,
and limit query parameter parsing, with integrated error handling so handlers
receive either clean values or a ready-to-send CustomError.
*/
package req

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"salachat/internal/pkg/errs"
	"salachat/internal/pkg/sanitize"
)

// BindJSON attempts to bind the JSON data from the HTTP request body to the destination struct dst.
func BindJSON(r *http.Request, dst any) *errs.CustomError {
	contentType := r.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "application/json") {
		return errs.NewError(errs.ErrUnsupportedMediaType)
	}

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		return errs.NewError(errs.ErrInvalidJSONFormat)
	}

	if decoder.More() {
		return errs.NewError(errs.ErrExtraContentInBody)
	}

	return nil
}

// Viewer returns the sanitized participant name carried in the User header.
// Every message operation identifies its caller through this header.
func Viewer(r *http.Request) string {
	return sanitize.Clean(r.Header.Get("User"))
}

// ParseLimit parses the optional limit query parameter. A missing parameter
// yields 0 (no limit); anything that is not a positive integer is rejected.
func ParseLimit(r *http.Request) (int, *errs.CustomError) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, nil
	}

	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return 0, errs.NewError(errs.ErrInvalidLimit)
	}

	return limit, nil
}
