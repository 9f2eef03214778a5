/*
Package handler provides the HTTP handlers and routing setup for the chat relay.

This file holds the message handlers: posting, per-viewer listing, and
owner-restricted editing and deletion. Input is sanitized and validated here,
at the boundary; the stores enforce the semantic invariants.
*/
package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"salachat/internal/pkg/errs"
	"salachat/internal/pkg/req"
	"salachat/internal/pkg/resp"
	"salachat/internal/pkg/sanitize"
)

type MessageInput struct {
	To   string `json:"to" validate:"required,max=64"`
	Text string `json:"text" validate:"required"`
	// Kind accepts only client-postable kinds; status messages are system-generated.
	Kind string `json:"type" validate:"required,oneof=broadcast direct"`
}

// bindMessageInput binds, sanitizes, and validates a message body, mapping a
// bad kind to its dedicated error code.
func bindMessageInput(r *http.Request, deps *AppDeps) (*MessageInput, *errs.CustomError) {
	var input MessageInput
	if customErr := req.BindJSON(r, &input); customErr != nil {
		return nil, customErr
	}

	input.To = sanitize.Clean(input.To)
	input.Text = sanitize.Clean(input.Text)
	input.Kind = sanitize.Clean(input.Kind)

	if err := validate.Struct(input); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				if fe.Field() == "Kind" && fe.Tag() == "oneof" {
					return nil, errs.NewError(errs.ErrInvalidKind)
				}
			}
		}
		return nil, errs.NewError(errs.ErrInvalidParams)
	}

	if len(input.Text) > deps.Config.MaxMessageLength {
		return nil, errs.NewError(errs.ErrMessageTooLong)
	}

	return &input, nil
}

// HandlePostMessage appends a broadcast or direct message from the sender
// named in the User header.
func HandlePostMessage(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		from := req.Viewer(r)
		if from == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknownSender))
			return
		}

		input, customErr := bindMessageInput(r, deps)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		message, customErr := deps.Messages.Append(r.Context(), from, input.To, input.Text, input.Kind)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		resp.RespondCreated(w, r, message)
	}
}

// HandleListMessages returns the messages visible to the viewer named in the
// User header, optionally limited to the newest N entries.
func HandleListMessages(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		viewer := req.Viewer(r)
		if viewer == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknownViewer))
			return
		}

		registered, customErr := deps.Presence.IsRegistered(r.Context(), viewer)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}
		if !registered {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknownViewer))
			return
		}

		limit, customErr := req.ParseLimit(r)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		messages, customErr := deps.Messages.ListFor(r.Context(), viewer, limit)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		resp.RespondSuccess(w, r, messages)
	}
}

// HandleEditMessage mutates an existing message's to, text, and kind. Only
// the original sender may edit.
func HandleEditMessage(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		editor := req.Viewer(r)
		if editor == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknownSender))
			return
		}

		input, customErr := bindMessageInput(r, deps)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		id := chi.URLParam(r, "id")
		if customErr := deps.Messages.Update(r.Context(), id, editor, input.To, input.Text, input.Kind); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		resp.RespondSuccess(w, r, nil)
	}
}

// HandleDeleteMessage removes an existing message. Only the original sender
// may delete.
func HandleDeleteMessage(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requester := req.Viewer(r)
		if requester == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknownSender))
			return
		}

		id := chi.URLParam(r, "id")
		if customErr := deps.Messages.Delete(r.Context(), id, requester); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		resp.RespondSuccess(w, r, nil)
	}
}
