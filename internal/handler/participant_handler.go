/*
Package handler provides the HTTP handlers and routing setup for the chat relay.

This file holds the participant lifecycle handlers: registration, roster
listing, and the heartbeat that keeps a participant from being evicted.
*/
package handler

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	"salachat/internal/app/msglog"
	"salachat/internal/pkg/errs"
	"salachat/internal/pkg/logx"
	"salachat/internal/pkg/req"
	"salachat/internal/pkg/resp"
	"salachat/internal/pkg/sanitize"
)

// ArrivalText is the status message body announcing that a participant joined.
const ArrivalText = "entra na sala..."

var validate = validator.New()

type RegisterInput struct {
	Name string `json:"name" validate:"required,max=64"`
}

// HandleRegister creates a participant and emits the arrival status message.
func HandleRegister(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input RegisterInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		input.Name = sanitize.Clean(input.Name)
		if err := validate.Struct(input); err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidName))
			return
		}

		// The broadcast target is a reserved address, never a participant.
		if input.Name == msglog.BroadcastTarget {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidName))
			return
		}

		participant, customErr := deps.Presence.Register(r.Context(), input.Name)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		// The registration already succeeded; a failed arrival announcement
		// is logged but does not undo it.
		if _, customErr := deps.Messages.Append(r.Context(), input.Name, msglog.BroadcastTarget, ArrivalText, msglog.KindStatus); customErr != nil {
			logx.Error(customErr, "Failed to append arrival status message", "name", input.Name)
		}

		resp.RespondCreated(w, r, participant)
	}
}

// HandleListParticipants returns the current roster.
func HandleListParticipants(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		participants, customErr := deps.Presence.List(r.Context())
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		resp.RespondSuccess(w, r, participants)
	}
}

// HandleStatus is the heartbeat endpoint: it resets the staleness clock of
// the participant named in the User header.
func HandleStatus(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := req.Viewer(r)
		if name == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		if customErr := deps.Presence.Touch(r.Context(), name); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		resp.RespondSuccess(w, r, nil)
	}
}
