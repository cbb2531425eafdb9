package handler

import (
	"net/http"

	"github.com/vfg2006/pdv-api/internal/domain"
)

func ChatHistory(service Messaging) http.HandlerFunc {
	return authenticated(func(w http.ResponseWriter, r *http.Request, session *domain.Session) {
		msgs, err := service.History(r.Context(), session, param(r, "operator_id"))
		if err != nil {
			fail(w, r, err)
			return
		}
		ok(w, msgs)
	})
}

func SendMessage(service Messaging) http.HandlerFunc {
	return authenticated(func(w http.ResponseWriter, r *http.Request, session *domain.Session) {
		var req domain.SendMessageRequest
		if !decode(w, r, &req) {
			return
		}

		msg, err := service.Send(r.Context(), session, param(r, "operator_id"), req.Text)
		if err != nil {
			fail(w, r, err)
			return
		}
		created(w, msg)
	})
}

func MarkChatRead(service Messaging) http.HandlerFunc {
	return authenticated(func(w http.ResponseWriter, r *http.Request, session *domain.Session) {
		if err := service.MarkRead(r.Context(), session, param(r, "operator_id")); err != nil {
			fail(w, r, err)
			return
		}
		noContent(w)
	})
}
