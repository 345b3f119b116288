package handler

import (
	"net/http"

	"github.com/templui/folio/internal/ctxkeys"
	"github.com/templui/folio/internal/service"
	"github.com/templui/folio/internal/validation"
)

type MessageHandler struct {
	messageService *service.MessageService
	viewService    *service.ViewService
}

func NewMessageHandler(messageService *service.MessageService, viewService *service.ViewService) *MessageHandler {
	return &MessageHandler{
		messageService: messageService,
		viewService:    viewService,
	}
}

// Send accepts a hire request from the public site.
func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	var in validation.MessageInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondError(w, r, err)
		return
	}

	msg, err := h.messageService.Send(r.Context(), in)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondCreated(w, map[string]string{"id": msg.ID})
}

func (h *MessageHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.viewService.AdminMessages(
		r.Context(),
		ctxkeys.User(r.Context()),
		queryInt(r, "page", 1),
		queryInt(r, "perPage", 0),
	)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, page)
}

// MarkRead expects {"read": bool}; an empty body marks the message read.
func (h *MessageHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	body := struct {
		Read *bool `json:"read"`
	}{}
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &body); err != nil {
			respondError(w, r, err)
			return
		}
	}
	read := body.Read == nil || *body.Read

	msg, err := h.messageService.MarkRead(r.Context(), ctxkeys.User(r.Context()), r.PathValue("id"), read)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, msg)
}

func (h *MessageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.messageService.Delete(r.Context(), ctxkeys.User(r.Context()), r.PathValue("id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, nil)
}
