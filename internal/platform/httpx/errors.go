package httpx

import (
	"net/http"

	"github.com/bodycraft-erp/bodycraft-erp/internal/shared"
)

// ErrorPayload is the wire shape of every engine error.
type ErrorPayload struct {
	Kind    shared.Kind    `json:"kind"`
	Message string         `json:"message"`
	Context map[string]any `json:"context,omitempty"`
}

var kindStatus = map[shared.Kind]int{
	shared.KindValidation:   http.StatusBadRequest,
	shared.KindNotFound:     http.StatusNotFound,
	shared.KindInvalidState: http.StatusConflict,
	shared.KindMissingPrice: http.StatusUnprocessableEntity,
	shared.KindConflict:     http.StatusConflict,
	shared.KindUnauthorized: http.StatusUnauthorized,
}

// RespondError maps a structured error to its HTTP status and renders
// {kind, message, context}. Internal errors deliberately hide detail.
func RespondError(w http.ResponseWriter, err error) {
	kind := shared.KindOf(err)
	status, ok := kindStatus[kind]
	if !ok {
		JSON(w, http.StatusInternalServerError, ErrorPayload{
			Kind:    shared.KindInternal,
			Message: "internal error",
		})
		return
	}
	JSON(w, status, ErrorPayload{
		Kind:    kind,
		Message: err.Error(),
		Context: shared.ContextOf(err),
	})
}
