package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ternarybob/arbor"
)

// QueryHandler serves the command protocol over plain HTTP for clients
// that do not hold a websocket open.
type QueryHandler struct {
	dispatcher *Dispatcher
	logger     arbor.ILogger
}

// NewQueryHandler creates a new QueryHandler.
func NewQueryHandler(dispatcher *Dispatcher, logger arbor.ILogger) *QueryHandler {
	return &QueryHandler{dispatcher: dispatcher, logger: logger}
}

// queryResponse is the envelope both transports share.
type queryResponse struct {
	Success bool        `json:"success"`
	Payload interface{} `json:"payload,omitempty"`
	Error   *QueryError `json:"error,omitempty"`
}

// HandleQuery decodes a query from the request body, dispatches it, and
// writes the response envelope.
func (h *QueryHandler) HandleQuery(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	var query Query
	if err := json.NewDecoder(r.Body).Decode(&query); err != nil {
		h.logger.Warn().Err(err).Msg("Failed to parse query request")
		WriteJSON(w, http.StatusBadRequest, queryResponse{
			Success: false,
			Error:   &QueryError{Code: CodeBadRequest, Message: err.Error()},
		})
		return
	}

	payload, err := h.dispatcher.Dispatch(r.Context(), query)
	if err != nil {
		var queryErr *QueryError
		if !errors.As(err, &queryErr) {
			queryErr = &QueryError{Code: CodeUnknown, Message: err.Error()}
		}
		WriteJSON(w, http.StatusOK, queryResponse{Success: false, Error: queryErr})
		return
	}

	WriteJSON(w, http.StatusOK, queryResponse{Success: true, Payload: payload})
}
