package httpx

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse is the uniform error body: a machine-stable error string
// plus optional free-form details.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// ListResponse wraps paginated collections. Total is the full table count,
// not the page length.
type ListResponse struct {
	Items any   `json:"items"`
	Total int64 `json:"total"`
}

func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	var body []byte
	var err error
	if payload != nil {
		body, err = json.Marshal(payload)
		if err != nil {
			// best-effort error response; avoid writing partial JSON
			http.Error(w, `{"error":"encode_error"}`, http.StatusInternalServerError)
			return
		}
	} else {
		body = []byte("null")
	}
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		// nothing we can do at this point
		_ = err
	}
}

func JSONError(w http.ResponseWriter, status int, msg string, details any) {
	JSON(w, status, ErrorResponse{Error: msg, Details: details})
}

// JSONList writes a paginated page of items with the collection total.
func JSONList(w http.ResponseWriter, items any, total int64) {
	JSON(w, http.StatusOK, ListResponse{Items: items, Total: total})
}
