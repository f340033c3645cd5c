package auth

import (
	"encoding/json"
	"io"
	"mime"
	"net/http"
)

const maxBodyBytes = 1 << 20

// errorBody is the structured error every handler and the gate return.
type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		//nolint:errcheck // the client may already be gone
		json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorBody{Error: message})
}

// WriteError writes the structured error body used across the API.
func WriteError(w http.ResponseWriter, status int, message string) {
	writeError(w, status, message)
}

// formValues reads string fields from either a JSON object body or a URL-encoded
// form, depending on the request's content type.
func formValues(r *http.Request) (map[string]string, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		raw := map[string]any{}
		if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&raw); err != nil {
			return nil, err
		}
		values := make(map[string]string, len(raw))
		for k, v := range raw {
			if s, ok := v.(string); ok {
				values[k] = s
			}
		}
		return values, nil
	}

	if err := r.ParseForm(); err != nil {
		return nil, err
	}
	values := make(map[string]string, len(r.Form))
	for k := range r.Form {
		values[k] = r.Form.Get(k)
	}
	return values, nil
}

func decodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(v)
}
