package api

import (
	"net/http"
	"strings"

	"getconnected/internal/common/errors"
	"getconnected/internal/models"

	json "github.com/goccy/go-json"
)

// maxBodyBytes bounds request bodies; the largest legitimate body is a
// user list for /api/analyze.
const maxBodyBytes = 1 << 20

type message struct {
	ID      string `json:"id,omitempty"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeAndValidate reads a JSON body into dst and runs the struct
// validator over it.
func (s *Server) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return errors.NewValidationError("body: malformed JSON: " + err.Error())
	}
	return s.validate.Struct(dst)
}

// parseFeatures reads a comma separated feature list. Unknown names are
// rejected so they never reach the engine.
func parseFeatures(raw string) ([]string, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var out, unknown []string
	for _, part := range strings.Split(raw, ",") {
		f := strings.TrimSpace(part)
		if f == "" {
			continue
		}
		if !models.IsKnownFeature(f) {
			unknown = append(unknown, f)
			continue
		}
		out = append(out, f)
	}
	if len(unknown) > 0 {
		return nil, errors.NewUnknownFeatureError(unknown)
	}
	return out, nil
}
