// Package handler contains chi HTTP handlers that translate HTTP
// requests/responses to and from the service layer.
package handler

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/Shivanand-hulikatti/event-registrations/internal/apperror"
	"github.com/Shivanand-hulikatti/event-registrations/internal/model"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps err onto a status code through its apperror kind.
// Internal failures are logged and reported without detail.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	e, ok := apperror.As(err)
	kind := apperror.KindOf(err)
	reqID := chimiddleware.GetReqID(r.Context())

	switch {
	case !ok || kind == apperror.KindInternal:
		log.Printf("internal error req_id=%s %s %s: %v", reqID, r.Method, r.URL.Path, err)
		writeJSON(w, http.StatusInternalServerError, model.ErrorResponse{
			Error: "internal server error",
			Code:  string(apperror.CodeInternal),
		})
		return
	case kind == apperror.KindTransient:
		log.Printf("transient error req_id=%s %s %s: %v", reqID, r.Method, r.URL.Path, err)
		w.Header().Set("Retry-After", "1")
	}

	writeJSON(w, kind.HTTPStatus(), model.ErrorResponse{
		Error:  e.Message,
		Code:   string(e.Code),
		Fields: e.Fields,
	})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return apperror.Invalid("invalid request body: "+err.Error(), nil)
	}
	return nil
}

func idParam(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperror.Invalid("invalid "+name, map[string]string{name: "must be a positive integer"})
	}
	return id, nil
}

// HealthCheck handles GET /health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
