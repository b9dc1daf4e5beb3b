package httpx

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Menelao6/inventory-manager/internal/apperr"
)

type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func statusFor(k apperr.Kind) int {
	switch k {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindConfirmationRequired:
		return http.StatusPreconditionRequired
	case apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindRemote:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err with the status of its kind. Errors without a
// kind are internal: the client gets a generic message and the cause is
// logged.
func writeError(w http.ResponseWriter, log *zap.Logger, err error) {
	kind := apperr.KindOf(err)
	code := statusFor(kind)
	msg := apperr.Message(err)
	switch {
	case kind == apperr.KindUnknown:
		log.Error("internal error", zap.Error(err))
		msg = "internal error"
	case code >= http.StatusInternalServerError:
		log.Warn("remote store failure", zap.Error(err))
	}
	writeJSON(w, code, errorBody{Error: msg, Kind: kind.String()})
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperr.Validation("invalid json")
	}
	return nil
}

// confirmed reads the ?confirm= flag destructive actions require.
func confirmed(r *http.Request) bool {
	ok, _ := strconv.ParseBool(r.URL.Query().Get("confirm"))
	return ok
}

func intParam(r *http.Request, name string) (int, error) {
	raw := chi.URLParam(r, name)
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, apperr.Validationf("invalid %s %q", name, raw)
	}
	return n, nil
}

func loggerOr(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
