package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mpoksari/catering-api/internal/catalog"
	"github.com/mpoksari/catering-api/internal/ledger"
	"github.com/mpoksari/catering-api/internal/loyalty"
	"github.com/mpoksari/catering-api/internal/member"
	"github.com/mpoksari/catering-api/internal/pricing"
	"github.com/mpoksari/catering-api/internal/storage"
	"github.com/rs/zerolog/log"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode JSON response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeServiceError maps domain errors to HTTP statuses. Unknown errors are
// logged and reported as 500 without detail.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, member.ErrNotFound),
		errors.Is(err, ledger.ErrNotFound),
		errors.Is(err, catalog.ErrNotFound),
		errors.Is(err, loyalty.ErrRewardNotFound),
		errors.Is(err, member.ErrSavedMenuNotFound):
		writeError(w, http.StatusNotFound, err.Error())

	case errors.Is(err, pricing.ErrInvalidPax),
		errors.Is(err, pricing.ErrEmptySelection),
		errors.Is(err, pricing.ErrInvalidQuantity),
		errors.Is(err, pricing.ErrModeMismatch),
		errors.Is(err, member.ErrInvalidMember),
		errors.Is(err, member.ErrInvalidFilter),
		errors.Is(err, member.ErrInvalidMode),
		errors.Is(err, member.ErrInvalidSavedMenu),
		errors.Is(err, ledger.ErrInvalidOrder):
		writeError(w, http.StatusBadRequest, err.Error())

	case errors.Is(err, member.ErrFeatureLocked):
		writeError(w, http.StatusForbidden, err.Error())

	case errors.Is(err, loyalty.ErrInsufficientBalance),
		errors.Is(err, member.ErrEmailTaken),
		errors.Is(err, ledger.ErrInvalidTransition):
		writeError(w, http.StatusConflict, err.Error())

	case errors.Is(err, storage.ErrConflict):
		writeError(w, http.StatusConflict, "member was changed concurrently, please retry")

	default:
		log.Error().Err(err).Msg("unhandled service error")
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// decodeJSON reads a JSON body into v, rejecting unknown fields.
func decodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
