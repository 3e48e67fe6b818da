package httpadapter

import (
	"errors"
	"net/http"

	"github.com/Chaithz/thinkTree/internal/core/domain"
)

const (
	onlyPDFMessage      = "Only PDF files are allowed!"
	internalErrorPrefix = "An error occurred: "
)

func mapErrorToHTTPStatus(err error) int {
	var maxBytesErr *http.MaxBytesError
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrUnsupportedMediaType):
		return http.StatusBadRequest
	case errors.As(err, &maxBytesErr):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeError keeps the two client-visible error shapes: a 400 with the
// validation message and a 500 wrapping the underlying error text.
func writeError(w http.ResponseWriter, err error) {
	if domain.IsKind(err, domain.ErrUnsupportedMediaType) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": onlyPDFMessage})
		return
	}
	status := mapErrorToHTTPStatus(err)
	if status == http.StatusBadRequest {
		writeJSON(w, status, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, status, map[string]string{"error": internalErrorPrefix + err.Error()})
}
