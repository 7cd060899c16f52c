package api

import (
	"net/http"

	models "LoadCast/internal/domain/models"
	xhttp "LoadCast/pkg/http"
)

const (
	DetailInvalidDate       = "Invalid date format. Use YYYY-MM-DD."
	DetailDataUnavailable   = "Error reading data file."
	DetailEmptyTestRange    = "The test dataset is empty for the provided date."
	DetailEmptyTrainingData = "The training dataset is empty for the provided date."
	DetailInference         = "Error during model prediction."
)

// StatusFor maps a failure kind to the HTTP status and detail shown to clients.
func StatusFor(kind models.ErrorKind) (int, string) {
	switch kind {
	case models.KindInvalidDateFormat:
		return http.StatusBadRequest, DetailInvalidDate
	case models.KindDataUnavailable:
		return http.StatusInternalServerError, DetailDataUnavailable
	case models.KindEmptyTestRange:
		return http.StatusBadRequest, DetailEmptyTestRange
	case models.KindInsufficientHistory:
		return http.StatusBadRequest, DetailEmptyTrainingData
	case models.KindInference:
		return http.StatusInternalServerError, DetailInference
	default:
		return http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)
	}
}

// toAppError converts a forecast failure into the transport error.
func toAppError(err error) *xhttp.AppError {
	kind := models.KindOf(err)
	status, detail := StatusFor(kind)
	return xhttp.NewAppError("ERR_"+kind.String(), detail, status).WithError(err)
}
