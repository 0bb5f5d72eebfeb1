package employeeerrors

import (
	"net/http"

	"github.com/Corose/dashboard/internal/shared/apperror"
)

var (
	ErrEmployeeNotFound = apperror.New(
		apperror.CodeNotFound,
		"Employee not found",
		http.StatusNotFound,
	)
	ErrInvalidEmployeeID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid employee ID",
		http.StatusBadRequest,
	)
	ErrImportFailed = apperror.New(
		apperror.CodeInvalidInput,
		"Could not read the uploaded roster file",
		http.StatusBadRequest,
	)
	ErrInvalidImportMode = apperror.New(
		apperror.CodeInvalidInput,
		"Import mode must be 'replace' or 'append'",
		http.StatusBadRequest,
	)
	ErrMissingImportFile = apperror.New(
		apperror.CodeInvalidInput,
		"No file was uploaded",
		http.StatusBadRequest,
	)
)
