package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"

	ozzo "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"

	"github.com/pharmaweb/sitecms/internal/blocks"
	"github.com/pharmaweb/sitecms/internal/disclaimer"
	"github.com/pharmaweb/sitecms/internal/media"
	"github.com/pharmaweb/sitecms/internal/posts"
	"github.com/pharmaweb/sitecms/internal/preferences"
	"github.com/pharmaweb/sitecms/internal/validation"
)

var (
	ErrKindUnknown        = errors.New("http: unknown post kind")
	ErrIDInvalid          = errors.New("http: id is not a valid uuid")
	ErrBodyInvalid        = errors.New("http: request body is invalid")
	ErrFileRequired       = errors.New("http: image file is required")
	ErrDisclaimerRequired = errors.New("http: medical professional confirmation required")
	ErrLanguageInvalid    = errors.New("http: language is not supported")
)

type issue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error  string  `json:"error"`
	Status string  `json:"status"`
	Issues []issue `json:"issues,omitempty"`
}

func joinPath(base, suffix string) string {
	trimmedBase := strings.Trim(strings.TrimSpace(base), "/")
	trimmedSuffix := strings.Trim(strings.TrimSpace(suffix), "/")
	switch {
	case trimmedBase == "" && trimmedSuffix == "":
		return "/"
	case trimmedBase == "":
		return "/" + trimmedSuffix
	case trimmedSuffix == "":
		return "/" + trimmedBase
	}
	return "/" + trimmedBase + "/" + trimmedSuffix
}

func decodeJSON(r *http.Request, target any) error {
	if r == nil || r.Body == nil {
		return io.EOF
	}
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	decoder.UseNumber()
	if err := decoder.Decode(target); err != nil {
		return errors.Join(ErrBodyInvalid, err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

// statusText renders the flat message shown to editors and visitors.
func statusText(err error) string {
	return "Error: " + errorMessage(err)
}

// errorMessage strips go-errors envelopes so the domain message surfaces.
func errorMessage(err error) string {
	if err == nil {
		return "unknown error"
	}
	current := err
	for depth := 0; depth < 8 && goerrors.IsWrapped(current); depth++ {
		next := errors.Unwrap(current)
		if next == nil {
			break
		}
		current = next
	}
	return current.Error()
}

func mapError(err error) (int, errorResponse) {
	if err == nil {
		return http.StatusInternalServerError, errorResponse{Error: "internal_error", Status: "Error: unknown error"}
	}
	response := errorResponse{Status: statusText(err)}

	switch {
	case errors.Is(err, ErrDisclaimerRequired):
		response.Error = "forbidden"
		return http.StatusForbidden, response
	case posts.IsNotFound(err), errors.Is(err, media.ErrObjectNotFound):
		response.Error = "not_found"
		return http.StatusNotFound, response
	case errors.Is(err, posts.ErrSlugExists), errors.Is(err, blocks.ErrUploadInFlight):
		response.Error = "conflict"
		return http.StatusConflict, response
	case errors.Is(err, media.ErrUploadTooLarge):
		response.Error = "payload_too_large"
		return http.StatusRequestEntityTooLarge, response
	case errors.Is(err, media.ErrUploadEmpty), errors.Is(err, media.ErrUnsupportedType):
		response.Error = "bad_request"
		return http.StatusBadRequest, response
	case errors.Is(err, posts.ErrUploadFailed):
		response.Error = "upload_failed"
		return http.StatusBadGateway, response
	case isBadRequest(err):
		response.Error = "validation_failed"
		response.Issues = collectIssues(err)
		return http.StatusBadRequest, response
	}

	response.Error = "internal_error"
	return http.StatusInternalServerError, response
}

func isBadRequest(err error) bool {
	if goerrors.IsCategory(err, goerrors.CategoryValidation) || posts.IsValidation(err) {
		return true
	}
	for _, target := range []error{
		ErrKindUnknown,
		ErrIDInvalid,
		ErrBodyInvalid,
		ErrFileRequired,
		ErrLanguageInvalid,
		validation.ErrSchemaValidation,
		posts.ErrStorageUnavailable,
		disclaimer.ErrSessionRequired,
		disclaimer.ErrTextRequired,
		disclaimer.ErrTextMismatch,
		preferences.ErrScopeRequired,
		preferences.ErrKeyRequired,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func collectIssues(err error) []issue {
	var fieldErrs ozzo.Errors
	if errors.As(err, &fieldErrs) {
		out := make([]issue, 0, len(fieldErrs))
		for field, fieldErr := range fieldErrs {
			out = append(out, issue{Field: field, Message: fieldErr.Error()})
		}
		sort.Slice(out, func(i, j int) bool { return out[i].Field < out[j].Field })
		return out
	}
	schemaIssues := validation.Issues(err)
	if len(schemaIssues) == 0 {
		return nil
	}
	out := make([]issue, 0, len(schemaIssues))
	for _, item := range schemaIssues {
		out = append(out, issue{Field: item.Location, Message: item.Message})
	}
	return out
}

func parseKind(r *http.Request) (posts.Kind, error) {
	kind, ok := posts.ParseKind(r.PathValue("kind"))
	if !ok {
		return "", ErrKindUnknown
	}
	return kind, nil
}

func parseUUID(value string) (uuid.UUID, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return uuid.Nil, ErrIDInvalid
	}
	parsed, err := uuid.Parse(trimmed)
	if err != nil {
		return uuid.Nil, ErrIDInvalid
	}
	return parsed, nil
}

func parseBoolQuery(value string, defaultValue bool) bool {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(trimmed)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func parsePage(value string) int {
	page, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || page < 1 {
		return 1
	}
	return page
}
