package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"string-analyzer/application/commands"
	"string-analyzer/application/commands/bus"
	"string-analyzer/application/queries"
	querybus "string-analyzer/application/queries/bus"
	"string-analyzer/domain/core/specifications"
	pkgerrors "string-analyzer/pkg/errors"
	"string-analyzer/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// StringHandler handles the /strings resource
type StringHandler struct {
	commandBus   *bus.CommandBus
	queryBus     *querybus.QueryBus
	errorHandler *pkgerrors.ErrorHandler
	maxBodyBytes int64
	logger       *zap.Logger
}

// NewStringHandler creates a new string handler
func NewStringHandler(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	errorHandler *pkgerrors.ErrorHandler,
	maxBodyBytes int64,
	logger *zap.Logger,
) *StringHandler {
	return &StringHandler{
		commandBus:   commandBus,
		queryBus:     queryBus,
		errorHandler: errorHandler,
		maxBodyBytes: maxBodyBytes,
		logger:       logger,
	}
}

// CreateStringRequest represents the request body for analyzing a string.
// Value is a pointer so a missing field can be told apart from "".
type CreateStringRequest struct {
	Value *string `json:"value" validate:"required"`
}

// CreateString handles POST /strings
func (h *StringHandler) CreateString(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)

	var req CreateStringRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.errorHandler.Handle(w, r, decodeError(err))
		return
	}

	if err := utils.ValidateStruct(req); err != nil {
		h.errorHandler.Handle(w, r, pkgerrors.NewValidationError(err.Error()))
		return
	}

	cmd := commands.CreateStringCommand{Value: *req.Value}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	// Stored values are trimmed, so the record is read back by its trimmed form.
	result, err := h.queryBus.Ask(r.Context(), queries.GetStringQuery{Value: strings.TrimSpace(*req.Value)})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusCreated, result)
}

func decodeError(err error) error {
	var typeErr *json.UnmarshalTypeError
	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &typeErr):
		field := typeErr.Field
		if field == "" {
			return pkgerrors.NewValidationError("Invalid request body: expected a JSON object")
		}
		return pkgerrors.NewUnprocessableError(fmt.Sprintf("Invalid data type for %q: must be a string", field))
	case errors.As(err, &maxErr):
		return pkgerrors.NewValidationError(fmt.Sprintf("Request body exceeds %d bytes", maxErr.Limit))
	case errors.Is(err, io.EOF):
		return pkgerrors.NewValidationError("Invalid request body: body is empty")
	default:
		return pkgerrors.NewValidationError("Invalid request body: malformed JSON")
	}
}

// GetString handles GET /strings/{value}
func (h *StringHandler) GetString(w http.ResponseWriter, r *http.Request) {
	value, err := pathValue(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	result, err := h.queryBus.Ask(r.Context(), queries.GetStringQuery{Value: value})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusOK, result)
}

// ListStrings handles GET /strings
func (h *StringHandler) ListStrings(w http.ResponseWriter, r *http.Request) {
	query, err := parseListQuery(r.URL.Query())
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	result, err := h.queryBus.Ask(r.Context(), query)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusOK, result)
}

// FilterByNaturalLanguage handles GET /strings/filter-by-natural-language
func (h *StringHandler) FilterByNaturalLanguage(w http.ResponseWriter, r *http.Request) {
	query := queries.FilterByNaturalLanguageQuery{Query: r.URL.Query().Get("query")}

	result, err := h.queryBus.Ask(r.Context(), query)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusOK, result)
}

// DeleteString handles DELETE /strings/{value}
func (h *StringHandler) DeleteString(w http.ResponseWriter, r *http.Request) {
	value, err := pathValue(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	if err := h.commandBus.Send(r.Context(), commands.DeleteStringCommand{Value: value}); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// pathValue returns the decoded {value} segment. chi matches on the escaped
// path when one is present, and the parameter is then still escaped.
func pathValue(r *http.Request) (string, error) {
	value := chi.URLParam(r, "value")
	if r.URL.RawPath == "" {
		return value, nil
	}
	decoded, err := url.PathUnescape(value)
	if err != nil {
		return "", pkgerrors.NewValidationError("Invalid string value in path")
	}
	return decoded, nil
}

var listParams = []string{"is_palindrome", "min_length", "max_length", "word_count", "contains_character"}

func parseListQuery(values url.Values) (queries.ListStringsQuery, error) {
	var query queries.ListStringsQuery
	invalid := func(name string) error {
		return pkgerrors.NewValidationError("Invalid query parameter values or types").
			WithDetails(map[string]interface{}{"parameter": name})
	}

	for _, name := range listParams {
		if _, ok := values[name]; ok {
			query.Supplied = true
			break
		}
	}

	if raw, ok := lookup(values, "is_palindrome"); ok {
		b, err := parseBool(raw)
		if err != nil {
			return query, invalid("is_palindrome")
		}
		query.Filter.IsPalindrome = specifications.Bool(b)
	}

	for _, p := range []struct {
		name string
		dst  **int
	}{
		{"min_length", &query.Filter.MinLength},
		{"max_length", &query.Filter.MaxLength},
		{"word_count", &query.Filter.WordCount},
	} {
		raw, ok := lookup(values, p.name)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return query, invalid(p.name)
		}
		*p.dst = specifications.Int(n)
	}

	if raw, ok := lookup(values, "contains_character"); ok {
		query.Filter.ContainsCharacter = specifications.String(raw)
	}

	return query, nil
}

func lookup(values url.Values, name string) (string, bool) {
	vs, ok := values[name]
	if !ok || len(vs) == 0 {
		return "", false
	}
	return vs[0], true
}

func parseBool(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "1", "yes", "on", "t":
		return true, nil
	case "false", "0", "no", "off", "f":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean %q", raw)
}

func (h *StringHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}
