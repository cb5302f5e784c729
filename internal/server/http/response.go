package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog"

	"github.com/helixir/procurement-service/internal/domain"
	"github.com/helixir/procurement-service/internal/observability"
	"github.com/helixir/procurement-service/internal/repository"
)

// Pagination and request limits.
const (
	maxPageSize        = 1000
	maxRequestBodySize = 1 << 20 // 1 MB limit for request bodies
)

// fieldError is one rejected request field.
type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type validationErrorResponse struct {
	Error  string       `json:"error"`
	Fields []fieldError `json:"fields,omitempty"`
}

// newValidator builds a validator that understands Optional fields and
// numeric columns and reports JSON field names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	v.RegisterCustomTypeFunc(optionalValue,
		domain.Optional[string]{},
		domain.Optional[int32]{},
		domain.Optional[int64]{},
		domain.Optional[pgtype.Numeric]{},
		domain.Optional[time.Time]{},
		domain.Optional[domain.PurchaseStatus]{},
	)
	v.RegisterCustomTypeFunc(numericValue, pgtype.Numeric{})

	return v
}

// optionalValue exposes the wrapped value of a set Optional and nil otherwise,
// so omitempty skips unset and null fields.
func optionalValue(field reflect.Value) any {
	if o, ok := field.Interface().(interface{ ValidationValue() any }); ok {
		return o.ValidationValue()
	}
	return nil
}

// numericValue validates numerics as float64. NULL or NaN numerics read as nil.
func numericValue(field reflect.Value) any {
	n, ok := field.Interface().(pgtype.Numeric)
	if !ok || !n.Valid || n.NaN {
		return nil
	}
	f, err := n.Float64Value()
	if err != nil || !f.Valid {
		return nil
	}
	return f.Float64
}

// decodeAndValidate reads a JSON body into dst and validates it.
// It writes the error response and returns false on failure.
func (s *Server) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	defer r.Body.Close()
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBodySize))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return false
	}
	if err := json.Unmarshal(body, dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON request body")
		return false
	}

	if err := s.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return false
		}
		resp := validationErrorResponse{Error: "validation failed"}
		for _, fe := range verrs {
			resp.Fields = append(resp.Fields, fieldError{Field: fe.Field(), Message: describeRule(fe)})
		}
		writeJSON(w, http.StatusBadRequest, resp)
		return false
	}
	return true
}

func describeRule(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	case "min":
		return "must have at least " + fe.Param() + " characters"
	case "max":
		return "must have at most " + fe.Param() + " characters"
	default:
		return "failed " + fe.Tag() + " rule"
	}
}

// parseID reads a positive integer path parameter.
func parseID(w http.ResponseWriter, r *http.Request, param string) (int64, bool) {
	raw := chi.URLParam(r, param)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("%s must be a positive integer", param))
		return 0, false
	}
	return id, true
}

// parsePage reads the optional limit and offset query parameters. Without a
// limit every row from offset on is returned.
func parsePage(w http.ResponseWriter, r *http.Request) (repository.Page, bool) {
	var page repository.Page
	q := r.URL.Query()

	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > maxPageSize {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("limit must be between 1 and %d", maxPageSize))
			return page, false
		}
		page.Limit = limit
	}
	if raw := q.Get("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil || offset < 0 {
			writeError(w, http.StatusBadRequest, "offset must be a non-negative integer")
			return page, false
		}
		page.Offset = offset
	}
	return page, true
}

// writeDomainError maps a service error to a status code. Database faults on
// writes are reported as 400 and on reads as 500; their cause is logged, never
// returned.
func (s *Server) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	logger := observability.WithRequestContext(r.Context(), s.logger)
	write := r.Method != http.MethodGet

	switch domain.ErrorKind(err) {
	case domain.KindNotFound:
		writeError(w, http.StatusNotFound, err.Error())
	case domain.KindDuplicate:
		writeError(w, http.StatusConflict, err.Error())
	case domain.KindForeignKey:
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case domain.KindInvalidInput:
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			writeJSON(w, http.StatusBadRequest, validationErrorResponse{
				Error:  "validation failed",
				Fields: []fieldError{{Field: verr.Field, Message: verr.Message}},
			})
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
	case domain.KindPoolExhausted:
		logDBError(logger, err)
		writeError(w, http.StatusServiceUnavailable, "service temporarily unavailable")
	case domain.KindDatabase:
		logDBError(logger, err)
		var dbErr *domain.DatabaseError
		message := "database error"
		if errors.As(err, &dbErr) {
			message = dbErr.Detail
		}
		if write {
			writeError(w, http.StatusBadRequest, message)
			return
		}
		writeError(w, http.StatusInternalServerError, message)
	default:
		logger.Error().Err(err).Msg("unexpected error")
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func logDBError(logger zerolog.Logger, err error) {
	event := logger.Error().Err(err)
	var dbErr *domain.DatabaseError
	if errors.As(err, &dbErr) && dbErr.Cause != nil {
		event = event.AnErr("cause", dbErr.Cause)
	}
	event.Msg("database error")
}
