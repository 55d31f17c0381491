package httphandler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/dispulse/sitecontent/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"Internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// statusForKind maps an error kind to its HTTP status.
func statusForKind(kind model.ErrKind) int {
	switch kind {
	case model.KindValidation:
		return http.StatusBadRequest
	case model.KindUnauthorized:
		return http.StatusUnauthorized
	case model.KindNotFound:
		return http.StatusNotFound
	case model.KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// writeDomainError writes err using its kind and caller-safe message.
// Internal errors are logged with their cause and reported generically.
func (h *Handler) writeDomainError(w http.ResponseWriter, err error) {
	var domainErr *model.Error
	if !errors.As(err, &domainErr) {
		domainErr = model.ErrInternal(err)
	}

	if domainErr.Kind == model.KindInternal {
		h.logger.Error("request failed", "error", err)
	}

	writeError(w, statusForKind(domainErr.Kind), domainErr.Message)
}

var errEmptyBody = errors.New("empty body")

// decodeJSON decodes the request body into v. An empty body is an error.
func decodeJSON(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return errEmptyBody
	}
	return err
}

// writeDecodeError reports a body that could not be decoded. Oversized
// bodies get 413; anything else is a 400.
func (h *Handler) writeDecodeError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeError(w, http.StatusRequestEntityTooLarge, "Request body too large")
		return
	}
	h.logger.Debug("invalid request body", "error", err)
	writeError(w, http.StatusBadRequest, "Invalid JSON body")
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error string `json:"error"`
}

// LoginRequest is the JSON body for POST /api/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UserResponse is the public view of an operator account.
type UserResponse struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// LoginResponse is returned by a successful login.
type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// ClaimsResponse is the JSON representation of verified token claims.
type ClaimsResponse struct {
	Sub   string `json:"sub"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
	Iat   int64  `json:"iat"`
	Exp   int64  `json:"exp"`
}

// MeResponse wraps the caller's claims.
type MeResponse struct {
	User ClaimsResponse `json:"user"`
}

// ContentResponse is the JSON representation of the whole content set.
type ContentResponse struct {
	Entries model.ContentMap `json:"entries"`
}

// SeedRequest is the JSON body for POST /api/content/seed. Entries is kept
// raw so that non-object and non-string payloads can be rejected precisely.
type SeedRequest struct {
	Entries json.RawMessage `json:"entries"`
}

// SeedResponse reports how many keys were submitted.
type SeedResponse struct {
	Inserted int `json:"inserted"`
}

// PutRequest is the JSON body for PUT /api/content/{key}.
type PutRequest struct {
	Value json.RawMessage `json:"value"`
}

// PutResponse echoes the stored entry.
type PutResponse struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// HealthResponse is the JSON representation of the health check endpoint.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

func toUserResponse(u model.User) UserResponse {
	return UserResponse{Name: u.Name, Email: u.Email, Role: u.Role}
}

func toClaimsResponse(c model.Claims) ClaimsResponse {
	resp := ClaimsResponse{
		Sub:   c.Subject,
		Name:  c.Name,
		Email: c.Email,
		Role:  c.Role,
	}
	if !c.IssuedAt.IsZero() {
		resp.Iat = c.IssuedAt.Unix()
	}
	if !c.ExpiresAt.IsZero() {
		resp.Exp = c.ExpiresAt.Unix()
	}
	return resp
}
