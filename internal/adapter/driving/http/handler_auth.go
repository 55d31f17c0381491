package httphandler

import (
	"net/http"

	"github.com/dispulse/sitecontent/internal/domain/model"
)

// Login exchanges email and password for a bearer token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeDecodeError(w, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Email and password required")
		return
	}

	token, user, err := h.auth.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if model.KindOf(err) == model.KindUnauthorized {
			h.metrics.IncLogin("failure")
			h.logger.Warn("login failed", "ip", clientIP(r), "request_id", requestIDFrom(r.Context()))
		} else {
			h.metrics.IncLogin("error")
		}
		h.writeDomainError(w, err)
		return
	}

	h.metrics.IncLogin("success")
	writeJSON(w, http.StatusOK, LoginResponse{
		Token: token,
		User:  toUserResponse(user),
	})
}

// Me returns the claims of the caller's verified token.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	writeJSON(w, http.StatusOK, MeResponse{User: toClaimsResponse(claims)})
}
