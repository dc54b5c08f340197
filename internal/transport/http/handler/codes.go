package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/moodgarden/verify-api/internal/application/auth"
	"github.com/moodgarden/verify-api/internal/domain"
	"github.com/moodgarden/verify-api/internal/pkg/validate"
)

// flow holds the user-facing messages of one code purpose.
type flow struct {
	purpose    domain.Purpose
	sent       string
	sendFailed string
	verified   string
	notFound   string
	expired    string
	mismatch   string
}

var (
	verificationFlow = flow{
		purpose:    domain.PurposeVerification,
		sent:       "Verification code sent successfully",
		sendFailed: "Failed to send verification code",
		verified:   "Email verified successfully",
		notFound:   "No verification code found for this email",
		expired:    "Verification code has expired",
		mismatch:   "Invalid verification code",
	}
	passwordResetFlow = flow{
		purpose:    domain.PurposePasswordReset,
		sent:       "Password reset code sent!",
		sendFailed: "Failed to send reset email",
		verified:   "Password reset verification successful!",
		notFound:   "No reset code found for this email",
		expired:    "Reset code expired",
		mismatch:   "Invalid reset code",
	}
)

// CodeHandler serves the e-mail verification and password reset endpoints.
type CodeHandler struct {
	svc auth.Service
}

func NewCodeHandler(svc auth.Service) *CodeHandler {
	return &CodeHandler{svc: svc}
}

func (h *CodeHandler) SendVerificationCode(w http.ResponseWriter, r *http.Request) {
	h.send(w, r, verificationFlow)
}

func (h *CodeHandler) VerifyCode(w http.ResponseWriter, r *http.Request) {
	h.verify(w, r, verificationFlow)
}

func (h *CodeHandler) SendPasswordReset(w http.ResponseWriter, r *http.Request) {
	h.send(w, r, passwordResetFlow)
}

func (h *CodeHandler) VerifyPasswordReset(w http.ResponseWriter, r *http.Request) {
	h.verify(w, r, passwordResetFlow)
}

func (h *CodeHandler) send(w http.ResponseWriter, r *http.Request, f flow) {
	var req domain.SendCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		msg := "Email is required"
		var errs validate.Errors
		if errors.As(err, &errs) && errs.Has("email", "email") {
			msg = "Invalid email format"
		}
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	if err := h.svc.RequestCode(r.Context(), f.purpose, req.Email); err != nil {
		sendError(w, f, err)
		return
	}
	writeOK(w, f.sent)
}

func (h *CodeHandler) verify(w http.ResponseWriter, r *http.Request, f flow) {
	var req domain.VerifyCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Email and code are required")
		return
	}
	if err := h.svc.VerifyCode(r.Context(), f.purpose, req.Email, req.Code); err != nil {
		verifyError(w, f, err)
		return
	}
	writeOK(w, f.verified)
}

// sendError reports the delivery cause to the client; other failures stay opaque.
func sendError(w http.ResponseWriter, f flow, err error) {
	env := MessageEnvelope{Message: f.sendFailed}
	if errors.Is(err, domain.ErrDelivery) {
		env.Error = err.Error()
	}
	writeJSON(w, http.StatusInternalServerError, env)
}

func verifyError(w http.ResponseWriter, f flow, err error) {
	switch {
	case errors.Is(err, domain.ErrCodeNotFound):
		writeError(w, http.StatusBadRequest, f.notFound)
	case errors.Is(err, domain.ErrCodeExpired):
		writeError(w, http.StatusBadRequest, f.expired)
	case errors.Is(err, domain.ErrCodeMismatch):
		writeError(w, http.StatusBadRequest, f.mismatch)
	default:
		writeError(w, http.StatusInternalServerError, "Verification failed")
	}
}
