package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/tripmesh/auth-service/internal/auth"
	"github.com/tripmesh/auth-service/internal/http/respond"
	"github.com/tripmesh/auth-service/internal/middleware"
	"github.com/tripmesh/auth-service/internal/models/dto"
	"github.com/tripmesh/auth-service/internal/service"
)

const dateOfBirthLayout = "2006-01-02"

// AuthHandler exposes the auth service over HTTP.
type AuthHandler struct {
	svc    *service.AuthService
	tokens *auth.TokenManager
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(svc *service.AuthService, tokens *auth.TokenManager) *AuthHandler {
	return &AuthHandler{svc: svc, tokens: tokens}
}

// Register attaches auth routes to the mux. Operations addressed by account
// ID resolve the ID from the bearer token, never from the request body.
func (h *AuthHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/auth/register", h.handleRegister)
	mux.HandleFunc("/api/auth/login", h.handleLogin)
	mux.HandleFunc("/api/auth/logout", middleware.RequireAuth(h.tokens, h.handleLogout))
	mux.HandleFunc("/api/auth/2fa/enable", middleware.RequireAuth(h.tokens, h.handleEnable2FA))
	mux.HandleFunc("/api/auth/2fa/disable", middleware.RequireAuth(h.tokens, h.handleDisable2FA))
	mux.HandleFunc("/api/auth/face/register", middleware.RequireAuth(h.tokens, h.handleRegisterFace))
	mux.HandleFunc("/api/auth/validate", h.handleValidate)
}

func (h *AuthHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req dto.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	in, err := registerInputFrom(req)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	session, err := h.svc.Register(r.Context(), in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.JSON(w, http.StatusCreated, "registration successful", session)
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if strings.TrimSpace(req.Email) == "" {
		respond.Error(w, http.StatusBadRequest, "email is required")
		return
	}

	session, err := h.svc.Login(r.Context(), service.LoginInput{
		Email:              strings.TrimSpace(req.Email),
		Password:           req.Password,
		TwoFactorCode:      strings.TrimSpace(req.TwoFactorCode),
		UseFaceRecognition: req.UseFaceRecognition,
		FaceData:           req.FaceData,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, "login successful", session)
}

func (h *AuthHandler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	userID, _ := middleware.UserID(r.Context())
	h.svc.Logout(r.Context(), userID)
	respond.JSON(w, http.StatusOK, "logout successful", nil)
}

func (h *AuthHandler) handleEnable2FA(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	userID, _ := middleware.UserID(r.Context())
	enrollment, err := h.svc.Enable2FA(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, "2FA enabled successfully", dto.TwoFactorResponse{
		Secret:     enrollment.Secret,
		OtpauthURL: enrollment.OtpauthURL,
	})
}

func (h *AuthHandler) handleDisable2FA(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	userID, _ := middleware.UserID(r.Context())
	if err := h.svc.Disable2FA(r.Context(), userID); err != nil {
		writeServiceError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, "2FA disabled successfully", nil)
}

func (h *AuthHandler) handleRegisterFace(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req dto.FaceRegistrationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if strings.TrimSpace(req.FaceEncodingData) == "" {
		respond.Error(w, http.StatusBadRequest, "faceEncodingData is required")
		return
	}
	userID, _ := middleware.UserID(r.Context())
	if err := h.svc.RegisterFace(r.Context(), userID, req.FaceEncodingData); err != nil {
		writeServiceError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, "face registered successfully", nil)
}

func (h *AuthHandler) handleValidate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	// Same header contract as RequireAuth: a token without the Bearer
	// prefix does not validate.
	valid := false
	if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
		token := strings.TrimPrefix(header, "Bearer ")
		valid = token != "" && h.svc.ValidateToken(token)
	}
	respond.JSON(w, http.StatusOK, "token validated", dto.ValidateResponse{Valid: valid})
}

func registerInputFrom(req dto.RegisterRequest) (service.RegisterInput, error) {
	email := strings.TrimSpace(req.Email)
	username := strings.TrimSpace(req.Username)
	firstName := strings.TrimSpace(req.FirstName)
	lastName := strings.TrimSpace(req.LastName)

	if email == "" || !strings.Contains(email, "@") {
		return service.RegisterInput{}, errors.New("a valid email is required")
	}
	if len(req.Password) < 8 || !utf8.ValidString(req.Password) {
		return service.RegisterInput{}, errors.New("password must be at least 8 characters")
	}
	if firstName == "" || lastName == "" {
		return service.RegisterInput{}, errors.New("firstName and lastName are required")
	}
	if len(username) < 3 || len(username) > 50 {
		return service.RegisterInput{}, errors.New("username must be between 3 and 50 characters")
	}
	dob, err := time.Parse(dateOfBirthLayout, strings.TrimSpace(req.DateOfBirth))
	if err != nil {
		return service.RegisterInput{}, fmt.Errorf("dateOfBirth must be in %s format", dateOfBirthLayout)
	}

	return service.RegisterInput{
		Email:            email,
		Password:         req.Password,
		FirstName:        firstName,
		LastName:         lastName,
		Username:         username,
		DateOfBirth:      dob,
		Gender:           strings.ToUpper(strings.TrimSpace(req.Gender)),
		FaceEncodingData: req.FaceEncodingData,
	}, nil
}

// writeServiceError maps the service's rejection taxonomy onto HTTP statuses.
// Anything outside the taxonomy is an infrastructure failure: logged with
// full context, surfaced without internal detail.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrDuplicateEmail), errors.Is(err, service.ErrDuplicateUsername):
		respond.Error(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrTwoFactorRequired),
		errors.Is(err, service.ErrTwoFactorInvalid),
		errors.Is(err, service.ErrFaceVerificationFailed):
		respond.Error(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrAccountDisabled):
		respond.Error(w, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrFaceQualityRejected):
		respond.Error(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, service.ErrNotFound):
		respond.Error(w, http.StatusNotFound, err.Error())
	default:
		log.Printf("auth handler: internal error: %v", err)
		respond.Error(w, http.StatusInternalServerError, "internal server error")
	}
}
