// handlers/auth.go
package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"p9e.in/aquaentry/middleware"
	"p9e.in/aquaentry/models"
)

const minPasswordLength = 6

type registerReq struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResp struct {
	Token string      `json:"token"`
	User  userPayload `json:"user"`
}

type userPayload struct {
	ID            uuid.UUID `json:"id"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	VisitCount    int       `json:"visit_count"`
	LastLoginDate string    `json:"last_login_date"`
	LastLoginTime string    `json:"last_login_time"`
}

func payloadFor(u *models.User) userPayload {
	return userPayload{
		ID:            u.ID,
		Username:      u.Username,
		Email:         u.Email,
		VisitCount:    u.VisitCount,
		LastLoginDate: u.LastLoginDate,
		LastLoginTime: u.LastLoginTime,
	}
}

func (req registerReq) validate() error {
	switch {
	case len(req.Username) < 2 || len(req.Username) > 20:
		return errors.New("username must be between 2 and 20 characters")
	case req.Email == "":
		return errors.New("email is required")
	case len(req.Password) < minPasswordLength:
		return errors.New("password must be at least 6 characters")
	case req.Password != req.ConfirmPassword:
		return errors.New("passwords must match")
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return errors.New("invalid email address")
	}
	return nil
}

// Register creates an account.
//
//	@Summary	Register an account
//	@Tags		auth
//	@Accept		json
//	@Success	201
//	@Failure	409	{string}	string	"username or email taken"
//	@Router		/register [post]
func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var req registerReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if err := req.validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	nameTaken, emailTaken, err := h.Users.Taken(r.Context(), req.Username, req.Email)
	if err != nil {
		http.Error(w, "db error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if nameTaken {
		http.Error(w, "That username is taken. Please choose a different one.", http.StatusConflict)
		return
	}
	if emailTaken {
		http.Error(w, "That email is taken. Please choose a different one.", http.StatusConflict)
		return
	}

	// hash pw
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		http.Error(w, "error hashing password", http.StatusInternalServerError)
		return
	}
	u := models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
	}
	if err := h.Users.Create(r.Context(), &u); err != nil {
		if errors.Is(err, ErrDuplicate) {
			http.Error(w, "That username or email is taken. Please choose a different one.", http.StatusConflict)
		} else {
			http.Error(w, "db error: "+err.Error(), http.StatusInternalServerError)
		}
		return
	}
	log.Printf("[AUTH] registered user=%s", u.Username)
	w.WriteHeader(http.StatusCreated)
}

// Login checks the credentials, records the visit and returns a token.
//
//	@Summary	Log in
//	@Tags		auth
//	@Accept		json
//	@Produce	json
//	@Success	200	{object}	loginResp
//	@Failure	401	{string}	string	"invalid credentials"
//	@Router		/login [post]
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	u, err := h.Users.ByUsername(r.Context(), strings.TrimSpace(req.Username))
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			log.Printf("[AUTH] lookup %q: %v", req.Username, err)
		}
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	u.RecordLogin(h.now())
	if err := h.Users.Save(r.Context(), u); err != nil {
		http.Error(w, "db error: "+err.Error(), http.StatusInternalServerError)
		return
	}

	token, err := middleware.GenerateToken(u.ID.String(), u.Username)
	if err != nil {
		http.Error(w, "couldn't create token", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, loginResp{Token: token, User: payloadFor(u)})
}

// Profile returns the logged-in account.
func (h *Handlers) Profile(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(middleware.GetUserID(r))
	if err != nil {
		http.Error(w, "not authenticated", http.StatusUnauthorized)
		return
	}
	u, err := h.Users.ByID(r.Context(), id)
	if err != nil {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, payloadFor(u))
}
