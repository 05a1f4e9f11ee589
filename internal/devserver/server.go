package devserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	slogctx "github.com/veqryn/slog-context"

	"github.com/dmitrijs2005/userdesk/internal/client/models"
	"github.com/dmitrijs2005/userdesk/internal/common"
)

// DefaultPerPage matches the page size of the public reqres service.
const DefaultPerPage = 6

type Server struct {
	log     *slog.Logger
	users   *UserStore
	tokens  *Tokens
	perPage int
}

func NewServer(log *slog.Logger, users *UserStore, tokens *Tokens, perPage int) *Server {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	return &Server{log: log, users: users, tokens: tokens, perPage: perPage}
}

// Router builds the HTTP routes.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.requestID)

	r.HandleFunc("/api/login", s.login).Methods(http.MethodPost)

	authed := r.PathPrefix("/api").Subrouter()
	authed.Use(s.authenticate)
	authed.HandleFunc("/logout", s.logout).Methods(http.MethodPost)
	authed.HandleFunc("/users", s.listUsers).Methods(http.MethodGet)
	authed.HandleFunc("/users/{id}", s.getUser).Methods(http.MethodGet)
	authed.HandleFunc("/users/{id}", s.updateUser).Methods(http.MethodPut)
	authed.HandleFunc("/users/{id}", s.deleteUser).Methods(http.MethodDelete)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	return r
}

// requestID tags the request context logger with a request id, reusing the
// caller's X-Request-Id when present.
func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(common.RequestIDHeaderName)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(common.RequestIDHeaderName, id)

		ctx := slogctx.NewCtx(r.Context(), s.log)
		ctx = slogctx.With(ctx, "request_id", id)

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(ctx))

		slogctx.Info(ctx, "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearer(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		email, err := s.tokens.Verify(token)
		if err != nil {
			slogctx.Warn(r.Context(), "rejected token", "error", err)
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		ctx := slogctx.With(r.Context(), "email", email)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	switch {
	case req.Email == "":
		writeError(w, http.StatusBadRequest, common.ErrMissingEmail.Error())
		return
	case req.Password == "":
		writeError(w, http.StatusBadRequest, common.ErrMissingPassword.Error())
		return
	}

	u, err := s.users.Authenticate(req.Email, []byte(req.Password))
	if err != nil {
		slogctx.Info(r.Context(), "login rejected", "email", req.Email)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	token, err := s.tokens.Issue(u.Email)
	if err != nil {
		slogctx.Error(r.Context(), "issue token", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	token, _ := bearer(r)
	s.tokens.Revoke(token)
	slogctx.Info(r.Context(), "logged out")
	writeJSON(w, http.StatusOK, struct{}{})
}

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	page, ok := queryInt(r, "page", 1)
	if !ok || page < 1 {
		writeError(w, http.StatusBadRequest, "invalid page")
		return
	}
	perPage, ok := queryInt(r, "per_page", s.perPage)
	if !ok || perPage < 1 {
		writeError(w, http.StatusBadRequest, "invalid per_page")
		return
	}

	data, total := s.users.Page(page, perPage)
	writeJSON(w, http.StatusOK, models.UserPage{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: (total + perPage - 1) / perPage,
		Data:       data,
	})
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	u, err := s.users.Get(pathID(r))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]models.User{"data": u})
}

type updateResponse struct {
	models.User
	UpdatedAt time.Time `json:"updatedAt"`
}

func (s *Server) updateUser(w http.ResponseWriter, r *http.Request) {
	var req models.UserUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	u, err := s.users.Update(pathID(r), req)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	slogctx.Info(r.Context(), "user updated", "id", u.ID)
	writeJSON(w, http.StatusOK, updateResponse{User: u, UpdatedAt: time.Now().UTC()})
}

func (s *Server) deleteUser(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	if err := s.users.Delete(id); err != nil {
		writeStoreError(w, err)
		return
	}
	slogctx.Info(r.Context(), "user deleted", "id", id)
	w.WriteHeader(http.StatusNoContent)
}

func pathID(r *http.Request) models.ID {
	return models.ID(mux.Vars(r)["id"])
}

func bearer(r *http.Request) (string, bool) {
	h := r.Header.Get(common.AuthorizationHeaderName)
	token, ok := strings.CutPrefix(h, "Bearer ")
	if !ok || token == "" {
		return "", false
	}
	return token, true
}

func queryInt(r *http.Request, name string, def int) (int, bool) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, true
	}
	n, err := strconv.Atoi(v)
	return n, err == nil
}

func writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, common.ErrorNotFound) {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	writeError(w, http.StatusInternalServerError, "internal error")
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
