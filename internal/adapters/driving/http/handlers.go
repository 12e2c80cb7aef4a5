package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/freelancer-hub/internal/core/domain"
)

// ErrorResponse represents an API error response
// @Description API error response
type ErrorResponse struct {
	Error string `json:"error" example:"invalid request body"`
}

// StatusResponse represents a simple status response
// @Description Simple status response
type StatusResponse struct {
	Status string `json:"status" example:"ok"`
}

// LoginResponse is returned by a successful sign-in. The caller sends
// access_token as bearer on later requests; the server keeps no copy.
// @Description Signed-in user and tokens
type LoginResponse struct {
	AccessToken  string          `json:"access_token"`
	RefreshToken string          `json:"refresh_token,omitempty"`
	TokenType    string          `json:"token_type" example:"bearer"`
	User         domain.AuthUser `json:"user"`
	ExpiresAt    string          `json:"expires_at,omitempty" example:"2024-01-15T12:00:00Z"`
}

// Health endpoints

// handleHealth godoc
// @Summary      Health check
// @Tags         Health
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Router       /health [get]
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReady godoc
// @Summary      Readiness check
// @Description  Ready once provider initialization has settled, configured or not
// @Tags         Health
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Failure      503  {object}  StatusResponse
// @Router       /ready [get]
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if !s.providerService.Status().IsSettled() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "initializing"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": s.version})
}

// Database settings endpoints

// handleListProviders godoc
// @Summary      List database providers
// @Tags         Database
// @Produce      json
// @Success      200  {array}  domain.ProviderInfo
// @Router       /providers [get]
func (s *Server) handleListProviders(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.providerService.Providers())
}

// handleDatabaseStatus godoc
// @Summary      Database connection status
// @Tags         Database
// @Produce      json
// @Success      200  {object}  domain.ConnectionStatus
// @Router       /database/status [get]
func (s *Server) handleDatabaseStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.providerService.Status())
}

// handleDatabaseHealth godoc
// @Summary      Last background health check
// @Tags         Database
// @Produce      json
// @Success      200  {object}  domain.ProviderHealth
// @Failure      404  {object}  ErrorResponse
// @Router       /database/health [get]
func (s *Server) handleDatabaseHealth(w http.ResponseWriter, r *http.Request) {
	if s.healthReporter == nil {
		writeError(w, http.StatusNotFound, "health monitor disabled")
		return
	}
	health, ok := s.healthReporter.LastHealth()
	if !ok {
		writeError(w, http.StatusNotFound, "no health check has run")
		return
	}
	writeJSON(w, http.StatusOK, health)
}

// handleSwitchProvider godoc
// @Summary      Switch database provider
// @Description  Validates, connects and persists the new provider. The previous connection is dropped even on failure.
// @Tags         Database
// @Accept       json
// @Produce      json
// @Param        request  body      domain.ProviderCredentials  true  "Provider credentials"
// @Success      200      {object}  domain.ConnectionStatus
// @Failure      400      {object}  ErrorResponse
// @Failure      409      {object}  ErrorResponse  "Another switch is in progress"
// @Failure      501      {object}  ErrorResponse  "Provider not yet supported"
// @Router       /database/provider [put]
func (s *Server) handleSwitchProvider(w http.ResponseWriter, r *http.Request) {
	var creds domain.ProviderCredentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.providerService.Switch(r.Context(), creds); err != nil {
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, s.providerService.Status())
}

// handleResetProvider godoc
// @Summary      Reset database provider
// @Description  Clears stored credentials and disconnects
// @Tags         Database
// @Success      204
// @Router       /database/provider [delete]
func (s *Server) handleResetProvider(w http.ResponseWriter, r *http.Request) {
	if err := s.providerService.Reset(r.Context()); err != nil {
		s.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleTestConnection godoc
// @Summary      Test database credentials
// @Description  Connects with the given credentials without saving them
// @Tags         Database
// @Accept       json
// @Produce      json
// @Param        request  body      domain.ProviderCredentials  true  "Provider credentials"
// @Success      200      {object}  driving.ConnectionTestResult
// @Router       /database/test [post]
func (s *Server) handleTestConnection(w http.ResponseWriter, r *http.Request) {
	var creds domain.ProviderCredentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := s.providerService.TestConnection(r.Context(), creds)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Auth endpoints

// handleLogin godoc
// @Summary      Sign in
// @Description  Authenticates against the active database provider
// @Tags         Authentication
// @Accept       json
// @Produce      json
// @Param        request  body      domain.SignInRequest  true  "Login credentials"
// @Success      200      {object}  LoginResponse
// @Failure      400      {object}  ErrorResponse  "Invalid request body"
// @Failure      401      {object}  ErrorResponse  "Invalid credentials"
// @Failure      503      {object}  ErrorResponse  "No provider configured"
// @Router       /auth/login [post]
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req domain.SignInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := s.authService.Login(r.Context(), req)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	resp := LoginResponse{
		AccessToken:  session.AccessToken,
		RefreshToken: session.RefreshToken,
		TokenType:    session.TokenType,
		User:         session.User,
	}
	if resp.TokenType == "" {
		resp.TokenType = "bearer"
	}
	if !session.ExpiresAt.IsZero() {
		resp.ExpiresAt = session.ExpiresAt.UTC().Format(time.RFC3339)
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleLogout godoc
// @Summary      Sign out
// @Tags         Authentication
// @Success      204
// @Failure      401  {object}  ErrorResponse  "Missing or invalid token"
// @Router       /auth/logout [post]
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	token, _ := domain.AccessTokenFromContext(r.Context())
	if err := s.authService.Logout(r.Context(), token); err != nil {
		s.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleGetMe godoc
// @Summary      Current user
// @Tags         Authentication
// @Produce      json
// @Success      200  {object}  domain.AuthUser
// @Failure      401  {object}  ErrorResponse  "Not signed in"
// @Router       /auth/me [get]
func (s *Server) handleGetMe(w http.ResponseWriter, r *http.Request) {
	user := AuthUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "not signed in")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// Record endpoints

// handleListRecords godoc
// @Summary      List records
// @Description  Filters use column=op.value (eq, neq, gt, lt, gte, lte); a bare value means eq
// @Tags         Records
// @Produce      json
// @Param        table   path   string  true   "Table name"
// @Param        order   query  string  false  "column.asc or column.desc"
// @Param        limit   query  int     false  "Max rows"
// @Param        offset  query  int     false  "Rows to skip"
// @Success      200     {array}  domain.Record
// @Router       /tables/{table}/records [get]
func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	opts, err := parseQueryOptions(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	records, err := s.recordService.List(r.Context(), r.PathValue("table"), opts)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	if records == nil {
		records = []domain.Record{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleCreateRecord(w http.ResponseWriter, r *http.Request) {
	var data domain.Record
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	record, err := s.recordService.Create(r.Context(), r.PathValue("table"), data)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, record)
}

func (s *Server) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	record, err := s.recordService.Get(r.Context(), r.PathValue("table"), r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (s *Server) handleUpdateRecord(w http.ResponseWriter, r *http.Request) {
	var data domain.Record
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	record, err := s.recordService.Update(r.Context(), r.PathValue("table"), r.PathValue("id"), data)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	if err := s.recordService.Delete(r.Context(), r.PathValue("table"), r.PathValue("id")); err != nil {
		s.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// parseQueryOptions turns query parameters into QueryOptions.
// order, limit and offset are reserved; every other key is a filter.
func parseQueryOptions(q url.Values) (domain.QueryOptions, error) {
	var opts domain.QueryOptions

	for key, values := range q {
		switch key {
		case "limit", "offset":
			n, err := strconv.Atoi(q.Get(key))
			if err != nil || n < 0 {
				return opts, errors.New(key + " must be a non-negative integer")
			}
			if key == "limit" {
				opts.Limit = n
			} else {
				opts.Offset = n
			}
		case "order":
			field, dir, _ := strings.Cut(q.Get(key), ".")
			if field == "" || (dir != "" && dir != "asc" && dir != "desc") {
				return opts, errors.New("order must be column.asc or column.desc")
			}
			opts.OrderBy = &domain.OrderBy{Field: field, Ascending: dir != "desc"}
		default:
			for _, v := range values {
				opts.Where = append(opts.Where, parseFilter(key, v))
			}
		}
	}
	return opts, nil
}

func parseFilter(field, raw string) domain.Filter {
	if op, value, ok := strings.Cut(raw, "."); ok && domain.FilterOp(op).IsValid() {
		return domain.Filter{Field: field, Op: domain.FilterOp(op), Value: value}
	}
	return domain.Filter{Field: field, Op: domain.FilterEq, Value: raw}
}

// writeServiceError maps domain errors to HTTP status codes
func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrMissingCredentials),
		errors.Is(err, domain.ErrInvalidProvider),
		errors.Is(err, domain.ErrMalformedQuery):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, domain.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrSwitchInProgress):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrProviderNotSupported):
		status = http.StatusNotImplemented
	case errors.Is(err, domain.ErrNotConfigured),
		errors.Is(err, domain.ErrServiceUnavailable):
		status = http.StatusServiceUnavailable
	}

	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
		writeError(w, status, "internal server error")
		return
	}
	writeError(w, status, err.Error())
}

// Helper functions

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
