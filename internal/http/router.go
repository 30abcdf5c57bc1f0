package httpx

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"log/slog"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MahmoudOsama9/Fullstack-TaskMaster/internal/domain"
	"github.com/MahmoudOsama9/Fullstack-TaskMaster/internal/service/auth"
	"github.com/MahmoudOsama9/Fullstack-TaskMaster/internal/service/chat"
	"github.com/MahmoudOsama9/Fullstack-TaskMaster/internal/service/invitation"
	"github.com/MahmoudOsama9/Fullstack-TaskMaster/internal/service/project"
	"github.com/MahmoudOsama9/Fullstack-TaskMaster/internal/service/task"
	"github.com/MahmoudOsama9/Fullstack-TaskMaster/internal/ws"
)

// Router wires HTTP endpoints to services.
type Router struct {
	mux        *http.ServeMux
	logger     *slog.Logger
	auth       auth.Service
	project    project.Service
	task       task.Service
	invitation invitation.Service
	chat       chat.Service
	hub        *ws.Hub
	upgrader   websocket.Upgrader
	limiter    RateLimiter
	dbHealth   func(context.Context) error

	metricsOnce        sync.Once
	metricsInitialized bool
	requestTotal       *prometheus.CounterVec
	requestLatency     *prometheus.HistogramVec
	rateLimitHits      *prometheus.CounterVec
}

const (
	rateWindowDefault  = time.Minute
	rateWindowRealtime = 30 * time.Second
	rateLimitSignup    = 5
	rateLimitLogin     = 12
	rateLimitUserWrite = 60
	rateLimitUserRead  = 120
	rateLimitWebsocket = 30
	healthCheckTimeout = 2 * time.Second
)

// NewRouter assembles routes with dependencies.
func NewRouter(logger *slog.Logger, authSvc auth.Service, projectSvc project.Service, taskSvc task.Service, invitationSvc invitation.Service, chatSvc chat.Service, hub *ws.Hub, limiter RateLimiter, dbHealth func(context.Context) error) *Router {
	r := &Router{
		mux:        http.NewServeMux(),
		logger:     logger,
		auth:       authSvc,
		project:    projectSvc,
		task:       taskSvc,
		invitation: invitationSvc,
		chat:       chatSvc,
		hub:        hub,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		limiter:  limiter,
		dbHealth: dbHealth,
	}
	if r.limiter == nil {
		r.limiter = NewMemoryRateLimiter()
	}
	r.initMetrics()
	r.register()
	return r
}

// ServeHTTP delegates to underlying mux.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// Close releases background resources.
func (r *Router) Close() {
	if r.limiter != nil {
		r.limiter.Close()
	}
}

func (r *Router) register() {
	r.mux.HandleFunc("/healthz", r.audit("/healthz", r.handleHealthz))
	r.mux.Handle("/metrics", promhttp.Handler())
	r.mux.HandleFunc("/auth/signup", r.audit("/auth/signup", r.withRateLimit("/auth/signup", rateLimitSignup, rateWindowDefault, rateLimitKeyIP, r.handleSignup)))
	r.mux.HandleFunc("/auth/login", r.audit("/auth/login", r.withRateLimit("/auth/login", rateLimitLogin, rateWindowDefault, rateLimitKeyIP, r.handleLogin)))
	r.mux.HandleFunc("/projects", r.audit("/projects", r.handlerAuthRate("/projects", rateLimitUserWrite, rateWindowDefault, r.handleProjects)))
	r.mux.HandleFunc("/projects/", r.audit("/projects/{id}", r.handlerAuthRate("/projects/{id}", rateLimitUserWrite, rateWindowDefault, r.handleProjectSubroutes)))
	r.mux.HandleFunc("/tasks/", r.audit("/tasks/{id}", r.handlerAuthRate("/tasks/{id}", rateLimitUserWrite, rateWindowDefault, r.handleTaskSubroutes)))
	r.mux.HandleFunc("/invitations/", r.audit("/invitations/{id}", r.handlerAuthRate("/invitations/{id}", rateLimitUserWrite, rateWindowDefault, r.handleInvitationSubroutes)))
	r.mux.HandleFunc("/chat/status", r.audit("/chat/status", r.handlerAuthRate("/chat/status", rateLimitUserRead, rateWindowDefault, r.handleChatStatus)))
	r.mux.HandleFunc("/ws", r.audit("/ws", r.handlerAuthRate("/ws", rateLimitWebsocket, rateWindowRealtime, r.handleWS)))
}

func (r *Router) handleSignup(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		r.methodNotAllowed(w)
		return
	}
	var payload struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	user, tokens, err := r.auth.Signup(req.Context(), payload.Name, payload.Email, payload.Password)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"user":   user,
		"tokens": tokens,
	})
}

func (r *Router) handleLogin(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		r.methodNotAllowed(w)
		return
	}
	var payload struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	user, tokens, err := r.auth.Login(req.Context(), payload.Email, payload.Password)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"user":   user,
		"tokens": tokens,
	})
}

func (r *Router) handleProjects(w http.ResponseWriter, req *http.Request) {
	info, ok := r.callerInfo(w, req)
	if !ok {
		return
	}
	switch req.Method {
	case http.MethodGet:
		projects, err := r.project.List(req.Context(), info.UserID)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, projects)
	case http.MethodPost:
		var payload project.CreateInput
		if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		proj, err := r.project.Create(req.Context(), info.UserID, payload)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, proj)
	default:
		r.methodNotAllowed(w)
	}
}

func (r *Router) handleProjectSubroutes(w http.ResponseWriter, req *http.Request) {
	trimmed := strings.TrimPrefix(req.URL.Path, "/projects/")
	parts := strings.Split(trimmed, "/")
	projectID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil || projectID <= 0 {
		r.notFound(w)
		return
	}
	switch {
	case len(parts) == 1:
		r.handleProjectByID(w, req, projectID)
	case len(parts) == 2 && parts[1] == "summary":
		r.handleProjectSummary(w, req, projectID)
	case len(parts) == 2 && parts[1] == "members":
		r.handleProjectMembers(w, req, projectID, 0)
	case len(parts) == 3 && parts[1] == "members":
		memberID, err := strconv.ParseInt(parts[2], 10, 64)
		if err != nil || memberID <= 0 {
			r.notFound(w)
			return
		}
		r.handleProjectMembers(w, req, projectID, memberID)
	case len(parts) == 2 && parts[1] == "tasks":
		r.handleProjectTasks(w, req, projectID)
	case len(parts) == 2 && parts[1] == "chat":
		r.handleProjectChat(w, req, projectID)
	case len(parts) == 3 && parts[1] == "chat" && parts[2] == "read":
		r.handleChatRead(w, req, projectID)
	default:
		r.notFound(w)
	}
}

func (r *Router) handleProjectByID(w http.ResponseWriter, req *http.Request, projectID int64) {
	info, ok := r.callerInfo(w, req)
	if !ok {
		return
	}
	switch req.Method {
	case http.MethodGet:
		proj, err := r.project.Get(req.Context(), info.UserID, projectID)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, proj)
	case http.MethodPut:
		var payload project.UpdateInput
		if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		proj, err := r.project.Update(req.Context(), info.UserID, projectID, payload)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, proj)
	case http.MethodDelete:
		if err := r.project.Delete(req.Context(), info.UserID, projectID); err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	default:
		r.methodNotAllowed(w)
	}
}

func (r *Router) handleProjectSummary(w http.ResponseWriter, req *http.Request, projectID int64) {
	if req.Method != http.MethodGet {
		r.methodNotAllowed(w)
		return
	}
	info, ok := r.callerInfo(w, req)
	if !ok {
		return
	}
	summary, err := r.project.Summary(req.Context(), info.UserID, projectID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (r *Router) handleProjectMembers(w http.ResponseWriter, req *http.Request, projectID, memberID int64) {
	info, ok := r.callerInfo(w, req)
	if !ok {
		return
	}
	switch {
	case req.Method == http.MethodPost && memberID == 0:
		var payload struct {
			UserID int64  `json:"user_id"`
			Role   string `json:"role"`
		}
		if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		role, err := domain.ParseMembershipRole(payload.Role)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		if err := r.project.AddMember(req.Context(), info.UserID, projectID, payload.UserID, role); err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"status": "added"})
	case req.Method == http.MethodPut && memberID != 0:
		var payload struct {
			Role string `json:"role"`
		}
		if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		role, err := domain.ParseMembershipRole(payload.Role)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		if err := r.project.UpdateMemberRole(req.Context(), info.UserID, projectID, memberID, role); err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
	case req.Method == http.MethodDelete && memberID != 0:
		if err := r.project.RemoveMember(req.Context(), info.UserID, projectID, memberID); err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "removed"})
	default:
		r.methodNotAllowed(w)
	}
}

func (r *Router) handleProjectTasks(w http.ResponseWriter, req *http.Request, projectID int64) {
	if req.Method != http.MethodPost {
		r.methodNotAllowed(w)
		return
	}
	info, ok := r.callerInfo(w, req)
	if !ok {
		return
	}
	var payload task.CreateInput
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	created, err := r.task.Create(req.Context(), info.UserID, projectID, payload)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (r *Router) handleProjectChat(w http.ResponseWriter, req *http.Request, projectID int64) {
	info, ok := r.callerInfo(w, req)
	if !ok {
		return
	}
	switch req.Method {
	case http.MethodGet:
		messages, err := r.chat.Messages(req.Context(), info.UserID, projectID)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, messages)
	case http.MethodPost:
		var payload struct {
			Content string `json:"content"`
		}
		if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		message, err := r.chat.Send(req.Context(), info.UserID, info.Name, projectID, payload.Content)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, message)
	default:
		r.methodNotAllowed(w)
	}
}

func (r *Router) handleChatRead(w http.ResponseWriter, req *http.Request, projectID int64) {
	if req.Method != http.MethodPost {
		r.methodNotAllowed(w)
		return
	}
	info, ok := r.callerInfo(w, req)
	if !ok {
		return
	}
	if err := r.chat.MarkRead(req.Context(), info.UserID, projectID); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "read"})
}

func (r *Router) handleChatStatus(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		r.methodNotAllowed(w)
		return
	}
	info, ok := r.callerInfo(w, req)
	if !ok {
		return
	}
	unread, err := r.chat.UnreadStatus(req.Context(), info.UserID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	payload := make(map[string]bool, len(unread))
	for projectID, hasUnread := range unread {
		payload[strconv.FormatInt(projectID, 10)] = hasUnread
	}
	writeJSON(w, http.StatusOK, payload)
}

func (r *Router) handleTaskSubroutes(w http.ResponseWriter, req *http.Request) {
	trimmed := strings.TrimPrefix(req.URL.Path, "/tasks/")
	parts := strings.Split(trimmed, "/")
	taskID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil || taskID <= 0 {
		r.notFound(w)
		return
	}
	info, ok := r.callerInfo(w, req)
	if !ok {
		return
	}
	switch {
	case len(parts) == 1 && req.Method == http.MethodDelete:
		if err := r.task.Delete(req.Context(), info.UserID, taskID); err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	case len(parts) == 2 && parts[1] == "status":
		if req.Method != http.MethodPut {
			r.methodNotAllowed(w)
			return
		}
		var payload struct {
			Status domain.Stage `json:"status"`
		}
		if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if err := r.task.UpdateStatus(req.Context(), info.UserID, taskID, payload.Status); err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
	case len(parts) == 2 && parts[1] == "notes":
		if req.Method != http.MethodPost {
			r.methodNotAllowed(w)
			return
		}
		var payload struct {
			Content string `json:"content"`
		}
		if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		note, err := r.task.AddNote(req.Context(), info.UserID, taskID, payload.Content)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, note)
	default:
		r.methodNotAllowed(w)
	}
}

func (r *Router) handleInvitationSubroutes(w http.ResponseWriter, req *http.Request) {
	trimmed := strings.TrimPrefix(req.URL.Path, "/invitations/")
	parts := strings.Split(trimmed, "/")
	info, ok := r.callerInfo(w, req)
	if !ok {
		return
	}
	actor := invitation.Actor{UserID: info.UserID, Email: info.Email, Name: info.Name}
	switch {
	case len(parts) == 1 && parts[0] == "my-pending":
		if req.Method != http.MethodGet {
			r.methodNotAllowed(w)
			return
		}
		pending, err := r.invitation.ListPending(req.Context(), actor)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, pending)
	case len(parts) == 2 && parts[0] == "project":
		if req.Method != http.MethodPost {
			r.methodNotAllowed(w)
			return
		}
		projectID, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil || projectID <= 0 {
			r.notFound(w)
			return
		}
		var payload struct {
			Email string `json:"email"`
			Role  string `json:"role"`
		}
		if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		role, err := domain.ParseMembershipRole(payload.Role)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		invite, err := r.invitation.Invite(req.Context(), actor, projectID, payload.Email, role)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, invite)
	case len(parts) == 2 && (parts[1] == "accept" || parts[1] == "decline"):
		if req.Method != http.MethodPost {
			r.methodNotAllowed(w)
			return
		}
		invitationID, err := strconv.ParseInt(parts[0], 10, 64)
		if err != nil || invitationID <= 0 {
			r.notFound(w)
			return
		}
		if parts[1] == "accept" {
			err = r.invitation.Accept(req.Context(), actor, invitationID)
		} else {
			err = r.invitation.Decline(req.Context(), actor, invitationID)
		}
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": parts[1] + "ed"})
	default:
		r.notFound(w)
	}
}

// wsCommand is the client-to-server frame for group membership changes.
type wsCommand struct {
	Action    string `json:"action"`
	ProjectID int64  `json:"projectId"`
}

func (r *Router) handleWS(w http.ResponseWriter, req *http.Request) {
	info, ok := r.callerInfo(w, req)
	if !ok {
		return
	}
	conn, err := r.upgrader.Upgrade(w, req, nil)
	if err != nil {
		r.logger.Error("websocket upgrade failed", "error", err)
		return
	}
	client := ws.NewClient(conn, r.logger)
	r.hub.Join(ws.UserGroup(info.UserID), client)
	go r.wsReadLoop(conn, client, info)
}

func (r *Router) wsReadLoop(conn *websocket.Conn, client *ws.Client, info authInfo) {
	defer r.hub.Drop(client)
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var cmd wsCommand
		if err := json.Unmarshal(data, &cmd); err != nil {
			continue
		}
		if cmd.ProjectID <= 0 {
			continue
		}
		switch cmd.Action {
		case "join":
			ctx, cancel := context.WithTimeout(context.Background(), healthCheckTimeout)
			_, err := r.project.Get(ctx, info.UserID, cmd.ProjectID)
			cancel()
			if err != nil {
				r.logger.Warn("websocket join denied", "user_id", info.UserID, "project_id", cmd.ProjectID, "error", err)
				continue
			}
			r.hub.Join(ws.ProjectGroup(cmd.ProjectID), client)
		case "leave":
			r.hub.Leave(ws.ProjectGroup(cmd.ProjectID), client)
		}
	}
}

func (r *Router) handleHealthz(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		r.methodNotAllowed(w)
		return
	}
	components := make(map[string]any)
	status := "ok"
	if r.dbHealth != nil {
		ctx, cancel := context.WithTimeout(req.Context(), healthCheckTimeout)
		defer cancel()
		if err := r.dbHealth(ctx); err != nil {
			status = "degraded"
			components["database"] = map[string]any{
				"status": "down",
				"error":  err.Error(),
			}
		} else {
			components["database"] = map[string]any{"status": "up"}
		}
	}
	payload := map[string]any{
		"status":     status,
		"components": components,
		"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
	}
	code := http.StatusOK
	if status != "ok" {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, payload)
}

// callerInfo pulls the authenticated identity placed by requireAuth.
func (r *Router) callerInfo(w http.ResponseWriter, req *http.Request) (authInfo, bool) {
	info, ok := authInfoFromContext(req.Context())
	if !ok {
		r.logger.Error("auth context missing", "path", req.URL.Path)
		writeError(w, http.StatusInternalServerError, "authorization context missing")
		return authInfo{}, false
	}
	return info, true
}

func (r *Router) audit(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		recorder := &statusRecorder{ResponseWriter: w}
		start := time.Now()
		next(recorder, req)

		status := recorder.status
		if status == 0 {
			status = http.StatusOK
		}
		ctx := recorder.ctx
		if ctx == nil {
			ctx = req.Context()
		}
		duration := time.Since(start)
		r.recordRequestMetrics(req.Method, route, status, duration)
		actor := "anonymous"
		fields := []any{
			"method", req.Method,
			"path", req.URL.Path,
			"status", status,
			"bytes", recorder.bytes,
			"duration_ms", duration.Milliseconds(),
		}
		if ip := clientIP(req); ip != "" {
			fields = append(fields, "ip", ip)
		}
		if reqID := strings.TrimSpace(req.Header.Get("X-Request-ID")); reqID != "" {
			fields = append(fields, "request_id", reqID)
		}
		if info, ok := authInfoFromContext(ctx); ok {
			actor = "user"
			fields = append(fields, "user_id", info.UserID)
		}
		fields = append(fields, "actor", actor)

		switch {
		case status >= http.StatusInternalServerError:
			r.logger.Error("http_request", fields...)
		case status >= http.StatusBadRequest:
			r.logger.Warn("http_request", fields...)
		default:
			r.logger.Info("http_request", fields...)
		}
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
	ctx    context.Context
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Write(b []byte) (int, error) {
	if sr.status == 0 {
		sr.status = http.StatusOK
	}
	n, err := sr.ResponseWriter.Write(b)
	sr.bytes += n
	return n, err
}

func (sr *statusRecorder) SetContext(ctx context.Context) {
	sr.ctx = ctx
}

func (sr *statusRecorder) Flush() {
	if f, ok := sr.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (sr *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if h, ok := sr.ResponseWriter.(http.Hijacker); ok {
		return h.Hijack()
	}
	return nil, nil, errors.New("hijacker not supported")
}

func (sr *statusRecorder) Push(target string, opts *http.PushOptions) error {
	if p, ok := sr.ResponseWriter.(http.Pusher); ok {
		return p.Push(target, opts)
	}
	return http.ErrNotSupported
}

func clientIP(req *http.Request) string {
	if forwarded := strings.TrimSpace(req.Header.Get("X-Forwarded-For")); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		if len(parts) > 0 {
			ip := strings.TrimSpace(parts[0])
			if ip != "" {
				return ip
			}
		}
	}
	host, _, err := net.SplitHostPort(strings.TrimSpace(req.RemoteAddr))
	if err != nil {
		return strings.TrimSpace(req.RemoteAddr)
	}
	return host
}

func (r *Router) methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

func (r *Router) notFound(w http.ResponseWriter) {
	writeError(w, http.StatusNotFound, "not found")
}
