package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"SavePublish/internal/domain"
	"SavePublish/internal/ports"
	"SavePublish/internal/usecase"
)

// Commander is the save & publish command as seen by the dispatcher.
type Commander interface {
	Execute(ctx context.Context, selection []domain.ItemRef, inv usecase.Invocation) (domain.Decision, error)
	Resume(ctx context.Context, sessionID string, inv usecase.Invocation) (domain.Decision, error)
	Session(ctx context.Context, sessionID string) (*domain.RoundTripState, error)
	QueryState(ctx context.Context, selection []domain.ItemRef, actor domain.Actor) (domain.CommandState, error)
}

// Handler exposes the command over HTTP.
type Handler struct {
	command     Commander
	audit       ports.AuditReader
	defaultLang string
}

// NewHandler wires the command; audit may be nil. defaultLang is used when a
// request carries no UI language.
func NewHandler(command Commander, audit ports.AuditReader, defaultLang string) *Handler {
	return &Handler{command: command, audit: audit, defaultLang: defaultLang}
}

// RegisterRoutes mounts the command routes.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/query-state", h.QueryState)
	router.POST("/execute", h.Execute)
	router.POST("/sessions/:id/answer", h.Answer)
	router.GET("/sessions/:id", h.GetSession)
	router.GET("/audit", h.ListAudit)
}

type clientContext struct {
	Modified   bool         `json:"modified"`
	UILanguage string       `json:"uiLanguage"`
	Actor      domain.Actor `json:"actor"`
}

func (c clientContext) invocation(defaultLang string) usecase.Invocation {
	lang := c.UILanguage
	if lang == "" {
		lang = defaultLang
	}
	return usecase.Invocation{Modified: c.Modified, UILanguage: lang, Actor: c.Actor}
}

type executeRequest struct {
	clientContext
	Items []domain.ItemRef `json:"items"`
}

type answerRequest struct {
	clientContext
	Answer string `json:"answer"`
}

type queryStateRequest struct {
	Items []domain.ItemRef `json:"items"`
	Actor domain.Actor     `json:"actor"`
}

type sessionView struct {
	SessionID string         `json:"sessionId"`
	Item      domain.ItemRef `json:"item"`
	Phase     domain.Phase   `json:"phase"`
	Workflow  string         `json:"workflow"`
	Modified  string         `json:"modified"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

type auditView struct {
	SessionID string         `json:"sessionId"`
	Item      domain.ItemRef `json:"item"`
	Actor     string         `json:"actor"`
	Message   string         `json:"message"`
	CreatedAt time.Time      `json:"createdAt"`
}

// QueryState reports whether the menu action is hidden, disabled or enabled.
func (h *Handler) QueryState(c *gin.Context) {
	var req queryStateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	state, err := h.command.QueryState(c.Request.Context(), req.Items, req.Actor)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": state})
}

// Execute starts a save & publish round trip.
func (h *Handler) Execute(c *gin.Context) {
	var req executeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	dec, err := h.command.Execute(c.Request.Context(), req.Items, req.invocation(h.defaultLang))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dec)
}

// Answer resumes a suspended round trip with the user's answer.
func (h *Handler) Answer(c *gin.Context) {
	var req answerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	inv := req.invocation(h.defaultLang)
	inv.Answer = req.Answer
	dec, err := h.command.Resume(c.Request.Context(), c.Param("id"), inv)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dec)
}

// GetSession shows a suspended round trip.
func (h *Handler) GetSession(c *gin.Context) {
	st, err := h.command.Session(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessionView{
		SessionID: st.SessionID,
		Item:      st.Request.Ref(),
		Phase:     st.Phase,
		Workflow:  string(st.Workflow),
		Modified:  string(st.Modified),
		CreatedAt: st.CreatedAt,
		UpdatedAt: st.UpdatedAt,
	})
}

// ListAudit returns the newest audit records; ?limit= caps the count.
func (h *Handler) ListAudit(c *gin.Context) {
	if h.audit == nil {
		c.JSON(http.StatusOK, gin.H{"entries": []auditView{}})
		return
	}

	limit := 100
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
			return
		}
		limit = n
	}

	entries, err := h.audit.ListAudit(c.Request.Context(), limit)
	if err != nil {
		writeError(c, err)
		return
	}

	views := make([]auditView, 0, len(entries))
	for _, e := range entries {
		views = append(views, auditView{
			SessionID: e.SessionID,
			Item:      e.Item,
			Actor:     e.Actor,
			Message:   e.Message,
			CreatedAt: e.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"entries": views})
}

func writeError(c *gin.Context, err error) {
	if errors.Is(err, domain.ErrSessionNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
