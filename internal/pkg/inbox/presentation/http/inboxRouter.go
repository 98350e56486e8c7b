package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"textback/internal/infrastructure/realtime"
	"textback/internal/infrastructure/session"
	"textback/internal/pkg/inbox/application/usecase"
	repository "textback/internal/pkg/inbox/persistence/repository/port"
	ctl "textback/internal/pkg/inbox/presentation/controller"
	"textback/internal/pkg/sms/dispatcher"
)

// Deps bundles the collaborators the inbox endpoints need.
type Deps struct {
	Repo          repository.InboxRepository
	Sessions      session.Store
	Notifier      *usecase.Notifier
	Dispatcher    *dispatcher.Dispatcher
	Realtime      *realtime.Router
	Logger        *slog.Logger
	WebhookSecret string
}

// AuthMiddleware resolves the caller's session from the Authorization bearer
// token or the X-Session-Token header. Unauthenticated requests get a 401
// before any controller runs.
func AuthMiddleware(store session.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader("X-Session-Token")
		if token == "" {
			if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, "Bearer ") {
				token = strings.TrimPrefix(auth, "Bearer ")
			}
		}
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing session token"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		id, err := store.Resolve(ctx, token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid session"})
			return
		}
		c.Set(ctl.IdentityKey, id)
		c.Next()
	}
}

// RegisterRoutes registers the inbox endpoints under the given router group.
// It constructs per-endpoint controllers and binds them directly to routes.
func RegisterRoutes(g *gin.RouterGroup, deps Deps) {
	listCtl := ctl.NewListConversationsController(deps.Repo)
	createCtl := ctl.NewCreateConversationController(deps.Repo, deps.Notifier)
	getCtl := ctl.NewGetConversationController(deps.Repo)
	updateCtl := ctl.NewUpdateConversationController(deps.Repo)
	assignCtl := ctl.NewAssignConversationController(deps.Repo, deps.Notifier)
	resolveCtl := ctl.NewResolveConversationController(deps.Repo, deps.Notifier)
	reopenCtl := ctl.NewReopenConversationController(deps.Repo)
	archiveCtl := ctl.NewArchiveConversationController(deps.Repo)
	listMsgCtl := ctl.NewListMessagesController(deps.Repo)
	appendMsgCtl := ctl.NewAppendMessageController(deps.Repo, deps.Notifier)
	listNotifCtl := ctl.NewListNotificationsController(deps.Repo)
	readNotifCtl := ctl.NewMarkNotificationsReadController(deps.Repo)

	authed := g.Group("", AuthMiddleware(deps.Sessions))

	authed.GET("/conversations", listCtl.Handle())
	authed.POST("/conversations", createCtl.Handle())
	authed.GET("/conversations/:id", getCtl.Handle())
	authed.PUT("/conversations/:id", updateCtl.Handle())
	authed.POST("/conversations/:id/assign", assignCtl.Handle())
	authed.POST("/conversations/:id/resolve", resolveCtl.Handle())
	authed.POST("/conversations/:id/reopen", reopenCtl.Handle())
	authed.POST("/conversations/:id/archive", archiveCtl.Handle())
	authed.GET("/conversations/:id/messages", listMsgCtl.Handle())
	authed.POST("/conversations/:id/messages", appendMsgCtl.Handle())

	authed.GET("/notifications", listNotifCtl.Handle())
	authed.POST("/notifications/read", readNotifCtl.Handle())

	if deps.Dispatcher != nil {
		cooldownCtl := ctl.NewCooldownController(deps.Dispatcher)
		authed.GET("/sms/cooldown/:number", cooldownCtl.HandleGet())
		authed.DELETE("/sms/cooldown/:number", cooldownCtl.HandleClear())
	}

	if deps.Realtime != nil {
		socketCtl := ctl.NewInboxSocketController(deps.Realtime)
		authed.GET("/inbox/ws", socketCtl.Handle())
	}

	// Webhooks authenticate with the shared secret, not a session.
	smsHookCtl := ctl.NewSMSWebhookController(deps.Repo, deps.Notifier, deps.WebhookSecret)
	g.POST("/webhooks/:businessId/sms", smsHookCtl.Handle())
	missedHookCtl := ctl.NewMissedCallWebhookController(deps.Repo, deps.Dispatcher, deps.Notifier, deps.Logger, deps.WebhookSecret)
	g.POST("/webhooks/:businessId/missed-call", missedHookCtl.Handle())
}
