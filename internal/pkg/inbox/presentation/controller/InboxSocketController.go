package controller

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"textback/internal/infrastructure/realtime"
)

// InboxSocketController upgrades team members to a websocket pushed with
// inbox activity (new messages, assignments, resolutions). The socket is
// push-only; mutations go through the REST endpoints.
type InboxSocketController struct {
	router *realtime.Router
}

func NewInboxSocketController(router *realtime.Router) *InboxSocketController {
	return &InboxSocketController{router: router}
}

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins for now; plug a proper checker when the UI origin is fixed.
		return true
	},
}

const defaultReadTimeout = 60 * time.Second

func (ctl *InboxSocketController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := identityFrom(c)
		if err != nil {
			replyError(c, err)
			return
		}

		ws, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			// Upgrade already wrote the response; just return.
			return
		}

		conn := realtime.NewConnection(id.UserID.String(), id.BusinessID.String(), ws)
		ctl.router.Attach(conn)
		defer func() {
			ctl.router.Detach(conn)
			conn.Close(websocket.CloseNormalClosure, "session closed")
		}()

		ws.SetReadLimit(1 << 16)
		_ = ws.SetReadDeadline(time.Now().Add(defaultReadTimeout))
		ws.SetPongHandler(func(string) error {
			return ws.SetReadDeadline(time.Now().Add(defaultReadTimeout))
		})

		if payload, err := json.Marshal(gin.H{"event": "connected"}); err == nil {
			_ = conn.Send(payload)
		}

		// Drain the read side; inbound frames only keep the connection alive.
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
			_ = ws.SetReadDeadline(time.Now().Add(defaultReadTimeout))
		}
	}
}
