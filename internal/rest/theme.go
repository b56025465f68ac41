package rest

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dfryer1193/inkfront/blog/domain"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

type themeMessage struct {
	Theme domain.Theme `json:"theme"`
}

func (h *Handlers) GetTheme(c *gin.Context) {
	c.JSON(http.StatusOK, themeMessage{Theme: h.theme.Current()})
}

func (h *Handlers) ToggleTheme(c *gin.Context) {
	theme, err := h.theme.Toggle(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, themeMessage{Theme: theme})
}

// ThemeSocket streams the current theme and every later change to one browser tab.
// The subscription ends when the tab goes away.
func (h *Handlers) ThemeSocket(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn().Err(err).Msg("Theme websocket upgrade failed")
		return
	}

	updates, unsubscribe := h.theme.Subscribe()
	closed := make(chan struct{})

	go readUntilClosed(conn, closed)
	writeThemes(conn, h.theme.Current(), updates, closed)

	unsubscribe()
	conn.Close()
}

// readUntilClosed discards client messages and closes done once the connection fails.
func readUntilClosed(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)

	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Debug().Err(err).Msg("Theme websocket closed")
			}
			return
		}
	}
}

func writeThemes(conn *websocket.Conn, current domain.Theme, updates <-chan domain.Theme, closed <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	if err := writeTheme(conn, current); err != nil {
		return
	}

	for {
		select {
		case theme, ok := <-updates:
			if !ok {
				return
			}
			if err := writeTheme(conn, theme); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-closed:
			return
		}
	}
}

func writeTheme(conn *websocket.Conn, theme domain.Theme) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(themeMessage{Theme: theme})
}
