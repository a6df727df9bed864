// Package socket streams chapter events to subscribed readers over
// websocket.
package socket

import (
	"context"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

// ChannelRequest selects the novels a connection wants events for.
// Channels are novel identifiers.
type ChannelRequest struct {
	Channels []string `json:"channels"`
}

// Handler handles websocket connections
type Handler struct {
	rdb *redis.Client
}

// NewHandler creates a new socket handler
func NewHandler(rdb *redis.Client) *Handler {
	return &Handler{rdb}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Connect upgrades the request and relays chapter events for the
// requested novels until the client goes away. One subscription per
// connection; a new channel request replaces the previous selection.
func (h Handler) Connect(c echo.Context) error {
	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		c.Logger().Error(err)
		return err
	}
	defer ws.Close()

	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	pubsub := h.rdb.Subscribe(ctx)
	defer pubsub.Close()

	go func() {
		for {
			msg, err := pubsub.ReceiveMessage(ctx)
			if err != nil {
				return
			}

			err = ws.WriteMessage(websocket.TextMessage, []byte(msg.Payload))
			if err != nil {
				return
			}
		}
	}()

	for {
		var req ChannelRequest
		err := ws.ReadJSON(&req)
		if err != nil {
			break
		}

		err = pubsub.Unsubscribe(ctx)
		if err != nil {
			break
		}
		if len(req.Channels) > 0 {
			err = pubsub.Subscribe(ctx, req.Channels...)
			if err != nil {
				break
			}
		}
	}
	return nil
}
