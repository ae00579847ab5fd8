package ws

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Meet/internal/app"
	"github.com/dkeye/Meet/internal/core"
	"github.com/dkeye/Meet/internal/domain"
)

const (
	chatBurstLimit  = 20
	chatBurstWindow = 10 * time.Second
)

// Controller upgrades conference clients to WebSocket and feeds their
// events to the coordinator. One read/write pump pair per connection.
type Controller struct {
	Coord      *app.Coordinator
	ReadLimit  int64
	PingPeriod time.Duration

	chatLimiter *RateLimiter
}

func NewController(coord *app.Coordinator, readLimit int64, pingPeriod time.Duration) *Controller {
	return &Controller{
		Coord:       coord,
		ReadLimit:   readLimit,
		PingPeriod:  pingPeriod,
		chatLimiter: NewRateLimiter(chatBurstLimit, chatBurstWindow),
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleSignal upgrades the request and registers the connection. The
// principal comes from the identity middleware and may be nil; an
// unauthenticated connection is closed on its first join attempt.
func (ctl *Controller) HandleSignal(ctx context.Context, c *gin.Context) {
	var principal *domain.Principal
	if v, ok := c.Get("principal"); ok {
		principal = v.(*domain.Principal)
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "ws").Msg("upgrade")
		return
	}

	id := core.ConnID(uuid.NewString())
	log.Info().Str("module", "ws").Str("conn", string(id)).Bool("authenticated", principal != nil).Msg("connected")

	wc := newWSConn(conn)
	if ctl.ReadLimit > 0 {
		conn.SetReadLimit(ctl.ReadLimit)
	}

	sess := core.NewMemberSession(principal, wc)
	ctx, cancel := context.WithCancel(ctx)
	ctl.Coord.Connect(id, sess, cancel)

	go wc.writePump(ctx, ctl.PingPeriod)
	go ctl.readPump(ctx, id, wc)
}

func (ctl *Controller) readPump(ctx context.Context, id core.ConnID, c *wsConn) {
	defer func() {
		log.Info().Str("module", "ws").Str("conn", string(id)).Msg("disconnected")
		ctl.Coord.Disconnect(id)
		ctl.chatLimiter.Forget(id)
		c.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				log.Debug().Err(err).Str("module", "ws").Str("conn", string(id)).Msg("read error")
				return
			}
			ctl.dispatch(id, data)
		}
	}
}
