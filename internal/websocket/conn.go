package websocket

import (
	"context"
	"errors"
	"net/http"
	"time"

	ws "github.com/coder/websocket"
)

const (
	keepalive = 30 * time.Second
	writeWait = 10 * time.Second
)

// ServeHTTP upgrades a dashboard page and forwards notices to it until it
// disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := ws.Accept(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}
	defer conn.CloseNow()

	l := h.attach()
	defer h.detach(l)

	// Pages never write. CloseRead answers control frames and cancels ctx once
	// the page goes away.
	ctx := conn.CloseRead(r.Context())
	if err := forward(ctx, conn, l); err != nil && !errors.Is(err, context.Canceled) {
		h.logger.Debug("page connection ended", "remote", r.RemoteAddr, "error", err)
	}
}

func forward(ctx context.Context, conn *ws.Conn, l *listener) error {
	ping := time.NewTicker(keepalive)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case data := <-l.notices:
			wctx, cancel := context.WithTimeout(ctx, writeWait)
			err := conn.Write(wctx, ws.MessageText, data)
			cancel()
			if err != nil {
				return err
			}
		case <-ping.C:
			if err := conn.Ping(ctx); err != nil {
				return err
			}
		}
	}
}
