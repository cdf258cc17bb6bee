package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"iris-prediction/config"
	"iris-prediction/services"
)

func newUpgrader(cfg config.CORSConfig) websocket.Upgrader {
	origins := strings.Split(cfg.AllowedOrigins, ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}
	return websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || slices.Contains(origins, "*") || slices.Contains(origins, origin)
		},
	}
}

// LivePredictions streams every newly created prediction to a websocket
// client. It needs Redis pub/sub and answers 503 without it.
func LivePredictions(cache *services.CacheService, cors config.CORSConfig, logger *slog.Logger) gin.HandlerFunc {
	upgrader := newUpgrader(cors)

	return func(c *gin.Context) {
		if !cache.Available() {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "live feed requires redis"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Warn("websocket upgrade failed", "error", err)
			return
		}
		defer conn.Close()

		ctx, cancel := context.WithCancel(c.Request.Context())
		defer cancel()

		// Read pump: detect client disconnect
		go func() {
			defer cancel()
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		pubsub := cache.Subscribe(ctx, predictionChannel)
		defer pubsub.Close()
		if _, err := pubsub.Receive(ctx); err != nil {
			logger.Warn("subscribe failed", "channel", predictionChannel, "error", err)
			return
		}

		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				err := conn.WriteJSON(gin.H{
					"type": "prediction_created",
					"data": json.RawMessage(msg.Payload),
				})
				if err != nil {
					logger.Warn("ws write error", "error", err)
					return
				}
			}
		}
	}
}
