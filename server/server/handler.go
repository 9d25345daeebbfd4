package server

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"net/http"
	"strconv"
	"time"

	"github.com/derktes/rc5-remote/rc5"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

const defaultDispatchLimit = 20

// routes builds the read-only status API. Nothing here dispatches; the TCP
// request path is the only way to drive the emitter.
func (s *Server) routes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), s.accessLog())

	api := r.Group("/api")
	api.GET("/registry", s.registryHandler)
	api.GET("/status", s.statusHandler)
	api.GET("/dispatches", s.dispatchesHandler)
	api.GET("/dispatches/stream", s.dispatchStreamHandler)
	return r
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"remote":  c.ClientIP(),
			"latency": time.Since(start),
		}).Debug("API request")
	}
}

func (s *Server) registryHandler(c *gin.Context) {
	c.Header("Access-Control-Allow-Origin", "*")
	c.JSON(http.StatusOK, registryResponse{
		Devices:  rc5.Devices(),
		Commands: rc5.Commands(),
	})
}

func (s *Server) statusHandler(c *gin.Context) {
	c.Header("Access-Control-Allow-Origin", "*")
	c.JSON(http.StatusOK, s.status())
}

func (s *Server) dispatchesHandler(c *gin.Context) {
	limit := defaultDispatchLimit
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}
	records, err := s.store.list(c.Request.Context(), limit)
	if err != nil {
		s.log.WithError(err).Error("Listing dispatch history")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Header("Access-Control-Allow-Origin", "*")
	c.JSON(http.StatusOK, records)
}

func (s *Server) dispatchStreamHandler(c *gin.Context) {
	r := c.Request
	conn, err := websocket.Accept(c.Writer, r, &websocket.AcceptOptions{OriginPatterns: []string{"localhost:*", "192.168.*.*:*"}})
	if err != nil {
		s.log.WithError(err).Warn("Websocket accept failed")
		return
	}
	log := s.log.WithField("remote", r.RemoteAddr)
	log.Info("Accepted websocket request")
	defer log.Info("Closing websocket connection")
	defer conn.Close(websocket.StatusNormalClosure, "Handler exits")

	subscriber := getSubscriberID(r.RemoteAddr)
	onRecord, err := s.notifier.notify(subscriber)
	if err != nil {
		log.WithError(err).Debug("Subscription refused")
		conn.Close(websocket.StatusPolicyViolation, "Already subscribed")
		return
	}
	defer s.notifier.unNotify(subscriber)

	ctx := conn.CloseRead(r.Context())
	for {
		select {
		case rec, ok := <-onRecord:
			if !ok {
				return
			}
			if err := writeRecord(ctx, conn, rec); err != nil {
				log.WithError(err).Warn("Websocket write failed")
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

func getSubscriberID(data string) string {
	h := sha1.Sum([]byte(data))
	return hex.EncodeToString(h[:])
}

func writeRecord(ctx context.Context, c *websocket.Conn, rec dispatchRecord) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	return wsjson.Write(ctx, c, rec)
}
