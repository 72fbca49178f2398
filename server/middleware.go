package server

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"simustruct/storage"
)

func (s *server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		if s.db == nil {
			return
		}

		duration := time.Since(start)

		err := s.db.LogAccess(storage.AccessLogEntry{
			Time:          time.Now(),
			Duration:      float64(duration.Microseconds()) / 1000000,
			Path:          c.FullPath(),
			RemoteAddress: c.Request.RemoteAddr,
			StatusCode:    c.Writer.Status(),
		})

		if err != nil {
			log.Printf("%v", err)
		}
	}
}

func (s *server) rateLimited() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.rateLimit.CheckAndUpdate(c.Request.RemoteAddr) {
			c.AbortWithStatus(http.StatusTooManyRequests)
			return
		}

		c.Next()
	}
}
