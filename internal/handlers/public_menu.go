package handlers

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"cardapio/internal/service"
)

const menuKeepAlive = 25 * time.Second

// GetMenu returns the menu kept by the feed, or builds one on the spot
// before the feed has produced its first menu.
func GetMenu(feed *service.MenuFeed, catalog *service.Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /menu"
		defer handlePanic(c, route)

		if menu, ok := feed.Current(); ok {
			c.JSON(http.StatusOK, menu)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		visible, err := catalog.Menu(ctx)
		if err != nil {
			respondError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, service.BuildMenu(visible, time.Now()))
	}
}

/*
GET /menu/stream
- Server-sent events: one "menu" event per catalog change
- Comment lines keep idle proxies from closing the connection
*/
func StreamMenu(feed *service.MenuFeed) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /menu/stream"
		defer handlePanic(c, route)

		updates, unsubscribe := feed.Subscribe()
		defer unsubscribe()

		c.Header("Cache-Control", "no-cache")
		c.Header("Connection", "keep-alive")
		c.Header("X-Accel-Buffering", "no")

		ctx := c.Request.Context()
		ticker := time.NewTicker(menuKeepAlive)
		defer ticker.Stop()

		zap.L().Debug("menu stream opened", zap.String("route", route), zap.String("client", c.ClientIP()))
		c.Stream(func(w io.Writer) bool {
			return streamNext(ctx, c, updates, ticker.C)
		})
		zap.L().Debug("menu stream closed", zap.String("route", route), zap.String("client", c.ClientIP()))
	}
}

func streamNext(ctx context.Context, c *gin.Context, updates <-chan service.Menu, keepAlive <-chan time.Time) bool {
	select {
	case <-ctx.Done():
		return false
	case menu := <-updates:
		c.SSEvent("menu", menu)
		return true
	case <-keepAlive:
		_, err := c.Writer.WriteString(": keep-alive\n\n")
		return err == nil
	}
}
