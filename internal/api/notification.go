package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/smeysmey1509/rest-api-node-sub000/internal/query"
)

func (h *handler) listNotifications(c *gin.Context) {
	values := c.Request.URL.Query()
	params, err := query.Parse(values, query.FeedSortFields, query.NewestFirst)
	if err != nil {
		fail(c, err)
		return
	}
	unread, err := query.Bool(values, "unread")
	if err != nil {
		fail(c, err)
		return
	}
	res, err := h.Notification.List(c.Request.Context(), ident(c), unread, params)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *handler) unreadCount(c *gin.Context) {
	n, err := h.Notification.UnreadCount(c.Request.Context(), ident(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"unread": n})
}

func (h *handler) markRead(c *gin.Context) {
	id, ok := param(c, "id")
	if !ok {
		return
	}
	n, err := h.Notification.MarkRead(c.Request.Context(), ident(c), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, n)
}

func (h *handler) markAllRead(c *gin.Context) {
	n, err := h.Notification.MarkAllRead(c.Request.Context(), ident(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": n})
}

func (h *handler) deleteNotification(c *gin.Context) {
	id, ok := param(c, "id")
	if !ok {
		return
	}
	if err := h.Notification.Delete(c.Request.Context(), ident(c), id); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
