package http

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"birdfinder/internal/service"
)

func (h *Handler) addToList(c *gin.Context) {
	_, err := h.lists.AddEntry(c.Request.Context(), currentUserID(c), c.PostForm("commonName"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSpeciesRequired):
			c.String(http.StatusBadRequest, "Species name is required")
		case errors.Is(err, service.ErrUserNotFound):
			// account vanished under a live session
			c.Redirect(http.StatusSeeOther, "/")
		default:
			h.internalError(c, "failed to add bird to list", err)
		}
		return
	}
	c.String(http.StatusOK, "Bird added to list")
}

func (h *Handler) birdList(c *gin.Context) {
	h.renderList(c)
}

func (h *Handler) removeFromList(c *gin.Context) {
	entryID, err := strconv.ParseInt(c.PostForm("birdId"), 10, 64)
	if err != nil || entryID <= 0 {
		c.String(http.StatusBadRequest, "invalid bird id")
		return
	}

	err = h.lists.RemoveEntry(c.Request.Context(), currentUserID(c), entryID)
	if err != nil && !errors.Is(err, service.ErrEntryNotFound) {
		h.internalError(c, "failed to remove bird from list", err)
		return
	}
	h.renderList(c)
}

func (h *Handler) renderList(c *gin.Context) {
	entries, err := h.lists.ListEntries(c.Request.Context(), currentUserID(c))
	if err != nil {
		h.internalError(c, "failed to fetch bird list", err)
		return
	}
	h.render(c, http.StatusOK, "birdList.html", gin.H{
		"Title":          "My bird list",
		"Birds":          entries,
		"ArchiveEnabled": h.archiveEnabled,
	})
}

func (h *Handler) exportList(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.lists.ExportCSV(c.Request.Context(), currentUserID(c), &buf); err != nil {
		h.internalError(c, "failed to export bird list", err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="bird-list.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func (h *Handler) archiveList(c *gin.Context) {
	if h.archives == nil {
		c.String(http.StatusServiceUnavailable, "List archive is not configured")
		return
	}

	result, err := h.archives.Archive(c.Request.Context(), currentUserID(c))
	if err != nil {
		if errors.Is(err, service.ErrArchiveDisabled) {
			c.String(http.StatusServiceUnavailable, "List archive is not configured")
			return
		}
		h.internalError(c, "failed to archive bird list", err)
		return
	}

	h.log.WithField("location", result.Location).Info("bird list archived")
	c.Redirect(http.StatusSeeOther, result.URL)
}
