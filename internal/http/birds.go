package http

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
)

func (h *Handler) dashboard(c *gin.Context) {
	h.render(c, http.StatusOK, "dashboard.html", gin.H{"Title": "Dashboard"})
}

func (h *Handler) dashboardSearch(c *gin.Context) {
	region := strings.TrimSpace(c.PostForm("region"))
	c.Redirect(http.StatusSeeOther, "/searchBird?region="+url.QueryEscape(region))
}

func (h *Handler) searchBird(c *gin.Context) {
	region := c.Query("region")
	sightings := h.birds.SearchSightings(c.Request.Context(), region)
	h.render(c, http.StatusOK, "birdSightings.html", gin.H{
		"Title":     "Sightings",
		"Region":    region,
		"Sightings": sightings,
	})
}

// searchBirdForm renders an empty results page for direct form posts.
func (h *Handler) searchBirdForm(c *gin.Context) {
	h.render(c, http.StatusOK, "birdSightings.html", gin.H{"Title": "Sightings", "Region": ""})
}

func (h *Handler) birdDetails(c *gin.Context) {
	region := c.Query("region")
	speciesCode := c.Query("speciesCode")
	detail := h.birds.GetSpeciesDetail(c.Request.Context(), region, speciesCode)
	h.render(c, http.StatusOK, "birdDetails.html", gin.H{
		"Title":       "Bird details",
		"Region":      region,
		"SpeciesCode": speciesCode,
		"Detail":      detail,
	})
}
