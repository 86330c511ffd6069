package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"typeroo-api/internal/service"
)

func (h *Handler) saveResult(c *gin.Context) {
	var req saveResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		message(c, http.StatusBadRequest, err.Error())
		return
	}
	_, err := h.results.Save(c.Request.Context(), identity(c), service.ResultInput{
		WPM:            req.WPM,
		RawWPM:         req.RawWPM,
		Accuracy:       req.Accuracy,
		Duration:       req.Duration,
		CorrectChars:   req.CorrectChars,
		IncorrectChars: req.IncorrectChars,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	message(c, http.StatusOK, "Test result saved successfully")
}

func (h *Handler) myHistory(c *gin.Context) {
	page, size, ok := pageParams(c)
	if !ok {
		return
	}
	result, err := h.results.History(c.Request.Context(), identity(c).UserID, page, size)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toPageResponse(result))
}

func (h *Handler) userHistory(c *gin.Context) {
	username, ok := requiredQuery(c, "username")
	if !ok {
		return
	}
	page, size, ok := pageParams(c)
	if !ok {
		return
	}
	result, err := h.results.UserHistory(c.Request.Context(), username, page, size)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toPageResponse(result))
}

func (h *Handler) userStats(c *gin.Context) {
	username, ok := requiredQuery(c, "username")
	if !ok {
		return
	}
	stats, err := h.results.Stats(c.Request.Context(), username)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, statsResponse{
		MaxWPM10: stats.MaxWPM10,
		MaxWPM30: stats.MaxWPM30,
		MaxWPM60: stats.MaxWPM60,
	})
}

func requiredQuery(c *gin.Context, name string) (string, bool) {
	v := c.Query(name)
	if v == "" {
		message(c, http.StatusBadRequest, "Missing parameter: "+name)
		return "", false
	}
	return v, true
}

// pageParams reads the optional page and size query parameters. It writes
// the 400 response itself when one is not an integer.
func pageParams(c *gin.Context) (page, size *int, ok bool) {
	for _, p := range []struct {
		name string
		dst  **int
	}{{"page", &page}, {"size", &size}} {
		raw, found := c.GetQuery(p.name)
		if !found || raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			message(c, http.StatusBadRequest, "Invalid parameter: "+p.name)
			return nil, nil, false
		}
		*p.dst = &n
	}
	return page, size, true
}
