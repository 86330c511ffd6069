package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) listCustomTexts(c *gin.Context) {
	texts, err := h.texts.ListMine(c.Request.Context(), identity(c).UserID)
	if err != nil {
		h.fail(c, err)
		return
	}
	resp := make([]customTextResponse, 0, len(texts))
	for _, t := range texts {
		resp = append(resp, toCustomTextResponse(t))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) createCustomText(c *gin.Context) {
	var req customTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		message(c, http.StatusBadRequest, err.Error())
		return
	}
	if _, err := h.texts.Create(c.Request.Context(), identity(c).UserID, req.Content, req.IsPublic); err != nil {
		h.fail(c, err)
		return
	}
	message(c, http.StatusOK, "Custom text added successfully")
}

func (h *Handler) deleteCustomText(c *gin.Context) {
	if err := h.texts.Delete(c.Request.Context(), identity(c).UserID, c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	message(c, http.StatusOK, "Deleted successfully")
}
