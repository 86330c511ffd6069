package http

import (
	"errors"
	"fmt"
	"mime"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"typeroo-api/internal/service"
)

func (h *Handler) getProfile(c *gin.Context) {
	user, err := h.users.GetProfile(c.Request.Context(), identity(c).UserID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toUserResponse(user))
}

func (h *Handler) getPublicProfile(c *gin.Context) {
	user, err := h.users.GetPublicProfile(c.Request.Context(), c.Param("username"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toUserResponse(user))
}

func (h *Handler) searchUsers(c *gin.Context) {
	users, err := h.users.Search(c.Request.Context(), c.Query("query"))
	if err != nil {
		h.fail(c, err)
		return
	}
	resp := make([]userResponse, 0, len(users))
	for i := range users {
		resp = append(resp, toUserResponse(&users[i]))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) updateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		message(c, http.StatusBadRequest, err.Error())
		return
	}
	err := h.users.UpdateProfile(c.Request.Context(), identity(c).UserID, service.ProfileUpdate{
		Bio:         req.Bio,
		AvatarURL:   req.AvatarURL,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	message(c, http.StatusOK, "Profile updated successfully")
}

func (h *Handler) updateSettings(c *gin.Context) {
	var req updateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		message(c, http.StatusBadRequest, err.Error())
		return
	}
	err := h.users.UpdateSettings(c.Request.Context(), identity(c).UserID, service.SettingsUpdate{
		Username:        req.Username,
		Email:           req.Email,
		Password:        req.Password,
		CurrentPassword: req.CurrentPassword,
		ThemePreference: req.ThemePreference,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	message(c, http.StatusOK, "Settings updated successfully")
}

func (h *Handler) uploadAvatar(c *gin.Context) {
	if h.maxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes+multipartOverhead)
	}
	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			message(c, http.StatusBadRequest, fmt.Sprintf("File exceeds the %d byte limit", h.maxUploadBytes))
			return
		}
		message(c, http.StatusBadRequest, "File is required")
		return
	}
	file, err := fh.Open()
	if err != nil {
		h.fail(c, err)
		return
	}
	defer file.Close()

	url, err := h.avatars.Upload(c.Request.Context(), identity(c).UserID, service.AvatarUpload{
		Filename:    submittedFilename(fh),
		Size:        fh.Size,
		ContentType: fh.Header.Get("Content-Type"),
		Body:        file,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	message(c, http.StatusOK, url)
}

// multipartOverhead allows for boundaries and part headers around the file.
const multipartOverhead = 64 << 10

// submittedFilename returns the filename as the client sent it. FileHeader.Filename
// is already reduced to its base name, which would hide path segments.
func submittedFilename(fh *multipart.FileHeader) string {
	_, params, err := mime.ParseMediaType(fh.Header.Get("Content-Disposition"))
	if err == nil {
		if name, ok := params["filename"]; ok {
			return name
		}
	}
	return fh.Filename
}

func (h *Handler) deleteAccount(c *gin.Context) {
	if err := h.users.DeleteAccount(c.Request.Context(), identity(c).UserID); err != nil {
		h.fail(c, err)
		return
	}
	message(c, http.StatusOK, "Account deleted successfully")
}
