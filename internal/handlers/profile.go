package handlers

import (
  "net/http"
  "strings"
  "github.com/gin-gonic/gin"
  "github.com/koclukapp/kocluk-backend/internal/services"
)

type ProfileHandler struct {
  profileService services.ProfileService
}

func NewProfileHandler(profileService services.ProfileService) *ProfileHandler {
  return &ProfileHandler{profileService: profileService}
}

func (ph *ProfileHandler) GetMe(c *gin.Context) {
  me, err := ph.profileService.GetMe(c.Request.Context())
  if err != nil {
    RespondError(c, http.StatusUnauthorized, "profile_not_found", err)
    return
  }
  RespondOK(c, gin.H{"me": me})
}

func (ph *ProfileHandler) UpdateMe(c *gin.Context) {
  var req services.ProfileUpdate
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_request", err)
    return
  }
  me, err := ph.profileService.UpdateMe(c.Request.Context(), req)
  if err != nil {
    RespondError(c, http.StatusBadRequest, "update_failed", err)
    return
  }
  RespondOK(c, gin.H{"me": me})
}

func (ph *ProfileHandler) CheckUsername(c *gin.Context) {
  username := strings.TrimSpace(c.Query("username"))
  available, err := ph.profileService.UsernameAvailable(c.Request.Context(), username)
  if err != nil {
    RespondError(c, http.StatusBadRequest, "username_check_failed", err)
    return
  }
  RespondOK(c, gin.H{"username": username, "available": available})
}
