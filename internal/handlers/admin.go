package handlers

import (
  "net/http"
  "strings"
  "github.com/gin-gonic/gin"
  "github.com/google/uuid"
  "github.com/koclukapp/kocluk-backend/internal/services"
)

type AdminHandler struct {
  adminService services.AdminService
}

func NewAdminHandler(adminService services.AdminService) *AdminHandler {
  return &AdminHandler{adminService: adminService}
}

// GET /api/admin/users
func (ah *AdminHandler) ListUsers(c *gin.Context) {
  users, err := ah.adminService.ListUsers(c.Request.Context())
  if err != nil {
    RespondError(c, http.StatusBadRequest, "list_users_failed", err)
    return
  }
  RespondOK(c, gin.H{"users": users})
}

// PATCH /api/admin/users/:id
func (ah *AdminHandler) UpdateUser(c *gin.Context) {
  userID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_user_id", err)
    return
  }
  var req services.AdminUserUpdate
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_request", err)
    return
  }
  user, err := ah.adminService.UpdateUser(c.Request.Context(), userID, req)
  if err != nil {
    RespondError(c, http.StatusBadRequest, "update_user_failed", err)
    return
  }
  RespondOK(c, gin.H{"user": user})
}

// DELETE /api/admin/users/:id
func (ah *AdminHandler) DeleteUser(c *gin.Context) {
  userID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_user_id", err)
    return
  }
  if err := ah.adminService.DeleteUser(c.Request.Context(), userID); err != nil {
    RespondError(c, http.StatusBadRequest, "delete_user_failed", err)
    return
  }
  RespondOK(c, gin.H{"message": "user deleted"})
}

// POST /api/admin/students/:id/reassign
func (ah *AdminHandler) ReassignStudent(c *gin.Context) {
  studentID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_student_id", err)
    return
  }
  var req struct {
    CoachID string `json:"coach_id"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_request", err)
    return
  }
  if err := ah.adminService.ReassignStudent(c.Request.Context(), studentID, req.CoachID); err != nil {
    RespondError(c, http.StatusBadRequest, "reassign_student_failed", err)
    return
  }
  RespondOK(c, gin.H{"message": "student reassigned"})
}

// GET /api/admin/username-check?username=<name>
func (ah *AdminHandler) CheckUsername(c *gin.Context) {
  username := strings.TrimSpace(c.Query("username"))
  exists, err := ah.adminService.UsernameExists(c.Request.Context(), username)
  if err != nil {
    RespondError(c, http.StatusBadRequest, "username_check_failed", err)
    return
  }
  RespondOK(c, gin.H{"username": username, "exists": exists})
}

// GET /api/admin/backup
func (ah *AdminHandler) Backup(c *gin.Context) {
  snapshot, err := ah.adminService.Backup(c.Request.Context())
  if err != nil {
    RespondError(c, http.StatusBadRequest, "backup_failed", err)
    return
  }
  RespondOK(c, snapshot)
}

// POST /api/admin/restore
func (ah *AdminHandler) Restore(c *gin.Context) {
  var snapshot services.BackupSnapshot
  if err := c.ShouldBindJSON(&snapshot); err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_snapshot", err)
    return
  }
  if err := ah.adminService.Restore(c.Request.Context(), &snapshot); err != nil {
    RespondError(c, http.StatusBadRequest, "restore_failed", err)
    return
  }
  RespondOK(c, gin.H{"message": "restore completed"})
}

// POST /api/admin/clear
func (ah *AdminHandler) ClearAll(c *gin.Context) {
  if err := ah.adminService.ClearAll(c.Request.Context()); err != nil {
    RespondError(c, http.StatusBadRequest, "clear_failed", err)
    return
  }
  RespondOK(c, gin.H{"message": "all data cleared"})
}
