package handlers

import (
  "net/http"
  "github.com/gin-gonic/gin"
  "github.com/google/uuid"
  "github.com/koclukapp/kocluk-backend/internal/services"
)

type PairHandler struct {
  pairService services.PairService
}

func NewPairHandler(pairService services.PairService) *PairHandler {
  return &PairHandler{pairService: pairService}
}

// GET /api/students
func (ph *PairHandler) ListMyStudents(c *gin.Context) {
  students, err := ph.pairService.ListMyStudents(c.Request.Context())
  if err != nil {
    RespondError(c, http.StatusBadRequest, "list_students_failed", err)
    return
  }
  RespondOK(c, gin.H{"students": students})
}

// GET /api/students/unassigned
func (ph *PairHandler) ListUnassignedStudents(c *gin.Context) {
  students, err := ph.pairService.ListUnassignedStudents(c.Request.Context())
  if err != nil {
    RespondError(c, http.StatusBadRequest, "list_unassigned_failed", err)
    return
  }
  RespondOK(c, gin.H{"students": students})
}

// POST /api/students/:id/claim
func (ph *PairHandler) ClaimStudent(c *gin.Context) {
  studentID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_student_id", err)
    return
  }
  pair, err := ph.pairService.ClaimStudent(c.Request.Context(), studentID)
  if err != nil {
    RespondError(c, http.StatusBadRequest, "claim_student_failed", err)
    return
  }
  RespondOK(c, gin.H{"pair": pair})
}

// DELETE /api/students/:id
func (ph *PairHandler) UnpairStudent(c *gin.Context) {
  studentID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_student_id", err)
    return
  }
  if err := ph.pairService.UnpairStudent(c.Request.Context(), studentID); err != nil {
    RespondError(c, http.StatusBadRequest, "unpair_student_failed", err)
    return
  }
  RespondOK(c, gin.H{"message": "student unpaired"})
}

// GET /api/coach
func (ph *PairHandler) GetMyCoach(c *gin.Context) {
  coach, err := ph.pairService.GetMyCoach(c.Request.Context())
  if err != nil {
    RespondError(c, http.StatusBadRequest, "get_coach_failed", err)
    return
  }
  RespondOK(c, gin.H{"coach": coach})
}
