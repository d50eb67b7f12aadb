package handlers

import (
  "net/http"
  "strings"
  "github.com/gin-gonic/gin"
  "github.com/google/uuid"
  "github.com/koclukapp/kocluk-backend/internal/requestdata"
  "github.com/koclukapp/kocluk-backend/internal/services"
)

type RewardHandler struct {
  rewardService services.RewardService
}

func NewRewardHandler(rewardService services.RewardService) *RewardHandler {
  return &RewardHandler{rewardService: rewardService}
}

// POST /api/rewards
func (rh *RewardHandler) Create(c *gin.Context) {
  var req services.RewardCreate
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_request", err)
    return
  }
  reward, err := rh.rewardService.CreateReward(c.Request.Context(), req)
  if err != nil {
    RespondError(c, http.StatusBadRequest, "create_reward_failed", err)
    return
  }
  RespondOK(c, gin.H{"reward": reward})
}

// GET /api/rewards?student_id=<id>
func (rh *RewardHandler) List(c *gin.Context) {
  studentID, err := resolveStudentParam(c)
  if err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_student_id", err)
    return
  }
  rewards, err := rh.rewardService.ListForStudent(c.Request.Context(), studentID)
  if err != nil {
    RespondError(c, http.StatusBadRequest, "list_rewards_failed", err)
    return
  }
  RespondOK(c, gin.H{"rewards": rewards})
}

// POST /api/rewards/:id/claim
func (rh *RewardHandler) Claim(c *gin.Context) {
  rewardID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_reward_id", err)
    return
  }
  reward, err := rh.rewardService.ClaimReward(c.Request.Context(), rewardID)
  if err != nil {
    RespondError(c, http.StatusBadRequest, "claim_reward_failed", err)
    return
  }
  RespondOK(c, gin.H{"reward": reward})
}

// DELETE /api/rewards/:id
func (rh *RewardHandler) Delete(c *gin.Context) {
  rewardID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_reward_id", err)
    return
  }
  affected, err := rh.rewardService.DeleteReward(c.Request.Context(), rewardID)
  if err != nil {
    RespondError(c, http.StatusBadRequest, "delete_reward_failed", err)
    return
  }
  RespondOK(c, gin.H{"deleted": affected})
}

func resolveStudentParam(c *gin.Context) (uuid.UUID, error) {
  raw := strings.TrimSpace(c.Query("student_id"))
  if raw == "" {
    if rd := requestdata.GetRequestData(c.Request.Context()); rd != nil {
      return rd.UserID, nil
    }
  }
  return uuid.Parse(raw)
}
