package handlers

import (
  "net/http"
  "strings"
  "github.com/gin-gonic/gin"
  "github.com/google/uuid"
  "github.com/koclukapp/kocluk-backend/internal/requestdata"
  "github.com/koclukapp/kocluk-backend/internal/services"
)

type TaskHandler struct {
  taskService services.TaskService
}

func NewTaskHandler(taskService services.TaskService) *TaskHandler {
  return &TaskHandler{taskService: taskService}
}

// POST /api/tasks
func (th *TaskHandler) Create(c *gin.Context) {
  var req services.TaskCreate
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_request", err)
    return
  }
  task, err := th.taskService.CreateTask(c.Request.Context(), req)
  if err != nil {
    RespondError(c, http.StatusBadRequest, "create_task_failed", err)
    return
  }
  RespondOK(c, gin.H{"task": task})
}

// GET /api/tasks?student_id=<id>&group_by=subject
func (th *TaskHandler) List(c *gin.Context) {
  studentID, err := th.resolveStudentID(c)
  if err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_student_id", err)
    return
  }
  if strings.TrimSpace(c.Query("group_by")) == "subject" {
    grouped, gErr := th.taskService.ListForStudentBySubject(c.Request.Context(), studentID)
    if gErr != nil {
      RespondError(c, http.StatusBadRequest, "list_tasks_failed", gErr)
      return
    }
    RespondOK(c, gin.H{"tasks_by_subject": grouped})
    return
  }
  tasks, err := th.taskService.ListForStudent(c.Request.Context(), studentID)
  if err != nil {
    RespondError(c, http.StatusBadRequest, "list_tasks_failed", err)
    return
  }
  RespondOK(c, gin.H{"tasks": tasks})
}

// POST /api/tasks/:id/submit
func (th *TaskHandler) Submit(c *gin.Context) {
  taskID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_task_id", err)
    return
  }
  task, err := th.taskService.SubmitTask(c.Request.Context(), taskID)
  if err != nil {
    RespondError(c, http.StatusBadRequest, "submit_task_failed", err)
    return
  }
  RespondOK(c, gin.H{"task": task})
}

// POST /api/tasks/:id/review
func (th *TaskHandler) Review(c *gin.Context) {
  taskID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_task_id", err)
    return
  }
  var req services.TaskReview
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_request", err)
    return
  }
  task, err := th.taskService.ReviewTask(c.Request.Context(), taskID, req)
  if err != nil {
    RespondError(c, http.StatusBadRequest, "review_task_failed", err)
    return
  }
  RespondOK(c, gin.H{"task": task})
}

// DELETE /api/tasks/:id
func (th *TaskHandler) Delete(c *gin.Context) {
  taskID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_task_id", err)
    return
  }
  affected, err := th.taskService.DeleteTask(c.Request.Context(), taskID)
  if err != nil {
    RespondError(c, http.StatusBadRequest, "delete_task_failed", err)
    return
  }
  RespondOK(c, gin.H{"deleted": affected})
}

// GET /api/tasks/analytics?student_id=<id>&window=7d
func (th *TaskHandler) Analytics(c *gin.Context) {
  studentID, err := th.resolveStudentID(c)
  if err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_student_id", err)
    return
  }
  window := strings.TrimSpace(c.Query("window"))
  if window == "" {
    window = services.AnalyticsWindowAll
  }
  aggregates, err := th.taskService.Analytics(c.Request.Context(), studentID, window)
  if err != nil {
    RespondError(c, http.StatusBadRequest, "analytics_failed", err)
    return
  }
  RespondOK(c, gin.H{"window": window, "aggregates": aggregates})
}

// GET /api/tasks/reading-summary?student_id=<id>
func (th *TaskHandler) ReadingSummary(c *gin.Context) {
  studentID, err := th.resolveStudentID(c)
  if err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_student_id", err)
    return
  }
  weeks, err := th.taskService.ReadingSummary(c.Request.Context(), studentID)
  if err != nil {
    RespondError(c, http.StatusBadRequest, "reading_summary_failed", err)
    return
  }
  RespondOK(c, gin.H{"weeks": weeks})
}

func (th *TaskHandler) resolveStudentID(c *gin.Context) (uuid.UUID, error) {
  raw := strings.TrimSpace(c.Query("student_id"))
  if raw == "" {
    // students query their own tasks without a student_id parameter
    if rd := requestdata.GetRequestData(c.Request.Context()); rd != nil {
      return rd.UserID, nil
    }
  }
  return uuid.Parse(raw)
}
