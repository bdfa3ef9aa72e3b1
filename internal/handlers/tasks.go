package handlers

import (
	"net/http"

	"todo-manager/backend/internal/errs"
	"todo-manager/backend/internal/middleware"
	"todo-manager/backend/internal/models"
	"todo-manager/backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
)

type TaskHandler struct {
	taskService services.TaskService
}

type CreateTaskRequest struct {
	Title string `json:"title"`
}

// UpdateTaskRequest fields are optional; absent fields are left unchanged.
type UpdateTaskRequest struct {
	Title     *string `json:"title"`
	Completed *bool   `json:"completed"`
}

type DeleteTaskResponse struct {
	Message string    `json:"message"`
	ID      uuid.UUID `json:"id"`
}

func NewTaskHandler(taskService services.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

// owner reads the authenticated user. Routes are always mounted behind middleware.Authenticate.
func owner(c *gin.Context) (uuid.UUID, bool) {
	id, ok := middleware.UserID(c)
	if !ok {
		respondError(c, errs.ErrMissingToken)
	}
	return id, ok
}

// taskID parses the :id parameter. Anything that is not a UUID cannot name a task.
func taskID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.FromString(c.Param("id"))
	if err != nil || id == uuid.Nil {
		respondError(c, errs.ErrTaskNotFound)
		return uuid.Nil, false
	}
	return id, true
}

func (h *TaskHandler) ListTasks(c *gin.Context) {
	ownerID, ok := owner(c)
	if !ok {
		return
	}

	tasks, err := h.taskService.List(c.Request.Context(), ownerID)
	if err != nil {
		respondError(c, err)
		return
	}
	if tasks == nil {
		tasks = []models.Task{}
	}

	c.JSON(http.StatusOK, tasks)
}

func (h *TaskHandler) GetTask(c *gin.Context) {
	ownerID, ok := owner(c)
	if !ok {
		return
	}
	id, ok := taskID(c)
	if !ok {
		return
	}

	task, err := h.taskService.Get(c.Request.Context(), ownerID, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) CreateTask(c *gin.Context) {
	ownerID, ok := owner(c)
	if !ok {
		return
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadBody(c, err)
		return
	}

	task, err := h.taskService.Create(c.Request.Context(), ownerID, req.Title)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, task)
}

func (h *TaskHandler) UpdateTask(c *gin.Context) {
	ownerID, ok := owner(c)
	if !ok {
		return
	}
	id, ok := taskID(c)
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadBody(c, err)
		return
	}

	patch := models.TaskPatch{Title: req.Title, Completed: req.Completed}
	task, err := h.taskService.Update(c.Request.Context(), ownerID, id, patch)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) DeleteTask(c *gin.Context) {
	ownerID, ok := owner(c)
	if !ok {
		return
	}
	id, ok := taskID(c)
	if !ok {
		return
	}

	deleted, err := h.taskService.Delete(c.Request.Context(), ownerID, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, DeleteTaskResponse{Message: "Task deleted successfully", ID: deleted})
}
