package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/bookcatalog/internal/logger"
	"github.com/mrlokans/bookcatalog/internal/tasks"
)

// TasksController handles task status and maintenance triggers.
type TasksController struct {
	queue  TaskQueue
	pruner LinkPruner
	log    *logger.Logger
}

// NewTasksController creates a TasksController. Either queue or pruner may be
// nil; without a queue the sweep runs inside the request.
func NewTasksController(queue TaskQueue, pruner LinkPruner, log *logger.Logger) *TasksController {
	if log == nil {
		log = logger.NewNop()
	}
	return &TasksController{queue: queue, pruner: pruner, log: log}
}

// GetTaskStatus handles GET /tasks/:id
func (tc *TasksController) GetTaskStatus(c *gin.Context) {
	if tc.queue == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "task queue is disabled"})
		return
	}
	taskID := c.Param("id")
	if taskID == "" {
		respondBadRequest(c, "task ID is required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	status, err := tc.queue.Status(ctx, taskID)
	if err != nil {
		tc.log.Error("task status lookup failed", "task_id", taskID, "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}
	if status == backlite.TaskStatusNotFound {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "task not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":     taskID,
		"status": taskStatusToString(status),
	})
}

// PruneLinks handles POST /admin/maintenance/prune-links. It enqueues a
// sweep when the queue is enabled and otherwise runs it immediately.
func (tc *TasksController) PruneLinks(c *gin.Context) {
	if tc.queue != nil {
		id, err := tc.queue.Enqueue(tasks.PruneDanglingLinksTask{Trigger: "admin"})
		if err != nil {
			tc.log.Error("failed to enqueue dangling link sweep", "error", err)
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
			return
		}
		c.JSON(http.StatusAccepted, gin.H{
			"message": "dangling link sweep queued",
			"task_id": id,
		})
		return
	}

	if tc.pruner == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "maintenance is not configured"})
		return
	}
	report, err := tc.pruner.PruneDanglingLinks(c.Request.Context())
	if err != nil {
		respondAppError(c, tc.log, err, "maintenance.prune_links")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "dangling links pruned",
		"report":  report,
		"total":   report.Total(),
	})
}

func taskStatusToString(status backlite.TaskStatus) string {
	switch status {
	case backlite.TaskStatusPending:
		return "pending"
	case backlite.TaskStatusRunning:
		return "running"
	case backlite.TaskStatusSuccess:
		return "success"
	case backlite.TaskStatusFailure:
		return "failure"
	case backlite.TaskStatusNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}
