package handlers

import (
	"net/http"

	"taskmanager/internal/auth"
	dom "taskmanager/internal/domain"
	"taskmanager/internal/dto"
	"taskmanager/internal/service"

	"github.com/gin-gonic/gin"
)

type ReminderHandler struct {
	svc *service.ReminderService
	dev bool
}

func NewReminderHandler(svc *service.ReminderService, dev bool) *ReminderHandler {
	return &ReminderHandler{svc: svc, dev: dev}
}

// Check godoc
// @Summary      Caller's tasks due within 24 hours
// @Tags         reminders
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.RemindersResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /tasks/reminders/check [get]
func (h *ReminderHandler) Check(c *gin.Context) {
	list, err := h.svc.DueSoon(c.Request.Context())
	if err != nil {
		writeError(c, h.dev, err)
		return
	}
	userID := auth.UserIDFromContext(c)
	own := make([]dom.Task, 0, len(list))
	for _, t := range list {
		if t.UserID == userID {
			own = append(own, t)
		}
	}
	c.JSON(http.StatusOK, dto.RemindersResponse{Count: len(own), Items: tasksToResponses(own)})
}

// Trigger godoc
// @Summary      Send reminders for tasks due within 24 hours
// @Tags         reminders
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.TriggerRemindersResponse
// @Router       /tasks/reminders/trigger [post]
func (h *ReminderHandler) Trigger(c *gin.Context) {
	n := h.svc.ScheduleReminders(c.Request.Context())
	c.JSON(http.StatusOK, dto.TriggerRemindersResponse{Processed: n})
}
