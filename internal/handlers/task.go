package handlers

import (
	"net/http"
	"strconv"

	"taskmanager/internal/auth"
	dom "taskmanager/internal/domain"
	"taskmanager/internal/dto"
	"taskmanager/internal/service"

	"github.com/gin-gonic/gin"
)

type TaskHandler struct {
	svc *service.TaskService
	dev bool
}

func NewTaskHandler(svc *service.TaskService, dev bool) *TaskHandler {
	return &TaskHandler{svc: svc, dev: dev}
}

// List godoc
// @Summary      List tasks
// @Description  Filtered, sorted and paginated tasks plus stats over all of the caller's tasks. isArchived defaults to false.
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        status      query     string  false  "all | completed | pending"
// @Param        category    query     string  false  "Category"
// @Param        priority    query     string  false  "low | medium | high"
// @Param        tags        query     string  false  "Comma separated; task must carry all of them"
// @Param        search      query     string  false  "Case-insensitive match on title or description"
// @Param        isArchived  query     bool    false  "Archived flag"
// @Param        sortBy      query     string  false  "title | createdAt | updatedAt | dueDate | priority"
// @Param        sortOrder   query     string  false  "asc | desc"
// @Param        limit       query     int     false  "Page size (default 20)"
// @Param        offset      query     int     false  "Offset"
// @Success      200  {object}  dto.TaskPageResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /tasks [get]
func (h *TaskHandler) List(c *gin.Context) {
	var q dto.ListTasksQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, h.dev, err)
		return
	}
	h.listPage(c, q.Filter())
}

// Archived godoc
// @Summary      List archived tasks
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        limit   query     int  false  "Page size (default 20)"
// @Param        offset  query     int  false  "Offset"
// @Success      200  {object}  dto.TaskPageResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /tasks/archived [get]
func (h *TaskHandler) Archived(c *gin.Context) {
	var q dto.ListTasksQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, h.dev, err)
		return
	}
	f := q.Filter()
	archived := true
	f.IsArchived = &archived
	h.listPage(c, f)
}

// ByCategory godoc
// @Summary      List unarchived tasks of one category
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        category  path      string  true  "Category"
// @Success      200  {object}  dto.TaskPageResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /tasks/category/{category} [get]
func (h *TaskHandler) ByCategory(c *gin.Context) {
	category := dom.Category(c.Param("category"))
	if !category.Valid() {
		writeError(c, h.dev, dom.Validation("invalid category"))
		return
	}
	var q dto.ListTasksQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, h.dev, err)
		return
	}
	f := q.Filter()
	f.Category = &category
	archived := false
	f.IsArchived = &archived
	h.listPage(c, f)
}

func (h *TaskHandler) listPage(c *gin.Context, f dom.TaskFilter) {
	page, err := h.svc.List(c.Request.Context(), auth.UserIDFromContext(c), f)
	if err != nil {
		writeError(c, h.dev, err)
		return
	}
	c.JSON(http.StatusOK, pageToResponse(page))
}

// Stats godoc
// @Summary      Task statistics
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.StatsResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /tasks/stats [get]
func (h *TaskHandler) Stats(c *gin.Context) {
	stats, err := h.svc.Stats(c.Request.Context(), auth.UserIDFromContext(c))
	if err != nil {
		writeError(c, h.dev, err)
		return
	}
	c.JSON(http.StatusOK, statsToResponse(stats))
}

// Overdue godoc
// @Summary      List overdue tasks
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.ListTasksResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /tasks/overdue [get]
func (h *TaskHandler) Overdue(c *gin.Context) {
	list, err := h.svc.Overdue(c.Request.Context(), auth.UserIDFromContext(c))
	if err != nil {
		writeError(c, h.dev, err)
		return
	}
	c.JSON(http.StatusOK, dto.ListTasksResponse{Items: tasksToResponses(list)})
}

// Create godoc
// @Summary      Create a task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      dto.CreateTaskRequest  true  "Task body"
// @Success      201   {object}  dto.TaskResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /tasks [post]
func (h *TaskHandler) Create(c *gin.Context) {
	var req dto.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.dev, err)
		return
	}
	t, err := h.svc.Create(c.Request.Context(), auth.UserIDFromContext(c), req.Task())
	if err != nil {
		writeError(c, h.dev, err)
		return
	}
	c.JSON(http.StatusCreated, taskToResponse(t))
}

// GetByID godoc
// @Summary      Get a task by ID
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Task ID"
// @Success      200  {object}  dto.TaskResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /tasks/{id} [get]
func (h *TaskHandler) GetByID(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	t, err := h.svc.Get(c.Request.Context(), auth.UserIDFromContext(c), id)
	if err != nil {
		writeError(c, h.dev, err)
		return
	}
	c.JSON(http.StatusOK, taskToResponse(t))
}

// Update godoc
// @Summary      Update a task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int                    true  "Task ID"
// @Param        body  body      dto.UpdateTaskRequest  true  "Partial update"
// @Success      200   {object}  dto.TaskResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /tasks/{id} [put]
func (h *TaskHandler) Update(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	var req dto.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.dev, err)
		return
	}
	t, err := h.svc.Update(c.Request.Context(), auth.UserIDFromContext(c), id, req.Patch())
	if err != nil {
		writeError(c, h.dev, err)
		return
	}
	c.JSON(http.StatusOK, taskToResponse(t))
}

// Archive godoc
// @Summary      Archive or unarchive a task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int                 true   "Task ID"
// @Param        body  body      dto.ArchiveRequest  false  "archive defaults to true"
// @Success      200   {object}  dto.TaskResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /tasks/{id}/archive [patch]
func (h *TaskHandler) Archive(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	var req dto.ArchiveRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, h.dev, err)
			return
		}
	}
	archive := req.Archive == nil || *req.Archive
	t, err := h.svc.Archive(c.Request.Context(), auth.UserIDFromContext(c), id, archive)
	if err != nil {
		writeError(c, h.dev, err)
		return
	}
	c.JSON(http.StatusOK, taskToResponse(t))
}

// BulkUpdate godoc
// @Summary      Apply one update to many tasks
// @Description  Ids the caller does not own are skipped; only updated tasks are returned.
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      dto.BulkUpdateRequest  true  "Ids and update"
// @Success      200   {object}  dto.ListTasksResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /tasks [put]
func (h *TaskHandler) BulkUpdate(c *gin.Context) {
	var req dto.BulkUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.dev, err)
		return
	}
	list, err := h.svc.BulkUpdate(c.Request.Context(), auth.UserIDFromContext(c), req.TaskIDs, req.Updates.Patch())
	if err != nil {
		writeError(c, h.dev, err)
		return
	}
	c.JSON(http.StatusOK, dto.ListTasksResponse{Items: tasksToResponses(list)})
}

// Delete godoc
// @Summary      Delete a task
// @Tags         tasks
// @Security     BearerAuth
// @Param        id   path  int  true  "Task ID"
// @Success      204
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /tasks/{id} [delete]
func (h *TaskHandler) Delete(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), auth.UserIDFromContext(c), id); err != nil {
		writeError(c, h.dev, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *TaskHandler) parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(c, h.dev, dom.Validation("invalid task id"))
		return 0, false
	}
	return id, true
}

func taskToResponse(t dom.Task) dto.TaskResponse {
	tags := t.Tags
	if tags == nil {
		tags = []string{}
	}
	return dto.TaskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Completed:   t.Completed,
		Priority:    string(t.Priority),
		Category:    string(t.Category),
		Tags:        tags,
		DueDate:     t.DueDate,
		IsArchived:  t.IsArchived,
		CompletedAt: t.CompletedAt,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func tasksToResponses(list []dom.Task) []dto.TaskResponse {
	out := make([]dto.TaskResponse, len(list))
	for i := range list {
		out[i] = taskToResponse(list[i])
	}
	return out
}

func pageToResponse(p dom.TaskPage) dto.TaskPageResponse {
	return dto.TaskPageResponse{
		Tasks: tasksToResponses(p.Items),
		Pagination: dto.PaginationResponse{
			Total:   p.Pagination.Total,
			Limit:   p.Pagination.Limit,
			Offset:  p.Pagination.Offset,
			HasNext: p.Pagination.HasNext,
			HasPrev: p.Pagination.HasPrev,
		},
		Stats: statsToResponse(p.Stats),
	}
}

func statsToResponse(s dom.TaskStats) dto.StatsResponse {
	out := dto.StatsResponse{
		Total:          s.Total,
		Completed:      s.Completed,
		Pending:        s.Pending,
		Overdue:        s.Overdue,
		Archived:       s.Archived,
		Upcoming:       s.Upcoming,
		CompletionRate: s.CompletionRate,
		CategoryStats:  make(map[string]int, len(s.CategoryStats)),
		PriorityStats:  make(map[string]int, len(s.PriorityStats)),
	}
	for k, v := range s.CategoryStats {
		out.CategoryStats[string(k)] = v
	}
	for k, v := range s.PriorityStats {
		out.PriorityStats[string(k)] = v
	}
	return out
}
