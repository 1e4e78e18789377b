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

const defaultTimeframeDays = 30

type AnalyticsHandler struct {
	svc *service.AnalyticsService
	dev bool
}

func NewAnalyticsHandler(svc *service.AnalyticsService, dev bool) *AnalyticsHandler {
	return &AnalyticsHandler{svc: svc, dev: dev}
}

// Analytics godoc
// @Summary      Completion analytics
// @Description  Completions over the last N days compared with the N days before.
// @Tags         analytics
// @Produce      json
// @Security     BearerAuth
// @Param        timeframe  query     int  false  "Window in days, 1..365 (default 30)"
// @Success      200  {object}  dto.AnalyticsResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /tasks/analytics [get]
func (h *AnalyticsHandler) Analytics(c *gin.Context) {
	days := defaultTimeframeDays
	if raw := c.Query("timeframe"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(c, h.dev, dom.Validation("timeframe must be a number of days"))
			return
		}
		days = n
	}
	a, err := h.svc.Analytics(c.Request.Context(), auth.UserIDFromContext(c), days)
	if err != nil {
		writeError(c, h.dev, err)
		return
	}
	out := dto.AnalyticsResponse{
		CompletedTasksOverTime: make([]dto.DailyCountResponse, len(a.CompletedOverTime)),
		TasksByCategory:        make(map[string]int, len(a.TasksByCategory)),
		TasksByPriority:        make(map[string]int, len(a.TasksByPriority)),
		AverageCompletionTime:  a.AverageCompletionHours,
		ProductivityTrend:      a.ProductivityTrend,
		TotalTasksInPeriod:     a.TotalTasksInPeriod,
		CompletedTasksInPeriod: a.CompletedTasksInPeriod,
	}
	for i, d := range a.CompletedOverTime {
		out.CompletedTasksOverTime[i] = dto.DailyCountResponse{Date: d.Date, Count: d.Count}
	}
	for k, v := range a.TasksByCategory {
		out.TasksByCategory[string(k)] = v
	}
	for k, v := range a.TasksByPriority {
		out.TasksByPriority[string(k)] = v
	}
	c.JSON(http.StatusOK, out)
}

// Insights godoc
// @Summary      Productivity insights over the last 30 days
// @Tags         analytics
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.InsightsResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /tasks/insights [get]
func (h *AnalyticsHandler) Insights(c *gin.Context) {
	in, err := h.svc.Insights(c.Request.Context(), auth.UserIDFromContext(c))
	if err != nil {
		writeError(c, h.dev, err)
		return
	}
	out := dto.InsightsResponse{
		MostProductiveCategory:  string(in.MostProductiveCategory),
		LeastProductiveCategory: string(in.LeastProductiveCategory),
		AverageTasksPerDay:      in.AverageTasksPerDay,
		BestCompletionDay:       in.BestCompletionDay,
		RecommendedFocus:        string(in.RecommendedFocus),
		StreakDays:              in.StreakDays,
		TimeToComplete:          make(map[string]float64, len(in.TimeToComplete)),
	}
	for k, v := range in.TimeToComplete {
		out.TimeToComplete[string(k)] = v
	}
	c.JSON(http.StatusOK, out)
}
