package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"signalist/internal/model"

	"github.com/gin-gonic/gin"
)

type DigestRunner interface {
	RunDaily(ctx context.Context) (*model.RunReport, error)
	InFlight() bool
}

type ReportStore interface {
	StoreLastRunReport(reportJSON string) error
	GetLastRunReport() (string, error)
}

type UserStore interface {
	GetByEmail(ctx context.Context, email string) (*model.User, error)
}

type WelcomeSender interface {
	Send(ctx context.Context, user model.User) error
}

type DigestHandler struct {
	runner  DigestRunner
	reports ReportStore
	users   UserStore
	welcome WelcomeSender
}

func NewDigestHandler(runner DigestRunner, reports ReportStore, users UserStore, welcome WelcomeSender) *DigestHandler {
	return &DigestHandler{
		runner:  runner,
		reports: reports,
		users:   users,
		welcome: welcome,
	}
}

// TriggerRun is the on-demand entry point. It converges on the same
// RunDaily logic the cron trigger uses and returns immediately; the run
// itself proceeds in the background and its report lands in the store.
func (h *DigestHandler) TriggerRun(c *gin.Context) {
	if h.runner.InFlight() {
		c.JSON(http.StatusConflict, gin.H{"error": "A digest run is already in progress"})
		return
	}

	go func() {
		report, err := h.runner.RunDaily(context.Background())
		if err != nil {
			slog.Error("on-demand digest run failed", "error", err)
		}

		if report == nil {
			return
		}

		data, err := json.Marshal(report)
		if err != nil {
			slog.Error("error marshalling run report", "error", err)
			return
		}

		if err := h.reports.StoreLastRunReport(string(data)); err != nil {
			slog.Error("error storing run report", "error", err)
		}
	}()

	c.JSON(http.StatusAccepted, gin.H{"message": "Digest run started"})
}

func (h *DigestHandler) GetLatestReport(c *gin.Context) {
	raw, err := h.reports.GetLastRunReport()
	if err != nil {
		slog.Error("error fetching latest run report", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Report store error"})
		return
	}

	if raw == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "No run report available"})
		return
	}

	var report model.RunReport
	if err := json.Unmarshal([]byte(raw), &report); err != nil {
		slog.Error("error parsing stored run report", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Report store error"})
		return
	}

	c.JSON(http.StatusOK, report)
}

func (h *DigestHandler) SendWelcome(c *gin.Context) {
	var req WelcomeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A valid email is required"})
		return
	}

	user, err := h.users.GetByEmail(c.Request.Context(), req.Email)
	if err != nil {
		slog.Error("error fetching user for welcome email", "email", req.Email, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	if err := h.welcome.Send(c.Request.Context(), *user); err != nil {
		slog.Error("error sending welcome email", "email", req.Email, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to send welcome email"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Welcome email sent"})
}
