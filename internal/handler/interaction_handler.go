package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"objectivebot/internal/model"
	"objectivebot/internal/service/objective"
	"objectivebot/pkg/metrics"
)

// Structured command outcomes. The presentation layer on the chat side turns
// these into messages; the core never formats user-facing strings.
const (
	OutcomeAccepted           = "accepted"
	OutcomeCooldownActive     = "cooldown_active"
	OutcomeSubmissionInFlight = "submission_in_flight"
	OutcomeCreated            = "created"
	OutcomeDeleted            = "deleted"
	OutcomeEmpty              = "empty"
	OutcomeNotFound           = "not_found"
	OutcomeAlreadyExists      = "already_exists"
	OutcomeMissingBoth        = "missing_both"
	OutcomeMissingImage       = "missing_image"
	OutcomeMissingObjective   = "missing_objective"
	OutcomeMissingFields      = "missing_fields"
	OutcomeMissingName        = "missing_name"
)

type InteractionHandler struct {
	objectives *objective.Service
	logger     *zap.Logger
}

func NewInteractionHandler(objectives *objective.Service, logger *zap.Logger) *InteractionHandler {
	return &InteractionHandler{
		objectives: objectives,
		logger:     logger,
	}
}

type interactionRequest struct {
	UserID  string `json:"user_id"`
	Command string `json:"command"`
	Options struct {
		Objective string `json:"objective"`
		Name      string `json:"name"`
		Frequency string `json:"frequency"`
	} `json:"options"`
	Attachment *struct {
		URL string `json:"url"`
	} `json:"attachment"`
}

// HandleInteraction handles POST /interactions: the slash-command webhook.
// Signature verification happens upstream of this service.
func (h *InteractionHandler) HandleInteraction(c *gin.Context) {
	var req interactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if req.UserID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id required"})
		return
	}

	h.logger.Info("Interaction received",
		zap.String("command", req.Command),
		zap.String("user_id", req.UserID),
		zap.String("client_ip", c.ClientIP()),
	)

	switch req.Command {
	case "submit":
		h.submit(c, req)
	case "create_objective":
		h.createObjective(c, req)
	case "list_objectives":
		h.listObjectives(c, req)
	case "delete_objective":
		h.deleteObjective(c, req)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown command"})
	}
}

func outcome(c *gin.Context, command string, status int, name string, extra gin.H) {
	metrics.RecordCommandOutcome(command, name)
	body := gin.H{"outcome": name}
	for k, v := range extra {
		body[k] = v
	}
	c.JSON(status, body)
}

func (h *InteractionHandler) submit(c *gin.Context, req interactionRequest) {
	name := strings.TrimSpace(req.Options.Objective)
	hasImage := req.Attachment != nil && req.Attachment.URL != ""

	switch {
	case name == "" && !hasImage:
		outcome(c, req.Command, http.StatusBadRequest, OutcomeMissingBoth, nil)
		return
	case !hasImage:
		outcome(c, req.Command, http.StatusBadRequest, OutcomeMissingImage, nil)
		return
	case name == "":
		outcome(c, req.Command, http.StatusBadRequest, OutcomeMissingObjective, nil)
		return
	}

	result, err := h.objectives.Submit(c.Request.Context(), req.UserID, name, req.Attachment.URL)
	if err != nil {
		var cooldown *objective.CooldownError
		switch {
		case errors.Is(err, objective.ErrNotFound):
			outcome(c, req.Command, http.StatusNotFound, OutcomeNotFound, nil)
		case errors.As(err, &cooldown):
			outcome(c, req.Command, http.StatusTooManyRequests, OutcomeCooldownActive, gin.H{
				"next_allowed": cooldown.NextAllowed.UTC().Format(time.RFC3339),
			})
		case errors.Is(err, objective.ErrSubmissionInFlight):
			outcome(c, req.Command, http.StatusConflict, OutcomeSubmissionInFlight, nil)
		default:
			h.logger.Error("Submit failed", zap.String("user_id", req.UserID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "submission failed"})
		}
		return
	}

	outcome(c, req.Command, http.StatusOK, OutcomeAccepted, gin.H{
		"streak":         result.Streak,
		"next_allowed":   result.NextAllowed.UTC().Format(time.RFC3339),
		"attachment_url": result.AttachmentURL,
	})
}

func (h *InteractionHandler) createObjective(c *gin.Context, req interactionRequest) {
	name := strings.TrimSpace(req.Options.Name)
	freq, validFreq := model.ParseFrequency(req.Options.Frequency)

	if name == "" || !validFreq {
		outcome(c, req.Command, http.StatusBadRequest, OutcomeMissingFields, nil)
		return
	}

	err := h.objectives.Create(c.Request.Context(), req.UserID, name, freq)
	if err != nil {
		if errors.Is(err, objective.ErrAlreadyExists) {
			outcome(c, req.Command, http.StatusConflict, OutcomeAlreadyExists, nil)
			return
		}
		h.logger.Error("Create failed", zap.String("user_id", req.UserID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}

	outcome(c, req.Command, http.StatusOK, OutcomeCreated, gin.H{
		"name":      name,
		"frequency": string(freq),
	})
}

func (h *InteractionHandler) listObjectives(c *gin.Context, req interactionRequest) {
	statuses, err := h.objectives.List(c.Request.Context(), req.UserID)
	if err != nil {
		h.logger.Error("List failed", zap.String("user_id", req.UserID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}

	if len(statuses) == 0 {
		outcome(c, req.Command, http.StatusOK, OutcomeEmpty, nil)
		return
	}

	items := make([]gin.H, 0, len(statuses))
	for _, s := range statuses {
		item := gin.H{
			"name":      s.Name,
			"frequency": string(s.Frequency),
			"available": s.Available,
			"streak":    s.Streak,
		}
		if !s.Available {
			item["next_allowed"] = s.NextAllowed.UTC().Format(time.RFC3339)
		}
		items = append(items, item)
	}

	metrics.RecordCommandOutcome(req.Command, "listed")
	c.JSON(http.StatusOK, gin.H{"objectives": items})
}

func (h *InteractionHandler) deleteObjective(c *gin.Context, req interactionRequest) {
	name := strings.TrimSpace(req.Options.Name)
	if name == "" {
		outcome(c, req.Command, http.StatusBadRequest, OutcomeMissingName, nil)
		return
	}

	err := h.objectives.Delete(c.Request.Context(), req.UserID, name)
	if err != nil {
		if errors.Is(err, objective.ErrNotFound) {
			outcome(c, req.Command, http.StatusNotFound, OutcomeNotFound, nil)
			return
		}
		h.logger.Error("Delete failed", zap.String("user_id", req.UserID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}

	outcome(c, req.Command, http.StatusOK, OutcomeDeleted, gin.H{"name": name})
}
