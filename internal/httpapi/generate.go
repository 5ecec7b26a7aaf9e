package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/brightwellhealth/clinicscribe/internal/agentgraph"
	"github.com/brightwellhealth/clinicscribe/internal/platform/clinicerr"
	"github.com/brightwellhealth/clinicscribe/internal/platform/logger"
)

// GenerateHandler serves POST /generate (spec §6): runs the agent graph for
// one {unique_id, query} request and returns its generated answer.
type GenerateHandler struct {
	Log   *logger.Logger
	Graph *agentgraph.Graph
}

type generateRequest struct {
	UniqueID string `json:"unique_id" binding:"required"`
	Query    string `json:"query" binding:"required"`
}

type generateResponse struct {
	Answer string `json:"answer"`
}

func (h *GenerateHandler) Handle(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, err)
		return
	}

	state, err := h.Graph.Invoke(c.Request.Context(), req.UniqueID, req.Query)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, clinicerr.ErrIndexAbsent) || errors.Is(err, clinicerr.ErrCheckpointUnavailable) {
			status = http.StatusServiceUnavailable
		}
		h.Log.Error("generate: graph invocation failed", "unique_id", req.UniqueID, "error", err.Error())
		RespondError(c, status, err)
		return
	}

	answer := ""
	if state.GeneratedAnswer != nil {
		answer = *state.GeneratedAnswer
	}
	RespondOK(c, generateResponse{Answer: answer})
}

// LivenessHandler serves GET / (spec §6).
func LivenessHandler(c *gin.Context) {
	RespondOK(c, gin.H{"message": "clinicscribe is running"})
}
