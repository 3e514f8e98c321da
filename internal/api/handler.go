package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/emicklei/go-restful/v3"
	"github.com/povarna/generative-ai-agents/module-tasks-agent/internal/api/middleware"
	"github.com/povarna/generative-ai-agents/module-tasks-agent/internal/tasks"
	"github.com/rs/zerolog"
)

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

type Handler struct {
	generator tasks.ModuleTaskGenerator
	logger    *zerolog.Logger
}

func NewHandler(generator tasks.ModuleTaskGenerator, logger *zerolog.Logger) *Handler {
	return &Handler{
		generator: generator,
		logger:    logger,
	}
}

// POST /api/v1/module-tasks
// Body: GenerateModuleTasksInput
// Returns: GenerateModuleTasksOutput
func (h *Handler) GenerateModuleTasks(req *restful.Request, resp *restful.Response) {
	body, err := io.ReadAll(req.Request.Body)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to read request body")
		middleware.HandleError(resp, err, http.StatusBadRequest)
		return
	}

	input, err := tasks.DecodeInput(body)
	if err != nil {
		h.logger.Warn().Err(err).Msg("Failed to parse request body")
		middleware.HandleError(resp, err, http.StatusBadRequest)
		return
	}

	h.logger.Info().
		Int("content_length", len(input.ModuleContent)).
		Msg("Start module task generation")

	out, err := h.generator.Generate(req.Request.Context(), input)
	switch {
	case err == nil:
		resp.WriteHeaderAndEntity(http.StatusOK, out)
	case errors.Is(err, tasks.ErrValidation):
		middleware.HandleError(resp, err, http.StatusBadRequest)
	case errors.Is(err, tasks.ErrGenerationFailed):
		middleware.HandleError(resp, err, http.StatusBadGateway)
	default:
		h.logger.Error().Err(err).Msg("Unexpected generator error")
		middleware.HandleError(resp, tasks.ErrGenerationFailed, http.StatusInternalServerError)
	}
}

// Health handler GET API /api/v1/health
func (h *Handler) Health(req *restful.Request, resp *restful.Response) {
	healthResponse := HealthResponse{
		Status:  "ok",
		Version: "1.0.0",
	}

	resp.WriteHeaderAndEntity(http.StatusOK, healthResponse)
}
