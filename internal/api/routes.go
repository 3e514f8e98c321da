package api

import (
	restfulspec "github.com/emicklei/go-restful-openapi/v2"
	"github.com/emicklei/go-restful/v3"
	"github.com/go-openapi/spec"
	"github.com/povarna/generative-ai-agents/module-tasks-agent/internal/api/middleware"
	"github.com/povarna/generative-ai-agents/module-tasks-agent/internal/models"
)

func RegisterRoutes(container *restful.Container, handler *Handler) {
	ws := new(restful.WebService)

	ws.
		Path("/api/v1").
		Consumes(restful.MIME_JSON).
		Produces(restful.MIME_JSON)

	// Health endpoint
	ws.
		Route(ws.GET("health").
			To(handler.Health).
			Doc("Health check").
			Metadata(restfulspec.KeyOpenAPITags, []string{"health"}).
			Writes(HealthResponse{}).
			Returns(200, "OK", HealthResponse{}))

	ws.
		Route(ws.POST("/module-tasks").
			To(handler.GenerateModuleTasks).
			Doc("Generate an introductory message with learning tasks and real-world applications for a syllabus module").
			Metadata(restfulspec.KeyOpenAPITags, []string{"module-tasks"}).
			Reads(models.GenerateModuleTasksInput{}).
			Writes(models.GenerateModuleTasksOutput{}).
			Returns(200, "OK", models.GenerateModuleTasksOutput{}).
			Returns(400, "Bad Request", middleware.ErrorResponse{}).
			Returns(502, "Generation Failed", middleware.ErrorResponse{}).
			Returns(500, "Internal Server Error", middleware.ErrorResponse{}))

	container.Add(ws)
}

// RegisterOpenAPI serves the OpenAPI document for every web service already
// added to the container. Call it after RegisterRoutes.
func RegisterOpenAPI(container *restful.Container) {
	config := restfulspec.Config{
		WebServices:                   container.RegisteredWebServices(),
		APIPath:                       "/api/v1/openapi.json",
		PostBuildSwaggerObjectHandler: enrichSwaggerObject,
	}

	container.Add(restfulspec.NewOpenAPIService(config))
}

func enrichSwaggerObject(swo *spec.Swagger) {
	swo.Info = &spec.Info{
		InfoProps: spec.InfoProps{
			Title:       "Module Tasks Agent API",
			Description: "Introductory messages, learning tasks and real-world applications for syllabus modules",
			Version:     "1.0.0",
		},
	}
	swo.Tags = []spec.Tag{
		{TagProps: spec.TagProps{Name: "health", Description: "Health checks"}},
		{TagProps: spec.TagProps{Name: "module-tasks", Description: "Module task generation"}},
	}
}
