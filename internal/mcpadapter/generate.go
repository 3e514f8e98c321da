package mcpadapter

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/povarna/generative-ai-agents/module-tasks-agent/internal/models"
	"github.com/povarna/generative-ai-agents/module-tasks-agent/internal/tasks"
)

const ToolName = "generate_module_tasks"

// NewGenerateModuleTasksHandler returns a tool handler that uses the given generator.
// Pass the returned function to mcp.AddTool.
func NewGenerateModuleTasksHandler(generator tasks.ModuleTaskGenerator) func(context.Context, *mcp.CallToolRequest, models.GenerateModuleTasksInput) (*mcp.CallToolResult, models.GenerateModuleTasksOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input models.GenerateModuleTasksInput) (*mcp.CallToolResult, models.GenerateModuleTasksOutput, error) {
		return GenerateModuleTasks(ctx, generator, req, input)
	}
}

// GenerateModuleTasks runs one generation. Errors returned here reach the MCP
// client as tool errors, so they are limited to validation errors and the
// fixed generation failure.
func GenerateModuleTasks(
	ctx context.Context,
	generator tasks.ModuleTaskGenerator,
	req *mcp.CallToolRequest,
	input models.GenerateModuleTasksInput,
) (*mcp.CallToolResult, models.GenerateModuleTasksOutput, error) {
	out, err := generator.Generate(ctx, input)
	if err != nil {
		return nil, models.GenerateModuleTasksOutput{}, err
	}
	return nil, out, nil
}

// NewServer builds the MCP server exposing the module task tool.
func NewServer(generator tasks.ModuleTaskGenerator) *mcp.Server {
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "module-tasks-agent",
			Version: "1.0.0",
		}, nil,
	)

	mcp.AddTool(server, &mcp.Tool{
		Name:        ToolName,
		Description: "Generate a welcoming introductory message for a syllabus module with 2-4 learning tasks and 2-3 real-world applications, formatted as markdown",
	}, NewGenerateModuleTasksHandler(generator))

	return server
}
