package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/Strob0t/TaskScheduler/internal/domain/task"
)

// registerTools registers all MCP tools on the server.
func (s *Server) registerTools() {
	s.mcpServer.AddTools(
		s.listTasksTool(),
		s.listPendingTasksTool(),
		s.createTaskTool(),
		s.updateTaskStatusTool(),
		s.deleteTaskTool(),
	)
}

func (s *Server) listTasksTool() mcpserver.ServerTool {
	tool := mcplib.NewTool("list_tasks",
		mcplib.WithDescription("List all of today's tasks ordered by their order value"),
	)
	return mcpserver.ServerTool{Tool: tool, Handler: s.handleListTasks}
}

func (s *Server) listPendingTasksTool() mcpserver.ServerTool {
	tool := mcplib.NewTool("list_pending_tasks",
		mcplib.WithDescription("List today's pending tasks whose start time has been reached, in execution order"),
	)
	return mcpserver.ServerTool{Tool: tool, Handler: s.handleListPendingTasks}
}

func (s *Server) createTaskTool() mcpserver.ServerTool {
	tool := mcplib.NewTool("create_task",
		mcplib.WithDescription("Create a pending task in today's bucket"),
		mcplib.WithString("title",
			mcplib.Required(),
			mcplib.Description("Short task title"),
		),
		mcplib.WithString("description",
			mcplib.Description("Free-form task description"),
		),
		mcplib.WithString("start_time",
			mcplib.Required(),
			mcplib.Description("Earliest start, RFC 3339 or YYYY-MM-DDTHH:MM"),
		),
		mcplib.WithNumber("order",
			mcplib.Description("Integer sort key, lower runs first (default 0)"),
		),
	)
	return mcpserver.ServerTool{Tool: tool, Handler: s.handleCreateTask}
}

func (s *Server) updateTaskStatusTool() mcpserver.ServerTool {
	tool := mcplib.NewTool("update_task_status",
		mcplib.WithDescription("Set the status of one of today's tasks"),
		mcplib.WithString("id",
			mcplib.Required(),
			mcplib.Description("Task ID"),
		),
		mcplib.WithString("status",
			mcplib.Required(),
			mcplib.Enum(string(task.StatusPending), string(task.StatusRunning), string(task.StatusCompleted)),
			mcplib.Description("New status"),
		),
		mcplib.WithString("completed_description",
			mcplib.Description("Completion note, stored when status is completed"),
		),
	)
	return mcpserver.ServerTool{Tool: tool, Handler: s.handleUpdateTaskStatus}
}

func (s *Server) deleteTaskTool() mcpserver.ServerTool {
	tool := mcplib.NewTool("delete_task",
		mcplib.WithDescription("Delete one of today's tasks"),
		mcplib.WithString("id",
			mcplib.Required(),
			mcplib.Description("Task ID"),
		),
	)
	return mcpserver.ServerTool{Tool: tool, Handler: s.handleDeleteTask}
}

func (s *Server) handleListTasks(ctx context.Context, _ mcplib.CallToolRequest) (*mcplib.CallToolResult, error) { //nolint:gocritic // hugeParam: mcp-go handler signature
	if s.deps.Tasks == nil {
		return mcplib.NewToolResultError("task service not configured"), nil
	}
	tasks, err := s.deps.Tasks.List(ctx)
	if err != nil {
		return mcplib.NewToolResultErrorFromErr("failed to list tasks", err), nil
	}
	return marshalResult(tasks, "tasks")
}

func (s *Server) handleListPendingTasks(ctx context.Context, _ mcplib.CallToolRequest) (*mcplib.CallToolResult, error) { //nolint:gocritic // hugeParam: mcp-go handler signature
	if s.deps.Tasks == nil {
		return mcplib.NewToolResultError("task service not configured"), nil
	}
	tasks, err := s.deps.Tasks.ListPending(ctx)
	if err != nil {
		return mcplib.NewToolResultErrorFromErr("failed to list pending tasks", err), nil
	}
	return marshalResult(tasks, "pending tasks")
}

func (s *Server) handleCreateTask(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) { //nolint:gocritic // hugeParam: mcp-go handler signature
	if s.deps.Tasks == nil {
		return mcplib.NewToolResultError("task service not configured"), nil
	}
	args := req.GetArguments()
	title, _ := args["title"].(string)
	description, _ := args["description"].(string)
	startTime, _ := args["start_time"].(string)

	cr := &task.CreateRequest{Title: title, Description: description, StartTime: startTime}
	if v, ok := args["order"]; ok && v != nil {
		raw, err := json.Marshal(v)
		if err != nil {
			return mcplib.NewToolResultErrorFromErr("invalid order", err), nil
		}
		cr.Order = raw
	}

	t, err := s.deps.Tasks.Create(ctx, cr)
	if err != nil {
		return mcplib.NewToolResultErrorFromErr("failed to create task", err), nil
	}
	return marshalResult(t, "task")
}

func (s *Server) handleUpdateTaskStatus(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) { //nolint:gocritic // hugeParam: mcp-go handler signature
	if s.deps.Tasks == nil {
		return mcplib.NewToolResultError("task service not configured"), nil
	}
	args := req.GetArguments()
	id, ok := args["id"].(string)
	if !ok || id == "" {
		return mcplib.NewToolResultError("id is required"), nil
	}
	status, _ := args["status"].(string)
	note, _ := args["completed_description"].(string)

	t, err := s.deps.Tasks.UpdateStatus(ctx, id, task.UpdateStatusRequest{Status: status, CompletedDescription: note})
	if err != nil {
		return mcplib.NewToolResultErrorFromErr(fmt.Sprintf("failed to update task %s", id), err), nil
	}
	return marshalResult(t, "task")
}

func (s *Server) handleDeleteTask(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) { //nolint:gocritic // hugeParam: mcp-go handler signature
	if s.deps.Tasks == nil {
		return mcplib.NewToolResultError("task service not configured"), nil
	}
	args := req.GetArguments()
	id, ok := args["id"].(string)
	if !ok || id == "" {
		return mcplib.NewToolResultError("id is required"), nil
	}
	if err := s.deps.Tasks.Delete(ctx, id); err != nil {
		return mcplib.NewToolResultErrorFromErr(fmt.Sprintf("failed to delete task %s", id), err), nil
	}
	return mcplib.NewToolResultText(fmt.Sprintf(`{"deleted":%q}`, id)), nil
}

func marshalResult(v any, what string) (*mcplib.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcplib.NewToolResultErrorFromErr("failed to marshal "+what, err), nil
	}
	return mcplib.NewToolResultText(string(data)), nil
}
