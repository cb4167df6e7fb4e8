package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// setupRoutes configures all HTTP routes.
func (m *APIModule) setupRoutes() {
	// Health check endpoint
	m.app.Get("/health", m.healthHandler)

	// API v1 routes
	api := m.app.Group("/api/v1")

	tasks := api.Group("/tasks")
	tasks.Post("/", m.createTask)
	tasks.Get("/", m.listTasks)
	tasks.Get("/:title", m.getTask)
	tasks.Post("/:title/complete", m.completeTask)
	tasks.Post("/:title/postpone", m.postponeTask)
	tasks.Put("/:title/priority", m.prioritizeTask)
	tasks.Post("/:title/tags", m.tagTask)

	api.Get("/tags/:tag/tasks", m.searchByTag)

	inbox := api.Group("/inbox")
	inbox.Post("/", m.inboxAdd)
	inbox.Get("/", m.inboxList)
	inbox.Post("/:title/complete", m.inboxComplete)
	inbox.Post("/:title/postpone", m.inboxPostpone)

	api.Get("/notifications", m.listNotifications)
}

// healthHandler handles GET /health.
func (m *APIModule) healthHandler(c *fiber.Ctx) error {
	return c.JSON(HealthResponse{
		Status: "healthy",
		Details: map[string]any{
			"module": "api",
			"port":   m.port,
		},
	})
}

// createTask handles POST /api/v1/tasks.
func (m *APIModule) createTask(c *fiber.Ctx) error {
	var req CreateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
	}
	if req.DueDate.IsZero() {
		return badRequest(c, "due_date is required")
	}

	resp, err := m.tasks.AddTask(c.Context(), req.Title, req.DueDate)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toTaskResponse(resp))
}

// getTask handles GET /api/v1/tasks/:title.
func (m *APIModule) getTask(c *fiber.Ctx) error {
	resp, err := m.tasks.GetTask(c.Context(), c.Params("title"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toTaskResponse(resp))
}

// listTasks handles GET /api/v1/tasks?filter=pending|overdue.
func (m *APIModule) listTasks(c *fiber.Ctx) error {
	now, ok := parseNow(c)
	if !ok {
		return badRequest(c, "now must be an RFC3339 timestamp")
	}

	switch c.Query("filter", "pending") {
	case "pending":
		tasks, err := m.tasks.ListPending(c.Context())
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(toListResponse(tasks))
	case "overdue":
		tasks, err := m.tasks.ListOverdue(c.Context(), now)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(toListResponse(tasks))
	default:
		return badRequest(c, "filter must be pending or overdue")
	}
}

// completeTask handles POST /api/v1/tasks/:title/complete.
func (m *APIModule) completeTask(c *fiber.Ctx) error {
	resp, err := m.tasks.CompleteTask(c.Context(), c.Params("title"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toTaskResponse(resp))
}

// postponeTask handles POST /api/v1/tasks/:title/postpone.
func (m *APIModule) postponeTask(c *fiber.Ctx) error {
	var req PostponeRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	resp, err := m.tasks.PostponeTask(c.Context(), c.Params("title"), req.Days)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toTaskResponse(resp))
}

// prioritizeTask handles PUT /api/v1/tasks/:title/priority.
func (m *APIModule) prioritizeTask(c *fiber.Ctx) error {
	var req PriorityRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	resp, err := m.tasks.PrioritizeTask(c.Context(), c.Params("title"), req.Priority)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toTaskResponse(resp))
}

// tagTask handles POST /api/v1/tasks/:title/tags.
func (m *APIModule) tagTask(c *fiber.Ctx) error {
	var req TagRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	if err := m.tasks.TagTask(c.Context(), c.Params("title"), req.Tag); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// searchByTag handles GET /api/v1/tags/:tag/tasks.
func (m *APIModule) searchByTag(c *fiber.Ctx) error {
	tasks, err := m.tasks.SearchByTag(c.Context(), c.Params("tag"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toListResponse(tasks))
}

// inboxAdd handles POST /api/v1/inbox.
func (m *APIModule) inboxAdd(c *fiber.Ctx) error {
	var req CreateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.DueDate.IsZero() {
		return badRequest(c, "due_date is required")
	}

	resp, err := m.inbox.InboxAdd(c.Context(), req.Title, req.DueDate)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toTaskResponse(resp))
}

// inboxList handles GET /api/v1/inbox?filter=pending|overdue.
func (m *APIModule) inboxList(c *fiber.Ctx) error {
	now, ok := parseNow(c)
	if !ok {
		return badRequest(c, "now must be an RFC3339 timestamp")
	}

	switch c.Query("filter", "pending") {
	case "pending":
		tasks, err := m.inbox.InboxPending(c.Context())
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(toListResponse(tasks))
	case "overdue":
		tasks, err := m.inbox.InboxOverdue(c.Context(), now)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(toListResponse(tasks))
	default:
		return badRequest(c, "filter must be pending or overdue")
	}
}

// inboxComplete handles POST /api/v1/inbox/:title/complete.
func (m *APIModule) inboxComplete(c *fiber.Ctx) error {
	if err := m.inbox.InboxComplete(c.Context(), c.Params("title")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// inboxPostpone handles POST /api/v1/inbox/:title/postpone.
func (m *APIModule) inboxPostpone(c *fiber.Ctx) error {
	var req PostponeRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	if err := m.inbox.InboxPostpone(c.Context(), c.Params("title"), req.Days); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// listNotifications handles GET /api/v1/notifications.
func (m *APIModule) listNotifications(c *fiber.Ctx) error {
	if m.notifications == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(ErrorResponse{
			Error:   "unavailable",
			Message: "notification module not registered",
		})
	}

	resp, err := m.notifications.ListNotifications(c.Context(), c.QueryInt("limit", 0))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(resp)
}

// parseNow reads the optional now query parameter. A missing value yields the zero time.
func parseNow(c *fiber.Ctx) (time.Time, bool) {
	raw := c.Query("now")
	if raw == "" {
		return time.Time{}, true
	}
	now, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, false
	}
	return now, true
}
