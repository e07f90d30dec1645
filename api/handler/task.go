package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskboard/api/transport"
	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/internal/middleware"
	"github.com/fastygo/taskboard/pkg/httpcontext"
	"github.com/fastygo/taskboard/repository"
	taskUC "github.com/fastygo/taskboard/usecase/task"
)

type TaskHandler struct {
	baseHandler
	uc *taskUC.UseCase
}

func NewTaskHandler(uc *taskUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary List the caller's tasks, newest first
// @Tags tasks
// @Router /rest/v1/tasks [get]
func (h *TaskHandler) GetTasks(ctx *fasthttp.RequestCtx) {
	session := middleware.SessionFrom(ctx)
	args := ctx.QueryArgs()

	if order := string(args.Peek("order")); order != "" && order != "created_at.desc" {
		h.respondInvalid(ctx, "unsupported order")
		return
	}

	filter := repository.TaskFilter{
		UserID: session.UserID,
		Limit:  parseInt(string(args.Peek("limit")), 100),
		Offset: parseInt(string(args.Peek("offset")), 0),
	}
	if raw := string(args.Peek("completed")); raw != "" {
		completed, err := strconv.ParseBool(strings.TrimPrefix(raw, "eq."))
		if err != nil {
			h.respondInvalid(ctx, "invalid completed filter")
			return
		}
		filter.Completed = &completed
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	tasks, err := h.uc.ListTasks(stdCtx, filter)
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, tasks)
}

// @Summary Create task
// @Tags tasks
// @Router /rest/v1/tasks [post]
func (h *TaskHandler) CreateTask(ctx *fasthttp.RequestCtx) {
	session := middleware.SessionFrom(ctx)

	var req transport.TaskRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	created, err := h.uc.CreateTask(stdCtx, session.UserID, domain.NewTask{
		UserID:      req.UserID,
		Title:       req.Title,
		Description: req.Description,
		Completed:   req.Completed,
	})
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, created)
}

// @Summary Update task
// @Tags tasks
// @Router /rest/v1/tasks [patch]
func (h *TaskHandler) UpdateTask(ctx *fasthttp.RequestCtx) {
	session := middleware.SessionFrom(ctx)
	id, ok := h.targetID(ctx)
	if !ok {
		return
	}

	var req transport.TaskPatchRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	updated, err := h.uc.UpdateTask(stdCtx, session.UserID, id, domain.TaskPatch{
		Title:       req.Title,
		Description: req.Description,
		Completed:   req.Completed,
	})
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, updated)
}

// @Summary Delete task
// @Tags tasks
// @Router /rest/v1/tasks [delete]
func (h *TaskHandler) DeleteTask(ctx *fasthttp.RequestCtx) {
	session := middleware.SessionFrom(ctx)
	id, ok := h.targetID(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.DeleteTask(stdCtx, session.UserID, id); err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusNoContent, nil)
}

// targetID reads the row filter id=eq.<id>.
func (h *TaskHandler) targetID(ctx *fasthttp.RequestCtx) (string, bool) {
	raw := string(ctx.QueryArgs().Peek("id"))
	id := strings.TrimPrefix(raw, "eq.")
	if raw == id || id == "" {
		h.respondInvalid(ctx, "missing task id filter")
		return "", false
	}
	return id, true
}

func parseInt(value string, fallback int) int {
	if v, err := strconv.Atoi(value); err == nil {
		return v
	}
	return fallback
}
