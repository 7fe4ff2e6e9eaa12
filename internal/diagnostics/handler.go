package diagnostics

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"workflow/internal/constants"
	"workflow/internal/logger"
	"workflow/internal/workflow"
	"workflow/pkg/errors"
	"workflow/pkg/middleware"
)

// RuleLister is satisfied by *workflow.Registry.
type RuleLister interface {
	Rules() []workflow.Rule
}

// Report is the result of running one collector for the current user.
type Report struct {
	ID     string                 `json:"id"`
	Name   string                 `json:"name"`
	UserID string                 `json:"user_id"`
	Data   map[string]interface{} `json:"data"`
}

type BaseHandler struct {
	Registry *Registry
	Logger   logger.Logger
}

func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	h.Logger.ErrorwCtx(c.Request.Context(), "Request error", "error", err, "path", c.Request.URL.Path)

	status := errors.ToHTTPStatus(err)
	response := errors.ToErrorResponse(err)

	c.JSON(status, response)
}

type Handler struct {
	BaseHandler
	rules RuleLister
}

// NewHandler serves the collector registry. rules may be nil, in which case
// the rules listing is not mounted.
func NewHandler(registry *Registry, rules RuleLister, log logger.Logger) *Handler {
	return &Handler{
		BaseHandler: BaseHandler{
			Registry: registry,
			Logger:   log,
		},
		rules: rules,
	}
}

func (h *Handler) RegisterRoutes(router gin.IRouter) {
	v1 := router.Group("/api/v1")
	{
		diag := v1.Group("/diagnostics")
		diag.Use(h.requireUser)
		{
			diag.GET("/collectors", h.ListCollectors)
			diag.GET("/collectors/:id", h.RunCollector)
		}

		if h.rules != nil {
			v1.GET("/rules", h.ListRules)
		}
	}
}

func (h *Handler) requireUser(c *gin.Context) {
	if middleware.CurrentUser(c) == "" {
		h.HandleError(c, errors.ErrUnauthorized.WithDetail("header", constants.UserIDHeader))
		c.Abort()
		return
	}
	c.Next()
}

// ListCollectors godoc
// @Summary      List diagnostics collectors
// @Description  Get every registered diagnostics collector
// @Tags         diagnostics
// @Produce      json
// @Param        X-User-ID  header    string  true  "Current CMS user"
// @Success      200        {array}   Info
// @Failure      401        {object}  errors.ErrorResponse
// @Router       /diagnostics/collectors [get]
func (h *Handler) ListCollectors(c *gin.Context) {
	c.JSON(http.StatusOK, h.Registry.List())
}

// RunCollector godoc
// @Summary      Run a diagnostics collector
// @Description  Run one collector for the current user
// @Tags         diagnostics
// @Produce      json
// @Param        X-User-ID  header    string  true  "Current CMS user"
// @Param        id         path      string  true  "Collector key or id"
// @Success      200        {object}  Report
// @Failure      401        {object}  errors.ErrorResponse
// @Failure      404        {object}  errors.ErrorResponse
// @Router       /diagnostics/collectors/{id} [get]
func (h *Handler) RunCollector(c *gin.Context) {
	id := c.Param("id")
	collector, ok := h.Registry.Get(id)
	if !ok {
		h.HandleError(c, errors.ErrNotFound.WithDetail("collector", id))
		return
	}

	user := middleware.CurrentUser(c)
	c.JSON(http.StatusOK, Report{
		ID:     collector.ID(),
		Name:   collector.Name(),
		UserID: user,
		Data:   collector.Process(c.Request.Context(), user),
	})
}

// ListRules godoc
// @Summary      List notification rules
// @Description  Get a summary of every registered workflow notification rule
// @Tags         rules
// @Produce      json
// @Success      200  {array}  workflow.RuleInfo
// @Router       /rules [get]
func (h *Handler) ListRules(c *gin.Context) {
	rules := h.rules.Rules()
	out := make([]workflow.RuleInfo, 0, len(rules))
	for _, r := range rules {
		out = append(out, workflow.Describe(r))
	}
	c.JSON(http.StatusOK, out)
}
