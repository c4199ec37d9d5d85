package dashboard

import (
	common_api "go-opsboard/internal/common/api"
	common_models "go-opsboard/internal/common/models"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type DashboardController struct {
	DashboardService DashboardService
}

func NewDashboardController(dashboardService DashboardService) *DashboardController {
	return &DashboardController{
		DashboardService: dashboardService,
	}
}

type updateRequest struct {
	Patch
	ExpectedVersion int64 `json:"expected_version"`
}

// CreateDashboard godoc
// @Summary Create dashboard
// @Description Create a new dashboard owned by the current user
// @Tags dashboard
// @Accept json
// @Produce json
// @Param dashboard body Dashboard true "Dashboard"
// @Success 201 {object} Dashboard
// @Failure 400 {object} map[string]interface{}
// @Router /api/dashboards [post]
func (ctrl *DashboardController) CreateDashboard(ctx *fiber.Ctx) error {
	var dashboard Dashboard
	if err := ctx.BodyParser(&dashboard); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	userID, ok := requesterID(ctx)
	if !ok {
		return nil
	}

	if err := ctrl.DashboardService.CreateDashboard(ctx.UserContext(), &dashboard, userID); err != nil {
		return common_api.Fail(ctx, err)
	}

	return ctx.Status(fiber.StatusCreated).JSON(dashboard)
}

// GetDashboard godoc
// @Summary Get dashboard
// @Description Get a dashboard by ID; increments its view counter
// @Tags dashboard
// @Produce json
// @Param id path string true "Dashboard ID"
// @Success 200 {object} Dashboard
// @Failure 403 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/dashboards/{id} [get]
func (ctrl *DashboardController) GetDashboard(ctx *fiber.Ctx) error {
	id := ctx.Params("id")

	userID, ok := requesterID(ctx)
	if !ok {
		return nil
	}

	dashboard, err := ctrl.DashboardService.GetDashboard(ctx.UserContext(), id, userID)
	if err != nil {
		return common_api.Fail(ctx, err)
	}

	return ctx.JSON(dashboard)
}

// UpdateDashboard godoc
// @Summary Update dashboard
// @Description Apply a partial update; expected_version must match the stored version
// @Tags dashboard
// @Accept json
// @Produce json
// @Param id path string true "Dashboard ID"
// @Param patch body updateRequest true "Patch"
// @Success 200 {object} Dashboard
// @Failure 403 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{}
// @Router /api/dashboards/{id} [put]
func (ctrl *DashboardController) UpdateDashboard(ctx *fiber.Ctx) error {
	id := ctx.Params("id")

	var req updateRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	userID, ok := requesterID(ctx)
	if !ok {
		return nil
	}

	updated, err := ctrl.DashboardService.UpdateDashboard(ctx.UserContext(), id, &req.Patch, req.ExpectedVersion, userID)
	if err != nil {
		return common_api.Fail(ctx, err)
	}

	return ctx.JSON(updated)
}

// DeleteDashboard godoc
// @Summary Delete dashboard
// @Description Deactivate a dashboard and all widgets under it
// @Tags dashboard
// @Param id path string true "Dashboard ID"
// @Success 204 {object} nil
// @Failure 403 {object} map[string]interface{}
// @Router /api/dashboards/{id} [delete]
func (ctrl *DashboardController) DeleteDashboard(ctx *fiber.Ctx) error {
	id := ctx.Params("id")

	userID, ok := requesterID(ctx)
	if !ok {
		return nil
	}

	if err := ctrl.DashboardService.DeleteDashboard(ctx.UserContext(), id, userID); err != nil {
		return common_api.Fail(ctx, err)
	}

	return ctx.SendStatus(fiber.StatusNoContent)
}

// ListDashboards godoc
// @Summary List owned dashboards
// @Description List the current user's dashboards, newest update first
// @Tags dashboard
// @Produce json
// @Param active_only query bool false "Only active dashboards"
// @Success 200 {object} map[string]interface{}
// @Router /api/dashboards [get]
func (ctrl *DashboardController) ListDashboards(ctx *fiber.Ctx) error {
	userID, ok := requesterID(ctx)
	if !ok {
		return nil
	}

	activeOnly := ctx.QueryBool("active_only", false)
	page := pageFromQuery(ctx)

	dashboards, total, err := ctrl.DashboardService.ListOwned(ctx.UserContext(), userID, activeOnly, page)
	if err != nil {
		return common_api.Fail(ctx, err)
	}

	return ctx.JSON(pagedResponse(dashboards, total, page))
}

// ListPublicDashboards godoc
// @Summary List public dashboards
// @Tags dashboard
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/dashboards/public [get]
func (ctrl *DashboardController) ListPublicDashboards(ctx *fiber.Ctx) error {
	page := pageFromQuery(ctx)

	dashboards, total, err := ctrl.DashboardService.ListPublic(ctx.UserContext(), page)
	if err != nil {
		return common_api.Fail(ctx, err)
	}

	return ctx.JSON(pagedResponse(dashboards, total, page))
}

// ListPopularDashboards godoc
// @Summary List popular dashboards
// @Description Public active dashboards ordered by view count
// @Tags dashboard
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/dashboards/popular [get]
func (ctrl *DashboardController) ListPopularDashboards(ctx *fiber.Ctx) error {
	page := pageFromQuery(ctx)

	dashboards, total, err := ctrl.DashboardService.ListPopular(ctx.UserContext(), page)
	if err != nil {
		return common_api.Fail(ctx, err)
	}

	return ctx.JSON(pagedResponse(dashboards, total, page))
}

// SearchDashboards godoc
// @Summary Search dashboards
// @Description Case-insensitive substring match on name or description
// @Tags dashboard
// @Produce json
// @Param q query string true "Search term"
// @Success 200 {object} map[string]interface{}
// @Router /api/dashboards/search [get]
func (ctrl *DashboardController) SearchDashboards(ctx *fiber.Ctx) error {
	term := ctx.Query("q")
	if term == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "query parameter q is required"})
	}
	page := pageFromQuery(ctx)

	dashboards, total, err := ctrl.DashboardService.Search(ctx.UserContext(), term, page)
	if err != nil {
		return common_api.Fail(ctx, err)
	}

	return ctx.JSON(pagedResponse(dashboards, total, page))
}

// ExportDashboards godoc
// @Summary Export owned dashboards
// @Description Download the current user's dashboard inventory as XLSX
// @Tags dashboard
// @Produce application/octet-stream
// @Success 200 {file} binary
// @Router /api/dashboards/export [get]
func (ctrl *DashboardController) ExportDashboards(ctx *fiber.Ctx) error {
	userID, ok := requesterID(ctx)
	if !ok {
		return nil
	}

	data, filename, err := ctrl.DashboardService.ExportOwned(ctx.UserContext(), userID)
	if err != nil {
		return common_api.Fail(ctx, err)
	}

	ctx.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	ctx.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	return ctx.Send(data)
}

// requesterID pulls the authenticated user id injected by the auth
// middleware. On failure it writes the 401 response itself and returns false.
func requesterID(ctx *fiber.Ctx) (primitive.ObjectID, bool) {
	userIDStr := ctx.Locals("user_id")
	if userIDStr == nil {
		_ = ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
		return primitive.NilObjectID, false
	}

	userID, err := primitive.ObjectIDFromHex(userIDStr.(string))
	if err != nil {
		_ = ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid user ID"})
		return primitive.NilObjectID, false
	}
	return userID, true
}

func pageFromQuery(ctx *fiber.Ctx) common_models.PageRequest {
	return common_models.PageRequest{
		Page:  int64(ctx.QueryInt("page", 1)),
		Limit: int64(ctx.QueryInt("limit", int(common_models.DefaultPageSize))),
	}.Normalize()
}

func pagedResponse(dashboards []Dashboard, total int64, page common_models.PageRequest) common_models.PagedResult[Dashboard] {
	if dashboards == nil {
		dashboards = []Dashboard{}
	}
	return common_models.PagedResult[Dashboard]{
		Items: dashboards,
		Total: total,
		Page:  page.Page,
		Limit: page.Limit,
	}
}
