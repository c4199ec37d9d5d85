package widget

import (
	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"

	common_api "go-opsboard/internal/common/api"
)

type WidgetController struct {
	WidgetService WidgetService
}

func NewWidgetController(widgetService WidgetService) *WidgetController {
	return &WidgetController{
		WidgetService: widgetService,
	}
}

type updateRequest struct {
	Patch
	ExpectedVersion int64 `json:"expected_version"`
}

// CreateWidget godoc
// @Summary Create a widget on a dashboard
// @Tags widget
// @Accept json
// @Produce json
// @Param dashboardId path string true "Dashboard ID"
// @Param widget body Widget true "Widget"
// @Success 201 {object} Widget
// @Router /api/dashboards/{dashboardId}/widgets [post]
func (ctrl *WidgetController) CreateWidget(ctx *fiber.Ctx) error {
	userID, ok := requesterID(ctx)
	if !ok {
		return nil
	}

	var widget Widget
	if err := ctx.BodyParser(&widget); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	if err := ctrl.WidgetService.CreateWidget(ctx.UserContext(), ctx.Params("dashboardId"), &widget, userID); err != nil {
		return common_api.Fail(ctx, err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(widget)
}

// ListWidgets godoc
// @Summary List widgets of a dashboard
// @Tags widget
// @Produce json
// @Param dashboardId path string true "Dashboard ID"
// @Param all query bool false "Include hidden and inactive widgets (owner view)"
// @Success 200 {array} Widget
// @Router /api/dashboards/{dashboardId}/widgets [get]
func (ctrl *WidgetController) ListWidgets(ctx *fiber.Ctx) error {
	userID, ok := requesterID(ctx)
	if !ok {
		return nil
	}

	activeVisibleOnly := !ctx.QueryBool("all", false)
	widgets, err := ctrl.WidgetService.ListWidgets(ctx.UserContext(), ctx.Params("dashboardId"), userID, activeVisibleOnly)
	if err != nil {
		return common_api.Fail(ctx, err)
	}
	if widgets == nil {
		widgets = []Widget{}
	}
	return ctx.JSON(widgets)
}

// UpdateWidget godoc
// @Summary Update a widget
// @Description Applies a partial update guarded by expected_version
// @Tags widget
// @Accept json
// @Produce json
// @Param id path string true "Widget ID"
// @Param update body updateRequest true "Fields to change plus expected_version"
// @Success 200 {object} Widget
// @Router /api/widgets/{id} [put]
func (ctrl *WidgetController) UpdateWidget(ctx *fiber.Ctx) error {
	userID, ok := requesterID(ctx)
	if !ok {
		return nil
	}

	var req updateRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	updated, err := ctrl.WidgetService.UpdateWidget(ctx.UserContext(), ctx.Params("id"), &req.Patch, req.ExpectedVersion, userID)
	if err != nil {
		return common_api.Fail(ctx, err)
	}
	return ctx.JSON(updated)
}

// DeleteWidget godoc
// @Summary Delete a widget
// @Description Soft-deletes the widget; subscribers receive a removal event
// @Tags widget
// @Param id path string true "Widget ID"
// @Success 204
// @Router /api/widgets/{id} [delete]
func (ctrl *WidgetController) DeleteWidget(ctx *fiber.Ctx) error {
	userID, ok := requesterID(ctx)
	if !ok {
		return nil
	}

	if err := ctrl.WidgetService.DeleteWidget(ctx.UserContext(), ctx.Params("id"), userID); err != nil {
		return common_api.Fail(ctx, err)
	}
	return ctx.SendStatus(fiber.StatusNoContent)
}

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
