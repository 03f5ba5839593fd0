package handlers

import (
	"fmt"
	"log"

	"github.com/gofiber/fiber/v3"
	"github.com/openlaunch/open-launch/app/dto"
	businessflow "github.com/openlaunch/open-launch/business_flow"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// AdminHandler serves operator reports
type AdminHandler struct {
	baseHandler
	reportFlow businessflow.LaunchReportFlow
}

func NewAdminHandler(reportFlow businessflow.LaunchReportFlow) *AdminHandler {
	return &AdminHandler{
		baseHandler: newBaseHandler(),
		reportFlow:  reportFlow,
	}
}

// ExportRankings downloads the final standings of a launch day
// @Summary Export daily rankings
// @Tags Admin
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param date query string true "Launch day (YYYY-MM-DD)"
// @Success 200 {file} file "Rankings workbook"
// @Failure 400 {object} dto.APIResponse "Invalid date"
// @Router /api/v1/admin/rankings/export [get]
func (h *AdminHandler) ExportRankings(c fiber.Ctx) error {
	var req dto.RankingExportRequest
	if err := c.Bind().Query(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid query parameters", "INVALID_REQUEST", err.Error())
	}
	if problems := h.validate(&req); problems != nil {
		return h.validationFailed(c, problems)
	}

	ctx, cancel := h.createRequestContext(c)
	defer cancel()

	filename, content, err := h.reportFlow.ExportDailyRankings(ctx, req.Date)
	if err != nil {
		if businessflow.IsInvalidDate(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid date", "INVALID_DATE", nil)
		}
		log.Println("Ranking export failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to export rankings", "EXPORT_FAILED", nil)
	}

	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Status(fiber.StatusOK).Send(content)
}
