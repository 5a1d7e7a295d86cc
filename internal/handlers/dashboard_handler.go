package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/edunexus-service/internal/services"
	"github.com/SAP-F-2025/edunexus-service/internal/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type DashboardHandler struct {
	BaseHandler
	service services.DashboardService
	export  services.ExportService
}

func NewDashboardHandler(service services.DashboardService, export services.ExportService, logger utils.Logger) *DashboardHandler {
	return &DashboardHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
		export:      export,
	}
}

// ===== DASHBOARD ENDPOINTS =====

// GetTeacherDashboard returns the teacher's classrooms and review queue
// @Summary Get teacher dashboard
// @Description Created and accessed classrooms, pending public notes and unanswered questions the caller is responsible for.
// @Tags dashboard
// @Produce json
// @Success 200 {object} services.TeacherDashboardResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Teacher access required"
// @Router /dashboard/teacher [get]
func (h *DashboardHandler) GetTeacherDashboard(c *gin.Context) {
	h.LogRequest(c, "Getting teacher dashboard")

	user := h.currentUser(c)
	if user == nil {
		return
	}

	dashboard, err := h.service.Teacher(c.Request.Context(), user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dashboard)
}

// ExportTeacherDashboard
// @Summary Export teacher dashboard
// @Description Same aggregate as the dashboard, as an XLSX workbook.
// @Tags dashboard
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} file
// @Failure 403 {object} ErrorResponse "Teacher access required"
// @Router /dashboard/teacher/export [get]
func (h *DashboardHandler) ExportTeacherDashboard(c *gin.Context) {
	h.LogRequest(c, "Exporting teacher dashboard")

	user := h.currentUser(c)
	if user == nil {
		return
	}

	data, err := h.export.TeacherDashboard(c.Request.Context(), user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("dashboard-%s.xlsx", time.Now().UTC().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}
