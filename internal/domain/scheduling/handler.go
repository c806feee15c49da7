package scheduling

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/clinicdesk/clinicdesk/internal/domain/identity"
	"github.com/clinicdesk/clinicdesk/internal/platform/auth"
	"github.com/clinicdesk/clinicdesk/pkg/apperr"
	"github.com/clinicdesk/clinicdesk/pkg/envelope"
	"github.com/clinicdesk/clinicdesk/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	// Anonymous booking surface
	api.POST("/appointments/book", h.BookAppointment)
	api.GET("/appointments/doctors/:id/availability", h.DoctorAvailability)

	admin := api.Group("/admin", auth.RequireRole(identity.RoleAdmin))
	admin.GET("/appointments", h.ListAllAppointments)
	admin.GET("/dashboard/stats", h.DashboardStats)

	doctor := api.Group("/doctor", auth.RequireRole(identity.RoleDoctor))
	doctor.GET("/appointments", h.ListDoctorAppointments)
	doctor.PATCH("/appointments/:id", h.UpdateAppointmentStatus)
	doctor.GET("/patients", h.MyPatients)
	doctor.GET("/stats", h.DoctorStats)
}

func (h *Handler) BookAppointment(c echo.Context) error {
	var in BookingInput
	if err := c.Bind(&in); err != nil {
		return apperr.Validation("Invalid request body")
	}
	appt, err := h.svc.BookAppointment(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return envelope.OK(c, http.StatusCreated, "Appointment booked successfully", map[string]interface{}{"appointment": appt})
}

func (h *Handler) DoctorAvailability(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("Invalid doctor id", "id")
	}
	result, err := h.svc.DoctorAvailability(c.Request().Context(), id, c.QueryParam("date"))
	if err != nil {
		return err
	}
	return envelope.OK(c, http.StatusOK, "", result)
}

func (h *Handler) ListAllAppointments(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListAllAppointments(c.Request().Context(), pg.Limit, pg.Offset())
	if err != nil {
		return err
	}
	if items == nil {
		items = []*Appointment{}
	}
	return envelope.OK(c, http.StatusOK, "", map[string]interface{}{
		"appointments": items,
		"pagination":   pagination.NewMeta(pg, total),
	})
}

func (h *Handler) DashboardStats(c echo.Context) error {
	stats, err := h.svc.AdminDashboardStats(c.Request().Context())
	if err != nil {
		return err
	}
	return envelope.OK(c, http.StatusOK, "", stats)
}

func (h *Handler) ListDoctorAppointments(c echo.Context) error {
	pg := pagination.FromContext(c)
	userID := auth.UserIDFromContext(c.Request().Context())
	items, total, err := h.svc.ListDoctorAppointments(c.Request().Context(), userID, c.QueryParam("status"), pg.Limit, pg.Offset())
	if err != nil {
		return err
	}
	if items == nil {
		items = []*Appointment{}
	}
	return envelope.OK(c, http.StatusOK, "", map[string]interface{}{
		"appointments": items,
		"pagination":   pagination.NewMeta(pg, total),
	})
}

type statusUpdateRequest struct {
	Status string  `json:"status"`
	Notes  *string `json:"notes"`
}

func (h *Handler) UpdateAppointmentStatus(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("Invalid appointment id", "id")
	}
	var req statusUpdateRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("Invalid request body")
	}
	userID := auth.UserIDFromContext(c.Request().Context())
	appt, err := h.svc.UpdateAppointmentStatus(c.Request().Context(), userID, id, req.Status, req.Notes)
	if err != nil {
		return err
	}
	return envelope.OK(c, http.StatusOK, "Appointment updated successfully", map[string]interface{}{"appointment": appt})
}

func (h *Handler) MyPatients(c echo.Context) error {
	pg := pagination.FromContext(c)
	userID := auth.UserIDFromContext(c.Request().Context())
	items, total, err := h.svc.MyPatients(c.Request().Context(), userID, pg.Limit, pg.Offset())
	if err != nil {
		return err
	}
	return envelope.OK(c, http.StatusOK, "", map[string]interface{}{
		"patients":   items,
		"pagination": pagination.NewMeta(pg, total),
	})
}

func (h *Handler) DoctorStats(c echo.Context) error {
	userID := auth.UserIDFromContext(c.Request().Context())
	stats, err := h.svc.DoctorStats(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return envelope.OK(c, http.StatusOK, "", stats)
}
