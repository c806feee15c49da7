package identity

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

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
	api.POST("/auth/login", h.Login)
	api.GET("/auth/profile", h.Profile)

	// Anonymous booking surface
	api.GET("/appointments/doctors", h.ListActiveDoctors)

	admin := api.Group("/admin", auth.RequireRole(RoleAdmin))
	admin.POST("/doctors", h.CreateDoctor)
	admin.GET("/doctors", h.ListDoctors)
	admin.PATCH("/doctors/:id", h.UpdateDoctor)
	admin.DELETE("/doctors/:id", h.DeleteDoctor)
	admin.PATCH("/doctors/:id/toggle-status", h.ToggleDoctorStatus)

	doctor := api.Group("/doctor", auth.RequireRole(RoleDoctor))
	doctor.PUT("/availability", h.UpdateAvailability)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("Invalid request body")
	}
	result, err := h.svc.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return envelope.OK(c, http.StatusOK, "Login successful", result)
}

func (h *Handler) Profile(c echo.Context) error {
	userID := auth.UserIDFromContext(c.Request().Context())
	result, err := h.svc.Profile(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return envelope.OK(c, http.StatusOK, "", result)
}

func (h *Handler) CreateDoctor(c echo.Context) error {
	var in CreateDoctorInput
	if err := c.Bind(&in); err != nil {
		return apperr.Validation("Invalid request body")
	}
	doctor, token, err := h.svc.CreateDoctor(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return envelope.OK(c, http.StatusCreated, "Doctor created successfully", map[string]interface{}{
		"doctor": doctor,
		"token":  token,
	})
}

func (h *Handler) ListDoctors(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListDoctors(c.Request().Context(), pg.Limit, pg.Offset())
	if err != nil {
		return err
	}
	if items == nil {
		items = []*Doctor{}
	}
	return envelope.OK(c, http.StatusOK, "", map[string]interface{}{
		"doctors":    items,
		"pagination": pagination.NewMeta(pg, total),
	})
}

func (h *Handler) UpdateDoctor(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("Invalid doctor id", "id")
	}
	var in UpdateDoctorInput
	if err := c.Bind(&in); err != nil {
		return apperr.Validation("Invalid request body")
	}
	doctor, err := h.svc.UpdateDoctor(c.Request().Context(), id, in)
	if err != nil {
		return err
	}
	return envelope.OK(c, http.StatusOK, "Doctor updated successfully", map[string]interface{}{"doctor": doctor})
}

func (h *Handler) DeleteDoctor(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("Invalid doctor id", "id")
	}
	if err := h.svc.DeleteDoctor(c.Request().Context(), id); err != nil {
		return err
	}
	return envelope.OK(c, http.StatusOK, "Doctor deleted successfully", nil)
}

func (h *Handler) ToggleDoctorStatus(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("Invalid doctor id", "id")
	}
	doctor, err := h.svc.ToggleDoctorStatus(c.Request().Context(), id)
	if err != nil {
		return err
	}
	msg := "Doctor deactivated successfully"
	if doctor.IsActive {
		msg = "Doctor activated successfully"
	}
	return envelope.OK(c, http.StatusOK, msg, map[string]interface{}{"doctor": doctor})
}

func (h *Handler) ListActiveDoctors(c echo.Context) error {
	items, err := h.svc.ListActiveDoctors(c.Request().Context(), c.QueryParam("specialization"))
	if err != nil {
		return err
	}
	views := make([]map[string]interface{}, 0, len(items))
	for _, d := range items {
		views = append(views, d.PublicView())
	}
	return envelope.OK(c, http.StatusOK, "", map[string]interface{}{"doctors": views})
}

type availabilityRequest struct {
	Availability []DayRule `json:"availability"`
}

func (h *Handler) UpdateAvailability(c echo.Context) error {
	var req availabilityRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("Invalid request body")
	}
	userID := auth.UserIDFromContext(c.Request().Context())
	rules, err := h.svc.UpdateAvailability(c.Request().Context(), userID, req.Availability)
	if err != nil {
		return err
	}
	return envelope.OK(c, http.StatusOK, "Availability updated successfully", map[string]interface{}{"availability": rules})
}
