package patient

import (
	"net/http"
	"strconv"

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
	admin := api.Group("/admin", auth.RequireRole(identity.RoleAdmin))
	admin.GET("/patients", h.ListPatients)
	admin.PATCH("/patients/:id", h.UpdatePatient)

	doctor := api.Group("/doctor", auth.RequireRole(identity.RoleDoctor))
	doctor.POST("/patients/:id/records", h.AddRecord)
	doctor.PUT("/patients/:id/records/:index", h.UpdateRecord)
	doctor.PUT("/patients/:id/billing", h.UpdateBilling)
}

func (h *Handler) ListPatients(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListPatients(c.Request().Context(), pg.Limit, pg.Offset())
	if err != nil {
		return err
	}
	if items == nil {
		items = []*Patient{}
	}
	return envelope.OK(c, http.StatusOK, "", map[string]interface{}{
		"patients":   items,
		"pagination": pagination.NewMeta(pg, total),
	})
}

func (h *Handler) UpdatePatient(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("Invalid patient id", "id")
	}
	var in UpdatePatientInput
	if err := c.Bind(&in); err != nil {
		return apperr.Validation("Invalid request body")
	}
	p, err := h.svc.UpdatePatient(c.Request().Context(), id, in)
	if err != nil {
		return err
	}
	return envelope.OK(c, http.StatusOK, "Patient updated successfully", map[string]interface{}{"patient": p})
}

func (h *Handler) AddRecord(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("Invalid patient id", "id")
	}
	var in RecordInput
	if err := c.Bind(&in); err != nil {
		return apperr.Validation("Invalid request body")
	}
	userID := auth.UserIDFromContext(c.Request().Context())
	p, err := h.svc.AddRecord(c.Request().Context(), userID, patientID, in)
	if err != nil {
		return err
	}
	return envelope.OK(c, http.StatusCreated, "Medical record added successfully", map[string]interface{}{"patient": p})
}

func (h *Handler) UpdateRecord(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("Invalid patient id", "id")
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		return apperr.Validation("Invalid record index", "index")
	}
	var in RecordInput
	if err := c.Bind(&in); err != nil {
		return apperr.Validation("Invalid request body")
	}
	userID := auth.UserIDFromContext(c.Request().Context())
	p, err := h.svc.UpdateRecord(c.Request().Context(), userID, patientID, index, in)
	if err != nil {
		return err
	}
	return envelope.OK(c, http.StatusOK, "Medical record updated successfully", map[string]interface{}{"patient": p})
}

type billingRequest struct {
	BillingAmount *float64 `json:"billing_amount"`
}

func (h *Handler) UpdateBilling(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("Invalid patient id", "id")
	}
	var req billingRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("Invalid request body")
	}
	if req.BillingAmount == nil {
		return apperr.Validation("billing_amount is required", "billing_amount")
	}
	userID := auth.UserIDFromContext(c.Request().Context())
	p, err := h.svc.UpdateBilling(c.Request().Context(), userID, patientID, *req.BillingAmount)
	if err != nil {
		return err
	}
	return envelope.OK(c, http.StatusOK, "Billing updated successfully", map[string]interface{}{"patient": p})
}
