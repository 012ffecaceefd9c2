package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/pingme/pingme/internal/middleware"
	"github.com/pingme/pingme/internal/model"
	"github.com/pingme/pingme/internal/service"
)

// documentField is the multipart form field carrying the uploaded file.
const documentField = "documents"

// VehicleHandler handles vehicle submissions.
type VehicleHandler struct {
	svc           *service.VehicleService
	logger        *slog.Logger
	maxUploadSize int64
}

// NewVehicleHandler creates a new VehicleHandler.
func NewVehicleHandler(svc *service.VehicleService, logger *slog.Logger, maxUploadSize int64) *VehicleHandler {
	return &VehicleHandler{svc: svc, logger: logger, maxUploadSize: maxUploadSize}
}

// Submit handles POST /vehicle-details. The request is a multipart form
// with the vehicle fields and the document in the "documents" field.
// The route is behind the auth guard, so a session is always present.
func (h *VehicleHandler) Submit(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	file, header, err := r.FormFile(documentField)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Document upload is required")
		return
	}
	defer file.Close()

	input := service.VehicleInput{
		VehicleNumber:    r.FormValue("vehicleNumber"),
		VehicleType:      r.FormValue("vehicleType"),
		BrandModel:       r.FormValue("brandModel"),
		RegistrationYear: r.FormValue("registrationYear"),
	}

	vehicle, err := h.svc.SubmitVehicle(r.Context(), sess.User, input, file, header.Filename)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			writeError(w, http.StatusBadRequest, "Invalid vehicle details")
			return
		}
		h.logger.Error("vehicle save failed",
			slog.String("error", err.Error()),
			slog.String("request_id", middleware.GetRequestID(r.Context())),
		)
		writeError(w, http.StatusInternalServerError, "Failed to save vehicle")
		return
	}

	h.logger.Info("vehicle saved",
		slog.String("vehicle_id", vehicle.ID),
		slog.String("owner_id", vehicle.OwnerID),
		slog.String("request_id", middleware.GetRequestID(r.Context())),
	)

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Vehicle saved",
		"vehicle": vehicle,
	})
}

// List handles GET /vehicles, returning the session user's submissions.
func (h *VehicleHandler) List(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromContext(r.Context())

	vehicles, err := h.svc.ListVehicles(r.Context(), sess.User.ID)
	if err != nil {
		h.logger.Error("vehicle list failed",
			slog.String("error", err.Error()),
			slog.String("request_id", middleware.GetRequestID(r.Context())),
		)
		writeError(w, http.StatusInternalServerError, "Failed to list vehicles")
		return
	}

	if vehicles == nil {
		vehicles = []*model.Vehicle{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"vehicles": vehicles})
}
