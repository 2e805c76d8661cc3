package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"fleet-service/internal/model"
	"fleet-service/internal/service"
)

type Handler struct {
	vehicleService *service.VehicleService
	routeService   *service.RouteService
	log            zerolog.Logger
}

func NewHandler(
	vehicleService *service.VehicleService,
	routeService *service.RouteService,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		vehicleService: vehicleService,
		routeService:   routeService,
		log:            log,
	}
}

type vehiclePayload struct {
	Plate    string `json:"plate" binding:"required"`
	Make     string `json:"make" binding:"required"`
	Model    string `json:"model" binding:"required"`
	Year     int    `json:"year" binding:"required"`
	Capacity int    `json:"capacity" binding:"required"`
	Status   string `json:"status"`
}

func (h *Handler) listVehicles(c *gin.Context) {
	opts := service.ListVehiclesOptions{
		Search: strings.TrimSpace(c.Query("search")),
	}
	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		status, fe := model.ParseVehicleStatus(raw)
		if fe != nil {
			c.JSON(http.StatusBadRequest, errorResponse(fe.Error()))
			return
		}
		opts.Status = &status
	}
	opts.Limit, opts.Offset = parsePage(c)

	records, err := h.vehicleService.List(c.Request.Context(), opts)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(gin.H{"items": records}))
}

func (h *Handler) getVehicle(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid vehicle id"))
		return
	}

	record, err := h.vehicleService.Get(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(record))
}

func (h *Handler) createVehicle(c *gin.Context) {
	var req vehiclePayload
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	record, err := h.vehicleService.Create(c.Request.Context(), vehicleInput(req))
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse(record))
}

func (h *Handler) updateVehicle(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid vehicle id"))
		return
	}

	var req vehiclePayload
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	record, err := h.vehicleService.Update(c.Request.Context(), id, vehicleInput(req))
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(record))
}

func (h *Handler) setVehicleStatus(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid vehicle id"))
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	record, err := h.vehicleService.SetStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(record))
}

func (h *Handler) deleteVehicle(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid vehicle id"))
		return
	}

	if err := h.vehicleService.Delete(c.Request.Context(), id); err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(gin.H{"status": "deleted"}))
}

type routePayload struct {
	Name             string  `json:"name" binding:"required"`
	Origin           string  `json:"origin" binding:"required"`
	Destination      string  `json:"destination" binding:"required"`
	DistanceKm       float64 `json:"distance_km" binding:"required"`
	EstimatedMinutes int     `json:"estimated_minutes" binding:"required"`
	VehicleID        *string `json:"vehicle_id"`
}

func (h *Handler) listRoutes(c *gin.Context) {
	opts := service.ListRoutesOptions{
		Search: strings.TrimSpace(c.Query("search")),
	}
	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		status, fe := model.ParseRouteStatus(raw)
		if fe != nil {
			c.JSON(http.StatusBadRequest, errorResponse(fe.Error()))
			return
		}
		opts.Status = &status
	}
	if raw := strings.TrimSpace(c.Query("vehicle_id")); raw != "" {
		vehicleID, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse("invalid vehicle_id"))
			return
		}
		opts.VehicleID = &vehicleID
	}
	opts.Limit, opts.Offset = parsePage(c)

	records, err := h.routeService.List(c.Request.Context(), opts)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(gin.H{"items": records}))
}

func (h *Handler) getRoute(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid route id"))
		return
	}

	record, err := h.routeService.Get(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(record))
}

func (h *Handler) createRoute(c *gin.Context) {
	var req routePayload
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	input, err := routeInput(req)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	record, err := h.routeService.Create(c.Request.Context(), input)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse(record))
}

func (h *Handler) updateRoute(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid route id"))
		return
	}

	var req routePayload
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	input, err := routeInput(req)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	record, err := h.routeService.Update(c.Request.Context(), id, input)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(record))
}

func (h *Handler) assignRouteVehicle(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid route id"))
		return
	}

	var req struct {
		VehicleID *string `json:"vehicle_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	var vehicleID *uuid.UUID
	if req.VehicleID != nil && strings.TrimSpace(*req.VehicleID) != "" {
		parsed, err := uuid.Parse(strings.TrimSpace(*req.VehicleID))
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse("invalid vehicle_id"))
			return
		}
		vehicleID = &parsed
	}

	record, err := h.routeService.AssignVehicle(c.Request.Context(), id, vehicleID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(record))
}

func (h *Handler) startRoute(c *gin.Context) {
	h.transitionRoute(c, h.routeService.Start)
}

func (h *Handler) completeRoute(c *gin.Context) {
	h.transitionRoute(c, h.routeService.Complete)
}

func (h *Handler) cancelRoute(c *gin.Context) {
	h.transitionRoute(c, h.routeService.Cancel)
}

func (h *Handler) transitionRoute(c *gin.Context, op func(context.Context, uuid.UUID) (*model.RouteRecord, error)) {
	id, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid route id"))
		return
	}

	record, err := op(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(record))
}

func (h *Handler) deleteRoute(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid route id"))
		return
	}

	if err := h.routeService.Delete(c.Request.Context(), id); err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(gin.H{"status": "deleted"}))
}

func (h *Handler) reconcile(c *gin.Context) {
	corrected, err := h.vehicleService.Reconcile(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(gin.H{"corrected": corrected}))
}

func (h *Handler) fleetStats(c *gin.Context) {
	stats, err := h.vehicleService.Stats(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(stats))
}

func (h *Handler) handleError(c *gin.Context, err error) {
	var validationErr *service.ValidationError
	var ruleErr *service.BusinessRuleError

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Error(), "field": validationErr.Field})
	case errors.As(err, &ruleErr):
		c.JSON(http.StatusConflict, errorResponse(ruleErr.Error()))
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, errorResponse(err.Error()))
	default:
		h.log.Error().Err(err).Msg("handler error")
		c.JSON(http.StatusInternalServerError, errorResponse("internal error"))
	}
}

func parseID(c *gin.Context) (uuid.UUID, error) {
	return uuid.Parse(strings.TrimSpace(c.Param("id")))
}

func parsePage(c *gin.Context) (limit, offset int) {
	limit = 50
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			limit = v
		}
	}
	if limit > 200 {
		limit = 200
	}
	if raw := strings.TrimSpace(c.Query("offset")); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			offset = v
		}
	}
	return limit, offset
}

func vehicleInput(req vehiclePayload) service.VehicleInput {
	return service.VehicleInput{
		Plate:    req.Plate,
		Make:     req.Make,
		Model:    req.Model,
		Year:     req.Year,
		Capacity: req.Capacity,
		Status:   req.Status,
	}
}

func routeInput(req routePayload) (service.RouteInput, error) {
	input := service.RouteInput{
		Name:             req.Name,
		Origin:           req.Origin,
		Destination:      req.Destination,
		DistanceKm:       req.DistanceKm,
		EstimatedMinutes: req.EstimatedMinutes,
	}
	if req.VehicleID != nil && strings.TrimSpace(*req.VehicleID) != "" {
		vehicleID, err := uuid.Parse(strings.TrimSpace(*req.VehicleID))
		if err != nil {
			return input, errors.New("invalid vehicle_id")
		}
		input.VehicleID = &vehicleID
	}
	return input, nil
}

type responseEnvelope struct {
	Data interface{} `json:"data"`
}

func successResponse(data interface{}) responseEnvelope {
	return responseEnvelope{Data: data}
}

func errorResponse(msg string) gin.H {
	return gin.H{"error": msg}
}
