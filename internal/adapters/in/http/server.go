// Package http contains the inbound HTTP adapter: the REST surface for
// registering trips, queueing their execution and polling execution status.
package http

import (
	"errors"
	"net/http"
	"time"

	"tripmgr/internal/core/application/usecases/commands"
	"tripmgr/internal/core/application/usecases/queries"
	"tripmgr/internal/core/domain/model/kernel"
	"tripmgr/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// Error is the JSON error body returned by every failing endpoint.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// OrderLineRequest is one inventory line of an order in the create request.
type OrderLineRequest struct {
	UnitID   string  `json:"unit_id"`
	Quantity float64 `json:"quantity"`
}

// OrderRequest is one order of the trip in the create request.
type OrderRequest struct {
	OrderRef      string             `json:"order_ref"`
	StopNumber    int                `json:"stop_number"`
	TargetRoom    string             `json:"target_room"`
	VendorLicense string             `json:"vendor_license"`
	Lines         []OrderLineRequest `json:"lines"`
}

// RouteSegmentRequest is one planned route stop in the create request.
type RouteSegmentRequest struct {
	StopNumber int       `json:"stop_number"`
	Departure  time.Time `json:"departure"`
	Arrival    time.Time `json:"arrival"`
	RouteText  string    `json:"route_text"`
}

// CreateTripRequest is the body of POST /api/v1/trips.
type CreateTripRequest struct {
	PrimaryDriverID string                `json:"primary_driver_id"`
	SecondDriverID  string                `json:"second_driver_id"`
	VehicleID       string                `json:"vehicle_id"`
	Orders          []OrderRequest        `json:"orders"`
	RouteSegments   []RouteSegmentRequest `json:"route_segments"`
}

// CreateTripResponse is the body returned after a trip is registered.
type CreateTripResponse struct {
	TripID string `json:"trip_id"`
}

// ExecuteTripResponse is the body returned after a trip is queued for
// execution. The job id identifies this attempt; clients poll the status
// endpoint with the trip id.
type ExecuteTripResponse struct {
	TripID   string `json:"trip_id"`
	JobID    string `json:"job_id"`
	Status   string `json:"status"`
	Attempts int    `json:"attempts"`
}

// OrderStatusResponse is the per-order slice of the execution status document.
type OrderStatusResponse struct {
	OrderRef     string `json:"order_ref"`
	StopNumber   int    `json:"stop_number"`
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message,omitempty"`
	ManifestID   string `json:"manifest_id,omitempty"`
}

// ExecutionStatusResponse is the body of GET /api/v1/trips/:id/execution-status.
type ExecutionStatusResponse struct {
	TripID          string                `json:"trip_id"`
	JobID           string                `json:"job_id"`
	Status          string                `json:"status"`
	ProgressMessage string                `json:"progress_message"`
	GeneralError    string                `json:"general_error,omitempty"`
	Attempts        int                   `json:"attempts"`
	QueuedAt        time.Time             `json:"queued_at"`
	StartedAt       *time.Time            `json:"started_at,omitempty"`
	CompletedAt     *time.Time            `json:"completed_at,omitempty"`
	Orders          []OrderStatusResponse `json:"orders"`
}

// Server coordinates between HTTP handlers and application use cases.
type Server struct {
	// Command handlers
	createTripHandler       commands.CreateTripCommandHandler
	enqueueExecutionHandler commands.EnqueueTripExecutionCommandHandler

	// Query handlers
	getExecutionStatusHandler queries.GetExecutionStatusQueryHandler
}

// NewServer creates a new HTTP server with the required command and query handlers.
func NewServer(
	createTripHandler commands.CreateTripCommandHandler,
	enqueueExecutionHandler commands.EnqueueTripExecutionCommandHandler,
	getExecutionStatusHandler queries.GetExecutionStatusQueryHandler,
) *Server {
	return &Server{
		createTripHandler:         createTripHandler,
		enqueueExecutionHandler:   enqueueExecutionHandler,
		getExecutionStatusHandler: getExecutionStatusHandler,
	}
}

// RegisterRoutes attaches the server's endpoints to the echo instance.
func (s *Server) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", s.Health)

	v1 := e.Group("/api/v1")
	v1.POST("/trips", s.CreateTrip)
	v1.POST("/trips/:tripId/execute", s.ExecuteTrip)
	v1.GET("/trips/:tripId/execution-status", s.GetExecutionStatus)
}

// Health handles GET /health - liveness probe.
func (s *Server) Health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// CreateTrip handles POST /api/v1/trips - registers a new trip with its
// orders and planned route.
func (s *Server) CreateTrip(ctx echo.Context) error {
	var request CreateTripRequest
	if err := ctx.Bind(&request); err != nil {
		return ctx.JSON(http.StatusBadRequest, Error{
			Code:    http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	tripID := kernel.NewUUID()
	cmd, err := commands.NewCreateTripCommand(
		tripID,
		request.PrimaryDriverID,
		request.SecondDriverID,
		request.VehicleID,
		ordersFromRequest(request.Orders),
		segmentsFromRequest(request.RouteSegments),
	)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, Error{
			Code:    http.StatusBadRequest,
			Message: "Invalid trip data: " + err.Error(),
		})
	}

	if handleErr := s.createTripHandler.Handle(ctx.Request().Context(), cmd); handleErr != nil {
		if errors.Is(handleErr, errs.ErrValueIsInvalid) ||
			errors.Is(handleErr, errs.ErrValueIsRequired) ||
			errors.Is(handleErr, errs.ErrValueIsOutOfRange) {
			return ctx.JSON(http.StatusBadRequest, Error{
				Code:    http.StatusBadRequest,
				Message: "Invalid trip data: " + handleErr.Error(),
			})
		}
		return ctx.JSON(http.StatusInternalServerError, Error{
			Code:    http.StatusInternalServerError,
			Message: "Failed to create trip",
		})
	}

	return ctx.JSON(http.StatusCreated, CreateTripResponse{TripID: tripID.String()})
}

// ExecuteTrip handles POST /api/v1/trips/:tripId/execute - queues the trip
// for asynchronous execution. Calling it again while an execution is active
// returns the active job; calling it after a finished attempt requeues the
// trip for another one.
func (s *Server) ExecuteTrip(ctx echo.Context) error {
	tripID, err := kernel.UUIDFromString(ctx.Param("tripId"))
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, Error{
			Code:    http.StatusBadRequest,
			Message: "Invalid trip id",
		})
	}

	cmd, err := commands.NewEnqueueTripExecutionCommand(tripID)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, Error{
			Code:    http.StatusBadRequest,
			Message: "Invalid trip id: " + err.Error(),
		})
	}

	record, err := s.enqueueExecutionHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		if errors.Is(err, errs.ErrObjectNotFound) {
			return ctx.JSON(http.StatusNotFound, Error{
				Code:    http.StatusNotFound,
				Message: "Trip not found",
			})
		}
		return ctx.JSON(http.StatusInternalServerError, Error{
			Code:    http.StatusInternalServerError,
			Message: "Failed to queue trip execution",
		})
	}

	return ctx.JSON(http.StatusAccepted, ExecuteTripResponse{
		TripID:   record.TripID().String(),
		JobID:    record.JobID().String(),
		Status:   record.Status().String(),
		Attempts: record.Attempts(),
	})
}

// GetExecutionStatus handles GET /api/v1/trips/:tripId/execution-status -
// returns the trip-level outcome and the per-order breakdown.
func (s *Server) GetExecutionStatus(ctx echo.Context) error {
	tripID, err := kernel.UUIDFromString(ctx.Param("tripId"))
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, Error{
			Code:    http.StatusBadRequest,
			Message: "Invalid trip id",
		})
	}

	query, err := queries.NewGetExecutionStatusQuery(tripID)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, Error{
			Code:    http.StatusBadRequest,
			Message: "Invalid trip id: " + err.Error(),
		})
	}

	status, err := s.getExecutionStatusHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		if errors.Is(err, errs.ErrObjectNotFound) {
			return ctx.JSON(http.StatusNotFound, Error{
				Code:    http.StatusNotFound,
				Message: "Trip has never been queued for execution",
			})
		}
		return ctx.JSON(http.StatusInternalServerError, Error{
			Code:    http.StatusInternalServerError,
			Message: "Failed to retrieve execution status",
		})
	}

	orders := make([]OrderStatusResponse, len(status.Orders))
	for i, order := range status.Orders {
		orders[i] = OrderStatusResponse{
			OrderRef:     order.OrderRef,
			StopNumber:   order.StopNumber,
			Status:       order.Status,
			ErrorMessage: order.ErrorMessage,
			ManifestID:   order.ManifestID,
		}
	}

	return ctx.JSON(http.StatusOK, ExecutionStatusResponse{
		TripID:          status.TripID.String(),
		JobID:           status.JobID.String(),
		Status:          status.Status,
		ProgressMessage: status.ProgressMessage,
		GeneralError:    status.GeneralError,
		Attempts:        status.Attempts,
		QueuedAt:        status.QueuedAt,
		StartedAt:       status.StartedAt,
		CompletedAt:     status.CompletedAt,
		Orders:          orders,
	})
}

func ordersFromRequest(orders []OrderRequest) []commands.OrderSpec {
	specs := make([]commands.OrderSpec, 0, len(orders))
	for _, order := range orders {
		lines := make([]commands.OrderLineSpec, 0, len(order.Lines))
		for _, line := range order.Lines {
			lines = append(lines, commands.OrderLineSpec{
				UnitID:   line.UnitID,
				Quantity: line.Quantity,
			})
		}

		specs = append(specs, commands.OrderSpec{
			OrderRef:      order.OrderRef,
			StopNumber:    order.StopNumber,
			TargetRoom:    order.TargetRoom,
			VendorLicense: order.VendorLicense,
			Lines:         lines,
		})
	}
	return specs
}

func segmentsFromRequest(segments []RouteSegmentRequest) []commands.RouteSegmentSpec {
	specs := make([]commands.RouteSegmentSpec, 0, len(segments))
	for _, segment := range segments {
		specs = append(specs, commands.RouteSegmentSpec{
			StopNumber: segment.StopNumber,
			Departure:  segment.Departure,
			Arrival:    segment.Arrival,
			RouteText:  segment.RouteText,
		})
	}
	return specs
}
