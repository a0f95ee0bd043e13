package controllers

import (
	"context"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/placement/internal/app/models/dto"
	"github.com/yigit/placement/internal/app/services"
	"github.com/yigit/placement/internal/middleware"
	"github.com/yigit/placement/internal/pkg/metrics"
	"github.com/yigit/placement/internal/pkg/stream"
	"github.com/yigit/placement/internal/pkg/websocket"
)

// LiveConfig sets the cadence of the live seminar stream
type LiveConfig struct {
	QRInterval         time.Duration
	AttendanceInterval time.Duration
	MaxBackoff         time.Duration
}

// LiveController streams QR tokens and attendance snapshots to admin clients
type LiveController struct {
	ws             *websocket.Handler
	qrService      services.QRService
	seminarService services.SeminarService
	metrics        *metrics.Metrics
	config         LiveConfig
	logger         zerolog.Logger
}

// NewLiveController creates a new LiveController
func NewLiveController(
	ws *websocket.Handler,
	qrService services.QRService,
	seminarService services.SeminarService,
	m *metrics.Metrics,
	config LiveConfig,
	logger zerolog.Logger,
) *LiveController {
	return &LiveController{
		ws:             ws,
		qrService:      qrService,
		seminarService: seminarService,
		metrics:        m,
		config:         config,
		logger:         logger,
	}
}

// Live upgrades to a websocket joined to the seminar room
// @Summary Live seminar stream
// @Description Pushes qr_token and attendance frames on a fixed cadence plus attendance_marked and qr_status events. The token may be passed as a query parameter.
// @Tags seminars
// @Security BearerAuth
// @Param id path int true "Seminar ID"
// @Param token query string false "Bearer token for browsers"
// @Success 101 "Switching protocols"
// @Failure 404 {object} dto.ErrorResponse "Seminar not found"
// @Router /admin/seminars/{id}/live [get]
func (c *LiveController) Live(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	if _, err := c.seminarService.GetSeminar(ctx, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	userID, ok := sessionUserID(ctx)
	if !ok {
		return
	}

	client, err := c.ws.Connect(ctx, id, userID)
	if err != nil {
		// the upgrader has already answered
		return
	}

	streamCtx, cancel := context.WithCancel(context.Background())
	go func() {
		<-client.Done()
		cancel()
	}()
	go c.stream(streamCtx, client, id)
}

func (c *LiveController) stream(ctx context.Context, client *websocket.Client, seminarID int64) {
	c.metrics.RecordLiveStream(ctx, 1)
	defer c.metrics.RecordLiveStream(context.Background(), -1)

	onError := func(kind string) func(error, time.Duration) {
		return func(err error, retryIn time.Duration) {
			c.logger.Warn().
				Err(err).
				Int64("seminarID", seminarID).
				Str("stream", kind).
				Dur("retryIn", retryIn).
				Msg("Live stream fetch failed")
			client.Send(websocket.NewFrame(websocket.FrameError, seminarID, gin.H{"stream": kind, "message": "temporarily unavailable"}))
		}
	}

	qr := stream.NewPoller(c.config.QRInterval, c.config.MaxBackoff, func(ctx context.Context) (*dto.QRResponse, error) {
		return c.qrService.CurrentQR(ctx, seminarID)
	})
	qr.OnError = onError("qr")

	attendance := stream.NewPoller(c.config.AttendanceInterval, c.config.MaxBackoff, func(ctx context.Context) (*dto.AttendanceListResponse, error) {
		return c.seminarService.GetAttendance(ctx, seminarID, "")
	})
	attendance.OnError = onError("attendance")

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_ = qr.Run(ctx, func(v *dto.QRResponse) {
			client.Send(websocket.NewFrame(websocket.FrameQRToken, seminarID, v))
		})
	}()
	go func() {
		defer wg.Done()
		_ = attendance.Run(ctx, func(v *dto.AttendanceListResponse) {
			client.Send(websocket.NewFrame(websocket.FrameAttendance, seminarID, v))
		})
	}()
	wg.Wait()

	c.logger.Debug().Int64("seminarID", seminarID).Msg("Live stream stopped")
}
