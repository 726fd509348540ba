package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// Connection is the WhatsApp state the status endpoints report.
type Connection interface {
	IsConnected() bool
	QRGenerated() bool
	GenerateQR() ([]byte, error)
	StartedAt() time.Time
}

type StatusHandler struct {
	conn Connection
	now  func() time.Time
}

func NewStatusHandler(conn Connection) *StatusHandler {
	return &StatusHandler{conn: conn, now: time.Now}
}

// GetRoot godoc
// @Summary Bot banner
// @Description Short status banner with the WhatsApp readiness flag
// @Tags Status
// @Produce json
// @Success 200 {object} RootResponse
// @Router / [get]
func (h *StatusHandler) GetRoot(c *fiber.Ctx) error {
	return c.JSON(RootResponse{
		Status:    "Bot de WhatsApp Activo",
		Ready:     h.conn.IsConnected(),
		Timestamp: h.now().UTC(),
	})
}

// GetStatus godoc
// @Summary Bot status
// @Description WhatsApp readiness, QR state and process uptime
// @Tags Status
// @Produce json
// @Success 200 {object} StatusResponse
// @Router /status [get]
func (h *StatusHandler) GetStatus(c *fiber.Ctx) error {
	now := h.now()
	return c.JSON(StatusResponse{
		BotReady:    h.conn.IsConnected(),
		QRGenerated: h.conn.QRGenerated(),
		Uptime:      now.Sub(h.conn.StartedAt()).Seconds(),
		Timestamp:   now.UTC(),
	})
}

// GetHealth godoc
// @Summary Liveness check
// @Tags Status
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health [get]
func (h *StatusHandler) GetHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "ok",
		"service":   "wa-quote-bot",
		"connected": h.conn.IsConnected(),
	})
}

type RootResponse struct {
	Status    string    `json:"status"`
	Ready     bool      `json:"ready"`
	Timestamp time.Time `json:"timestamp"`
}

type StatusResponse struct {
	BotReady    bool      `json:"botReady"`
	QRGenerated bool      `json:"qrGenerated"`
	Uptime      float64   `json:"uptime"`
	Timestamp   time.Time `json:"timestamp"`
}
