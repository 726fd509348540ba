package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/MuhamadAgungGumelar/wa-quote-bot/internal/core/whatsapp"
)

type WhatsAppHandler struct {
	conn Connection
}

func NewWhatsAppHandler(conn Connection) *WhatsAppHandler {
	return &WhatsAppHandler{conn: conn}
}

// GetQRCode godoc
// @Summary WhatsApp pairing QR
// @Description The pending pairing code as a PNG. 404 when the session is already paired.
// @Tags WhatsApp
// @Produce image/png
// @Success 200 {file} image/png
// @Failure 404 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /whatsapp/qr [get]
func (h *WhatsAppHandler) GetQRCode(c *fiber.Ctx) error {
	qr, err := h.conn.GenerateQR()
	if errors.Is(err, whatsapp.ErrNoQR) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":     "no QR code pending",
			"connected": h.conn.IsConnected(),
		})
	}
	if err != nil {
		log.Error().Err(err).Msg("❌ Failed to generate QR")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	c.Set("Content-Type", "image/png")
	c.Set("Content-Disposition", "inline; filename=whatsapp-qr.png")
	return c.Send(qr)
}
