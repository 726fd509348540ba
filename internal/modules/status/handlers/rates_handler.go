package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/MuhamadAgungGumelar/wa-quote-bot/internal/core/rates"
)

type RateSource interface {
	Rates(ctx context.Context) rates.Snapshot
}

type RatesHandler struct {
	rates RateSource
}

func NewRatesHandler(rates RateSource) *RatesHandler {
	return &RatesHandler{rates: rates}
}

// GetRates godoc
// @Summary BCV exchange rates
// @Description Current dollar and euro rates. Refreshes from the BCV page inside the publish window when stale.
// @Tags Rates
// @Produce json
// @Success 200 {object} rates.Snapshot
// @Router /rates [get]
func (h *RatesHandler) GetRates(c *fiber.Ctx) error {
	return c.JSON(h.rates.Rates(c.UserContext()))
}
