package controllers

import (
	"time"

	"meditour-backend/database"
	"meditour-backend/middlewares"
	"meditour-backend/services"
	"meditour-backend/utils"

	"github.com/gofiber/fiber/v2"
)

func GetEligibleSettlements(c *fiber.Ctx) error {
	actor := actorFromCtx(c)
	agencyID := uint(utils.ParseIntDefault(c.Query("agency_id"), 0))
	if agencyID == 0 && actor.IsAgency() {
		agencyID = actor.TenantID
	}
	var from, to *time.Time
	if v := c.Query("from"); v != "" {
		d, err := utils.ParseDate(v)
		if err != nil {
			return &services.ValidationError{Field: "from", Message: "must be YYYY-MM-DD"}
		}
		from = &d
	}
	if v := c.Query("to"); v != "" {
		d, err := utils.ParseDate(v)
		if err != nil {
			return &services.ValidationError{Field: "to", Message: "must be YYYY-MM-DD"}
		}
		to = &d
	}
	tx, err := database.GetRequestTx(c)
	if err != nil {
		return err
	}
	list, err := services.ListEligibleSettlements(tx, actor, agencyID, from, to)
	if err != nil {
		return err
	}
	return c.JSON(list)
}

type payoutRequestDTO struct {
	AgencyID       uint   `json:"agency_id"`
	ReservationIDs []uint `json:"reservation_ids" validate:"required,min=1"`
	FromDate       string `json:"from_date" validate:"required"`
	ToDate         string `json:"to_date" validate:"required"`
}

func CreatePayoutRequest(c *fiber.Ctx) error {
	var dto payoutRequestDTO
	if err := middlewares.BindAndValidate(c, &dto); err != nil {
		return err
	}
	actor := actorFromCtx(c)
	if dto.AgencyID == 0 && actor.IsAgency() {
		dto.AgencyID = actor.TenantID
	}
	from, err := utils.ParseDate(dto.FromDate)
	if err != nil {
		return &services.ValidationError{Field: "from_date", Message: "must be YYYY-MM-DD"}
	}
	to, err := utils.ParseDate(dto.ToDate)
	if err != nil {
		return &services.ValidationError{Field: "to_date", Message: "must be YYYY-MM-DD"}
	}
	tx, err := database.GetRequestTx(c)
	if err != nil {
		return err
	}
	req, err := services.CreatePayoutRequest(tx, actor, dto.AgencyID, dto.ReservationIDs, from, to)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(req)
}

func GetPayoutRequests(c *fiber.Ctx) error {
	tx, err := database.GetRequestTx(c)
	if err != nil {
		return err
	}
	list, err := services.ListPayoutRequests(tx, actorFromCtx(c), c.Query("status"))
	if err != nil {
		return err
	}
	return c.JSON(list)
}

func MarkPayoutPaid(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	tx, err := database.GetRequestTx(c)
	if err != nil {
		return err
	}
	req, err := services.MarkPayoutPaid(tx, actorFromCtx(c), id)
	if err != nil {
		return err
	}
	return c.JSON(req)
}

func RejectPayoutRequest(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	var body struct {
		Reason string `json:"reason"`
	}
	_ = c.BodyParser(&body)
	tx, err := database.GetRequestTx(c)
	if err != nil {
		return err
	}
	req, err := services.RejectPayoutRequest(tx, actorFromCtx(c), id, body.Reason)
	if err != nil {
		return err
	}
	return c.JSON(req)
}
