package controllers

import (
	"meditour-backend/database"
	"meditour-backend/middlewares"
	"meditour-backend/services"
	"meditour-backend/utils"

	"github.com/gofiber/fiber/v2"
)

type chargeRequestDTO struct {
	HospitalID uint   `json:"hospital_id"`
	Amount     int64  `json:"amount" validate:"required,gt=0"`
	Memo       string `json:"memo"`
}

func CreateChargeRequest(c *fiber.Ctx) error {
	var dto chargeRequestDTO
	if err := middlewares.BindAndValidate(c, &dto); err != nil {
		return err
	}
	actor := actorFromCtx(c)
	if dto.HospitalID == 0 && actor.IsHospital() {
		dto.HospitalID = actor.TenantID
	}
	tx, err := database.GetRequestTx(c)
	if err != nil {
		return err
	}
	req, err := services.CreateChargeRequest(tx, actor, dto.HospitalID, dto.Amount, dto.Memo)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(req)
}

func ApproveChargeRequest(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	tx, err := database.GetRequestTx(c)
	if err != nil {
		return err
	}
	req, err := services.ApproveChargeRequest(tx, actorFromCtx(c), id)
	if err != nil {
		return err
	}
	return c.JSON(req)
}

func RejectChargeRequest(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	var body struct {
		Memo string `json:"memo"`
	}
	_ = c.BodyParser(&body)
	tx, err := database.GetRequestTx(c)
	if err != nil {
		return err
	}
	req, err := services.RejectChargeRequest(tx, actorFromCtx(c), id, body.Memo)
	if err != nil {
		return err
	}
	return c.JSON(req)
}

func GetChargeRequests(c *fiber.Ctx) error {
	actor := actorFromCtx(c)
	hospitalID := uint(utils.ParseIntDefault(c.Query("hospital_id"), 0))
	if hospitalID == 0 && actor.IsHospital() {
		hospitalID = actor.TenantID
	}
	tx, err := database.GetRequestTx(c)
	if err != nil {
		return err
	}
	list, err := services.ListChargeRequests(tx, actor, hospitalID, c.Query("status"))
	if err != nil {
		return err
	}
	return c.JSON(list)
}
