package controllers

import (
	"strconv"
	"time"

	"meditour-backend/database"
	"meditour-backend/middlewares"
	"meditour-backend/models"
	"meditour-backend/services"
	"meditour-backend/utils"

	"github.com/gofiber/fiber/v2"
)

// reservationView decorates a reservation with its effective status so every
// consumer sees the derived SETTLEMENT state the same way.
type reservationView struct {
	models.Reservation
	EffectiveStatus   string `json:"effective_status"`
	SettlementPending bool   `json:"settlement_pending"`
}

func viewOf(r *models.Reservation, today time.Time) reservationView {
	return reservationView{
		Reservation:       *r,
		EffectiveStatus:   services.EffectiveStatus(r, today),
		SettlementPending: services.IsSettlementPending(r, today),
	}
}

func CreateReservation(c *fiber.Ctx) error {
	var in services.CreateReservationInput
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	utils.NormalizeDTO(&in)
	tx, err := database.GetRequestTx(c)
	if err != nil {
		return err
	}
	r, err := services.CreateReservation(tx, actorFromCtx(c), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(viewOf(r, utils.Today()))
}

func GetReservation(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	tx, err := database.GetRequestTx(c)
	if err != nil {
		return err
	}
	r, err := services.GetReservation(tx, actorFromCtx(c), id)
	if err != nil {
		return err
	}
	return c.JSON(viewOf(r, utils.Today()))
}

func GetReservations(c *fiber.Ctx) error {
	tx, err := database.GetRequestTx(c)
	if err != nil {
		return err
	}
	f := services.ReservationFilter{
		Status:            c.Query("status"),
		SettlementPending: c.QueryBool("settlement_pending"),
		Limit:             utils.ParseIntDefault(c.Query("limit"), 50),
		Offset:            utils.ParseIntDefault(c.Query("offset"), 0),
	}
	list, err := services.ListReservations(tx, actorFromCtx(c), f)
	if err != nil {
		return err
	}
	today := utils.Today()
	views := make([]reservationView, 0, len(list))
	for i := range list {
		views = append(views, viewOf(&list[i], today))
	}
	return c.JSON(views)
}

// reservationPatchDTO allows correcting patient fields before confirmation.
type reservationPatchDTO struct {
	PatientName   *string `json:"patient_name"`
	PatientAge    *int    `json:"patient_age"`
	Nationality   *string `json:"nationality"`
	Language      *string `json:"language"`
	ProcedureName *string `json:"procedure_name"`
	ReservedTime  *string `json:"reserved_time"`
	Memo          *string `json:"memo"`
}

func UpdateReservation(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	var dto reservationPatchDTO
	if err := c.BodyParser(&dto); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	utils.NormalizePtrDTO(&dto)
	if dto.PatientAge != nil && *dto.PatientAge <= 0 {
		return &services.ValidationError{Field: "patient_age", Message: "must be positive"}
	}
	tx, err := database.GetRequestTx(c)
	if err != nil {
		return err
	}
	r, err := services.GetReservation(tx, actorFromCtx(c), id)
	if err != nil {
		return err
	}
	if r.Status != models.StatusPreChat && r.Status != models.StatusPending {
		return &services.IllegalTransitionError{Action: "update", From: r.Status, Role: actorFromCtx(c).Role}
	}
	updates := utils.UpdatesFromPtrDTO(&dto, nil)
	if len(updates) == 0 {
		return c.JSON(viewOf(r, utils.Today()))
	}
	if err := tx.Model(&models.Reservation{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return err
	}
	r, err = services.GetReservation(tx, actorFromCtx(c), id)
	if err != nil {
		return err
	}
	return c.JSON(viewOf(r, utils.Today()))
}

func ClaimPreChat(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	tx, err := database.GetRequestTx(c)
	if err != nil {
		return err
	}
	r, err := services.ClaimPreChat(tx, actorFromCtx(c), id)
	if err != nil {
		return err
	}
	return c.JSON(viewOf(r, utils.Today()))
}

func ConfirmReservation(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	tx, err := database.GetRequestTx(c)
	if err != nil {
		return err
	}
	r, err := services.Confirm(tx, actorFromCtx(c), id)
	if err != nil {
		return err
	}
	return c.JSON(viewOf(r, utils.Today()))
}

func CancelReservation(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	var body struct {
		Reason string `json:"reason"`
	}
	_ = c.BodyParser(&body) // reason is optional
	tx, err := database.GetRequestTx(c)
	if err != nil {
		return err
	}
	r, err := services.Cancel(tx, actorFromCtx(c), id, body.Reason)
	if err != nil {
		return err
	}
	return c.JSON(viewOf(r, utils.Today()))
}

type settlementDTO struct {
	PaymentAmount int64 `json:"payment_amount" validate:"required,gt=0"`
}

// EnterSettlement records the payment amount and the resulting fee split.
// Calling it again before the agency confirms overwrites the snapshot.
func EnterSettlement(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	var dto settlementDTO
	if err := middlewares.BindAndValidate(c, &dto); err != nil {
		return err
	}
	tx, err := database.GetRequestTx(c)
	if err != nil {
		return err
	}
	r, fees, err := services.EnterSettlement(tx, actorFromCtx(c), id, dto.PaymentAmount)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"reservation": viewOf(r, utils.Today()),
		"fees":        fees,
	})
}

// PreviewSettlement runs the commission resolver without committing anything,
// for the live preview shown while the hospital types the amount.
func PreviewSettlement(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	amount := int64(utils.ParseIntDefault(c.Query("payment_amount"), 0))
	if amount <= 0 {
		return &services.ValidationError{Field: "payment_amount", Message: "must be positive"}
	}
	tx, err := database.GetRequestTx(c)
	if err != nil {
		return err
	}
	actor := actorFromCtx(c)
	r, err := services.GetReservation(tx, actor, id)
	if err != nil {
		return err
	}
	var hospital models.Hospital
	if err := tx.First(&hospital, r.HospitalID).Error; err != nil {
		return err
	}
	fees := services.ResolveCommission(amount, &hospital, nil)
	return c.JSON(fees)
}

type completeDTO struct {
	Score   int    `json:"score" validate:"required,min=1,max=5"`
	Comment string `json:"comment"`
}

func CompleteSettlement(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	var dto completeDTO
	if err := middlewares.BindAndValidate(c, &dto); err != nil {
		return err
	}
	tx, err := database.GetRequestTx(c)
	if err != nil {
		return err
	}
	r, err := services.Complete(tx, actorFromCtx(c), id, dto.Score, dto.Comment)
	if err != nil {
		return err
	}
	return c.JSON(viewOf(r, utils.Today()))
}

func ReopenSettlement(c *fiber.Ctx) error {
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
	r, err := services.Reopen(tx, actorFromCtx(c), id, body.Reason)
	if err != nil {
		return err
	}
	return c.JSON(viewOf(r, utils.Today()))
}

func GetReservationHistory(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	tx, err := database.GetRequestTx(c)
	if err != nil {
		return err
	}
	rows, err := services.ListHistory(tx, actorFromCtx(c), id)
	if err != nil {
		return err
	}
	return c.JSON(rows)
}

func paramID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}
	return uint(id), nil
}
