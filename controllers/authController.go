package controllers

import (
	"net/mail"
	"time"

	"meditour-backend/database"
	"meditour-backend/middlewares"
	"meditour-backend/models"
	"meditour-backend/services"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type registerDTO struct {
	FirstName       string `json:"first_name" validate:"required"`
	LastName        string `json:"last_name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8"`
	PasswordConfirm string `json:"password_confirm" validate:"required"`
	Role            string `json:"role" validate:"required,oneof=HOSPITAL AGENCY ADMIN"`
	HospitalID      *uint  `json:"hospital_id"`
	AgencyID        *uint  `json:"agency_id"`
}

func Register(c *fiber.Ctx) error {
	var data registerDTO
	if err := middlewares.BindAndValidate(c, &data); err != nil {
		return err
	}
	if data.Password != data.PasswordConfirm {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "passwords do not match",
		})
	}
	switch data.Role {
	case models.RoleHospital:
		if data.HospitalID == nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "hospital_id required for hospital users"})
		}
	case models.RoleAgency:
		if data.AgencyID == nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "agency_id required for agency users"})
		}
	}

	var mailExist models.User
	database.DB.Where("email = ?", data.Email).First(&mailExist)
	if mailExist.Email != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "email already exists",
		})
	}

	user := models.User{
		FirstName:  data.FirstName,
		LastName:   data.LastName,
		Email:      data.Email,
		Role:       data.Role,
		HospitalID: data.HospitalID,
		AgencyID:   data.AgencyID,
	}
	user.SetPassword(data.Password)
	if err := database.DB.Create(&user).Error; err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Could not create user",
			"error":   err.Error(),
		})
	}
	return c.JSON(user)
}

func Login(c *fiber.Ctx) error {
	var data map[string]string
	if err := c.BodyParser(&data); err != nil {
		return err
	}

	if _, err := mail.ParseAddress(data["email"]); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid email format",
		})
	}

	var user models.User
	database.DB.Where("email = ?", data["email"]).First(&user)
	if _, err := uuid.Parse(user.Id); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid credentials",
		})
	}
	if err := user.ComparePassword(data["password"]); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid credentials",
		})
	}

	token, err := middlewares.GenerateJWT(user.Id, user.Role, user.TenantID())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "could not sign token",
		})
	}

	return c.JSON(fiber.Map{
		"token": token,
		"role":  user.Role,
		"user": fiber.Map{
			"id":        user.Id,
			"name":      user.FirstName + " " + user.LastName,
			"email":     user.Email,
			"tenant_id": user.TenantID(),
		},
	})
}

func Logout(c *fiber.Ctx) error {
	cookie := fiber.Cookie{
		Name:     "jwt",
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
	}
	c.Cookie(&cookie)
	return c.JSON(fiber.Map{
		"message": "success",
	})
}

// actorFromCtx builds the explicit actor context every core operation takes.
func actorFromCtx(c *fiber.Ctx) services.ActorContext {
	userID, _ := c.Locals("userID").(string)
	role, _ := c.Locals("role").(string)
	tenantID, _ := c.Locals("tenantID").(uint)
	return services.ActorContext{UserID: userID, Role: role, TenantID: tenantID}
}
