package handlers

import (
	"errors"
	"reflect"
	"strconv"
	"strings"

	"referral-service/logger"
	"referral-service/middleware"
	"referral-service/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = newValidator()

// RegisterRequest is the POST /register/ body. Password is write-only and
// never echoed back.
type RegisterRequest struct {
	Username     string `json:"username" validate:"required"`
	Email        string `json:"email" validate:"required,email"`
	Password     string `json:"password" validate:"required"`
	ReferralCode string `json:"referral_code"`
}

func SetupReferralRoutes(app *fiber.App, registrationService *services.RegistrationService, referralService *services.ReferralService, jwtSecret []byte) {
	app.Post("/register/", func(c *fiber.Ctx) error {
		var req RegisterRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "invalid request body"})
		}
		if errs := validateRegisterRequest(&req); len(errs) > 0 {
			return c.Status(fiber.StatusBadRequest).JSON(errs)
		}

		user, err := registrationService.Register(services.RegisterInput{
			Username:     req.Username,
			Email:        req.Email,
			Password:     req.Password,
			ReferralCode: req.ReferralCode,
		})
		if err != nil {
			var fieldErrs services.FieldErrors
			if errors.As(err, &fieldErrs) {
				return c.Status(fiber.StatusBadRequest).JSON(fieldErrs)
			}
			// cause stays in the logs, callers get a generic message
			logger.Error().Err(err).Str("email", req.Email).Msg("registration failed")
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "failed to create user"})
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"user_id": user.ID,
			"message": "User registered successfully.",
		})
	})

	securedGroup := app.Group("/", middleware.JWTAuthMiddleware(jwtSecret))

	securedGroup.Get("/user/:id/", func(c *fiber.Ctx) error {
		// no ownership check: any authenticated caller may look up any id
		view, err := referralService.GetUserProfile(c.Params("id"))
		if err != nil {
			if errors.Is(err, services.ErrProfileNotFound) {
				// existing clients expect a 400 here, not a 404
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "user does not exist"})
			}
			logger.Error().Err(err).Str("user_id", c.Params("id")).Msg("user details lookup failed")
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load user"})
		}
		return c.JSON(view)
	})

	securedGroup.Get("/referrals/", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		page, _ := strconv.Atoi(c.Query("page", "1"))

		referralPage, err := referralService.ListReferrals(userID, page)
		if err != nil {
			if errors.Is(err, services.ErrProfileNotFound) {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "user does not exist"})
			}
			logger.Error().Err(err).Str("user_id", userID).Msg("referral listing failed")
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to list referrals"})
		}
		return c.JSON(referralPage)
	})
}

// validateRegisterRequest runs the syntax-level checks and returns per-field
// messages keyed by the json field name.
func validateRegisterRequest(req *RegisterRequest) services.FieldErrors {
	errs := services.FieldErrors{}
	err := validate.Struct(req)
	if err == nil {
		return errs
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		errs["detail"] = "invalid request"
		return errs
	}
	for _, v := range verrs {
		switch v.Tag() {
		case "required":
			errs[v.Field()] = "this field is required"
		case "email":
			errs[v.Field()] = "enter a valid email address"
		default:
			errs[v.Field()] = "invalid value"
		}
	}
	return errs
}

func newValidator() *validator.Validate {
	v := validator.New()
	// report errors under json names, not Go field names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}
