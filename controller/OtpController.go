package controller

import (
	"errors"

	"storefront-otp/dto"
	"storefront-otp/repository"
	"storefront-otp/service"
	"storefront-otp/util"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

type OtpController struct {
	svc        *service.OtpService
	exposeCode bool
}

// NewOtpController builds the handlers. exposeCode echoes issued codes back to the caller and is
// meant for development only.
func NewOtpController(svc *service.OtpService, exposeCode bool) *OtpController {
	return &OtpController{svc: svc, exposeCode: exposeCode}
}

// Issue godoc
// @Summary      Issue a one-time passcode
// @Description  Generates a 6-digit code for the phone number and sends it through the configured delivery channel.
// @Tags         otp
// @Accept       json
// @Produce      json
// @Param        payload body dto.IssueOtpRequest true "Issue payload"
// @Success      201  {object}  dto.OtpResponse
// @Failure      400  {object}  map[string]string
// @Failure      429  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /otp/issue [post]
func (oc *OtpController) Issue(c *fiber.Ctx) error {
	var req dto.IssueOtpRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request payload"})
	}
	if err := util.ValidateStruct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	rec, err := oc.svc.Issue(c.UserContext(), req.Phone)
	if err != nil {
		return storageFailure(c, "issue", err)
	}

	return c.Status(fiber.StatusCreated).JSON(dto.NewOtpResponse(rec, oc.exposeCode))
}

// Verify godoc
// @Summary      Verify a one-time passcode
// @Description  Checks a (phone, code) pair. Wrong and expired codes both return verified=false.
// @Tags         otp
// @Accept       json
// @Produce      json
// @Param        payload body dto.VerifyOtpRequest true "Verification payload"
// @Success      200  {object}  dto.VerifyOtpResponse
// @Failure      400  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /otp/verify [post]
func (oc *OtpController) Verify(c *fiber.Ctx) error {
	var req dto.VerifyOtpRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request payload"})
	}
	if err := util.ValidateStruct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	ok, err := oc.svc.Verify(c.UserContext(), req.Phone, req.Code)
	if err != nil {
		return storageFailure(c, "verify", err)
	}

	return c.Status(fiber.StatusOK).JSON(dto.VerifyOtpResponse{Verified: ok})
}

// ListActive godoc
// @Summary      List active one-time passcodes
// @Description  Returns unverified, unexpired codes. Expired unverified codes found on the way are purged.
// @Tags         otp
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   dto.OtpResponse
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /otp/active [get]
func (oc *OtpController) ListActive(c *fiber.Ctx) error {
	records, err := oc.svc.ListActive(c.UserContext())
	if err != nil {
		return storageFailure(c, "list active", err)
	}

	res := make([]dto.OtpResponse, 0, len(records))
	for i := range records {
		res = append(res, dto.NewOtpResponse(&records[i], true))
	}
	return c.Status(fiber.StatusOK).JSON(res)
}

func storageFailure(c *fiber.Ctx, op string, err error) error {
	log.Error().Err(err).Str("op", op).Msg("otp request failed")

	var storeErr *repository.StorageError
	if errors.As(err, &storeErr) && repository.IsConstraintViolation(err) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "conflicting otp record"})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
}
