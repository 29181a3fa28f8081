package session

import (
	"errors"

	"backend-mapty/internal/app"
	"backend-mapty/internal/auth"
	"backend-mapty/internal/shared/geo"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Post("/", func(c *fiber.Ctx) error {
		var req OpenRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if req.Position != nil {
			if err := req.Position.LatLng().Validate(); err != nil {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
		}
		opened, err := svc.Open(c.Context(), req)
		if err != nil {
			return httpError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(opened)
	})

	r.Delete("/:id", authMiddleware, func(c *fiber.Ctx) error {
		if err := svc.Close(c.Params("id")); err != nil {
			return httpError(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Post("/:id/map/click", authMiddleware, func(c *fiber.Ctx) error {
		var at geo.LatLng
		if err := c.BodyParser(&at); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := at.Validate(); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := svc.Click(c.Params("id"), at); err != nil {
			return httpError(err)
		}
		sess, err := svc.Get(c.Params("id"))
		if err != nil {
			return httpError(err)
		}
		return c.JSON(sess.Controller.Form())
	})

	r.Get("/:id/form", authMiddleware, func(c *fiber.Ctx) error {
		sess, err := svc.Get(c.Params("id"))
		if err != nil {
			return httpError(err)
		}
		return c.JSON(sess.Controller.Form())
	})

	r.Post("/:id/form/type", authMiddleware, func(c *fiber.Ctx) error {
		sess, err := svc.Get(c.Params("id"))
		if err != nil {
			return httpError(err)
		}
		sess.Controller.ToggleElevationField()
		return c.JSON(sess.Controller.Form())
	})

	r.Delete("/:id/form", authMiddleware, func(c *fiber.Ctx) error {
		sess, err := svc.Get(c.Params("id"))
		if err != nil {
			return httpError(err)
		}
		sess.Controller.CancelForm()
		return c.JSON(sess.Controller.Form())
	})

	r.Post("/:id/workouts", authMiddleware, func(c *fiber.Ctx) error {
		var req app.FormInput
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		sess, err := svc.Get(c.Params("id"))
		if err != nil {
			return httpError(err)
		}
		w, err := sess.Controller.NewWorkout(c.Context(), req)
		if errors.Is(err, app.ErrInvalidInput) {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": app.AlertInvalidInput})
		}
		if err != nil {
			return httpError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(w)
	})

	r.Get("/:id/workouts", authMiddleware, func(c *fiber.Ctx) error {
		sess, err := svc.Get(c.Params("id"))
		if err != nil {
			return httpError(err)
		}
		return c.JSON(sess.Controller.Workouts())
	})

	r.Post("/:id/workouts/:workoutID/select", authMiddleware, func(c *fiber.Ctx) error {
		sess, err := svc.Get(c.Params("id"))
		if err != nil {
			return httpError(err)
		}
		found := sess.Controller.MoveToPopup(c.Context(), c.Params("workoutID"))
		return c.JSON(SelectResult{Found: found})
	})
}

func httpError(err error) error {
	switch {
	case errors.Is(err, ErrSessionNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, auth.ErrTokenInvalid):
		return fiber.NewError(fiber.StatusUnauthorized, err.Error())
	case errors.Is(err, app.ErrFormHidden), errors.Is(err, app.ErrMapNotLoaded):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
}
