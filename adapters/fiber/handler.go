package fiber

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/lborres/careerguide/backend"
	"github.com/lborres/careerguide/core"
)

func (a *Adapter) login(c fiber.Ctx) error {
	var req core.LoginRequest
	if err := c.Bind().Body(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}

	resp, err := a.backend.Login(req)
	if err != nil {
		return failWith(c, err)
	}
	return c.Status(http.StatusOK).JSON(resp)
}

func (a *Adapter) register(c fiber.Ctx) error {
	var payload core.RegistrationPayload
	if err := c.Bind().Body(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}

	if _, err := a.backend.Register(payload); err != nil {
		return failWith(c, err)
	}
	return c.Status(http.StatusCreated).JSON(core.Envelope{
		Success: true,
		Message: "Registration successful",
	})
}

func (a *Adapter) logout(c fiber.Ctx) error {
	a.backend.Revoke(extractToken(c))
	return c.JSON(core.OK("Logged out"))
}

func (a *Adapter) profile(c fiber.Ctx) error {
	return c.JSON(a.backend.Profile(accountFrom(c)))
}

func (a *Adapter) updateProfile(c fiber.Ctx) error {
	var fields core.UserRecord
	if err := json.Unmarshal(c.Body(), &fields); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}

	resp, err := a.backend.UpdateProfile(accountFrom(c), fields)
	if err != nil {
		return fail(c, http.StatusBadRequest, err.Error())
	}
	return c.JSON(resp)
}

func (a *Adapter) counselors(c fiber.Ctx) error {
	return c.JSON(core.CounselorsResponse{
		Envelope:   core.Envelope{Success: true},
		Counselors: a.backend.Counselors(),
	})
}

func (a *Adapter) counselor(c fiber.Ctx) error {
	counselor, err := a.backend.Counselor(c.Query("id"))
	if err != nil {
		return failWith(c, err)
	}
	return c.JSON(core.CounselorResponse{
		Envelope:  core.Envelope{Success: true},
		Counselor: counselor,
	})
}

func (a *Adapter) messages(c fiber.Ctx) error {
	counselorID := c.Query("counselor_id")
	if counselorID == "" {
		return failWith(c, core.ErrCounselorIDRequired)
	}

	msgs, err := a.backend.Messages(accountFrom(c), counselorID)
	if err != nil {
		return failWith(c, err)
	}
	return c.JSON(core.MessagesResponse{
		Envelope: core.Envelope{Success: true},
		Messages: msgs,
	})
}

func (a *Adapter) sendMessage(c fiber.Ctx) error {
	var req core.SendMessageRequest
	if err := c.Bind().Body(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}

	msg, err := a.backend.SendMessage(accountFrom(c), req)
	if err != nil {
		return failWith(c, err)
	}
	return c.Status(http.StatusCreated).JSON(core.SendMessageResponse{
		Envelope: core.Envelope{Success: true, Message: "Message sent"},
		Data:     msg,
	})
}

func (a *Adapter) resume(c fiber.Ctx) error {
	return c.JSON(document(a.backend.Resume(accountFrom(c)), ""))
}

func (a *Adapter) saveResume(c fiber.Ctx) error {
	body := c.Body()
	if err := a.backend.SaveResume(accountFrom(c), body); err != nil {
		return failWith(c, err)
	}
	return c.JSON(document(body, "Resume saved"))
}

func (a *Adapter) learningJourney(c fiber.Ctx) error {
	return c.JSON(document(a.backend.LearningJourney(accountFrom(c)), ""))
}

func (a *Adapter) saveLearningJourney(c fiber.Ctx) error {
	body := c.Body()
	if err := a.backend.SaveLearningJourney(accountFrom(c), body); err != nil {
		return failWith(c, err)
	}
	return c.JSON(document(body, "Learning journey saved"))
}

func document(data json.RawMessage, message string) core.DocumentResponse {
	return core.DocumentResponse{
		Envelope: core.Envelope{Success: true, Message: message},
		Data:     append(json.RawMessage(nil), data...),
	}
}

// extractToken extracts the bearer token from the request.
// Checks the Authorization header first, then falls back to the cookie.
func extractToken(c fiber.Ctx) string {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if token, ok := strings.CutPrefix(authHeader, "Bearer "); ok && token != "" {
		return token
	}

	return c.Cookies("auth_token")
}

func fail(c fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(core.Envelope{Success: false, Message: message})
}

// failWith maps err to a status and writes the failure envelope.
func failWith(c fiber.Ctx, err error) error {
	return fail(c, mapErrorToStatus(err), err.Error())
}

// mapErrorToStatus maps backend and validation errors to HTTP status codes
func mapErrorToStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}

	switch {
	case errors.Is(err, backend.ErrInvalidCredentials),
		errors.Is(err, backend.ErrInvalidToken),
		errors.Is(err, backend.ErrAccountNotFound):
		return http.StatusUnauthorized

	case errors.Is(err, backend.ErrWrongLoginType):
		return http.StatusForbidden

	case errors.Is(err, backend.ErrCounselorNotFound):
		return http.StatusNotFound

	case errors.Is(err, backend.ErrEmailTaken):
		return http.StatusConflict

	case errors.Is(err, core.ErrEmailRequired),
		errors.Is(err, core.ErrPasswordRequired),
		errors.Is(err, core.ErrPasswordTooShort),
		errors.Is(err, core.ErrInvalidEmail),
		errors.Is(err, core.ErrFirstNameRequired),
		errors.Is(err, core.ErrLastNameRequired),
		errors.Is(err, core.ErrRoleInvalid),
		errors.Is(err, core.ErrLoginAsInvalid),
		errors.Is(err, core.ErrCounselorFieldsMissing),
		errors.Is(err, core.ErrCounselorIDRequired),
		errors.Is(err, core.ErrMessageRequired),
		errors.Is(err, backend.ErrInvalidDocument):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}
