// Package fiber serves the in-memory backend over HTTP with the same
// endpoint layout as the production PHP backend.
package fiber

import (
	"github.com/gofiber/fiber/v3"

	"github.com/lborres/careerguide/backend"
)

// DefaultBasePath mirrors the production deployment prefix.
const DefaultBasePath = "/ECareerGuide/backend/api"

type Adapter struct {
	app     *fiber.App
	backend *backend.Backend
}

func New(app *fiber.App, b *backend.Backend) *Adapter {
	return &Adapter{app: app, backend: b}
}

func (a *Adapter) RegisterRoutes(basePath string) error {
	if basePath == "" {
		basePath = DefaultBasePath
	}
	api := a.app.Group(basePath)

	// Public routes
	api.Post("/login.php", a.login)
	api.Post("/register.php", a.register)
	api.Get("/get_counselors.php", a.counselors)
	api.Get("/get_counselor.php", a.counselor)

	// Protected routes
	api.Post("/logout.php", a.requireAuth, a.logout)
	api.Get("/profile.php", a.requireAuth, a.profile)
	api.Post("/profile.php", a.requireAuth, a.updateProfile)
	api.Get("/get_messages.php", a.requireAuth, a.messages)
	api.Post("/send_message.php", a.requireAuth, a.sendMessage)
	api.Get("/resume.php", a.requireAuth, a.resume)
	api.Post("/resume.php", a.requireAuth, a.saveResume)
	api.Get("/learning_journey.php", a.requireAuth, a.learningJourney)
	api.Post("/learning_journey.php", a.requireAuth, a.saveLearningJourney)

	return nil
}
