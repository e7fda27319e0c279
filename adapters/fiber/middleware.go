package fiber

import (
	"github.com/gofiber/fiber/v3"

	"github.com/lborres/careerguide/backend"
)

const localsAccount = "account"

// requireAuth resolves the bearer token and stores the account in the
// context for downstream handlers.
func (a *Adapter) requireAuth(c fiber.Ctx) error {
	token := extractToken(c)
	if token == "" {
		return fail(c, fiber.StatusUnauthorized, "missing token")
	}

	account, err := a.backend.Authenticate(token)
	if err != nil {
		return failWith(c, err)
	}

	c.Locals(localsAccount, account)
	return c.Next()
}

func accountFrom(c fiber.Ctx) *backend.Account {
	account, _ := c.Locals(localsAccount).(*backend.Account)
	return account
}
