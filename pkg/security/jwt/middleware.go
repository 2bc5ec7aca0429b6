package jwt

import (
	"context"
	"errors"
	"log"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/taskhub/backend/pkg/auth"
	"github.com/taskhub/backend/pkg/task"
)

// principalKey is the c.Locals key holding the verified auth.Principal.
const principalKey = "principal"

// OwnershipCheck reports whether the caller may act on the task identified by taskID.
// It is satisfied by task.UseCase.
type OwnershipCheck interface {
	CheckOwnership(ctx context.Context, taskID int64, callerEmail string) error
}

// Policy declares what a route requires beyond a valid token.
// Roles, when non-empty, must contain the caller's role.
// Owner, when set, must accept the caller for the task named by the OwnerParam route parameter.
type Policy struct {
	Roles      []auth.Role
	Owner      OwnershipCheck
	OwnerParam string
}

// Authenticated is the policy of routes that only need a valid token.
var Authenticated = Policy{}

// AdminOnly restricts a route to the ADMIN role.
var AdminOnly = Policy{Roles: []auth.Role{auth.RoleAdmin}}

// TaskOwner restricts a route to the assignee of the task in route param.
func TaskOwner(check OwnershipCheck, param string) Policy {
	return Policy{Owner: check, OwnerParam: param}
}

// Gate verifies bearer tokens and evaluates route policies before handlers run.
type Gate struct {
	verifier auth.TokenVerifier
}

func NewGate(verifier auth.TokenVerifier) *Gate {
	return &Gate{verifier: verifier}
}

// Require returns a Fiber middleware that authenticates the request and then enforces p.
// On success sets the principal into c.Locals (see PrincipalFrom).
func (g *Gate) Require(p Policy) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, err := g.authenticate(c)
		if err != nil {
			return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"message": err.Error()})
		}
		c.Locals(principalKey, principal)

		if len(p.Roles) > 0 && !slices.Contains(p.Roles, principal.Role) {
			return c.Status(http.StatusForbidden).JSON(fiber.Map{"message": "insufficient role"})
		}
		if p.Owner != nil {
			if status, msg := g.checkOwner(c, p, principal); status != 0 {
				return c.Status(status).JSON(fiber.Map{"message": msg})
			}
		}
		return c.Next()
	}
}

func (g *Gate) authenticate(c *fiber.Ctx) (auth.Principal, error) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return auth.Principal{}, errors.New("missing Authorization header")
	}
	// Support both "Bearer <token>" and "<token>" (no prefix).
	var tokenStr string
	if strings.Contains(authHeader, " ") {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			tokenStr = strings.TrimSpace(parts[1])
		} else {
			tokenStr = strings.TrimSpace(authHeader)
		}
	} else if !strings.EqualFold(authHeader, "Bearer") {
		tokenStr = strings.TrimSpace(authHeader)
	}
	if tokenStr == "" {
		return auth.Principal{}, errors.New("empty token")
	}
	principal, err := g.verifier.Verify(tokenStr)
	if err != nil {
		if errors.Is(err, ErrExpiredToken) {
			return auth.Principal{}, errors.New("token has expired")
		}
		return auth.Principal{}, errors.New("invalid token")
	}
	return principal, nil
}

func (g *Gate) checkOwner(c *fiber.Ctx, p Policy, principal auth.Principal) (int, string) {
	id, err := strconv.ParseInt(c.Params(p.OwnerParam), 10, 64)
	if err != nil || id <= 0 {
		return http.StatusBadRequest, "invalid task id"
	}
	err = p.Owner.CheckOwnership(c.UserContext(), id, principal.Email)
	switch {
	case err == nil:
		return 0, ""
	case errors.Is(err, task.ErrTaskNotFound):
		return http.StatusNotFound, "task not found"
	case errors.Is(err, task.ErrUnknownCaller):
		return http.StatusUnauthorized, "unknown user"
	case errors.Is(err, task.ErrForbidden):
		return http.StatusForbidden, err.Error()
	default:
		log.Printf("[gate] ownership check for task %d: %v", id, err)
		return http.StatusInternalServerError, "failed to authorize request"
	}
}

// PrincipalFrom returns the identity attached by the gate.
func PrincipalFrom(c *fiber.Ctx) (auth.Principal, bool) {
	p, ok := c.Locals(principalKey).(auth.Principal)
	return p, ok
}
