package cli

import (
	"context"

	"github.com/lunabook/sessionkit/internal/client/session"
)

// RunStatus восстанавливает сессию из хранилища и печатает её состояние
func (c *Cli) RunStatus(ctx context.Context) error {
	if err := c.auth.Bootstrap(ctx); err != nil {
		return err
	}

	current := c.sessions.Current()
	c.io.Printf("Session: %s\n", current.Status)

	switch current.Status {
	case session.StatusAuthenticated:
		c.io.Printf("User: %s <%s>\n", current.User.Username, current.User.Email)
	case session.StatusPendingVerification:
		c.io.Printf("User: %s <%s> (email not verified)\n", current.User.Username, current.User.Email)
	case session.StatusError:
		c.io.Printf("Error: %s\n", current.Err)
	}

	return nil
}
