package cli

import (
	"context"
	"fmt"

	"github.com/lunabook/sessionkit/internal/client/session"
)

// RunLogin выполняет интерактивный вход
func (c *Cli) RunLogin(ctx context.Context) error {
	username, err := c.io.ReadInput("Username: ")
	if err != nil {
		return fmt.Errorf("failed to read username: %w", err)
	}

	password, err := c.io.ReadPassword("Password: ")
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}

	if err := c.auth.Login(ctx, username, password); err != nil {
		return err
	}

	current := c.sessions.Current()
	switch current.Status {
	case session.StatusPendingVerification:
		c.io.Println("Signed in. Please verify your email with 'lunabook verify'.")
	default:
		c.io.Printf("Signed in as %s\n", current.User.Username)
	}

	return nil
}
