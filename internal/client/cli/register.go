package cli

import (
	"context"
	"fmt"

	"github.com/lunabook/sessionkit/internal/client/session"
	pkgapi "github.com/lunabook/sessionkit/pkg/api"
)

// RunRegister выполняет интерактивную регистрацию
func (c *Cli) RunRegister(ctx context.Context) error {
	username, err := c.io.ReadInput("Username: ")
	if err != nil {
		return fmt.Errorf("failed to read username: %w", err)
	}

	email, err := c.io.ReadInput("Email: ")
	if err != nil {
		return fmt.Errorf("failed to read email: %w", err)
	}

	password, err := c.io.ReadPassword("Password: ")
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}

	confirm, err := c.io.ReadPassword("Confirm password: ")
	if err != nil {
		return fmt.Errorf("failed to read password confirmation: %w", err)
	}
	if password != confirm {
		return fmt.Errorf("passwords do not match")
	}

	req := pkgapi.RegisterRequest{
		Username: username,
		Email:    email,
		Password: password,
	}

	if err := c.auth.Register(ctx, req); err != nil {
		return err
	}

	if c.sessions.Current().Status == session.StatusPendingVerification {
		c.io.Println("Account created. Check your email for a verification code,")
		c.io.Println("then run 'lunabook verify'.")
	} else {
		c.io.Println("Account created. You are signed in.")
	}

	return nil
}
