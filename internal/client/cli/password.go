package cli

import (
	"context"
	"fmt"
)

// RunForgot запрашивает код сброса пароля
func (c *Cli) RunForgot(ctx context.Context) error {
	email, err := c.io.ReadInput("Email: ")
	if err != nil {
		return fmt.Errorf("failed to read email: %w", err)
	}

	if err := c.auth.ForgotPassword(ctx, email); err != nil {
		return err
	}

	c.io.Println("Reset code sent. Run 'lunabook reset' once you have it.")
	return nil
}

// RunReset проверяет код сброса и устанавливает новый пароль
func (c *Cli) RunReset(ctx context.Context) error {
	email, err := c.io.ReadInput("Email: ")
	if err != nil {
		return fmt.Errorf("failed to read email: %w", err)
	}

	otp, err := c.io.ReadInput("Reset code: ")
	if err != nil {
		return fmt.Errorf("failed to read code: %w", err)
	}

	resetToken, err := c.auth.VerifyResetCode(ctx, email, otp)
	if err != nil {
		return err
	}

	password, err := c.io.ReadPassword("New password: ")
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}

	if err := c.auth.ResetPassword(ctx, resetToken, password); err != nil {
		return err
	}

	c.io.Println("Password updated. Sign in with 'lunabook login'.")
	return nil
}
