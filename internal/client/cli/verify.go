package cli

import (
	"context"
	"fmt"
)

// RunVerify подтверждает email одноразовым кодом
func (c *Cli) RunVerify(ctx context.Context) error {
	otp, err := c.io.ReadInput("Verification code: ")
	if err != nil {
		return fmt.Errorf("failed to read code: %w", err)
	}

	if err := c.auth.VerifyEmail(ctx, otp); err != nil {
		return err
	}

	c.io.Println("Email verified. You are fully signed in.")
	return nil
}

// RunResend запрашивает повторную отправку кода подтверждения
func (c *Cli) RunResend(ctx context.Context) error {
	if err := c.auth.ResendCode(ctx); err != nil {
		return err
	}

	c.io.Println("Verification code sent. Check your email.")
	return nil
}
