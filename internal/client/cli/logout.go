package cli

import (
	"context"
)

// RunLogout завершает сессию. Локальные данные очищаются даже при
// недоступном сервере.
func (c *Cli) RunLogout(ctx context.Context) error {
	if err := c.auth.Logout(ctx); err != nil {
		return err
	}

	c.io.Println("Signed out.")
	return nil
}
