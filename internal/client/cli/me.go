package cli

import (
	"context"
)

// RunMe запрашивает свежий профиль текущего пользователя
func (c *Cli) RunMe(ctx context.Context) error {
	user, err := c.auth.CurrentUser(ctx)
	if err != nil {
		return err
	}

	c.io.Printf("ID:       %s\n", user.ID)
	c.io.Printf("Username: %s\n", user.Username)
	c.io.Printf("Email:    %s\n", user.Email)
	if user.FirstName != "" || user.LastName != "" {
		c.io.Printf("Name:     %s %s\n", user.FirstName, user.LastName)
	}
	c.io.Printf("Verified: %v\n", user.IsEmailVerified)

	return nil
}
