package cli

import (
	"github.com/lunabook/sessionkit/internal/client/auth"
	"github.com/lunabook/sessionkit/internal/client/iocli"
	"github.com/lunabook/sessionkit/internal/client/session"
)

// Cli связывает консольные команды с сервисом аутентификации
type Cli struct {
	io       iocli.IO
	auth     *auth.Service
	sessions *session.Manager
}

func New(io iocli.IO, authService *auth.Service, sessions *session.Manager) *Cli {
	return &Cli{
		io:       io,
		auth:     authService,
		sessions: sessions,
	}
}

// PrintUsage выводит справку по командам
func (c *Cli) PrintUsage() {
	c.io.Println("Usage: lunabook <command>")
	c.io.Println("")
	c.io.Println("Commands:")
	c.io.Println("  login     Sign in with username and password")
	c.io.Println("  register  Create a new account")
	c.io.Println("  logout    Sign out and clear stored credentials")
	c.io.Println("  status    Show current session state")
	c.io.Println("  me        Fetch the current user profile")
	c.io.Println("  verify    Confirm email with a one-time code")
	c.io.Println("  resend    Resend the verification code")
	c.io.Println("  forgot    Request a password reset code")
	c.io.Println("  reset     Reset password with a code")
}
