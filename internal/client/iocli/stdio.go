package iocli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Compile-time check that Stdio implements IO
var _ IO = (*Stdio)(nil)

// Stdio реализует IO поверх потоков процесса.
// Потоки инжектируются, чтобы команды можно было прогонять в тестах
// на буферах вместо настоящего терминала.
type Stdio struct {
	in  *bufio.Reader
	out io.Writer

	// passwordFd - дескриптор терминала для ввода пароля без эха;
	// отрицательное значение отключает терминальный режим
	passwordFd int
}

// NewStdio создает Stdio на stdin/stdout процесса
func NewStdio() *Stdio {
	return &Stdio{
		in:         bufio.NewReader(os.Stdin),
		out:        os.Stdout,
		passwordFd: int(os.Stdin.Fd()),
	}
}

// NewStdioWith создает Stdio на произвольных потоках.
// Пароли читаются из in как обычные строки.
func NewStdioWith(in io.Reader, out io.Writer) *Stdio {
	return &Stdio{
		in:         bufio.NewReader(in),
		out:        out,
		passwordFd: -1,
	}
}

func (s *Stdio) Println(a ...any) {
	fmt.Fprintln(s.out, a...)
}

func (s *Stdio) Printf(format string, a ...any) {
	fmt.Fprintf(s.out, format, a...)
}

// ReadInput печатает приглашение и читает строку без окружающих пробелов
func (s *Stdio) ReadInput(prompt string) (string, error) {
	s.Printf("%s", prompt)

	input, err := s.in.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(input), nil
}

// ReadPassword читает пароль без эха, когда ввод идет с терминала.
// Вне терминала (тесты, пайпы) пароль читается как обычная строка.
func (s *Stdio) ReadPassword(prompt string) (string, error) {
	s.Printf("%s", prompt)

	if s.passwordFd >= 0 && term.IsTerminal(s.passwordFd) {
		pwBytes, err := term.ReadPassword(s.passwordFd)
		s.Println("")
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(pwBytes), nil
	}

	input, err := s.in.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimSpace(input), nil
}
