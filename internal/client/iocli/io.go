package iocli

//go:generate moq -out io_mock.go . IO

// IO абстрагирует консольный ввод-вывод команд, чтобы их можно было тестировать
type IO interface {
	Println(a ...any)
	Printf(format string, a ...any)
	ReadInput(prompt string) (string, error)
	ReadPassword(prompt string) (string, error)
}
