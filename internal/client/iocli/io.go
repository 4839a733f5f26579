// Package iocli - ввод/вывод терминального клиента
package iocli

// IO - консоль, через которую команды общаются со студентом
type IO interface {
	Println(a ...any)
	Printf(format string, a ...any)
	ReadInput(prompt string) (string, error)
	ReadPassword(prompt string) (string, error)
	// Confirm задает вопрос да/нет, по умолчанию нет
	Confirm(prompt string) (bool, error)
	Write(p []byte) (n int, err error)
}
