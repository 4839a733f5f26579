package iocli

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Проверяем что NewStdio возвращает валидный объект
func TestNewStdio(t *testing.T) {
	stdio := NewStdio()
	assert.NotNil(t, stdio)
}

func TestPrintlnAndPrintf(t *testing.T) {
	var out bytes.Buffer
	stdio := New(strings.NewReader(""), &out)

	stdio.Println("hello", "world")
	stdio.Printf("test %d %s", 1, "abc")

	assert.Equal(t, "hello world\ntest 1 abc", out.String())
}

// Несколько ReadInput подряд не теряют буферизованный ввод
func TestReadInput_Sequential(t *testing.T) {
	var out bytes.Buffer
	stdio := New(strings.NewReader("  user@example.com \nsecond\n"), &out)

	first, err := stdio.ReadInput("Email: ")
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", first)

	second, err := stdio.ReadInput("Next: ")
	require.NoError(t, err)
	assert.Equal(t, "second", second)

	assert.Equal(t, "Email: Next: ", out.String())
}

func TestReadInput_LastLineWithoutNewline(t *testing.T) {
	stdio := New(strings.NewReader("tail"), io.Discard)

	got, err := stdio.ReadInput("> ")
	require.NoError(t, err)
	assert.Equal(t, "tail", got)

	_, err = stdio.ReadInput("> ")
	assert.ErrorIs(t, err, io.EOF)
}

// Вне терминала пароль читается как обычная строка
func TestReadPassword_NotTerminal(t *testing.T) {
	var out bytes.Buffer
	stdio := New(strings.NewReader("s3cret-pass\n"), &out)

	got, err := stdio.ReadPassword("Password: ")
	require.NoError(t, err)
	assert.Equal(t, "s3cret-pass", got)
	assert.Equal(t, "Password: ", out.String())
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{input: "y\n", want: true},
		{input: "YES\n", want: true},
		{input: "n\n", want: false},
		{input: "\n", want: false},
		{input: "maybe\n", want: false},
	}

	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.input), func(t *testing.T) {
			stdio := New(strings.NewReader(tt.input), io.Discard)
			got, err := stdio.Confirm("Continue? [y/N]: ")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := New(strings.NewReader(""), io.Discard).Confirm("? ")
	assert.ErrorIs(t, err, io.EOF)
}
