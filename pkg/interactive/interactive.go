package interactive

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"

	"github.com/AlecAivazis/survey/v2"
	"golang.org/x/term"
)

type Reader func() (string, error)

// Confirmer asks the operator to approve message. Declining is not an error.
type Confirmer func(message string) (bool, error)

// Prompt asks on w and reads the answer from in. Only "y" and "yes" approve; end of input
// declines.
func Prompt(in io.Reader, w io.Writer) Confirmer {
	read := String(bufio.NewReader(in))
	return func(message string) (bool, error) {
		if _, err := fmt.Fprintf(w, "%s [y/N] ", message); err != nil {
			return false, err
		}

		resp, err := read()
		if errors.Is(err, io.EOF) {
			_, _ = fmt.Fprintln(w)
			return false, nil
		}
		if err != nil {
			return false, err
		}

		switch strings.ToLower(resp) {
		case "y", "yes":
			return true, nil
		}
		return false, nil
	}
}

// Survey asks on the terminal, the answer defaults to no.
func Survey(message string) (bool, error) {
	var ok bool
	err := survey.AskOne(&survey.Confirm{Message: message, Default: false}, &ok)
	return ok, err
}

func AlwaysApprove(string) (bool, error) {
	return true, nil
}

func AlwaysDeny(string) (bool, error) {
	return false, nil
}

func String(r *bufio.Reader) Reader {
	return func() (string, error) {
		data, err := r.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || len(data) == 0) {
			return "", err
		}
		return strings.TrimSpace(data), nil
	}
}

// Password reads a line from the terminal without echo.
func Password(prompt string, w io.Writer) Reader {
	return func() (string, error) {
		if _, err := fmt.Fprint(w, prompt+": "); err != nil {
			return "", err
		}
		b, err := term.ReadPassword(int(syscall.Stdin))
		_, _ = fmt.Fprintln(w)
		if err != nil {
			return "", err
		}

		return strings.TrimSpace(string(b)), nil
	}
}

func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
