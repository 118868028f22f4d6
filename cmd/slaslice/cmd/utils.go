package cmd

import (
	"bufio"
	"fmt"
	"os"
)

// confirmIfExists checks whether path exists and, if so, asks the user for
// confirmation with msg before proceeding.
//
// It returns true if the path doesn't exist, or if the user answered yes.
// If ok is false or err is non-nil, the caller should abort.
func confirmIfExists(path, msg string) (ok bool, err error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return true, nil
		}
		return false, err
	}
	return askForConfirmation(msg), nil
}

// askForConfirmation prints msg and reads a y/n answer from stdin. Hitting
// ENTER defaults to no.
func askForConfirmation(msg string) bool {
	fmt.Println(msg)
	reader := bufio.NewReader(os.Stdin)
	defaultInput := byte('N')

	for {
		input, err := reader.ReadString('\n')
		if err != nil || len(input) == 0 {
			return defaultInput == 'Y'
		}
		c := input[0]
		if c == '\n' {
			c = defaultInput
		}
		switch c {
		case 'Y', 'y':
			return true
		case 'N', 'n':
			return false
		}
	}
}
