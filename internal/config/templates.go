package config

import (
	"fmt"
	"os"
	"strings"
)

func Template(kind string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "session":
		return sessionTemplate, nil
	default:
		return "", fmt.Errorf("unknown config kind: %s", kind)
	}
}

func WriteTemplate(path, kind string, overwrite bool) error {
	template, err := Template(kind)
	if err != nil {
		return err
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(template), 0o600)
}

const sessionTemplate = `[engine]
path = "tao-pipe"
args = ["-lat", "machine.bmad", "-noplot"]
workdir = ""

[pipe]
command_log = "taoctl_history.log"
strictness = "strict"

[repl]
prompt = "Tao> "
history_file = ""
startup = []
`
