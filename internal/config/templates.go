package config

import (
	"fmt"
	"os"
)

func WriteTemplate(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(template), 0o600)
}

const template = `[log]
level = "info"
timestamp = true
no_color = false

[encode]
copy_buffer_size = 4096
sink_buffer_size = 4096
output = "hex"
`
