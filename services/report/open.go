package report

import (
	"fmt"
	"os/exec"
	"runtime"
)

// Open shows the report in the platform's default viewer without waiting for it to exit.
func Open(path string) error {
	name, args := openCommand(runtime.GOOS, path)

	if err := exec.Command(name, args...).Start(); err != nil {
		return fmt.Errorf("failed to open %s with %s: %w", path, name, err)
	}

	return nil
}

func openCommand(goos string, path string) (string, []string) {
	switch goos {
	case "windows":
		return "explorer", []string{path}
	case "darwin":
		return "open", []string{path}
	default:
		return "xdg-open", []string{path}
	}
}
