// Package util contains helpers that don't belong to any other package
package util

import (
	"os"
	"path/filepath"
)

// IsRunningInDocker reports whether the process runs inside a container
func IsRunningInDocker() bool {
	return inDocker("/")
}

func inDocker(root string) bool {
	if _, err := os.Stat(filepath.Join(root, ".dockerenv")); err == nil {
		return true
	}

	// Podman and other runtimes
	if _, err := os.Stat(filepath.Join(root, "run", ".containerenv")); err == nil {
		return true
	}

	return false
}
