//go:build mage

// Build targets for StuHub.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const binDir = "bin"

var (
	Default = Build

	commands = map[string]string{
		"stuhub-api":   "./apps/api",
		"stuhub-admin": "./apps/admin",
	}
)

// Build compiles the API server and the admin CLI into bin/.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	for name, pkg := range commands {
		out := filepath.Join(binDir, name)
		if err := sh.RunV("go", "build", "-o", out, pkg); err != nil {
			return fmt.Errorf("go build %s: %w", pkg, err)
		}
		fmt.Printf("Built %s\n", out)
	}
	return nil
}

// Test runs the whole test suite against SQLite.
func Test() error {
	env := map[string]string{"STUHUB_ENV": "TEST"}
	return sh.RunWithV(env, "go", "test", "-race", "-count=1", "./...")
}

// Lint runs go vet.
func Lint() error {
	return sh.RunV("go", "vet", "./...")
}

// Migrate applies the pending migrations of the configured database.
func Migrate() error {
	mg.Deps(Build)
	return sh.RunV(filepath.Join(binDir, "stuhub-admin"), "migrate", "up")
}

// Clean removes the built binaries.
func Clean() error {
	return sh.Rm(binDir)
}
