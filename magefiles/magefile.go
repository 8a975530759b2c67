//go:build mage

// Package main provides build targets for the library project using Mage.
//
// Usage:
//
//	mage build   Compile the library CLI and importer to bin/
//	mage test    Run all tests
//	mage lint    Run golangci-lint
//	mage clean   Remove build artifacts
package main

import (
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const binaryDir = "bin"

var binaries = map[string]string{
	"library":        ".",
	"import_catalog": "./cmd/import_catalog",
}

// Build compiles every binary to bin/. The sqlite driver needs cgo.
func Build() error {
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return err
	}
	env := map[string]string{"CGO_ENABLED": "1"}
	for name, pkg := range binaries {
		if err := sh.RunWithV(env, "go", "build", "-o", filepath.Join(binaryDir, name), pkg); err != nil {
			return err
		}
	}
	return nil
}

// Test runs all tests with the race detector.
func Test() error {
	return sh.RunV("go", "test", "-race", "./...")
}

// Lint runs golangci-lint after vetting.
func Lint() error {
	mg.Deps(Vet)
	return sh.RunV("golangci-lint", "run", "./...")
}

// Vet runs go vet.
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Clean removes build artifacts.
func Clean() error {
	return os.RemoveAll(binaryDir)
}
