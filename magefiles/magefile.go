//go:build mage

// Package main contains Mage build targets for the storyteller.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binDir  = "bin"
	binName = "storyteller"
)

// Default target when mage is run without arguments.
var Default = Build

// Build compiles the CLI binary into bin/.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	out := filepath.Join(binDir, binName)
	if err := sh.RunV("go", "build", "-o", out, "."); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	fmt.Printf("Built %s\n", out)
	return nil
}

// Vet runs go vet over every package.
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Test runs the unit tests with the race detector.
func Test() error {
	mg.Deps(Vet)
	return sh.RunV("go", "test", "-race", "./...")
}

// Serve builds and starts the web server with the offline mock provider.
func Serve() error {
	mg.Deps(Build)
	return sh.RunWithV(map[string]string{"STORYTELLER_LLM_PROVIDER": "mock"},
		filepath.Join(binDir, binName), "serve")
}

// Init creates the output directory and a starter config.
func Init() error {
	if err := os.MkdirAll("stories", 0o755); err != nil {
		return fmt.Errorf("creating stories: %w", err)
	}
	if _, err := os.Stat("config/config.json"); err == nil {
		fmt.Println("config/config.json already exists")
		return nil
	}
	if err := sh.Copy("config/config.json", "config/config.example.json"); err != nil {
		return err
	}
	fmt.Println("Wrote config/config.json; set OPENAI_API_KEY in .env or your shell.")
	return nil
}

// Clean removes build output.
func Clean() error {
	return sh.Rm(binDir)
}
