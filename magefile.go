//go:build mage
// +build mage

package main

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/magefile/mage/mg"
)

// Default target to run when none is specified.
var Default = Build

// Build compiles the pulsepipe executable into ./bin.
func Build() error {
	mg.Deps(Vet)
	fmt.Println("Building pulsepipe executable...")
	return run("go", "build", "-o", "./bin/pulsepipe", "./cmd/pulsepipe")
}

// Test runs the unit and end-to-end tests.
func Test() error {
	fmt.Println("Running tests...")
	return run("go", "test", "./...")
}

// Vet runs go vet over the module.
func Vet() error {
	return run("go", "vet", "./...")
}

func run(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	cmd.Env = append(os.Environ(), "CGO_ENABLED=0")
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
