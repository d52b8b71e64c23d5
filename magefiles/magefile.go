//go:build mage

package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"

	"github.com/joho/godotenv"
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	serverBin = "bin/aca1095c-server"
	cliBin    = "bin/aca1095c"
)

// Build tidies deps, then compiles the server and the CLI into ./bin.
func Build() error {
	mg.Deps(Tidy)
	fmt.Println(">> Building server binary...")
	if err := sh.Run("go", "build", "-o", serverBin, "./cmd/server"); err != nil {
		return err
	}
	fmt.Println(">> Building CLI binary...")
	return sh.Run("go", "build", "-o", cliBin, "./cmd/aca1095c")
}

// Run builds then executes the server.
func Run() error {
	mg.Deps(Build)
	fmt.Println(">> Starting server on :8080 ...")
	return sh.Run("./" + serverBin)
}

// Dev starts the server via go run.
func Dev() error {
	fmt.Println(">> Dev mode: go run ./cmd/server ...")
	cmd := exec.Command("go", "run", "./cmd/server")
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Env = append(os.Environ(), "PORT=8080")
	return cmd.Run()
}

// Interim builds the interim table of the workbook named by INPUT_XLSX.
// OUTPUT (default interim_<year>.csv) and SUMMARY are passed through when set.
func Interim() error {
	in := os.Getenv("INPUT_XLSX")
	if in == "" {
		return fmt.Errorf("INPUT_XLSX is not set")
	}
	mg.Deps(Build)
	args := []string{"interim", in}
	if out := os.Getenv("OUTPUT"); out != "" {
		args = append(args, "--out", out)
	}
	if summary := os.Getenv("SUMMARY"); summary != "" {
		args = append(args, "--summary", summary)
	}
	return sh.RunV("./"+cliBin, args...)
}

// Tidy runs go mod tidy.
func Tidy() error {
	fmt.Println(">> go mod tidy...")
	return sh.Run("go", "mod", "tidy")
}

// Test runs all unit tests.
func Test() error {
	fmt.Println(">> Running tests...")
	return sh.Run("go", "test", "./...")
}

// Lint runs golangci-lint if available.
func Lint() error {
	if _, err := exec.LookPath("golangci-lint"); err != nil {
		fmt.Println(">> golangci-lint not found; skipping.")
		return nil
	}
	return sh.Run("golangci-lint", "run", "./...")
}

// Clean removes build artifacts and the local SQLite DB.
func Clean() error {
	fmt.Println(">> Cleaning...")
	os.RemoveAll("bin")
	db := os.Getenv("DB_PATH")
	if db == "" {
		db = "aca1095c.db"
	}
	if err := os.Remove(db); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Install builds and installs both binaries to $GOPATH/bin.
func Install() error {
	mg.Deps(Build)
	return sh.Run("go", "install", "./cmd/server", "./cmd/aca1095c")
}

func init() {
	err := godotenv.Load()
	if err != nil {
		slog.Warn("error loading .env file", "err", err)
	}
}
