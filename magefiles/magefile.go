//go:build mage

// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package main provides build targets for the kbase project using Mage.
//
// Usage:
//
//	mage build      Compile the kbase binary to bin/
//	mage test       Run all tests
//	mage testUnit   Run tests in short mode
//	mage testRace   Run all tests with the race detector
//	mage lint       Run golangci-lint
//	mage clean      Remove build artifacts
//	mage install    Install kbase to GOPATH/bin
package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binaryName  = "kbase"
	binaryDir   = "bin"
	cmdDir      = "./cmd/kbase"
	versionVar  = "github.com/mesh-intelligence/kbase/pkg/kbase.Version"
	versionFile = "VERSION"
)

// ldflags stamps the version from the VERSION file or git, when available.
func ldflags() string {
	version := ""
	if data, err := os.ReadFile(versionFile); err == nil {
		version = strings.TrimSpace(string(data))
	} else if out, err := sh.Output("git", "describe", "--tags", "--always", "--dirty"); err == nil {
		version = strings.TrimSpace(out)
	}
	if version == "" {
		return ""
	}
	return "-X " + versionVar + "=" + version
}

// Build compiles the kbase binary to bin/.
func Build() error {
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return err
	}
	args := []string{"build", "-v", "-o", filepath.Join(binaryDir, binaryName)}
	if flags := ldflags(); flags != "" {
		args = append(args, "-ldflags", flags)
	}
	return sh.RunV("go", append(args, cmdDir)...)
}

// Test runs all tests.
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// TestUnit runs tests in short mode.
func TestUnit() error {
	return sh.RunV("go", "test", "-short", "./...")
}

// TestRace runs all tests with the race detector.
func TestRace() error {
	return sh.RunV("go", "test", "-race", "./...")
}

// Lint runs golangci-lint.
func Lint() error {
	return sh.RunV("golangci-lint", "run", "./...")
}

// Clean removes build artifacts.
func Clean() error {
	if err := os.RemoveAll(binaryDir); err != nil {
		return err
	}
	return sh.RunV("go", "clean")
}

// Install builds and copies the binary to GOPATH/bin.
func Install() error {
	mg.Deps(Build)
	gopath, err := sh.Output("go", "env", "GOPATH")
	if err != nil {
		return err
	}
	src := filepath.Join(binaryDir, binaryName)
	dst := filepath.Join(gopath, "bin", binaryName)
	return sh.Copy(dst, src)
}
