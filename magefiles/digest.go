package main

import (
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Digest builds the CLI and prints today's digest without sending it.
func Digest() error {
	mg.Deps(Build)
	return sh.RunV("bin/"+binName, "run", "--dry-run")
}

// Discover builds the CLI and lists today's candidates.
func Discover() error {
	mg.Deps(Build)
	return sh.RunV("bin/"+binName, "discover")
}

// Webhook builds the CLI and sends a probe message to every channel.
func Webhook() error {
	mg.Deps(Build)
	return sh.RunV("bin/"+binName, "webhook", "test")
}
