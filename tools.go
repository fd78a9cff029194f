//go:build tools

package collabhub

// This file declares tool dependencies so they are versioned in go.mod.
import (
	_ "go.uber.org/mock/mockgen"
)
