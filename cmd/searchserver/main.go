package main

import (
	"fmt"
	"os"

	apperrors "github.com/Adithya-Monish-Kumar-K/search-server/pkg/errors"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(apperrors.ExitCode(err))
	}
}
