package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/arthur-debert/templatepig/cmd/tpig"
	"github.com/arthur-debert/templatepig/pkg/style"
)

func main() {
	rootCmd := tpig.NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		// the host already showed what went wrong
		if errors.Is(err, tpig.ErrRunFailed) {
			os.Exit(1)
		}
		fmt.Fprintln(os.Stderr, style.ErrorStyle.Render(fmt.Sprintf("Error: %v", err)))
		os.Exit(1)
	}
}
