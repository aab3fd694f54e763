package main

import (
	"fmt"
	"os"

	"github.com/turtacn/Tabula/internal/cli"
	"github.com/turtacn/Tabula/pkg/logger"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			reportPanic(r)
			os.Exit(1)
		}
	}()

	cli.Execute()
}

func reportPanic(r any) {
	if logger.Log != nil {
		logger.Log.Error("tabula: panic recovered", "panic", r)
		return
	}
	fmt.Fprintf(os.Stderr, "tabula: panic recovered: %v\n", r)
}

// Personal.AI order the ending
