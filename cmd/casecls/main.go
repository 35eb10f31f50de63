package main

import (
	"os"

	"github.com/awmpietro/golang-case-classification/internal/config"
)

func main() {
	if err := newRootCmd(config.Load()).Execute(); err != nil {
		os.Exit(1)
	}
}
