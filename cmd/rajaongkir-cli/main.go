package main

import (
	"os"

	"github.com/akara/rajaongkir-adapter/cmd/rajaongkir-cli/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
