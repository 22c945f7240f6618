package main

import (
	"os"

	"github.com/coreman2200/ambilight/cmd/ambilight/commands"
	"github.com/coreman2200/ambilight/internal/app"
)

func main() {
	os.Exit(app.ExitCode(commands.Execute()))
}
