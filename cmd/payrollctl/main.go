package main

import (
	"os"

	"github.com/cmlabs-hris/hr-backoffice-go/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
