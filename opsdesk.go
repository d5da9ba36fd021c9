package main

import (
	"github.com/opsdesk-cloud/opsdesk/cmd"
	"github.com/opsdesk-cloud/opsdesk/pkg/env"
	"github.com/opsdesk-cloud/opsdesk/pkg/log"
)

func main() {
	if err := env.Process(); err != nil {
		log.Fatal("environment failure", "error", err)
	}

	if err := cmd.Execute(); err != nil {
		log.Fatal("opsdesk failure", "error", err)
	}
}
