package main

import (
	"log"

	"github.com/anoixa/album-chat/config"

	"github.com/anoixa/album-chat/cmd"
)

func main() {
	log.Printf("album chat %s (%s)", config.Version, config.CommitHash)
	cmd.Execute()
}
