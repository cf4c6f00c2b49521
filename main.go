package main

import (
	"log"

	"annadan/config"
	"annadan/server"
)

func main() {
	cfg := config.MustLoad()
	app := &server.App{}
	app.Initialize(cfg)
	if err := app.Run(); err != nil {
		log.Fatal(err)
	}
}
