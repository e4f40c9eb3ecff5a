package main

import (
	"context"
	"log"

	"github.com/PPPP98/SSAFY-SecondBrain/internal/server"
	"github.com/PPPP98/SSAFY-SecondBrain/internal/server/config"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := server.NewApp(ctx, cfg)

	if err != nil {
		log.Fatalf("%v", err)
	}

	app.Run(ctx)

}
