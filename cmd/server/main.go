package main

import (
	"flag"
	"strconv"

	"audio-transcriber/internal/app"
	"audio-transcriber/internal/config"

	"github.com/joho/godotenv"
	"github.com/wb-go/wbf/zlog"
)

func main() {
	zlog.Init()
	godotenv.Load()

	port := flag.Int("port", 0, "port to listen on (overrides HTTP_PORT)")
	flag.Parse()

	cfg, err := config.MustLoad()
	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("Failed to load config")
	}

	if *port != 0 {
		cfg.Server.Port = strconv.Itoa(*port)
	}

	application, err := app.NewApp(cfg, &zlog.Logger)
	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("Failed to create app")
	}

	if err := application.Run(); err != nil {
		zlog.Logger.Fatal().Err(err).Msg("Server failed")
	}
}
