package main

import (
	"os"

	"github.com/senpow/italy-restaurant-booking/cli"
	"github.com/senpow/italy-restaurant-booking/config"
	"github.com/senpow/italy-restaurant-booking/utils"
)

func init() {
	// Load .env before anything reads the environment
	config.LoadEnv()
	utils.InitLogger(os.Getenv("LOG_FORMAT"))
}

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		utils.ErrorLogger.Error(err)
		os.Exit(1)
	}
}
