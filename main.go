package main

import (
	"os"
	"time"

	"dimfdesk/config"
	"dimfdesk/remote"
	"dimfdesk/services"
	"dimfdesk/session"
	"dimfdesk/ui"
	"dimfdesk/utils"
)

func main() {
	cfg := config.Load()

	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	loop := ui.NewLoop()
	defer loop.Stop()

	sess := session.New()
	api := remote.NewClient(
		cfg.APIBaseURL,
		time.Duration(cfg.ConnectTimeoutSec)*time.Second,
		time.Duration(cfg.RequestTimeoutSec)*time.Second,
		sess,
		utils.Sugar,
	)

	shell := ui.NewShell(
		loop,
		sess,
		services.NewUsers(api, loop, sess),
		services.NewPosts(api, loop),
		services.NewPlatforms(api, loop),
		services.NewImages(api, loop),
		services.NewSaver(api, loop, sess),
		services.NewExport(api, loop),
		cfg.ExportDir,
	)

	utils.Sugar.Infof("client starting against %s", cfg.APIBaseURL)

	// An unauthenticated launch terminates immediately; cancelling the login
	// prompt is a normal exit.
	if !shell.Login() {
		os.Exit(0)
	}
	shell.Run()
}
