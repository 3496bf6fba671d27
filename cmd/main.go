package main

import (
	"github.com/trandev/salesdesk/internal/app"
	"github.com/trandev/salesdesk/internal/config"
)

func main() {
	config.MustInit()
	app.MustNewApp().Run()
}
