package app

import (
	"github.com/mbolis/quick-inspect/config"
	"github.com/mbolis/quick-inspect/httpx"
	"github.com/mbolis/quick-inspect/inspection"
)

type App struct {
	Auth        *httpx.Authenticator
	Inspections *inspection.Store
	config.Config
}
