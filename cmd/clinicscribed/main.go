// Command clinicscribed serves the online HTTP surface (spec §6): POST
// /generate, GET /search, GET /.
package main

import (
	"fmt"
	"os"

	"github.com/brightwellhealth/clinicscribe/internal/app"
)

func main() {
	a, err := app.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "clinicscribed: failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	a.Log.Info("clinicscribed starting", "port", a.Cfg.Port)
	if err := a.Run(); err != nil {
		a.Log.Error("clinicscribed: server failed", "error", err.Error())
		os.Exit(1)
	}
}
