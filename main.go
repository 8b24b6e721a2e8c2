package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"

	"p9e.in/aquaentry/config"
	"p9e.in/aquaentry/handlers"
	"p9e.in/aquaentry/middleware"
	"p9e.in/aquaentry/pkg/workflow"
	"p9e.in/aquaentry/routes"
)

var (
	Version   = "dev"
	BuildTime = ""
)

//	@title			AquaEntry API
//	@version		1.0
//	@description	Field data-entry backend for water-quality sampling.
//	@BasePath		/
func main() {

	versionFlag := flag.Bool("version", false, "Print version info and exit")
	flag.Parse()

	if *versionFlag {
		fmt.Printf("Version:   %s\n", Version)
		fmt.Printf("BuildTime: %s\n", BuildTime)
		os.Exit(0)
	}

	settings := config.Load()
	if settings.JWTSecret == "" {
		log.Fatal("JWT_SECRET is not set")
	}
	middleware.SetSecret(settings.JWTSecret)
	config.Connect(settings)

	images, closeImages, err := handlers.NewImageStore(context.Background(), settings)
	if err != nil {
		log.Fatalf("could not set up image storage: %v", err)
	}
	defer closeImages()

	h := &handlers.Handlers{
		Users:      handlers.GormUserRepository{DB: config.DB},
		Samples:    handlers.GormSampleRepository{DB: config.DB},
		Images:     images,
		Sensor:     workflow.NewSimulatedSensor(nil),
		SensorMode: settings.SensorMode,
	}

	handler := routes.RegisterRoutes(h, settings.UploadDir)
	handlerWithCORS := enableCORS(handler)
	log.Printf("Server starting at port %s (sensor mode %s)", settings.Port, settings.SensorMode)
	log.Fatal(http.ListenAndServe(":"+settings.Port, handlerWithCORS))
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Required CORS headers
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")

		// Handle preflight (OPTIONS)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
