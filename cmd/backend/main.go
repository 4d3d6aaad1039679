package main

import (
	"log"

	"eventmarket-backend/internal/api"
)

func main() {
	log.Println("App start")
	api.StartServer()
	log.Println("App terminated")
}
