package main

import "abacus_backend/internal/app"

func main() {
	app.Run()
}
