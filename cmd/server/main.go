package main

import "chatspace/internal/app"

func main() {
	app.Run()
}
