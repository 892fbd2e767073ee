package main

import "uiregression/internal/app"

func main() {
	app.Main()
}
