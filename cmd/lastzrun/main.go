package main

import (
	"lastzrun/internal/app"
	"lastzrun/internal/appshell"
)

func main() { appshell.Main(app.RunContext) }
