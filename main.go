package main

import (
	"os"

	"github.com/lostandfound-admin/lostandfound-admin/app"
)

func main() {
	err := app.Execute()
	if err != nil {
		os.Exit(1)
	}
}
