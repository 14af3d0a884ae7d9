package main

import (
	"worsebox/internal/bootstrap"
)

func main() {
	bootstrap.Run()
}
