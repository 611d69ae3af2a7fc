// Package main provides the entry point of the cookbook JSON API
package main

import (
	"os"

	"go.uber.org/fx"

	"github.com/alchemorsel/cookbook/internal/infrastructure/container"
)

func main() {
	fx.New(
		fx.NopLogger,
		fx.Supply(container.ConfigPath(os.Getenv("COOKBOOK_CONFIG"))),
		container.APIModule,
	).Run()
}
