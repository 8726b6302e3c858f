package main

import (
	"github.com/joeydtaylor/steeze-print/pkg/serverfx"
	"go.uber.org/fx"
)

func main() {
	fx.New(
		serverfx.Module(serverfx.WithService("printd")),
	).Run()
}
