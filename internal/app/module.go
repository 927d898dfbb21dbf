package app

import (
	"context"
	"log/slog"
	"os"

	"github.com/shandysiswandi/gobank/internal/bank"
)

func (a *App) initModules() {
	if a.config.GetBool("modules.bank.enabled") {
		closer, err := bank.New(bank.Dependency{
			Config:    a.config,
			Router:    a.router,
			Goroutine: a.goroutine,
			Context:   a.ctx,
			ID:        a.uuid,
		})
		if err != nil {
			slog.Error("failed to init module bank", "error", err)
			os.Exit(1)
		}
		if closer != nil {
			if a.closerFn == nil {
				a.closerFn = map[string]func(context.Context) error{}
			}
			a.closerFn["Bank"] = closer
		}
	}
}
