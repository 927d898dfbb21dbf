package bank

import (
	"context"
	"time"

	"github.com/shandysiswandi/gobank/internal/bank/event"
	"github.com/shandysiswandi/gobank/internal/bank/inbound"
	"github.com/shandysiswandi/gobank/internal/bank/store"
	"github.com/shandysiswandi/gobank/internal/bank/usecase"
	"github.com/shandysiswandi/gobank/internal/pkg/pkgconfig"
	"github.com/shandysiswandi/gobank/internal/pkg/pkgrouter"
	"github.com/shandysiswandi/gobank/internal/pkg/pkgroutine"
	"github.com/shandysiswandi/gobank/internal/pkg/pkguid"
)

type Dependency struct {
	Config    pkgconfig.Config
	Goroutine *pkgroutine.Manager
	Router    *pkgrouter.Router
	Context   context.Context
	ID        pkguid.StringID
}

func New(dep Dependency) (func(context.Context) error, error) {
	storage := store.NewInMemoryStore()
	bus := event.NewBus(512)
	consumer := event.NewAuditConsumer(bus, event.LogAuditor{}, event.ConsumerConfig{
		Workers:     int(dep.Config.GetInt("modules.bank.audit.workers")),
		MaxRetries:  3,
		BaseBackoff: 200 * time.Millisecond,
	})
	consumer.Start()

	if dep.ID == nil {
		dep.ID = pkguid.NewUUID()
	}

	txID, err := pkguid.NewSnowflake()
	if err != nil {
		return nil, err
	}

	uc := usecase.New(usecase.Dependency{
		Store:       storage,
		Events:      bus,
		Runner:      dep.Goroutine,
		Clock:       nil,
		AccountID:   dep.ID,
		TxID:        txID,
		MaxAttempts: int(dep.Config.GetInt("modules.bank.transfer.max_attempts")),
		BaseBackoff: dep.Config.GetDuration("modules.bank.transfer.backoff"),
		RootCtx:     dep.Context,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc)

	return consumer.Stop, nil
}
