package cmd

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"tipjar/config"
	"tipjar/database"
	"tipjar/events"
	"tipjar/processor"
	"tipjar/repository"
	"tipjar/service"
)

// Run wires the settlement engine together and executes one payday.
// It is invoked as an internal batch job, triggered externally.
func Run(ctx context.Context) error {
	cfg := config.Get()

	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	eventBus := events.NewBus()
	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)

	gateway := processor.NewClient(cfg.ProcessorBaseURL, cfg.ProcessorAPIKey)

	fees := service.DefaultFeeSchedule()
	if cfg.MinimumCharge != "" {
		minimum, err := decimal.NewFromString(cfg.MinimumCharge)
		if err != nil {
			return fmt.Errorf("invalid MINIMUM_CHARGE %q: %w", cfg.MinimumCharge, err)
		}
		fees.Minimum = minimum
	}

	paydayService := service.NewPaydayService(uowFactory, gateway, fees, cfg.PaydayWorkers)

	payday, err := paydayService.Run(ctx)
	if err != nil {
		return fmt.Errorf("payday failed: %w", err)
	}

	log.WithFields(log.Fields{
		"payday_id":    payday.ID,
		"participants": payday.NParticipants,
		"exchanges":    payday.NExchanges,
	}).Infof("Payday complete in %s mode.", cfg.Environment)

	return nil
}
