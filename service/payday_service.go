package service

import (
	"context"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"

	"tipjar/events"
	"tipjar/models"
)

type paydayService struct {
	uowFactory UnitOfWorkFactory
	processor  ProcessorGateway
	fees       FeeSchedule
	workers    int
}

// NewPaydayService creates a new payday service. The worker count bounds
// how many participants settle concurrently; it should track the
// processor's rate limits, not the CPU count.
func NewPaydayService(uowFactory UnitOfWorkFactory, processor ProcessorGateway, fees FeeSchedule, workers int) PaydayService {
	if workers < 1 {
		workers = 1
	}
	return &paydayService{
		uowFactory: uowFactory,
		processor:  processor,
		fees:       fees,
		workers:    workers,
	}
}

// Run executes one payday: acquire or resume the open run, settle every
// claimed participant, finalize. A structural fault aborts the run and
// leaves it open so the next invocation resumes it.
func (s *paydayService) Run(ctx context.Context) (*models.Payday, error) {
	log.Info("Greetings, program! It's payday!")

	payday, participants, err := s.initialize(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.settleAll(ctx, payday, participants); err != nil {
		// The run record stays open; the next invocation picks it up.
		return payday, err
	}

	return s.finalize(ctx, payday)
}

// initialize acquires the open payday or creates a fresh one, zeroes the
// pending column and fetches the participants eligible this run. Resuming
// is the crash-recovery path: a run that died mid-loop continues with its
// original start time so already-settled participants are not re-charged.
func (s *paydayService) initialize(ctx context.Context) (*models.Payday, []*models.Participant, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	payday, err := uow.PaydayRepository().GetOpen(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get open payday: %w", err)
	}

	if payday == nil {
		payday, err = uow.PaydayRepository().Create(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create payday: %w", err)
		}
		log.Info("Starting a new payday.")
	} else {
		log.Info("Picking up with an existing payday.")
	}
	log.Infof("Payday started at %s.", payday.StartedAt)

	if err := uow.ParticipantRepository().ZeroPending(ctx); err != nil {
		return nil, nil, err
	}
	log.Info("Zeroed out the pending column.")

	participants, err := uow.ParticipantRepository().ListClaimed(ctx)
	if err != nil {
		return nil, nil, err
	}
	log.Infof("Fetched participants. (%d)", len(participants))

	if err := uow.Commit(); err != nil {
		return nil, nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return payday, participants, nil
}

// settleAll settles participants through a bounded worker pool. Business
// outcomes are recorded per participant and never stop the loop; a
// structural fault cancels the remaining work and aborts the run.
func (s *paydayService) settleAll(ctx context.Context, payday *models.Payday, participants []*models.Participant) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan *models.Participant)
	var wg sync.WaitGroup
	var once sync.Once
	var fatal error

	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for participant := range jobs {
				if err := s.settleParticipant(ctx, payday, participant); err != nil {
					once.Do(func() {
						fatal = err
						cancel()
					})
					return
				}
			}
		}()
	}

feed:
	for _, participant := range participants {
		select {
		case jobs <- participant:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if fatal != nil {
		return fmt.Errorf("payday aborted: %w", fatal)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("payday aborted: %w", err)
	}
	return nil
}

// finalize closes the run and reports its final counters
func (s *paydayService) finalize(ctx context.Context, payday *models.Payday) (*models.Payday, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := uow.PaydayRepository().Finalize(ctx, payday.ID); err != nil {
		return nil, err
	}

	closed, err := uow.PaydayRepository().GetByID(ctx, payday.ID)
	if err != nil {
		return nil, err
	}

	uow.EventBus().Publish(events.PaydayFinishedEvent{
		PaydayID:     closed.ID,
		StartedAt:    closed.StartedAt,
		Participants: closed.NParticipants,
		Exchanges:    closed.NExchanges,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"participants": closed.NParticipants,
		"tippers":      closed.NTippers,
		"tips":         closed.NTips,
		"exchanges":    closed.NExchanges,
		"cc_failing":   closed.NCCFailing,
		"cc_missing":   closed.NCCMissing,
	}).Info("Finished payday.")

	return closed, nil
}
