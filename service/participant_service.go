package service

import (
	"context"
	"fmt"
)

type participantService struct {
	uowFactory UnitOfWorkFactory
}

// NewParticipantService creates a new participant service
func NewParticipantService(uowFactory UnitOfWorkFactory) ParticipantService {
	return &participantService{
		uowFactory: uowFactory,
	}
}

// AssociateFundingAccount links a processor funding source to a
// participant and clears any stale charge result so the next payday
// attempts a fresh charge.
func (s *participantService) AssociateFundingAccount(ctx context.Context, participantID, fundingURI string) error {
	if fundingURI == "" {
		return fmt.Errorf("funding account URI must not be empty")
	}
	return s.setFundingAccount(ctx, participantID, &fundingURI)
}

// ClearFundingAccount unlinks the participant's funding source
func (s *participantService) ClearFundingAccount(ctx context.Context, participantID string) error {
	return s.setFundingAccount(ctx, participantID, nil)
}

func (s *participantService) setFundingAccount(ctx context.Context, participantID string, fundingURI *string) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	participant, err := uow.ParticipantRepository().GetByID(ctx, participantID)
	if err != nil {
		return fmt.Errorf("failed to get participant: %w", err)
	}
	if participant == nil {
		return fmt.Errorf("participant %s not found", participantID)
	}

	if err := uow.ParticipantRepository().SetFundingAccount(ctx, participantID, fundingURI); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
