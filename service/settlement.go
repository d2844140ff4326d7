package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"tipjar/events"
	"tipjar/models"
)

// ResultNoFundingSource is recorded as the last charge result when a
// participant owes tips but has no processor account linked. It is
// distinct from a processor decline: no charge was ever attempted.
const ResultNoFundingSource = "no funding source"

// tipOutcome classifies what happened to a single tip during settlement
type tipOutcome int

const (
	// tipRejected: ineligible tip, no state change, not counted at all
	tipRejected tipOutcome = iota

	// tipSettled: the transfer succeeded and counts toward ntips/ntippers
	tipSettled

	// tipFailed: the tipper's balance was too low. Signals a prior charge
	// shortfall, recorded but not counted and not propagated.
	tipFailed
)

// settleParticipant runs one participant's full settlement: charge any
// funding shortfall, then move each eligible tip from their balance to the
// tippee's pending accumulator, then bump the run counters once. Business
// outcomes (declined charge, insufficient funds, ineligible tips) are
// recorded and swallowed; only structural faults are returned.
func (s *paydayService) settleParticipant(ctx context.Context, payday *models.Payday, participant *models.Participant) error {
	tips, total, err := s.tipsFor(ctx, participant.ID)
	if err != nil {
		return err
	}

	counters := models.PaydayCounters{Participants: 1}

	if shortfall := participant.Shortfall(total); shortfall.IsPositive() {
		if err := s.chargeParticipant(ctx, payday, participant, shortfall, &counters); err != nil {
			return err
		}
	}

	settled := 0
	for _, tip := range tips {
		outcome, err := s.settleTip(ctx, payday, participant, tip)
		if err != nil {
			return err
		}
		if outcome == tipSettled {
			settled++
		}
	}
	if settled > 0 {
		// A participant counts as a tipper once, however many tips settled
		counters.Tippers = 1
		counters.Tips = settled
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := uow.PaydayRepository().IncrementCounters(ctx, payday.ID, counters); err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// tipsFor fetches the participant's active outgoing tips and their total
func (s *paydayService) tipsFor(ctx context.Context, participantID string) ([]*models.Tip, decimal.Decimal, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, decimal.Zero, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	tips, total, err := uow.TipRepository().ActiveTipsAndTotal(ctx, participantID)
	if err != nil {
		return nil, decimal.Zero, err
	}
	if err := uow.Commit(); err != nil {
		return nil, decimal.Zero, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return tips, total, nil
}

// chargeParticipant covers a funding shortfall by pulling money from the
// participant's funding source. All ledger effects of one charge attempt
// land in a single transaction: balance, last charge result, exchange row
// and counter increment commit or roll back together.
func (s *paydayService) chargeParticipant(ctx context.Context, payday *models.Payday, participant *models.Participant, shortfall decimal.Decimal, counters *models.PaydayCounters) error {
	if !participant.HasFundingAccount() {
		log.WithField("participant", participant.ID).Warn("Cannot charge: no funding source linked.")
		counters.CCMissing = 1
		return s.recordChargeResult(ctx, participant, ResultNoFundingSource)
	}

	gross, fee := s.fees.Assess(shortfall)

	declined, err := s.processor.Charge(ctx, *participant.FundingAccountURI, gross, participant.ID)
	if err != nil {
		// A gateway fault is a terminal per-participant outcome for this
		// run, recorded like a decline and retried next cycle.
		declined = err.Error()
	}

	if declined != "" {
		log.WithFields(log.Fields{
			"participant": participant.ID,
			"amount":      gross,
			"reason":      declined,
		}).Warn("Charge failed.")
		counters.CCFailing = 1
		return s.recordChargeDecline(ctx, participant, declined)
	}

	net := gross.Sub(fee)

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := uow.ParticipantRepository().CreditBalance(ctx, participant.ID, net); err != nil {
		return err
	}
	if err := uow.ParticipantRepository().SetLastChargeResult(ctx, participant.ID, ""); err != nil {
		return err
	}
	if err := uow.ExchangeRepository().Record(ctx, &models.Exchange{
		ParticipantID: participant.ID,
		Amount:        gross,
		Fee:           fee,
	}); err != nil {
		return err
	}
	if err := uow.PaydayRepository().IncrementCounters(ctx, payday.ID, models.PaydayCounters{Exchanges: 1}); err != nil {
		return err
	}

	uow.EventBus().Publish(events.ExchangeRecordedEvent{
		ParticipantID: participant.ID,
		Amount:        gross,
		Fee:           fee,
	})

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	// Keep the in-memory view current for the transfers that follow
	participant.Balance = participant.Balance.Add(net)
	cleared := ""
	participant.LastChargeResult = &cleared

	log.WithFields(log.Fields{
		"participant": participant.ID,
		"amount":      gross,
		"fee":         fee,
	}).Info("Charged.")

	return nil
}

// recordChargeResult persists a charge outcome that involved no exchange
func (s *paydayService) recordChargeResult(ctx context.Context, participant *models.Participant, result string) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := uow.ParticipantRepository().SetLastChargeResult(ctx, participant.ID, result); err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	participant.LastChargeResult = &result
	return nil
}

// recordChargeDecline persists a processor decline and publishes it for
// audit consumers
func (s *paydayService) recordChargeDecline(ctx context.Context, participant *models.Participant, reason string) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := uow.ParticipantRepository().SetLastChargeResult(ctx, participant.ID, reason); err != nil {
		return err
	}
	uow.EventBus().Publish(events.ChargeFailedEvent{
		ParticipantID: participant.ID,
		Reason:        reason,
	})
	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	participant.LastChargeResult = &reason
	return nil
}

// settleTip attempts one internal transfer: debit the tipper's balance and
// credit the tippee's pending accumulator, atomically. A failed guarded
// debit is the insufficient-funds business outcome; an error from the
// store inside the transfer is structural and aborts the run.
func (s *paydayService) settleTip(ctx context.Context, payday *models.Payday, tipper *models.Participant, tip *models.Tip) (tipOutcome, error) {
	if !tip.EligibleAt(payday.StartedAt) {
		return tipRejected, nil
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return tipFailed, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	ok, err := uow.ParticipantRepository().DebitBalance(ctx, tipper.ID, tip.Amount)
	if err != nil {
		return tipFailed, fmt.Errorf("transfer from %s to %s: %w", tip.Tipper, tip.Tippee, err)
	}
	if !ok {
		log.Infof("INSUFFICIENT FUNDS: $%s from %s to %s.", tip.Amount, tip.Tipper, tip.Tippee)
		return tipFailed, nil
	}

	if err := uow.ParticipantRepository().CreditPending(ctx, tip.Tippee, tip.Amount); err != nil {
		return tipFailed, fmt.Errorf("transfer from %s to %s: %w", tip.Tipper, tip.Tippee, err)
	}

	uow.EventBus().Publish(events.TipSettledEvent{
		Tipper: tip.Tipper,
		Tippee: tip.Tippee,
		Amount: tip.Amount,
	})

	if err := uow.Commit(); err != nil {
		return tipFailed, fmt.Errorf("transfer from %s to %s: %w", tip.Tipper, tip.Tippee, err)
	}

	tipper.Balance = tipper.Balance.Sub(tip.Amount)
	log.Infof("SUCCESS: $%s from %s to %s.", tip.Amount, tip.Tipper, tip.Tippee)
	return tipSettled, nil
}
