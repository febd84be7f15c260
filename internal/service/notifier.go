package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/evaristomat/lol-v2/internal/models"
	"github.com/evaristomat/lol-v2/internal/probability"
)

// Notifier receives every qualifying bet after it was recorded.
// Delivery and formatting are the sink's concern.
type Notifier interface {
	BetPlaced(ctx context.Context, bet *models.Bet, assessment *probability.Assessment)
}

// LogNotifier writes qualifying bets to the structured log.
type LogNotifier struct {
	log logrus.FieldLogger
}

// NewLogNotifier creates a log-backed notification sink
func NewLogNotifier(log logrus.FieldLogger) *LogNotifier {
	return &LogNotifier{log: log}
}

// BetPlaced implements Notifier
func (n *LogNotifier) BetPlaced(_ context.Context, bet *models.Bet, assessment *probability.Assessment) {
	n.log.WithFields(logrus.Fields{
		"bet_id":    bet.ID,
		"event_id":  bet.EventID,
		"market":    bet.Market,
		"selection": bet.Selection,
		"line":      bet.Line,
		"odds":      bet.Odds,
		"roi":       assessment.ROI,
		"posterior": assessment.Posterior,
		"strategy":  bet.Strategy,
	}).Info("Qualifying bet recorded")
}
