package engine

import (
	"github.com/sirupsen/logrus"

	"github.com/brandon/statement-sync/internal/archive"
	"github.com/brandon/statement-sync/internal/rules"
	"github.com/brandon/statement-sync/pkg/types"
)

// MessageResult pairs a processed message with what happened to each of its
// attachments.
type MessageResult struct {
	Message      *types.Message
	Dispositions []rules.Disposition
}

// Result summarizes one reconciliation run.
type Result struct {
	Messages          []MessageResult
	Outcomes          []rules.Outcome
	MessagesProcessed int
	AttachmentsSaved  int
}

// Run evaluates every message against the table's rules in delivery order,
// archives matched attachments under dir, and folds the outcomes back into
// the table by row identity. The table must already be reset; dir must
// already exist. Per-item failures are logged inside the evaluator and never
// abort the run.
func Run(table *rules.Table, messages []*types.Message, dir string, logger *logrus.Logger) *Result {
	index := rules.NewIndex(table)
	writer := archive.NewWriter(dir, logger)
	evaluator := rules.NewEvaluator(index, writer, logger)

	result := &Result{}
	for _, msg := range messages {
		dispositions := evaluator.Evaluate(msg)
		result.Messages = append(result.Messages, MessageResult{
			Message:      msg,
			Dispositions: dispositions,
		})
		result.MessagesProcessed++
	}

	result.Outcomes = evaluator.Outcomes()
	result.AttachmentsSaved = evaluator.SavedCount()
	rules.Apply(table, result.Outcomes)

	logger.WithFields(logrus.Fields{
		"messages":    result.MessagesProcessed,
		"attachments": result.AttachmentsSaved,
		"rows":        len(result.Outcomes),
	}).Info("Evaluation completed")

	return result
}
