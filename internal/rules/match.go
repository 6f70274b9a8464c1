package rules

import (
	"path"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/brandon/statement-sync/pkg/types"
)

// Outcome records one satisfied rule for writeback, keyed by row identity.
type Outcome struct {
	RowIndex int
	Status   string
}

// Save records one archived copy of an attachment.
type Save struct {
	RowIndex int
	Path     string
}

// Disposition describes what happened to a single attachment of a message:
// zero saves means no candidate pattern matched it.
type Disposition struct {
	FileName string
	Saves    []Save
}

// Matched reports whether at least one rule was satisfied by the attachment.
func (d Disposition) Matched() bool {
	return len(d.Saves) > 0
}

// Saver persists one matched attachment and returns the path written.
type Saver interface {
	Save(name string, content []byte) (string, error)
}

// Evaluator matches inbound messages against the rule index, archiving every
// matched attachment and accumulating outcomes for table writeback. Within a
// run, a later match for the same row overwrites the earlier outcome.
type Evaluator struct {
	index  Index
	saver  Saver
	logger *logrus.Logger

	outcomes map[int]string
	saved    int
}

// NewEvaluator creates an evaluator over a read-only index.
func NewEvaluator(index Index, saver Saver, logger *logrus.Logger) *Evaluator {
	return &Evaluator{
		index:    index,
		saver:    saver,
		logger:   logger,
		outcomes: make(map[int]string),
	}
}

// Evaluate processes one message. Each attachment is tested against every
// candidate rule in table order; every match is recorded, so one attachment
// satisfying N overlapping patterns yields N saves and N outcomes. Failures
// archiving a single attachment are logged and do not stop the rest.
func (e *Evaluator) Evaluate(msg *types.Message) []Disposition {
	candidates := e.index.Candidates(msg.SenderEmail, msg.Subject)

	log := e.logger.WithFields(logrus.Fields{
		"sender":  msg.SenderEmail,
		"subject": msg.Subject,
	})

	dispositions := make([]Disposition, 0, len(msg.Attachments))
	for _, att := range msg.Attachments {
		name := Normalize(att.FileName)
		disp := Disposition{FileName: att.FileName}

		for _, rule := range candidates {
			matched, err := path.Match(rule.AttachmentPattern, name)
			if err != nil {
				log.WithError(err).WithField("pattern", rule.AttachmentPattern).Warn("Skipping malformed attachment pattern")
				continue
			}
			if !matched {
				continue
			}

			savedPath, err := e.saver.Save(rule.SaveName, att.Content)
			if err != nil {
				log.WithError(err).WithField("attachment", att.FileName).Warn("Failed to archive attachment")
				continue
			}

			e.outcomes[rule.RowIndex] = StatusSaved
			e.saved++
			disp.Saves = append(disp.Saves, Save{RowIndex: rule.RowIndex, Path: savedPath})
			log.WithField("path", savedPath).Info("Archived attachment")
		}

		if !disp.Matched() {
			log.WithField("attachment", att.FileName).Info("No rule matched attachment")
		}
		dispositions = append(dispositions, disp)
	}

	return dispositions
}

// Outcomes returns the accumulated outcomes ordered by row index.
func (e *Evaluator) Outcomes() []Outcome {
	indexes := make([]int, 0, len(e.outcomes))
	for idx := range e.outcomes {
		indexes = append(indexes, idx)
	}
	sort.Ints(indexes)

	outcomes := make([]Outcome, 0, len(indexes))
	for _, idx := range indexes {
		outcomes = append(outcomes, Outcome{RowIndex: idx, Status: e.outcomes[idx]})
	}
	return outcomes
}

// SavedCount returns the number of attachment copies archived so far.
func (e *Evaluator) SavedCount() int {
	return e.saved
}
