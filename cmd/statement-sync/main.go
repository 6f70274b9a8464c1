package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/brandon/statement-sync/internal/archive"
	"github.com/brandon/statement-sync/internal/calendar"
	"github.com/brandon/statement-sync/internal/config"
	"github.com/brandon/statement-sync/internal/engine"
	"github.com/brandon/statement-sync/internal/history"
	"github.com/brandon/statement-sync/internal/mail"
	"github.com/brandon/statement-sync/internal/rules"
	"github.com/brandon/statement-sync/internal/sheet"
)

var (
	version     = "dev"
	configPath  = flag.String("config", "statement-sync.toml", "Path to configuration file")
	showVersion = flag.Bool("version", false, "Show version information")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Printf("statement-sync version %s\n", version)
		os.Exit(0)
	}

	// Set up logging
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	if err := cfg.Validate(); err != nil {
		logger.WithError(err).Fatal("Invalid configuration")
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	start := time.Now()
	cbd := calendar.PriorBusinessDay(start, 0)
	pbd := calendar.PriorBusinessDay(start, 1)
	p2bd := calendar.PriorBusinessDay(start, 2)

	// Archive directory for the prior business day's statements
	archiveDir, err := archive.Path(cfg.Archive.BasePath, pbd)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create archive directory")
	}

	// Mirror the log into the run's archive directory
	logPath := filepath.Join(archiveDir, "run.log")
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		logger.WithError(err).Warn("Failed to open run log file")
	} else {
		defer logFile.Close()
		logger.SetOutput(io.MultiWriter(os.Stdout, logFile))
	}

	logger.WithFields(logrus.Fields{
		"cbd": cbd.Format("2006-01-02"),
		"pbd": pbd.Format("2006-01-02"),
	}).Info("Starting statement sync run")

	// Open the workbook and take the rule table snapshot
	workbook, err := sheet.Open(cfg.Workbook.Path, cfg.Workbook.Sheet, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to open workbook")
	}
	defer workbook.Close()

	header, dataRows, err := workbook.Rows()
	if err != nil {
		logger.WithError(err).Fatal("Failed to read mapping sheet")
	}

	table, err := rules.Load(header, dataRows)
	if err != nil {
		logger.WithError(err).Fatal("Failed to load mapping table")
	}
	logger.WithField("rules", len(table.Rules)).Info("Mapping table loaded")

	// Clean slate: clear prior statuses in memory and in the sheet, then
	// stamp the business dates and start time.
	table.Reset()
	if _, err := workbook.ResetStatus(); err != nil {
		logger.WithError(err).Fatal("Failed to reset status column")
	}
	workbook.StampStart(cbd, pbd, p2bd, start)

	// Fetch the inbox snapshot for the run
	mailClient := mail.NewClient(&cfg.Mailbox, logger)
	defer mailClient.Close()

	cutoff, err := calendar.FilterTime(pbd, cfg.Mailbox.FilterHour, cfg.Mailbox.FilterMinute, cfg.Mailbox.Timezone)
	if err != nil {
		logger.WithError(err).Fatal("Failed to build mail filter time")
	}

	messages, err := mailClient.FetchSince(cfg.Mailbox.Folder, cutoff)
	if err != nil {
		logger.WithError(err).Fatal("Failed to fetch messages")
	}

	// Match, archive, and fold outcomes back into the table
	result := engine.Run(table, messages, archiveDir, logger)

	for _, outcome := range result.Outcomes {
		if err := workbook.SetStatus(outcome.RowIndex, outcome.Status); err != nil {
			logger.WithError(err).WithField("row", outcome.RowIndex).Warn("Failed to write status")
		}
	}

	end := time.Now()
	workbook.StampEnd(end, end.Sub(start))

	if err := workbook.Save(); err != nil {
		logger.WithError(err).Error("Failed to save workbook")
		os.Exit(1)
	}

	recordHistory(cfg, result, pbd, start, end, logger)

	logger.WithFields(logrus.Fields{
		"messages":    result.MessagesProcessed,
		"attachments": result.AttachmentsSaved,
		"duration":    end.Sub(start).Truncate(time.Second).String(),
	}).Info("Run completed")

	fmt.Printf("Processed %d messages. Saved %d attachments.\n",
		result.MessagesProcessed, result.AttachmentsSaved)
}

// recordHistory writes the run summary and per-attachment records into the
// local history database. History failures never fail the run.
func recordHistory(cfg *config.Config, result *engine.Result, businessDate time.Time, start, end time.Time, logger *logrus.Logger) {
	if cfg.History.Path == "" {
		return
	}

	store, err := history.Open(cfg.History.Path, logger)
	if err != nil {
		logger.WithError(err).Warn("Failed to open run history")
		return
	}
	defer store.Close()

	runID, err := store.RecordRun(&history.Run{
		StartedAt:         start,
		FinishedAt:        end,
		BusinessDate:      businessDate.Format("2006-01-02"),
		MessagesProcessed: result.MessagesProcessed,
		AttachmentsSaved:  result.AttachmentsSaved,
	})
	if err != nil {
		logger.WithError(err).Warn("Failed to record run history")
		return
	}

	for _, msg := range result.Messages {
		for _, disp := range msg.Dispositions {
			for _, save := range disp.Saves {
				rec := &history.SavedAttachment{
					RowIndex:   save.RowIndex,
					Sender:     msg.Message.SenderEmail,
					Subject:    msg.Message.Subject,
					Attachment: disp.FileName,
					SavedPath:  save.Path,
				}
				if err := store.RecordAttachment(runID, rec); err != nil {
					logger.WithError(err).Warn("Failed to record attachment history")
				}
			}
		}
	}
}
