// Command process-statement runs the full statement pipeline against one
// local PDF, without a queue or database: extract text, extract transactions
// with the model, categorize, and print the resulting rows. Useful for
// validating a bank's statement format before wiring it into the service.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/centimo/centimo/internal/aiextract"
	"github.com/centimo/centimo/internal/config"
	"github.com/centimo/centimo/internal/domain"
	"github.com/centimo/centimo/internal/jobs"
	"github.com/centimo/centimo/internal/logger"
	"github.com/centimo/centimo/internal/pdfextract"
	"github.com/centimo/centimo/internal/pipeline"
	"github.com/centimo/centimo/internal/store/memory"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.LogLevel, true)

	var (
		filePath string
		password string
		userID   string
		cardID   string
	)
	flag.StringVar(&filePath, "file", "", "path to the statement PDF (required)")
	flag.StringVar(&password, "password", "", "PDF password, if the statement is encrypted")
	flag.StringVar(&userID, "user", "local-user", "user id to attribute rows to")
	flag.StringVar(&cardID, "card", "local-card", "card id to attribute rows to")
	flag.Parse()

	if filePath == "" {
		log.Fatal().Msg("usage: process-statement -file /path/to/statement.pdf [-password PW]")
	}

	ctx := logger.WithContext(context.Background(), log)

	data, err := os.ReadFile(filePath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to read statement file")
	}

	res := pdfextract.Extract(ctx, data, password)
	if !res.Success {
		log.Fatal().Str("failure", string(res.Failure)).Msg("text extraction failed")
	}
	log.Info().Int("chars", len(res.Text)).Msg("text extracted")

	gen, err := aiextract.NewGeminiGenerator(ctx, cfg.ModelName)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create model client")
	}

	st := memory.New()
	statementID := uuid.New().String()
	st.PutStatement(domain.Statement{
		ID:         statementID,
		UserID:     userID,
		CardID:     cardID,
		FileName:   filePath,
		FileType:   "application/pdf",
		Status:     domain.StatementProcessing,
		UploadedAt: time.Now(),
	})

	processor := pipeline.NewProcessor(st, aiextract.New(gen, cfg.Currency))
	err = processor.ProcessStatement(ctx, jobs.ProcessStatementPayload{
		StatementID:   statementID,
		UserID:        userID,
		CardID:        cardID,
		FileName:      filePath,
		ExtractedText: res.Text,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("pipeline failed")
	}

	txns, err := st.ListByUser(ctx, userID)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to list results")
	}

	fmt.Printf("%d transactions extracted from %s\n\n", len(txns), filePath)
	for _, txn := range txns {
		date := "----------"
		if !txn.Date.IsZero() {
			date = txn.Date.Format("2006-01-02")
		}
		category := txn.CategoryID
		if category == "" {
			category = "(uncategorized)"
		}
		fmt.Printf("%s  %-30s %10.2f %s  %s\n",
			date, txn.Merchant, float64(txn.AmountMinor)/100, txn.Currency, category)
	}
}
