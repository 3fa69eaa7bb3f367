package engine

import (
	"context"
	"time"

	"ledgermail/internal/model"
)

// MailSource fetches vendor emails and records durable success markers.
type MailSource interface {
	Fetch(ctx context.Context, query string) ([]*model.RawEmail, error)
	Mark(ctx context.Context, emailID, label string) error
}

// Ledger is the budget being reconciled against.
type Ledger interface {
	Categories(ctx context.Context) ([]model.Category, error)
	Transactions(ctx context.Context, since time.Time) ([]model.LedgerTransaction, error)
	UpdateTransaction(ctx context.Context, id string, patch model.TransactionPatch) error
	CreateTransaction(ctx context.Context, txn model.NewTransaction) (string, error)
}

// Classifier assigns a ledger category to transaction text. Implemented
// by classify.Pipeline.
type Classifier interface {
	Classify(ctx context.Context, source, text string) model.ClassificationResult
}

// ClassifierFactory builds the classifier once the run's live category
// set is known. A nil factory, or a factory returning nil, disables
// classification for the run.
type ClassifierFactory func(categories *model.CategorySet) Classifier
