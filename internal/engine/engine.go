// Package engine drives one batch run: fetch vendor emails, reconcile
// them against the ledger, and record success markers.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"ledgermail/internal/classify"
	"ledgermail/internal/gmail"
	"ledgermail/internal/match"
	"ledgermail/internal/model"
	"ledgermail/internal/parse"
	"ledgermail/internal/users"
	"ledgermail/internal/ynab"
)

// Config holds the knobs for one run.
type Config struct {
	// LookbackDays bounds the mail query. Defaults to 7.
	LookbackDays int
	// DateBufferDays is the matcher's +/- window. Defaults to 1.
	DateBufferDays int
	// Limit bounds emails examined per run. 0 means no limit.
	Limit int
	// DryRun logs every would-be mutation and applies none.
	DryRun bool
	// Reprocess ignores success markers when fetching.
	Reprocess bool
	// VenmoAccountID receives created payments when no user matches.
	VenmoAccountID string
	// VendorCategory accepts already-categorized Amazon transactions.
	VendorCategory string
}

// Stats summarizes one run.
type Stats struct {
	EmailsFetched   int
	OrdersParsed    int
	MemosUpdated    int
	PaymentsCreated int
	Duplicates      int
	Unmatched       int
	Skipped         int
	Errors          int
}

// Engine processes emails sequentially. External label state and the
// ledger are the only sources of truth; both are read fresh each run.
type Engine struct {
	mail       MailSource
	ledger     Ledger
	buildClass ClassifierFactory
	detector   *users.Detector
	logger     *slog.Logger
	cfg        Config

	// run-scoped, reset by Run
	classifier Classifier
	categories *model.CategorySet
	matcher    *match.Matcher
	ledgerTxns []model.LedgerTransaction
	stats      Stats
}

// New creates an Engine. The classifier factory and detector may be nil.
func New(mail MailSource, ledger Ledger, factory ClassifierFactory, detector *users.Detector, cfg Config, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.LookbackDays <= 0 {
		cfg.LookbackDays = 7
	}
	if cfg.DateBufferDays <= 0 {
		cfg.DateBufferDays = 1
	}
	if detector == nil {
		detector = users.NewDetector(nil)
	}
	return &Engine{
		mail:       mail,
		ledger:     ledger,
		buildClass: factory,
		detector:   detector,
		logger:     logger,
		cfg:        cfg,
	}
}

// Run executes one batch. Per-email failures are logged and leave the
// email unmarked for the next cycle; only total loss of the ledger or
// mail source aborts the run.
func (e *Engine) Run(ctx context.Context) (Stats, error) {
	e.stats = Stats{}

	categories, err := e.ledger.Categories(ctx)
	if err != nil {
		return e.stats, fmt.Errorf("loading ledger categories: %w", err)
	}
	e.categories = model.NewCategorySet(categories)

	e.classifier = nil
	if e.buildClass != nil {
		e.classifier = e.buildClass(e.categories)
	}

	since := time.Now().AddDate(0, 0, -(e.cfg.LookbackDays + e.cfg.DateBufferDays))
	e.ledgerTxns, err = e.ledger.Transactions(ctx, since)
	if err != nil {
		return e.stats, fmt.Errorf("loading ledger transactions: %w", err)
	}

	e.matcher = match.NewMatcher(match.Options{
		VendorMarker:   parse.VendorAmazon,
		VendorCategory: e.cfg.VendorCategory,
		DateBufferDays: e.cfg.DateBufferDays,
	})

	var exclude []string
	if !e.cfg.Reprocess {
		exclude = []string{gmail.LabelMatched, gmail.LabelCreated, gmail.LabelProcessed}
	}
	query := gmail.BuildQuery(e.cfg.LookbackDays, exclude)

	emails, err := e.mail.Fetch(ctx, query)
	if err != nil {
		return e.stats, fmt.Errorf("fetching mail: %w", err)
	}
	if e.cfg.Limit > 0 && len(emails) > e.cfg.Limit {
		emails = emails[:e.cfg.Limit]
	}
	e.stats.EmailsFetched = len(emails)

	e.logger.Info("run starting",
		"emails", len(emails),
		"ledger_transactions", len(e.ledgerTxns),
		"categories", e.categories.Len(),
		"dry_run", e.cfg.DryRun)

	for _, email := range emails {
		if err := ctx.Err(); err != nil {
			return e.stats, err
		}
		e.processEmail(ctx, email)
	}

	e.logger.Info("run complete",
		"memos_updated", e.stats.MemosUpdated,
		"payments_created", e.stats.PaymentsCreated,
		"unmatched", e.stats.Unmatched,
		"duplicates", e.stats.Duplicates,
		"skipped", e.stats.Skipped,
		"errors", e.stats.Errors)
	return e.stats, nil
}

func (e *Engine) processEmail(ctx context.Context, email *model.RawEmail) {
	logger := e.logger.With("email_id", email.ID, "subject", email.Subject)

	// The query excludes labeled mail, but label application and the
	// search index can lag behind each other.
	if !e.cfg.Reprocess && e.alreadyLabeled(email) {
		logger.Debug("already labeled, skipping")
		e.stats.Skipped++
		return
	}

	switch parse.DetectVendor(email) {
	case parse.VendorAmazon:
		e.processAmazon(ctx, logger, email)
	case parse.VendorVenmo:
		e.processVenmo(ctx, logger, email)
	default:
		logger.Debug("no vendor recognized, skipping")
		e.stats.Skipped++
	}
}

func (e *Engine) alreadyLabeled(email *model.RawEmail) bool {
	return email.HasLabel(gmail.LabelMatched) ||
		email.HasLabel(gmail.LabelCreated) ||
		email.HasLabel(gmail.LabelProcessed)
}

// processAmazon matches each order in the email against the ledger and
// rewrites the matched transaction's memo. The email is marked only
// after every order either mutated successfully or was decisively
// skipped; a partial failure leaves it unmarked for retry.
func (e *Engine) processAmazon(ctx context.Context, logger *slog.Logger, email *model.RawEmail) {
	orders, err := parse.Amazon(email)
	if err != nil {
		logger.Warn("unparseable amazon email, will retry next run", "error", err)
		e.stats.Errors++
		return
	}
	e.stats.OrdersParsed += len(orders)

	user := e.detector.Detect(email)
	if user != nil && !user.RecipientMatches(email.Body) {
		logger.Info("order recipient is not this user, skipping", "user", user.Name)
		e.stats.Skipped++
		e.mark(ctx, logger, email.ID, gmail.LabelProcessed)
		return
	}

	matched := 0
	for _, order := range orders {
		txn := e.matcher.Match(order, e.candidateTxns(user))
		if txn == nil {
			logger.Info("no ledger match for order",
				"order", order.OrderNumber,
				"total", order.Total,
				"date", order.Date.Format("2006-01-02"))
			e.stats.Unmatched++
			continue
		}

		if err := e.enrichTransaction(ctx, logger, order, txn); err != nil {
			logger.Error("failed to update transaction",
				"order", order.OrderNumber,
				"transaction_id", txn.ID,
				"error", err)
			e.stats.Errors++
			continue
		}
		matched++
	}

	if matched == len(orders) && matched > 0 {
		e.mark(ctx, logger, email.ID, gmail.LabelMatched)
	}
}

func (e *Engine) enrichTransaction(ctx context.Context, logger *slog.Logger, order model.ParsedOrder, txn *model.LedgerTransaction) error {
	memo := match.Truncate(match.BuildMemo(order), ynab.MemoMaxLen)
	patch := model.TransactionPatch{Memo: &memo}

	if txn.Uncategorized() || txn.CategoryName == "Uncategorized" {
		if result := e.classifyOrder(ctx, order); !result.IsNone() {
			if id, ok := e.categories.IDFor(result.Category); ok {
				patch.CategoryID = &id
				logger.Info("classified order",
					"order", order.OrderNumber,
					"category", result.Category,
					"origin", result.Origin,
					"confidence", result.Confidence)
			}
		}
	}

	if e.cfg.DryRun {
		category := ""
		if patch.CategoryID != nil {
			category, _ = e.categories.NameFor(*patch.CategoryID)
		}
		logger.Info("dry-run: would update transaction",
			"transaction_id", txn.ID,
			"memo", memo,
			"category", category)
		e.stats.MemosUpdated++
		return nil
	}

	if err := e.ledger.UpdateTransaction(ctx, txn.ID, patch); err != nil {
		return err
	}
	logger.Info("updated transaction memo",
		"transaction_id", txn.ID,
		"order", order.OrderNumber,
		"amount", txn.Amount)
	e.stats.MemosUpdated++
	return nil
}

// processVenmo creates a new ledger transaction for the payment unless
// an equivalent one already exists.
func (e *Engine) processVenmo(ctx context.Context, logger *slog.Logger, email *model.RawEmail) {
	payment, err := parse.Venmo(email)
	if err != nil {
		logger.Warn("unparseable venmo email, will retry next run", "error", err)
		e.stats.Errors++
		return
	}

	amount := model.MilliunitsFromDollars(payment.Amount)
	if e.isDuplicatePayment(payment, amount) {
		logger.Info("payment already in ledger, skipping",
			"counterparty", payment.Counterparty,
			"amount", amount)
		e.stats.Duplicates++
		e.mark(ctx, logger, email.ID, gmail.LabelProcessed)
		return
	}

	accountID := e.cfg.VenmoAccountID
	if user := e.detector.Detect(email); user != nil && user.VenmoAccount != "" {
		accountID = user.VenmoAccount
	}
	if accountID == "" {
		logger.Warn("no venmo account configured, skipping payment")
		e.stats.Skipped++
		return
	}

	txn := model.NewTransaction{
		Date:      payment.Date,
		AccountID: accountID,
		PayeeName: payment.Counterparty,
		Memo:      payment.Note,
		Amount:    amount,
	}

	if result := e.classifyPayment(ctx, payment); !result.IsNone() {
		if id, ok := e.categories.IDFor(result.Category); ok {
			txn.CategoryID = id
			logger.Info("classified payment",
				"counterparty", payment.Counterparty,
				"category", result.Category,
				"origin", result.Origin,
				"confidence", result.Confidence)
		}
	}

	if e.cfg.DryRun {
		logger.Info("dry-run: would create transaction",
			"payee", txn.PayeeName,
			"amount", txn.Amount,
			"account_id", txn.AccountID)
		e.stats.PaymentsCreated++
		return
	}

	id, err := e.ledger.CreateTransaction(ctx, txn)
	if err != nil {
		logger.Error("failed to create transaction",
			"payee", txn.PayeeName,
			"error", err)
		e.stats.Errors++
		return
	}

	logger.Info("created transaction",
		"transaction_id", id,
		"payee", txn.PayeeName,
		"amount", txn.Amount)
	e.stats.PaymentsCreated++
	// Remember the insert so a second notification in the same batch
	// is caught by the duplicate check.
	e.ledgerTxns = append(e.ledgerTxns, model.LedgerTransaction{
		ID:        id,
		Date:      payment.Date,
		PayeeName: payment.Counterparty,
		Amount:    amount,
		AccountID: accountID,
	})

	e.mark(ctx, logger, email.ID, gmail.LabelCreated)
}

func (e *Engine) classifyOrder(ctx context.Context, order model.ParsedOrder) model.ClassificationResult {
	if e.classifier == nil {
		return model.NoResult()
	}
	text := classify.OrderText(order)
	if text == "" {
		return model.NoResult()
	}
	return e.classifier.Classify(ctx, parse.VendorAmazon, text)
}

func (e *Engine) classifyPayment(ctx context.Context, payment model.ParsedPayment) model.ClassificationResult {
	if e.classifier == nil {
		return model.NoResult()
	}
	return e.classifier.Classify(ctx, parse.VendorVenmo, classify.PaymentText(payment))
}

// candidateTxns restricts matching to the user's Amazon account when one
// is configured.
func (e *Engine) candidateTxns(user *users.User) []model.LedgerTransaction {
	if user == nil || user.AmazonAccount == "" {
		return e.ledgerTxns
	}
	var filtered []model.LedgerTransaction
	for _, txn := range e.ledgerTxns {
		if txn.AccountID == user.AmazonAccount {
			filtered = append(filtered, txn)
		}
	}
	return filtered
}

func (e *Engine) isDuplicatePayment(payment model.ParsedPayment, amount model.Milliunits) bool {
	for _, txn := range e.ledgerTxns {
		if txn.Amount == amount &&
			strings.EqualFold(txn.PayeeName, payment.Counterparty) &&
			sameDay(txn.Date, payment.Date) {
			return true
		}
	}
	return false
}

// mark records a success marker. Failures are logged only; the worst
// case is one redundant reprocess next cycle, which the duplicate and
// matcher checks absorb.
func (e *Engine) mark(ctx context.Context, logger *slog.Logger, emailID, label string) {
	if e.cfg.DryRun {
		logger.Info("dry-run: would label email", "label", label)
		return
	}
	if err := e.mail.Mark(ctx, emailID, label); err != nil {
		logger.Warn("failed to label email", "label", label, "error", err)
	}
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}
