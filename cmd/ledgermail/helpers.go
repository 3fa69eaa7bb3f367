package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/viper"

	"ledgermail/internal/classify"
	"ledgermail/internal/common"
	"ledgermail/internal/config"
	"ledgermail/internal/engine"
	"ledgermail/internal/gmail"
	"ledgermail/internal/llm"
	"ledgermail/internal/model"
	"ledgermail/internal/rules"
	"ledgermail/internal/storage"
	"ledgermail/internal/users"
	"ledgermail/internal/ynab"
)

func newLedgerClient() (*ynab.Client, error) {
	client, err := ynab.New(
		viper.GetString("ynab.access_token"),
		viper.GetString("ynab.budget_id"),
	)
	if err != nil {
		return nil, common.NewUserError(
			"set ynab.access_token and ynab.budget_id in the config file", err)
	}
	return client, nil
}

func newMailClient(ctx context.Context) (*gmail.Client, error) {
	httpClient, err := gmail.HTTPClient(ctx, gmailOAuthConfig())
	if err != nil {
		return nil, err
	}
	return gmail.New(ctx, httpClient, slog.Default())
}

func gmailOAuthConfig() gmail.OAuth2Config {
	tokenFile := viper.GetString("gmail.token_file")
	if tokenFile == "" {
		tokenFile = filepath.Join(config.DefaultConfigDir(), "gmail_token.json")
	}
	return gmail.OAuth2Config{
		ClientID:     viper.GetString("gmail.client_id"),
		ClientSecret: viper.GetString("gmail.client_secret"),
		TokenFile:    config.ExpandPath(tokenFile),
	}
}

func rulesFilePath() string {
	path := viper.GetString("rules.file")
	if path == "" {
		path = filepath.Join(config.DefaultConfigDir(), "category_rules.yaml")
	}
	return config.ExpandPath(path)
}

func uncertainDBPath() string {
	path := viper.GetString("storage.db_path")
	if path == "" {
		path = filepath.Join(config.DefaultDataDir(), "uncertain.db")
	}
	return config.ExpandPath(path)
}

func loadUsers() (*users.Detector, error) {
	var configured []users.User
	if err := viper.UnmarshalKey("users", &configured); err != nil {
		return nil, fmt.Errorf("invalid users config: %w", err)
	}
	return users.NewDetector(configured), nil
}

// newClassifierFactory wires the rule engine, LLM fallback, and the
// uncertain side channel. A broken rules file or missing LLM credential
// degrades that leg rather than failing the run; both missing yields a
// nil classifier, which disables classification entirely.
func newClassifierFactory(side classify.SideChannel, logger *slog.Logger) engine.ClassifierFactory {
	ruleConfig, err := rules.Load(rulesFilePath())
	if err != nil {
		logger.Warn("rules file unusable, rule classification disabled",
			"path", rulesFilePath(), "error", err)
		ruleConfig = nil
	}

	llmConfig := llm.Config{
		Provider: viper.GetString("llm.provider"),
		APIKey:   viper.GetString("llm.api_key"),
		Model:    viper.GetString("llm.model"),
	}

	return func(categories *model.CategorySet) engine.Classifier {
		opts := classify.Options{
			Categories:    categories,
			Side:          side,
			Logger:        logger,
			RuleThreshold: rules.DefaultMinimumConfidence,
			LLMThreshold:  rules.DefaultLLMThreshold,
		}

		if ruleConfig != nil {
			opts.Rules = rules.NewEngine(ruleConfig.Rules)
			opts.RuleThreshold = ruleConfig.Conservative.MinimumConfidence
			opts.LLMThreshold = ruleConfig.LLM.ConfidenceThreshold
			opts.ForceLLMFor = ruleConfig.LLM.ForceLLMFor
		}

		if llmConfig.APIKey != "" {
			classifier, err := llm.NewClassifier(llmConfig, categories.Names(), logger)
			if err != nil {
				logger.Warn("llm classifier unavailable", "error", err)
			} else {
				opts.LLM = classifier
			}
		}

		if opts.Rules == nil && opts.LLM == nil {
			return nil
		}
		return classify.NewPipeline(opts)
	}
}

func openUncertainStore(logger *slog.Logger) *storage.SQLiteStorage {
	store, err := storage.NewSQLiteStorage(uncertainDBPath())
	if err != nil {
		logger.Warn("uncertain store unavailable", "error", err)
		return nil
	}
	return store
}
