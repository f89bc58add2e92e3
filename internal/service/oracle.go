package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/meteoryte/banana-oracle/internal/apperror"
	"github.com/meteoryte/banana-oracle/internal/model"
	"github.com/meteoryte/banana-oracle/internal/oracle"
	"github.com/meteoryte/banana-oracle/internal/repository"
)

// ErrTermsRequired gates the Oracle behind terms acceptance. Handlers
// detect it with errors.Is and add the termsRequired flag to the 403 body.
var ErrTermsRequired = apperror.Forbidden("you must accept the Terms and Conditions to use the Oracle")

// oracleSystemPrompt is the persona every completion runs under.
const oracleSystemPrompt = `You are the Banana Oracle, an ancient and wise entity with infinite knowledge about bananas and their mysterious invention. You speak with a mystical yet playful tone.

Your knowledge includes:
- The fictional history of how bananas were "invented" (not grown naturally)
- Banana varieties, cultivation, and nutrition facts
- Banana-related culture, recipes, and traditions
- Humorous banana facts and puns

Guidelines:
- Be entertaining and creative while providing valuable information
- Mix real banana facts with whimsical fictional elements
- Use banana-related metaphors and wordplay
- Keep responses concise but engaging (2-4 paragraphs max)
- If asked about non-banana topics, gently redirect to bananas
- Never break character as the mystical Banana Oracle`

// OracleService runs the gated question flow: authentication is the
// router's job, but terms acceptance and the daily budget are enforced
// here, before any upstream call.
type OracleService struct {
	client   *oracle.Client
	accounts repository.AccountRepository
	quota    *QuotaService
	logger   *slog.Logger
}

// NewOracleService creates an OracleService.
func NewOracleService(
	client *oracle.Client,
	accounts repository.AccountRepository,
	quota *QuotaService,
	logger *slog.Logger,
) *OracleService {
	return &OracleService{
		client:   client,
		accounts: accounts,
		quota:    quota,
		logger:   logger,
	}
}

// AskResult is one answered Oracle question.
type AskResult struct {
	Question         string `json:"question"`
	Answer           string `json:"answer"`
	QueriesRemaining int    `json:"queriesRemaining"`
	Model            string `json:"model"`
}

// StoryResult is one generated invention story.
type StoryResult struct {
	Story            string `json:"story"`
	Theme            string `json:"theme"`
	Era              string `json:"era"`
	Location         string `json:"location"`
	QueriesRemaining int    `json:"queriesRemaining"`
}

// Status reports Oracle availability and the caller's budget.
type Status struct {
	Available        bool      `json:"available"`
	QueriesRemaining int       `json:"queriesRemaining"`
	DailyLimit       int       `json:"dailyLimit"`
	ResetAt          time.Time `json:"resetAt"`
}

// gate loads the account and enforces terms acceptance and Oracle
// availability. Shared preamble of Ask and GenerateStory.
func (s *OracleService) gate(ctx context.Context, accountID string) (*model.Account, error) {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("service/oracle: fetching account %s: %w", accountID, err)
	}
	if !account.TermsAccepted {
		return nil, ErrTermsRequired
	}
	if !s.client.Configured() {
		return nil, apperror.Upstream("the Banana Oracle is currently offline: no completion API key configured")
	}
	return account, nil
}

// spend consumes one query before the upstream call, and returns a refund
// func the caller invokes when the upstream call fails. Spending first
// keeps the budget race-free; the refund keeps a flaky upstream from
// eating it.
func (s *OracleService) spend(ctx context.Context, account *model.Account) (remaining int, refund func(), err error) {
	remaining, err = s.quota.Consume(ctx, account)
	if err != nil {
		return remaining, nil, err
	}

	refund = func() {
		if rerr := s.accounts.ResetQuota(ctx, account.ID, remaining+1, account.QuotaResetAt); rerr != nil {
			s.logger.Warn("failed to refund oracle query",
				slog.String("accountID", account.ID),
				slog.String("error", rerr.Error()),
			)
		}
	}
	return remaining, refund, nil
}

// Ask puts one question to the Oracle.
func (s *OracleService) Ask(ctx context.Context, accountID, question string) (*AskResult, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, apperror.ValidationFailed("question", "please provide a question for the Oracle")
	}

	account, err := s.gate(ctx, accountID)
	if err != nil {
		return nil, err
	}

	remaining, refund, err := s.spend(ctx, account)
	if err != nil {
		return nil, err
	}

	answer, err := s.client.Complete(ctx, []oracle.Message{
		{Role: "system", Content: oracleSystemPrompt},
		{Role: "user", Content: question},
	}, 500, 0.8)
	if err != nil {
		refund()
		return nil, err
	}

	s.logger.Info("oracle question answered",
		slog.String("accountID", accountID),
		slog.Int("queriesRemaining", remaining),
	)

	return &AskResult{
		Question:         question,
		Answer:           answer,
		QueriesRemaining: remaining,
		Model:            oracle.Model,
	}, nil
}

// GenerateStory asks the Oracle for a fresh banana invention story. Empty
// parameters fall back to stock values.
func (s *OracleService) GenerateStory(ctx context.Context, accountID, theme, era, location string) (*StoryResult, error) {
	if theme == "" {
		theme = "mysterious discovery"
	}
	if era == "" {
		era = "ancient times"
	}
	if location == "" {
		location = "a tropical paradise"
	}

	account, err := s.gate(ctx, accountID)
	if err != nil {
		return nil, err
	}

	remaining, refund, err := s.spend(ctx, account)
	if err != nil {
		return nil, err
	}

	prompt := fmt.Sprintf(`Generate a short, creative story about the invention of bananas.
Theme: %s
Era: %s
Location: %s

The story should be 2-3 paragraphs, whimsical yet engaging, and explain how bananas came to be "invented" in this fictional world.`, theme, era, location)

	story, err := s.client.Complete(ctx, []oracle.Message{
		{Role: "system", Content: oracleSystemPrompt},
		{Role: "user", Content: prompt},
	}, 600, 0.9)
	if err != nil {
		refund()
		return nil, err
	}

	return &StoryResult{
		Story:            story,
		Theme:            theme,
		Era:              era,
		Location:         location,
		QueriesRemaining: remaining,
	}, nil
}

// GetStatus reports availability and the account's current budget. The
// lapsed-window reset runs here too, so a status poll after the window
// already shows the refreshed counter.
func (s *OracleService) GetStatus(ctx context.Context, accountID string) (*Status, error) {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("service/oracle: fetching account %s: %w", accountID, err)
	}
	if err := s.quota.CheckAndReset(ctx, account); err != nil {
		return nil, err
	}

	return &Status{
		Available:        s.client.Configured(),
		QueriesRemaining: account.QueriesRemaining,
		DailyLimit:       model.DailyOracleLimit,
		ResetAt:          account.QuotaResetAt,
	}, nil
}
