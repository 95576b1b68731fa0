package digest

import (
	"context"
	"log/slog"

	"signalist/internal/model"
	"signalist/pkg/llm"
	"signalist/pkg/mailer"
)

// WelcomeMailer sends the one-time welcome email with a model-generated
// personalized intro. Intro generation is best-effort; only the send itself
// can fail the operation.
type WelcomeMailer struct {
	client   llm.DigestClient
	notifier Notifier
}

func NewWelcomeMailer(client llm.DigestClient, notifier Notifier) *WelcomeMailer {
	return &WelcomeMailer{client: client, notifier: notifier}
}

func (w *WelcomeMailer) Send(ctx context.Context, user model.User) error {
	intro, err := w.client.GenerateWelcomeIntro(ctx, llm.UserProfile{
		Name:              user.Name,
		Country:           user.Country,
		InvestmentGoals:   user.InvestmentGoals,
		RiskTolerance:     user.RiskTolerance,
		PreferredIndustry: user.PreferredIndustry,
	})
	if err != nil {
		slog.Warn("welcome intro generation failed, using fallback", "user_id", user.ID, "error", err)
		intro = llm.WelcomeIntroFallback
	}

	html := mailer.RenderWelcome(user.Name, intro)
	return w.notifier.Deliver(ctx, user.Email, "Welcome to Signalist", intro, html)
}
