package service

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"outreach-service/internal/dispatch"
	"outreach-service/internal/domain"
	"outreach-service/internal/entitlement"
	"outreach-service/internal/payment"
	"outreach-service/internal/template"
)

func failingFor(bad string) TransportFactory {
	return func(senderEmail, _ string) dispatch.Transport {
		return dispatch.TransportFunc(func(_ context.Context, msg domain.Message) (string, error) {
			if msg.Recipient == bad {
				return "", errors.New("550 mailbox unavailable")
			}
			return "<" + msg.Recipient + "@" + senderEmail + ">", nil
		})
	}
}

func TestScrapeEmails_CountsSuccessfulSearches(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	users := newMemoryUsers(domain.User{Email: "u@x.com"})
	fetcher := &stubFetcher{pages: map[string]string{
		"https://school.edu/staff": "principal@school.edu, hr@school.edu, principal@school.edu",
	}}
	svc := NewCampaignService(fetcher, entitlement.NewStore(users), dispatch.NewEngine(dispatch.Options{}), failingFor(""))
	sess := &domain.Session{Token: "t", Email: "u@x.com"}

	for i := 0; i < domain.FreeSearchLimit; i++ {
		emails, err := svc.ScrapeEmails(ctx, sess, "https://school.edu/staff")
		if err != nil {
			t.Fatalf("scrape %d failed: %v", i, err)
		}
		if !reflect.DeepEqual(emails, []string{"principal@school.edu", "hr@school.edu"}) {
			t.Errorf("unexpected emails: %v", emails)
		}
	}

	if _, err := svc.ScrapeEmails(ctx, sess, "https://school.edu/staff"); !errors.Is(err, domain.ErrQuotaExceeded) {
		t.Errorf("expected ErrQuotaExceeded, got %v", err)
	}
	if fetcher.calls != domain.FreeSearchLimit {
		t.Errorf("fetcher should not run once quota is exhausted: %d calls", fetcher.calls)
	}
}

func TestScrapeEmails_Errors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	users := newMemoryUsers(domain.User{Email: "u@x.com"})
	fetcher := &stubFetcher{err: domain.ErrCollaboratorFailure}
	svc := NewCampaignService(fetcher, entitlement.NewStore(users), dispatch.NewEngine(dispatch.Options{}), failingFor(""))
	sess := &domain.Session{Token: "t", Email: "u@x.com"}

	if _, err := svc.ScrapeEmails(ctx, sess, ""); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected ErrValidation for empty url, got %v", err)
	}
	if _, err := svc.ScrapeEmails(ctx, nil, "https://a.com"); !errors.Is(err, domain.ErrNotAuthenticated) {
		t.Errorf("expected ErrNotAuthenticated, got %v", err)
	}
	if _, err := svc.ScrapeEmails(ctx, sess, "https://a.com"); !errors.Is(err, domain.ErrCollaboratorFailure) {
		t.Errorf("expected ErrCollaboratorFailure, got %v", err)
	}

	u, _ := users.GetUser(ctx, "u@x.com")
	if u.SearchesUsed != 0 {
		t.Errorf("failed scrapes must not be counted: %d", u.SearchesUsed)
	}
}

func TestSendCampaign(t *testing.T) {
	t.Parallel()

	svc := NewCampaignService(&stubFetcher{}, entitlement.NewStore(newMemoryUsers()), dispatch.NewEngine(dispatch.Options{Concurrency: 2}), failingFor("b@x.com"))

	outcome, err := svc.SendCampaign(context.Background(), SendCampaignInput{
		Recipients:     []string{"a@x.com", " b@x.com ", "", "c@x.com"},
		Subject:        "Proposal for a pilot",
		Body:           "Dear team",
		SenderEmail:    "me@x.com",
		SenderPassword: "app-pass",
	})
	if err != nil {
		t.Fatalf("SendCampaign failed: %v", err)
	}
	if outcome.TotalSent != 2 || outcome.TotalFailed != 1 || len(outcome.Results) != 3 {
		t.Errorf("unexpected outcome: %+v", outcome)
	}
	if outcome.Results[1].Recipient != "b@x.com" || outcome.Results[1].Status != domain.DispatchFailed {
		t.Errorf("unexpected result order: %+v", outcome.Results)
	}
}

func TestSendCampaign_Validation(t *testing.T) {
	t.Parallel()

	svc := NewCampaignService(&stubFetcher{}, entitlement.NewStore(newMemoryUsers()), dispatch.NewEngine(dispatch.Options{}), failingFor(""))
	valid := SendCampaignInput{
		Recipients:     []string{"a@x.com"},
		Subject:        "s",
		Body:           "b",
		SenderEmail:    "me@x.com",
		SenderPassword: "p",
	}

	mutations := map[string]func(*SendCampaignInput){
		"no recipients":   func(in *SendCampaignInput) { in.Recipients = []string{" ", ""} },
		"no subject":      func(in *SendCampaignInput) { in.Subject = "" },
		"no body":         func(in *SendCampaignInput) { in.Body = "" },
		"no sender":       func(in *SendCampaignInput) { in.SenderEmail = "" },
		"no app password": func(in *SendCampaignInput) { in.SenderPassword = "" },
	}
	for name, mutate := range mutations {
		in := valid
		mutate(&in)
		if _, err := svc.SendCampaign(context.Background(), in); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("%s: expected ErrValidation, got %v", name, err)
		}
	}
}

func TestGenerateEmail(t *testing.T) {
	t.Parallel()

	svc := NewCampaignService(&stubFetcher{}, entitlement.NewStore(newMemoryUsers()), dispatch.NewEngine(dispatch.Options{}), failingFor(""))

	got, err := svc.GenerateEmail(" hr ", template.Fields{RecipientName: "Alice", Purpose: "a Senior Engineer role"})
	if err != nil {
		t.Fatalf("GenerateEmail failed: %v", err)
	}
	if got.Subject != "Application for a Senior Engineer role" {
		t.Errorf("unexpected subject %q", got.Subject)
	}
}

func TestPaymentApprovalUnlocksPremium(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		approve     bool
		wantPremium bool
	}{
		{"approve", true, true},
		{"reject", false, false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctx := context.Background()
			users := newMemoryUsers(domain.User{Email: "u@x.com", SearchesUsed: domain.FreeSearchLimit})
			store := entitlement.NewStore(users)
			workflow := payment.NewWorkflow(&memoryPayments{}, store, nil)
			sess := &domain.Session{Token: "t", Email: "u@x.com"}

			p, err := workflow.Submit(ctx, "u@x.com", "TX-9")
			if err != nil {
				t.Fatalf("Submit failed: %v", err)
			}

			actor := domain.Actor{Session: sess, Approver: true}
			if tt.approve {
				_, err = workflow.Approve(ctx, actor, p.ID)
			} else {
				_, err = workflow.Reject(ctx, actor, p.ID)
			}
			if err != nil {
				t.Fatalf("decision failed: %v", err)
			}

			u, err := store.Status(ctx, sess)
			if err != nil {
				t.Fatalf("Status failed: %v", err)
			}
			if u.Premium != tt.wantPremium {
				t.Errorf("premium = %v, want %v", u.Premium, tt.wantPremium)
			}

			err = store.CheckQuota(ctx, sess)
			if tt.wantPremium && err != nil {
				t.Errorf("premium user blocked: %v", err)
			}
			if !tt.wantPremium && !errors.Is(err, domain.ErrQuotaExceeded) {
				t.Errorf("expected quota exceeded after rejection, got %v", err)
			}
		})
	}
}
