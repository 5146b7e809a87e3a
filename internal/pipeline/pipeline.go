// Package pipeline implements the email read path: translate the request
// into a provider query, fetch and normalize the messages, classify each
// one and summarize the set.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jayan110105/neura/internal/content"
	"github.com/jayan110105/neura/internal/domain"
	"github.com/jayan110105/neura/internal/llm"
	"github.com/jayan110105/neura/internal/metrics"
	"github.com/jayan110105/neura/internal/provider"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/sync/errgroup"
)

// NoEmails is the summary returned when nothing matched the query.
const NoEmails = "No emails found."

// Cache stores classifications by key. Lookups that miss return false.
type Cache interface {
	GetClassification(ctx context.Context, key string) (domain.Classification, bool, error)
	SetClassification(ctx context.Context, key string, c domain.Classification) error
}

type Options struct {
	// Concurrency bounds parallel classification calls. 1 classifies
	// serially; values below 1 mean 1.
	Concurrency int
	Cache       Cache
	Logger      *zap.Logger
	// DefaultMaxResults is the count used when a request names none.
	// Values outside [1,50] fall back to 10.
	DefaultMaxResults int
}

type Pipeline struct {
	mail        provider.MailClient
	translator  *Translator
	classifier  *Classifier
	summarizer  *Summarizer
	cache       Cache
	concurrency int
	log         *zap.Logger
}

func New(mail provider.MailClient, model llm.Model, opts Options) *Pipeline {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	translator := NewTranslator(model)
	if opts.DefaultMaxResults >= domain.MinQueryResults && opts.DefaultMaxResults <= domain.MaxQueryResults {
		translator.defaultCount = opts.DefaultMaxResults
	}
	return &Pipeline{
		mail:        mail,
		translator:  translator,
		classifier:  NewClassifier(model),
		summarizer:  NewSummarizer(model),
		cache:       opts.Cache,
		concurrency: opts.Concurrency,
		log:         opts.Logger,
	}
}

// Result is everything one ReadEmail call produced.
type Result struct {
	Query   domain.QuerySpec         `json:"query"`
	Emails  []domain.NormalizedEmail `json:"emails"`
	Summary string                   `json:"summary"`
}

// ReadEmail runs the full read path for one user. An empty mailbox is not
// an error: the summary is NoEmails and the summarizer is skipped.
func (p *Pipeline) ReadEmail(ctx context.Context, userID string, token *oauth2.Token, request string) (*Result, error) {
	spec, err := p.translator.Translate(ctx, request)
	if err != nil {
		return nil, err
	}
	p.log.Debug("translated mail request",
		zap.String("request", request),
		zap.String("q", spec.Q),
		zap.Int("max_results", spec.MaxResults))

	start := time.Now()
	envelopes, err := p.mail.ListMessages(ctx, token, provider.ListOptions{
		Query:      spec.Q,
		MaxResults: spec.MaxResults,
	})
	if errors.Is(err, domain.ErrNoMessages) {
		metrics.ObserveMailFetch(start, nil)
		return &Result{Query: spec, Emails: []domain.NormalizedEmail{}, Summary: NoEmails}, nil
	}
	metrics.ObserveMailFetch(start, err)
	if err != nil {
		return nil, err
	}

	emails := make([]domain.NormalizedEmail, len(envelopes))
	for i := range envelopes {
		emails[i] = content.Normalize(&envelopes[i])
	}

	if err := p.classifyAll(ctx, userID, emails); err != nil {
		return nil, err
	}

	summary, err := p.summarizer.Summarize(ctx, request, emails)
	if err != nil {
		return nil, err
	}
	return &Result{Query: spec, Emails: emails, Summary: summary}, nil
}

// classifyAll fills in each email's classification in place. Results keep
// input order regardless of completion order.
func (p *Pipeline) classifyAll(ctx context.Context, userID string, emails []domain.NormalizedEmail) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)

	for i := range emails {
		g.Go(func() error {
			c, err := p.classify(gctx, userID, emails[i])
			if err != nil {
				return err
			}
			emails[i].Classification = c
			metrics.RecordLabel(string(c.Label))
			return nil
		})
	}
	return g.Wait()
}

func (p *Pipeline) classify(ctx context.Context, userID string, email domain.NormalizedEmail) (domain.Classification, error) {
	if p.cache == nil || email.ID == "" {
		return p.classifier.Classify(ctx, email)
	}

	key := cacheKey(userID, email.ID)
	c, ok, err := p.cache.GetClassification(ctx, key)
	switch {
	case err != nil:
		metrics.RecordCache("error")
		p.log.Warn("classification cache lookup failed", zap.String("key", key), zap.Error(err))
	case ok:
		metrics.RecordCache("hit")
		return c, nil
	default:
		metrics.RecordCache("miss")
	}

	c, err = p.classifier.Classify(ctx, email)
	if err != nil {
		return c, err
	}
	if err := p.cache.SetClassification(ctx, key, c); err != nil {
		p.log.Warn("classification cache store failed", zap.String("key", key), zap.Error(err))
	}
	return c, nil
}

func cacheKey(userID, messageID string) string {
	return fmt.Sprintf("%s:%s", userID, messageID)
}
