package service

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/vietanh2810/event-ticketing-api/internal/config"
	"github.com/vietanh2810/event-ticketing-api/internal/domain"
	"github.com/vietanh2810/event-ticketing-api/internal/pkg/assetstore"
	"github.com/vietanh2810/event-ticketing-api/internal/pkg/qrcode"
	"github.com/vietanh2810/event-ticketing-api/internal/repository"
)

var ErrTokenConflict = repository.ErrTicketTokenExists

type TicketRepository interface {
	Create(ctx context.Context, ticket domain.Ticket) (domain.Ticket, error)
}

type TokenMinter interface {
	Mint() (string, error)
}

type ArtifactEncoder interface {
	Encode(payload string) ([]byte, error)
}

type ArtifactStore interface {
	EnsureDir(dir string) error
	Put(dir, filename string, data []byte) (string, error)
	Delete(publicPath string) error
}

type TicketProvisioner struct {
	tickets  TicketRepository
	minter   TokenMinter
	encoder  ArtifactEncoder
	store    ArtifactStore
	dir      string
	workers  int
	attempts int
	conf     *config.ProvisioningConfig
}

func NewTicketProvisioner(
	tickets TicketRepository,
	minter TokenMinter,
	encoder ArtifactEncoder,
	store ArtifactStore,
	conf *config.AppConfig,
) *TicketProvisioner {
	workers := conf.Provisioning.Workers
	if workers < 1 {
		workers = 1
	}
	attempts := conf.Provisioning.TokenAttempts
	if attempts < 1 {
		attempts = 1
	}

	return &TicketProvisioner{
		tickets:  tickets,
		minter:   minter,
		encoder:  encoder,
		store:    store,
		dir:      conf.Assets.TicketsDir,
		workers:  workers,
		attempts: attempts,
		conf:     conf.Provisioning,
	}
}

// Provision mints quota tickets for eventID. A failing ticket is recorded in
// the report and never stops the others; the only fatal error is being
// unable to create the artifact directory.
func (p *TicketProvisioner) Provision(ctx context.Context, eventID uint, quota int, baseURL string) (domain.ProvisioningReport, error) {
	if quota < 0 {
		return domain.ProvisioningReport{}, fmt.Errorf("%w: quota must not be negative", ErrInvalidField)
	}

	if err := p.store.EnsureDir(p.dir); err != nil {
		return domain.ProvisioningReport{}, fmt.Errorf("p.store.EnsureDir -> %w", err)
	}

	if p.conf.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.conf.Timeout)
		defer cancel()
	}

	outcomes := make([]domain.TicketOutcome, quota)

	var g errgroup.Group
	g.SetLimit(p.workers)
	for i := range outcomes {
		i := i
		g.Go(func() error {
			outcomes[i] = p.provisionOne(ctx, eventID, i, baseURL)
			return nil
		})
	}
	_ = g.Wait()

	report := domain.Summarize(eventID, outcomes)
	if report.Failed > 0 {
		zap.L().Warn("ticket provisioning incomplete",
			zap.Uint("event_id", eventID),
			zap.Int("requested", report.Requested),
			zap.Int("succeeded", report.Succeeded),
			zap.Int("failed", report.Failed),
		)
	}

	return report, nil
}

func (p *TicketProvisioner) provisionOne(ctx context.Context, eventID uint, index int, baseURL string) domain.TicketOutcome {
	outcome := domain.TicketOutcome{Index: index}

	fail := func(stage domain.TicketStage, err error) domain.TicketOutcome {
		zap.L().Warn("failed to provision ticket",
			zap.Uint("event_id", eventID),
			zap.Int("ticket_index", index),
			zap.String("stage", string(stage)),
			zap.Error(err),
		)
		outcome.Stage = stage
		outcome.Err = err
		return outcome
	}

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return fail(domain.StageCancelled, err)
		}

		token, err := p.minter.Mint()
		if err != nil {
			return fail(domain.StageMint, fmt.Errorf("p.minter.Mint -> %w", err))
		}

		png, err := p.encoder.Encode(qrcode.RegistrationURL(baseURL, token))
		if err != nil {
			return fail(domain.StageEncode, fmt.Errorf("p.encoder.Encode -> %w", err))
		}

		artifactPath, err := p.store.Put(p.dir, assetstore.ArtifactFilename(token), png)
		if err != nil {
			// An existing artifact belongs to a ticket that already holds this token.
			if errors.Is(err, fs.ErrExist) && attempt < p.attempts {
				continue
			}
			return fail(domain.StageStore, fmt.Errorf("p.store.Put -> %w", err))
		}

		ticket, err := p.tickets.Create(ctx, domain.Ticket{
			EventID:      eventID,
			Token:        token,
			ArtifactPath: artifactPath,
			IsVerified:   false,
		})
		if err != nil {
			if rmErr := p.store.Delete(artifactPath); rmErr != nil {
				zap.L().Warn("failed to delete orphaned ticket artifact",
					zap.Uint("event_id", eventID),
					zap.String("path", artifactPath),
					zap.Error(rmErr),
				)
			}
			if errors.Is(err, ErrTokenConflict) && attempt < p.attempts {
				continue
			}
			return fail(domain.StagePersist, fmt.Errorf("p.tickets.Create -> %w", err))
		}

		outcome.Ticket = &ticket
		return outcome
	}
}
