// Package app собирает сервисы по конфигу: хранилище, кэш, бухгалтерия, уведомления, роутер.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Spok95/graindesk/internal/accounting"
	"github.com/Spok95/graindesk/internal/api"
	"github.com/Spok95/graindesk/internal/authgate"
	"github.com/Spok95/graindesk/internal/config"
	"github.com/Spok95/graindesk/internal/domain/bids"
	"github.com/Spok95/graindesk/internal/domain/buyers"
	"github.com/Spok95/graindesk/internal/domain/contracts"
	"github.com/Spok95/graindesk/internal/domain/notes"
	"github.com/Spok95/graindesk/internal/domain/prices"
	"github.com/Spok95/graindesk/internal/domain/sellers"
	"github.com/Spok95/graindesk/internal/domain/users"
	"github.com/Spok95/graindesk/internal/infra/db"
	"github.com/Spok95/graindesk/internal/infra/notify"
	"github.com/Spok95/graindesk/internal/remote"
)

type App struct {
	Router http.Handler
	Deps   api.Deps
	Users  users.Repository

	pool *pgxpool.Pool
}

type repos struct {
	buyers    buyers.Repository
	sellers   sellers.Repository
	contracts contracts.Repository
	prices    prices.Repository
	notes     notes.Repository
	users     users.Repository
	creds     accounting.Backend
}

// New подключает хранилище по storage.driver. Postgres (если задан DSN) хранит
// пользователей, токены, цены и заметки при любом драйвере справочников.
func New(ctx context.Context, cfg config.Config, log *slog.Logger) (*App, error) {
	a := &App{}
	if cfg.Postgres.DSN != "" {
		pool, err := db.Connect(ctx, cfg.Postgres.DSN)
		if err != nil {
			return nil, fmt.Errorf("db connect: %w", err)
		}
		a.pool = pool
	}

	r, err := a.repos(cfg)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Users = r.users
	if err := bootstrapAdmin(ctx, cfg, r.users, log); err != nil {
		a.Close()
		return nil, err
	}

	opts := cfg.FetchOptions()
	buyerSvc := buyers.NewService(r.buyers, opts, log)
	sellerSvc := sellers.NewService(r.sellers, opts, log)
	contractSvc := contracts.NewService(r.contracts, parties(buyerSvc, sellerSvc), opts, log)

	book, err := bids.Load()
	if err != nil {
		a.Close()
		return nil, err
	}
	sessions, err := authgate.NewSessions(r.users, cfg.Session.Secret, cfg.Session.TTL)
	if err != nil {
		a.Close()
		return nil, err
	}

	n := notifier(cfg, log)
	accCfg := cfg.Accounting.WithDefaults()
	store := accounting.NewStore(r.creds, accCfg.OAuth())

	a.Deps = api.Deps{
		Buyers:        buyerSvc,
		Sellers:       sellerSvc,
		Contracts:     contractSvc,
		Prices:        prices.NewService(r.prices, opts, log),
		Notes:         notes.NewService(r.notes, opts, log),
		Bids:          book,
		Sessions:      sessions,
		SecureCookies: cfg.HTTP.SecureCookies,
		Handoff:       accounting.NewHandoff(accCfg, store, n, nil, log),
		Invoicer:      accounting.NewInvoicer(accCfg, store, contractSvc, n, nil, log),
		Credentials:   store,
		Log:           log,
	}
	a.Router = api.NewRouter(a.Deps)
	log.Info("app wired", "storage", cfg.Storage.Driver, "postgres", a.pool != nil, "xero", accCfg.Configured())
	return a, nil
}

func (a *App) repos(cfg config.Config) (repos, error) {
	var r repos
	switch cfg.Storage.Driver {
	case config.StoragePostgres:
		if a.pool == nil {
			return r, fmt.Errorf("postgres storage needs postgres.dsn")
		}
		r.buyers = buyers.NewRepo(a.pool)
		r.sellers = sellers.NewRepo(a.pool)
		r.contracts = contracts.NewRepo(a.pool)
	case config.StorageRemote:
		c, err := remote.New(cfg.Storage.RemoteURL, cfg.Storage.RemoteToken, &http.Client{Timeout: cfg.Storage.Timeout})
		if err != nil {
			return r, err
		}
		r.buyers = buyers.NewRemote(c)
		r.sellers = sellers.NewRemote(c)
		r.contracts = contracts.NewRemote(c)
	case config.StorageMemory:
		r.buyers = buyers.NewMemory()
		sm, cm := sellers.NewMemory(), contracts.NewMemory()
		sm.InUse = cm.SellersInUse
		r.sellers, r.contracts = sm, cm
	default:
		return r, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}

	if a.pool != nil {
		r.prices = prices.NewRepo(a.pool)
		r.notes = notes.NewRepo(a.pool)
		r.users = users.NewRepo(a.pool)
		r.creds = accounting.NewPgBackend(a.pool)
		return r, nil
	}
	ps, err := prices.Fixtures()
	if err != nil {
		return r, err
	}
	ns, err := notes.Fixtures()
	if err != nil {
		return r, err
	}
	r.prices = prices.NewMemory(ps...)
	r.notes = notes.NewMemory(ns...)
	r.users = users.NewMemory()
	r.creds = accounting.NewMemoryBackend()
	return r, nil
}

// parties — имена сторон контракта берутся из справочников.
func parties(b *buyers.Service, s *sellers.Service) contracts.Parties {
	return contracts.Parties{
		Seller: func(ctx context.Context, id string) (contracts.PartyRef, error) {
			v, err := s.Get(ctx, id)
			if err != nil {
				return contracts.PartyRef{}, err
			}
			return contracts.PartyRef{ID: v.ID, Name: v.LegalName, NGR: v.MainNGR}, nil
		},
		Buyer: func(ctx context.Context, id string) (contracts.PartyRef, error) {
			v, err := b.Get(ctx, id)
			if err != nil {
				return contracts.PartyRef{}, err
			}
			return contracts.PartyRef{ID: v.ID, Name: v.LegalName}, nil
		},
	}
}

func notifier(cfg config.Config, log *slog.Logger) notify.Notifier {
	if cfg.Telegram.Token == "" {
		return notify.Nop{}
	}
	tg, err := notify.NewTelegram(cfg.Telegram.Token, cfg.Telegram.AdminChatID, log)
	if err != nil {
		log.Warn("telegram disabled", "err", err)
		return notify.Nop{}
	}
	return tg
}

func bootstrapAdmin(ctx context.Context, cfg config.Config, repo users.Repository, log *slog.Logger) error {
	if cfg.Session.AdminUser == "" || cfg.Session.AdminPassword == "" {
		return nil
	}
	hash, err := users.HashPassword(cfg.Session.AdminPassword)
	if err != nil {
		return fmt.Errorf("admin user: %w", err)
	}
	u, err := repo.Upsert(ctx, cfg.Session.AdminUser, hash, users.RoleAdmin)
	if err != nil {
		return fmt.Errorf("admin user: %w", err)
	}
	log.Info("admin user ensured", "username", u.Username)
	return nil
}

// Close останавливает фоновые обновления кэшей и закрывает пул.
func (a *App) Close() {
	if a.Router != nil {
		a.Deps.Buyers.Close()
		a.Deps.Sellers.Close()
		a.Deps.Contracts.Close()
		a.Deps.Prices.Close()
		a.Deps.Notes.Close()
	}
	if a.pool != nil {
		a.pool.Close()
	}
}
