package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	goredis "github.com/redis/go-redis/v9"

	"claimflow/internal/admin"
	"claimflow/internal/audit"
	claimservice "claimflow/internal/claim/service"
	claimstore "claimflow/internal/claim/store"
	eligibilityadapters "claimflow/internal/eligibility/adapters"
	eligibilitymetrics "claimflow/internal/eligibility/metrics"
	eligibilityservice "claimflow/internal/eligibility/service"
	"claimflow/internal/entitlement"
	"claimflow/internal/message/dispatcher"
	messagemetrics "claimflow/internal/message/metrics"
	"claimflow/internal/message/processor"
	messagestore "claimflow/internal/message/store"
	"claimflow/internal/notification"
	notificationadapters "claimflow/internal/notification/adapters"
	paymentadapters "claimflow/internal/payment/adapters"
	paymentmetrics "claimflow/internal/payment/metrics"
	paymentservice "claimflow/internal/payment/service"
	cyclestore "claimflow/internal/payment/store/cycle"
	paymentstore "claimflow/internal/payment/store/payment"
	"claimflow/internal/platform/config"
	platformmetrics "claimflow/internal/platform/metrics"
	"claimflow/internal/platform/postgres"
	platformredis "claimflow/internal/platform/redis"
	"claimflow/internal/reporting"
	reportingadapters "claimflow/internal/reporting/adapters"
	"claimflow/internal/scheduler"
	"claimflow/internal/scheduler/lock"
	schedulermetrics "claimflow/internal/scheduler/metrics"
	"claimflow/pkg/platform/tx"
)

type application struct {
	admin     *admin.Handler
	scheduler *scheduler.Scheduler
	closers   []func()
}

func (a *application) onClose(fn func()) {
	a.closers = append(a.closers, fn)
}

// close releases resources in reverse order of acquisition.
func (a *application) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

type stores struct {
	claims   *claimstore.PostgresStore
	cycles   *cyclestore.PostgresStore
	payments *paymentstore.PostgresStore
	messages *messagestore.PostgresStore
}

type clients struct {
	eligibility *eligibilityadapters.EligibilityClient
	card        *paymentadapters.CardClient
	notify      *notificationadapters.NotifyClient
}

func build(ctx context.Context, cfg config.Config, log *slog.Logger) (app *application, err error) {
	app = &application{}
	defer func() {
		if err != nil {
			app.close()
		}
	}()

	db, err := postgres.Open(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	app.onClose(func() { _ = db.Close() })
	if err := postgres.Migrate(ctx, db); err != nil {
		return nil, err
	}

	rc, err := platformredis.New(ctx, cfg.Redis)
	if err != nil {
		return nil, err
	}
	app.onClose(func() { _ = rc.Close() })

	s := stores{
		claims:   claimstore.NewPostgres(db),
		cycles:   cyclestore.NewPostgres(db),
		payments: paymentstore.NewPostgres(db),
		messages: messagestore.NewPostgres(db),
	}
	c := clients{
		eligibility: eligibilityadapters.NewEligibilityClient(cfg.Clients.EligibilityBaseURL, cfg.Clients.Timeout),
		card:        paymentadapters.NewCardClient(cfg.Clients.CardBaseURL, cfg.Clients.Timeout),
		notify: notificationadapters.NewNotifyClient(cfg.Notify.BaseURL,
			notificationadapters.NewTokenSigner(cfg.Notify.ServiceID, cfg.Notify.SecretKey), cfg.Clients.Timeout),
	}

	publisher, health, err := analyticsPublisher(ctx, cfg.Kafka, log)
	if err != nil {
		return nil, err
	}
	if closer, ok := publisher.(interface{ Close() }); ok {
		app.onClose(closer.Close)
	}

	var cache *goredis.Client
	if rc != nil {
		cache = rc.Client
	}
	postcodes := reporting.NewCachedPostcodeLookup(
		reportingadapters.NewPostcodeClient(cfg.Clients.PostcodeBaseURL, cfg.Clients.Timeout),
		cache, cfg.Clients.PostcodeCacheTTL, reporting.WithPostcodeLogger(log))
	reporter := reporting.NewReporter(postcodes, publisher)

	calculator := entitlement.NewCycleCalculator(entitlementConfig(cfg.Entitlement))
	runner := tx.NewPostgresRunner(db, cfg.Database.TxTimeout)
	auditor := audit.NewPublisher(audit.NewPostgresStore(db), log)

	eligibilityService, err := eligibilityservice.New(c.eligibility, s.claims, calculator,
		eligibilityservice.WithLogger(log),
		eligibilityservice.WithMetrics(eligibilitymetrics.New()),
	)
	if err != nil {
		return nil, fmt.Errorf("build eligibility service: %w", err)
	}

	paymentService, err := paymentservice.New(s.cycles, s.payments, s.claims, c.card, s.messages, calculator, auditor,
		paymentservice.WithLogger(log),
		paymentservice.WithMetrics(paymentmetrics.New()),
		paymentservice.WithTxRunner(runner),
		paymentservice.WithLimits(cfg.Payment.MaxCardBalanceInPence, cfg.Payment.PendingExpiryCycles),
		paymentservice.WithPendingExpiryCycleDuration(cfg.Payment.PendingExpiryCycleDurationDays),
	)
	if err != nil {
		return nil, fmt.Errorf("build payment service: %w", err)
	}

	claimService, err := claimservice.New(s.claims, eligibilityService, s.messages, auditor, calculator,
		claimservice.WithLogger(log),
		claimservice.WithMetrics(platformmetrics.New()),
		claimservice.WithTxRunner(runner),
		claimservice.WithPendingExpiryCycles(cfg.Payment.PendingExpiryCycles),
	)
	if err != nil {
		return nil, fmt.Errorf("build claim service: %w", err)
	}

	processors, err := buildProcessors(cfg, log, s, c, eligibilityService, paymentService, reporter, auditor, calculator)
	if err != nil {
		return nil, err
	}
	d, err := dispatcher.New(s.messages, runner, processors,
		dispatcher.WithLogger(log),
		dispatcher.WithMetrics(messagemetrics.New()),
	)
	if err != nil {
		return nil, fmt.Errorf("build dispatcher: %w", err)
	}

	locks, err := lockProvider(ctx, cfg, rc, app)
	if err != nil {
		return nil, err
	}
	app.scheduler, err = scheduler.New(locks,
		scheduler.WithLogger(log),
		scheduler.WithMetrics(schedulermetrics.New()),
		scheduler.WithLockBounds(cfg.Scheduler.LockAtLeastFor, cfg.Scheduler.LockAtMostFor),
	)
	if err != nil {
		return nil, fmt.Errorf("build scheduler: %w", err)
	}
	for _, job := range []scheduler.Job{
		scheduler.ProcessMessagesJob(cfg.Scheduler.MessageSchedule, d),
		scheduler.CreatePaymentCyclesJob(cfg.Scheduler.PaymentCycleSchedule, paymentService),
		scheduler.CardCancellationJob(cfg.Scheduler.CardCancellationSchedule, claimService),
	} {
		if err := app.scheduler.Register(job); err != nil {
			return nil, err
		}
	}

	checks := map[string]admin.Check{
		"postgres": db.PingContext,
		"redis":    rc.Health,
	}
	if health != nil {
		checks["kafka"] = health
	}
	app.admin = admin.New(log, s.messages, checks)
	return app, nil
}

func buildProcessors(
	cfg config.Config,
	log *slog.Logger,
	s stores,
	c clients,
	eligibilityService processor.EligibilityService,
	payments processor.PaymentService,
	reporter processor.Reporter,
	auditor *audit.Publisher,
	calculator *entitlement.CycleCalculator,
) ([]dispatcher.Processor, error) {
	var out []dispatcher.Processor
	add := func(p dispatcher.Processor, err error) error {
		if err != nil {
			return err
		}
		out = append(out, p)
		return nil
	}

	errs := []error{
		add(processor.NewRequestNewCard(s.claims, c.card, s.messages, log)),
		add(processor.NewCompleteNewCard(s.claims, payments, s.messages, auditor)),
		add(processor.NewMakeFirstPayment(s.claims, s.cycles, payments, s.messages)),
		add(processor.NewDetermineEntitlement(s.claims, s.cycles, eligibilityService, payments, s.messages, calculator.Pregnancy())),
		add(processor.NewMakePayment(s.claims, s.cycles, payments, s.messages, calculator)),
		add(processor.NewSendEmail(c.notify, notification.NewTemplates(cfg.Notify.TemplateIDs), cfg.Notify.ReplyToID, log)),
		add(processor.NewReportClaim(s.claims, reporter)),
	}
	for _, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("build processors: %w", err)
		}
	}
	return out, nil
}

// analyticsPublisher publishes to Kafka when brokers are configured and logs
// reports otherwise. The returned check is nil without Kafka.
func analyticsPublisher(ctx context.Context, cfg config.KafkaConfig, log *slog.Logger) (reporting.Publisher, admin.Check, error) {
	if len(cfg.Brokers) == 0 {
		log.Warn("no kafka brokers configured, claim reports will be logged only")
		return reporting.NewLogPublisher(log), nil, nil
	}
	p, err := reporting.NewKafkaPublisher(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return p, p.Health, nil
}

func lockProvider(ctx context.Context, cfg config.Config, rc *platformredis.Client, app *application) (lock.Provider, error) {
	owner := cfg.Scheduler.NodeID
	switch cfg.Scheduler.LockProvider {
	case "redis":
		if rc == nil {
			return nil, errors.New("redis lock provider needs redis to be configured")
		}
		return lock.NewRedis(rc.Client, owner), nil
	case "memory":
		return lock.NewInMemory(owner), nil
	default:
		pool, err := postgres.OpenPool(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		app.onClose(pool.Close)
		return lock.NewPostgres(pool, owner), nil
	}
}

func entitlementConfig(c config.EntitlementConfig) entitlement.Config {
	return entitlement.Config{
		VouchersPerChildUnderOne:           c.VouchersPerChildUnderOne,
		VouchersPerChildBetweenOneAndFour:  c.VouchersPerChildBetweenOneAndFour,
		VouchersPerPregnancy:               c.VouchersPerPregnancy,
		VoucherValueInPence:                c.VoucherValueInPence,
		EntitlementCalculationDurationDays: c.EntitlementCalculationDurationDays,
		NumberOfCalculationPeriods:         c.NumberOfCalculationPeriods,
		PregnancyGracePeriodWeeks:          c.PregnancyGracePeriodWeeks,
		PregnancyBirthMatchWindowWeeks:     c.PregnancyBirthMatchWindowWeeks,
		PaymentCycleDurationDays:           c.PaymentCycleDurationDays,
	}
}
