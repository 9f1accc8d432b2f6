package bot

import (
	"context"
	"sync"
	"time"

	api "github.com/OvyFlash/telegram-bot-api"
	log "github.com/sirupsen/logrus"

	"github.com/modguard/modguard/internal/infra"
)

const reconnectDelay = 5 * time.Second

// UpdatePump drives the long-poll update stream through the processor. A
// failed stream is reconnected after a delay; a single update's failure is
// logged and never stops the loop.
type UpdatePump struct {
	bot       *api.BotAPI
	processor *UpdateProcessor

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

func NewUpdatePump(bot *api.BotAPI, processor *UpdateProcessor) *UpdatePump {
	return &UpdatePump{bot: bot, processor: processor}
}

func (p *UpdatePump) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return nil
	}

	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.started = true

	p.wg.Add(1)
	go infra.GoRecoverable(-1, "process_updates", func() {
		defer p.wg.Done()
		p.run(runCtx)
	})
	return nil
}

func (p *UpdatePump) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return nil
	}
	p.started = false
	cancel := p.cancel
	p.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	p.bot.StopReceivingUpdates()

	done := make(chan struct{})
	go func() {
		defer close(done)
		p.wg.Wait()
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

func (p *UpdatePump) run(ctx context.Context) {
	entry := log.WithField("context", "update_pump")
	for {
		updateConfig := api.NewUpdate(0)
		updateConfig.Timeout = 60
		updateConfig.AllowedUpdates = []string{"message", "callback_query"}

		updates := p.bot.GetUpdatesChan(updateConfig)
		for {
			select {
			case <-ctx.Done():
				return
			case update, ok := <-updates:
				if !ok {
					updates = nil
				} else if err := p.processor.Process(ctx, &update); err != nil {
					entry.WithField("error", err.Error()).Error("cant process update")
				}
			}
			if updates == nil {
				break
			}
		}

		if ctx.Err() != nil {
			return
		}
		entry.Warnf("update stream closed, reconnecting in %s", reconnectDelay)
		select {
		case <-ctx.Done():
			return
		case <-time.After(reconnectDelay):
		}
	}
}
