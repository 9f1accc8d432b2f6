package bot

import (
	api "github.com/OvyFlash/telegram-bot-api"

	"github.com/modguard/modguard/internal/platform"
)

type ServiceBot interface {
	GetBot() *api.BotAPI
}

type ServicePlatform interface {
	GetPlatform() platform.ChatPlatform
}

type Service interface {
	ServiceBot
	ServicePlatform
}

type service struct {
	bot      *api.BotAPI
	platform platform.ChatPlatform
}

func NewService(bot *api.BotAPI, p platform.ChatPlatform) *service {
	return &service{
		bot:      bot,
		platform: p,
	}
}

func (s *service) GetBot() *api.BotAPI {
	return s.bot
}

func (s *service) GetPlatform() platform.ChatPlatform {
	return s.platform
}
