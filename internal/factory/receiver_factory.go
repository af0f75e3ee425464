package factory

import (
	"github.com/mikey/inbox-triage/internal/adapters/httpserver"
	"github.com/mikey/inbox-triage/internal/adapters/smtpd"
	"github.com/mikey/inbox-triage/internal/config"
	"github.com/mikey/inbox-triage/internal/core"
	"github.com/mikey/inbox-triage/internal/ports"
	"go.uber.org/zap"
)

// ReceiverFactory creates the ingestion front ends bound to the triage
// service: always the HTTP server, plus the SMTP listener when enabled.
type ReceiverFactory struct {
	cfg     *config.Config
	logger  *zap.Logger
	service *core.TriageService
}

// NewReceiverFactory creates a new receiver factory
func NewReceiverFactory(cfg *config.Config, logger *zap.Logger, service *core.TriageService) *ReceiverFactory {
	return &ReceiverFactory{
		cfg:     cfg,
		logger:  logger,
		service: service,
	}
}

// CreateReceivers creates all configured receivers
func (f *ReceiverFactory) CreateReceivers() ([]ports.Receiver, error) {
	serverCfg := f.cfg.GetServer()
	receivers := []ports.Receiver{
		httpserver.NewServer(f.service, f.logger, serverCfg.ListenAddress),
	}

	smtpdCfg := f.cfg.GetSMTPD()
	if smtpdCfg.Enabled {
		receivers = append(receivers, smtpd.NewReceiver(f.service, f.logger, smtpdCfg.ListenAddress, smtpdCfg.Domain))
	}

	return receivers, nil
}
