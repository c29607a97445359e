package bootstrap

import (
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"

	appconfig "github.com/wolfman30/medspa-frontdesk/internal/config"
	"github.com/wolfman30/medspa-frontdesk/internal/notify"
	"github.com/wolfman30/medspa-frontdesk/pkg/logging"
)

// BuildConfirmer wires booking confirmation emails. It returns nil when
// EMAIL_PROVIDER is none.
func BuildConfirmer(cfg *appconfig.Config, awsCfg aws.Config, logger *logging.Logger) (*notify.Confirmer, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}

	var sender notify.EmailSender
	switch cfg.EmailProvider {
	case "", "none":
		return nil, nil
	case "ses":
		sender = notify.NewSESSender(sesv2.NewFromConfig(awsCfg), notify.SESConfig{
			FromEmail: cfg.EmailFrom,
			FromName:  cfg.EmailFromName,
		}, logger)
	case "sendgrid":
		sg := notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.EmailFrom,
			FromName:  cfg.EmailFromName,
		}, logger)
		if sg == nil {
			return nil, fmt.Errorf("bootstrap: sendgrid requires SENDGRID_API_KEY")
		}
		sender = sg
	case "stub":
		sender = notify.NewStubEmailSender(logger)
	default:
		return nil, fmt.Errorf("bootstrap: unknown email provider %q", cfg.EmailProvider)
	}
	logger.Info("booking confirmations enabled", "provider", cfg.EmailProvider)
	return notify.NewConfirmer(sender, cfg.ClinicName, logger), nil
}
