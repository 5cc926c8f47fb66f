package common

import (
	"github.com/futig/lawgpt-backend/internal/config"
	pkgHTTP "github.com/futig/lawgpt-backend/pkg/http"
	"go.uber.org/zap"
)

// NewBaseConnector builds a JSON connector for an upstream service.
// Calls are logged and carry the configured bearer token, if any.
func NewBaseConnector(cfg config.HTTPClientConfig, logger *zap.Logger) *pkgHTTP.Connector {
	return pkgHTTP.NewConnector(
		&pkgHTTP.ConnectorConfig{
			BaseURL: cfg.Url,
			Logger:  logger,
			Client: pkgHTTP.ClientConfig{
				RequestTimeout:        cfg.RequestTimeout,
				DialTimeout:           cfg.ConnTimeout,
				KeepAlive:             cfg.KeepAlive,
				IdleConnTimeout:       cfg.IdleConnTimeout,
				ResponseHeaderTimeout: cfg.ResponseHeaderTimeout,
			},
		},
		pkgHTTP.RequestLogging(),
		pkgHTTP.BearerAuth(cfg.Token),
	)
}
