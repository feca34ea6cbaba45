package services

import (
	"context"
	"net/http"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"dimfdesk/remote"
	"dimfdesk/utils"
)

// Export proxies the server-side Excel export: the workbook is generated
// remotely and streamed down; the client only chooses where to put it.
type Export struct {
	api *remote.Client
	ui  remote.Dispatcher
	log *zap.SugaredLogger
}

func NewExport(api *remote.Client, ui remote.Dispatcher) *Export {
	return &Export{api: api, ui: ui, log: utils.S()}
}

// Download fetches the xlsx stream and writes it to destPath, creating parent
// directories as needed. The written path is handed back on success.
func (e *Export) Download(ctx context.Context, destPath string, done func(string, error)) {
	remote.Call(e.ui, func() (string, error) {
		raw, err := e.api.DoRaw(ctx, http.MethodGet, "/export/excel", nil)
		if err != nil {
			return "", err
		}
		if dir := filepath.Dir(destPath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return "", err
			}
		}
		if err := os.WriteFile(destPath, raw, 0o644); err != nil {
			return "", err
		}
		e.log.Infow("export written", "path", destPath, "bytes", len(raw))
		return destPath, nil
	}, done)
}
