package docintel

import (
	"log/slog"

	azlog "github.com/Azure/azure-sdk-for-go/sdk/azcore/log"
)

// ForwardSDKLogs routes the SDK's request, retry and polling events to logger at debug level.
// The SDK redacts credential headers before logging.
func ForwardSDKLogs(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	azlog.SetEvents(azlog.EventRequest, azlog.EventResponse, azlog.EventResponseError, azlog.EventRetryPolicy, azlog.EventLRO)
	azlog.SetListener(func(ev azlog.Event, msg string) {
		logger.Debug("docintel.sdk", "event", string(ev), "msg", msg)
	})
}
