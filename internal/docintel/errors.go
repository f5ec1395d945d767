package docintel

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"

	"github.com/joseph-ayodele/invoice-extractor/internal/common"
)

// classify maps SDK and transport failures onto the error taxonomy.
// Cancellation and deadline belong to the caller and are returned as ctx.Err().
func classify(ctx context.Context, op string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	var respErr *azcore.ResponseError
	if errors.As(err, &respErr) {
		switch {
		case respErr.StatusCode == http.StatusUnauthorized || respErr.StatusCode == http.StatusForbidden:
			return common.NewAppError(common.CodeAuth, op+": request rejected by service", errors.Join(common.ErrUnauthorized, err))
		case respErr.StatusCode/100 == 2:
			// the operation reached failed or canceled
			return common.NewAppError(common.CodeAnalysisFailed, op+": "+respErr.ErrorCode, fmt.Errorf("%w: %w", common.ErrAnalysisFailed, err))
		default:
			return common.NewAppError(common.CodeService, op+": service returned an error", errors.Join(common.ErrService, err))
		}
	}

	var urlErr *url.Error
	var netErr net.Error
	if errors.As(err, &urlErr) || errors.As(err, &netErr) {
		return common.NewAppError(common.CodeTransport, op, fmt.Errorf("%w: %w", common.ErrTransport, err))
	}
	return common.NewAppError(common.CodeService, op, fmt.Errorf("%w: %w", common.ErrService, err))
}
