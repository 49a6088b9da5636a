package controllers

import (
	"io"
	"net/http"

	"github.com/itsrogermachado/novaeramtds-sub001/api/responses"
	pixwebhook "github.com/itsrogermachado/novaeramtds-sub001/internal/webhooks/pix"
	pkgerrors "github.com/itsrogermachado/novaeramtds-sub001/pkg/errors"
	"github.com/itsrogermachado/novaeramtds-sub001/pkg/logger"
)

const pixSignatureHeader = "X-Webhook-Signature"
const maxWebhookBody = 1 << 20

// PixWebhook receives payment notifications from the PIX provider. An invalid
// signature is rejected with 401; once authenticated, the endpoint always
// answers 200 so the provider stops retrying. Processing failures are logged
// and left to the reconcile sweep.
func PixWebhook(svc *pixwebhook.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "reading webhook body"))
			return
		}

		if !svc.VerifySignature(body, r.Header.Get(pixSignatureHeader)) {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid webhook signature"))
			return
		}

		if err := svc.Process(r.Context(), body); err != nil {
			logg.Error(r.Context(), "pix webhook processing failed", err)
		}
		responses.WriteSuccess(w, map[string]string{"status": "received"})
	}
}
