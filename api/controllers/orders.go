package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/itsrogermachado/novaeramtds-sub001/api/middleware"
	"github.com/itsrogermachado/novaeramtds-sub001/api/responses"
	"github.com/itsrogermachado/novaeramtds-sub001/api/validators"
	"github.com/itsrogermachado/novaeramtds-sub001/internal/orders"
	"github.com/itsrogermachado/novaeramtds-sub001/internal/payments"
	pkgerrors "github.com/itsrogermachado/novaeramtds-sub001/pkg/errors"
	"github.com/itsrogermachado/novaeramtds-sub001/pkg/logger"
	"github.com/itsrogermachado/novaeramtds-sub001/pkg/outbox"
)

const defaultAdminOrderLimit = 50

// GuestOrderLookup returns the public view of an order to its buyer. Both
// the order number and the purchase email must match.
func GuestOrderLookup(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		number, email, err := guestCredentials(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		view, err := svc.GuestLookup(r.Context(), number, email)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// GetOrderDelivery returns the delivered content for a paid-and-delivered
// order, guarded by the same guest credentials as the lookup.
func GetOrderDelivery(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		number, email, err := guestCredentials(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		view, err := svc.GetDelivery(r.Context(), number, email)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// CheckPaymentStatus is the client poll endpoint: it re-queries the gateway
// when the stored charge is still pending.
func CheckPaymentStatus(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := parseIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status, err := svc.CheckStatus(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, status)
	}
}

func AdminListOrders(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := defaultAdminOrderLimit
		if raw := r.URL.Query().Get("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed <= 0 {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid limit"))
				return
			}
			limit = parsed
		}
		list, err := svc.ListRecent(r.Context(), limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

type cancelOrderRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

func AdminCancelOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := parseIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload cancelOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		actor := &outbox.ActorRef{
			UserID: userID,
			Role:   middleware.RoleFromContext(r.Context()),
		}
		if err := svc.Cancel(r.Context(), orderID, actor, payload.Reason); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "cancelled"})
	}
}

func guestCredentials(r *http.Request) (int64, string, error) {
	rawNumber := strings.TrimSpace(r.URL.Query().Get("number"))
	email := strings.TrimSpace(r.URL.Query().Get("email"))
	if rawNumber == "" || email == "" {
		return 0, "", pkgerrors.New(pkgerrors.CodeValidation, "order number and email are required")
	}
	number, err := strconv.ParseInt(rawNumber, 10, 64)
	if err != nil || number <= 0 {
		return 0, "", pkgerrors.New(pkgerrors.CodeValidation, "invalid order number")
	}
	return number, email, nil
}
