package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"agrimarket/internal/apperrors"
	"agrimarket/internal/models"
	"agrimarket/internal/repositories"
	"agrimarket/pkg/metrics"

	"github.com/labstack/gommon/log"
)

// TransitionRequest asks for an order to move to Status.
type TransitionRequest struct {
	Status             string `json:"status"`
	CancelledBy        string `json:"cancelled_by"`
	CancellationReason string `json:"cancellation_reason"`
}

// OrderWorkflow is the only writer of order status.
type OrderWorkflow struct {
	orders   repositories.OrderRepository
	notifier Notifier
	metrics  *metrics.OrderMetrics
}

func NewOrderWorkflow(orders repositories.OrderRepository, notifier Notifier, m *metrics.OrderMetrics) *OrderWorkflow {
	if notifier == nil {
		notifier = LogNotifier{}
	}
	return &OrderWorkflow{orders: orders, notifier: notifier, metrics: m}
}

// ApplyTransition validates req against the order and the caller, then
// stores the new status with a write that only succeeds if nobody changed
// the status in between.
func (w *OrderWorkflow) ApplyTransition(ctx context.Context, orderID string, req TransitionRequest, principal models.Principal) (*models.Order, error) {
	target, ok := models.ParseOrderStatus(req.Status)
	if !ok {
		return nil, apperrors.New(apperrors.KindInvalidStatus, "unknown order status %q", req.Status)
	}

	order, err := w.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, notFoundOr(err, "order", orderID)
	}

	change, err := checkTransition(order, target, req, principal)
	if err != nil {
		return nil, err
	}

	if err := w.orders.UpdateStatus(ctx, order.ID, change); err != nil {
		switch {
		case errors.Is(err, repositories.ErrStatusConflict):
			return nil, apperrors.Wrap(apperrors.KindConflict, err, "order %s changed concurrently", order.ID)
		case errors.Is(err, repositories.ErrNotFound):
			return nil, apperrors.Wrap(apperrors.KindNotFound, err, "order %s not found", order.ID)
		default:
			return nil, fmt.Errorf("failed to update status of order %s: %w", order.ID, err)
		}
	}

	order.Status = change.To
	order.CancelledBy = change.CancelledBy
	order.CancellationReason = change.CancellationReason
	order.UpdatedAt = time.Now().UTC()

	w.metrics.StatusChanged(string(change.From), string(change.To))
	if err := w.notifier.NotifyOrderStatusChanged(ctx, order.Summary()); err != nil {
		log.Warnf("failed to notify status change of order %s: %v", order.ID, err)
	}
	return order, nil
}

// checkTransition applies the authorization and state rules in order and
// returns the change to write.
func checkTransition(order *models.Order, target models.OrderStatus, req TransitionRequest, principal models.Principal) (models.StatusChange, error) {
	if !order.IsParty(principal.ID) {
		return models.StatusChange{}, apperrors.Forbidden("order %s is not yours", order.ID)
	}
	if order.Status.IsTerminal() {
		return models.StatusChange{}, apperrors.New(apperrors.KindTerminalState, "order %s is already %s", order.ID, order.Status)
	}
	if !order.Status.CanTransitionTo(target) {
		return models.StatusChange{}, apperrors.New(apperrors.KindInvalidTransition, "cannot move order %s from %s to %s", order.ID, order.Status, target)
	}

	isOrderFarmer := principal.Is(models.RoleFarmer) && principal.ID == order.FarmerID
	change := models.StatusChange{From: order.Status, To: target}

	if target == models.OrderStatusCancelled {
		reason := strings.TrimSpace(req.CancellationReason)
		switch {
		case !isOrderFarmer:
			return models.StatusChange{}, apperrors.Forbidden("only the farmer can cancel order %s", order.ID)
		case req.CancelledBy == "":
			return models.StatusChange{}, apperrors.ValidationFields(map[string]string{"CancelledBy": "cancelled_by is required when cancelling"})
		case models.CancelledBy(req.CancelledBy) != models.CancelledByFarmer:
			return models.StatusChange{}, apperrors.Forbidden("cancelled_by %q is not allowed", req.CancelledBy)
		case reason == "":
			return models.StatusChange{}, apperrors.ValidationFields(map[string]string{"CancellationReason": "cancellation_reason is required when cancelling"})
		}
		change.CancelledBy = models.CancelledByFarmer
		change.CancellationReason = reason
		return change, nil
	}

	if !isOrderFarmer {
		return models.StatusChange{}, apperrors.Forbidden("only the farmer can move order %s to %s", order.ID, target)
	}
	if req.CancelledBy != "" || req.CancellationReason != "" {
		return models.StatusChange{}, apperrors.Validation("cancellation details are only accepted when cancelling")
	}
	return change, nil
}
