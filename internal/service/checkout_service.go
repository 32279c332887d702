package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/apperrors"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/cart"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/config"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/metrics"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/models"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/repository"
)

// NotificationWarning is shown to the shopper when the order went through
// but the back office was not told about it.
const NotificationWarning = "Your order was placed, but we could not send the order confirmation. We will contact you shortly."

// OrderNotifier tells the back office about a new order.
type OrderNotifier interface {
	SendOrderConfirmation(ctx context.Context, order *models.Order) error
}

type OrderEventPublisher interface {
	PublishOrderCreated(ctx context.Context, order *models.Order) error
}

type ProfileReader interface {
	GetByUserID(ctx context.Context, userID int64) (*models.Profile, error)
}

// CheckoutResult is a placed order plus an optional non-fatal warning.
type CheckoutResult struct {
	Order   *models.Order
	Warning string
}

// CheckoutService turns a cart into an order.
type CheckoutService struct {
	catalog  cart.ProductLookup
	orders   repository.OrderRepository
	profiles ProfileReader
	notifier OrderNotifier
	events   OrderEventPublisher
	features config.FeatureFlags
	logger   *zap.Logger
}

func NewCheckoutService(
	catalog cart.ProductLookup,
	orders repository.OrderRepository,
	profiles ProfileReader,
	notifier OrderNotifier,
	events OrderEventPublisher,
	features config.FeatureFlags,
	logger *zap.Logger,
) *CheckoutService {
	return &CheckoutService{
		catalog:  catalog,
		orders:   orders,
		profiles: profiles,
		notifier: notifier,
		events:   events,
		features: features,
		logger:   logger,
	}
}

// DefaultDetails pre-fills a blank checkout form from the signed-in user's
// profile. Anonymous shoppers, and users whose profile cannot be read, get
// an empty form.
func (s *CheckoutService) DefaultDetails(ctx context.Context, userID *int64) models.CustomerDetails {
	if userID == nil {
		return models.CustomerDetails{}
	}

	profile, err := s.profiles.GetByUserID(ctx, *userID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.logger.Warn("could not load profile for checkout defaults", zap.Int64("user_id", *userID), zap.Error(err))
		}
		return models.CustomerDetails{}
	}

	return models.CustomerDetails{
		FirstName:   profile.FirstName,
		LastName:    profile.LastName,
		Email:       profile.Email,
		Phone:       profile.Phone,
		CompanyName: profile.CompanyName,
		Address:     profile.Address,
	}
}

// Checkout validates details, records the order with one item per cart line
// and empties the cart. The cart is left untouched on every error.
//
// Errors: apperrors.ErrEmptyCart, *apperrors.ValidationError and
// *apperrors.PersistenceError. A failed confirmation email is not an error;
// it shows up as CheckoutResult.Warning.
func (s *CheckoutService) Checkout(ctx context.Context, c *cart.Cart, details models.CustomerDetails, userID *int64) (*CheckoutResult, error) {
	if c.IsEmpty() {
		metrics.Checkouts.WithLabelValues(metrics.OutcomeEmptyCart).Inc()
		return nil, apperrors.ErrEmptyCart
	}

	details = normalizeDetails(details)
	if err := ValidateCustomerDetails(&details); err != nil {
		metrics.Checkouts.WithLabelValues(metrics.OutcomeInvalid).Inc()
		return nil, err
	}

	items, err := c.Items(ctx, s.catalog)
	if err != nil {
		metrics.Checkouts.WithLabelValues(metrics.OutcomePersistFail).Inc()
		s.logger.Error("failed to load cart products", zap.Error(err))
		return nil, &apperrors.PersistenceError{Op: "load cart products", Err: err}
	}
	if len(items) == 0 {
		// Every line points at a product that no longer exists.
		metrics.Checkouts.WithLabelValues(metrics.OutcomeEmptyCart).Inc()
		return nil, apperrors.ErrEmptyCart
	}

	order := &models.Order{
		UserID:      userID,
		FirstName:   details.FirstName,
		LastName:    details.LastName,
		Email:       details.Email,
		Phone:       details.Phone,
		CompanyName: details.CompanyName,
		Address:     details.Address,
		Items:       make([]models.OrderItem, 0, len(items)),
	}
	for _, item := range items {
		product := item.Product
		order.Items = append(order.Items, models.OrderItem{
			ProductID: product.ID,
			Product:   &product,
			Price:     item.Price,
			Quantity:  item.Quantity,
		})
	}

	if err := s.orders.CreateWithItems(ctx, order); err != nil {
		metrics.Checkouts.WithLabelValues(metrics.OutcomePersistFail).Inc()
		s.logger.Error("failed to create order", zap.Error(err))
		return nil, &apperrors.PersistenceError{Op: "create order", Err: err}
	}

	result := &CheckoutResult{Order: order}

	if err := s.notifier.SendOrderConfirmation(ctx, order); err != nil {
		// The order is committed; the shopper only gets a warning.
		nerr := &apperrors.NotificationError{OrderID: order.ID, Err: err}
		metrics.NotificationFailures.Inc()
		s.logger.Warn("order confirmation not sent", zap.Int64("order_id", order.ID), zap.Error(nerr))
		result.Warning = NotificationWarning
	}

	if s.features.EnableOrderEvents {
		if err := s.events.PublishOrderCreated(ctx, order); err != nil {
			// Log but don't fail
			metrics.EventPublishFailures.Inc()
			s.logger.Error("failed to publish order created event", zap.Int64("order_id", order.ID), zap.Error(err))
		}
	}

	c.Clear()
	metrics.Checkouts.WithLabelValues(metrics.OutcomeCompleted).Inc()

	s.logger.Info("order placed",
		zap.Int64("order_id", order.ID),
		zap.Int("items", len(order.Items)),
		zap.String("total", order.TotalCost().StringFixed(2)),
	)
	return result, nil
}
