package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/debopam-roy/swaadly-frontend-sub000/internal/cache"
	"github.com/debopam-roy/swaadly-frontend-sub000/internal/cart"
	"github.com/debopam-roy/swaadly-frontend-sub000/internal/client"
	"github.com/debopam-roy/swaadly-frontend-sub000/internal/models"
	"github.com/debopam-roy/swaadly-frontend-sub000/internal/pricing"
	"github.com/google/uuid"
)

var (
	ErrEmptyCart             = errors.New("cart is empty")
	ErrNoAddressSelected     = errors.New("please select a delivery address")
	ErrUnknownAddress        = errors.New("address not found")
	ErrNoDeliveryOption      = errors.New("please select a delivery option")
	ErrUnknownDeliveryOption = errors.New("delivery option not available")
	ErrEmptyCouponCode       = errors.New("please enter a coupon code")
	ErrCouponInvalid         = errors.New("coupon is not valid")
	ErrOrderInProgress       = errors.New("order is already being placed")
	ErrSessionChanged        = errors.New("session changed, please try again")
)

// Backend is the subset of the API client used during checkout
type Backend interface {
	GetWarehouseConfig(ctx context.Context) (*models.WarehouseConfig, error)
	GetAddresses(ctx context.Context) ([]models.Address, error)
	GetShippingRates(ctx context.Context, req models.ShippingRateRequest) (*models.ShippingRatesResponse, error)
	ValidateCoupon(ctx context.Context, req models.ValidateCouponRequest) (*models.CouponValidationResponse, error)
	CreateOrder(ctx context.Context, req models.CreateOrderRequest, idempotencyKey string) (*models.Order, error)
}

// Cart is the subset of the cart store used during checkout
type Cart interface {
	Items() []models.CartItem
	Summary() cart.Summary
	ClearCart() []models.CartItem
}

// OrderRecorder is notified about placed orders
type OrderRecorder interface {
	RecordOrderPlaced(ctx context.Context, itemCount int, couponApplied bool)
}

// Confirmation is returned after a successful order
type Confirmation struct {
	OrderID      string             `json:"orderId"`
	OrderNumber  string             `json:"orderNumber"`
	Status       models.OrderStatus `json:"status"`
	RedirectPath string             `json:"redirectPath"`
}

// View is a snapshot of checkout state for rendering
type View struct {
	Warehouse                *models.WarehouseConfig `json:"warehouse,omitempty"`
	Addresses                []models.Address        `json:"addresses"`
	SelectedAddressID        string                  `json:"selectedAddressId,omitempty"`
	DeliveryOptions          []models.DeliveryOption `json:"deliveryOptions"`
	SelectedDeliveryOptionID string                  `json:"selectedDeliveryOptionId,omitempty"`
	LoadingRates             bool                    `json:"loadingRates"`
	Coupon                   *models.AppliedCoupon   `json:"coupon,omitempty"`
	CouponStale              bool                    `json:"couponStale"`
	Items                    []models.CartItem       `json:"items"`
	Pricing                  pricing.Summary         `json:"pricing"`
	PlacingOrder             bool                    `json:"placingOrder"`
	AddressError             string                  `json:"addressError,omitempty"`
	RatesError               string                  `json:"ratesError,omitempty"`
	CouponError              string                  `json:"couponError,omitempty"`
	OrderError               string                  `json:"orderError,omitempty"`
}

const (
	warehouseCacheKey = "warehouse"
	noDeliveryMessage = "Delivery is not available to this pincode"

	couponNotApplicableMessage = "This coupon no longer applies to the items in your cart"
)

// Reconciler combines the local cart with addresses, rate quotes and a coupon
// into a purchasable order. One Reconciler serves one storefront process.
type Reconciler struct {
	mu       sync.Mutex
	backend  Backend
	cart     Cart
	orders   OrderRecorder
	quotes   *cache.TTLCache[string, []models.DeliveryOption]
	settings *cache.TTLCache[string, models.WarehouseConfig]

	warehouse         *models.WarehouseConfig
	addresses         []models.Address
	addressesLoaded   bool
	selectedAddressID string
	options           []models.DeliveryOption
	selectedOptionID  string
	ratesKey          string
	generation        uint64
	loadingRates      bool
	coupon            *models.AppliedCoupon
	couponSubtotal    string
	couponStale       bool
	placingOrder      bool
	// epoch changes on every Reset; per-user results fetched before it are dropped
	epoch uint64

	addressError string
	ratesError   string
	couponError  string
	orderError   string
}

// Config holds reconciler tuning
type Config struct {
	RateQuoteTTL         time.Duration
	WarehouseTTL         time.Duration
	CacheCleanupInterval time.Duration
	Orders               OrderRecorder
}

// NewReconciler creates a reconciler. It subscribes to cart changes when the cart supports it.
func NewReconciler(backend Backend, c Cart, cfg Config) *Reconciler {
	if cfg.RateQuoteTTL <= 0 {
		cfg.RateQuoteTTL = 5 * time.Minute
	}
	if cfg.WarehouseTTL <= 0 {
		cfg.WarehouseTTL = time.Hour
	}

	r := &Reconciler{
		backend:  backend,
		cart:     c,
		orders:   cfg.Orders,
		quotes:   cache.NewTTLCache[string, []models.DeliveryOption](cfg.RateQuoteTTL, cfg.CacheCleanupInterval),
		settings: cache.NewTTLCache[string, models.WarehouseConfig](cfg.WarehouseTTL, cfg.CacheCleanupInterval),
	}

	if sub, ok := c.(interface{ Subscribe(func(cart.Summary)) }); ok {
		sub.Subscribe(r.OnCartChanged)
	}
	return r
}

// Reset drops everything that belongs to the signed-in user: addresses, selections,
// quoted options, the coupon and error messages. The warehouse config and quote
// cache are shared and stay.
func (r *Reconciler) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.addresses = nil
	r.addressesLoaded = false
	r.selectedAddressID = ""
	r.resetRatesLocked()
	r.coupon = nil
	r.couponSubtotal = ""
	r.couponStale = false
	r.addressError = ""
	r.couponError = ""
	r.orderError = ""
	r.epoch++
}

// Close stops the background cache sweeps
func (r *Reconciler) Close() {
	r.quotes.Stop()
	r.settings.Stop()
}

// LoadWarehouseConfig fetches the pickup location once; later calls hit the cache
func (r *Reconciler) LoadWarehouseConfig(ctx context.Context) error {
	if cfg, ok := r.settings.Get(warehouseCacheKey); ok {
		r.mu.Lock()
		r.warehouse = &cfg
		r.mu.Unlock()
		return nil
	}

	cfg, err := r.backend.GetWarehouseConfig(ctx)
	if err != nil {
		r.mu.Lock()
		r.ratesError = "Unable to load shipping configuration"
		r.mu.Unlock()
		slog.Warn("Failed to load warehouse config", "error", err)
		return fmt.Errorf("failed to load warehouse config: %w", err)
	}

	r.settings.Set(warehouseCacheKey, *cfg)
	r.mu.Lock()
	r.warehouse = cfg
	r.mu.Unlock()
	return nil
}

// LoadAddresses fetches saved addresses the first time it is called
func (r *Reconciler) LoadAddresses(ctx context.Context) error {
	r.mu.Lock()
	loaded := r.addressesLoaded
	r.mu.Unlock()
	if loaded {
		return nil
	}
	return r.ReloadAddresses(ctx)
}

// ReloadAddresses re-fetches addresses, keeping the selection when it still exists.
// With no selection the default address, else the first, is selected.
func (r *Reconciler) ReloadAddresses(ctx context.Context) error {
	r.mu.Lock()
	epoch := r.epoch
	r.mu.Unlock()

	addresses, err := r.backend.GetAddresses(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()

	if epoch != r.epoch {
		slog.Debug("Discarding addresses fetched before a session change")
		return nil
	}
	if err != nil {
		r.addressError = client.AsAPIError(err).Message
		return err
	}

	r.addresses = addresses
	r.addressesLoaded = true
	r.addressError = ""

	if r.selectedAddressID != "" && r.findAddressLocked(r.selectedAddressID) == nil {
		r.selectedAddressID = ""
	}
	if r.selectedAddressID == "" && len(addresses) > 0 {
		r.selectedAddressID = addresses[0].ID
		for _, a := range addresses {
			if a.IsDefault {
				r.selectedAddressID = a.ID
				break
			}
		}
	}
	return nil
}

// SelectAddress changes the delivery address. Rates are refreshed by RefreshRates.
func (r *Reconciler) SelectAddress(addressID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.findAddressLocked(addressID) == nil {
		return ErrUnknownAddress
	}
	r.selectedAddressID = addressID
	return nil
}

// ClearAddressSelection deselects the address and drops the current options
func (r *Reconciler) ClearAddressSelection() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.selectedAddressID = ""
	r.resetRatesLocked()
}

// RefreshRates fetches delivery options when an address is selected, the warehouse
// is known and the cart is non-empty. Nothing is fetched when the inputs are unchanged.
// When calls overlap, only the most recently started one may update the options.
func (r *Reconciler) RefreshRates(ctx context.Context) error {
	items := r.cart.Items()
	summary := r.cart.Summary()

	r.mu.Lock()
	address := r.findAddressLocked(r.selectedAddressID)
	if address == nil || r.warehouse == nil || len(items) == 0 {
		r.resetRatesLocked()
		r.mu.Unlock()
		return nil
	}

	key := dependencyKey(address, len(items), summary, r.warehouse)
	if key == r.ratesKey && r.ratesError == "" {
		r.mu.Unlock()
		return nil
	}

	r.ratesKey = key
	r.generation++
	gen := r.generation

	if cached, ok := r.quotes.Get(key); ok {
		r.applyOptionsLocked(cached)
		r.loadingRates = false
		r.ratesError = ""
		if len(cached) == 0 {
			r.ratesError = noDeliveryMessage
		}
		r.mu.Unlock()
		return nil
	}

	req := models.ShippingRateRequest{
		PickupPincode:   r.warehouse.Pincode,
		DeliveryPincode: address.Pincode,
		Weight:          summary.TotalWeight,
		OrderValue:      summary.Subtotal,
	}
	r.loadingRates = true
	r.ratesError = ""
	r.mu.Unlock()

	resp, err := r.backend.GetShippingRates(ctx, req)

	r.mu.Lock()
	defer r.mu.Unlock()

	if gen != r.generation {
		slog.Debug("Discarding superseded rate quote", "pincode", req.DeliveryPincode, "generation", gen, "current", r.generation)
		return nil
	}
	r.loadingRates = false

	if err != nil {
		r.options = nil
		r.selectedOptionID = ""
		r.ratesError = client.AsAPIError(err).Message
		return err
	}

	r.quotes.Set(key, resp.Options)
	r.applyOptionsLocked(resp.Options)
	if len(resp.Options) == 0 {
		r.ratesError = noDeliveryMessage
	}
	return nil
}

// SelectDeliveryOption picks one of the quoted options
func (r *Reconciler) SelectDeliveryOption(optionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, o := range r.options {
		if o.ID == optionID {
			r.selectedOptionID = optionID
			return nil
		}
	}
	return ErrUnknownDeliveryOption
}

// ApplyCoupon validates code against the current cart. An applied coupon stays
// until removed even if the cart changes afterwards; View.CouponStale reports that.
func (r *Reconciler) ApplyCoupon(ctx context.Context, code string) (*models.AppliedCoupon, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		r.setCouponError(ErrEmptyCouponCode.Error())
		return nil, ErrEmptyCouponCode
	}

	items := r.cart.Items()
	summary := r.cart.Summary()
	if len(items) == 0 {
		r.setCouponError(ErrEmptyCart.Error())
		return nil, ErrEmptyCart
	}

	r.mu.Lock()
	epoch := r.epoch
	r.mu.Unlock()

	resp, err := r.backend.ValidateCoupon(ctx, models.ValidateCouponRequest{
		Code:        code,
		OrderAmount: summary.Subtotal,
		ProductIDs:  productIDs(items),
	})
	if err != nil {
		r.setCouponError(client.AsAPIError(err).Message)
		return nil, err
	}
	if !resp.Valid || resp.Coupon == nil {
		msg := resp.Message
		if msg == "" {
			msg = "Invalid coupon code"
		}
		r.setCouponError(msg)
		return nil, fmt.Errorf("%w: %s", ErrCouponInvalid, msg)
	}

	coupon := *resp.Coupon
	if coupon.Code == "" {
		coupon.Code = code
	}

	r.mu.Lock()
	if epoch != r.epoch {
		r.mu.Unlock()
		return nil, ErrSessionChanged
	}
	r.coupon = &coupon
	r.couponSubtotal = summary.Subtotal.String()
	r.couponStale = false
	r.couponError = ""
	r.mu.Unlock()

	slog.Info("Coupon applied", "code", coupon.Code, "discount", coupon.DiscountAmount.String())
	return &coupon, nil
}

// RemoveCoupon drops the applied coupon
func (r *Reconciler) RemoveCoupon() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.coupon = nil
	r.couponSubtotal = ""
	r.couponStale = false
	r.couponError = ""
}

// OnCartChanged is the cart subscription callback. Options quoted for other cart
// contents are dropped; the next RefreshRates quotes again.
func (r *Reconciler) OnCartChanged(summary cart.Summary) {
	items := r.cart.Items()

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.coupon != nil {
		covered := pricing.CouponCoversItems(r.coupon, items)
		r.couponStale = !covered || summary.Subtotal.String() != r.couponSubtotal
		if !covered {
			r.couponError = couponNotApplicableMessage
		} else if r.couponError == couponNotApplicableMessage {
			r.couponError = ""
		}
	}
	if summary.Lines == 0 || !r.quoteMatchesLocked(summary) {
		r.resetRatesLocked()
	}
}

// PlaceOrder submits the current selections. The cart and coupon are cleared only on success.
func (r *Reconciler) PlaceOrder(ctx context.Context) (*Confirmation, error) {
	items := r.cart.Items()
	summary := r.cart.Summary()

	r.mu.Lock()
	if r.placingOrder {
		r.mu.Unlock()
		return nil, ErrOrderInProgress
	}
	if err := r.validateOrderLocked(items, summary); err != nil {
		r.orderError = err.Error()
		r.mu.Unlock()
		return nil, err
	}

	req := models.CreateOrderRequest{
		AddressID:        r.selectedAddressID,
		Items:            make([]models.OrderItemRequest, 0, len(items)),
		DeliveryOptionID: r.selectedOptionID,
	}
	for _, item := range items {
		req.Items = append(req.Items, models.OrderItemRequest{
			ProductID: item.Product.ID,
			VariantID: item.Variant.ID,
			Quantity:  item.Quantity,
		})
	}
	if r.coupon != nil {
		req.CouponCode = r.coupon.Code
	}
	r.placingOrder = true
	r.orderError = ""
	r.mu.Unlock()

	order, err := r.backend.CreateOrder(ctx, req, uuid.NewString())

	r.mu.Lock()
	r.placingOrder = false
	if err != nil {
		r.orderError = client.AsAPIError(err).Message
		r.mu.Unlock()
		slog.Warn("Order placement failed", "error", err)
		return nil, err
	}
	couponApplied := r.coupon != nil
	r.coupon = nil
	r.couponSubtotal = ""
	r.couponStale = false
	r.mu.Unlock()

	// Outside the lock: clearing notifies OnCartChanged
	r.cart.ClearCart()

	if r.orders != nil {
		r.orders.RecordOrderPlaced(ctx, len(req.Items), couponApplied)
	}
	slog.Info("Order placed", "order_id", order.ID, "order_number", order.OrderNumber, "lines", len(req.Items))

	return &Confirmation{
		OrderID:      order.ID,
		OrderNumber:  order.OrderNumber,
		Status:       order.Status,
		RedirectPath: fmt.Sprintf("/orders/%s/confirmation", order.ID),
	}, nil
}

func (r *Reconciler) validateOrderLocked(items []models.CartItem, summary cart.Summary) error {
	if len(items) == 0 {
		return ErrEmptyCart
	}
	if r.findAddressLocked(r.selectedAddressID) == nil {
		return ErrNoAddressSelected
	}
	if r.selectedOptionID == "" {
		return ErrNoDeliveryOption
	}
	// The selected option must have been quoted for exactly this cart and address
	if !r.quoteMatchesLocked(summary) {
		r.resetRatesLocked()
		return ErrNoDeliveryOption
	}
	return nil
}

// quoteMatchesLocked reports whether the current quote was made for summary
// and the selected address
func (r *Reconciler) quoteMatchesLocked(summary cart.Summary) bool {
	address := r.findAddressLocked(r.selectedAddressID)
	if r.ratesKey == "" || address == nil || r.warehouse == nil {
		return false
	}
	return dependencyKey(address, summary.Lines, summary, r.warehouse) == r.ratesKey
}

// View returns a snapshot of the checkout state with totals
func (r *Reconciler) View() View {
	items := r.cart.Items()

	r.mu.Lock()
	defer r.mu.Unlock()

	var option *models.DeliveryOption
	for i := range r.options {
		if r.options[i].ID == r.selectedOptionID {
			option = &r.options[i]
			break
		}
	}

	v := View{
		Addresses:                append([]models.Address{}, r.addresses...),
		SelectedAddressID:        r.selectedAddressID,
		DeliveryOptions:          append([]models.DeliveryOption{}, r.options...),
		SelectedDeliveryOptionID: r.selectedOptionID,
		LoadingRates:             r.loadingRates,
		CouponStale:              r.couponStale,
		Items:                    items,
		Pricing:                  pricing.Calculate(items, r.coupon, option),
		PlacingOrder:             r.placingOrder,
		AddressError:             r.addressError,
		RatesError:               r.ratesError,
		CouponError:              r.couponError,
		OrderError:               r.orderError,
	}
	if r.warehouse != nil {
		w := *r.warehouse
		v.Warehouse = &w
	}
	if r.coupon != nil {
		c := *r.coupon
		v.Coupon = &c
	}
	return v
}

func (r *Reconciler) applyOptionsLocked(options []models.DeliveryOption) {
	r.options = append([]models.DeliveryOption{}, options...)
	r.selectedOptionID = ""
	if len(options) == 0 {
		return
	}
	r.selectedOptionID = options[0].ID
	for _, o := range options {
		if o.Recommended {
			r.selectedOptionID = o.ID
			break
		}
	}
}

func (r *Reconciler) resetRatesLocked() {
	r.options = nil
	r.selectedOptionID = ""
	r.ratesKey = ""
	r.loadingRates = false
	r.ratesError = ""
	// Invalidate any in-flight quote
	r.generation++
}

func (r *Reconciler) setCouponError(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.couponError = msg
}

func (r *Reconciler) findAddressLocked(id string) *models.Address {
	if id == "" {
		return nil
	}
	for i := range r.addresses {
		if r.addresses[i].ID == id {
			return &r.addresses[i]
		}
	}
	return nil
}

// dependencyKey identifies the inputs a rate quote depends on
func dependencyKey(address *models.Address, lines int, summary cart.Summary, warehouse *models.WarehouseConfig) string {
	return fmt.Sprintf("%s|%s|%d|%d|%s|%s",
		address.ID, address.Pincode, lines, summary.TotalWeight, summary.Subtotal.String(), warehouse.Pincode)
}

func productIDs(items []models.CartItem) []string {
	seen := make(map[string]struct{}, len(items))
	ids := make([]string, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item.Product.ID]; ok {
			continue
		}
		seen[item.Product.ID] = struct{}{}
		ids = append(ids, item.Product.ID)
	}
	return ids
}
