package checkout

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/debopam-roy/swaadly-frontend-sub000/internal/cart"
	"github.com/debopam-roy/swaadly-frontend-sub000/internal/client"
	"github.com/debopam-roy/swaadly-frontend-sub000/internal/models"
	"github.com/debopam-roy/swaadly-frontend-sub000/internal/storage"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	mu sync.Mutex

	warehouse    *models.WarehouseConfig
	warehouseErr error
	addresses    []models.Address
	rates        map[string][]models.DeliveryOption
	ratesErr     error
	coupon       *models.CouponValidationResponse
	couponErr    error
	order        *models.Order
	orderErr     error

	// Per-pincode gates; a rate call for a gated pincode blocks until released
	gates       map[string]chan struct{}
	addressGate chan struct{}
	entered     chan string

	warehouseCalls int
	rateRequests   []models.ShippingRateRequest
	couponRequests []models.ValidateCouponRequest
	orderRequests  []models.CreateOrderRequest
	orderKeys      []string
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		warehouse: &models.WarehouseConfig{Pincode: "110001", City: "Delhi"},
		addresses: []models.Address{
			{ID: "addr-1", FullName: "Home", Pincode: "560001"},
			{ID: "addr-2", FullName: "Office", Pincode: "400001", IsDefault: true},
		},
		rates: map[string][]models.DeliveryOption{
			"560001": {
				{ID: "blr-std", CourierName: "Standard", Price: decimal.NewFromInt(60)},
				{ID: "blr-exp", CourierName: "Express", Price: decimal.NewFromInt(90), Recommended: true},
			},
			"400001": {
				{ID: "bom-std", CourierName: "Standard", Price: decimal.NewFromInt(50)},
			},
		},
		order:   &models.Order{ID: "ord-1", OrderNumber: "SW-1001", Status: models.OrderStatusPending},
		gates:   make(map[string]chan struct{}),
		entered: make(chan string, 10),
	}
}

func (f *fakeBackend) GetWarehouseConfig(ctx context.Context) (*models.WarehouseConfig, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.warehouseCalls++
	return f.warehouse, f.warehouseErr
}

func (f *fakeBackend) GetAddresses(ctx context.Context) ([]models.Address, error) {
	f.mu.Lock()
	addresses := append([]models.Address{}, f.addresses...)
	gate := f.addressGate
	f.mu.Unlock()

	if gate != nil {
		f.entered <- "addresses"
		<-gate
	}
	return addresses, nil
}

func (f *fakeBackend) GetShippingRates(ctx context.Context, req models.ShippingRateRequest) (*models.ShippingRatesResponse, error) {
	f.mu.Lock()
	f.rateRequests = append(f.rateRequests, req)
	gate := f.gates[req.DeliveryPincode]
	options := f.rates[req.DeliveryPincode]
	err := f.ratesErr
	f.mu.Unlock()

	f.entered <- req.DeliveryPincode
	if gate != nil {
		<-gate
	}
	if err != nil {
		return nil, err
	}
	return &models.ShippingRatesResponse{Options: options}, nil
}

func (f *fakeBackend) ValidateCoupon(ctx context.Context, req models.ValidateCouponRequest) (*models.CouponValidationResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.couponRequests = append(f.couponRequests, req)
	return f.coupon, f.couponErr
}

func (f *fakeBackend) CreateOrder(ctx context.Context, req models.CreateOrderRequest, key string) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orderRequests = append(f.orderRequests, req)
	f.orderKeys = append(f.orderKeys, key)
	return f.order, f.orderErr
}

func (f *fakeBackend) rateCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rateRequests)
}

type orderCounter struct {
	placed int
	coupon bool
}

func (o *orderCounter) RecordOrderPlaced(ctx context.Context, itemCount int, couponApplied bool) {
	o.placed++
	o.coupon = couponApplied
}

func newCart(t *testing.T) *cart.Store {
	t.Helper()
	return cart.NewStore(storage.NewMemoryStorage(""))
}

func addPeanutButter(c *cart.Store, qty int) {
	variant := models.ProductVariant{
		ID:           "var-500",
		Name:         "500g",
		Weight:       500,
		MRP:          decimal.NewFromInt(400),
		SellingPrice: decimal.NewFromInt(350),
		Stock:        50,
	}
	product := models.Product{ID: "prod-1", Name: "Peanut Butter", Slug: "peanut-butter", Variants: []models.ProductVariant{variant}}
	c.AddToCart(product, variant, qty)
}

func setup(t *testing.T) (*Reconciler, *fakeBackend, *cart.Store) {
	t.Helper()
	backend := newFakeBackend()
	c := newCart(t)
	r := NewReconciler(backend, c, Config{RateQuoteTTL: time.Minute})
	t.Cleanup(r.Close)
	return r, backend, c
}

func drain(b *fakeBackend) {
	for {
		select {
		case <-b.entered:
		default:
			return
		}
	}
}

func TestReloadAddressesSelectsDefault(t *testing.T) {
	// Arrange
	r, _, _ := setup(t)

	// Act
	require.NoError(t, r.LoadAddresses(context.Background()))

	// Assert
	view := r.View()
	assert.Len(t, view.Addresses, 2)
	assert.Equal(t, "addr-2", view.SelectedAddressID)
}

func TestReloadAddressesFallsBackToFirstAndKeepsSelection(t *testing.T) {
	// Arrange
	r, backend, _ := setup(t)
	backend.addresses[1].IsDefault = false
	ctx := context.Background()

	// Act
	require.NoError(t, r.LoadAddresses(ctx))
	assert.Equal(t, "addr-1", r.View().SelectedAddressID)

	require.NoError(t, r.SelectAddress("addr-2"))
	require.NoError(t, r.ReloadAddresses(ctx))

	// Assert
	assert.Equal(t, "addr-2", r.View().SelectedAddressID)
	assert.ErrorIs(t, r.SelectAddress("missing"), ErrUnknownAddress)
}

func TestWarehouseConfigIsCached(t *testing.T) {
	// Arrange
	r, backend, _ := setup(t)
	ctx := context.Background()

	// Act
	require.NoError(t, r.LoadWarehouseConfig(ctx))
	require.NoError(t, r.LoadWarehouseConfig(ctx))

	// Assert
	assert.Equal(t, 1, backend.warehouseCalls)
	assert.Equal(t, "110001", r.View().Warehouse.Pincode)
}

func TestWarehouseConfigFailure(t *testing.T) {
	// Arrange
	r, backend, _ := setup(t)
	backend.warehouseErr = errors.New("boom")

	// Act
	err := r.LoadWarehouseConfig(context.Background())

	// Assert
	require.Error(t, err)
	assert.Nil(t, r.View().Warehouse)
	assert.NotEmpty(t, r.View().RatesError)
}

func TestRefreshRatesSkipsIncompleteInputs(t *testing.T) {
	r, backend, c := setup(t)
	ctx := context.Background()

	// No address, no warehouse, empty cart
	require.NoError(t, r.RefreshRates(ctx))

	require.NoError(t, r.LoadAddresses(ctx))
	require.NoError(t, r.RefreshRates(ctx))

	require.NoError(t, r.LoadWarehouseConfig(ctx))
	require.NoError(t, r.RefreshRates(ctx))

	assert.Equal(t, 0, backend.rateCalls())

	addPeanutButter(c, 1)
	require.NoError(t, r.RefreshRates(ctx))
	assert.Equal(t, 1, backend.rateCalls())
}

func TestRefreshRatesSelectsRecommendedAndSendsCartTotals(t *testing.T) {
	// Arrange
	r, backend, c := setup(t)
	ctx := context.Background()
	addPeanutButter(c, 2)
	require.NoError(t, r.LoadWarehouseConfig(ctx))
	require.NoError(t, r.LoadAddresses(ctx))
	require.NoError(t, r.SelectAddress("addr-1"))

	// Act
	require.NoError(t, r.RefreshRates(ctx))

	// Assert
	view := r.View()
	assert.Len(t, view.DeliveryOptions, 2)
	assert.Equal(t, "blr-exp", view.SelectedDeliveryOptionID)
	assert.False(t, view.LoadingRates)

	req := backend.rateRequests[0]
	assert.Equal(t, "110001", req.PickupPincode)
	assert.Equal(t, "560001", req.DeliveryPincode)
	assert.Equal(t, 1000, req.Weight)
	assert.Equal(t, "700", req.OrderValue.String())

	// 800 MRP - 100 discount + 90 delivery
	assert.Equal(t, "790", view.Pricing.Total.String())
}

func TestRefreshRatesFallsBackToFirstOption(t *testing.T) {
	r, _, c := setup(t)
	ctx := context.Background()
	addPeanutButter(c, 1)
	require.NoError(t, r.LoadWarehouseConfig(ctx))
	require.NoError(t, r.LoadAddresses(ctx))

	require.NoError(t, r.RefreshRates(ctx))

	assert.Equal(t, "bom-std", r.View().SelectedDeliveryOptionID)
}

func TestRefreshRatesUnchangedInputsDoNotRefetch(t *testing.T) {
	// Arrange
	r, backend, c := setup(t)
	ctx := context.Background()
	addPeanutButter(c, 1)
	require.NoError(t, r.LoadWarehouseConfig(ctx))
	require.NoError(t, r.LoadAddresses(ctx))

	// Act
	require.NoError(t, r.RefreshRates(ctx))
	require.NoError(t, r.RefreshRates(ctx))
	require.NoError(t, r.RefreshRates(ctx))

	// Assert
	assert.Equal(t, 1, backend.rateCalls())

	// A cart change alters the inputs
	addPeanutButter(c, 1)
	require.NoError(t, r.RefreshRates(ctx))
	assert.Equal(t, 2, backend.rateCalls())
}

func TestRefreshRatesServesRepeatedInputsFromCache(t *testing.T) {
	r, backend, c := setup(t)
	ctx := context.Background()
	addPeanutButter(c, 1)
	require.NoError(t, r.LoadWarehouseConfig(ctx))
	require.NoError(t, r.LoadAddresses(ctx))

	require.NoError(t, r.RefreshRates(ctx))
	require.NoError(t, r.SelectAddress("addr-1"))
	require.NoError(t, r.RefreshRates(ctx))
	require.NoError(t, r.SelectAddress("addr-2"))
	require.NoError(t, r.RefreshRates(ctx))

	assert.Equal(t, 2, backend.rateCalls())
	assert.Equal(t, "bom-std", r.View().SelectedDeliveryOptionID)
}

func TestRefreshRatesLastRequestWins(t *testing.T) {
	// Arrange
	r, backend, c := setup(t)
	ctx := context.Background()
	addPeanutButter(c, 1)
	require.NoError(t, r.LoadWarehouseConfig(ctx))
	require.NoError(t, r.LoadAddresses(ctx))
	require.NoError(t, r.SelectAddress("addr-1"))

	slow := make(chan struct{})
	backend.gates["560001"] = slow

	// Act: A starts and blocks, B starts and finishes, then A completes
	done := make(chan error, 1)
	go func() { done <- r.RefreshRates(ctx) }()
	require.Equal(t, "560001", <-backend.entered)
	assert.True(t, r.View().LoadingRates)

	require.NoError(t, r.SelectAddress("addr-2"))
	require.NoError(t, r.RefreshRates(ctx))
	require.Equal(t, "400001", <-backend.entered)

	close(slow)
	require.NoError(t, <-done)

	// Assert
	view := r.View()
	require.Len(t, view.DeliveryOptions, 1)
	assert.Equal(t, "bom-std", view.DeliveryOptions[0].ID)
	assert.Equal(t, "bom-std", view.SelectedDeliveryOptionID)
	assert.False(t, view.LoadingRates)
}

func TestRefreshRatesFailure(t *testing.T) {
	// Arrange
	r, backend, c := setup(t)
	ctx := context.Background()
	addPeanutButter(c, 1)
	require.NoError(t, r.LoadWarehouseConfig(ctx))
	require.NoError(t, r.LoadAddresses(ctx))
	backend.ratesErr = &client.APIError{Kind: client.KindServer, StatusCode: http.StatusBadGateway, Message: "Courier service unavailable"}

	// Act
	err := r.RefreshRates(ctx)

	// Assert
	require.Error(t, err)
	view := r.View()
	assert.Empty(t, view.DeliveryOptions)
	assert.Empty(t, view.SelectedDeliveryOptionID)
	assert.Equal(t, "Courier service unavailable", view.RatesError)

	// Same inputs are retried after a failure
	backend.ratesErr = nil
	drain(backend)
	require.NoError(t, r.RefreshRates(ctx))
	assert.Equal(t, "bom-std", r.View().SelectedDeliveryOptionID)
	assert.Empty(t, r.View().RatesError)
}

func TestRefreshRatesNoOptions(t *testing.T) {
	r, backend, c := setup(t)
	ctx := context.Background()
	addPeanutButter(c, 1)
	backend.rates["400001"] = nil
	require.NoError(t, r.LoadWarehouseConfig(ctx))
	require.NoError(t, r.LoadAddresses(ctx))

	require.NoError(t, r.RefreshRates(ctx))

	view := r.View()
	assert.Empty(t, view.SelectedDeliveryOptionID)
	assert.Equal(t, noDeliveryMessage, view.RatesError)
}

func TestEmptyingCartClearsOptions(t *testing.T) {
	r, _, c := setup(t)
	ctx := context.Background()
	addPeanutButter(c, 1)
	require.NoError(t, r.LoadWarehouseConfig(ctx))
	require.NoError(t, r.LoadAddresses(ctx))
	require.NoError(t, r.RefreshRates(ctx))
	require.NotEmpty(t, r.View().DeliveryOptions)

	c.ClearCart()

	assert.Empty(t, r.View().DeliveryOptions)
	assert.Empty(t, r.View().SelectedDeliveryOptionID)
}

func TestSelectDeliveryOption(t *testing.T) {
	r, _, c := setup(t)
	ctx := context.Background()
	addPeanutButter(c, 1)
	require.NoError(t, r.LoadWarehouseConfig(ctx))
	require.NoError(t, r.LoadAddresses(ctx))
	require.NoError(t, r.SelectAddress("addr-1"))
	require.NoError(t, r.RefreshRates(ctx))

	require.NoError(t, r.SelectDeliveryOption("blr-std"))
	assert.Equal(t, "blr-std", r.View().SelectedDeliveryOptionID)
	assert.ErrorIs(t, r.SelectDeliveryOption("nope"), ErrUnknownDeliveryOption)
}

func TestApplyCoupon(t *testing.T) {
	tests := []struct {
		name       string
		code       string
		emptyCart  bool
		response   *models.CouponValidationResponse
		backendErr error
		wantErr    error
		wantMsg    string
	}{
		{
			name:    "blank code",
			code:    "   ",
			wantErr: ErrEmptyCouponCode,
			wantMsg: ErrEmptyCouponCode.Error(),
		},
		{
			name:      "empty cart",
			code:      "SAVE10",
			emptyCart: true,
			wantErr:   ErrEmptyCart,
			wantMsg:   ErrEmptyCart.Error(),
		},
		{
			name:     "rejected",
			code:     "OLD",
			response: &models.CouponValidationResponse{Valid: false, Message: "Coupon has expired"},
			wantErr:  ErrCouponInvalid,
			wantMsg:  "Coupon has expired",
		},
		{
			name:     "rejected without message",
			code:     "OLD",
			response: &models.CouponValidationResponse{Valid: false},
			wantErr:  ErrCouponInvalid,
			wantMsg:  "Invalid coupon code",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			r, backend, c := setup(t)
			if !tt.emptyCart {
				addPeanutButter(c, 1)
			}
			backend.coupon = tt.response
			backend.couponErr = tt.backendErr

			// Act
			coupon, err := r.ApplyCoupon(context.Background(), tt.code)

			// Assert
			assert.Nil(t, coupon)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.wantMsg, r.View().CouponError)
			assert.Nil(t, r.View().Coupon)
		})
	}
}

func TestApplyCouponSuccessAndStaleness(t *testing.T) {
	// Arrange
	r, backend, c := setup(t)
	addPeanutButter(c, 2)
	backend.coupon = &models.CouponValidationResponse{
		Valid: true,
		Coupon: &models.AppliedCoupon{
			Name:           "Ten off",
			DiscountType:   models.DiscountTypeFlat,
			DiscountValue:  decimal.NewFromInt(50),
			DiscountAmount: decimal.NewFromInt(50),
		},
	}

	// Act
	coupon, err := r.ApplyCoupon(context.Background(), " save50 ")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "SAVE50", coupon.Code)
	req := backend.couponRequests[0]
	assert.Equal(t, "SAVE50", req.Code)
	assert.Equal(t, "700", req.OrderAmount.String())
	assert.Equal(t, []string{"prod-1"}, req.ProductIDs)

	view := r.View()
	assert.False(t, view.CouponStale)
	assert.Equal(t, "50", view.Pricing.CouponDiscount.String())

	// The coupon survives a cart change but is flagged
	addPeanutButter(c, 1)
	view = r.View()
	require.NotNil(t, view.Coupon)
	assert.True(t, view.CouponStale)

	r.RemoveCoupon()
	assert.Nil(t, r.View().Coupon)
	assert.False(t, r.View().CouponStale)
}

func readyForOrder(t *testing.T) (*Reconciler, *fakeBackend, *cart.Store, *orderCounter) {
	t.Helper()
	backend := newFakeBackend()
	c := newCart(t)
	orders := &orderCounter{}
	r := NewReconciler(backend, c, Config{Orders: orders})
	t.Cleanup(r.Close)

	ctx := context.Background()
	addPeanutButter(c, 2)
	require.NoError(t, r.LoadWarehouseConfig(ctx))
	require.NoError(t, r.LoadAddresses(ctx))
	require.NoError(t, r.RefreshRates(ctx))
	return r, backend, c, orders
}

func TestPlaceOrderSuccess(t *testing.T) {
	// Arrange
	r, backend, c, orders := readyForOrder(t)
	backend.coupon = &models.CouponValidationResponse{Valid: true, Coupon: &models.AppliedCoupon{Code: "SAVE50", DiscountAmount: decimal.NewFromInt(50)}}
	_, err := r.ApplyCoupon(context.Background(), "SAVE50")
	require.NoError(t, err)

	// Act
	confirmation, err := r.PlaceOrder(context.Background())

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "ord-1", confirmation.OrderID)
	assert.Equal(t, "SW-1001", confirmation.OrderNumber)
	assert.Equal(t, "/orders/ord-1/confirmation", confirmation.RedirectPath)

	require.Len(t, backend.orderRequests, 1)
	req := backend.orderRequests[0]
	assert.Equal(t, "addr-2", req.AddressID)
	assert.Equal(t, "bom-std", req.DeliveryOptionID)
	assert.Equal(t, "SAVE50", req.CouponCode)
	assert.Equal(t, []models.OrderItemRequest{{ProductID: "prod-1", VariantID: "var-500", Quantity: 2}}, req.Items)

	_, err = uuid.Parse(backend.orderKeys[0])
	assert.NoError(t, err, "Idempotency key should be a UUID")

	assert.Equal(t, 0, c.ItemCount())
	view := r.View()
	assert.Nil(t, view.Coupon)
	assert.False(t, view.PlacingOrder)
	assert.Equal(t, 1, orders.placed)
	assert.True(t, orders.coupon)
}

func TestPlaceOrderFailureKeepsCart(t *testing.T) {
	// Arrange
	r, backend, c, orders := readyForOrder(t)
	backend.orderErr = &client.APIError{Kind: client.KindValidation, StatusCode: http.StatusBadRequest, Message: "Variant out of stock"}

	// Act
	confirmation, err := r.PlaceOrder(context.Background())

	// Assert
	require.Error(t, err)
	assert.Nil(t, confirmation)
	assert.Equal(t, 2, c.ItemCount())
	view := r.View()
	assert.Equal(t, "Variant out of stock", view.OrderError)
	assert.False(t, view.PlacingOrder)
	assert.Equal(t, 0, orders.placed)

	// A retry uses a fresh idempotency key
	backend.orderErr = nil
	_, err = r.PlaceOrder(context.Background())
	require.NoError(t, err)
	require.Len(t, backend.orderKeys, 2)
	assert.NotEqual(t, backend.orderKeys[0], backend.orderKeys[1])
}

func TestPlaceOrderPreconditions(t *testing.T) {
	ctx := context.Background()

	t.Run("empty cart", func(t *testing.T) {
		r, _, _ := setup(t)
		_, err := r.PlaceOrder(ctx)
		assert.ErrorIs(t, err, ErrEmptyCart)
		assert.Equal(t, ErrEmptyCart.Error(), r.View().OrderError)
	})

	t.Run("no address", func(t *testing.T) {
		r, _, c := setup(t)
		addPeanutButter(c, 1)
		_, err := r.PlaceOrder(ctx)
		assert.ErrorIs(t, err, ErrNoAddressSelected)
	})

	t.Run("no delivery option", func(t *testing.T) {
		r, backend, c := setup(t)
		addPeanutButter(c, 1)
		require.NoError(t, r.LoadAddresses(ctx))
		_, err := r.PlaceOrder(ctx)
		assert.ErrorIs(t, err, ErrNoDeliveryOption)
		assert.Empty(t, backend.orderRequests)
	})
}

func TestClearAddressSelection(t *testing.T) {
	r, _, _, _ := readyForOrder(t)

	r.ClearAddressSelection()

	view := r.View()
	assert.Empty(t, view.SelectedAddressID)
	assert.Empty(t, view.DeliveryOptions)
	_, err := r.PlaceOrder(context.Background())
	assert.ErrorIs(t, err, ErrNoAddressSelected)
}

func TestCartChangeInvalidatesQuotedOptions(t *testing.T) {
	// Arrange
	r, backend, c, _ := readyForOrder(t)
	ctx := context.Background()
	require.Equal(t, "bom-std", r.View().SelectedDeliveryOptionID)

	// Act
	addPeanutButter(c, 40)

	// Assert
	view := r.View()
	assert.Empty(t, view.DeliveryOptions)
	assert.Empty(t, view.SelectedDeliveryOptionID)
	assert.True(t, view.Pricing.DeliveryFee.IsZero())

	_, err := r.PlaceOrder(ctx)
	assert.ErrorIs(t, err, ErrNoDeliveryOption)
	assert.Empty(t, backend.orderRequests)

	// A fresh quote for the new weight makes the order possible again
	require.NoError(t, r.RefreshRates(ctx))
	require.Equal(t, 2, backend.rateCalls())
	assert.Equal(t, 21000, backend.rateRequests[1].Weight)

	_, err = r.PlaceOrder(ctx)
	require.NoError(t, err)
	assert.Equal(t, 42, backend.orderRequests[0].Items[0].Quantity)
}

func TestPlaceOrderRejectsOptionQuotedForAnotherAddress(t *testing.T) {
	r, backend, _, _ := readyForOrder(t)

	require.NoError(t, r.SelectAddress("addr-1"))
	_, err := r.PlaceOrder(context.Background())

	assert.ErrorIs(t, err, ErrNoDeliveryOption)
	assert.Empty(t, backend.orderRequests)
	assert.Empty(t, r.View().DeliveryOptions)
}

func TestResetDropsPreviousUserState(t *testing.T) {
	// Arrange
	r, backend, _, _ := readyForOrder(t)
	ctx := context.Background()
	backend.coupon = &models.CouponValidationResponse{Valid: true, Coupon: &models.AppliedCoupon{Code: "SAVE50", DiscountAmount: decimal.NewFromInt(50)}}
	_, err := r.ApplyCoupon(ctx, "SAVE50")
	require.NoError(t, err)

	// Act: another user signs in on the same profile
	r.Reset()
	backend.mu.Lock()
	backend.addresses = []models.Address{{ID: "b-addr", FullName: "Flat", Pincode: "560001", IsDefault: true}}
	backend.mu.Unlock()

	// Assert
	view := r.View()
	assert.Empty(t, view.Addresses)
	assert.Empty(t, view.SelectedAddressID)
	assert.Empty(t, view.DeliveryOptions)
	assert.Nil(t, view.Coupon)
	assert.NotNil(t, view.Warehouse, "Warehouse config is not per user")

	require.NoError(t, r.LoadAddresses(ctx))
	require.NoError(t, r.RefreshRates(ctx))
	_, err = r.PlaceOrder(ctx)
	require.NoError(t, err)

	require.Len(t, backend.orderRequests, 1)
	assert.Equal(t, "b-addr", backend.orderRequests[0].AddressID)
	assert.Equal(t, "blr-exp", backend.orderRequests[0].DeliveryOptionID)
	assert.Empty(t, backend.orderRequests[0].CouponCode)
}

func TestResetDiscardsAddressesFetchedBeforeIt(t *testing.T) {
	// Arrange
	r, backend, _ := setup(t)
	gate := make(chan struct{})
	backend.addressGate = gate

	done := make(chan error, 1)
	go func() { done <- r.LoadAddresses(context.Background()) }()
	require.Equal(t, "addresses", <-backend.entered)

	// Act
	r.Reset()
	close(gate)
	require.NoError(t, <-done)

	// Assert
	view := r.View()
	assert.Empty(t, view.Addresses)
	assert.Empty(t, view.SelectedAddressID)
}

func TestCouponFlaggedWhenCartNoLongerHasApplicableProducts(t *testing.T) {
	// Arrange
	r, backend, c := setup(t)
	addPeanutButter(c, 1)
	backend.coupon = &models.CouponValidationResponse{Valid: true, Coupon: &models.AppliedCoupon{
		Code:                 "PB20",
		DiscountAmount:       decimal.NewFromInt(20),
		ApplicableProductIDs: []string{"prod-1"},
	}}
	_, err := r.ApplyCoupon(context.Background(), "PB20")
	require.NoError(t, err)

	// Act: swap peanut butter for a product the coupon does not cover
	variant := models.ProductVariant{ID: "var-200", Weight: 200, MRP: decimal.NewFromInt(350), SellingPrice: decimal.NewFromInt(350), Stock: 5}
	c.AddToCart(models.Product{ID: "prod-2", Name: "Muesli", Variants: []models.ProductVariant{variant}}, variant, 1)
	c.RemoveItem(c.Items()[0].ID)

	// Assert
	view := r.View()
	require.NotNil(t, view.Coupon)
	assert.True(t, view.CouponStale)
	assert.Equal(t, couponNotApplicableMessage, view.CouponError)
}
