package handlers

import (
	"net/http"

	"github.com/debopam-roy/swaadly-frontend-sub000/internal/middleware"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/mux"
)

// Router bundles the handlers and guards that make up the storefront HTTP surface
type Router struct {
	Health   *HealthHandler
	Products *ProductHandler
	Cart     *CartHandler
	Checkout *CheckoutHandler
	Orders   *OrderHandler
	Address  *AddressHandler
	Auth     *AuthHandler
	Verify   *VerifyHandler
	Account  *AccountHandler
	Pages    *PageHandler

	Session    middleware.SessionState
	OTPLimiter *middleware.OTPRateLimiter
	Guard      middleware.RouteGuardConfig
	// TrustProxyHeaders lets chi's RealIP take the client address from forwarding headers
	TrustProxyHeaders bool
	// Middlewares run after the chi request middlewares, e.g. telemetry
	Middlewares []mux.MiddlewareFunc
}

// Build registers every route and returns the root handler
func (rt *Router) Build() *mux.Router {
	r := mux.NewRouter()
	r.Use(chimw.RequestID)
	if rt.TrustProxyHeaders {
		r.Use(chimw.RealIP)
	}
	r.Use(chimw.Recoverer)
	r.Use(rt.Middlewares...)
	r.Use(withSessionCookies(rt.Auth.clearSessionCookies))

	staleCookies := []string{rt.Guard.AccessTokenCookie, rt.Guard.UserCookie}

	r.HandleFunc("/health", rt.Health.Health).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/storage/stats", rt.Health.StorageStats).Methods(http.MethodGet)
	api.HandleFunc("/rate-limit/status", NewRateLimitStatusHandler(rt.OTPLimiter).GetRateLimitStatus).Methods(http.MethodGet)

	// Catalog and cart work without a session
	api.HandleFunc("/products", rt.Products.ListProducts).Methods(http.MethodGet)
	api.HandleFunc("/products/{slug}", rt.Products.GetProduct).Methods(http.MethodGet)
	api.HandleFunc("/cart", rt.Cart.GetCart).Methods(http.MethodGet)
	api.HandleFunc("/cart", rt.Cart.ClearCart).Methods(http.MethodDelete)
	api.HandleFunc("/cart/items", rt.Cart.AddItem).Methods(http.MethodPost)
	api.HandleFunc("/cart/items/{id}", rt.Cart.UpdateItem).Methods(http.MethodPatch)
	api.HandleFunc("/cart/items/{id}", rt.Cart.RemoveItem).Methods(http.MethodDelete)
	api.HandleFunc("/newsletter", rt.Account.SubscribeNewsletter).Methods(http.MethodPost)

	api.Handle("/auth/email/send-otp", rt.limitOTP(rt.Auth.SendEmailOTP)).Methods(http.MethodPost)
	api.HandleFunc("/auth/email/verify-otp", rt.Auth.VerifyEmailOTP).Methods(http.MethodPost)
	api.Handle("/auth/phone/send-otp", rt.limitOTP(rt.Auth.SendPhoneOTP)).Methods(http.MethodPost)
	api.HandleFunc("/auth/phone/verify-otp", rt.Auth.VerifyPhoneOTP).Methods(http.MethodPost)
	api.HandleFunc("/auth/google", rt.Auth.GoogleLogin).Methods(http.MethodPost)
	api.HandleFunc("/auth/me", rt.Auth.Me).Methods(http.MethodGet)
	api.HandleFunc("/auth/logout", rt.Auth.Logout).Methods(http.MethodPost)

	private := api.NewRoute().Subrouter()
	private.Use(middleware.RequireSession(rt.Session, staleCookies...))
	private.HandleFunc("/checkout", rt.Checkout.GetCheckout).Methods(http.MethodGet)
	private.HandleFunc("/checkout/address", rt.Checkout.SelectAddress).Methods(http.MethodPut)
	private.HandleFunc("/checkout/delivery-option", rt.Checkout.SelectDeliveryOption).Methods(http.MethodPut)
	private.HandleFunc("/checkout/coupon", rt.Checkout.ApplyCoupon).Methods(http.MethodPost)
	private.HandleFunc("/checkout/coupon", rt.Checkout.RemoveCoupon).Methods(http.MethodDelete)
	private.HandleFunc("/checkout/orders", rt.Checkout.PlaceOrder).Methods(http.MethodPost)
	private.HandleFunc("/coupons/available", rt.Checkout.AvailableCoupons).Methods(http.MethodGet)
	private.HandleFunc("/orders", rt.Orders.ListOrders).Methods(http.MethodGet)
	private.HandleFunc("/orders/{id}", rt.Orders.GetOrder).Methods(http.MethodGet)
	private.HandleFunc("/addresses", rt.Address.ListAddresses).Methods(http.MethodGet)
	private.HandleFunc("/addresses", rt.Address.CreateAddress).Methods(http.MethodPost)
	private.HandleFunc("/addresses/{id}", rt.Address.UpdateAddress).Methods(http.MethodPut)
	private.HandleFunc("/addresses/{id}", rt.Address.DeleteAddress).Methods(http.MethodDelete)
	private.HandleFunc("/addresses/{id}/default", rt.Address.SetDefaultAddress).Methods(http.MethodPost)
	private.HandleFunc("/verify", rt.Verify.State).Methods(http.MethodGet)
	private.HandleFunc("/verify/start", rt.Verify.Start).Methods(http.MethodPost)
	private.HandleFunc("/verify/select", rt.Verify.Select).Methods(http.MethodPost)
	private.Handle("/verify/send", rt.limitOTP(rt.Verify.Send)).Methods(http.MethodPost)
	private.HandleFunc("/verify/confirm", rt.Verify.Confirm).Methods(http.MethodPost)
	private.HandleFunc("/verify/back", rt.Verify.Back).Methods(http.MethodPost)
	private.HandleFunc("/onboarding", rt.Account.CompleteOnboarding).Methods(http.MethodPost)

	pages := r.NewRoute().Subrouter()
	pages.Use(middleware.RouteGuard(rt.Guard))
	for path, name := range map[string]string{
		"/":                "home",
		"/products":        "products",
		"/products/{slug}": "product",
		"/cart":            "cart",
		"/auth/login":      "login",
	} {
		pages.HandleFunc(path, rt.Pages.Page(name)).Methods(http.MethodGet)
	}

	protected := pages.NewRoute().Subrouter()
	protected.Use(middleware.RequireSession(rt.Session, staleCookies...))
	for path, name := range map[string]string{
		"/verify":                   "verify",
		"/onboarding":               "onboarding",
		"/checkout":                 "checkout",
		"/orders":                   "orders",
		"/orders/{id}":              "order",
		"/orders/{id}/confirmation": "order-confirmation",
		"/profile":                  "profile",
	} {
		protected.HandleFunc(path, rt.Pages.Page(name)).Methods(http.MethodGet)
	}

	return r
}

func (rt *Router) limitOTP(h http.HandlerFunc) http.Handler {
	if rt.OTPLimiter == nil {
		return h
	}
	return rt.OTPLimiter.Middleware(h)
}
