package service

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"

	apperrors "github.com/otpstudio/studio-server-go/internal/errors"
)

// Package is a purchasable offering. Prices live server-side; the browser
// only ever sends the package name.
type Package struct {
	Label       string
	AmountCents int64
}

var packages = map[string]Package{
	"starter":    {Label: "Starter Site Package", AmountCents: 149900},
	"growth":     {Label: "Growth Site Package", AmountCents: 299900},
	"enterprise": {Label: "Enterprise Site Package", AmountCents: 599900},
}

// CheckoutService opens hosted checkout sessions with the payment provider.
// The hosted checkout UI and webhook confirmation are owned entirely by the
// provider; this service only returns the session id to redirect into.
type CheckoutService struct {
	secretKey   string
	siteBaseURL string
}

func NewCheckoutService(secretKey, siteBaseURL string) *CheckoutService {
	return &CheckoutService{
		secretKey:   secretKey,
		siteBaseURL: siteBaseURL,
	}
}

// CreateSession maps the package name to a price and opens a hosted
// checkout session, returning its identifier.
func (s *CheckoutService) CreateSession(ctx context.Context, packageName, customerEmail string) (string, error) {
	if s.secretKey == "" {
		return "", apperrors.Configuration("payment provider key is not configured")
	}

	pkg, ok := packages[packageName]
	if !ok {
		return "", apperrors.InvalidInput("packageName", "unknown package")
	}

	stripe.Key = s.secretKey

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(string(stripe.CurrencyUSD)),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(pkg.Label),
					},
					UnitAmount: stripe.Int64(pkg.AmountCents),
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(s.siteBaseURL + "/checkout/success?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:  stripe.String(s.siteBaseURL + "/checkout/cancelled"),
	}
	params.Context = ctx

	if customerEmail != "" {
		params.CustomerEmail = stripe.String(customerEmail)
	}

	sess, err := session.New(params)
	if err != nil {
		return "", apperrors.Upstream("payment provider", err)
	}

	log.Info().
		Str("package", packageName).
		Str("sessionId", sess.ID).
		Msg("checkout session created")

	return sess.ID, nil
}
