package payments

import (
	"context"
	"math"

	mpconfig "github.com/mercadopago/sdk-go/pkg/config"
	"github.com/mercadopago/sdk-go/pkg/preference"

	"github.com/glowbook/booking-api/internal/models"
)

// Share of the service price charged up front when a booking is confirmed.
const depositRate = 0.30

type DepositCheckout struct {
	PreferenceID string  `json:"preference_id"`
	InitPoint    string  `json:"init_point"`
	Amount       float64 `json:"amount"`
}

// MercadoPago creates checkout preferences for appointment deposits.
type MercadoPago struct {
	prefs preference.Client
}

// NewMercadoPago returns nil when no access token is configured; callers
// treat a nil client as a disabled feature.
func NewMercadoPago(accessToken string) (*MercadoPago, error) {
	if accessToken == "" {
		return nil, nil
	}

	cfg, err := mpconfig.New(accessToken)
	if err != nil {
		return nil, err
	}

	return &MercadoPago{prefs: preference.NewClient(cfg)}, nil
}

func (m *MercadoPago) Enabled() bool {
	return m != nil
}

func (m *MercadoPago) CreateDepositPreference(
	ctx context.Context,
	ap *models.Appointment,
	svc *models.Service,
) (*DepositCheckout, error) {

	amount := DepositAmount(svc.Price)

	req := preference.Request{
		ExternalReference: ap.Code,
		Items: []preference.ItemRequest{
			{
				Title:       svc.Name + " - booking deposit",
				Quantity:    1,
				UnitPrice:   amount,
				Description: "Deposit for appointment " + ap.Code,
			},
		},
	}

	resp, err := m.prefs.Create(ctx, req)
	if err != nil {
		return nil, err
	}

	return &DepositCheckout{
		PreferenceID: resp.ID,
		InitPoint:    resp.InitPoint,
		Amount:       amount,
	}, nil
}

func DepositAmount(price float64) float64 {
	return math.Round(price*depositRate*100) / 100
}
