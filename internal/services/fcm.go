package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"strconv"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/shopspring/decimal"
	"google.golang.org/api/option"
)

// FCMService handles Firebase Cloud Messaging
type FCMService struct {
	client *messaging.Client
}

// NewFCMService creates a new FCM service instance from a credentials file
func NewFCMService(credentialsFile string) (*FCMService, error) {
	return newFCMService(option.WithCredentialsFile(credentialsFile))
}

// NewFCMServiceFromBase64 creates a new FCM service instance from base64-encoded credentials.
// Used on hosts where the service account cannot be shipped as a file.
func NewFCMServiceFromBase64(credentialsBase64 string) (*FCMService, error) {
	credentialsJSON, err := base64.StdEncoding.DecodeString(credentialsBase64)
	if err != nil {
		return nil, fmt.Errorf("error decoding base64 credentials: %w", err)
	}
	return newFCMService(option.WithCredentialsJSON(credentialsJSON))
}

func newFCMService(opt option.ClientOption) (*FCMService, error) {
	ctx := context.Background()

	app, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		return nil, fmt.Errorf("error initializing Firebase app: %w", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting messaging client: %w", err)
	}

	return &FCMService{client: client}, nil
}

// DebtAlert is the payload pushed to supervisors when a route closes short
type DebtAlert struct {
	RouteID    int
	DriverName string
	TruckName  string
	Missing    int
	Debt       decimal.Decimal
}

// DebtAlertMessage builds the multicast message for a debt alert
func DebtAlertMessage(tokens []string, alert DebtAlert) *messaging.MulticastMessage {
	return &messaging.MulticastMessage{
		Tokens: tokens,
		Notification: &messaging.Notification{
			Title: "Descuadre detectado",
			Body: fmt.Sprintf("Ruta #%d (%s, %s): faltan %d garrafones. Deuda: $%s",
				alert.RouteID, alert.DriverName, alert.TruckName, alert.Missing, alert.Debt.StringFixed(2)),
		},
		Data: map[string]string{
			"type":        "route_debt",
			"route_id":    strconv.Itoa(alert.RouteID),
			"missing":     strconv.Itoa(alert.Missing),
			"debt_amount": alert.Debt.StringFixed(2),
		},
		Android: &messaging.AndroidConfig{
			Priority: "high",
		},
		APNS: &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					ContentAvailable: true,
					Sound:            "default",
				},
			},
		},
	}
}

// SendDebtAlert pushes a debt alert to every token and returns the tokens FCM
// reported as no longer registered so callers can forget them.
func (s *FCMService) SendDebtAlert(ctx context.Context, tokens []string, alert DebtAlert) ([]string, error) {
	if s == nil || len(tokens) == 0 {
		return nil, nil
	}

	response, err := s.client.SendEachForMulticast(ctx, DebtAlertMessage(tokens, alert))
	if err != nil {
		return nil, fmt.Errorf("error sending multicast message: %w", err)
	}

	var stale []string
	for i, r := range response.Responses {
		if r.Error != nil && messaging.IsUnregistered(r.Error) {
			stale = append(stale, tokens[i])
		}
	}

	log.Printf("✅ Debt alert for route #%d sent: %d success, %d failures", alert.RouteID, response.SuccessCount, response.FailureCount)
	return stale, nil
}
