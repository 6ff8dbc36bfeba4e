package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/logoslabs/logos/internal/domain"
	"github.com/logoslabs/logos/internal/store"
	"go.uber.org/zap"
)

var (
	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrSignatureExpired = errors.New("webhook signature timestamp outside tolerance")
	ErrDuplicateEvent   = errors.New("event already processed")
	ErrMalformedEvent   = errors.New("malformed event payload")
)

// signatureTolerance bounds how old a signed webhook may be, which
// limits the replay window to the dedup table's working set.
const signatureTolerance = 5 * time.Minute

const paymentProvider = "stripe"

// PaymentService verifies and applies incoming payment webhooks.
// Signature scheme: the signature header carries "t=<unix>,v1=<hex>"
// where v1 is HMAC-SHA256 over "<t>.<raw body>" keyed by the shared
// webhook secret.
type PaymentService struct {
	events  domain.PaymentEventStore
	wallets *WalletService
	secret  []byte
	logger  *zap.Logger
}

func NewPaymentService(es domain.PaymentEventStore, ws *WalletService, secret string, logger *zap.Logger) *PaymentService {
	return &PaymentService{events: es, wallets: ws, secret: []byte(secret), logger: logger}
}

// VerifySignature checks the signature header against the raw request
// body. Comparison is constant time.
func (s *PaymentService) VerifySignature(sigHeader string, body []byte) error {
	var ts int64
	var sig string

	for _, part := range strings.Split(sigHeader, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch k {
		case "t":
			parsed, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return ErrInvalidSignature
			}
			ts = parsed
		case "v1":
			sig = v
		}
	}
	if ts == 0 || sig == "" {
		return ErrInvalidSignature
	}

	if d := timeNow().Sub(time.Unix(ts, 0)); d > signatureTolerance || d < -signatureTolerance {
		return ErrSignatureExpired
	}

	mac := hmac.New(sha256.New, s.secret)
	fmt.Fprintf(mac, "%d.", ts)
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(sig)) {
		return ErrInvalidSignature
	}
	return nil
}

type webhookEvent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object struct {
			ID             string            `json:"id"`
			AmountReceived int64             `json:"amount_received"`
			Currency       string            `json:"currency"`
			Metadata       map[string]string `json:"metadata"`
		} `json:"object"`
	} `json:"data"`
}

// HandleWebhook records the event and applies its effect. The insert
// into payment_events doubles as the dedup check: a replayed event ID
// fails the unique constraint. A redelivery of an event whose effect
// previously failed (processed still false) is applied again rather
// than dropped, so providers retrying on a 500 cannot lose the deposit.
func (s *PaymentService) HandleWebhook(ctx context.Context, sigHeader string, body []byte) error {
	if err := s.VerifySignature(sigHeader, body); err != nil {
		return err
	}

	var ev webhookEvent
	if err := json.Unmarshal(body, &ev); err != nil || ev.ID == "" || ev.Type == "" {
		return ErrMalformedEvent
	}

	record := &domain.PaymentEvent{
		Provider:        paymentProvider,
		ProviderEventID: ev.ID,
		EventType:       ev.Type,
		Payload:         body,
	}
	if err := s.events.Create(ctx, record); err != nil {
		if !errors.Is(err, store.ErrConflict) {
			return err
		}
		existing, gerr := s.events.GetByProviderEventID(ctx, paymentProvider, ev.ID)
		if gerr != nil {
			return gerr
		}
		if existing.Processed {
			s.logger.Info("duplicate webhook dropped", zap.String("event_id", ev.ID))
			return ErrDuplicateEvent
		}
		s.logger.Info("retrying unprocessed webhook", zap.String("event_id", ev.ID))
		record = existing
	}

	switch ev.Type {
	case "payment_intent.succeeded":
		if err := s.applyDeposit(ctx, &ev); err != nil {
			return err
		}
	default:
		s.logger.Debug("unhandled webhook type", zap.String("type", ev.Type))
	}

	if err := s.events.MarkProcessed(ctx, record.ID); err != nil {
		s.logger.Warn("failed to mark event processed", zap.String("event_id", ev.ID), zap.Error(err))
	}
	return nil
}

func (s *PaymentService) applyDeposit(ctx context.Context, ev *webhookEvent) error {
	obj := ev.Data.Object
	userID, err := uuid.Parse(obj.Metadata["user_id"])
	if err != nil {
		return fmt.Errorf("%w: missing or invalid user_id metadata", ErrMalformedEvent)
	}
	if obj.AmountReceived <= 0 {
		return fmt.Errorf("%w: non-positive amount", ErrMalformedEvent)
	}

	_, err = s.wallets.Deposit(ctx, userID, obj.AmountReceived,
		paymentProvider, obj.ID, "card deposit")
	if err != nil {
		return err
	}

	s.logger.Info("deposit applied from webhook",
		zap.String("event_id", ev.ID),
		zap.String("user_id", userID.String()),
		zap.Int64("amount_cents", obj.AmountReceived))
	return nil
}
