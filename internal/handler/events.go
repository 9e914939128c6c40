package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/nilsb/holtab-provisioner/internal/match"
	"github.com/nilsb/holtab-provisioner/internal/model"
	"github.com/nilsb/holtab-provisioner/internal/service"
)

// CustomerInfoHandler applies customer master-data events to the record store.
func CustomerInfoHandler(customers *service.CustomerService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var msg model.CustomerInfoMessage
		if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if err := msg.Validate(); err != nil {
			http.Error(w, "invalid customer info", http.StatusBadRequest)
			return
		}

		if _, err := customers.Upsert(r.Context(), msg); err != nil {
			slog.Error("customer upsert failed", "customer", msg.CustomerNo, "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

// OrderInfoHandler applies order master-data events to the record store.
func OrderInfoHandler(orders *service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var msg model.OrderInfoMessage
		if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if err := msg.Validate(); err != nil {
			http.Error(w, "invalid order info", http.StatusBadRequest)
			return
		}

		if err := orders.Upsert(r.Context(), msg); err != nil {
			slog.Error("order upsert failed", "order", msg.No, "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

// EmailEventHandler routes an inbound mail event: the embedded identifier is
// extracted, an immediate filing attempt is made, and unmatched events leave
// an order record for the sweep plus a chat notification to the sender.
func EmailEventHandler(filer *service.Filer, orders *service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var msg model.EmailEventMessage
		if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if err := msg.Validate(); err != nil {
			http.Error(w, "exactly one of title and filename required", http.StatusBadRequest)
			return
		}

		text := msg.Title
		if text == "" {
			text = msg.Filename
		}

		// Order numbers take precedence; customer numbers are only consulted
		// when no order number is embedded.
		orderNo := match.OrderNumber(text)
		customerNo := ""
		if orderNo == "" {
			customerNo = match.CustomerNumber(text)
		}
		if orderNo == "" && customerNo == "" {
			http.Error(w, "no order or customer identifier in event", http.StatusBadRequest)
			return
		}

		o, err := orders.EnsureFromEmail(r.Context(), orderNo, customerNo, msg.Title, msg.Filename, msg.Sender)
		if err != nil {
			slog.Error("order record failed", "order", orderNo, "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		err = filer.FileOrder(r.Context(), o)
		switch {
		case err == nil:
			if err := orders.MarkHandled(r.Context(), o.ID); err != nil {
				slog.Error("failed to mark order handled", "order", o.No, "error", err)
			}
			w.WriteHeader(http.StatusOK)
		case errors.Is(err, service.ErrNoMatch):
			if nerr := filer.NotifyUnmatched(r.Context(), o); nerr != nil {
				slog.Warn("sender notification failed", "sender", msg.Sender, "error", nerr)
			}
			// The sweep owns further attempts; the transport should not
			// redeliver this event.
			w.WriteHeader(http.StatusAccepted)
		default:
			slog.Warn("filing attempt failed", "order", o.No, "error", err)
			http.Error(w, "service not available", http.StatusServiceUnavailable)
		}
	}
}
