package domain

import (
	"fmt"
	"strings"
)

type Status string

const (
	StatusPending        Status = "pending"
	StatusAccepted       Status = "accepted"
	StatusPreparing      Status = "preparing"
	StatusReady          Status = "ready"
	StatusOutForDelivery Status = "out_for_delivery"
	StatusDelivered      Status = "delivered"
)

// Statuses lists the vocabulary in lifecycle order.
var Statuses = []Status{
	StatusPending,
	StatusAccepted,
	StatusPreparing,
	StatusReady,
	StatusOutForDelivery,
	StatusDelivered,
}

var statusLabels = map[Status]string{
	StatusPending:        "En attente",
	StatusAccepted:       "Acceptée",
	StatusPreparing:      "En préparation",
	StatusReady:          "Terminée",
	StatusOutForDelivery: "En attente de livraison",
	StatusDelivered:      "Livrée",
}

// Label is the French customer-facing name of the status.
func (s Status) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

func (s Status) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

// statusAliases are extra spellings accepted by ParseStatus, already folded.
var statusAliases = map[string]Status{
	"done":        StatusReady,
	"termine":     StatusReady,
	"delivery":    StatusOutForDelivery,
	"enlivraison": StatusOutForDelivery,
}

var statusFolder = strings.NewReplacer("_", "", "-", "", " ", "")

func foldStatus(s string) string {
	return strings.ToLower(statusFolder.Replace(strings.TrimSpace(s)))
}

// ParseStatus accepts the status code, its French label or a known alias,
// ignoring case, spaces, underscores and dashes ("OutForDelivery" and
// "out_for_delivery" are the same status).
func ParseStatus(raw string) (Status, error) {
	v := foldStatus(raw)
	if v != "" {
		for _, s := range Statuses {
			if v == foldStatus(string(s)) || v == foldStatus(s.Label()) {
				return s, nil
			}
		}
		if s, ok := statusAliases[v]; ok {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
}

// Action is a staff control attached to an order post.
type Action int

const (
	ActionAccept Action = iota + 1
	ActionPrepare
	ActionReady
	ActionOutForDelivery
	ActionDelivered
)

// Actions lists the controls in the order they are rendered.
var Actions = []Action{ActionAccept, ActionPrepare, ActionReady, ActionOutForDelivery, ActionDelivered}

var actionMeta = map[Action]struct {
	code   string
	label  string
	target Status
}{
	ActionAccept:         {"accepter", "Accepter", StatusAccepted},
	ActionPrepare:        {"preparer", "En préparation", StatusPreparing},
	ActionReady:          {"terminer", "Terminée", StatusReady},
	ActionOutForDelivery: {"livraison", "En livraison", StatusOutForDelivery},
	ActionDelivered:      {"livree", "Livrée", StatusDelivered},
}

func (a Action) Code() string   { return actionMeta[a].code }
func (a Action) Label() string  { return actionMeta[a].label }
func (a Action) Target() Status { return actionMeta[a].target }

// CustomID encodes the control identifier as "<code>_<orderID>".
func (a Action) CustomID(orderID string) string {
	return a.Code() + "_" + orderID
}

// ParseCustomID splits a control identifier back into its action and order id.
func ParseCustomID(customID string) (Action, string, error) {
	code, orderID, ok := strings.Cut(customID, "_")
	if !ok || orderID == "" {
		return 0, "", fmt.Errorf("%w: malformed control id %q", ErrUnknownAction, customID)
	}
	for _, a := range Actions {
		if a.Code() == code {
			return a, orderID, nil
		}
	}
	return 0, "", fmt.Errorf("%w: %q", ErrUnknownAction, code)
}
