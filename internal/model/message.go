package model

import "errors"

var ErrInvalidMessage = errors.New("invalid message")

// ProvisioningMessage triggers one provisioning stage for a customer.
type ProvisioningMessage struct {
	ExternalID string `json:"externalId"`
	Type       string `json:"type"`
	Name       string `json:"name"`
}

func (m ProvisioningMessage) Validate() error {
	if m.ExternalID == "" || m.Name == "" {
		return ErrInvalidMessage
	}
	if m.Type != TypeCustomer && m.Type != TypeSupplier {
		return ErrInvalidMessage
	}
	return nil
}

// CustomerInfoMessage carries customer master data from the upstream ERP.
type CustomerInfoMessage struct {
	CustomerNo     string `json:"customerNo"`
	CustomerName   string `json:"customerName"`
	Type           string `json:"type"`
	Seller         string `json:"seller,omitempty"`
	ProjectManager string `json:"projectManager,omitempty"`
}

func (m CustomerInfoMessage) Validate() error {
	if m.CustomerNo == "" || m.CustomerName == "" {
		return ErrInvalidMessage
	}
	if m.Type != TypeCustomer && m.Type != TypeSupplier {
		return ErrInvalidMessage
	}
	return nil
}

// OrderInfoMessage carries order master data from the upstream ERP.
type OrderInfoMessage struct {
	No             string `json:"no"`
	CustomerNo     string `json:"customerNo"`
	Type           string `json:"type"`
	AdditionalInfo string `json:"additionalInfo,omitempty"`
	Seller         string `json:"seller,omitempty"`
	ProjectManager string `json:"projectManager,omitempty"`
}

func (m OrderInfoMessage) Validate() error {
	if m.No == "" || m.CustomerNo == "" {
		return ErrInvalidMessage
	}
	return nil
}

// EmailEventMessage describes an inbound mail with attachments dropped in the
// shared inbox. Exactly one of Title and Filename is set and selects the
// matching mode.
type EmailEventMessage struct {
	Title    string `json:"title,omitempty"`
	Filename string `json:"filename,omitempty"`
	Sender   string `json:"sender,omitempty"`
}

func (m EmailEventMessage) Validate() error {
	if (m.Title == "") == (m.Filename == "") {
		return ErrInvalidMessage
	}
	return nil
}
