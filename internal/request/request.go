// Package request holds the JSON request DTOs decoded by the HTTP handlers
// and their go-playground/validator struct tags.
package request

// CreateAccountRequest is the body of POST /accounts. The account id is
// minted upstream (by whatever system is provisioning the tenant), not by
// this service.
type CreateAccountRequest struct {
	AccountID string `json:"account_id" validate:"required,uuid"`
}

// ChargeRequest is the body of POST /accounts/charge.
type ChargeRequest struct {
	Amount int64 `json:"amount" validate:"required,gt=0"`
}

// SendSMSRequest is the body of POST /sms/send. SMSType defaults to 1
// (regular) when omitted; the handler applies that default before
// validating, since "required" would otherwise reject the zero value.
// The phone number's 10-20 length bound applies after stripping the
// +/-/space separators, so it is enforced by message.Validate rather
// than a raw-length tag here.
type SendSMSRequest struct {
	PhoneNumber string `json:"phone_number" validate:"required"`
	Message     string `json:"message" validate:"required,max=70"`
	SMSType     int    `json:"sms_type" validate:"omitempty,oneof=1 2"`
}
